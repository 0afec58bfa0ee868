package domain

// DashboardReport aggregates click activity across every link an owner has.
type DashboardReport struct {
	TotalURLs       int64           `json:"totalUrls"`
	TotalClicks     int64           `json:"totalClicks"`
	ClicksToday     int64           `json:"clicksToday"`
	ClicksThisWeek  int64           `json:"clicksThisWeek"`
	ClicksThisMonth int64           `json:"clicksThisMonth"`
	RecentClicks    []LinkClick     `json:"recentClicks"`
	TopReferrers    []ReferrerStats `json:"topReferrers"`
}

// LinkReport covers a single link over the trailing 30-day window.
type LinkReport struct {
	URL       LinkSummary   `json:"url"`
	Analytics LinkAnalytics `json:"analytics"`
}

type LinkAnalytics struct {
	ClicksLast30Days int64           `json:"clicksLast30Days"`
	DailyClicks      []DailyClicks   `json:"dailyClicks"`
	BrowserStats     []BrowserStats  `json:"browserStats"`
	ReferrerStats    []ReferrerStats `json:"referrerStats"`
	RecentClicks     []Click         `json:"recentClicks"`
}

type DailyClicks struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type BrowserStats struct {
	Browser string `json:"browser"`
	Count   int64  `json:"count"`
}

type ReferrerStats struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}
