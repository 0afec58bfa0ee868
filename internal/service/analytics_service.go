package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ejtx16/shrink-iq-web-app/internal/domain"
	"github.com/ejtx16/shrink-iq-web-app/pkg/detector"
	"github.com/google/uuid"
)

const (
	dashboardRecentLimit   = 50
	dashboardReferrerLimit = 10
	linkRecentLimit        = 20
	reportWindowDays       = 30

	// Empty referrers group under this category.
	directReferrer = "Direct"
)

// AnalyticsRepository is the read side the aggregator needs: click logs in
// chronological order plus owner-level totals.
type AnalyticsRepository interface {
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Link, error)
	ListClicks(ctx context.Context, id uuid.UUID) ([]domain.Click, error)
	ListOwnerClicks(ctx context.Context, ownerID uuid.UUID) ([]domain.LinkClick, error)
	OwnerTotals(ctx context.Context, ownerID uuid.UUID) (totalURLs, totalClicks int64, err error)
}

// AnalyticsService computes reports on demand from stored click logs. It is
// stateless: nothing is precomputed beyond the click counter itself.
type AnalyticsService struct {
	links   AnalyticsRepository
	baseURL string
	now     func() time.Time
}

func NewAnalyticsService(links AnalyticsRepository, baseURL string) *AnalyticsService {
	return &AnalyticsService{
		links:   links,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// Dashboard aggregates activity across every link the owner has in one pass
// over the owner's full click log.
func (s *AnalyticsService) Dashboard(ctx context.Context, ownerID uuid.UUID) (*domain.DashboardReport, error) {
	totalURLs, totalClicks, err := s.links.OwnerTotals(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner totals: %w", err)
	}

	clicks, err := s.links.ListOwnerClicks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load clicks: %w", err)
	}

	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.Add(-7 * 24 * time.Hour)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	report := &domain.DashboardReport{
		TotalURLs:   totalURLs,
		TotalClicks: totalClicks,
	}

	referrers := newCategoryCounter()

	for _, click := range clicks {
		if !click.Timestamp.Before(todayStart) {
			report.ClicksToday++
		}
		if !click.Timestamp.Before(weekStart) {
			report.ClicksThisWeek++
		}
		if !click.Timestamp.Before(monthStart) {
			report.ClicksThisMonth++
		}

		referrers.add(normalizeReferrer(click.Referrer))
	}

	// Clicks arrive in chronological order, so the newest are at the tail.
	recent := clicks
	if len(recent) > dashboardRecentLimit {
		recent = recent[len(recent)-dashboardRecentLimit:]
	}
	report.RecentClicks = reverseLinkClicks(recent)

	report.TopReferrers = referrers.sorted(dashboardReferrerLimit)

	return report, nil
}

// LinkReport covers one owned link over the trailing 30-day window.
func (s *AnalyticsService) LinkReport(ctx context.Context, id, ownerID uuid.UUID) (*domain.LinkReport, error) {
	link, err := s.links.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	clicks, err := s.links.ListClicks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load clicks: %w", err)
	}

	now := s.now()
	windowStart := now.Add(-reportWindowDays * 24 * time.Hour)

	// The daily series is dense: exactly 30 entries, zero-filled, from 29
	// days ago through today.
	daily := make([]domain.DailyClicks, 0, reportWindowDays)
	dayIndex := make(map[string]int, reportWindowDays)
	for i := reportWindowDays - 1; i >= 0; i-- {
		date := now.UTC().AddDate(0, 0, -i).Format("2006-01-02")
		dayIndex[date] = len(daily)
		daily = append(daily, domain.DailyClicks{Date: date})
	}

	var windowed int64
	browsers := newCategoryCounter()
	referrers := newCategoryCounter()

	for _, click := range clicks {
		if click.Timestamp.Before(windowStart) {
			continue
		}
		windowed++

		if idx, ok := dayIndex[click.Timestamp.UTC().Format("2006-01-02")]; ok {
			daily[idx].Count++
		}

		browsers.add(detector.DetectBrowser(click.UserAgent))
		referrers.add(normalizeReferrer(click.Referrer))
	}

	recent := clicks
	if len(recent) > linkRecentLimit {
		recent = recent[len(recent)-linkRecentLimit:]
	}

	browserStats := make([]domain.BrowserStats, 0, len(browsers.order))
	for _, name := range browsers.order {
		browserStats = append(browserStats, domain.BrowserStats{Browser: name, Count: browsers.counts[name]})
	}

	return &domain.LinkReport{
		URL: domain.LinkSummary{
			ID:          link.ID,
			OriginalURL: link.OriginalURL,
			ShortCode:   link.ShortCode,
			ShortURL:    fmt.Sprintf("%s/%s", s.baseURL, link.ShortCode),
			CustomSlug:  link.CustomSlug,
			ClickCount:  link.ClickCount,
			CreatedAt:   link.CreatedAt,
			UpdatedAt:   link.UpdatedAt,
			ExpiresAt:   link.ExpiresAt,
		},
		Analytics: domain.LinkAnalytics{
			ClicksLast30Days: windowed,
			DailyClicks:      daily,
			BrowserStats:     browserStats,
			ReferrerStats:    referrers.sorted(0),
			RecentClicks:     reverseClicks(recent),
		},
	}, nil
}

func normalizeReferrer(referrer string) string {
	if referrer == "" {
		return directReferrer
	}
	return referrer
}

// categoryCounter counts occurrences while remembering first-encounter
// order, which breaks ties stably when sorting by count.
type categoryCounter struct {
	counts map[string]int64
	order  []string
}

func newCategoryCounter() *categoryCounter {
	return &categoryCounter{counts: make(map[string]int64)}
}

func (cc *categoryCounter) add(key string) {
	if _, seen := cc.counts[key]; !seen {
		cc.order = append(cc.order, key)
	}
	cc.counts[key]++
}

// sorted returns the categories by descending count, ties in
// first-encountered order. limit <= 0 means no cap.
func (cc *categoryCounter) sorted(limit int) []domain.ReferrerStats {
	stats := make([]domain.ReferrerStats, 0, len(cc.order))
	for _, key := range cc.order {
		stats = append(stats, domain.ReferrerStats{Referrer: key, Count: cc.counts[key]})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}

	return stats
}

func reverseClicks(clicks []domain.Click) []domain.Click {
	out := make([]domain.Click, len(clicks))
	for i, click := range clicks {
		out[len(clicks)-1-i] = click
	}
	return out
}

func reverseLinkClicks(clicks []domain.LinkClick) []domain.LinkClick {
	out := make([]domain.LinkClick, len(clicks))
	for i, click := range clicks {
		out[len(clicks)-1-i] = click
	}
	return out
}
