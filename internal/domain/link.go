package domain

import (
	"time"

	"github.com/google/uuid"
)

// Link maps a short code to a destination URL. When a custom slug is used,
// ShortCode holds the same value, so the short_code unique index is the
// single arbiter of the shared code/slug namespace.
type Link struct {
	ID          uuid.UUID  `json:"id"`
	OriginalURL string     `json:"originalUrl"`
	ShortCode   string     `json:"shortCode"`
	CustomSlug  *string    `json:"customSlug,omitempty"`
	UserID      *uuid.UUID `json:"userId,omitempty"`
	ClickCount  int64      `json:"clickCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ExpiresAt   time.Time  `json:"expiresAt"`
}

// Expired reports whether the link has lapsed. Expired links still resolve
// to a distinct state (HTTP 410), they are never silently dropped.
func (l *Link) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// Click is one recorded visit. Immutable once appended; insertion order is
// chronological order.
type Click struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer"`
}

// LinkClick annotates a click with the link it belongs to, used for
// owner-wide analytics scans.
type LinkClick struct {
	Click
	URLID uuid.UUID `json:"urlId"`
}

type CreateLinkRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,httpurl"`
	CustomSlug  string `json:"customSlug,omitempty" validate:"omitempty,min=3,max=50,slug"`
}

// LinkSummary is the wire shape returned by create/list, clicks excluded.
type LinkSummary struct {
	ID          uuid.UUID `json:"id"`
	OriginalURL string    `json:"originalUrl"`
	ShortCode   string    `json:"shortCode"`
	ShortURL    string    `json:"shortUrl"`
	CustomSlug  *string   `json:"customSlug,omitempty"`
	ClickCount  int64     `json:"clickCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// LinkDetail is LinkSummary plus the most recent clicks.
type LinkDetail struct {
	LinkSummary
	Clicks []Click `json:"clicks"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type LinkPage struct {
	Items      []LinkSummary `json:"items"`
	Pagination Pagination    `json:"pagination"`
}
