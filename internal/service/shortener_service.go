package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ejtx16/shrink-iq-web-app/internal/domain"
	"github.com/ejtx16/shrink-iq-web-app/internal/logger"
	"github.com/ejtx16/shrink-iq-web-app/pkg/generator"
	"github.com/ejtx16/shrink-iq-web-app/pkg/validator"
	"github.com/google/uuid"
)

const (
	// Collisions on 7-char random codes are astronomically rare; the cap
	// guards against pathological storage states, not expected traffic.
	maxCodeAttempts = 10

	defaultLinkTTL = 365 * 24 * time.Hour

	detailClickLimit = 50
)

type LinkRepository interface {
	Create(ctx context.Context, link *domain.Link) error
	GetByCode(ctx context.Context, code string) (*domain.Link, error)
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Link, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]domain.Link, int64, error)
	AppendClick(ctx context.Context, id uuid.UUID, click *domain.Click) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	ListRecentClicks(ctx context.Context, id uuid.UUID, limit int) ([]domain.Click, error)
}

type LinkCache interface {
	GetLink(ctx context.Context, code string) (*domain.Link, error)
	SetLink(ctx context.Context, link *domain.Link, ttl time.Duration) error
	InvalidateLink(ctx context.Context, link *domain.Link) error
}

type ShortenerService struct {
	links   LinkRepository
	cache   LinkCache
	baseURL string
	now     func() time.Time
}

func NewShortenerService(links LinkRepository, cache LinkCache, baseURL string) *ShortenerService {
	return &ShortenerService{
		links:   links,
		cache:   cache,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// ShortenLink creates a link for the given destination. ownerID is nil for
// anonymous submissions. Custom slugs share one uniqueness namespace with
// generated codes; the storage unique index is the final arbiter and the
// availability pre-check is only an optimization.
func (s *ShortenerService) ShortenLink(ctx context.Context, req *domain.CreateLinkRequest, ownerID *uuid.UUID) (*domain.LinkSummary, error) {
	if req.CustomSlug != "" {
		return s.createWithSlug(ctx, req.OriginalURL, req.CustomSlug, ownerID)
	}
	return s.createWithGeneratedCode(ctx, req.OriginalURL, ownerID)
}

func (s *ShortenerService) createWithSlug(ctx context.Context, originalURL, slug string, ownerID *uuid.UUID) (*domain.LinkSummary, error) {
	if !generator.ValidSlug(slug) || validator.IsReservedSlug(slug) {
		return nil, domain.ErrInvalidSlug
	}

	inUse, err := s.links.CodeInUse(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug availability: %w", err)
	}
	if inUse {
		return nil, domain.ErrSlugTaken
	}

	link := s.newLink(originalURL, slug, ownerID)
	link.CustomSlug = &slug

	if err := s.links.Create(ctx, link); err != nil {
		// Lost the race after the pre-check: the slug is taken, not retried.
		if errors.Is(err, domain.ErrCodeTaken) {
			return nil, domain.ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create short url: %w", err)
	}

	return s.summary(link), nil
}

func (s *ShortenerService) createWithGeneratedCode(ctx context.Context, originalURL string, ownerID *uuid.UUID) (*domain.LinkSummary, error) {
	var lastErr error

	for i := 0; i < maxCodeAttempts; i++ {
		code, err := generator.GenerateShortCode()
		if err != nil {
			return nil, err
		}

		inUse, err := s.links.CodeInUse(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check code availability: %w", err)
		}
		if inUse {
			lastErr = domain.ErrCodeTaken
			continue
		}

		link := s.newLink(originalURL, code, ownerID)

		err = s.links.Create(ctx, link)
		if err == nil {
			return s.summary(link), nil
		}
		if errors.Is(err, domain.ErrCodeTaken) {
			// Concurrent insert claimed the code first; generate a new one.
			lastErr = err
			continue
		}

		return nil, fmt.Errorf("failed to create short url: %w", err)
	}

	return nil, fmt.Errorf("failed to allocate short code after %d attempts: %w", maxCodeAttempts, lastErr)
}

func (s *ShortenerService) newLink(originalURL, code string, ownerID *uuid.UUID) *domain.Link {
	return &domain.Link{
		ID:          uuid.New(),
		OriginalURL: originalURL,
		ShortCode:   code,
		UserID:      ownerID,
		ExpiresAt:   s.now().Add(defaultLinkTTL),
	}
}

// Resolve maps a public code to its link for redirection. Expired links
// yield ErrExpired, distinct from ErrNotFound.
func (s *ShortenerService) Resolve(ctx context.Context, code string) (*domain.Link, error) {
	link, err := s.cache.GetLink(ctx, code)
	if err != nil || link == nil {
		link, err = s.links.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("failed to resolve short code: %w", err)
		}

		go func() {
			if err := s.cache.SetLink(context.Background(), link, 24*time.Hour); err != nil {
				logger.Get().Warn("Failed to cache link", "short_code", link.ShortCode, "error", err)
			}
		}()
	}

	if link.Expired(s.now()) {
		return nil, domain.ErrExpired
	}

	return link, nil
}

// RecordClick appends one click to a link's log. The storage layer moves
// the counter and the log together; loss here is the caller's policy call.
func (s *ShortenerService) RecordClick(ctx context.Context, id uuid.UUID, click *domain.Click) error {
	return s.links.AppendClick(ctx, id, click)
}

func (s *ShortenerService) ListLinks(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.LinkPage, error) {
	links, total, err := s.links.ListByOwner(ctx, ownerID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	items := make([]domain.LinkSummary, 0, len(links))
	for i := range links {
		items = append(items, *s.summary(&links[i]))
	}

	pages := int((total + int64(limit) - 1) / int64(limit))

	return &domain.LinkPage{
		Items: items,
		Pagination: domain.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// GetLink returns an owned link with its most recent clicks. Absent and
// not-owned are indistinguishable on purpose.
func (s *ShortenerService) GetLink(ctx context.Context, id, ownerID uuid.UUID) (*domain.LinkDetail, error) {
	link, err := s.links.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	clicks, err := s.links.ListRecentClicks(ctx, id, detailClickLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load clicks: %w", err)
	}
	if clicks == nil {
		clicks = []domain.Click{}
	}

	return &domain.LinkDetail{
		LinkSummary: *s.summary(link),
		Clicks:      clicks,
	}, nil
}

// DeleteLink removes an owned link and its full click log irrevocably.
func (s *ShortenerService) DeleteLink(ctx context.Context, id, ownerID uuid.UUID) error {
	link, err := s.links.GetByID(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := s.links.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	if err := s.cache.InvalidateLink(ctx, link); err != nil {
		logger.FromContext(ctx).Warn("Failed to invalidate cached link",
			"short_code", link.ShortCode,
			"error", err,
		)
	}

	return nil
}

func (s *ShortenerService) summary(link *domain.Link) *domain.LinkSummary {
	return &domain.LinkSummary{
		ID:          link.ID,
		OriginalURL: link.OriginalURL,
		ShortCode:   link.ShortCode,
		ShortURL:    fmt.Sprintf("%s/%s", s.baseURL, link.ShortCode),
		CustomSlug:  link.CustomSlug,
		ClickCount:  link.ClickCount,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
		ExpiresAt:   link.ExpiresAt,
	}
}
