package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ejtx16/shrink-iq-web-app/internal/domain"
	"github.com/ejtx16/shrink-iq-web-app/tests/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://localhost:8080"

func newTestService(links *mocks.MockLinkRepository, cache *mocks.MockLinkCache) *ShortenerService {
	return NewShortenerService(links, cache, testBaseURL)
}

func TestShortenLink_GeneratedCode(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	links.On("CodeInUse", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	links.On("Create", ctx, mock.MatchedBy(func(link *domain.Link) bool {
		return link.OriginalURL == "https://example.com" &&
			len(link.ShortCode) == 7 &&
			link.CustomSlug == nil &&
			link.UserID == nil
	})).Return(nil).Once()

	result, err := svc.ShortenLink(ctx, &domain.CreateLinkRequest{OriginalURL: "https://example.com"}, nil)

	require.NoError(t, err)
	assert.Len(t, result.ShortCode, 7)
	assert.Equal(t, testBaseURL+"/"+result.ShortCode, result.ShortURL)
	links.AssertExpectations(t)
}

func TestShortenLink_DefaultExpiryIsOneYear(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	links.On("CodeInUse", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	links.On("Create", ctx, mock.MatchedBy(func(link *domain.Link) bool {
		return link.ExpiresAt.Equal(now.Add(365 * 24 * time.Hour))
	})).Return(nil).Once()

	_, err := svc.ShortenLink(ctx, &domain.CreateLinkRequest{OriginalURL: "https://example.com"}, nil)

	require.NoError(t, err)
	links.AssertExpectations(t)
}

func TestShortenLink_OwnedLink(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()
	ownerID := uuid.New()

	links.On("CodeInUse", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	links.On("Create", ctx, mock.MatchedBy(func(link *domain.Link) bool {
		return link.UserID != nil && *link.UserID == ownerID
	})).Return(nil).Once()

	_, err := svc.ShortenLink(ctx, &domain.CreateLinkRequest{OriginalURL: "https://example.com"}, &ownerID)

	require.NoError(t, err)
	links.AssertExpectations(t)
}

func TestShortenLink_CustomSlug(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	links.On("CodeInUse", ctx, "promo").Return(false, nil).Once()
	links.On("Create", ctx, mock.MatchedBy(func(link *domain.Link) bool {
		return link.ShortCode == "promo" &&
			link.CustomSlug != nil && *link.CustomSlug == "promo"
	})).Return(nil).Once()

	result, err := svc.ShortenLink(ctx, &domain.CreateLinkRequest{
		OriginalURL: "https://example.com",
		CustomSlug:  "promo",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "promo", result.ShortCode)
	links.AssertExpectations(t)
}

func TestShortenLink_InvalidSlugShape(t *testing.T) {
	svc := newTestService(new(mocks.MockLinkRepository), new(mocks.MockLinkCache))

	for _, slug := range []string{"ab", "has space", "api"} {
		_, err := svc.ShortenLink(context.Background(), &domain.CreateLinkRequest{
			OriginalURL: "https://example.com",
			CustomSlug:  slug,
		}, nil)

		assert.ErrorIs(t, err, domain.ErrInvalidSlug, "slug %q", slug)
	}
}

func TestShortenLink_SlugTaken_PreCheck(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	links.On("CodeInUse", ctx, "promo").Return(true, nil).Once()

	_, err := svc.ShortenLink(ctx, &domain.CreateLinkRequest{
		OriginalURL: "https://example.com",
		CustomSlug:  "promo",
	}, nil)

	assert.ErrorIs(t, err, domain.ErrSlugTaken)
	links.AssertNotCalled(t, "Create")
}

func TestShortenLink_SlugTaken_LostRaceOnInsert(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	links.On("CodeInUse", ctx, "promo").Return(false, nil).Once()
	links.On("Create", ctx, mock.AnythingOfType("*domain.Link")).Return(domain.ErrCodeTaken).Once()

	_, err := svc.ShortenLink(ctx, &domain.CreateLinkRequest{
		OriginalURL: "https://example.com",
		CustomSlug:  "promo",
	}, nil)

	assert.ErrorIs(t, err, domain.ErrSlugTaken)
	links.AssertNumberOfCalls(t, "Create", 1)
}

func TestShortenLink_GeneratedCode_RetriesOnCollision(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	// First candidate is reported in use, second passes the pre-check but
	// loses the insert race, third succeeds.
	links.On("CodeInUse", ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
	links.On("CodeInUse", ctx, mock.AnythingOfType("string")).Return(false, nil).Twice()
	links.On("Create", ctx, mock.AnythingOfType("*domain.Link")).Return(domain.ErrCodeTaken).Once()
	links.On("Create", ctx, mock.AnythingOfType("*domain.Link")).Return(nil).Once()

	result, err := svc.ShortenLink(ctx, &domain.CreateLinkRequest{OriginalURL: "https://example.com"}, nil)

	require.NoError(t, err)
	assert.NotNil(t, result)
	links.AssertNumberOfCalls(t, "CodeInUse", 3)
	links.AssertNumberOfCalls(t, "Create", 2)
}

func TestShortenLink_GeneratedCode_GivesUpAfterMaxAttempts(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	links.On("CodeInUse", ctx, mock.AnythingOfType("string")).Return(true, nil).Times(maxCodeAttempts)

	_, err := svc.ShortenLink(ctx, &domain.CreateLinkRequest{OriginalURL: "https://example.com"}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to allocate short code")
	links.AssertNotCalled(t, "Create")
}

func TestShortenLink_StorageError(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	links.On("CodeInUse", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	links.On("Create", ctx, mock.AnythingOfType("*domain.Link")).Return(errors.New("connection refused")).Once()

	_, err := svc.ShortenLink(ctx, &domain.CreateLinkRequest{OriginalURL: "https://example.com"}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create short url")
	links.AssertNumberOfCalls(t, "Create", 1)
}

func TestResolve_FromCache(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	cached := &domain.Link{
		ID:          uuid.New(),
		ShortCode:   "abc1234",
		OriginalURL: "https://example.com",
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	cache.On("GetLink", ctx, "abc1234").Return(cached, nil).Once()

	link, err := svc.Resolve(ctx, "abc1234")

	require.NoError(t, err)
	assert.Equal(t, cached.OriginalURL, link.OriginalURL)
	links.AssertNotCalled(t, "GetByCode")
}

func TestResolve_CacheMissFallsBackToStore(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	stored := &domain.Link{
		ID:          uuid.New(),
		ShortCode:   "abc1234",
		OriginalURL: "https://example.com",
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	cache.On("GetLink", ctx, "abc1234").Return(nil, errors.New("cache miss")).Once()
	links.On("GetByCode", ctx, "abc1234").Return(stored, nil).Once()
	cache.On("SetLink", mock.Anything, stored, mock.AnythingOfType("time.Duration")).Return(nil).Maybe()

	link, err := svc.Resolve(ctx, "abc1234")

	require.NoError(t, err)
	assert.Equal(t, stored.ID, link.ID)
	links.AssertExpectations(t)
}

func TestResolve_NotFound(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	cache.On("GetLink", ctx, "missing").Return(nil, errors.New("cache miss")).Once()
	links.On("GetByCode", ctx, "missing").Return(nil, domain.ErrNotFound).Once()

	_, err := svc.Resolve(ctx, "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_Expired(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	expired := &domain.Link{
		ID:          uuid.New(),
		ShortCode:   "old1234",
		OriginalURL: "https://example.com",
		ExpiresAt:   time.Now().Add(-time.Hour),
	}

	cache.On("GetLink", ctx, "old1234").Return(expired, nil).Once()

	_, err := svc.Resolve(ctx, "old1234")

	assert.ErrorIs(t, err, domain.ErrExpired)
	// Expired resolution must not touch the click log.
	links.AssertNotCalled(t, "AppendClick")
}

func TestListLinks_PaginationMath(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()
	ownerID := uuid.New()

	stored := make([]domain.Link, 10)
	for i := range stored {
		stored[i] = domain.Link{ID: uuid.New(), ShortCode: "code", OriginalURL: "https://example.com"}
	}

	links.On("ListByOwner", ctx, ownerID, 2, 10).Return(stored, int64(25), nil).Once()

	page, err := svc.ListLinks(ctx, ownerID, 2, 10)

	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, int64(25), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.Pages)
	assert.Equal(t, 2, page.Pagination.Page)
}

func TestGetLink_IncludesRecentClicks(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()
	ownerID := uuid.New()

	link := &domain.Link{ID: uuid.New(), ShortCode: "abc1234", OriginalURL: "https://example.com", ClickCount: 2}
	clicks := []domain.Click{
		{Timestamp: time.Now(), IP: "192.0.2.1", UserAgent: "curl/8.4.0"},
		{Timestamp: time.Now().Add(-time.Minute), IP: "192.0.2.2", UserAgent: "curl/8.4.0"},
	}

	links.On("GetByID", ctx, link.ID, ownerID).Return(link, nil).Once()
	links.On("ListRecentClicks", ctx, link.ID, detailClickLimit).Return(clicks, nil).Once()

	detail, err := svc.GetLink(ctx, link.ID, ownerID)

	require.NoError(t, err)
	assert.Len(t, detail.Clicks, 2)
	assert.Equal(t, int64(2), detail.ClickCount)
}

func TestGetLink_NotOwnedReadsAsNotFound(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	id, ownerID := uuid.New(), uuid.New()
	links.On("GetByID", ctx, id, ownerID).Return(nil, domain.ErrNotFound).Once()

	_, err := svc.GetLink(ctx, id, ownerID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteLink_InvalidatesCache(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()
	ownerID := uuid.New()

	link := &domain.Link{ID: uuid.New(), ShortCode: "abc1234"}

	links.On("GetByID", ctx, link.ID, ownerID).Return(link, nil).Once()
	links.On("Delete", ctx, link.ID, ownerID).Return(nil).Once()
	cache.On("InvalidateLink", ctx, link).Return(nil).Once()

	err := svc.DeleteLink(ctx, link.ID, ownerID)

	require.NoError(t, err)
	links.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestDeleteLink_SecondDeleteReportsNotFound(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	id, ownerID := uuid.New(), uuid.New()
	links.On("GetByID", ctx, id, ownerID).Return(nil, domain.ErrNotFound).Once()

	err := svc.DeleteLink(ctx, id, ownerID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	cache.AssertNotCalled(t, "InvalidateLink")
}

func TestRecordClick_DelegatesToStore(t *testing.T) {
	links := new(mocks.MockLinkRepository)
	cache := new(mocks.MockLinkCache)
	svc := newTestService(links, cache)
	ctx := context.Background()

	id := uuid.New()
	click := &domain.Click{Timestamp: time.Now(), IP: "192.0.2.1", UserAgent: "curl/8.4.0"}

	links.On("AppendClick", ctx, id, click).Return(nil).Once()

	require.NoError(t, svc.RecordClick(ctx, id, click))
	links.AssertExpectations(t)
}
