package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ejtx16/shrink-iq-web-app/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type LinkRepository struct {
	db *pgxpool.Pool
}

func NewLinkRepository(db *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{db: db}
}

const linkColumns = `id, original_url, short_code, custom_slug, user_id, click_count, created_at, updated_at, expires_at`

func scanLink(row pgx.Row) (*domain.Link, error) {
	var link domain.Link
	err := row.Scan(
		&link.ID,
		&link.OriginalURL,
		&link.ShortCode,
		&link.CustomSlug,
		&link.UserID,
		&link.ClickCount,
		&link.CreatedAt,
		&link.UpdatedAt,
		&link.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// Create inserts a new link. The short_code unique index is the final
// arbiter of the code/slug namespace; violations surface as ErrCodeTaken
// so the service can regenerate or report the slug as taken.
func (r *LinkRepository) Create(ctx context.Context, link *domain.Link) error {
	query := `
		INSERT INTO urls (id, original_url, short_code, custom_slug, user_id, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		link.ID,
		link.OriginalURL,
		link.ShortCode,
		link.CustomSlug,
		link.UserID,
		link.ExpiresAt,
	).Scan(&link.CreatedAt, &link.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation &&
		(strings.Contains(pgErr.ConstraintName, "short_code") || strings.Contains(pgErr.ConstraintName, "custom_slug")) {
		return domain.ErrCodeTaken
	}

	return err
}

// GetByCode matches either the short code or the custom slug. Expiry is not
// filtered here: the service distinguishes expired from absent.
func (r *LinkRepository) GetByCode(ctx context.Context, code string) (*domain.Link, error) {
	query := fmt.Sprintf(`SELECT %s FROM urls WHERE short_code = $1 OR custom_slug = $1`, linkColumns)
	return scanLink(r.db.QueryRow(ctx, query, code))
}

// GetByID is ownership-scoped: a link owned by someone else reads as absent.
func (r *LinkRepository) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Link, error) {
	query := fmt.Sprintf(`SELECT %s FROM urls WHERE id = $1 AND user_id = $2`, linkColumns)
	return scanLink(r.db.QueryRow(ctx, query, id, ownerID))
}

// CodeInUse is the allocator's pre-insert check against the combined
// code/slug namespace. It is an optimization only; Create still enforces
// uniqueness under races.
func (r *LinkRepository) CodeInUse(ctx context.Context, code string) (bool, error) {
	var inUse bool
	query := `SELECT EXISTS (SELECT 1 FROM urls WHERE short_code = $1 OR custom_slug = $1)`
	if err := r.db.QueryRow(ctx, query, code).Scan(&inUse); err != nil {
		return false, err
	}
	return inUse, nil
}

func (r *LinkRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]domain.Link, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM urls WHERE user_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM urls
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, linkColumns)

	rows, err := r.db.Query(ctx, query, ownerID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, 0, err
		}
		links = append(links, *link)
	}

	return links, total, rows.Err()
}

// AppendClick increments click_count and appends the click in a single
// transaction, so the count and the log can never drift apart even under
// concurrent redirects on the same link.
func (r *LinkRepository) AppendClick(ctx context.Context, id uuid.UUID, click *domain.Click) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE urls
		SET click_count = click_count + 1, updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO url_clicks (url_id, clicked_at, ip, user_agent, referrer)
		VALUES ($1, $2, $3, $4, $5)
	`, id, click.Timestamp, click.IP, click.UserAgent, click.Referrer)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *LinkRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM urls WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListClicks returns a link's full click log in chronological order.
func (r *LinkRepository) ListClicks(ctx context.Context, id uuid.UUID) ([]domain.Click, error) {
	rows, err := r.db.Query(ctx, `
		SELECT clicked_at, ip, user_agent, referrer
		FROM url_clicks
		WHERE url_id = $1
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clicks []domain.Click
	for rows.Next() {
		var click domain.Click
		if err := rows.Scan(&click.Timestamp, &click.IP, &click.UserAgent, &click.Referrer); err != nil {
			return nil, err
		}
		clicks = append(clicks, click)
	}

	return clicks, rows.Err()
}

// ListRecentClicks returns up to limit clicks for a link, newest first.
func (r *LinkRepository) ListRecentClicks(ctx context.Context, id uuid.UUID, limit int) ([]domain.Click, error) {
	rows, err := r.db.Query(ctx, `
		SELECT clicked_at, ip, user_agent, referrer
		FROM url_clicks
		WHERE url_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clicks []domain.Click
	for rows.Next() {
		var click domain.Click
		if err := rows.Scan(&click.Timestamp, &click.IP, &click.UserAgent, &click.Referrer); err != nil {
			return nil, err
		}
		clicks = append(clicks, click)
	}

	return clicks, rows.Err()
}

// ListOwnerClicks returns every click across all links an owner has, in
// chronological order, each annotated with the owning link id.
func (r *LinkRepository) ListOwnerClicks(ctx context.Context, ownerID uuid.UUID) ([]domain.LinkClick, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.url_id, c.clicked_at, c.ip, c.user_agent, c.referrer
		FROM url_clicks c
		JOIN urls u ON u.id = c.url_id
		WHERE u.user_id = $1
		ORDER BY c.id ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clicks []domain.LinkClick
	for rows.Next() {
		var click domain.LinkClick
		if err := rows.Scan(&click.URLID, &click.Timestamp, &click.IP, &click.UserAgent, &click.Referrer); err != nil {
			return nil, err
		}
		clicks = append(clicks, click)
	}

	return clicks, rows.Err()
}

// OwnerTotals returns how many links an owner has and the sum of their
// click counters.
func (r *LinkRepository) OwnerTotals(ctx context.Context, ownerID uuid.UUID) (totalURLs, totalClicks int64, err error) {
	query := `SELECT COUNT(*), COALESCE(SUM(click_count), 0) FROM urls WHERE user_id = $1`
	err = r.db.QueryRow(ctx, query, ownerID).Scan(&totalURLs, &totalClicks)
	return totalURLs, totalClicks, err
}
