package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/target/content-portal/internal/domain/model"
	"github.com/target/content-portal/internal/ports"
)

var _ ports.ContentRepository = (*ContentRepo)(nil)

const contentColumns = `id, title, description, content_type, url, enabled, deleted, created_by, created_at`

// ContentRepo provides database operations for content items.
type ContentRepo struct {
	DB *sql.DB
}

// NewContentRepo creates a new ContentRepo.
func NewContentRepo(db *sql.DB) *ContentRepo {
	return &ContentRepo{DB: db}
}

// Create inserts item and returns the stored row.
func (r *ContentRepo) Create(ctx context.Context, item model.ContentItem) (model.ContentItem, error) {
	if r.DB == nil {
		return model.ContentItem{}, ErrDBRequired
	}
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO content_items (`+contentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8)
		RETURNING `+contentColumns,
		item.ID,
		item.Title,
		item.Description,
		string(item.ContentType),
		item.URL,
		item.Status.Enabled,
		item.CreatedBy,
		item.CreatedAt,
	)
	out, err := scanContent(row)
	if err != nil {
		return model.ContentItem{}, fmt.Errorf("insert content item: %w", err)
	}
	return out, nil
}

// List returns non-deleted items newest first.
func (r *ContentRepo) List(ctx context.Context, onlyEnabled bool) ([]model.ContentItem, error) {
	if r.DB == nil {
		return nil, ErrDBRequired
	}
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE NOT deleted`
	if onlyEnabled {
		query += ` AND enabled`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ContentItem
	for rows.Next() {
		item, scanErr := scanContent(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan content item: %w", scanErr)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content items: %w", err)
	}
	return out, nil
}

// SetEnabled toggles visibility of a non-deleted item.
func (r *ContentRepo) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return r.updateOne(ctx, "set content status",
		`UPDATE content_items SET enabled = $2 WHERE id = $1 AND NOT deleted`, id, enabled)
}

// SoftDelete marks an item deleted and disabled.
func (r *ContentRepo) SoftDelete(ctx context.Context, id string) error {
	return r.updateOne(ctx, "delete content item",
		`UPDATE content_items SET deleted = TRUE, enabled = FALSE WHERE id = $1 AND NOT deleted`, id)
}

func (r *ContentRepo) updateOne(ctx context.Context, op, query string, args ...any) error {
	if r.DB == nil {
		return ErrDBRequired
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrContentNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(s rowScanner) (model.ContentItem, error) {
	var (
		item        model.ContentItem
		contentType string
	)
	err := s.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&contentType,
		&item.URL,
		&item.Status.Enabled,
		&item.Status.Deleted,
		&item.CreatedBy,
		&item.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ContentItem{}, ErrContentNotFound
	}
	if err != nil {
		return model.ContentItem{}, err
	}
	item.ContentType = model.ContentType(contentType)
	item.CreatedAt = item.CreatedAt.UTC()
	return item, nil
}
