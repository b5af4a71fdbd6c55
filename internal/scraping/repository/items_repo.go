package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/listly/listly-backend/internal/scraping/domain"
)

var ErrDuplicateItem = errors.New("scraped item already exists")

const insertItem = `
	INSERT INTO scraped_data (
		id, project_id, user_id, url, title, description,
		image_url, price, email, phone, links, custom_data, scraped_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

// ItemRepository handles PostgreSQL operations for scraped items
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// CreateMany inserts all items in a single transaction. Either every item is
// stored or none is.
func (r *ItemRepository) CreateMany(ctx context.Context, items []domain.ScrapedItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return insertAll(ctx, tx, items)
	})
}

// ReplaceForProject swaps a project's items for a fresh scrape result.
func (r *ItemRepository) ReplaceForProject(ctx context.Context, projectID string, items []domain.ScrapedItem) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM scraped_data WHERE project_id = $1`, projectID); err != nil {
			return fmt.Errorf("failed to delete previous items: %w", err)
		}
		return insertAll(ctx, tx, items)
	})
}

func (r *ItemRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertAll(ctx context.Context, tx *sql.Tx, items []domain.ScrapedItem) error {
	if len(items) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, insertItem)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		customData := it.CustomData
		if customData == "" {
			customData = "{}"
		}
		_, err := stmt.ExecContext(ctx,
			it.ID, it.ProjectID, it.UserID, it.URL, it.Title, it.Description,
			nullString(it.ImageURL), nullString(it.Price), nullString(it.Email), nullString(it.Phone),
			nullString(it.Links), customData, it.ScrapedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return fmt.Errorf("%w: %s", ErrDuplicateItem, it.ID)
			}
			return fmt.Errorf("failed to insert item %s: %w", it.ID, err)
		}
	}
	return nil
}

// ListByProject returns a project's items, newest first.
func (r *ItemRepository) ListByProject(ctx context.Context, userID, projectID string) ([]domain.ScrapedItem, error) {
	query := `
		SELECT id, project_id, user_id, url, title, description,
		       image_url, price, email, phone, links, custom_data, scraped_at
		FROM scraped_data
		WHERE project_id = $1 AND user_id = $2
		ORDER BY scraped_at DESC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []domain.ScrapedItem{}
	for rows.Next() {
		var it domain.ScrapedItem
		var imageURL, price, email, phone, links sql.NullString
		if err := rows.Scan(
			&it.ID, &it.ProjectID, &it.UserID, &it.URL, &it.Title, &it.Description,
			&imageURL, &price, &email, &phone, &links, &it.CustomData, &it.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		it.ImageURL = stringPtr(imageURL)
		it.Price = stringPtr(price)
		it.Email = stringPtr(email)
		it.Phone = stringPtr(phone)
		it.Links = stringPtr(links)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
