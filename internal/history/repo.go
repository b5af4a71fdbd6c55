package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Insert(ctx context.Context, e *Entry) error {
	const q = `
insert into scrape_history (id, user_id, project_id, kind, status, item_count, format, detail)
values ($1, $2, $3, $4, $5, $6, $7, $8)
returning created_at;
`
	if err := r.db.QueryRow(ctx, q,
		e.ID, e.UserID, e.ProjectID, e.Kind, e.Status, e.ItemCount, e.Format, e.Detail,
	).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (r *Repo) List(ctx context.Context, userID string, f Filter) ([]Entry, error) {
	const q = `
select id::text, user_id, project_id, kind, status, item_count, format, detail, created_at
from scrape_history
where user_id = $1 and ($2 = '' or kind = $2)
order by created_at desc
limit $3;
`
	rows, err := r.db.Query(ctx, q, userID, f.Kind, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.ID, &e.UserID, &e.ProjectID, &e.Kind, &e.Status, &e.ItemCount, &e.Format, &e.Detail, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	return out, nil
}
