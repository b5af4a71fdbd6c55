package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/listly/listly-backend/internal/projects/domain"
)

// ProjectRepository provides persistence operations for scraping projects
type ProjectRepository struct {
	db *pgxpool.Pool
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, user_id, name, description, target_url, status,
total_items, scraped_items, data_types, render_js, created_at, updated_at`

// Create inserts p. When p.ID is empty an id is generated, retrying on
// unique violation.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	const q = `
insert into scraping_projects (id, user_id, name, description, target_url, status,
  total_items, scraped_items, data_types, render_js)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
returning created_at, updated_at;
`
	generate := p.ID == ""
	for i := 0; i < 5; i++ {
		if generate {
			id, err := domain.NewProjectID(time.Now())
			if err != nil {
				return err
			}
			p.ID = id
		}

		err := r.db.QueryRow(ctx, q,
			p.ID, p.UserID, p.Name, p.Description, p.TargetURL, p.Status,
			p.TotalItems, p.ScrapedItems, dataTypesToStrings(p.DataTypes), p.RenderJS,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
		if err == nil {
			return nil
		}

		// unique violation on id → retry
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if !generate {
				return domain.ErrProjectExists
			}
			continue
		}
		return fmt.Errorf("insert project: %w", err)
	}

	return fmt.Errorf("failed to generate unique project id")
}

// Get returns the project with id owned by userID.
func (r *ProjectRepository) Get(ctx context.Context, userID, id string) (*domain.Project, error) {
	q := `select ` + projectColumns + ` from scraping_projects where user_id = $1 and id = $2;`
	p, err := scanProject(r.db.QueryRow(ctx, q, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns all projects for the given user, newest first.
func (r *ProjectRepository) List(ctx context.Context, userID string) ([]domain.Project, error) {
	q := `select ` + projectColumns + ` from scraping_projects where user_id = $1 order by created_at desc;`
	return r.query(ctx, q, userID)
}

// ListStale returns projects stuck in running since before cutoff.
func (r *ProjectRepository) ListStale(ctx context.Context, cutoff time.Time) ([]domain.Project, error) {
	q := `select ` + projectColumns + ` from scraping_projects where status = $1 and updated_at < $2 order by updated_at;`
	return r.query(ctx, q, domain.StatusRunning, cutoff)
}

// SetStatus writes status, and the counts when given, if the stored status is still from.
func (r *ProjectRepository) SetStatus(ctx context.Context, id, from, to string, counts *domain.Counts) (*domain.Project, error) {
	q := `
update scraping_projects
set status = $3,
    total_items = coalesce($4, total_items),
    scraped_items = coalesce($5, scraped_items),
    updated_at = now()
where id = $1 and status = $2
returning ` + projectColumns + `;`

	var total, scraped *int
	if counts != nil {
		total, scraped = &counts.Total, &counts.Scraped
	}

	p, err := scanProject(r.db.QueryRow(ctx, q, id, from, to, total, scraped))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidTransition
		}
		return nil, err
	}
	return p, nil
}

// Update edits the user-facing fields.
func (r *ProjectRepository) Update(ctx context.Context, userID, id string, req domain.UpdateProjectRequest) (*domain.Project, error) {
	q := `
update scraping_projects
set name = coalesce($3, name),
    description = coalesce($4, description),
    updated_at = now()
where user_id = $1 and id = $2
returning ` + projectColumns + `;`

	p, err := scanProject(r.db.QueryRow(ctx, q, userID, id, req.Name, req.Description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

// Delete removes the project; scraped_data rows go with it via on delete cascade.
func (r *ProjectRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	const q = `delete from scraping_projects where user_id = $1 and id = $2;`
	ct, err := r.db.Exec(ctx, q, userID, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *ProjectRepository) query(ctx context.Context, q string, args ...any) ([]domain.Project, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	var types []string
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.TargetURL, &p.Status,
		&p.TotalItems, &p.ScrapedItems, &types, &p.RenderJS, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.DataTypes = make([]domain.DataType, 0, len(types))
	for _, t := range types {
		p.DataTypes = append(p.DataTypes, domain.DataType(t))
	}
	return &p, nil
}

func dataTypesToStrings(in []domain.DataType) []string {
	out := make([]string, 0, len(in))
	for _, dt := range in {
		out = append(out, string(dt))
	}
	return out
}
