package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listly/listly-backend/internal/scraping/domain"
)

func setupItemRepo(t *testing.T) (*ItemRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewItemRepository(db), mock
}

func strp(s string) *string { return &s }

func sampleItems(now time.Time) []domain.ScrapedItem {
	return []domain.ScrapedItem{
		{ID: "email_1_0", ProjectID: "proj_1", UserID: "u1", URL: "https://x.example", Title: "a@x.example",
			Description: "Email address found on webpage", Email: strp("a@x.example"), CustomData: `{"type":"email"}`, ScrapedAt: now},
		{ID: "meta_1", ProjectID: "proj_1", UserID: "u1", URL: "https://x.example", Title: "Page Metadata", ScrapedAt: now},
	}
}

func TestItemRepository_CreateMany(t *testing.T) {
	now := time.Now()

	t.Run("inserts all items in one transaction", func(t *testing.T) {
		repo, mock := setupItemRepo(t)

		mock.ExpectBegin()
		prep := mock.ExpectPrepare(`INSERT INTO scraped_data`)
		prep.ExpectExec().
			WithArgs("email_1_0", "proj_1", "u1", "https://x.example", "a@x.example", "Email address found on webpage",
				nil, nil, "a@x.example", nil, nil, `{"type":"email"}`, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		prep.ExpectExec().
			WithArgs("meta_1", "proj_1", "u1", "https://x.example", "Page Metadata", "",
				nil, nil, nil, nil, nil, "{}", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.CreateMany(context.Background(), sampleItems(now)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		repo, mock := setupItemRepo(t)

		mock.ExpectBegin()
		prep := mock.ExpectPrepare(`INSERT INTO scraped_data`)
		prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
		prep.ExpectExec().WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err := repo.CreateMany(context.Background(), sampleItems(now))
		assert.ErrorIs(t, err, ErrDuplicateItem)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no items is a no-op", func(t *testing.T) {
		repo, mock := setupItemRepo(t)
		require.NoError(t, repo.CreateMany(context.Background(), nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestItemRepository_ReplaceForProject(t *testing.T) {
	repo, mock := setupItemRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM scraped_data WHERE project_id = \$1`).
		WithArgs("proj_1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	prep := mock.ExpectPrepare(`INSERT INTO scraped_data`)
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceForProject(context.Background(), "proj_1", sampleItems(now)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_ListByProject(t *testing.T) {
	repo, mock := setupItemRepo(t)
	now := time.Now()

	cols := []string{"id", "project_id", "user_id", "url", "title", "description",
		"image_url", "price", "email", "phone", "links", "custom_data", "scraped_at"}
	mock.ExpectQuery(`SELECT (.+) FROM scraped_data`).
		WithArgs("proj_1", "u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("price_1_0", "proj_1", "u1", "https://x.example", "$5.00", "Price information found on webpage",
				nil, "$5.00", nil, nil, nil, `{"type":"price","price":"$5.00"}`, now).
			AddRow("link_1_0", "proj_1", "u1", "https://x.example", "A", "Link to: https://a.example",
				nil, nil, nil, nil, `[{"url":"https://a.example","text":"A"}]`, `{}`, now))

	items, err := repo.ListByProject(context.Background(), "u1", "proj_1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NotNil(t, items[0].Price)
	assert.Equal(t, "$5.00", *items[0].Price)
	assert.Nil(t, items[0].Email)
	assert.Nil(t, items[0].Links)
	require.NotNil(t, items[1].Links)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_ListByProject_Empty(t *testing.T) {
	repo, mock := setupItemRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM scraped_data`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, err := repo.ListByProject(context.Background(), "u1", "proj_1")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
