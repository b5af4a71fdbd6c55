package history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listly/listly-backend/internal/auth"
)

type memStore struct {
	mu      sync.Mutex
	entries []Entry
	err     error
	lastF   Filter
}

func (m *memStore) Insert(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	e.CreatedAt = time.Now().Add(time.Duration(len(m.entries)) * time.Millisecond)
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memStore) List(_ context.Context, userID string, f Filter) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastF = f
	out := []Entry{}
	for _, e := range m.entries {
		if e.UserID == userID && (f.Kind == "" || e.Kind == f.Kind) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func TestService_RecordAndList(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	svc.Record(ctx, Entry{UserID: "u1", ProjectID: "p1", Kind: KindScrape, Status: StatusCompleted, ItemCount: 3})
	svc.Record(ctx, Entry{UserID: "u1", ProjectID: "p1", Kind: KindExport, Status: StatusCompleted, Format: "csv", Detail: strings.Repeat("x", 2000)})
	svc.Record(ctx, Entry{UserID: "u2", ProjectID: "p9", Kind: KindScrape, Status: StatusFailed})

	all, err := svc.List(ctx, "u1", Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, KindExport, all[0].Kind)
	assert.Len(t, all[0].Detail, 1000)
	_, err = uuid.Parse(all[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, DefaultLimit, store.lastF.Limit)

	scrapes, err := svc.List(ctx, "u1", Filter{Kind: " SCRAPE ", Limit: 500})
	require.NoError(t, err)
	require.Len(t, scrapes, 1)
	assert.Equal(t, MaxLimit, store.lastF.Limit)

	_, err = svc.List(ctx, "u1", Filter{Kind: "crawl"})
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestService_RecordTruncatesOnRuneBoundary(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)

	svc.Record(context.Background(), Entry{UserID: "u1", Kind: KindScrape, Status: StatusFailed,
		Detail: strings.Repeat("a", 999) + "é"})
	require.Len(t, store.entries, 1)
	got := store.entries[0].Detail
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 999), got)

	assert.Equal(t, "日本", truncate("日本語", 8))
	assert.Equal(t, "short", truncate("short", 1000))
}

func TestService_RecordSwallowsErrors(t *testing.T) {
	svc := NewService(&memStore{err: errors.New("db down")})
	assert.NotPanics(t, func() {
		svc.Record(context.Background(), Entry{UserID: "u1", Kind: KindScrape})
	})
}

func TestHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &memStore{}
	svc := NewService(store)
	svc.Record(context.Background(), Entry{UserID: "user123", ProjectID: "p1", Kind: KindScrape, Status: StatusCompleted})

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(auth.CtxFirebaseUID, "user123") })
	NewHandler(svc).Register(r.Group("/api/v1"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/history?kind=scrape&limit=10", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		OK      bool    `json:"ok"`
		History []Entry `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.OK)
	require.Len(t, body.History, 1)
	assert.Equal(t, "p1", body.History[0].ProjectID)
	assert.Equal(t, 10, store.lastF.Limit)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/history?kind=nope", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
