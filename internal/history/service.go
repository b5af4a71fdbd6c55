package history

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/listly/listly-backend/internal/logging"
)

// Store is implemented by *Repo.
type Store interface {
	Insert(ctx context.Context, e *Entry) error
	List(ctx context.Context, userID string, f Filter) ([]Entry, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Record stores e with a fresh id. History is best effort: failures are
// logged and never fail the operation being recorded.
func (s *Service) Record(ctx context.Context, e Entry) {
	e.ID = uuid.New().String()
	e.Detail = truncate(e.Detail, maxDetailBytes)
	if err := s.store.Insert(ctx, &e); err != nil {
		logging.FromContext(ctx).LogError("record_history", err,
			zap.String("project_id", e.ProjectID), zap.String("kind", e.Kind))
	}
}

const maxDetailBytes = 1000

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (s *Service) List(ctx context.Context, userID string, f Filter) ([]Entry, error) {
	f.Kind = strings.ToLower(strings.TrimSpace(f.Kind))
	if !validKind(f.Kind) {
		return nil, ErrInvalidKind
	}
	f.Limit = ClampLimit(f.Limit)
	return s.store.List(ctx, userID, f)
}
