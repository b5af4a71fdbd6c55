package export

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/listly/listly-backend/internal/history"
	"github.com/listly/listly-backend/internal/logging"
	projectdomain "github.com/listly/listly-backend/internal/projects/domain"
	"github.com/listly/listly-backend/internal/scraping/domain"
)

var tracer = otel.Tracer("github.com/listly/listly-backend/internal/export")

type ProjectGetter interface {
	Get(ctx context.Context, userID, id string) (*projectdomain.Project, error)
}

type ItemLister interface {
	ListByProject(ctx context.Context, userID, projectID string) ([]domain.ScrapedItem, error)
}

type Recorder interface {
	Record(ctx context.Context, e history.Entry)
}

// File is an encoded export ready to be downloaded.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	Items       int
	// Key is the object key when the export was also stored.
	Key string
}

type Service struct {
	projects ProjectGetter
	items    ItemLister
	store    ObjectStore
	history  Recorder
	now      func() time.Time
}

// NewService creates the export service. store may be nil.
func NewService(projects ProjectGetter, items ItemLister, store ObjectStore, rec Recorder) *Service {
	return &Service{projects: projects, items: items, store: store, history: rec, now: time.Now}
}

// Export encodes all items of the user's project in format f.
func (s *Service) Export(ctx context.Context, userID, projectID string, f Format) (*File, error) {
	ctx, span := tracer.Start(ctx, "export.project")
	defer span.End()
	span.SetAttributes(attribute.String("project.id", projectID), attribute.String("export.format", string(f)))

	p, err := s.projects.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListByProject(ctx, userID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	data, err := Encode(f, items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.record(ctx, p, f, len(items), history.StatusFailed, err.Error())
		return nil, err
	}

	file := &File{
		Name:        FileName(p.Name, f),
		ContentType: f.ContentType(),
		Data:        data,
		Items:       len(items),
	}

	if s.store != nil {
		key := fmt.Sprintf("%s/%s/%d-%s", userID, p.ID, s.now().Unix(), file.Name)
		if err := s.store.Put(ctx, key, file.ContentType, data); err != nil {
			// The download still succeeds; only the stored copy is missing.
			logging.FromContext(ctx).LogWarn("export", "store export failed",
				zap.String("project_id", p.ID), zap.Error(err))
		} else {
			file.Key = key
		}
	}

	s.record(ctx, p, f, len(items), history.StatusCompleted, file.Key)
	span.SetAttributes(attribute.Int("export.items", len(items)), attribute.Int("export.bytes", len(data)))
	return file, nil
}

func (s *Service) record(ctx context.Context, p *projectdomain.Project, f Format, n int, status, detail string) {
	if s.history == nil {
		return
	}
	s.history.Record(ctx, history.Entry{
		UserID:    p.UserID,
		ProjectID: p.ID,
		Kind:      history.KindExport,
		Status:    status,
		ItemCount: n,
		Format:    string(f),
		Detail:    detail,
	})
}
