package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lakeline-data/lakeline-go/internal/domain"
	"github.com/lakeline-data/lakeline-go/internal/platform/loadlog"
)

// LoadLog is the Postgres-backed load-log repository. Membership checks are
// scoped to the component so pipelines sharing one table do not
// cross-deduplicate.
type LoadLog struct {
	db        *sql.DB
	component string
}

func NewLoadLog(db *sql.DB, component string) (*LoadLog, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if strings.TrimSpace(component) == "" {
		return nil, errors.New("component is required")
	}
	return &LoadLog{db: db, component: component}, nil
}

// EnsureSchema creates the load_events table when missing.
func (l *LoadLog) EnsureSchema(ctx context.Context) error {
	return loadlog.EnsureSchema(ctx, l.db)
}

func (l *LoadLog) AlreadyLoaded(ctx context.Context, entityIDs []string) (map[string]struct{}, error) {
	if len(entityIDs) == 0 {
		return map[string]struct{}{}, nil
	}
	return loadlog.SelectLoaded(ctx, l.db, l.component, entityIDs)
}

func (l *LoadLog) LogRunStarted(ctx context.Context, event domain.LoadEvent) error {
	return l.append(ctx, event, domain.EventRun, domain.StatusStarted)
}

func (l *LoadLog) LogRunFinished(ctx context.Context, event domain.LoadEvent) error {
	if event.Status != domain.StatusSuccess && event.Status != domain.StatusFailure {
		return fmt.Errorf("run finish status must be terminal, got %q", event.Status)
	}
	return l.append(ctx, event, domain.EventRun, event.Status)
}

func (l *LoadLog) LogIngestSuccess(ctx context.Context, event domain.LoadEvent) error {
	return l.append(ctx, event, domain.EventIngest, domain.StatusSuccess)
}

func (l *LoadLog) LogIngestFailure(ctx context.Context, event domain.LoadEvent) error {
	return l.append(ctx, event, domain.EventIngest, domain.StatusFailure)
}

// LogCheckpoint records a data-quality checkpoint outcome for one entity.
func (l *LoadLog) LogCheckpoint(ctx context.Context, event domain.LoadEvent) error {
	return l.append(ctx, event, domain.EventPipeline, event.Status)
}

func (l *LoadLog) append(ctx context.Context, event domain.LoadEvent, wantType domain.EventType, wantStatus domain.EventStatus) error {
	if event.Type != wantType || event.Status != wantStatus {
		return fmt.Errorf("event shape mismatch: got %s/%s, want %s/%s", event.Type, event.Status, wantType, wantStatus)
	}
	if err := event.Validate(); err != nil {
		return err
	}
	return loadlog.Insert(ctx, l.db, loadlog.Record{
		EventID:      event.EventID,
		RunID:        event.RunID,
		Component:    event.Component,
		Level:        string(event.Level),
		Type:         string(event.Type),
		EntityType:   string(event.EntityType),
		EntityID:     event.EntityID,
		Status:       string(event.Status),
		Message:      event.Message,
		ErrorCode:    event.ErrorCode,
		ErrorDetails: event.ErrorDetails,
		Metadata:     event.Metadata,
	})
}
