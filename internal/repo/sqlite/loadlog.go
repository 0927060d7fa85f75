package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lakeline-data/lakeline-go/internal/domain"
	"gorm.io/gorm"
)

// LoadEventRecord mirrors the Postgres load_events shape for single-host
// deployments. The repository assigns the timestamp on append.
type LoadEventRecord struct {
	EventID        string    `gorm:"primaryKey;size:64;column:event_id"`
	RunID          string    `gorm:"index;size:64;column:run_id"`
	EventTimestamp time.Time `gorm:"index;column:event_timestamp"`
	EventLevel     string    `gorm:"size:16;column:event_level"`
	EventType      string    `gorm:"size:16;column:event_type"`
	Component      string    `gorm:"index:idx_load_events_dedup;size:64;column:component"`
	EntityType     string    `gorm:"index:idx_load_events_dedup;size:16;column:entity_type"`
	EntityID       string    `gorm:"index:idx_load_events_dedup;size:512;column:entity_id"`
	Status         string    `gorm:"index:idx_load_events_dedup;size:16;column:status"`
	Message        string    `gorm:"type:text;column:message"`
	ErrorCode      string    `gorm:"size:64;column:error_code"`
	ErrorDetails   string    `gorm:"type:text;column:error_details"`
	Metadata       string    `gorm:"type:text;column:metadata"`
}

func (LoadEventRecord) TableName() string { return "load_events" }

func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&LoadEventRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}

// LoadLog is the SQLite-backed load-log repository.
type LoadLog struct {
	db        *gorm.DB
	component string
	now       func() time.Time
}

func NewLoadLog(db *gorm.DB, component string) (*LoadLog, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if strings.TrimSpace(component) == "" {
		return nil, errors.New("component is required")
	}
	return &LoadLog{db: db, component: component, now: time.Now}, nil
}

func (l *LoadLog) AlreadyLoaded(ctx context.Context, entityIDs []string) (map[string]struct{}, error) {
	loaded := make(map[string]struct{}, len(entityIDs))
	if len(entityIDs) == 0 {
		return loaded, nil
	}

	var ids []string
	err := l.db.WithContext(ctx).
		Model(&LoadEventRecord{}).
		Distinct("entity_id").
		Where("component = ? AND entity_type = ? AND event_type = ? AND status = ? AND entity_id IN ?",
			l.component, string(domain.EntityFile), string(domain.EventIngest), string(domain.StatusSuccess), entityIDs).
		Pluck("entity_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("select loaded entities: %w", err)
	}
	for _, id := range ids {
		loaded[id] = struct{}{}
	}
	return loaded, nil
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

	metadata := event.Metadata
	if metadata == nil {
		metadata = domain.Metadata{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	record := LoadEventRecord{
		EventID:        event.EventID,
		RunID:          event.RunID,
		EventTimestamp: l.now().UTC(),
		EventLevel:     string(event.Level),
		EventType:      string(event.Type),
		Component:      event.Component,
		EntityType:     string(event.EntityType),
		EntityID:       event.EntityID,
		Status:         string(event.Status),
		Message:        event.Message,
		ErrorCode:      event.ErrorCode,
		ErrorDetails:   event.ErrorDetails,
		Metadata:       string(metadataJSON),
	}
	if err := l.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("insert load event: %w", err)
	}
	return nil
}
