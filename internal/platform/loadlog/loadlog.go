package loadlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Record is the persisted shape of one load-log row. The event timestamp is
// assigned by the backing store, not the caller.
type Record struct {
	EventID      string
	RunID        string
	Component    string
	Level        string
	Type         string
	EntityType   string
	EntityID     string
	Status       string
	Message      string
	ErrorCode    string
	ErrorDetails string
	Metadata     any
}

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Schema creates the append-only load_events table. Dedup queries scan
// entity ids of successful FILE/INGEST events, hence the covering index.
const Schema = `
CREATE TABLE IF NOT EXISTS load_events (
	event_id        TEXT PRIMARY KEY,
	run_id          TEXT NOT NULL,
	event_timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
	event_level     TEXT NOT NULL,
	event_type      TEXT NOT NULL,
	component       TEXT NOT NULL,
	entity_type     TEXT NOT NULL,
	entity_id       TEXT NOT NULL,
	status          TEXT NOT NULL,
	message         TEXT,
	error_code      TEXT,
	error_details   TEXT,
	metadata        JSONB NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_load_events_dedup
	ON load_events (component, entity_type, event_type, status, entity_id);
CREATE INDEX IF NOT EXISTS idx_load_events_run
	ON load_events (run_id);
`

func EnsureSchema(ctx context.Context, db Execer) error {
	if db == nil {
		return errors.New("db is required")
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure load_events schema: %w", err)
	}
	return nil
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.EventID) == "" {
		return errors.New("event_id is required")
	}
	if strings.TrimSpace(r.RunID) == "" {
		return errors.New("run_id is required")
	}
	if strings.TrimSpace(r.Component) == "" {
		return errors.New("component is required")
	}
	if strings.TrimSpace(r.Level) == "" {
		return errors.New("event_level is required")
	}
	if strings.TrimSpace(r.Type) == "" {
		return errors.New("event_type is required")
	}
	if strings.TrimSpace(r.EntityType) == "" {
		return errors.New("entity_type is required")
	}
	if strings.TrimSpace(r.EntityID) == "" {
		return errors.New("entity_id is required")
	}
	if strings.TrimSpace(r.Status) == "" {
		return errors.New("status is required")
	}
	return nil
}

// Insert appends one record. Rows are never updated or deleted; a duplicate
// event id fails on the primary key, which is the desired behavior for a
// retried write that actually landed the first time.
func Insert(ctx context.Context, db Execer, record Record) error {
	if db == nil {
		return errors.New("db is required")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	metadata := record.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	var errorCode sql.NullString
	if strings.TrimSpace(record.ErrorCode) != "" {
		errorCode = sql.NullString{String: record.ErrorCode, Valid: true}
	}
	var errorDetails sql.NullString
	if strings.TrimSpace(record.ErrorDetails) != "" {
		errorDetails = sql.NullString{String: record.ErrorDetails, Valid: true}
	}

	_, err = db.ExecContext(
		ctx,
		`INSERT INTO load_events (
			event_id,
			run_id,
			event_level,
			event_type,
			component,
			entity_type,
			entity_id,
			status,
			message,
			error_code,
			error_details,
			metadata
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		record.EventID,
		record.RunID,
		record.Level,
		record.Type,
		record.Component,
		record.EntityType,
		record.EntityID,
		record.Status,
		record.Message,
		errorCode,
		errorDetails,
		metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("insert load event: %w", err)
	}
	return nil
}

// SelectLoaded returns the subset of entityIDs with a prior successful
// FILE ingest event for the component. One round trip regardless of the
// number of keys.
func SelectLoaded(ctx context.Context, db Queryer, component string, entityIDs []string) (map[string]struct{}, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	loaded := make(map[string]struct{}, len(entityIDs))
	if len(entityIDs) == 0 {
		return loaded, nil
	}

	query, args := loadedQuery(component, entityIDs)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select loaded entities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var entityID string
		if err := rows.Scan(&entityID); err != nil {
			return nil, fmt.Errorf("scan loaded entity: %w", err)
		}
		loaded[entityID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loaded entities: %w", err)
	}
	return loaded, nil
}

func loadedQuery(component string, entityIDs []string) (string, []any) {
	placeholders := make([]string, len(entityIDs))
	args := make([]any, 0, len(entityIDs)+1)
	args = append(args, component)
	for i, id := range entityIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	query := fmt.Sprintf(
		`SELECT DISTINCT entity_id FROM load_events
		WHERE component = $1
		  AND entity_type = 'FILE'
		  AND event_type = 'INGEST'
		  AND status = 'SUCCESS'
		  AND entity_id IN (%s)`,
		strings.Join(placeholders, ","),
	)
	return query, args
}
