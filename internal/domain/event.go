package domain

import (
	"errors"
	"strings"
)

// Metadata is an unstructured metadata container for load events.
type Metadata map[string]any

func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	copy := make(Metadata, len(m))
	for k, v := range m {
		copy[k] = v
	}
	return copy
}

type EventLevel string

const (
	LevelInfo  EventLevel = "INFO"
	LevelError EventLevel = "ERROR"
)

type EventType string

const (
	EventRun      EventType = "RUN"
	EventIngest   EventType = "INGEST"
	EventPipeline EventType = "PIPELINE"
)

type EntityType string

const (
	EntityRun  EntityType = "RUN"
	EntityFile EntityType = "FILE"
)

type EventStatus string

const (
	StatusStarted EventStatus = "STARTED"
	StatusSuccess EventStatus = "SUCCESS"
	StatusFailure EventStatus = "FAILURE"
)

// LoadEvent is one immutable record in the load log. Event ids are always
// generated by the caller so a retried write carries the same identity; the
// repository assigns only the timestamp.
type LoadEvent struct {
	EventID      string
	RunID        string
	Component    string
	Level        EventLevel
	Type         EventType
	EntityType   EntityType
	EntityID     string
	Status       EventStatus
	Message      string
	ErrorCode    string
	ErrorDetails string
	Metadata     Metadata
}

func (e LoadEvent) Validate() error {
	if strings.TrimSpace(e.EventID) == "" {
		return errors.New("event id is required")
	}
	if strings.TrimSpace(e.RunID) == "" {
		return errors.New("run id is required")
	}
	if strings.TrimSpace(e.Component) == "" {
		return errors.New("component is required")
	}
	switch e.Level {
	case LevelInfo, LevelError:
	default:
		return errors.New("event level is invalid")
	}
	switch e.Type {
	case EventRun, EventIngest, EventPipeline:
	default:
		return errors.New("event type is invalid")
	}
	switch e.EntityType {
	case EntityRun, EntityFile:
	default:
		return errors.New("entity type is invalid")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		return errors.New("entity id is required")
	}
	switch e.Status {
	case StatusStarted, StatusSuccess, StatusFailure:
	default:
		return errors.New("event status is invalid")
	}
	return nil
}

// RunStarted shapes the event emitted before any other work in a run.
func RunStarted(eventID, runID, component, message string, metadata Metadata) LoadEvent {
	return LoadEvent{
		EventID:    eventID,
		RunID:      runID,
		Component:  component,
		Level:      LevelInfo,
		Type:       EventRun,
		EntityType: EntityRun,
		EntityID:   runID,
		Status:     StatusStarted,
		Message:    message,
		Metadata:   metadata.Clone(),
	}
}

// RunFinished shapes the closing event of a run. A FAILURE status marks the
// run itself as failed; the level follows the status.
func RunFinished(eventID, runID, component string, status EventStatus, message string, metadata Metadata) LoadEvent {
	level := LevelInfo
	if status == StatusFailure {
		level = LevelError
	}
	return LoadEvent{
		EventID:    eventID,
		RunID:      runID,
		Component:  component,
		Level:      level,
		Type:       EventRun,
		EntityType: EntityRun,
		EntityID:   runID,
		Status:     status,
		Message:    message,
		Metadata:   metadata.Clone(),
	}
}

// IngestSucceeded shapes the per-file success event that makes a stable key
// count as already loaded on later runs.
func IngestSucceeded(eventID, runID, component, entityID, message string, metadata Metadata) LoadEvent {
	return LoadEvent{
		EventID:    eventID,
		RunID:      runID,
		Component:  component,
		Level:      LevelInfo,
		Type:       EventIngest,
		EntityType: EntityFile,
		EntityID:   entityID,
		Status:     StatusSuccess,
		Message:    message,
		Metadata:   metadata.Clone(),
	}
}

// IngestFailed shapes the per-file failure event carrying the stringified
// upload error.
func IngestFailed(eventID, runID, component, entityID, message, errorCode, errorDetails string, metadata Metadata) LoadEvent {
	return LoadEvent{
		EventID:      eventID,
		RunID:        runID,
		Component:    component,
		Level:        LevelError,
		Type:         EventIngest,
		EntityType:   EntityFile,
		EntityID:     entityID,
		Status:       StatusFailure,
		Message:      message,
		ErrorCode:    errorCode,
		ErrorDetails: errorDetails,
		Metadata:     metadata.Clone(),
	}
}

// CheckpointEvent shapes a post-landing quality checkpoint outcome for one
// uploaded object.
func CheckpointEvent(eventID, runID, component, entityID string, status EventStatus, message string, metadata Metadata) LoadEvent {
	level := LevelInfo
	if status == StatusFailure {
		level = LevelError
	}
	return LoadEvent{
		EventID:    eventID,
		RunID:      runID,
		Component:  component,
		Level:      level,
		Type:       EventPipeline,
		EntityType: EntityFile,
		EntityID:   entityID,
		Status:     status,
		Message:    message,
		Metadata:   metadata.Clone(),
	}
}
