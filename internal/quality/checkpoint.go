package quality

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lakeline-data/lakeline-go/internal/domain"
	"github.com/lakeline-data/lakeline-go/internal/service/ingest"
	"github.com/lakeline-data/lakeline-go/internal/storage/objectstore"
)

// EventAppender records checkpoint outcomes in the load log.
type EventAppender interface {
	LogCheckpoint(ctx context.Context, event domain.LoadEvent) error
}

// Checkpoint evaluates a rule spec against the objects a pipeline run just
// landed. A failing checkpoint is reported in the load log and to the
// operator; it never rolls an upload back.
type Checkpoint struct {
	store     objectstore.Store
	bucket    string
	spec      RuleSpec
	events    EventAppender
	component string
	logger    *slog.Logger
	newID     func() string
	now       func() time.Time
}

func NewCheckpoint(store objectstore.Store, bucket string, spec RuleSpec, events EventAppender, component string, logger *slog.Logger) (*Checkpoint, error) {
	if store == nil {
		return nil, errors.New("object store is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("bucket is required")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if events == nil {
		return nil, errors.New("event appender is required")
	}
	if strings.TrimSpace(component) == "" {
		return nil, errors.New("component is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checkpoint{
		store:     store,
		bucket:    bucket,
		spec:      spec,
		events:    events,
		component: component,
		logger:    logger,
		newID:     uuid.NewString,
		now:       time.Now,
	}, nil
}

type CheckpointSummary struct {
	ObjectsChecked int
	ObjectsPassed  int
	ObjectsFailed  int
}

// Run evaluates every landed object and appends one PIPELINE event per
// object. Event-write failures abort the checkpoint; evaluation problems
// only fail the affected object.
func (c *Checkpoint) Run(ctx context.Context, runID string, landed []ingest.LandedFile) (CheckpointSummary, error) {
	var summary CheckpointSummary

	for _, item := range landed {
		key, err := c.objectKey(item.Destination)
		if err != nil {
			return summary, err
		}

		report := c.evaluateObject(ctx, key, item)
		summary.ObjectsChecked++

		status := domain.StatusSuccess
		message := fmt.Sprintf("Quality checkpoint passed for %s", item.File.Name())
		if report.Status != checkPass {
			status = domain.StatusFailure
			message = fmt.Sprintf("Quality checkpoint failed for %s", item.File.Name())
			summary.ObjectsFailed++
		} else {
			summary.ObjectsPassed++
		}

		event := domain.CheckpointEvent(c.newID(), runID, c.component, item.StableKey, status, message, domain.Metadata{
			"object_key":        report.ObjectKey,
			"destination":       item.Destination,
			"report_status":     report.Status,
			"checks_total":      report.Summary.ChecksTotal,
			"checks_pass":       report.Summary.ChecksPass,
			"checks_fail":       report.Summary.ChecksFail,
			"checks_error":      report.Summary.ChecksError,
			"failing_check_ids": report.Summary.Failing,
		})
		if err := c.events.LogCheckpoint(ctx, event); err != nil {
			return summary, fmt.Errorf("log checkpoint event: %w", err)
		}

		if status == domain.StatusFailure {
			c.logger.Warn("quality checkpoint failed",
				"run_id", runID, "object", report.ObjectKey, "failing", report.Summary.Failing)
		} else {
			c.logger.Info("quality checkpoint passed", "run_id", runID, "object", report.ObjectKey)
		}
	}
	return summary, nil
}

func (c *Checkpoint) evaluateObject(ctx context.Context, key string, item ingest.LandedFile) Report {
	info, err := c.store.Stat(ctx, c.bucket, key)
	if err != nil {
		return Report{
			ObjectKey:   key,
			Status:      checkError,
			EvaluatedAt: c.now().UTC(),
			Summary:     Summary{ChecksTotal: len(c.spec.Checks), ChecksError: len(c.spec.Checks)},
			Checks: []CheckResult{{
				ID:      "object_stat",
				Type:    "object_stat",
				Status:  checkError,
				Message: err.Error(),
			}},
		}
	}

	in := ObjectInput{Key: key, Filename: item.File.Name(), SizeBytes: info.Size}
	open := func(ctx context.Context) (io.ReadCloser, error) {
		reader, _, err := c.store.Get(ctx, c.bucket, key)
		return reader, err
	}
	return evaluate(ctx, c.now(), c.spec, in, open)
}

func (c *Checkpoint) objectKey(destination string) (string, error) {
	prefix := "s3://" + c.bucket + "/"
	if !strings.HasPrefix(destination, prefix) {
		return "", fmt.Errorf("destination %q is outside bucket %q", destination, c.bucket)
	}
	return strings.TrimPrefix(destination, prefix), nil
}
