package repo

import (
	"context"

	"github.com/lakeline-data/lakeline-go/internal/domain"
)

// LoadLogRepository is the durable, append-only audit trail of the
// ingestion pipeline. Event ids are always generated by the caller so a
// retried append carries the same identity.
type LoadLogRepository interface {
	// AlreadyLoaded reports which of the given stable keys have a prior
	// successful ingest event for this repository's component. An empty
	// input yields an empty result without touching the backing store.
	AlreadyLoaded(ctx context.Context, entityIDs []string) (map[string]struct{}, error)

	LogRunStarted(ctx context.Context, event domain.LoadEvent) error
	LogRunFinished(ctx context.Context, event domain.LoadEvent) error
	LogIngestSuccess(ctx context.Context, event domain.LoadEvent) error
	LogIngestFailure(ctx context.Context, event domain.LoadEvent) error
}
