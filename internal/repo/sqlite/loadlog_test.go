package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lakeline-data/lakeline-go/internal/domain"
)

func openTestLog(t *testing.T) *LoadLog {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "loadlog.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	log, err := NewLoadLog(db, "LOCAL_TO_S3")
	if err != nil {
		t.Fatalf("new load log: %v", err)
	}
	return log
}

func TestAlreadyLoadedEmptyInput(t *testing.T) {
	log := openTestLog(t)
	loaded, err := log.AlreadyLoaded(context.Background(), nil)
	if err != nil {
		t.Fatalf("already loaded: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty result, got %v", loaded)
	}
}

func TestIngestSuccessMakesKeyLoaded(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	key := "a.csv|100|1700000000"
	event := domain.IngestSucceeded("ev-1", "run-1", "LOCAL_TO_S3", key, "Uploaded a.csv", domain.Metadata{"destination": "s3://landing/raw/a.csv"})
	if err := log.LogIngestSuccess(ctx, event); err != nil {
		t.Fatalf("log success: %v", err)
	}

	loaded, err := log.AlreadyLoaded(ctx, []string{key, "other|1|2"})
	if err != nil {
		t.Fatalf("already loaded: %v", err)
	}
	if _, ok := loaded[key]; !ok {
		t.Fatalf("expected %q to be loaded", key)
	}
	if _, ok := loaded["other|1|2"]; ok {
		t.Fatalf("unexpected membership for unknown key")
	}
}

func TestFailureAndRunEventsDoNotCountAsLoaded(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	key := "b.csv|200|1700000001"
	failure := domain.IngestFailed("ev-1", "run-1", "LOCAL_TO_S3", key, "Failed to ingest b.csv", "", "connection reset", nil)
	if err := log.LogIngestFailure(ctx, failure); err != nil {
		t.Fatalf("log failure: %v", err)
	}
	started := domain.RunStarted("ev-2", "run-1", "LOCAL_TO_S3", "Pipeline run started", nil)
	if err := log.LogRunStarted(ctx, started); err != nil {
		t.Fatalf("log run started: %v", err)
	}

	loaded, err := log.AlreadyLoaded(ctx, []string{key, "run-1"})
	if err != nil {
		t.Fatalf("already loaded: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("only successful ingests count as loaded, got %v", loaded)
	}
}

func TestMembershipScopedToComponent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDB(filepath.Join(t.TempDir(), "loadlog.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	taxi, err := NewLoadLog(db, "LOCAL_TO_S3")
	if err != nil {
		t.Fatalf("new load log: %v", err)
	}
	other, err := NewLoadLog(db, "SFTP_TO_S3")
	if err != nil {
		t.Fatalf("new load log: %v", err)
	}

	key := "c.parquet|300|1700000002"
	if err := taxi.LogIngestSuccess(ctx, domain.IngestSucceeded("ev-1", "run-1", "LOCAL_TO_S3", key, "Uploaded c.parquet", nil)); err != nil {
		t.Fatalf("log success: %v", err)
	}

	loaded, err := other.AlreadyLoaded(ctx, []string{key})
	if err != nil {
		t.Fatalf("already loaded: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("membership must not leak across components")
	}
}

func TestDuplicateEventIDRejected(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	event := domain.RunStarted("ev-dup", "run-1", "LOCAL_TO_S3", "Pipeline run started", nil)
	if err := log.LogRunStarted(ctx, event); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := log.LogRunStarted(ctx, event); err == nil {
		t.Fatalf("duplicate event id must fail on the primary key")
	}
}

func TestRunFinishedRequiresTerminalStatus(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	bad := domain.RunStarted("ev-1", "run-1", "LOCAL_TO_S3", "Pipeline run started", nil)
	if err := log.LogRunFinished(ctx, bad); err == nil {
		t.Fatalf("STARTED is not a terminal run status")
	}
}
