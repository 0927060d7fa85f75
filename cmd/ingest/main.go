package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lakeline-data/lakeline-go/internal/domain"
	"github.com/lakeline-data/lakeline-go/internal/platform/env"
	platformstore "github.com/lakeline-data/lakeline-go/internal/platform/objectstore"
	"github.com/lakeline-data/lakeline-go/internal/platform/postgres"
	"github.com/lakeline-data/lakeline-go/internal/quality"
	"github.com/lakeline-data/lakeline-go/internal/repo"
	pgrepo "github.com/lakeline-data/lakeline-go/internal/repo/postgres"
	sqliterepo "github.com/lakeline-data/lakeline-go/internal/repo/sqlite"
	"github.com/lakeline-data/lakeline-go/internal/service/ingest"
	"github.com/lakeline-data/lakeline-go/internal/source/localfs"
	"github.com/lakeline-data/lakeline-go/internal/storage/objectstore"
)

// loadLog is what the wiring needs from a backend: the pipeline's load-log
// port plus checkpoint appends. Both backends satisfy it.
type loadLog interface {
	repo.LoadLogRepository
	LogCheckpoint(ctx context.Context, event domain.LoadEvent) error
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	component := env.String("LANDING_COMPONENT", ingest.DefaultComponent)

	sourceCfg, err := localfs.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid source config", "error", err)
		os.Exit(2)
	}

	storeCfg, err := platformstore.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid object store config", "error", err)
		os.Exit(2)
	}
	storeClient, err := platformstore.NewMinIOClient(storeCfg)
	if err != nil {
		logger.Error("object store client init failed", "error", err)
		os.Exit(2)
	}
	startupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := platformstore.EnsureBucket(startupCtx, storeClient, storeCfg); err != nil {
		cancel()
		logger.Error("object store unavailable", "error", err)
		os.Exit(1)
	}
	cancel()

	events, cleanup, err := openLoadLog(ctx, component, logger)
	if err != nil {
		logger.Error("load log unavailable", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	finder, err := localfs.NewFinder(sourceCfg.SourceDir, sourceCfg.Extensions)
	if err != nil {
		logger.Error("invalid source config", "error", err)
		os.Exit(2)
	}
	archiver, err := localfs.NewArchiver(sourceCfg.ArchiveDir)
	if err != nil {
		logger.Error("invalid archive config", "error", err)
		os.Exit(2)
	}

	store, err := objectstore.NewMinioStoreWithClient(storeClient)
	if err != nil {
		logger.Error("object store init failed", "error", err)
		os.Exit(2)
	}
	uploader, err := objectstore.NewObjectUploader(store, storeCfg.Bucket, storeCfg.BasePrefix)
	if err != nil {
		logger.Error("invalid upload config", "error", err)
		os.Exit(2)
	}

	pipeline, err := ingest.New(finder, uploader, archiver, events, component, logger)
	if err != nil {
		logger.Error("pipeline init failed", "error", err)
		os.Exit(2)
	}

	result, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("pipeline run failed", "error", err)
		os.Exit(1)
	}

	if rulesPath := env.String("QUALITY_RULES_PATH", ""); rulesPath != "" && len(result.Landed) > 0 {
		if err := runCheckpoint(ctx, rulesPath, store, storeCfg.Bucket, events, component, logger, result); err != nil {
			logger.Error("quality checkpoint failed", "error", err)
			os.Exit(1)
		}
	}
}

// openLoadLog selects the load-log backend from LOADLOG_BACKEND and returns
// the repository together with a close func for the underlying handle.
func openLoadLog(ctx context.Context, component string, logger *slog.Logger) (loadLog, func(), error) {
	backend := env.String("LOADLOG_BACKEND", "postgres")
	switch backend {
	case "postgres":
		cfg, err := postgres.ConfigFromEnv()
		if err != nil {
			logger.Error("invalid database config", "error", err)
			os.Exit(2)
		}
		db, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		events, err := pgrepo.NewLoadLog(db, component)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		if err := events.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return events, func() { _ = db.Close() }, nil
	case "sqlite":
		path := env.String("LOADLOG_SQLITE_PATH", "loadlog.db")
		db, err := sqliterepo.OpenDB(path)
		if err != nil {
			return nil, nil, err
		}
		events, err := sqliterepo.NewLoadLog(db, component)
		if err != nil {
			return nil, nil, err
		}
		return events, func() {}, nil
	default:
		logger.Error("unknown load log backend", "backend", backend)
		os.Exit(2)
		return nil, nil, nil
	}
}

func runCheckpoint(ctx context.Context, rulesPath string, store objectstore.Store, bucket string, events loadLog, component string, logger *slog.Logger, result ingest.RunResult) error {
	raw, err := os.ReadFile(rulesPath)
	if err != nil {
		logger.Error("cannot read quality rules", "path", rulesPath, "error", err)
		os.Exit(2)
	}
	spec, err := quality.ParseRuleSpec(raw)
	if err != nil {
		logger.Error("invalid quality rules", "path", rulesPath, "error", err)
		os.Exit(2)
	}

	checkpoint, err := quality.NewCheckpoint(store, bucket, spec, events, component, logger)
	if err != nil {
		return err
	}
	summary, err := checkpoint.Run(ctx, result.RunID, result.Landed)
	if err != nil {
		return err
	}
	logger.Info("quality checkpoint finished",
		"run_id", result.RunID,
		"objects_checked", summary.ObjectsChecked,
		"objects_passed", summary.ObjectsPassed,
		"objects_failed", summary.ObjectsFailed)
	return nil
}
