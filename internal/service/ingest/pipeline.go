package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lakeline-data/lakeline-go/internal/domain"
	"github.com/lakeline-data/lakeline-go/internal/repo"
)

// DefaultComponent identifies this pipeline in the load log unless the
// caller names it otherwise.
const DefaultComponent = "LOCAL_TO_S3"

// entityIDMode records how file entities are identified in the load log.
// The stable key (name|size|mtime-second) is the only supported mode.
const entityIDMode = "stable_key"

// Pipeline orchestrates one ingestion run: discover, deduplicate against
// the load log, then upload, log and archive each new file in turn.
//
// Files are processed strictly sequentially. At most one run may be active
// against a given source directory; overlapping runs may double-upload.
type Pipeline struct {
	finder    FileFinder
	uploader  Uploader
	archiver  Archiver
	loadLog   repo.LoadLogRepository
	component string
	logger    *slog.Logger
	newID     func() string
}

func New(finder FileFinder, uploader Uploader, archiver Archiver, loadLog repo.LoadLogRepository, component string, logger *slog.Logger) (*Pipeline, error) {
	if finder == nil {
		return nil, errors.New("file finder is required")
	}
	if uploader == nil {
		return nil, errors.New("uploader is required")
	}
	if archiver == nil {
		return nil, errors.New("archiver is required")
	}
	if loadLog == nil {
		return nil, errors.New("load log repository is required")
	}
	if strings.TrimSpace(component) == "" {
		component = DefaultComponent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		finder:    finder,
		uploader:  uploader,
		archiver:  archiver,
		loadLog:   loadLog,
		component: component,
		logger:    logger,
		newID:     uuid.NewString,
	}, nil
}

// LandedFile pairs an uploaded file with its destination reference, for
// downstream steps such as the quality checkpoint.
type LandedFile struct {
	File        domain.FileIdentity
	StableKey   string
	Destination string
}

// RunResult reports one completed run. A run with per-file failures still
// returns a nil error; only infrastructure failures abort the run.
type RunResult struct {
	RunID   string
	Summary domain.RunSummary
	Landed  []LandedFile
}

// Run executes one ingestion run. The started event is written before any
// file-source I/O, so every run is visible in the trail even when
// discovery fails. Upload errors are isolated per file and logged as
// failure events; finder, dedup-check and event-write errors abort the run
// and propagate.
func (p *Pipeline) Run(ctx context.Context) (RunResult, error) {
	runID := p.newID()
	result := RunResult{RunID: runID}

	started := domain.RunStarted(p.newID(), runID, p.component, "Pipeline run started", domain.Metadata{
		"component":      p.component,
		"entity_id_mode": entityIDMode,
	})
	if err := p.loadLog.LogRunStarted(ctx, started); err != nil {
		return result, fmt.Errorf("log run started: %w", err)
	}

	files, err := p.finder.ListFiles()
	if err != nil {
		return result, fmt.Errorf("discover files: %w", err)
	}
	if len(files) == 0 {
		finished := domain.RunFinished(p.newID(), runID, p.component, domain.StatusSuccess,
			"No files found. Run finished.", domain.Metadata{"files_found": 0})
		if err := p.loadLog.LogRunFinished(ctx, finished); err != nil {
			return result, fmt.Errorf("log run finished: %w", err)
		}
		p.logger.Info("no files found", "run_id", runID)
		return result, nil
	}

	keys := make([]string, len(files))
	for i, f := range files {
		keys[i] = f.StableKey()
	}
	loaded, err := p.loadLog.AlreadyLoaded(ctx, keys)
	if err != nil {
		return result, fmt.Errorf("dedup check: %w", err)
	}

	newFiles := make([]domain.FileIdentity, 0, len(files))
	for _, f := range files {
		if _, ok := loaded[f.StableKey()]; !ok {
			newFiles = append(newFiles, f)
		}
	}
	summary := domain.RunSummary{
		FilesFound:   len(files),
		FilesNew:     len(newFiles),
		FilesSkipped: len(files) - len(newFiles),
	}
	p.logger.Info("discovery complete",
		"run_id", runID,
		"discovered", summary.FilesFound,
		"new", summary.FilesNew,
		"skipped", summary.FilesSkipped,
	)

	for _, f := range newFiles {
		key := f.StableKey()
		eventID := p.newID()

		destination, err := p.uploader.Upload(ctx, f)
		if err != nil {
			summary.FilesFailure++
			failure := domain.IngestFailed(eventID, runID, p.component, key,
				fmt.Sprintf("Failed to ingest %s", f.Name()), "", err.Error(), p.fileMetadata(f, ""))
			if logErr := p.loadLog.LogIngestFailure(ctx, failure); logErr != nil {
				return result, fmt.Errorf("log ingest failure: %w", logErr)
			}
			p.logger.Error("ingest failed", "run_id", runID, "file", f.Name(), "error", err)
			continue
		}

		success := domain.IngestSucceeded(eventID, runID, p.component, key,
			fmt.Sprintf("Uploaded %s", f.Name()), p.fileMetadata(f, destination))
		if err := p.loadLog.LogIngestSuccess(ctx, success); err != nil {
			return result, fmt.Errorf("log ingest success: %w", err)
		}

		// The upload is durably logged at this point; archiving is
		// housekeeping and never changes the outcome.
		if err := p.archiver.Archive(f); err != nil {
			p.logger.Warn("archive failed", "run_id", runID, "file", f.Name(), "error", err)
		}

		summary.FilesSuccess++
		result.Landed = append(result.Landed, LandedFile{File: f, StableKey: key, Destination: destination})
		p.logger.Info("ingest succeeded", "run_id", runID, "file", f.Name(), "destination", destination)
	}

	finished := domain.RunFinished(p.newID(), runID, p.component, summary.Status(),
		"Pipeline run finished", summary.Metadata())
	if err := p.loadLog.LogRunFinished(ctx, finished); err != nil {
		return result, fmt.Errorf("log run finished: %w", err)
	}

	result.Summary = summary
	return result, nil
}

func (p *Pipeline) fileMetadata(f domain.FileIdentity, destination string) domain.Metadata {
	metadata := domain.Metadata{
		"file_name":     f.Name(),
		"entity_id":     f.StableKey(),
		"size_bytes":    f.SizeBytes,
		"modified_time": f.ModifiedTime.Format(time.RFC3339),
	}
	if destination != "" {
		metadata["destination"] = destination
	}
	return metadata
}
