package localfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lakeline-data/lakeline-go/internal/domain"
)

func identityFor(t *testing.T, path string) domain.FileIdentity {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return domain.FileIdentity{Path: path, SizeBytes: info.Size(), ModifiedTime: info.ModTime()}
}

func TestArchiveMovesFile(t *testing.T) {
	sourceDir := t.TempDir()
	archiveDir := filepath.Join(sourceDir, "archive")
	src := filepath.Join(sourceDir, "trips.csv")
	if err := os.WriteFile(src, []byte("a,b\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	archiver, err := NewArchiver(archiveDir)
	if err != nil {
		t.Fatalf("new archiver: %v", err)
	}
	if err := archiver.Archive(identityFor(t, src)); err != nil {
		t.Fatalf("archive: %v", err)
	}

	if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("source should be gone after archive")
	}
	moved, err := os.ReadFile(filepath.Join(archiveDir, "trips.csv"))
	if err != nil {
		t.Fatalf("read archived file: %v", err)
	}
	if string(moved) != "a,b\n" {
		t.Fatalf("archived content mismatch: %q", moved)
	}
}

func TestArchiveMissingSource(t *testing.T) {
	archiver, err := NewArchiver(t.TempDir())
	if err != nil {
		t.Fatalf("new archiver: %v", err)
	}
	gone := domain.FileIdentity{Path: filepath.Join(t.TempDir(), "gone.csv"), ModifiedTime: time.Now()}
	err = archiver.Archive(gone)
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("expected ErrSourceMissing, got %v", err)
	}
}

func TestArchiveNeverOverwrites(t *testing.T) {
	sourceDir := t.TempDir()
	archiveDir := t.TempDir()
	src := filepath.Join(sourceDir, "trips.csv")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if err := os.WriteFile(filepath.Join(archiveDir, "trips.csv"), []byte("old"), 0o644); err != nil {
		t.Fatalf("write existing archive: %v", err)
	}

	archiver, err := NewArchiver(archiveDir)
	if err != nil {
		t.Fatalf("new archiver: %v", err)
	}
	err = archiver.Archive(identityFor(t, src))
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %v", err)
	}

	kept, err := os.ReadFile(filepath.Join(archiveDir, "trips.csv"))
	if err != nil || string(kept) != "old" {
		t.Fatalf("existing archived file must be untouched, got %q err %v", kept, err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source must remain when archiving aborts: %v", err)
	}
}

func TestNewArchiverCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", "archive")
	if _, err := NewArchiver(dir); err != nil {
		t.Fatalf("new archiver: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("archive dir should exist: %v", err)
	}
}
