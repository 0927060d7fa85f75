package localfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lakeline-data/lakeline-go/internal/domain"
)

// Archive failure classes. Archiving is best-effort housekeeping after a
// durably logged upload; callers report these, they never fail a run.
var (
	ErrSourceMissing     = errors.New("archive source file missing")
	ErrDestinationExists = errors.New("archive destination already exists")
)

// Archiver moves processed files out of the discovery path into the
// archive directory, preserving the original name. It never overwrites an
// existing archived file.
type Archiver struct {
	archiveDir string
}

func NewArchiver(archiveDir string) (*Archiver, error) {
	if strings.TrimSpace(archiveDir) == "" {
		return nil, errors.New("archive dir is required")
	}
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir %s: %w", archiveDir, err)
	}
	return &Archiver{archiveDir: archiveDir}, nil
}

func (a *Archiver) Archive(file domain.FileIdentity) error {
	target := filepath.Join(a.archiveDir, file.Name())

	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("%w: %s", ErrDestinationExists, file.Name())
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat archive target %s: %w", target, err)
	}

	if err := moveFile(file.Path, target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, file.Path)
		}
		return fmt.Errorf("archive %s: %w", file.Name(), err)
	}
	return nil
}

// moveFile renames when possible and falls back to copy+remove for
// cross-device moves.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	} else if errors.Is(err, fs.ErrNotExist) {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		_ = os.Remove(dst)
		return copyErr
	}
	if closeErr != nil {
		_ = os.Remove(dst)
		return closeErr
	}
	return os.Remove(src)
}
