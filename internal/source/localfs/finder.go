package localfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lakeline-data/lakeline-go/internal/domain"
)

// Finder enumerates candidate files in a source directory. Only regular
// files whose extension matches are returned, sorted by name so runs are
// deterministic. An empty directory is not an error.
type Finder struct {
	sourceDir  string
	extensions []string
}

func NewFinder(sourceDir string, extensions []string) (*Finder, error) {
	if strings.TrimSpace(sourceDir) == "" {
		return nil, errors.New("source dir is required")
	}
	if len(extensions) == 0 {
		return nil, errors.New("at least one file extension is required")
	}
	lowered := make([]string, len(extensions))
	for i, ext := range extensions {
		lowered[i] = strings.ToLower(ext)
	}
	return &Finder{sourceDir: sourceDir, extensions: lowered}, nil
}

func (f *Finder) ListFiles() ([]domain.FileIdentity, error) {
	entries, err := os.ReadDir(f.sourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source dir %s: %w", f.sourceDir, err)
	}

	files := make([]domain.FileIdentity, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !f.matches(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		files = append(files, domain.FileIdentity{
			Path:         filepath.Join(f.sourceDir, entry.Name()),
			SizeBytes:    info.Size(),
			ModifiedTime: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (f *Finder) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range f.extensions {
		if ext == want {
			return true
		}
	}
	return false
}
