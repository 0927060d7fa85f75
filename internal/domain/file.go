package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// FileIdentity describes one discovered file. Values are immutable: the
// finder fills them in at discovery time and they are never updated.
type FileIdentity struct {
	Path         string
	SizeBytes    int64
	ModifiedTime time.Time
}

// Name returns the final path segment.
func (f FileIdentity) Name() string {
	return filepath.Base(f.Path)
}

// StableKey derives the deduplication key from name, size and the
// modification time truncated to whole seconds. Two files sharing all
// three collide even when their contents differ; this content-free key is
// a deliberate precision tradeoff, not a defect.
func (f FileIdentity) StableKey() string {
	return fmt.Sprintf("%s|%d|%d", f.Name(), f.SizeBytes, f.ModifiedTime.Unix())
}
