package ingest

import (
	"context"

	"github.com/lakeline-data/lakeline-go/internal/domain"
)

// FileFinder enumerates candidate files. No files found is an empty slice,
// not an error; errors mean the source itself is unreachable.
type FileFinder interface {
	ListFiles() ([]domain.FileIdentity, error)
}

// Uploader transfers one file's bytes to durable remote storage and
// returns an opaque destination reference. It must fail loudly: no silent
// partial success.
type Uploader interface {
	Upload(ctx context.Context, file domain.FileIdentity) (string, error)
}

// Archiver relocates a successfully processed file out of the discovery
// path. Failures are reported to the operator but never flip a file from
// success to failure.
type Archiver interface {
	Archive(file domain.FileIdentity) error
}
