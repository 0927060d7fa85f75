package localfs

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/lakeline-data/lakeline-go/internal/platform/env"
)

type Config struct {
	SourceDir  string
	ArchiveDir string
	Extensions []string
}

func ConfigFromEnv() (Config, error) {
	sourceDir, err := env.Required("LANDING_SOURCE_DIR")
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		SourceDir:  sourceDir,
		ArchiveDir: env.String("LANDING_ARCHIVE_DIR", filepath.Join(sourceDir, "archive")),
		Extensions: splitExtensions(env.String("LANDING_FILE_EXTENSIONS", ".csv,.parquet")),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.SourceDir) == "" {
		return errors.New("source dir is required")
	}
	if strings.TrimSpace(c.ArchiveDir) == "" {
		return errors.New("archive dir is required")
	}
	if len(c.Extensions) == 0 {
		return errors.New("at least one file extension is required")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.New("extensions must start with a dot")
		}
	}
	return nil
}

func splitExtensions(raw string) []string {
	parts := strings.Split(raw, ",")
	exts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		exts = append(exts, p)
	}
	return exts
}
