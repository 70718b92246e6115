package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Artifact file names under the data directory.
const (
	CardFileName   = "stats.svg"
	ReadmeFileName = "README.md"
)

// EnsureDataDir creates the artifact output directory if missing.
func EnsureDataDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return nil
}

// WriteFileAtomic writes data to path atomically and durably.
// renameio fsyncs the temp file before the rename, so a crash
// mid-write never leaves a torn artifact behind.
func WriteFileAtomic(path string, data []byte) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending file for %s: %w", path, err)
	}
	defer pending.Cleanup() //nolint:errcheck // cleanup after commit is a no-op

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write pending file for %s: %w", path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// CardPath returns the stats card path under dir.
func CardPath(dir string) string {
	return filepath.Join(dir, CardFileName)
}

// ReadmePath returns the README path under dir.
func ReadmePath(dir string) string {
	return filepath.Join(dir, ReadmeFileName)
}
