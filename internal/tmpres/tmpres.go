// Package tmpres owns every temporary directory created while evaluating
// test cases. It implements expr.TmpDirSupplier; only the driver touches
// the underlying list of owned directories, per the single-owner
// discipline the rest of the runtime follows for shared resources.
package tmpres

import (
	"fmt"
	"os"
	"sync"
)

// Factory hands out one fresh temp directory per call and remembers all of
// them so the driver can remove them on exit.
type Factory struct {
	mu   sync.Mutex
	dirs []string
}

// NewFactory returns an empty Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// NewTmpDir creates a new temp directory and records it for later cleanup.
// Implements expr.TmpDirSupplier.
func (f *Factory) NewTmpDir() (string, error) {
	dir, err := os.MkdirTemp("", "texest-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	f.mu.Lock()
	f.dirs = append(f.dirs, dir)
	f.mu.Unlock()
	return dir, nil
}

// Cleanup removes every directory this factory has created. A failed
// removal does not stop the remaining ones; the first error is returned.
func (f *Factory) Cleanup() error {
	f.mu.Lock()
	dirs := f.dirs
	f.dirs = nil
	f.mu.Unlock()

	var firstErr error
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to remove temp dir %s: %w", dir, err)
		}
	}
	return firstErr
}
