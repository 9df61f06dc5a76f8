package sink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"drivemeta/internal/export"
)

// FileSystemSink stores export artifacts as files under a root directory.
type FileSystemSink struct {
	root string
}

// NewFileSystemSink creates a sink rooted at the given directory, creating it
// if needed.
func NewFileSystemSink(root string) (*FileSystemSink, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sink directory: %w", err)
	}
	return &FileSystemSink{root: root}, nil
}

var _ export.Sink = (*FileSystemSink)(nil)

// Put writes an artifact using atomic write (temp file + rename).
func (s *FileSystemSink) Put(name string, r io.Reader, size int64) error {
	destPath := filepath.Join(s.root, name)

	// Create temp file in the same directory to ensure atomic rename works
	tmpFile, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// ValidateSetup verifies that the sink directory is accessible.
func (s *FileSystemSink) ValidateSetup() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("sink root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("sink root is not a directory: %s", s.root)
	}
	return nil
}
