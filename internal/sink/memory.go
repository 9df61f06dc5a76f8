package sink

import (
	"fmt"
	"io"
	"sync"

	"drivemeta/internal/export"
)

// MemorySink stores artifacts in memory. Useful for testing.
// This implementation is safe for concurrent use.
type MemorySink struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
}

// NewMemorySink creates a new in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{artifacts: make(map[string][]byte)}
}

var _ export.Sink = (*MemorySink)(nil)

// Put stores an artifact by name.
func (m *MemorySink) Put(name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts[name] = data
	return nil
}

// ValidateSetup always succeeds for the memory sink.
func (m *MemorySink) ValidateSetup() error { return nil }

// Get returns a stored artifact, or nil if absent.
func (m *MemorySink) Get(name string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.artifacts[name]
}

// Names returns the stored artifact names.
func (m *MemorySink) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.artifacts))
	for name := range m.artifacts {
		names = append(names, name)
	}
	return names
}
