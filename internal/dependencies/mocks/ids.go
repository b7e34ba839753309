package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/teamboard/internal/dependencies/ids"
)

// MockIDs is a mock implementation of ids.Generator for testing
type MockIDs struct {
	mu sync.Mutex

	// Queued is returned in order before falling back to sequential ids
	Queued []string
	index  int
	next   int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a MockIDs that returns the given ids first
func NewMockIDs(queued ...string) *MockIDs {
	return &MockIDs{Queued: queued}
}

// NewID returns the next queued id, or "id-N" once the queue is exhausted
func (m *MockIDs) NewID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index < len(m.Queued) {
		id := m.Queued[m.index]
		m.index++
		return id
	}
	m.next++
	return fmt.Sprintf("id-%d", m.next)
}

// Queue adds ids to the result queue
func (m *MockIDs) Queue(values ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queued = append(m.Queued, values...)
}
