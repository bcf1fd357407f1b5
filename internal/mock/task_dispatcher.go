package mock

import (
	"context"
	"sync"

	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

// MockDispatcher implements task dispatching for tests.
type MockDispatcher struct {
	mu sync.Mutex

	RunCalled      bool
	RunIDs         []uuid.UUID
	RunGenerations []int
	RunErr         error
}

var _ port.TaskDispatcher = (*MockDispatcher)(nil)

func (m *MockDispatcher) EnqueueRunSession(ctx context.Context, id uuid.UUID, generation int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunCalled = true
	m.RunIDs = append(m.RunIDs, id)
	m.RunGenerations = append(m.RunGenerations, generation)
	return m.RunErr
}

// Runs returns how many runs were enqueued.
func (m *MockDispatcher) Runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RunIDs)
}
