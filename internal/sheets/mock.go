package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
)

var _ service.WorkQueueWriter = (*MockWriter)(nil)

// MockWriter records Write calls for tests.
type MockWriter struct {
	WriteFunc  func(ctx context.Context, claims []model.ProcessedClaim, metrics model.Metrics) error
	WriteCalls []WriteCall
	mu         sync.Mutex
}

// WriteCall represents a single call to Write.
type WriteCall struct {
	Error   error
	Claims  []model.ProcessedClaim
	Metrics model.Metrics
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write implements service.WorkQueueWriter.
func (m *MockWriter) Write(ctx context.Context, claims []model.ProcessedClaim, metrics model.Metrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.WriteFunc != nil {
		err = m.WriteFunc(ctx, claims, metrics)
	}

	m.WriteCalls = append(m.WriteCalls, WriteCall{Claims: claims, Metrics: metrics, Error: err})
	return err
}

// Calls returns a copy of all write calls.
func (m *MockWriter) Calls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]WriteCall, len(m.WriteCalls))
	copy(calls, m.WriteCalls)
	return calls
}
