package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskapp/internal/events"
)

// MockEventEmitter records emitted events.
type MockEventEmitter struct {
	EmitEventFn func(ctx context.Context, event *events.AccountEvent) error

	mu     sync.Mutex
	events []*events.AccountEvent
}

var _ events.EventEmitter = (*MockEventEmitter)(nil)

// EmitEvent implements events.EventEmitter
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.AccountEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()

	if m.EmitEventFn != nil {
		return m.EmitEventFn(ctx, event)
	}
	return nil
}

// Events returns the recorded events in emission order.
func (m *MockEventEmitter) Events() []*events.AccountEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*events.AccountEvent(nil), m.events...)
}
