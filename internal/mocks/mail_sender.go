package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskapp/internal/platform/mail"
)

// MockMailSender implements mail.Sender and records every message.
type MockMailSender struct {
	SendFn func(ctx context.Context, msg mail.Message) error

	mu   sync.Mutex
	sent []mail.Message
}

var _ mail.Sender = (*MockMailSender)(nil)

// Send implements mail.Sender
func (m *MockMailSender) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	if m.SendFn != nil {
		return m.SendFn(ctx, msg)
	}
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockMailSender) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}
