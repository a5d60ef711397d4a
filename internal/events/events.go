package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account event types.
const (
	TypeUserCreated = "user.created"
	TypeUserDeleted = "user.deleted"
)

// AccountEvent records a change in an account's lifecycle. It carries the
// recipient details itself because a deleted user can no longer be loaded.
type AccountEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewAccountEvent creates an AccountEvent of the given type.
func NewAccountEvent(eventType string, userID uuid.UUID, name, email string) *AccountEvent {
	return &AccountEvent{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		Name:       name,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Handlers must not block the emitting request for long.
	HandleEvent(ctx context.Context, event *AccountEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *AccountEvent) error
}
