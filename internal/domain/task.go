package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a unit of work owned by exactly one user. The owner is set from the
// authenticated requester at creation and never changes.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     uuid.UUID `json:"owner"`
	ImageCount  int       `json:"image_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a Task for ownerID.
func NewTask(ownerID uuid.UUID, description string, completed bool) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Description: strings.TrimSpace(description),
		Completed:   completed,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if t.OwnerID == uuid.Nil {
		return NewValidationError("owner", "cannot be empty", ErrInvalidID)
	}
	if t.Description == "" {
		return NewValidationError("description", "is required", nil)
	}
	return nil
}

// TaskUpdate is a partial task update. Description and Completed are the
// only writable fields; a nil field is left untouched.
type TaskUpdate struct {
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Apply validates the update against a copy of t and copies it back only
// when valid, so a rejected update never partially mutates t.
func (t *Task) Apply(update TaskUpdate) error {
	next := *t
	if update.Description != nil {
		next.Description = strings.TrimSpace(*update.Description)
	}
	if update.Completed != nil {
		next.Completed = *update.Completed
	}

	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	*t = next
	return nil
}

// SortField names a sortable task attribute.
type SortField string

// Sortable task attributes.
const (
	SortByDescription SortField = "description"
	SortByCompleted   SortField = "completed"
	SortByCreatedAt   SortField = "created_at"
	SortByUpdatedAt   SortField = "updated_at"
)

var sortFieldAliases = map[string]SortField{
	"description": SortByDescription,
	"completed":   SortByCompleted,
	"created_at":  SortByCreatedAt,
	"createdAt":   SortByCreatedAt,
	"updated_at":  SortByUpdatedAt,
	"updatedAt":   SortByUpdatedAt,
}

// ParseSortField resolves a client-supplied field name, accepting both
// snake_case and camelCase spellings of the timestamps.
func ParseSortField(name string) (SortField, bool) {
	field, ok := sortFieldAliases[name]
	return field, ok
}

// TaskSort orders a task listing.
type TaskSort struct {
	Field      SortField
	Descending bool
}

// TaskQuery selects a page of one owner's tasks.
type TaskQuery struct {
	OwnerID uuid.UUID
	// Completed filters on the completed flag when non-nil.
	Completed *bool
	// Sort orders the result when non-nil; otherwise creation order applies.
	Sort *TaskSort
	// Limit caps the page size; zero means no limit.
	Limit int
	// Skip drops this many leading results after sorting.
	Skip int
}
