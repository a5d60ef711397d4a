package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapp/internal/domain"
)

// TaskStore defines the interface for task and task-image persistence.
// Every read and write except the image operations is scoped by owner.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the task fails validation or its owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves the task with the given ID owned by ownerID.
	// Returns ErrTaskNotFound otherwise.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// List returns the page of tasks selected by query. It never returns
	// tasks of another owner.
	List(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, error)

	// Update saves the description, completed flag and updated_at of a task
	// owned by task.OwnerID. Returns ErrTaskNotFound otherwise.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task with the given ID owned by ownerID in a single
	// statement and returns the deleted record. Returns ErrTaskNotFound otherwise.
	Delete(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// AppendImages appends images to the task in slice order. Run it inside
	// a transaction: the task row stays locked until commit, which keeps
	// positions dense under concurrent uploads. Returns ErrTaskNotFound.
	AppendImages(ctx context.Context, taskID uuid.UUID, images [][]byte) error

	// FirstImage returns the lowest-positioned image of the task.
	// Returns ErrTaskNotFound or ErrImageNotFound.
	FirstImage(ctx context.Context, taskID uuid.UUID) ([]byte, error)

	// WithTx returns a TaskStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
