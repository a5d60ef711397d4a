package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapp/internal/domain"
	"github.com/phrazzld/taskapp/internal/platform/logger"
	"github.com/phrazzld/taskapp/internal/store"
)

// TaskService provides task operations scoped to the requesting owner.
type TaskService interface {
	// Create stores a new task owned by ownerID.
	Create(ctx context.Context, ownerID uuid.UUID, description string, completed bool) (*domain.Task, error)

	// List returns one page of the owner's tasks.
	List(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, error)

	// Get returns the task only when ownerID owns it.
	Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// Update applies a partial update. A rejected update changes nothing.
	Update(ctx context.Context, id, ownerID uuid.UUID, update domain.TaskUpdate) (*domain.Task, error)

	// Delete removes the task and returns the removed record.
	Delete(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// AddImages resizes the uploads and appends them to the task's images
	// in the order given.
	AddImages(ctx context.Context, id, ownerID uuid.UUID, images [][]byte) error

	// FirstImage returns the task's first image regardless of owner.
	FirstImage(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	taskStore store.TaskStore
	images    ImageProcessor
	db        *sql.DB
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskStore store.TaskStore,
	images ImageProcessor,
	db *sql.DB,
	logger *slog.Logger,
) *TaskServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		taskStore: taskStore,
		images:    images,
		db:        db,
		logger:    logger.With(slog.String("component", "task_service")),
	}
}

var _ TaskService = (*TaskServiceImpl)(nil)

// Create implements TaskService.Create
func (s *TaskServiceImpl) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	description string,
	completed bool,
) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, description, completed)
	if err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// List implements TaskService.List
func (s *TaskServiceImpl) List(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, error) {
	tasks, err := s.taskStore.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Get implements TaskService.Get
func (s *TaskServiceImpl) Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Update implements TaskService.Update
func (s *TaskServiceImpl) Update(
	ctx context.Context,
	id, ownerID uuid.UUID,
	update domain.TaskUpdate,
) (*domain.Task, error) {
	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		task, err := txStore.GetByID(ctx, id, ownerID)
		if err != nil {
			return err
		}
		if err := task.Apply(update); err != nil {
			return err
		}
		if err := txStore.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return updated, nil
}

// Delete implements TaskService.Delete
func (s *TaskServiceImpl) Delete(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.Delete(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return task, nil
}

// AddImages implements TaskService.AddImages
func (s *TaskServiceImpl) AddImages(ctx context.Context, id, ownerID uuid.UUID, images [][]byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.taskStore.GetByID(ctx, id, ownerID); err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	if len(images) == 0 {
		return nil
	}

	resized, err := s.images.ResizeAll(ctx, images)
	if err != nil {
		log.Warn("failed to process task images",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrImageProcessing, err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).AppendImages(ctx, id, resized)
	})
	if err != nil {
		return fmt.Errorf("failed to append task images: %w", err)
	}

	log.Debug("task images added",
		slog.String("task_id", id.String()),
		slog.Int("count", len(resized)))
	return nil
}

// FirstImage implements TaskService.FirstImage
func (s *TaskServiceImpl) FirstImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
	data, err := s.taskStore.FirstImage(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to load task image",
				slog.String("task_id", id.String()),
				slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to get task image: %w", err)
	}
	return data, nil
}
