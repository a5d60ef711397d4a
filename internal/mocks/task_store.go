package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapp/internal/domain"
	"github.com/phrazzld/taskapp/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	CreateFn       func(ctx context.Context, task *domain.Task) error
	GetByIDFn      func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	ListFn         func(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, error)
	UpdateFn       func(ctx context.Context, task *domain.Task) error
	DeleteFn       func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	AppendImagesFn func(ctx context.Context, taskID uuid.UUID, images [][]byte) error
	FirstImageFn   func(ctx context.Context, taskID uuid.UUID) ([]byte, error)

	// LastQuery records the most recent List query.
	LastQuery domain.TaskQuery

	mu     sync.Mutex
	tasks  map[uuid.UUID]domain.Task
	images map[uuid.UUID][][]byte
}

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		tasks:  make(map[uuid.UUID]domain.Task),
		images: make(map[uuid.UUID][][]byte),
	}
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = *task
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	return m.withImageCount(task), nil
}

// List implements the TaskStore interface
func (m *MockTaskStore) List(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, error) {
	m.mu.Lock()
	m.LastQuery = query
	m.mu.Unlock()

	if m.ListFn != nil {
		return m.ListFn(ctx, query)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.Task, 0)
	for _, task := range m.tasks {
		if task.OwnerID != query.OwnerID {
			continue
		}
		if query.Completed != nil && task.Completed != *query.Completed {
			continue
		}
		result = append(result, m.withImageCount(task))
	}

	less := func(a, b *domain.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	if query.Sort != nil {
		switch query.Sort.Field {
		case domain.SortByDescription:
			less = func(a, b *domain.Task) bool { return a.Description < b.Description }
		case domain.SortByCompleted:
			less = func(a, b *domain.Task) bool { return !a.Completed && b.Completed }
		case domain.SortByUpdatedAt:
			less = func(a, b *domain.Task) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
		}
		if query.Sort.Descending {
			asc := less
			less = func(a, b *domain.Task) bool { return asc(b, a) }
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return less(result[i], result[j]) })

	if query.Skip > 0 {
		if query.Skip >= len(result) {
			return []*domain.Task{}, nil
		}
		result = result[query.Skip:]
	}
	if query.Limit > 0 && query.Limit < len(result) {
		result = result[:query.Limit]
	}
	return result, nil
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return store.ErrTaskNotFound
	}
	m.tasks[task.ID] = *task
	return nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	deleted := m.withImageCount(task)
	delete(m.tasks, id)
	delete(m.images, id)
	return deleted, nil
}

// AppendImages implements the TaskStore interface
func (m *MockTaskStore) AppendImages(ctx context.Context, taskID uuid.UUID, images [][]byte) error {
	if m.AppendImagesFn != nil {
		return m.AppendImagesFn(ctx, taskID, images)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[taskID]; !ok {
		return store.ErrTaskNotFound
	}
	m.images[taskID] = append(m.images[taskID], images...)
	return nil
}

// FirstImage implements the TaskStore interface
func (m *MockTaskStore) FirstImage(ctx context.Context, taskID uuid.UUID) ([]byte, error) {
	if m.FirstImageFn != nil {
		return m.FirstImageFn(ctx, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[taskID]; !ok {
		return nil, store.ErrTaskNotFound
	}
	if len(m.images[taskID]) == 0 {
		return nil, store.ErrImageNotFound
	}
	return m.images[taskID][0], nil
}

// WithTx implements the TaskStore interface. The mock ignores transactions.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// Images returns a copy of the stored images of a task.
func (m *MockTaskStore) Images(taskID uuid.UUID) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.images[taskID]...)
}

// withImageCount must be called with m.mu held.
func (m *MockTaskStore) withImageCount(task domain.Task) *domain.Task {
	task.ImageCount = len(m.images[task.ID])
	return &task
}
