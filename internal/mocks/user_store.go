package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapp/internal/domain"
	"github.com/phrazzld/taskapp/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn          func(ctx context.Context, user *domain.User) error
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn      func(ctx context.Context, email string) (*domain.User, error)
	GetByTokenFn      func(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)
	UpdateFn          func(ctx context.Context, user *domain.User) error
	DeleteFn          func(ctx context.Context, id uuid.UUID) error
	AddTokenFn        func(ctx context.Context, userID uuid.UUID, token string) error
	RemoveTokenFn     func(ctx context.Context, userID uuid.UUID, token string) error
	RemoveAllTokensFn func(ctx context.Context, userID uuid.UUID) error
	SetAvatarFn       func(ctx context.Context, userID uuid.UUID, avatar []byte) error

	mu      sync.Mutex
	users   map[uuid.UUID]domain.User
	tokens  map[uuid.UUID]map[string]struct{}
	avatars map[uuid.UUID][]byte
}

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users:   make(map[uuid.UUID]domain.User),
		tokens:  make(map[uuid.UUID]map[string]struct{}),
		avatars: make(map[uuid.UUID][]byte),
	}
}

var _ store.UserStore = (*MockUserStore)(nil)

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	m.users[user.ID] = *user
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return m.withAvatarFlag(user), nil
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return m.withAvatarFlag(user), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByToken implements the UserStore interface
func (m *MockUserStore) GetByToken(ctx context.Context, id uuid.UUID, token string) (*domain.User, error) {
	if m.GetByTokenFn != nil {
		return m.GetByTokenFn(ctx, id, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	if _, held := m.tokens[id][token]; !held {
		return nil, store.ErrUserNotFound
	}
	return m.withAvatarFlag(user), nil
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	for id, existing := range m.users {
		if id != user.ID && existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	m.users[user.ID] = *user
	return nil
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	delete(m.tokens, id)
	delete(m.avatars, id)
	return nil
}

// AddToken implements the UserStore interface
func (m *MockUserStore) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	if m.AddTokenFn != nil {
		return m.AddTokenFn(ctx, userID, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return store.ErrUserNotFound
	}
	if m.tokens[userID] == nil {
		m.tokens[userID] = make(map[string]struct{})
	}
	m.tokens[userID][token] = struct{}{}
	return nil
}

// RemoveToken implements the UserStore interface
func (m *MockUserStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	if m.RemoveTokenFn != nil {
		return m.RemoveTokenFn(ctx, userID, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens[userID], token)
	return nil
}

// RemoveAllTokens implements the UserStore interface
func (m *MockUserStore) RemoveAllTokens(ctx context.Context, userID uuid.UUID) error {
	if m.RemoveAllTokensFn != nil {
		return m.RemoveAllTokensFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, userID)
	return nil
}

// SetAvatar implements the UserStore interface
func (m *MockUserStore) SetAvatar(ctx context.Context, userID uuid.UUID, avatar []byte) error {
	if m.SetAvatarFn != nil {
		return m.SetAvatarFn(ctx, userID, avatar)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return store.ErrUserNotFound
	}
	if avatar == nil {
		delete(m.avatars, userID)
	} else {
		m.avatars[userID] = avatar
	}
	return nil
}

// GetAvatar implements the UserStore interface
func (m *MockUserStore) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return nil, store.ErrUserNotFound
	}
	avatar, ok := m.avatars[userID]
	if !ok {
		return nil, store.ErrImageNotFound
	}
	return avatar, nil
}

// WithTx implements the UserStore interface. The mock ignores transactions.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// TokenCount returns the number of live tokens held by the user.
func (m *MockUserStore) TokenCount(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens[userID])
}

// withAvatarFlag must be called with m.mu held.
func (m *MockUserStore) withAvatarFlag(user domain.User) *domain.User {
	_, user.HasAvatar = m.avatars[user.ID]
	return &user
}
