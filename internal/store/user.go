package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapp/internal/domain"
)

// UserStore defines the interface for user and session-token persistence.
type UserStore interface {
	// Create saves a new user. The password must already be hashed.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by normalized email. Returns ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByToken retrieves the user with the given ID whose token set
	// contains token. Returns ErrUserNotFound when there is no such pairing.
	GetByToken(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)

	// Update saves name, email, age, hashed password and updated_at.
	// Returns ErrUserNotFound or ErrEmailExists.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes the user together with its tokens and tasks.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddToken records a newly issued session token for the user.
	AddToken(ctx context.Context, userID uuid.UUID, token string) error

	// RemoveToken revokes one session token. Revoking an unknown token is not an error.
	RemoveToken(ctx context.Context, userID uuid.UUID, token string) error

	// RemoveAllTokens revokes every session token of the user.
	RemoveAllTokens(ctx context.Context, userID uuid.UUID) error

	// SetAvatar stores avatar image bytes; nil clears the avatar.
	SetAvatar(ctx context.Context, userID uuid.UUID, avatar []byte) error

	// GetAvatar returns the stored avatar bytes, or ErrImageNotFound.
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)

	// WithTx returns a UserStore bound to the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
