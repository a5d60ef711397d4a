package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapp/internal/domain"
	"github.com/phrazzld/taskapp/internal/events"
	"github.com/phrazzld/taskapp/internal/platform/logger"
	"github.com/phrazzld/taskapp/internal/service/auth"
	"github.com/phrazzld/taskapp/internal/store"
)

// UserService provides account operations: registration, sessions, profile
// updates, deletion and avatars.
type UserService interface {
	// Register creates an account and opens its first session.
	Register(ctx context.Context, name, email, password string, age int) (*domain.User, string, error)

	// Login verifies the credentials and opens a new session.
	// Fails with ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)

	// Authenticate resolves a session token to the user holding it.
	// Fails with ErrUnauthenticated.
	Authenticate(ctx context.Context, token string) (*domain.User, error)

	// Logout revokes a single session token.
	Logout(ctx context.Context, userID uuid.UUID, token string) error

	// LogoutAll revokes every session token of the user.
	LogoutAll(ctx context.Context, userID uuid.UUID) error

	// Update applies a partial profile update and returns the new profile.
	Update(ctx context.Context, user *domain.User, update domain.UserUpdate) (*domain.User, error)

	// Delete removes the account with everything it owns.
	Delete(ctx context.Context, user *domain.User) error

	// SetAvatar resizes the image and stores it as the user's avatar.
	SetAvatar(ctx context.Context, userID uuid.UUID, image []byte) error

	// ClearAvatar removes the user's avatar.
	ClearAvatar(ctx context.Context, userID uuid.UUID) error

	// Avatar returns the stored avatar PNG.
	Avatar(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	tokens    auth.JWTService
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	emitter   events.EventEmitter
	images    ImageProcessor
	db        *sql.DB
	logger    *slog.Logger
}

// UserServiceDeps groups the collaborators of UserServiceImpl.
type UserServiceDeps struct {
	UserStore store.UserStore
	Tokens    auth.JWTService
	Hasher    auth.PasswordHasher
	Verifier  auth.PasswordVerifier
	Emitter   events.EventEmitter
	Images    ImageProcessor
	DB        *sql.DB
	Logger    *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(deps UserServiceDeps) *UserServiceImpl {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &UserServiceImpl{
		userStore: deps.UserStore,
		tokens:    deps.Tokens,
		hasher:    deps.Hasher,
		verifier:  deps.Verifier,
		emitter:   deps.Emitter,
		images:    deps.Images,
		db:        deps.DB,
		logger:    log.With(slog.String("component", "user_service")),
	}
}

var _ UserService = (*UserServiceImpl)(nil)

// Register implements UserService.Register.
// The user row and its first token are written in one transaction.
func (s *UserServiceImpl) Register(
	ctx context.Context,
	name, email, password string,
	age int,
) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(name, email, password, age)
	if err != nil {
		return nil, "", err
	}
	if err := s.hashPassword(user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)
		if err := txStore.Create(ctx, user); err != nil {
			return err
		}
		return txStore.AddToken(ctx, user.ID, token)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to register an existing email")
		} else {
			log.Error("failed to register user", slog.String("error", err.Error()))
		}
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	s.emit(ctx, events.TypeUserCreated, user)

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// Login implements UserService.Login
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to verify password: %w", err)
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.userStore.AddToken(ctx, user.ID, token); err != nil {
		return nil, "", fmt.Errorf("failed to store token: %w", err)
	}

	log.Debug("user logged in", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// Authenticate implements UserService.Authenticate
func (s *UserServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, auth.ErrMissingToken)
	}

	claims, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := s.userStore.GetByToken(ctx, claims.UserID, token)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: token revoked", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	return user, nil
}

// Logout implements UserService.Logout
func (s *UserServiceImpl) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.userStore.RemoveToken(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// LogoutAll implements UserService.LogoutAll
func (s *UserServiceImpl) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.userStore.RemoveAllTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to remove tokens: %w", err)
	}
	return nil
}

// Update implements UserService.Update
func (s *UserServiceImpl) Update(
	ctx context.Context,
	user *domain.User,
	update domain.UserUpdate,
) (*domain.User, error) {
	next := *user
	if err := next.Apply(update); err != nil {
		return nil, err
	}
	if next.Password != "" {
		if err := s.hashPassword(&next); err != nil {
			return nil, err
		}
	}

	if err := s.userStore.Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("user updated",
		slog.String("user_id", next.ID.String()))
	return &next, nil
}

// Delete implements UserService.Delete
func (s *UserServiceImpl) Delete(ctx context.Context, user *domain.User) error {
	if err := s.userStore.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.emit(ctx, events.TypeUserDeleted, user)

	logger.FromContextOrDefault(ctx, s.logger).Info("user deleted",
		slog.String("user_id", user.ID.String()))
	return nil
}

// SetAvatar implements UserService.SetAvatar
func (s *UserServiceImpl) SetAvatar(ctx context.Context, userID uuid.UUID, image []byte) error {
	png, err := s.images.ToPNG(image)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImageProcessing, err)
	}
	if err := s.userStore.SetAvatar(ctx, userID, png); err != nil {
		return fmt.Errorf("failed to store avatar: %w", err)
	}
	return nil
}

// ClearAvatar implements UserService.ClearAvatar
func (s *UserServiceImpl) ClearAvatar(ctx context.Context, userID uuid.UUID) error {
	if err := s.userStore.SetAvatar(ctx, userID, nil); err != nil {
		return fmt.Errorf("failed to clear avatar: %w", err)
	}
	return nil
}

// Avatar implements UserService.Avatar
func (s *UserServiceImpl) Avatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	data, err := s.userStore.GetAvatar(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get avatar: %w", err)
	}
	return data, nil
}

// hashPassword replaces the plaintext password of user with its hash.
func (s *UserServiceImpl) hashPassword(user *domain.User) error {
	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""
	return nil
}

// emit publishes an account event. Delivery problems never fail the
// operation that produced the event.
func (s *UserServiceImpl) emit(ctx context.Context, eventType string, user *domain.User) {
	if s.emitter == nil {
		return
	}
	event := events.NewAccountEvent(eventType, user.ID, user.Name, user.Email)
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit account event",
			slog.String("type", eventType),
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
	}
}
