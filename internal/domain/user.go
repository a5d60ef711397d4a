package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Password length limits. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 7
	MaxPasswordLength = 72
)

var validate = validator.New()

// User represents a registered account.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Age            int       `json:"age"`
	Password       string    `json:"-"` // Plaintext, only set between decoding and hashing
	HashedPassword string    `json:"-"`
	HasAvatar      bool      `json:"has_avatar"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a User with a fresh ID after normalizing and validating
// the inputs. The caller hashes the password before storage.
func NewUser(name, email, password string, age int) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Age:       age,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if u.Name == "" {
		return NewValidationError("name", "is required", nil)
	}
	if u.Email == "" {
		return NewValidationError("email", "is required", nil)
	}
	if err := validate.Var(u.Email, "email"); err != nil {
		return NewValidationError("email", "is not a valid address", nil)
	}
	if u.Age < 0 {
		return NewValidationError("age", "must be a positive number", nil)
	}

	if u.Password != "" {
		return validatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return NewValidationError("password", "is required", nil)
	}
	return nil
}

func validatePassword(password string) error {
	trimmed := strings.TrimSpace(password)
	switch {
	case len(trimmed) < MinPasswordLength:
		return NewValidationError("password", "must be at least 7 characters", nil)
	case len(trimmed) > MaxPasswordLength:
		return NewValidationError("password", "must be at most 72 characters", nil)
	case strings.Contains(strings.ToLower(trimmed), "password"):
		return NewValidationError("password", `cannot contain "password"`, nil)
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserUpdate is a partial profile update. Only these four fields are
// writable by the account owner; a nil field is left untouched.
type UserUpdate struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Age      *int    `json:"age,omitempty"`
}

// Apply validates the update against a copy of u and, only if the result is
// valid, copies it back. A rejected update leaves u unchanged.
func (u *User) Apply(update UserUpdate) error {
	next := *u
	next.Password = ""
	if update.Name != nil {
		next.Name = strings.TrimSpace(*update.Name)
	}
	if update.Email != nil {
		next.Email = NormalizeEmail(*update.Email)
	}
	if update.Password != nil {
		next.Password = *update.Password
	}
	if update.Age != nil {
		next.Age = *update.Age
	}

	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	*u = next
	return nil
}
