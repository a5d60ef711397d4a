package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and verifies session tokens.
//
// A verified token only proves who it was issued to. Whether the session is
// still live is decided by the user store, which keeps every unrevoked token.
type JWTService interface {
	// GenerateToken creates a signed session token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken checks the signature and time claims of tokenString and
	// returns its claims. Fails with ErrInvalidToken, ErrExpiredToken or
	// ErrTokenNotYetValid.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the verified content of a session token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
