package service

import "errors"

// Common service errors. Callers check them with errors.Is; the API layer
// maps each one to a status code.
var (
	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	// Callers cannot tell the two cases apart.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthenticated indicates a session token that is malformed,
	// expired, or no longer held by any user.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrImageProcessing indicates an uploaded image could not be decoded
	// or re-encoded.
	ErrImageProcessing = errors.New("image processing failed")
)
