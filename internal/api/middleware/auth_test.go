package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapp/internal/api/shared"
	"github.com/phrazzld/taskapp/internal/domain"
	"github.com/phrazzld/taskapp/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authenticatorFunc func(ctx context.Context, token string) (*domain.User, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return f(ctx, token)
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	user := &domain.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
	authenticator := authenticatorFunc(func(ctx context.Context, token string) (*domain.User, error) {
		switch token {
		case "live-token":
			return user, nil
		case "broken-store":
			return nil, errors.New("connection refused")
		default:
			return nil, service.ErrUnauthenticated
		}
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{name: "live token", authHeader: "Bearer live-token", expectedStatus: http.StatusOK},
		{name: "scheme is case insensitive", authHeader: "bearer live-token", expectedStatus: http.StatusOK},
		{name: "missing header", authHeader: "", expectedStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Basic live-token", expectedStatus: http.StatusUnauthorized},
		{name: "empty token", authHeader: "Bearer ", expectedStatus: http.StatusUnauthorized},
		{name: "revoked token", authHeader: "Bearer revoked", expectedStatus: http.StatusUnauthorized},
		{name: "lookup failure", authHeader: "Bearer broken-store", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotUser *domain.User
			var gotToken string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = shared.UserFromContext(r.Context())
				gotToken, _ = shared.TokenFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			NewAuthMiddleware(authenticator).Authenticate(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, user, gotUser)
				assert.Equal(t, "live-token", gotToken)
				return
			}

			assert.Nil(t, gotUser, "next handler must not run")
			var body shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, UnauthenticatedMessage, body.Error)
		})
	}
}
