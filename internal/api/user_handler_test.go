package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapp/internal/domain"
	"github.com/phrazzld/taskapp/internal/service"
	"github.com/phrazzld/taskapp/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedError  string
		expectCall     bool
	}{
		{
			name:           "created",
			body:           `{"name":"Ada","email":"ada@example.com","password":"correct-horse","age":36}`,
			expectedStatus: http.StatusCreated,
			expectCall:     true,
		},
		{
			name:           "duplicate email",
			body:           `{"name":"Ada","email":"ada@example.com","password":"correct-horse"}`,
			serviceErr:     store.ErrEmailExists,
			expectedStatus: http.StatusConflict,
			expectedError:  "Email already exists",
			expectCall:     true,
		},
		{
			name:           "weak password",
			body:           `{"name":"Ada","email":"ada@example.com","password":"password123"}`,
			serviceErr:     domain.NewValidationError("password", `cannot contain "password"`, nil),
			expectedStatus: http.StatusBadRequest,
			expectedError:  `invalid password: cannot contain "password"`,
			expectCall:     true,
		},
		{
			name:           "missing name",
			body:           `{"email":"ada@example.com","password":"correct-horse"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid name: is required",
		},
		{
			name:           "malformed email",
			body:           `{"name":"Ada","email":"ada","password":"correct-horse"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid email: is not a valid address",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			user := testUser()
			called := false
			svc := &mockUserService{
				registerFn: func(ctx context.Context, name, email, password string, age int) (*domain.User, string, error) {
					called = true
					if tc.serviceErr != nil {
						return nil, "", tc.serviceErr
					}
					return user, "new-token", nil
				},
			}
			router := newUserRouter(NewUserHandler(svc, nil), nil)

			rr := serve(router, jsonRequest(http.MethodPost, "/users", tc.body))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, tc.expectCall, called)
			if tc.expectedError != "" {
				assert.Equal(t, tc.expectedError, decodeError(t, rr.Body.Bytes()))
				return
			}

			var resp AuthResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, "new-token", resp.Token)
			assert.Equal(t, user.ID, resp.User.ID)
			assert.NotContains(t, rr.Body.String(), user.HashedPassword)
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	t.Parallel()
	user := testUser()

	svc := &mockUserService{
		loginFn: func(ctx context.Context, email, password string) (*domain.User, string, error) {
			switch password {
			case "correct-horse":
				return user, "login-token", nil
			case "database-down":
				return nil, "", errors.New("connection reset")
			default:
				return nil, "", service.ErrInvalidCredentials
			}
		},
	}
	router := newUserRouter(NewUserHandler(svc, nil), nil)

	rr := serve(router, jsonRequest(http.MethodPost, "/users/login",
		`{"email":"ada@example.com","password":"correct-horse"}`))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "login-token", resp.Token)

	for _, body := range []string{
		`{"email":"ada@example.com","password":"wrong-horse"}`,
		`{"email":"ada@example.com"}`,
		`not json`,
	} {
		rr = serve(router, jsonRequest(http.MethodPost, "/users/login", body))
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.Equal(t, "Unable to login", decodeError(t, rr.Body.Bytes()), body)
	}

	rr = serve(router, jsonRequest(http.MethodPost, "/users/login",
		`{"email":"ada@example.com","password":"database-down"}`))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestUserHandler_Sessions(t *testing.T) {
	t.Parallel()
	user := testUser()

	var loggedOut, loggedOutAll bool
	svc := &mockUserService{
		logoutFn: func(ctx context.Context, userID uuid.UUID, token string) error {
			assert.Equal(t, user.ID, userID)
			assert.Equal(t, "session-token", token, "only the presented token is revoked")
			loggedOut = true
			return nil
		},
		logoutAllFn: func(ctx context.Context, userID uuid.UUID) error {
			assert.Equal(t, user.ID, userID)
			loggedOutAll = true
			return nil
		},
	}
	router := newUserRouter(NewUserHandler(svc, nil), user)

	rr := serve(router, jsonRequest(http.MethodPost, "/users/logout", ""))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, loggedOut)

	rr = serve(router, jsonRequest(http.MethodPost, "/users/logoutAll", ""))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, loggedOutAll)

	svc.logoutFn = func(ctx context.Context, userID uuid.UUID, token string) error {
		return errors.New("connection reset")
	}
	rr = serve(router, jsonRequest(http.MethodPost, "/users/logout", ""))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestUserHandler_Profile(t *testing.T) {
	t.Parallel()
	user := testUser()

	t.Run("read", func(t *testing.T) {
		t.Parallel()
		rr := serve(newUserRouter(NewUserHandler(&mockUserService{}, nil), user),
			jsonRequest(http.MethodGet, "/users/me", ""))

		require.Equal(t, http.StatusOK, rr.Code)
		var got domain.User
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, user.ID, got.ID)
		assert.NotContains(t, rr.Body.String(), "password")
	})

	t.Run("update", func(t *testing.T) {
		t.Parallel()
		svc := &mockUserService{
			updateFn: func(ctx context.Context, u *domain.User, update domain.UserUpdate) (*domain.User, error) {
				updated := *u
				updated.Name = *update.Name
				return &updated, nil
			},
		}
		rr := serve(newUserRouter(NewUserHandler(svc, nil), user),
			jsonRequest(http.MethodPatch, "/users/me", `{"name":"Ada Lovelace"}`))

		require.Equal(t, http.StatusOK, rr.Code)
		var got domain.User
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "Ada Lovelace", got.Name)
	})

	t.Run("update with a forbidden field", func(t *testing.T) {
		t.Parallel()
		rr := serve(newUserRouter(NewUserHandler(&mockUserService{}, nil), user),
			jsonRequest(http.MethodPatch, "/users/me", `{"name":"Ada","id":"someone-else"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid updates!", decodeError(t, rr.Body.Bytes()))
	})

	t.Run("update rejected by validation", func(t *testing.T) {
		t.Parallel()
		svc := &mockUserService{
			updateFn: func(ctx context.Context, u *domain.User, update domain.UserUpdate) (*domain.User, error) {
				return nil, domain.NewValidationError("age", "must be a positive number", nil)
			},
		}
		rr := serve(newUserRouter(NewUserHandler(svc, nil), user),
			jsonRequest(http.MethodPatch, "/users/me", `{"age":-1}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid age: must be a positive number", decodeError(t, rr.Body.Bytes()))
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		var deleted *domain.User
		svc := &mockUserService{
			deleteFn: func(ctx context.Context, u *domain.User) error {
				deleted = u
				return nil
			},
		}
		rr := serve(newUserRouter(NewUserHandler(svc, nil), user),
			jsonRequest(http.MethodDelete, "/users/me", ""))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, user, deleted)
		var got domain.User
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("delete failure", func(t *testing.T) {
		t.Parallel()
		svc := &mockUserService{
			deleteFn: func(ctx context.Context, u *domain.User) error { return errors.New("connection reset") },
		}
		rr := serve(newUserRouter(NewUserHandler(svc, nil), user),
			jsonRequest(http.MethodDelete, "/users/me", ""))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Empty(t, rr.Body.String())
	})
}

func TestUserHandler_Avatar(t *testing.T) {
	t.Parallel()
	user := testUser()

	t.Run("upload", func(t *testing.T) {
		t.Parallel()
		var stored []byte
		svc := &mockUserService{
			setAvatarFn: func(ctx context.Context, userID uuid.UUID, image []byte) error {
				assert.Equal(t, user.ID, userID)
				stored = image
				return nil
			},
		}
		data := jpegFixture(t, 20, 20)
		req := multipartRequest(t, "/users/me/avatar", filePart{field: "avatar", filename: "me.jpg", data: data})
		rr := serve(newUserRouter(NewUserHandler(svc, nil), user), req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, data, stored)
	})

	t.Run("bmp is not accepted for avatars", func(t *testing.T) {
		t.Parallel()
		req := multipartRequest(t, "/users/me/avatar", filePart{field: "avatar", filename: "me.bmp", data: []byte("BM")})
		rr := serve(newUserRouter(NewUserHandler(&mockUserService{}, nil), user), req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Please upload an image", decodeError(t, rr.Body.Bytes()))
	})

	t.Run("no file", func(t *testing.T) {
		t.Parallel()
		rr := serve(newUserRouter(NewUserHandler(&mockUserService{}, nil), user),
			multipartRequest(t, "/users/me/avatar"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Please upload an image", decodeError(t, rr.Body.Bytes()))
	})

	t.Run("undecodable image", func(t *testing.T) {
		t.Parallel()
		svc := &mockUserService{
			setAvatarFn: func(ctx context.Context, userID uuid.UUID, image []byte) error {
				return service.ErrImageProcessing
			},
		}
		req := multipartRequest(t, "/users/me/avatar", filePart{field: "avatar", filename: "me.png", data: []byte("nope")})
		rr := serve(newUserRouter(NewUserHandler(svc, nil), user), req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Please upload an image", decodeError(t, rr.Body.Bytes()))
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		cleared := false
		svc := &mockUserService{
			clearAvatarFn: func(ctx context.Context, userID uuid.UUID) error {
				cleared = true
				return nil
			},
		}
		rr := serve(newUserRouter(NewUserHandler(svc, nil), user),
			jsonRequest(http.MethodDelete, "/users/me/avatar", ""))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, cleared)
	})

	t.Run("serve", func(t *testing.T) {
		t.Parallel()
		svc := &mockUserService{
			avatarFn: func(ctx context.Context, userID uuid.UUID) ([]byte, error) {
				if userID != user.ID {
					return nil, store.ErrUserNotFound
				}
				return []byte("png-bytes"), nil
			},
		}
		router := newUserRouter(NewUserHandler(svc, nil), nil)

		rr := serve(router, jsonRequest(http.MethodGet, "/users/"+user.ID.String()+"/avatar", ""))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
		assert.Equal(t, "png-bytes", rr.Body.String())

		rr = serve(router, jsonRequest(http.MethodGet, "/users/"+uuid.NewString()+"/avatar", ""))
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = serve(router, jsonRequest(http.MethodGet, "/users/bogus/avatar", ""))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
