package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskapp/internal/api/shared"
	"github.com/phrazzld/taskapp/internal/domain"
	"github.com/phrazzld/taskapp/internal/platform/logger"
	"github.com/phrazzld/taskapp/internal/service"
	"github.com/phrazzld/taskapp/internal/store"
	"github.com/phrazzld/taskapp/internal/upload"
)

// AvatarContentType is the content type of served avatars.
const AvatarContentType = "image/png"

// UserHandler serves account registration, sessions, the profile of the
// authenticated user and avatars.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:  users,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgInvalidRequest, err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	user, token, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password, req.Age)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Login handles POST /users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgUnableToLogin, err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgUnableToLogin, err)
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgUnableToLogin, err)
			return
		}
		shared.RespondWithStatus(w, r, http.StatusInternalServerError, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{User: user, Token: token})
}

// Logout handles POST /users/logout and revokes only the presented token.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	token, _ := shared.TokenFromContext(r.Context())

	if err := h.users.Logout(r.Context(), user.ID, token); err != nil {
		shared.RespondWithStatus(w, r, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// LogoutAll handles POST /users/logoutAll.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.users.LogoutAll(r.Context(), user.ID); err != nil {
		shared.RespondWithStatus(w, r, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// UpdateMe handles PATCH /users/me. Only name, email, password and age may
// be sent; any other key rejects the whole request.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var update domain.UserUpdate
	if err := shared.DecodeStrictJSON(r, &update); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgInvalidUserUpdate, err)
		return
	}

	updated, err := h.users.Update(r.Context(), user, update)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

// DeleteMe handles DELETE /users/me and returns the deleted profile.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), user); err != nil {
		shared.RespondWithStatus(w, r, http.StatusInternalServerError, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("account deleted",
		slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// UploadAvatar handles POST /users/me/avatar.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	files, ok := parseUpload(w, r, upload.Avatar)
	if !ok {
		return
	}
	if len(files) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, msgAvatarRequired)
		return
	}

	if err := h.users.SetAvatar(r.Context(), user.ID, files[0].Data); err != nil {
		if errors.Is(err, service.ErrImageProcessing) {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgAvatarRequired, err)
			return
		}
		shared.RespondWithStatus(w, r, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeleteAvatar handles DELETE /users/me/avatar.
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.users.ClearAvatar(r.Context(), user.ID); err != nil {
		shared.RespondWithStatus(w, r, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ServeAvatar handles GET /users/{id}/avatar.
func (h *UserHandler) ServeAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithStatus(w, r, http.StatusNotFound, err)
		return
	}

	data, err := h.users.Avatar(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			shared.RespondWithStatus(w, r, http.StatusNotFound, nil)
			return
		}
		shared.RespondWithStatus(w, r, http.StatusInternalServerError, err)
		return
	}

	shared.RespondWithBytes(w, r, AvatarContentType, data)
}
