package api

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskapp/internal/api/shared"
	"github.com/phrazzld/taskapp/internal/domain"
	"github.com/stretchr/testify/require"
)

// mockTaskService is a function-field implementation of service.TaskService.
type mockTaskService struct {
	createFn     func(ctx context.Context, ownerID uuid.UUID, description string, completed bool) (*domain.Task, error)
	listFn       func(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, error)
	getFn        func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	updateFn     func(ctx context.Context, id, ownerID uuid.UUID, update domain.TaskUpdate) (*domain.Task, error)
	deleteFn     func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	addImagesFn  func(ctx context.Context, id, ownerID uuid.UUID, images [][]byte) error
	firstImageFn func(ctx context.Context, id uuid.UUID) ([]byte, error)
}

func (m *mockTaskService) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	description string,
	completed bool,
) (*domain.Task, error) {
	return m.createFn(ctx, ownerID, description, completed)
}

func (m *mockTaskService) List(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, error) {
	return m.listFn(ctx, query)
}

func (m *mockTaskService) Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	return m.getFn(ctx, id, ownerID)
}

func (m *mockTaskService) Update(
	ctx context.Context,
	id, ownerID uuid.UUID,
	update domain.TaskUpdate,
) (*domain.Task, error) {
	return m.updateFn(ctx, id, ownerID, update)
}

func (m *mockTaskService) Delete(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	return m.deleteFn(ctx, id, ownerID)
}

func (m *mockTaskService) AddImages(ctx context.Context, id, ownerID uuid.UUID, images [][]byte) error {
	return m.addImagesFn(ctx, id, ownerID, images)
}

func (m *mockTaskService) FirstImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return m.firstImageFn(ctx, id)
}

// mockUserService is a function-field implementation of service.UserService.
type mockUserService struct {
	registerFn     func(ctx context.Context, name, email, password string, age int) (*domain.User, string, error)
	loginFn        func(ctx context.Context, email, password string) (*domain.User, string, error)
	authenticateFn func(ctx context.Context, token string) (*domain.User, error)
	logoutFn       func(ctx context.Context, userID uuid.UUID, token string) error
	logoutAllFn    func(ctx context.Context, userID uuid.UUID) error
	updateFn       func(ctx context.Context, user *domain.User, update domain.UserUpdate) (*domain.User, error)
	deleteFn       func(ctx context.Context, user *domain.User) error
	setAvatarFn    func(ctx context.Context, userID uuid.UUID, image []byte) error
	clearAvatarFn  func(ctx context.Context, userID uuid.UUID) error
	avatarFn       func(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

func (m *mockUserService) Register(
	ctx context.Context,
	name, email, password string,
	age int,
) (*domain.User, string, error) {
	return m.registerFn(ctx, name, email, password, age)
}

func (m *mockUserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockUserService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return m.authenticateFn(ctx, token)
}

func (m *mockUserService) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	return m.logoutFn(ctx, userID, token)
}

func (m *mockUserService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return m.logoutAllFn(ctx, userID)
}

func (m *mockUserService) Update(
	ctx context.Context,
	user *domain.User,
	update domain.UserUpdate,
) (*domain.User, error) {
	return m.updateFn(ctx, user, update)
}

func (m *mockUserService) Delete(ctx context.Context, user *domain.User) error {
	return m.deleteFn(ctx, user)
}

func (m *mockUserService) SetAvatar(ctx context.Context, userID uuid.UUID, image []byte) error {
	return m.setAvatarFn(ctx, userID, image)
}

func (m *mockUserService) ClearAvatar(ctx context.Context, userID uuid.UUID) error {
	return m.clearAvatarFn(ctx, userID)
}

func (m *mockUserService) Avatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	return m.avatarFn(ctx, userID)
}

func testUser() *domain.User {
	return &domain.User{
		ID:             uuid.New(),
		Name:           "Ada",
		Email:          "ada@example.com",
		Age:            36,
		HashedPassword: "$2a$04$hash",
	}
}

// withSession stands in for the auth middleware.
func withSession(user *domain.User, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.WithSession(r.Context(), user, token)))
		})
	}
}

func newTaskRouter(h *TaskHandler, user *domain.User) http.Handler {
	r := chi.NewRouter()
	r.Use(withSession(user, "session-token"))
	r.Post("/tasks", h.Create)
	r.Get("/tasks", h.List)
	r.Get("/tasks/{id}", h.Get)
	r.Patch("/tasks/{id}", h.Update)
	r.Delete("/tasks/{id}", h.Delete)
	r.Post("/tasks/images/{id}", h.UploadImages)
	r.Get("/tasks/{id}/image", h.ServeImage)
	return r
}

func newUserRouter(h *UserHandler, user *domain.User) http.Handler {
	r := chi.NewRouter()
	r.Post("/users", h.Register)
	r.Post("/users/login", h.Login)
	r.Get("/users/{id}/avatar", h.ServeAvatar)
	r.Group(func(r chi.Router) {
		r.Use(withSession(user, "session-token"))
		r.Post("/users/logout", h.Logout)
		r.Post("/users/logoutAll", h.LogoutAll)
		r.Get("/users/me", h.Me)
		r.Patch("/users/me", h.UpdateMe)
		r.Delete("/users/me", h.DeleteMe)
		r.Post("/users/me/avatar", h.UploadAvatar)
		r.Delete("/users/me/avatar", h.DeleteAvatar)
	})
	return r
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type filePart struct {
	field    string
	filename string
	data     []byte
}

func multipartRequest(t *testing.T, target string, parts ...filePart) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jpegFixture(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}
