package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/taskapp/internal/api/shared"
	"github.com/phrazzld/taskapp/internal/store"
	"github.com/phrazzld/taskapp/internal/upload"
)

// TaskImageContentType labels served task images. The bytes are PNG.
const TaskImageContentType = "image/jpg"

// parseUpload reads the files allowed by policy. Every policy violation is
// answered here with 400 and {"error": message}.
func parseUpload(w http.ResponseWriter, r *http.Request, policy upload.Policy) ([]upload.File, bool) {
	files, err := policy.Parse(w, r)
	if err != nil {
		if uploadErr, ok := upload.IsError(err); ok {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, uploadErr.Message, err)
			return nil, false
		}
		shared.RespondWithStatus(w, r, http.StatusInternalServerError, err)
		return nil, false
	}
	return files, true
}

// UploadImages handles POST /tasks/images/{id}.
func (h *TaskHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	files, ok := parseUpload(w, r, upload.TaskImages)
	if !ok {
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithStatus(w, r, http.StatusNotFound, err)
		return
	}

	err = h.tasks.AddImages(r.Context(), id, user.ID, upload.Contents(files))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			shared.RespondWithStatus(w, r, http.StatusNotFound, nil)
			return
		}
		shared.RespondWithStatus(w, r, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ServeImage handles GET /tasks/{id}/image. Any authenticated user may read
// the first image of any task.
func (h *TaskHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithStatus(w, r, http.StatusNotFound, err)
		return
	}

	data, err := h.tasks.FirstImage(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			shared.RespondWithStatus(w, r, http.StatusNotFound, nil)
			return
		}
		shared.RespondWithStatus(w, r, http.StatusInternalServerError, err)
		return
	}

	shared.RespondWithBytes(w, r, TaskImageContentType, data)
}
