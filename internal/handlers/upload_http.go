package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sahil06012005/OdooHackathon/internal/middleware"
	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/storage"
	"github.com/sahil06012005/OdooHackathon/internal/utils"
)

// 10 MiB per attachment.
const maxUploadBytes = 10 << 20

// UploadHTTP handles the ticket-form attachment flow.
type UploadHTTP struct {
	store storage.BlobStore
}

func NewUploadHTTP(store storage.BlobStore) *UploadHTTP {
	return &UploadHTTP{store: store}
}

// POST /api/uploads
// Multipart field "file", optional "folder".
// Returns the attachment record the ticket form embeds on submit.
func (h *UploadHTTP) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			utils.Error(w, http.StatusBadRequest, "file too large or malformed upload")
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "file is required")
			return
		}
		defer f.Close()

		folder := r.FormValue("folder")
		if folder == "" {
			folder = "tickets"
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)

		obj, err := h.store.Upload(r.Context(), uid, folder, hdr.Filename,
			hdr.Header.Get("Content-Type"), f)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to upload file")
			return
		}

		utils.JSON(w, http.StatusCreated, models.Attachment{
			Name:        hdr.Filename,
			Size:        hdr.Size,
			ContentType: hdr.Header.Get("Content-Type"),
			Path:        obj.Path,
			URL:         obj.PublicURL,
		})
	}
}

// DELETE /api/uploads
// Body {"path": "..."}; removes an attachment the user changed their mind
// about before submit.
func (h *UploadHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Path == "" {
			utils.Error(w, http.StatusBadRequest, "path is required")
			return
		}
		if err := h.store.Delete(r.Context(), in.Path); err != nil {
			if errors.Is(err, storage.ErrInvalidPath) {
				utils.Error(w, http.StatusBadRequest, "invalid path")
				return
			}
			utils.Error(w, http.StatusInternalServerError, "failed to delete file")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
