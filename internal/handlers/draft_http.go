package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sahil06012005/OdooHackathon/internal/middleware"
	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/repository"
	"github.com/sahil06012005/OdooHackathon/internal/utils"
)

// DraftHTTP is the auto-save endpoint behind the create-ticket form. The
// client PUTs the form on a timer; GET restores it on mount; DELETE clears
// it after submit.
type DraftHTTP struct {
	drafts repository.DraftRepository
}

func NewDraftHTTP(drafts repository.DraftRepository) *DraftHTTP {
	return &DraftHTTP{drafts: drafts}
}

// GET /api/drafts/me
// Responds 204 when no draft is saved.
func (h *DraftHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		d, err := h.drafts.Get(r.Context(), uid)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to load draft")
			return
		}
		if d == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		utils.JSON(w, http.StatusOK, d)
	}
}

// PUT /api/drafts/me
func (h *DraftHTTP) Save() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Category    string `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		// An entirely empty form is not worth saving.
		if strings.TrimSpace(in.Title) == "" && strings.TrimSpace(in.Description) == "" {
			utils.Error(w, http.StatusBadRequest, "nothing to save")
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		d := &models.Draft{
			UserID:      uid,
			Title:       in.Title,
			Description: in.Description,
			Category:    in.Category,
		}
		if err := h.drafts.Save(r.Context(), d); err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to save draft")
			return
		}
		utils.JSON(w, http.StatusOK, d)
	}
}

// DELETE /api/drafts/me
func (h *DraftHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		if err := h.drafts.Delete(r.Context(), uid); err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to delete draft")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
