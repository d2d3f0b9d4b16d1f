package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sahil06012005/OdooHackathon/internal/middleware"
	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/repository"
	"github.com/sahil06012005/OdooHackathon/internal/service"
	"github.com/sahil06012005/OdooHackathon/internal/ticketview"
	"github.com/sahil06012005/OdooHackathon/internal/utils"
)

// UserHTTP serves the profile page: personal info, preferences, password
// and the user's own recent tickets.
type UserHTTP struct {
	users   repository.UserRepository
	tickets repository.TicketRepository
	auth    *service.AuthService
}

func NewUserHTTP(users repository.UserRepository, tickets repository.TicketRepository, auth *service.AuthService) *UserHTTP {
	return &UserHTTP{users: users, tickets: tickets, auth: auth}
}

// PUT /api/users/me
func (h *UserHTTP) UpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" {
			utils.Error(w, http.StatusBadRequest, "name is required")
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		u, err := h.users.UpdateProfile(r.Context(), uid, in.Name)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to update profile")
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

// PUT /api/users/me/preferences
func (h *UserHTTP) UpdatePreferences() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.Preferences
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if in.Language == "" {
			in.Language = "en"
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		u, err := h.users.UpdatePreferences(r.Context(), uid, in)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to update preferences")
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

// PUT /api/users/me/password
func (h *UserHTTP) ChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		if err := h.auth.ChangePassword(r.Context(), uid, in.CurrentPassword, in.NewPassword); err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				utils.Error(w, http.StatusForbidden, "current password is incorrect")
				return
			}
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /api/users/me/tickets
// The activity section's recent tickets.
func (h *UserHTTP) MyTickets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		items, total, err := h.tickets.List(r.Context(), repository.TicketFilter{
			Creator:  uid,
			ViewerID: uid,
			Sort:     ticketview.SortRecent,
			Limit:    utils.QueryInt(r.URL.Query(), "limit", 10),
		})
		if err != nil {
			writeFetchError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
	}
}
