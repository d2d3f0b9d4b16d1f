package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sahil06012005/OdooHackathon/internal/middleware"
	"github.com/sahil06012005/OdooHackathon/internal/repository"
	"github.com/sahil06012005/OdooHackathon/internal/service"
	"github.com/sahil06012005/OdooHackathon/internal/utils"
)

type AuthHTTP struct {
	svc   *service.AuthService
	users repository.UserRepository
}

func NewAuthHTTP(s *service.AuthService, users repository.UserRepository) *AuthHTTP {
	return &AuthHTTP{svc: s, users: users}
}

func (h *AuthHTTP) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Name     string `json:"name"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := h.svc.Register(r.Context(), in.Email, in.Name, in.Password)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.JSON(w, http.StatusCreated, u)
	}
}

func (h *AuthHTTP) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		token, u, err := h.svc.Login(r.Context(), in.Email, in.Password)
		if err != nil {
			if errors.Is(err, service.ErrAccountDisabled) {
				utils.Error(w, http.StatusForbidden, "account disabled")
				return
			}
			utils.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		// httpOnly session cookie; Lax works for the same-origin frontend.
		http.SetCookie(w, &http.Cookie{
			Name:     "session",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(24 * time.Hour),
		})
		utils.JSON(w, http.StatusOK, u)
	}
}

func (h *AuthHTTP) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     "session",
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := utils.GetString(r.Context(), middleware.CtxUserID)
		if !ok || uid == "" {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		u, err := h.users.GetByID(r.Context(), uid)
		if err != nil || u == nil {
			utils.Error(w, http.StatusNotFound, "user not found")
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}
