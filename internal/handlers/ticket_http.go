package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sahil06012005/OdooHackathon/internal/middleware"
	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/repository"
	"github.com/sahil06012005/OdooHackathon/internal/service"
	"github.com/sahil06012005/OdooHackathon/internal/ticketview"
	"github.com/sahil06012005/OdooHackathon/internal/utils"
)

// TicketHTTP wires the ticket endpoints to the repositories and the view
// pipeline.
type TicketHTTP struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	svc     *service.TicketService
	log     zerolog.Logger
}

func NewTicketHTTP(tickets repository.TicketRepository, users repository.UserRepository, svc *service.TicketService, log zerolog.Logger) *TicketHTTP {
	return &TicketHTTP{tickets: tickets, users: users, svc: svc, log: log}
}

// ticketID validates the {id} route param. A malformed id cannot name a
// ticket, so callers treat false as not-found.
func ticketID(r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// coordinator loads the ticket and the viewer behind one detail view. A
// nil coordinator with nil error means the ticket does not exist for this
// viewer.
func (h *TicketHTTP) coordinator(ctx context.Context, id, uid string) (*ticketview.Coordinator, error) {
	t, err := h.tickets.Get(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	if t == nil || (t.Status == models.StatusDraft && t.CreatedBy != uid) {
		return nil, nil
	}

	viewer := ticketview.Viewer{ID: uid}
	if u, err := h.users.GetByID(ctx, uid); err == nil && u != nil {
		viewer.Name = u.Name
		viewer.Email = u.Email
		viewer.IsAgent = u.Role == models.RoleAgent || u.Role == models.RoleAdmin
	}
	return ticketview.NewCoordinator(h.tickets, viewer, *t), nil
}

// -----------------------------------------------------------------------------
// GET /api/tickets
// Query params: q, status, category, sort, page, pageSize.
// The response is the pipeline snapshot: the visible page plus filtered and
// unfiltered totals.
// -----------------------------------------------------------------------------
func (h *TicketHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)

		params := ticketview.Params{
			Search:   qv.Get("q"),
			Status:   strings.ToLower(strings.TrimSpace(qv.Get("status"))),
			Category: strings.ToLower(strings.TrimSpace(qv.Get("category"))),
			Sort:     qv.Get("sort"),
			Page:     utils.QueryInt(qv, "page", 1),
			PageSize: utils.QueryInt(qv, "pageSize", ticketview.DefaultPageSize),
		}

		pipe := ticketview.NewPipeline(h.tickets, uid, params, h.log)
		if err := pipe.Refresh(r.Context()); err != nil {
			writeFetchError(w, err)
			return
		}
		pipe.SetPage(params.Page)
		utils.JSON(w, http.StatusOK, pipe.Snapshot())
	}
}

// -----------------------------------------------------------------------------
// GET /api/tickets/{id}
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ticketID(r)
		if !ok {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)

		t, err := h.tickets.Get(r.Context(), id, uid)
		if err != nil {
			writeFetchError(w, err)
			return
		}
		if t == nil || (t.Status == models.StatusDraft && t.CreatedBy != uid) {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// -----------------------------------------------------------------------------
// POST /api/tickets
// ?draft=true saves the form as a draft instead of submitting it.
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.CreateTicketInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		asDraft := r.URL.Query().Get("draft") == "true"

		t, err := h.svc.Create(r.Context(), uid, in, asDraft)
		if err != nil {
			var fields service.FieldErrors
			if errors.As(err, &fields) {
				utils.FieldErrors(w, fields)
				return
			}
			utils.Error(w, http.StatusInternalServerError, "failed to create ticket")
			return
		}
		utils.JSON(w, http.StatusCreated, t)
	}
}

// -----------------------------------------------------------------------------
// PATCH /api/tickets/{id}, agents and admins only (enforced by the router).
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Update() http.HandlerFunc {
	type inDTO struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Priority    *string `json:"priority"`
		Status      *string `json:"status"`
		Assignee    *string `json:"assignee_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ticketID(r)
		if !ok {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		t, err := h.tickets.Get(r.Context(), id, uid)
		if err != nil {
			writeFetchError(w, err)
			return
		}
		if t == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}

		if in.Title != nil {
			t.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			t.Description = strings.TrimSpace(*in.Description)
		}
		if in.Category != nil {
			c := strings.ToLower(strings.TrimSpace(*in.Category))
			if !models.ValidCategory(c) {
				utils.Error(w, http.StatusBadRequest, "unknown category")
				return
			}
			t.Category = c
		}
		if in.Priority != nil {
			p := strings.ToLower(strings.TrimSpace(*in.Priority))
			if !models.ValidPriority(p) {
				utils.Error(w, http.StatusBadRequest, "unknown priority")
				return
			}
			t.Priority = p
		}
		if in.Status != nil {
			s := strings.ToLower(strings.TrimSpace(*in.Status))
			if !models.ValidStatus(s) {
				utils.Error(w, http.StatusBadRequest, "unknown status")
				return
			}
			t.Status = s
		}
		if in.Assignee != nil {
			t.Assignee = strings.TrimSpace(*in.Assignee)
		}

		if err := h.tickets.Update(r.Context(), t); err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to update ticket")
			return
		}

		// Re-read so joined fields (assignee name, counts) are current.
		updated, err := h.tickets.Get(r.Context(), t.ID, uid)
		if err != nil || updated == nil {
			utils.Error(w, http.StatusInternalServerError, "ticket not found after update")
			return
		}
		utils.JSON(w, http.StatusOK, updated)
	}
}

// -----------------------------------------------------------------------------
// POST /api/tickets/{id}/comments
// Runs through the view coordinator, which validates the body and the
// reply parent before anything reaches storage.
// -----------------------------------------------------------------------------
func (h *TicketHTTP) AddComment() http.HandlerFunc {
	type inDTO struct {
		Content  string  `json:"content"`
		ParentID *string `json:"parent_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ticketID(r)
		if !ok {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		co, err := h.coordinator(r.Context(), id, uid)
		if err != nil {
			writeFetchError(w, err)
			return
		}
		if co == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}

		stored, err := co.AddComment(r.Context(), in.Content, in.ParentID)
		if err != nil {
			switch {
			case errors.Is(err, ticketview.ErrEmptyComment),
				errors.Is(err, ticketview.ErrParentNotFound),
				errors.Is(err, ticketview.ErrNestedReply):
				utils.Error(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, ticketview.ErrUnauthenticated):
				utils.Error(w, http.StatusUnauthorized, "authentication required")
			default:
				utils.Error(w, http.StatusInternalServerError, "failed to add comment")
			}
			return
		}
		utils.JSON(w, http.StatusCreated, stored)
	}
}

// -----------------------------------------------------------------------------
// POST /api/tickets/{id}/upvote
// The coordinator applies the toggle and reconciles with storage; the
// response carries the resulting authoritative state.
// -----------------------------------------------------------------------------
func (h *TicketHTTP) ToggleUpvote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ticketID(r)
		if !ok {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)

		co, err := h.coordinator(r.Context(), id, uid)
		if err != nil {
			writeFetchError(w, err)
			return
		}
		if co == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}

		if err := co.ToggleUpvote(r.Context()); err != nil {
			if errors.Is(err, ticketview.ErrUnauthenticated) {
				utils.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			utils.Error(w, http.StatusInternalServerError, "failed to update upvote")
			return
		}
		t := co.Ticket()
		utils.JSON(w, http.StatusOK, map[string]any{
			"upvoted": t.IsUpvoted,
			"upvotes": t.Upvotes,
		})
	}
}

// writeFetchError maps the load-failure taxonomy onto status codes:
// connectivity problems get a 503 with the "cannot connect" hint, anything
// else a generic 500.
func writeFetchError(w http.ResponseWriter, err error) {
	if !errors.Is(err, ticketview.ErrUnavailable) && !errors.Is(err, ticketview.ErrLoadFailed) {
		err = ticketview.ClassifyFetchErr(err)
	}
	if errors.Is(err, ticketview.ErrUnavailable) {
		utils.Error(w, http.StatusServiceUnavailable,
			"cannot connect to the database; the backend may be unreachable, try again")
		return
	}
	utils.Error(w, http.StatusInternalServerError, "failed to load tickets, please try again")
}
