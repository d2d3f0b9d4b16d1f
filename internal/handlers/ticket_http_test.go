package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sahil06012005/OdooHackathon/internal/middleware"
	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/repository"
	"github.com/sahil06012005/OdooHackathon/internal/service"
)

const testTicketID = "3f2a8e0c-5b7d-4c61-9d2e-8f4b1a6c0e57"

type fakeTicketRepo struct {
	repository.TicketRepository
	listFn    func(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, int, error)
	getFn     func(ctx context.Context, id, viewerID string) (*models.Ticket, error)
	createFn  func(ctx context.Context, t *models.Ticket) error
	commentFn func(ctx context.Context, c *models.Comment) (*models.Comment, error)
	upvoteFn  func(ctx context.Context, ticketID, userID string) (bool, error)

	getCalls     int
	commentCalls int
}

func (r *fakeTicketRepo) List(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, int, error) {
	return r.listFn(ctx, f)
}

func (r *fakeTicketRepo) Get(ctx context.Context, id, viewerID string) (*models.Ticket, error) {
	r.getCalls++
	return r.getFn(ctx, id, viewerID)
}

func (r *fakeTicketRepo) Create(ctx context.Context, t *models.Ticket) error {
	return r.createFn(ctx, t)
}

func (r *fakeTicketRepo) AddComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	r.commentCalls++
	return r.commentFn(ctx, c)
}

func (r *fakeTicketRepo) ToggleUpvote(ctx context.Context, ticketID, userID string) (bool, error) {
	return r.upvoteFn(ctx, ticketID, userID)
}

type fakeUserRepo struct {
	repository.UserRepository
}

func (fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, Name: "Pat", Email: "pat@example.com", Role: models.RoleEndUser}, nil
}

type fakeDraftRepo struct {
	repository.DraftRepository
}

func (fakeDraftRepo) Delete(ctx context.Context, userID string) error { return nil }

func newTicketHandler(repo *fakeTicketRepo) *TicketHTTP {
	svc := service.NewTicketService(repo, fakeDraftRepo{})
	return NewTicketHTTP(repo, fakeUserRepo{}, svc, zerolog.Nop())
}

// ticketRouter mounts the handler the way the real router does, so URL
// params resolve.
func ticketRouter(h *TicketHTTP) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/tickets", h.List())
	r.Post("/api/tickets", h.Create())
	r.Get("/api/tickets/{id}", h.Get())
	r.Post("/api/tickets/{id}/comments", h.AddComment())
	r.Post("/api/tickets/{id}/upvote", h.ToggleUpvote())
	return r
}

func asUser(r *http.Request, uid string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.CtxUserID, uid)
	return r.WithContext(ctx)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return body
}

func openTicket() *models.Ticket {
	return &models.Ticket{
		ID:           testTicketID,
		TicketNumber: "TK-1001",
		Title:        "Printer on fire",
		Status:       models.StatusOpen,
		CreatedBy:    "owner",
		Upvotes:      3,
		UpdatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestListSnapshot(t *testing.T) {
	tickets := make([]models.Ticket, 0, 12)
	for i := 0; i < 12; i++ {
		tickets = append(tickets, models.Ticket{
			ID:           fmt.Sprintf("id-%03d", i),
			TicketNumber: fmt.Sprintf("TK-%d", 1000+i),
			Title:        fmt.Sprintf("Ticket %d", i),
			Status:       models.StatusOpen,
			Category:     models.CategoryGeneral,
			UpdatedAt:    time.Date(2025, 6, 1, 12, i, 0, 0, time.UTC),
		})
	}
	repo := &fakeTicketRepo{listFn: func(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, int, error) {
		return tickets, len(tickets), nil
	}}
	srv := ticketRouter(newTicketHandler(repo))

	rr := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodGet, "/api/tickets?page=2", nil), "u1")
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	body := decodeBody(t, rr)
	items := body["items"].([]any)
	if len(items) != 3 {
		t.Errorf("page 2 items = %d, want 3", len(items))
	}
	if got := body["totalFiltered"].(float64); got != 12 {
		t.Errorf("totalFiltered = %v, want 12", got)
	}
	if got := body["totalPages"].(float64); got != 2 {
		t.Errorf("totalPages = %v, want 2", got)
	}
}

func TestListConnectivityFailure(t *testing.T) {
	repo := &fakeTicketRepo{listFn: func(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, int, error) {
		return nil, 0, &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	}}
	srv := ticketRouter(newTicketHandler(repo))

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/tickets", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	body := decodeBody(t, rr)
	if msg := body["error"].(string); !strings.Contains(msg, "cannot connect") {
		t.Errorf("error = %q, want the connectivity hint", msg)
	}
}

func TestListGenericFailure(t *testing.T) {
	repo := &fakeTicketRepo{listFn: func(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, int, error) {
		return nil, 0, errors.New("syntax error")
	}}
	srv := ticketRouter(newTicketHandler(repo))

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/tickets", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

func TestGetMalformedID(t *testing.T) {
	repo := &fakeTicketRepo{getFn: func(ctx context.Context, id, viewerID string) (*models.Ticket, error) {
		return openTicket(), nil
	}}
	srv := ticketRouter(newTicketHandler(repo))

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/tickets/garbage", nil), "u1"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if repo.getCalls != 0 {
		t.Errorf("repository queried %d times for a malformed id", repo.getCalls)
	}
}

func TestGetHidesForeignDrafts(t *testing.T) {
	draft := openTicket()
	draft.Status = models.StatusDraft
	repo := &fakeTicketRepo{getFn: func(ctx context.Context, id, viewerID string) (*models.Ticket, error) {
		d := *draft
		return &d, nil
	}}
	srv := ticketRouter(newTicketHandler(repo))

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/tickets/"+testTicketID, nil), "someone-else"))
	if rr.Code != http.StatusNotFound {
		t.Errorf("foreign draft: status = %d, want 404", rr.Code)
	}

	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/tickets/"+testTicketID, nil), "owner"))
	if rr.Code != http.StatusOK {
		t.Errorf("own draft: status = %d, want 200", rr.Code)
	}
}

func TestCreateValidationEnvelope(t *testing.T) {
	repo := &fakeTicketRepo{createFn: func(ctx context.Context, tk *models.Ticket) error {
		t.Fatal("repository reached with invalid input")
		return nil
	}}
	srv := ticketRouter(newTicketHandler(repo))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets",
		strings.NewReader(`{"title":"short","description":"","category":"technical"}`))
	srv.ServeHTTP(rr, asUser(req, "u1"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	body := decodeBody(t, rr)
	fields := body["fields"].(map[string]any)
	for _, f := range []string{"title", "description"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("missing field error for %q: %v", f, fields)
		}
	}
}

func TestCreateTicket(t *testing.T) {
	repo := &fakeTicketRepo{createFn: func(ctx context.Context, tk *models.Ticket) error {
		tk.ID = "t-new"
		tk.TicketNumber = "TK-1042"
		return nil
	}}
	srv := ticketRouter(newTicketHandler(repo))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets",
		strings.NewReader(`{"title":"Printer keeps jamming","description":"Every job on floor three jams halfway through.","category":"technical"}`))
	srv.ServeHTTP(rr, asUser(req, "u1"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	body := decodeBody(t, rr)
	if body["ticket_number"] != "TK-1042" {
		t.Errorf("ticket_number = %v", body["ticket_number"])
	}
	if body["status"] != models.StatusOpen {
		t.Errorf("status = %v, want open", body["status"])
	}
}

func TestAddCommentStored(t *testing.T) {
	repo := &fakeTicketRepo{
		getFn: func(ctx context.Context, id, viewerID string) (*models.Ticket, error) {
			return openTicket(), nil
		},
		commentFn: func(ctx context.Context, c *models.Comment) (*models.Comment, error) {
			stored := *c
			stored.ID = "c-100"
			stored.CreatedAt = time.Now()
			return &stored, nil
		},
	}
	srv := ticketRouter(newTicketHandler(repo))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/"+testTicketID+"/comments",
		strings.NewReader(`{"content":"  have you tried turning it off?  "}`))
	srv.ServeHTTP(rr, asUser(req, "u1"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	body := decodeBody(t, rr)
	if body["id"] != "c-100" {
		t.Errorf("id = %v, want the stored id", body["id"])
	}
	if body["content"] != "have you tried turning it off?" {
		t.Errorf("content = %q, want trimmed body", body["content"])
	}
	if body["author_name"] != "Pat" {
		t.Errorf("author_name = %v, want the viewer's name", body["author_name"])
	}
}

func TestAddCommentRejectsBlankBeforeRepo(t *testing.T) {
	repo := &fakeTicketRepo{
		getFn: func(ctx context.Context, id, viewerID string) (*models.Ticket, error) {
			return openTicket(), nil
		},
		commentFn: func(ctx context.Context, c *models.Comment) (*models.Comment, error) {
			return c, nil
		},
	}
	srv := ticketRouter(newTicketHandler(repo))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/"+testTicketID+"/comments",
		strings.NewReader(`{"content":"   "}`))
	srv.ServeHTTP(rr, asUser(req, "u1"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if repo.commentCalls != 0 {
		t.Errorf("repository called %d times for a blank comment", repo.commentCalls)
	}
}

func TestAddCommentUnknownParent(t *testing.T) {
	repo := &fakeTicketRepo{
		getFn: func(ctx context.Context, id, viewerID string) (*models.Ticket, error) {
			return openTicket(), nil
		},
		commentFn: func(ctx context.Context, c *models.Comment) (*models.Comment, error) {
			return c, nil
		},
	}
	srv := ticketRouter(newTicketHandler(repo))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/"+testTicketID+"/comments",
		strings.NewReader(`{"content":"same here","parent_id":"missing"}`))
	srv.ServeHTTP(rr, asUser(req, "u1"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if repo.commentCalls != 0 {
		t.Errorf("repository called %d times for an unknown parent", repo.commentCalls)
	}
}

func TestAddCommentRepositoryFailure(t *testing.T) {
	repo := &fakeTicketRepo{
		getFn: func(ctx context.Context, id, viewerID string) (*models.Ticket, error) {
			return openTicket(), nil
		},
		commentFn: func(ctx context.Context, c *models.Comment) (*models.Comment, error) {
			return nil, errors.New("duplicate key value violates unique constraint")
		},
	}
	srv := ticketRouter(newTicketHandler(repo))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/"+testTicketID+"/comments",
		strings.NewReader(`{"content":"hello there"}`))
	srv.ServeHTTP(rr, asUser(req, "u1"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	body := decodeBody(t, rr)
	if msg := body["error"].(string); strings.Contains(msg, "duplicate key") {
		t.Errorf("error = %q leaks storage detail", msg)
	}
}

func TestToggleUpvoteResponse(t *testing.T) {
	repo := &fakeTicketRepo{
		getFn: func(ctx context.Context, id, viewerID string) (*models.Ticket, error) {
			return openTicket(), nil
		},
		upvoteFn: func(ctx context.Context, ticketID, userID string) (bool, error) {
			if ticketID != testTicketID || userID != "u1" {
				t.Errorf("ToggleUpvote(%q, %q)", ticketID, userID)
			}
			return true, nil
		},
	}
	srv := ticketRouter(newTicketHandler(repo))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/"+testTicketID+"/upvote", nil)
	srv.ServeHTTP(rr, asUser(req, "u1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["upvoted"] != true {
		t.Errorf("body = %v, want upvoted true", body)
	}
	if got := body["upvotes"].(float64); got != 4 {
		t.Errorf("upvotes = %v, want 4", got)
	}
}

func TestToggleUpvoteRollsBackOnFailure(t *testing.T) {
	repo := &fakeTicketRepo{
		getFn: func(ctx context.Context, id, viewerID string) (*models.Ticket, error) {
			return openTicket(), nil
		},
		upvoteFn: func(ctx context.Context, ticketID, userID string) (bool, error) {
			return false, errors.New("write failed")
		},
	}
	srv := ticketRouter(newTicketHandler(repo))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/"+testTicketID+"/upvote", nil)
	srv.ServeHTTP(rr, asUser(req, "u1"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}
