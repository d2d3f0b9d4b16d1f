package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/repository"
)

type fakeTicketRepo struct {
	repository.TicketRepository
	created  []*models.Ticket
	createFn func(ctx context.Context, t *models.Ticket) error
}

func (r *fakeTicketRepo) Create(ctx context.Context, t *models.Ticket) error {
	r.created = append(r.created, t)
	if r.createFn != nil {
		return r.createFn(ctx, t)
	}
	t.ID = "t-new"
	t.TicketNumber = "TK-1042"
	return nil
}

type fakeDraftRepo struct {
	repository.DraftRepository
	deleted []string
}

func (r *fakeDraftRepo) Delete(ctx context.Context, userID string) error {
	r.deleted = append(r.deleted, userID)
	return nil
}

func validInput() CreateTicketInput {
	return CreateTicketInput{
		Title:       "Printer keeps jamming",
		Description: "Every print job on the third floor printer jams halfway.",
		Category:    models.CategoryTechnical,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CreateTicketInput)
		wantField string
	}{
		{"valid", func(in *CreateTicketInput) {}, ""},
		{"missing title", func(in *CreateTicketInput) { in.Title = "  " }, "title"},
		{"short title", func(in *CreateTicketInput) { in.Title = "help" }, "title"},
		{"long title", func(in *CreateTicketInput) { in.Title = strings.Repeat("x", 201) }, "title"},
		{"missing description", func(in *CreateTicketInput) { in.Description = "" }, "description"},
		{"short description", func(in *CreateTicketInput) { in.Description = "too short" }, "description"},
		{"missing category", func(in *CreateTicketInput) { in.Category = "" }, "category"},
		{"unknown category", func(in *CreateTicketInput) { in.Category = "gossip" }, "category"},
		{"unknown priority", func(in *CreateTicketInput) { in.Priority = "yesterday" }, "priority"},
		{"valid priority", func(in *CreateTicketInput) { in.Priority = "High" }, ""},
		// Limits count characters, not bytes.
		{"multibyte title at minimum", func(in *CreateTicketInput) { in.Title = strings.Repeat("ä", 10) }, ""},
		{"multibyte title below minimum", func(in *CreateTicketInput) { in.Title = strings.Repeat("ä", 9) }, "title"},
		{"multibyte description at minimum", func(in *CreateTicketInput) { in.Description = strings.Repeat("ö", 20) }, ""},
	}

	svc := NewTicketService(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			errs := svc.Validate(in)
			if tt.wantField == "" {
				if errs != nil {
					t.Fatalf("Validate() = %v, want nil", errs)
				}
				return
			}
			if _, ok := errs[tt.wantField]; !ok {
				t.Errorf("Validate() = %v, want error on %q", errs, tt.wantField)
			}
		})
	}
}

func TestCreateOpensTicketAndClearsDraft(t *testing.T) {
	tickets := &fakeTicketRepo{}
	drafts := &fakeDraftRepo{}
	svc := NewTicketService(tickets, drafts)

	got, err := svc.Create(context.Background(), "u1", validInput(), false)
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	if got.Status != models.StatusOpen {
		t.Errorf("Status = %q, want open", got.Status)
	}
	if got.Priority != models.PriorityMedium {
		t.Errorf("Priority = %q, want the medium default", got.Priority)
	}
	if got.CreatedBy != "u1" {
		t.Errorf("CreatedBy = %q", got.CreatedBy)
	}
	if len(drafts.deleted) != 1 || drafts.deleted[0] != "u1" {
		t.Errorf("draft not cleared: %v", drafts.deleted)
	}
}

func TestCreateInvalidNeverReachesRepository(t *testing.T) {
	tickets := &fakeTicketRepo{}
	svc := NewTicketService(tickets, &fakeDraftRepo{})

	in := validInput()
	in.Title = "nope"
	_, err := svc.Create(context.Background(), "u1", in, false)

	var fieldErrs FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("Create() = %v, want FieldErrors", err)
	}
	if len(tickets.created) != 0 {
		t.Errorf("repository called %d times for invalid input", len(tickets.created))
	}
}

func TestCreateDraftSkipsValidation(t *testing.T) {
	tickets := &fakeTicketRepo{}
	drafts := &fakeDraftRepo{}
	svc := NewTicketService(tickets, drafts)

	// A half-finished form that would fail validation.
	in := CreateTicketInput{Title: "wip"}
	got, err := svc.Create(context.Background(), "u1", in, true)
	if err != nil {
		t.Fatalf("Create(draft) = %v", err)
	}
	if got.Status != models.StatusDraft {
		t.Errorf("Status = %q, want draft", got.Status)
	}
	if len(drafts.deleted) != 0 {
		t.Errorf("draft cleared on draft save: %v", drafts.deleted)
	}
}

func TestCreateRepositoryErrorPassedThrough(t *testing.T) {
	repoErr := errors.New("insert failed")
	tickets := &fakeTicketRepo{createFn: func(ctx context.Context, t *models.Ticket) error {
		return repoErr
	}}
	svc := NewTicketService(tickets, &fakeDraftRepo{})

	if _, err := svc.Create(context.Background(), "u1", validInput(), false); !errors.Is(err, repoErr) {
		t.Fatalf("Create() = %v, want %v", err, repoErr)
	}
}
