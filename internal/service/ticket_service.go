package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/repository"
)

// FieldErrors carries per-field validation messages back to the form.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for f, msg := range e {
		parts = append(parts, f+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type CreateTicketInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Priority    string              `json:"priority"`
	Attachments []models.Attachment `json:"attachments"`
}

// TicketService validates and creates tickets, and keeps the caller's saved
// draft in step with submissions.
type TicketService struct {
	tickets repository.TicketRepository
	drafts  repository.DraftRepository
}

func NewTicketService(tickets repository.TicketRepository, drafts repository.DraftRepository) *TicketService {
	return &TicketService{tickets: tickets, drafts: drafts}
}

// Validate applies the ticket-form rules. Requests that fail here never
// reach the repository.
func (s *TicketService) Validate(in CreateTicketInput) FieldErrors {
	errs := FieldErrors{}

	// Length limits count characters, not bytes.
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		errs["title"] = "Title is required"
	case utf8.RuneCountInString(title) < 10:
		errs["title"] = "Title must be at least 10 characters long"
	case utf8.RuneCountInString(title) > 200:
		errs["title"] = "Title must be at most 200 characters long"
	}

	desc := strings.TrimSpace(in.Description)
	switch {
	case desc == "":
		errs["description"] = "Description is required"
	case utf8.RuneCountInString(desc) < 20:
		errs["description"] = "Description must be at least 20 characters long"
	}

	if !models.ValidCategory(strings.ToLower(strings.TrimSpace(in.Category))) {
		errs["category"] = "Category is required"
	}
	if p := strings.TrimSpace(in.Priority); p != "" && !models.ValidPriority(strings.ToLower(p)) {
		errs["priority"] = "Unknown priority"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Create stores a new ticket for userID. Draft submissions skip validation
// and keep status "draft"; a real submission is validated, opens the
// ticket, and clears the user's saved draft.
func (s *TicketService) Create(ctx context.Context, userID string, in CreateTicketInput, asDraft bool) (*models.Ticket, error) {
	status := models.StatusOpen
	if asDraft {
		status = models.StatusDraft
	} else if errs := s.Validate(in); errs != nil {
		return nil, errs
	}

	priority := strings.ToLower(strings.TrimSpace(in.Priority))
	if priority == "" {
		priority = models.PriorityMedium
	}

	t := &models.Ticket{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		Priority:    priority,
		Status:      status,
		CreatedBy:   userID,
		Attachments: in.Attachments,
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, err
	}

	if !asDraft {
		// Best effort; a leftover draft is harmless.
		_ = s.drafts.Delete(ctx, userID)
	}
	return t, nil
}
