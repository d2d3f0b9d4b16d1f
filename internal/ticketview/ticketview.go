// Package ticketview holds the dashboard and detail view state: the filtered,
// sorted, paginated ticket list and the optimistic upvote/comment mutations.
// Each view instance owns its state exclusively; there is no shared cache
// across views, so two open views may diverge until their next fetch.
package ticketview

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/repository"
)

// Sort keys accepted by the dashboard.
const (
	SortRecent    = "recent"    // last modified, newest first
	SortOldest    = "oldest"    // created, oldest first
	SortCommented = "commented" // comment count, highest first
	SortUpvoted   = "upvoted"   // upvote count, highest first
)

func ValidSort(s string) bool {
	switch s {
	case SortRecent, SortOldest, SortCommented, SortUpvoted:
		return true
	}
	return false
}

var (
	// ErrUnavailable marks connectivity failures: the backend could not be
	// reached at all. Callers show the "cannot connect" hint for these.
	ErrUnavailable = errors.New("ticket backend unreachable")
	// ErrLoadFailed covers every other fetch failure.
	ErrLoadFailed = errors.New("failed to load tickets")
	// ErrStale reports that a fetch completed but a newer one had already
	// been issued; its result was discarded.
	ErrStale = errors.New("stale fetch discarded")
	// ErrClosed reports that the owning view has gone away.
	ErrClosed = errors.New("view closed")
	// ErrUnauthenticated is the signal for the sign-in redirect.
	ErrUnauthenticated = errors.New("not authenticated")

	// Comment validation errors; these are resolved locally, before any
	// backend call.
	ErrEmptyComment   = errors.New("comment content is required")
	ErrParentNotFound = errors.New("parent comment not found")
	ErrNestedReply    = errors.New("replies can only target top-level comments")
)

// Source is the ticket-query collaborator behind the pipeline.
type Source interface {
	List(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, int, error)
}

// Mutator is the upvote/comment collaborator behind the coordinator.
type Mutator interface {
	ToggleUpvote(ctx context.Context, ticketID, userID string) (bool, error)
	AddComment(ctx context.Context, c *models.Comment) (*models.Comment, error)
}

// ClassifyFetchErr folds backend failures into the two-bucket taxonomy:
// ErrUnavailable for connectivity problems, ErrLoadFailed for the rest.
func ClassifyFetchErr(err error) error {
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) {
		return errors.Join(ErrUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrUnavailable, err)
	}
	return errors.Join(ErrLoadFailed, err)
}
