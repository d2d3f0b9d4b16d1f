package ticketview

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sahil06012005/OdooHackathon/internal/models"
)

// Viewer identifies the user the coordinator mutates on behalf of.
type Viewer struct {
	ID      string
	Name    string
	Email   string
	IsAgent bool
}

// Coordinator owns the mutable state of one open ticket: upvote count/flag
// and the ordered comment list. Mutations apply locally first, then go to
// the backend; the backend's answer is the source of truth on success, and
// the local change rolls back on failure.
type Coordinator struct {
	backend Mutator
	viewer  Viewer

	mu       sync.Mutex
	ticket   models.Ticket
	comments []models.Comment
}

func NewCoordinator(backend Mutator, viewer Viewer, t models.Ticket) *Coordinator {
	comments := make([]models.Comment, len(t.Comments))
	copy(comments, t.Comments)
	t.Comments = nil
	return &Coordinator{backend: backend, viewer: viewer, ticket: t, comments: comments}
}

// Ticket returns the ticket state with the current comment list attached.
func (c *Coordinator) Ticket() models.Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.ticket
	t.Comments = make([]models.Comment, len(c.comments))
	copy(t.Comments, c.comments)
	return t
}

func (c *Coordinator) Comments() []models.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Comment, len(c.comments))
	copy(out, c.comments)
	return out
}

// ToggleUpvote flips the viewer's upvote optimistically, then reconciles
// with the backend: on success the returned flag wins (a concurrent toggle
// elsewhere may have beaten the optimistic guess), on failure the local
// flip is undone.
func (c *Coordinator) ToggleUpvote(ctx context.Context) error {
	if c.viewer.ID == "" {
		return ErrUnauthenticated
	}

	c.mu.Lock()
	prevUpvoted := c.ticket.IsUpvoted
	prevCount := c.ticket.Upvotes
	guess := !prevUpvoted
	c.ticket.IsUpvoted = guess
	if guess {
		c.ticket.Upvotes = prevCount + 1
	} else {
		c.ticket.Upvotes = max(prevCount-1, 0)
	}
	id := c.ticket.ID
	c.mu.Unlock()

	upvoted, err := c.backend.ToggleUpvote(ctx, id, c.viewer.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.ticket.IsUpvoted = prevUpvoted
		c.ticket.Upvotes = prevCount
		return err
	}
	if upvoted != guess {
		// Lost a race; the backend state already matched the guess's
		// target, so the count never actually moved.
		c.ticket.IsUpvoted = upvoted
		c.ticket.Upvotes = prevCount
	}
	return nil
}

// AddComment validates locally, appends a placeholder keyed by a client
// id, and reconciles: the placeholder is replaced in place by the stored
// record on success and removed on failure. Blank bodies never reach the
// backend.
func (c *Coordinator) AddComment(ctx context.Context, body string, parentID *string) (*models.Comment, error) {
	if c.viewer.ID == "" {
		return nil, ErrUnauthenticated
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}

	c.mu.Lock()
	if parentID != nil {
		if err := c.checkParentLocked(*parentID); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	}
	placeholder := models.Comment{
		ID:          "local-" + uuid.NewString(),
		TicketID:    c.ticket.ID,
		AuthorID:    c.viewer.ID,
		AuthorName:  c.viewer.Name,
		AuthorEmail: c.viewer.Email,
		Body:        body,
		ParentID:    parentID,
		IsAgent:     c.viewer.IsAgent,
		CreatedAt:   time.Now(),
	}
	c.comments = append(c.comments, placeholder)
	c.mu.Unlock()

	stored, err := c.backend.AddComment(ctx, &placeholder)

	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexOfLocked(placeholder.ID)
	if err != nil {
		if idx >= 0 {
			c.comments = append(c.comments[:idx], c.comments[idx+1:]...)
		}
		return nil, err
	}
	if idx >= 0 {
		c.comments[idx] = *stored
	} else {
		c.comments = append(c.comments, *stored)
	}
	c.ticket.CommentCount++
	if stored.CreatedAt.After(c.ticket.UpdatedAt) {
		c.ticket.UpdatedAt = stored.CreatedAt
	}
	return stored, nil
}

func (c *Coordinator) checkParentLocked(parentID string) error {
	for _, cm := range c.comments {
		if cm.ID == parentID {
			if cm.ParentID != nil {
				return ErrNestedReply
			}
			return nil
		}
	}
	return ErrParentNotFound
}

func (c *Coordinator) indexOfLocked(id string) int {
	for i, cm := range c.comments {
		if cm.ID == id {
			return i
		}
	}
	return -1
}
