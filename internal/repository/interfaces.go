package repository

import (
	"context"

	"github.com/sahil06012005/OdooHackathon/internal/models"
)

type TicketRepository interface {
	// List applies the coarse server-side filter and returns one fetch
	// window plus the true filtered count.
	List(ctx context.Context, f TicketFilter) ([]models.Ticket, int, error)
	// Get returns the ticket with comments embedded, or nil when absent.
	// viewerID controls the isUpvoted flag and may be empty.
	Get(ctx context.Context, id, viewerID string) (*models.Ticket, error)
	Create(ctx context.Context, t *models.Ticket) error
	Update(ctx context.Context, t *models.Ticket) error
	AddComment(ctx context.Context, c *models.Comment) (*models.Comment, error)
	// ToggleUpvote flips the viewer's upvote and reports the resulting state.
	ToggleUpvote(ctx context.Context, ticketID, userID string) (bool, error)
	Stats(ctx context.Context) (models.TicketStats, error)
}

type UserRepository interface {
	Create(ctx context.Context, email, name, role, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, string /*passwordHash*/, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, name string) (*models.User, error)
	UpdatePreferences(ctx context.Context, id string, p models.Preferences) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	PasswordHash(ctx context.Context, id string) (string, error)
}

// DraftRepository persists at most one ticket draft per user.
type DraftRepository interface {
	Save(ctx context.Context, d *models.Draft) error
	Get(ctx context.Context, userID string) (*models.Draft, error)
	Delete(ctx context.Context, userID string) error
}
