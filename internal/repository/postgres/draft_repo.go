package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/repository"
)

// DraftRepo keeps one in-progress ticket form per user, replacing the
// browser-local auto-save.
type DraftRepo struct{ db *pgxpool.Pool }

func NewDraftRepo(db *pgxpool.Pool) repository.DraftRepository { return &DraftRepo{db: db} }

func (r *DraftRepo) Save(ctx context.Context, d *models.Draft) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO ticket_drafts (user_id, title, description, category, updated_at)
		VALUES ($1,$2,$3,$4,now())
		ON CONFLICT (user_id) DO UPDATE SET
			title=EXCLUDED.title, description=EXCLUDED.description,
			category=EXCLUDED.category, updated_at=now()
		RETURNING updated_at
	`, d.UserID, d.Title, d.Description, d.Category).Scan(&d.UpdatedAt)
}

func (r *DraftRepo) Get(ctx context.Context, userID string) (*models.Draft, error) {
	var d models.Draft
	err := r.db.QueryRow(ctx, `
		SELECT user_id, title, description, category, updated_at
		FROM ticket_drafts WHERE user_id=$1
	`, userID).Scan(&d.UserID, &d.Title, &d.Description, &d.Category, &d.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DraftRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM ticket_drafts WHERE user_id=$1`, userID)
	return err
}
