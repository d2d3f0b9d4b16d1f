package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/repository"
)

type TicketRepo struct{ db *pgxpool.Pool }

func NewTicketRepo(db *pgxpool.Pool) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `
	t.id, t.ticket_number, t.title, t.description, t.category, t.status, t.priority,
	t.created_by, COALESCE(cu.name, ''), COALESCE(t.assignee, ''), COALESCE(au.name, ''),
	(SELECT COUNT(*) FROM ticket_upvotes v WHERE v.ticket_id = t.id),
	EXISTS (SELECT 1 FROM ticket_upvotes v WHERE v.ticket_id = t.id AND v.user_id = NULLIF($1,'')),
	(SELECT COUNT(*) FROM comments c WHERE c.ticket_id = t.id),
	t.attachments, t.created_at, t.updated_at`

const ticketJoins = `
	FROM tickets t
	LEFT JOIN users cu ON cu.id = t.created_by::uuid
	LEFT JOIN users au ON au.id = NULLIF(t.assignee, '')::uuid`

func scanTicket(row pgx.Row, t *models.Ticket) error {
	return row.Scan(
		&t.ID, &t.TicketNumber, &t.Title, &t.Description, &t.Category, &t.Status,
		&t.Priority, &t.CreatedBy, &t.CreatorName, &t.Assignee, &t.AssigneeName,
		&t.Upvotes, &t.IsUpvoted, &t.CommentCount, &t.Attachments,
		&t.CreatedAt, &t.UpdatedAt,
	)
}

// -----------------------------------------------------------------------------
// Filtered listing with pagination + sort. The filter here is best-effort;
// the view layer re-applies it in memory and is authoritative.
// -----------------------------------------------------------------------------

func (r *TicketRepo) List(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, int, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 90
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	// $1 is reserved for the viewer id in ticketColumns.
	args := []any{f.ViewerID}
	// Drafts are private to their creator.
	conds := []string{"t.status <> 'draft' OR t.created_by = NULLIF($1,'')"}

	if q := strings.TrimSpace(f.Search); q != "" {
		p := "%" + q + "%"
		args = append(args, p, p, p)
		conds = append(conds,
			"(t.title ILIKE $"+itoa(len(args)-2)+
				" OR t.description ILIKE $"+itoa(len(args)-1)+
				" OR t.ticket_number ILIKE $"+itoa(len(args))+")")
	}
	if s := strings.TrimSpace(f.Status); s != "" && s != models.FilterAll {
		args = append(args, s)
		conds = append(conds, "LOWER(t.status) = LOWER($"+itoa(len(args))+")")
	}
	if c := strings.TrimSpace(f.Category); c != "" && c != models.FilterAll {
		args = append(args, c)
		conds = append(conds, "LOWER(t.category) = LOWER($"+itoa(len(args))+")")
	}
	if u := strings.TrimSpace(f.Creator); u != "" {
		args = append(args, u)
		conds = append(conds, "t.created_by = $"+itoa(len(args)))
	}

	where := "WHERE (" + strings.Join(conds, ") AND (") + ")"

	var total int
	countSQL := `SELECT COUNT(*) FROM tickets t ` + where
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	sql := fmt.Sprintf(`SELECT %s %s %s ORDER BY %s, t.id ASC LIMIT $%d OFFSET $%d`,
		ticketColumns, ticketJoins, where, orderClause(f.Sort), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Ticket
	for rows.Next() {
		var t models.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// orderClause maps the dashboard sort keys onto SQL. Unknown keys fall back
// to "recent".
func orderClause(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "oldest":
		return "t.created_at ASC"
	case "commented":
		return "(SELECT COUNT(*) FROM comments c WHERE c.ticket_id = t.id) DESC"
	case "upvoted":
		return "(SELECT COUNT(*) FROM ticket_upvotes v WHERE v.ticket_id = t.id) DESC"
	default: // recent
		return "t.updated_at DESC"
	}
}

// -----------------------------------------------------------------------------
// Single ticket (comments embedded) + create/update
// -----------------------------------------------------------------------------

func (r *TicketRepo) Get(ctx context.Context, id, viewerID string) (*models.Ticket, error) {
	var t models.Ticket
	sql := `SELECT ` + ticketColumns + ticketJoins + ` WHERE t.id = $2`
	if err := scanTicket(r.db.QueryRow(ctx, sql, viewerID, id), &t); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.ticket_id, c.author_id, COALESCE(u.name, ''), COALESCE(u.email, ''),
			c.body, c.parent_id, COALESCE(u.role, '') IN ('agent', 'admin'), c.attachments, c.created_at
		FROM comments c
		LEFT JOIN users u ON u.id = c.author_id::uuid
		WHERE c.ticket_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.AuthorName, &c.AuthorEmail,
			&c.Body, &c.ParentID, &c.IsAgent, &c.Attachments, &c.CreatedAt); err != nil {
			return nil, err
		}
		t.Comments = append(t.Comments, c)
	}
	return &t, rows.Err()
}

func (r *TicketRepo) Create(ctx context.Context, t *models.Ticket) error {
	now := time.Now()
	attachments := t.Attachments
	if attachments == nil {
		attachments = []models.Attachment{}
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO tickets (title, description, category, priority, status, assignee, created_by, attachments, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, ticket_number, created_at, updated_at
	`,
		t.Title, t.Description, t.Category, t.Priority, t.Status,
		nullIfEmpty(t.Assignee), t.CreatedBy, attachments, now, now,
	).Scan(&t.ID, &t.TicketNumber, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TicketRepo) Update(ctx context.Context, t *models.Ticket) error {
	t.UpdatedAt = time.Now()
	ct, err := r.db.Exec(ctx, `
		UPDATE tickets SET
			title=$1, description=$2, category=$3, priority=$4, status=$5, assignee=$6, updated_at=$7
		WHERE id=$8
	`,
		t.Title, t.Description, t.Category, t.Priority, t.Status,
		nullIfEmpty(t.Assignee), t.UpdatedAt, t.ID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// -----------------------------------------------------------------------------
// Comments + upvotes
// -----------------------------------------------------------------------------

// AddComment stores the comment and bumps the ticket's updated_at. A reply
// must target a top-level comment of the same ticket.
func (r *TicketRepo) AddComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	if c.ParentID != nil {
		var topLevel bool
		err := r.db.QueryRow(ctx, `
			SELECT parent_id IS NULL FROM comments WHERE id = $1 AND ticket_id = $2
		`, *c.ParentID, c.TicketID).Scan(&topLevel)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, fmt.Errorf("parent comment %s not found on ticket", *c.ParentID)
			}
			return nil, err
		}
		if !topLevel {
			return nil, fmt.Errorf("replies can only target top-level comments")
		}
	}

	attachments := c.Attachments
	if attachments == nil {
		attachments = []models.Attachment{}
	}

	stored := *c
	err := r.db.QueryRow(ctx, `
		INSERT INTO comments (ticket_id, author_id, body, parent_id, attachments)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`, c.TicketID, c.AuthorID, c.Body, c.ParentID, attachments).Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		return nil, err
	}
	_, err = r.db.Exec(ctx, `UPDATE tickets SET updated_at = now() WHERE id = $1`, c.TicketID)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// ToggleUpvote removes the viewer's upvote if present, adds it otherwise,
// and reports the resulting state. The returned flag is authoritative.
func (r *TicketRepo) ToggleUpvote(ctx context.Context, ticketID, userID string) (bool, error) {
	ct, err := r.db.Exec(ctx, `
		DELETE FROM ticket_upvotes WHERE ticket_id = $1 AND user_id = $2
	`, ticketID, userID)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() > 0 {
		return false, nil
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO ticket_upvotes (ticket_id, user_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, ticketID, userID)
	return err == nil, err
}

// -----------------------------------------------------------------------------
// Dashboard stats
// -----------------------------------------------------------------------------

func (r *TicketRepo) Stats(ctx context.Context) (models.TicketStats, error) {
	var s models.TicketStats
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'open'),
			COUNT(*) FILTER (WHERE status = 'in progress'),
			COUNT(*) FILTER (WHERE status = 'resolved')
		FROM tickets
		WHERE status <> 'draft'
	`).Scan(&s.Total, &s.Open, &s.InProgress, &s.Resolved)
	return s, err
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// small helper to avoid fmt for placeholder composition.
func itoa(i int) string { return strconv.Itoa(i) }
