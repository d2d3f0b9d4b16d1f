package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/repository"
)

type UserRepo struct{ db *pgxpool.Pool }

func NewUserRepo(db *pgxpool.Pool) repository.UserRepository { return &UserRepo{db: db} }

const userColumns = `id, email, name, role, active, preferences, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Active, &u.Preferences, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create stores a new user (bcrypt hash in password_h) with default
// notification preferences.
func (r *UserRepo) Create(ctx context.Context, email, name, role, passwordHash string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		INSERT INTO users (email, name, role, password_h, preferences)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+userColumns,
		email, name, role, passwordHash, models.DefaultPreferences()))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, string, error) {
	var u models.User
	var ph string
	err := r.db.QueryRow(ctx, `
		SELECT id, email, name, role, active, preferences, password_h, created_at, updated_at
		FROM users WHERE email=$1`, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Active, &u.Preferences, &ph, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", nil
		}
		return nil, "", err
	}
	return &u, ph, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id, name string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET name=$1, updated_at=now()
		WHERE id=$2
		RETURNING `+userColumns, name, id))
}

func (r *UserRepo) UpdatePreferences(ctx context.Context, id string, p models.Preferences) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET preferences=$1, updated_at=now()
		WHERE id=$2
		RETURNING `+userColumns, p, id))
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET password_h=$1, updated_at=now() WHERE id=$2
	`, passwordHash, id)
	return err
}

func (r *UserRepo) PasswordHash(ctx context.Context, id string) (string, error) {
	var ph string
	err := r.db.QueryRow(ctx, `SELECT password_h FROM users WHERE id=$1`, id).Scan(&ph)
	return ph, err
}
