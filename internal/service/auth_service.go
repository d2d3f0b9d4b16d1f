package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/repository"
	"github.com/sahil06012005/OdooHackathon/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
)

const sessionTTL = 24 * time.Hour

type AuthService struct {
	users         repository.UserRepository
	sessionSecret string
}

func NewAuthService(users repository.UserRepository, sessionSecret string) *AuthService {
	return &AuthService{users: users, sessionSecret: sessionSecret}
}

// Register creates an account. Self-registration is only allowed for end
// users; agent/admin accounts are provisioned out of band.
func (a *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("a valid email is required")
	}
	if name == "" {
		return nil, errors.New("name is required")
	}
	if len(password) < 6 {
		return nil, errors.New("password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return a.users.Create(ctx, email, name, models.RoleEndUser, hash)
}

func (a *AuthService) Login(ctx context.Context, email, password string) (token string, user *models.User, err error) {
	u, hash, err := a.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return "", nil, err
	}
	if u == nil || !utils.CheckPassword(hash, password) {
		return "", nil, ErrInvalidCredentials
	}
	if !u.Active {
		return "", nil, ErrAccountDisabled
	}
	tok, err := utils.SignJWT(a.sessionSecret, u.ID, u.Role, sessionTTL)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (a *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	hash, err := a.users.PasswordHash(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(hash, current) {
		return ErrInvalidCredentials
	}
	if len(next) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	newHash, err := utils.HashPassword(next)
	if err != nil {
		return err
	}
	return a.users.UpdatePasswordHash(ctx, userID, newHash)
}
