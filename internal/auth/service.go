// Package auth checks local passwords and builds the session identity.
package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/examdesk/internal"
	"github.com/dmitrymomot/examdesk/internal/entity"
	"github.com/dmitrymomot/examdesk/internal/repository"
	"github.com/dmitrymomot/examdesk/pkg/validator"
)

var ErrInvalidCredentials = errors.New("auth: invalid username or password")

type Store interface {
	UserByName(ctx context.Context, username string) (*entity.User, error)
	Role(ctx context.Context, id int64) (*entity.UserRole, error)
	PermissionLabels(ctx context.Context, roleID int64) ([]string, error)
}

// LoginRequest is the login form.
type LoginRequest struct {
	Username string `form:"username" validate:"required,max=180"`
	Password string `form:"password" validate:"required,max=72"`
}

type Service struct {
	store Store
	// dummy is compared against when the user does not exist.
	dummy []byte
}

func NewService(store Store) *Service {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("examdesk"), bcrypt.MinCost)
	return &Service{store: store, dummy: dummy}
}

// HashPassword hashes a password for the password_hash column.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// Authenticate checks the credentials and returns the identity snapshot:
// the user, the label of their role and the labels of its permissions.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest) (*internal.Identity, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.store.UserByName(ctx, req.Username)
	if err != nil {
		if repository.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	identity := &internal.Identity{UserID: user.ID, Username: user.Username}
	role, err := s.store.Role(ctx, user.UserRoleID)
	switch {
	case err == nil:
		identity.Role = role.Label
	case repository.IsNotFound(err):
		return identity, nil
	default:
		return nil, err
	}

	if identity.Permissions, err = s.store.PermissionLabels(ctx, role.ID); err != nil {
		return nil, err
	}
	return identity, nil
}

// Postgres is the Store backed by the repository store.
type Postgres struct {
	store *repository.Store
}

func NewPostgres(store *repository.Store) *Postgres {
	return &Postgres{store: store}
}

func (p *Postgres) UserByName(ctx context.Context, username string) (*entity.User, error) {
	return p.store.Users.FindOneBy(ctx, repository.By("username", username))
}

func (p *Postgres) Role(ctx context.Context, id int64) (*entity.UserRole, error) {
	return p.store.Roles.Find(ctx, id)
}

func (p *Postgres) PermissionLabels(ctx context.Context, roleID int64) ([]string, error) {
	return p.store.Roles.PermissionLabels(ctx, roleID)
}
