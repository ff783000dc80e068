// Package roles manages user roles and the permissions granted to them.
package roles

import (
	"context"
	"errors"

	"github.com/dmitrymomot/examdesk/internal/entity"
	"github.com/dmitrymomot/examdesk/internal/repository"
	"github.com/dmitrymomot/examdesk/pkg/sanitizer"
	"github.com/dmitrymomot/examdesk/pkg/validator"
)

var (
	ErrLabelTaken = errors.New("roles: label is already taken")
	// ErrInUse is returned when a role to delete is still assigned to users.
	ErrInUse = errors.New("roles: role is still assigned")
)

type Store interface {
	Roles(ctx context.Context) ([]*entity.UserRole, error)
	Role(ctx context.Context, id int64) (*entity.UserRole, error)
	LabelIsUnique(ctx context.Context, label string) (bool, error)
	Permissions(ctx context.Context) ([]*entity.RolePermission, error)
	PermissionsOf(ctx context.Context, roleID int64) ([]*entity.RolePermission, error)
	// Grant reports false when the pair already existed.
	Grant(ctx context.Context, roleID, permissionID int64) (bool, error)
	Revoke(ctx context.Context, roleID, permissionID int64) (int64, error)
	Create(ctx context.Context, role *entity.UserRole) error
	Delete(ctx context.Context, roleID int64) error
}

type Database interface {
	Store
	InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// CreateRequest is the new role form.
type CreateRequest struct {
	Label       string `form:"label" validate:"required,max=64"`
	Description string `form:"description" validate:"max=255"`
}

// Details is a role with its granted permissions and the full permission
// list for the grant form.
type Details struct {
	Role        *entity.UserRole
	Granted     []*entity.RolePermission
	Permissions []*entity.RolePermission
}

// Grantable lists the permissions not yet granted.
func (d *Details) Grantable() []*entity.RolePermission {
	granted := make(map[int64]struct{}, len(d.Granted))
	for _, p := range d.Granted {
		granted[p.ID] = struct{}{}
	}
	var out []*entity.RolePermission
	for _, p := range d.Permissions {
		if _, ok := granted[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out
}

type Service struct {
	db Database
}

func NewService(db Database) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context) ([]*entity.UserRole, error) {
	return s.db.Roles(ctx)
}

// Show loads a role. A missing role is reported as not found.
func (s *Service) Show(ctx context.Context, id int64) (*Details, error) {
	role, err := s.db.Role(ctx, id)
	if err != nil {
		return nil, err
	}
	granted, err := s.db.PermissionsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := s.db.Permissions(ctx)
	if err != nil {
		return nil, err
	}
	return &Details{Role: role, Granted: granted, Permissions: all}, nil
}

// Create inserts a role unless its label exists.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*entity.UserRole, error) {
	req.Label = sanitizer.Line(req.Label)
	req.Description = sanitizer.Line(req.Description)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	unique, err := s.db.LabelIsUnique(ctx, req.Label)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, ErrLabelTaken
	}

	role := &entity.UserRole{Label: req.Label, Description: req.Description}
	if err := s.db.Create(ctx, role); err != nil {
		if repository.IsConflict(err) {
			return nil, errors.Join(ErrLabelTaken, err)
		}
		return nil, err
	}
	return role, nil
}

// Delete removes the given roles with their grants in one transaction and
// returns how many were removed. Unknown ids are skipped.
func (s *Service) Delete(ctx context.Context, ids []int64) (int, error) {
	var removed int
	err := s.db.InTx(ctx, func(ctx context.Context, st Store) error {
		removed = 0
		for _, id := range ids {
			err := st.Delete(ctx, id)
			switch {
			case err == nil:
				removed++
			case repository.IsNotFound(err):
			case repository.IsConflict(err):
				return errors.Join(ErrInUse, err)
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Revoke removes the given permissions from a role.
func (s *Service) Revoke(ctx context.Context, roleID int64, permissionIDs []int64) (int64, error) {
	var removed int64
	err := s.db.InTx(ctx, func(ctx context.Context, st Store) error {
		removed = 0
		for _, pid := range permissionIDs {
			n, err := st.Revoke(ctx, roleID, pid)
			if err != nil {
				return err
			}
			removed += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Grant adds the given permissions to a role, skipping pairs that exist,
// and returns how many were added.
func (s *Service) Grant(ctx context.Context, roleID int64, permissionIDs []int64) (int, error) {
	var added int
	err := s.db.InTx(ctx, func(ctx context.Context, st Store) error {
		added = 0
		if _, err := st.Role(ctx, roleID); err != nil {
			return err
		}
		seen := make(map[int64]struct{}, len(permissionIDs))
		for _, pid := range permissionIDs {
			if _, dup := seen[pid]; dup {
				continue
			}
			seen[pid] = struct{}{}

			ok, err := st.Grant(ctx, roleID, pid)
			if err != nil {
				return err
			}
			if ok {
				added++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
