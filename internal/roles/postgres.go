package roles

import (
	"context"

	"github.com/dmitrymomot/examdesk/internal/entity"
	"github.com/dmitrymomot/examdesk/internal/repository"
)

// Postgres is the Database backed by the repository store.
type Postgres struct {
	store *repository.Store
	tx    *repository.Transactor
}

func NewPostgres(store *repository.Store, tx *repository.Transactor) *Postgres {
	return &Postgres{store: store, tx: tx}
}

func (p *Postgres) InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	return p.tx.InTx(ctx, func(ctx context.Context, s *repository.Store) error {
		return fn(ctx, &Postgres{store: s})
	})
}

func (p *Postgres) Roles(ctx context.Context) ([]*entity.UserRole, error) {
	return p.store.Roles.FindAll(ctx, repository.Asc("label"))
}

func (p *Postgres) Role(ctx context.Context, id int64) (*entity.UserRole, error) {
	return p.store.Roles.Find(ctx, id)
}

func (p *Postgres) LabelIsUnique(ctx context.Context, label string) (bool, error) {
	return p.store.Roles.IsUnique(ctx, "label", label)
}

func (p *Postgres) Permissions(ctx context.Context) ([]*entity.RolePermission, error) {
	return p.store.Permissions.FindAll(ctx, repository.Asc("label"))
}

func (p *Postgres) PermissionsOf(ctx context.Context, roleID int64) ([]*entity.RolePermission, error) {
	return p.store.Roles.PermissionsOf(ctx, roleID)
}

func grant(roleID, permissionID int64) repository.Criteria {
	return repository.By("user_role_id", roleID).And("role_permission_id", permissionID)
}

func (p *Postgres) Grant(ctx context.Context, roleID, permissionID int64) (bool, error) {
	return p.store.Roles.Grant(ctx, roleID, permissionID)
}

func (p *Postgres) Revoke(ctx context.Context, roleID, permissionID int64) (int64, error) {
	return p.store.Grants.RemoveBy(ctx, grant(roleID, permissionID))
}

func (p *Postgres) Create(ctx context.Context, role *entity.UserRole) error {
	_, err := p.store.Manager.Persist(ctx, role)
	return err
}

// Delete drops the grants of a role, then the role itself.
func (p *Postgres) Delete(ctx context.Context, roleID int64) error {
	role, err := p.store.Roles.Find(ctx, roleID)
	if err != nil {
		return err
	}
	if _, err := p.store.Grants.RemoveBy(ctx, repository.By("user_role_id", roleID)); err != nil {
		return err
	}
	return p.store.Manager.Remove(ctx, role)
}
