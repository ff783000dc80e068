package repository

import (
	"context"

	"github.com/dmitrymomot/examdesk/internal/entity"
)

// RoleRepository adds the permission joins to the role repository.
type RoleRepository struct {
	*Repository[entity.UserRole, *entity.UserRole]
	q Querier
}

func NewRoleRepository(q Querier) *RoleRepository {
	return &RoleRepository{Repository: New[entity.UserRole](q), q: q}
}

// PermissionsOf lists the permissions granted to roleID, by label.
func (r *RoleRepository) PermissionsOf(ctx context.Context, roleID int64) ([]*entity.RolePermission, error) {
	const query = `
		SELECT p.id, p.label
		FROM role_permission p
			INNER JOIN user_role_has_role_permission a ON a.role_permission_id = p.id
		WHERE a.user_role_id = $1
		ORDER BY p.label`

	rows, err := r.q.Query(ctx, query, roleID)
	if err != nil {
		return nil, wrap("permissions of", "user_role", err)
	}
	defer rows.Close()

	var out []*entity.RolePermission
	for rows.Next() {
		p := &entity.RolePermission{}
		if err := rows.Scan(p.ScanTargets()...); err != nil {
			return nil, wrap("permissions of", "user_role", err)
		}
		out = append(out, p)
	}
	return out, wrap("permissions of", "user_role", rows.Err())
}

// PermissionLabels returns only the labels of PermissionsOf.
func (r *RoleRepository) PermissionLabels(ctx context.Context, roleID int64) ([]string, error) {
	perms, err := r.PermissionsOf(ctx, roleID)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(perms))
	for i, p := range perms {
		labels[i] = p.Label
	}
	return labels, nil
}

// Grant adds the permission to the role unless the pair exists and reports
// whether a row was inserted.
func (r *RoleRepository) Grant(ctx context.Context, roleID, permissionID int64) (bool, error) {
	const query = `
		INSERT INTO user_role_has_role_permission (user_role_id, role_permission_id)
		VALUES ($1, $2)
		ON CONFLICT (user_role_id, role_permission_id) DO NOTHING`

	tag, err := r.q.Exec(ctx, query, roleID, permissionID)
	if err != nil {
		return false, wrap("grant", "user_role_has_role_permission", err)
	}
	return tag.RowsAffected() == 1, nil
}
