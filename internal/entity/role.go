package entity

// UserRole is a named role. Its label is what guards compare against.
type UserRole struct {
	Label       string
	Description string
	ID          int64
}

func (*UserRole) Table() string     { return "user_role" }
func (*UserRole) Columns() []string { return []string{"label", "description"} }
func (r *UserRole) Values() []any   { return []any{r.Label, r.Description} }
func (r *UserRole) ScanTargets() []any {
	return []any{&r.ID, &r.Label, &r.Description}
}
func (r *UserRole) GetID() int64   { return r.ID }
func (r *UserRole) SetID(id int64) { r.ID = id }

// RolePermission is a permission label such as "show_profile".
type RolePermission struct {
	Label string
	ID    int64
}

func (*RolePermission) Table() string        { return "role_permission" }
func (*RolePermission) Columns() []string    { return []string{"label"} }
func (p *RolePermission) Values() []any      { return []any{p.Label} }
func (p *RolePermission) ScanTargets() []any { return []any{&p.ID, &p.Label} }
func (p *RolePermission) GetID() int64       { return p.ID }
func (p *RolePermission) SetID(id int64)     { p.ID = id }

// UserRoleHasRolePermission grants a permission to a role.
type UserRoleHasRolePermission struct {
	ID               int64
	UserRoleID       int64
	RolePermissionID int64
}

func (*UserRoleHasRolePermission) Table() string { return "user_role_has_role_permission" }

func (*UserRoleHasRolePermission) Columns() []string {
	return []string{"user_role_id", "role_permission_id"}
}

func (a *UserRoleHasRolePermission) Values() []any {
	return []any{a.UserRoleID, a.RolePermissionID}
}

func (a *UserRoleHasRolePermission) ScanTargets() []any {
	return []any{&a.ID, &a.UserRoleID, &a.RolePermissionID}
}

func (a *UserRoleHasRolePermission) GetID() int64   { return a.ID }
func (a *UserRoleHasRolePermission) SetID(id int64) { a.ID = id }
