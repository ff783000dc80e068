package entity

type User struct {
	Username     string
	Email        string
	PasswordHash string
	ID           int64
	UserRoleID   int64
}

func (*User) Table() string { return "app_user" }

func (*User) Columns() []string {
	return []string{"username", "email", "password_hash", "user_role_id"}
}

func (u *User) Values() []any {
	return []any{u.Username, u.Email, u.PasswordHash, u.UserRoleID}
}

func (u *User) ScanTargets() []any {
	return []any{&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.UserRoleID}
}

func (u *User) GetID() int64   { return u.ID }
func (u *User) SetID(id int64) { u.ID = id }
