package roles_test

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/examdesk/internal/entity"
	"github.com/dmitrymomot/examdesk/internal/repository"
	"github.com/dmitrymomot/examdesk/internal/roles"
	"github.com/dmitrymomot/examdesk/pkg/validator"
)

type pair struct{ role, perm int64 }

type fakeDB struct {
	roles  map[int64]*entity.UserRole
	perms  []*entity.RolePermission
	grants []pair
	inUse  map[int64]bool

	creates int
	nextID  int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		roles: map[int64]*entity.UserRole{
			1: {ID: 1, Label: "admin"},
			2: {ID: 2, Label: "teacher"},
		},
		perms: []*entity.RolePermission{
			{ID: 1, Label: "create_key_question"},
			{ID: 2, Label: "show_profile"},
		},
		grants: []pair{{1, 1}, {1, 2}, {2, 2}},
		inUse:  map[int64]bool{},
		nextID: 10,
	}
}

func (f *fakeDB) InTx(ctx context.Context, fn func(context.Context, roles.Store) error) error {
	snapshot := *f
	snapshot.roles = make(map[int64]*entity.UserRole, len(f.roles))
	for k, v := range f.roles {
		snapshot.roles[k] = v
	}
	snapshot.grants = slices.Clone(f.grants)
	if err := fn(ctx, f); err != nil {
		*f = snapshot
		return err
	}
	return nil
}

func (f *fakeDB) Roles(context.Context) ([]*entity.UserRole, error) {
	var out []*entity.UserRole
	for _, r := range f.roles {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b *entity.UserRole) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f *fakeDB) Role(_ context.Context, id int64) (*entity.UserRole, error) {
	if r, ok := f.roles[id]; ok {
		return r, nil
	}
	return nil, repository.NotFound("find", "user_role")
}

func (f *fakeDB) LabelIsUnique(_ context.Context, label string) (bool, error) {
	for _, r := range f.roles {
		if r.Label == label {
			return false, nil
		}
	}
	return true, nil
}

func (f *fakeDB) Permissions(context.Context) ([]*entity.RolePermission, error) {
	return f.perms, nil
}

func (f *fakeDB) PermissionsOf(_ context.Context, roleID int64) ([]*entity.RolePermission, error) {
	var out []*entity.RolePermission
	for _, p := range f.perms {
		if slices.Contains(f.grants, pair{roleID, p.ID}) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeDB) Grant(_ context.Context, roleID, permissionID int64) (bool, error) {
	if slices.Contains(f.grants, pair{roleID, permissionID}) {
		return false, nil
	}
	f.grants = append(f.grants, pair{roleID, permissionID})
	return true, nil
}

func (f *fakeDB) Revoke(_ context.Context, roleID, permissionID int64) (int64, error) {
	before := len(f.grants)
	f.grants = slices.DeleteFunc(f.grants, func(p pair) bool { return p == pair{roleID, permissionID} })
	return int64(before - len(f.grants)), nil
}

func (f *fakeDB) Create(_ context.Context, role *entity.UserRole) error {
	f.creates++
	f.nextID++
	role.ID = f.nextID
	f.roles[role.ID] = role
	return nil
}

func (f *fakeDB) Delete(_ context.Context, roleID int64) error {
	if _, ok := f.roles[roleID]; !ok {
		return repository.NotFound("remove", "user_role")
	}
	if f.inUse[roleID] {
		return &repository.Error{Kind: repository.KindConflict, Op: "remove", Entity: "user_role"}
	}
	delete(f.roles, roleID)
	f.grants = slices.DeleteFunc(f.grants, func(p pair) bool { return p.role == roleID })
	return nil
}

func TestService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := newFakeDB()
	svc := roles.NewService(db)

	role, err := svc.Create(ctx, roles.CreateRequest{Label: "  supervisor ", Description: "<i>Betreuung</i>"})
	require.NoError(t, err)
	assert.Equal(t, "supervisor", role.Label)
	assert.Equal(t, "Betreuung", role.Description)
	assert.Equal(t, 1, db.creates)

	_, err = svc.Create(ctx, roles.CreateRequest{Label: "teacher"})
	require.ErrorIs(t, err, roles.ErrLabelTaken)
	assert.Equal(t, 1, db.creates, "a taken label must not insert")

	_, err = svc.Create(ctx, roles.CreateRequest{Label: ""})
	assert.True(t, validator.IsValidationError(err))
	assert.Equal(t, 1, db.creates)
}

func TestService_Show(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := roles.NewService(newFakeDB())

	d, err := svc.Show(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "teacher", d.Role.Label)
	require.Len(t, d.Granted, 1)
	assert.Equal(t, "show_profile", d.Granted[0].Label)
	assert.Len(t, d.Permissions, 2)
	require.Len(t, d.Grantable(), 1)
	assert.Equal(t, "create_key_question", d.Grantable()[0].Label)

	_, err = svc.Show(ctx, 99)
	assert.True(t, repository.IsNotFound(err))
}

func TestService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes marked roles with their grants", func(t *testing.T) {
		t.Parallel()
		db := newFakeDB()
		n, err := roles.NewService(db).Delete(ctx, []int64{2, 99})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.NotContains(t, db.roles, int64(2))
		assert.Equal(t, []pair{{1, 1}, {1, 2}}, db.grants)
	})

	t.Run("assigned role rolls everything back", func(t *testing.T) {
		t.Parallel()
		db := newFakeDB()
		db.inUse[1] = true
		_, err := roles.NewService(db).Delete(ctx, []int64{2, 1})
		require.ErrorIs(t, err, roles.ErrInUse)
		assert.Contains(t, db.roles, int64(2))
		assert.Len(t, db.grants, 3)
	})
}

func TestService_Revoke(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := newFakeDB()
	svc := roles.NewService(db)

	n, err := svc.Revoke(ctx, 1, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, db.grants, 3, "no marked rows alter nothing")

	n, err = svc.Revoke(ctx, 1, []int64{2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, []pair{{1, 1}, {2, 2}}, db.grants)
}

func TestService_Grant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := newFakeDB()
	svc := roles.NewService(db)

	n, err := svc.Grant(ctx, 2, []int64{1, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "existing and repeated pairs are skipped")
	assert.ElementsMatch(t, []pair{{1, 1}, {1, 2}, {2, 2}, {2, 1}}, db.grants)

	_, err = svc.Grant(ctx, 99, []int64{1})
	assert.True(t, repository.IsNotFound(err))
}
