package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/examdesk/internal/entity"
	"github.com/dmitrymomot/examdesk/internal/repository"
)

func TestRepository_Find(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	q := &fakeQuerier{row: []any{int64(3), "admin", "Administrators"}}
	roles := repository.New[entity.UserRole](q)

	role, err := roles.Find(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, &entity.UserRole{ID: 3, Label: "admin", Description: "Administrators"}, role)
	assert.Equal(t, "SELECT id, label, description FROM user_role WHERE id = $1", q.last())

	missing := &fakeQuerier{}
	_, err = repository.New[entity.UserRole](missing).Find(ctx, 9)
	require.Error(t, err)
	assert.True(t, repository.IsNotFound(err))
}

func TestRepository_FindForUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	q := &fakeQuerier{row: []any{int64(4), 2019, nil, "Leitfrage", nil}}
	exam, err := repository.New[entity.Exam](q).FindForUpdate(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), exam.ID)
	assert.Equal(t, "SELECT id, year, topic_id, key_question, user_id FROM exam WHERE id = $1 FOR UPDATE", q.last())

	_, err = repository.New[entity.Exam](&fakeQuerier{}).FindForUpdate(ctx, 5)
	assert.True(t, repository.IsNotFound(err))
}

func TestRepository_FindBy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	q := &fakeQuerier{rows: [][]any{
		{int64(1), "Mathematik", "ma"},
		{int64(2), "Physik", "ph"},
	}}
	subjects := repository.New[entity.SchoolSubject](q)

	got, err := subjects.FindBy(ctx, repository.By("abbr", "ma").And("label", "Mathematik"), repository.Asc("label"), repository.Desc("id"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Physik", got[1].Label)
	assert.Equal(t,
		"SELECT id, label, abbr FROM school_subject WHERE abbr = $1 AND label = $2 ORDER BY label ASC, id DESC",
		q.last())
	assert.Equal(t, []any{"ma", "Mathematik"}, q.args[0])
}

func TestRepository_FindAllDefaultsToIDOrder(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	_, err := repository.New[entity.RolePermission](q).FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, label FROM role_permission ORDER BY id", q.last())
}

func TestRepository_NullCriteria(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{row: []any{0}}
	_, err := repository.New[entity.Exam](q).Count(context.Background(), repository.By("user_id", nil).And("year", 2020))
	require.NoError(t, err)
	assert.Equal(t, "SELECT count(*) FROM exam WHERE user_id IS NULL AND year = $1", q.last())
	assert.Equal(t, []any{2020}, q.args[0])
}

func TestRepository_UnknownFieldIsRejectedBeforeSQL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	q := &fakeQuerier{}
	users := repository.New[entity.User](q)

	_, err := users.FindBy(ctx, repository.By("password; DROP TABLE app_user", "x"))
	require.Error(t, err)
	assert.True(t, repository.IsValidation(err))
	assert.Equal(t, "password; DROP TABLE app_user", repository.FieldOf(err))

	_, err = users.FindAll(ctx, repository.Asc("nope"))
	assert.True(t, repository.IsValidation(err))

	_, err = users.RemoveBy(ctx, nil)
	assert.True(t, repository.IsValidation(err))

	assert.Empty(t, q.queries)
}

func TestRepository_IsUnique(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	free := &fakeQuerier{row: []any{0}}
	ok, err := repository.New[entity.UserRole](free).IsUnique(ctx, "label", "teacher")
	require.NoError(t, err)
	assert.True(t, ok)

	taken := &fakeQuerier{row: []any{1}}
	ok, err = repository.New[entity.UserRole](taken).IsUnique(ctx, "label", "teacher")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_Remove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	q := &fakeQuerier{execTag: "DELETE 2"}
	grants := repository.New[entity.UserRoleHasRolePermission](q)

	n, err := grants.RemoveBy(ctx, repository.By("user_role_id", int64(1)).And("role_permission_id", int64(4)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, "DELETE FROM user_role_has_role_permission WHERE user_role_id = $1 AND role_permission_id = $2", q.last())

	require.NoError(t, grants.Remove(ctx, 5))
	assert.Equal(t, "DELETE FROM user_role_has_role_permission WHERE id = $1", q.last())
}

func TestEntityManager_Persist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("insert sets the generated id", func(t *testing.T) {
		t.Parallel()
		q := &fakeQuerier{row: []any{int64(11)}}
		role := &entity.UserRole{Label: "teacher", Description: "Lehrkraft"}

		id, err := repository.NewEntityManager(q).Persist(ctx, role)
		require.NoError(t, err)
		assert.Equal(t, int64(11), id)
		assert.Equal(t, int64(11), role.ID)
		assert.Equal(t, "INSERT INTO user_role (label, description) VALUES ($1, $2) RETURNING id", q.last())
	})

	t.Run("update writes every column", func(t *testing.T) {
		t.Parallel()
		q := &fakeQuerier{execTag: "UPDATE 1"}
		role := &entity.UserRole{ID: 4, Label: "teacher", Description: "x"}

		id, err := repository.NewEntityManager(q).Persist(ctx, role)
		require.NoError(t, err)
		assert.Equal(t, int64(4), id)
		assert.Equal(t, "UPDATE user_role SET label = $1, description = $2 WHERE id = $3", q.last())
		assert.Equal(t, []any{"teacher", "x", int64(4)}, q.args[0])
	})

	t.Run("update of a missing row", func(t *testing.T) {
		t.Parallel()
		q := &fakeQuerier{execTag: "UPDATE 0"}
		_, err := repository.NewEntityManager(q).Persist(ctx, &entity.Topic{ID: 8})
		assert.True(t, repository.IsNotFound(err))
	})

	t.Run("unique violation is a conflict", func(t *testing.T) {
		t.Parallel()
		q := &fakeQuerier{rowErr: &pgconn.PgError{Code: "23505", ConstraintName: "user_role_label_key"}}
		_, err := repository.NewEntityManager(q).Persist(ctx, &entity.UserRole{Label: "admin"})
		require.Error(t, err)
		assert.True(t, repository.IsConflict(err))
		assert.Equal(t, "user_role_label_key", repository.FieldOf(err))
	})

	t.Run("driver failure is infrastructure", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("connection reset")
		q := &fakeQuerier{rowErr: boom}
		_, err := repository.NewEntityManager(q).Persist(ctx, &entity.Topic{Title: "x"})
		kind, ok := repository.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, repository.KindInfrastructure, kind)
		assert.ErrorIs(t, err, boom)
	})
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	err := repository.Invalid("transfer", "exam", "username", errors.New("no such user"))
	assert.Equal(t, "repository: transfer exam (username): validation: no such user", err.Error())
	assert.Equal(t, "repository: find topic: not found", repository.NotFound("find", "topic").Error())
}

func TestRepository_ForeignKeyViolationIsConflict(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{execErr: &pgconn.PgError{Code: "23503", ConstraintName: "app_user_user_role_id_fkey"}}
	err := repository.New[entity.UserRole](q).Remove(context.Background(), 1)
	assert.True(t, repository.IsConflict(err))
}

func TestRoleRepository_Grant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	q := &fakeQuerier{execTag: "INSERT 0 1"}
	added, err := repository.NewRoleRepository(q).Grant(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Contains(t, q.last(), "ON CONFLICT (user_role_id, role_permission_id) DO NOTHING")
	assert.Equal(t, []any{int64(2), int64(1)}, q.args[0])

	existing := &fakeQuerier{execTag: "INSERT 0 0"}
	added, err = repository.NewRoleRepository(existing).Grant(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, added)

	missing := &fakeQuerier{execErr: &pgconn.PgError{Code: "23503", ConstraintName: "user_role_has_role_permission_role_permission_id_fkey"}}
	_, err = repository.NewRoleRepository(missing).Grant(ctx, 2, 99)
	assert.True(t, repository.IsConflict(err))
}
