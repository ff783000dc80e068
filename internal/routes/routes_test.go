package routes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/examdesk/internal/routes"
)

func TestTable(t *testing.T) {
	t.Parallel()

	assert.Len(t, routes.Table, 15)

	u, err := routes.Table.URL(routes.AdminRoleShow, 4)
	require.NoError(t, err)
	assert.Equal(t, "/admin/roles/4", u)

	u, err = routes.Table.URL(routes.KeyQuestionClaim, 12)
	require.NoError(t, err)
	assert.Equal(t, "/profile/key-questions/12/claim", u)

	assert.Equal(t, "/locale/en", routes.Table.MustURL(routes.AppLocale, "en"))
}

func TestPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/exams/subject/{id}", routes.Path(routes.ExamList))
	assert.Panics(t, func() { routes.Path("nope") })
}
