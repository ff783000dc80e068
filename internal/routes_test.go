package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteTable_URL(t *testing.T) {
	t.Parallel()

	table := RouteTable{
		"app_index":       "/",
		"exam_show":       "/exams/{id}",
		"admin_role_show": "/admin/roles/{id}",
		"two":             "/a/{x}/b/{y}",
	}

	tests := []struct {
		name   string
		route  string
		params []any
		want   string
		err    error
	}{
		{name: "static", route: "app_index", want: "/"},
		{name: "int param", route: "exam_show", params: []any{int64(42)}, want: "/exams/42"},
		{name: "escaped", route: "two", params: []any{"a b", "c/d"}, want: "/a/a%20b/b/c%2Fd"},
		{name: "surplus ignored", route: "admin_role_show", params: []any{1, 2}, want: "/admin/roles/1"},
		{name: "missing", route: "exam_show", err: ErrMissingRouteParam},
		{name: "unknown", route: "nope", err: ErrUnknownRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := table.URL(tt.route, tt.params...)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "#", table.MustURL("nope"))
}
