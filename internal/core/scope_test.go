// AngelaMos | 2026
// scope_test.go

package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeRequiresTenant(t *testing.T) {
	_, err := Scope("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTenantRequired))
}

func TestScopeAlwaysStartsWithTenant(t *testing.T) {
	f, err := Scope("t1")
	require.NoError(t, err)

	f.Eq("id", "p1").Where("stock + ? >= 0", -2).ILike("cake", "name", "description")

	assert.Equal(t,
		"tenant_id = $1 AND id = $2 AND stock + $3 >= 0 AND (name ILIKE $4 OR description ILIKE $4)",
		f.Clause(),
	)
	assert.Equal(t, []any{"t1", "p1", -2, "%cake%"}, f.Args())
	assert.Equal(t, 5, f.Next())
}

func TestScopeAlias(t *testing.T) {
	f, err := ScopeAs("t1", "u")
	require.NoError(t, err)

	f.Eq("is_active", true).Eq("r.slug", "admin")

	assert.Equal(t, "u.tenant_id = $1 AND u.is_active = $2 AND r.slug = $3", f.Clause())
}

func TestScopePage(t *testing.T) {
	f, err := Scope("t1")
	require.NoError(t, err)
	f.Eq("status", "pending")

	clause, args := f.Page(20, 40)

	assert.Equal(t, "LIMIT $3 OFFSET $4", clause)
	assert.Equal(t, []any{"t1", "pending", 20, 40}, args)
	assert.Equal(t, []any{"t1", "pending"}, f.Args())
}

func TestILikeEscapes(t *testing.T) {
	f, err := Scope("t1")
	require.NoError(t, err)
	f.ILike("50%_off", "name")

	assert.Equal(t, `%50\%\_off%`, f.Args()[1])
}

func TestILikeEmptyTermIsNoop(t *testing.T) {
	f, err := Scope("t1")
	require.NoError(t, err)
	f.ILike("", "name")

	assert.Equal(t, "tenant_id = $1", f.Clause())
}
