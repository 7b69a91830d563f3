// AngelaMos | 2026
// service_test.go

package role

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/authz"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

type memRepo struct {
	roles map[string]*Role
	users map[string]int
}

func newMemRepo() *memRepo {
	return &memRepo{roles: map[string]*Role{}, users: map[string]int{}}
}

func (m *memRepo) Create(_ context.Context, r *Role) error {
	for _, existing := range m.roles {
		if existing.TenantID == r.TenantID && existing.Slug == r.Slug {
			return core.ErrDuplicateKey
		}
	}
	cp := *r
	m.roles[r.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, tenantID, id string) (*Role, error) {
	r, ok := m.roles[id]
	if !ok || r.TenantID != tenantID {
		return nil, core.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) GetBySlug(_ context.Context, tenantID, slug string) (*Role, error) {
	for _, r := range m.roles {
		if r.TenantID == tenantID && r.Slug == slug {
			cp := *r
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepo) List(_ context.Context, tenantID string, _ ListRolesParams) ([]Role, int, error) {
	var out []Role
	for _, r := range m.roles {
		if r.TenantID == tenantID {
			out = append(out, *r)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) Update(_ context.Context, r *Role) error {
	if _, ok := m.roles[r.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *r
	m.roles[r.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, tenantID, id string) error {
	r, ok := m.roles[id]
	if !ok || r.TenantID != tenantID {
		return core.ErrNotFound
	}
	delete(m.roles, id)
	return nil
}

func (m *memRepo) CountUsers(_ context.Context, _ string, id string) (int, error) {
	return m.users[id], nil
}

func seeded(t *testing.T) (*memRepo, *Service, map[string]Role) {
	t.Helper()
	repo := newMemRepo()
	roles, err := CreateSystemRoles(context.Background(), repo, tenantA)
	require.NoError(t, err)

	bySlug := map[string]Role{}
	for _, r := range roles {
		bySlug[r.Slug] = r
	}
	return repo, NewService(repo), bySlug
}

func TestCreateSystemRoles(t *testing.T) {
	_, _, roles := seeded(t)

	require.Len(t, roles, 3)
	for _, slug := range []string{authz.RoleAdmin, authz.RoleSeller, authz.RoleCustomer} {
		r, ok := roles[slug]
		require.True(t, ok, slug)
		assert.True(t, r.IsSystem)
		assert.True(t, r.IsActive)
	}
	assert.Equal(t, 100, roles[authz.RoleAdmin].Priority)
}

func TestSystemRolesCannotBeDeleted(t *testing.T) {
	_, svc, roles := seeded(t)

	for _, r := range roles {
		err := svc.Delete(context.Background(), tenantA, r.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrSystemRole))
		assert.Equal(t, http.StatusForbidden, core.ToAppError(err).StatusCode)
	}
}

func TestSystemRoleSlugIsFrozen(t *testing.T) {
	_, svc, roles := seeded(t)
	slug := "boss"

	_, err := svc.Update(context.Background(), tenantA, roles[authz.RoleAdmin].ID, UpdateRoleRequest{Slug: &slug})
	assert.True(t, errors.Is(err, core.ErrSystemRole))

	name := "Dueño"
	updated, err := svc.Update(context.Background(), tenantA, roles[authz.RoleAdmin].ID, UpdateRoleRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Dueño", updated.Name)
	assert.Equal(t, authz.RoleAdmin, updated.Slug)
}

func TestCreateCustomRole(t *testing.T) {
	_, svc, _ := seeded(t)

	r, err := svc.Create(context.Background(), tenantA, CreateRoleRequest{
		Name:        "Repartidor Nocturno",
		Permissions: []string{"orders:view", "orders:updateStatus"},
	})
	require.NoError(t, err)
	assert.Equal(t, "repartidor-nocturno", r.Slug)
	assert.False(t, r.IsSystem)
	assert.True(t, r.PermissionSet().Has(authz.Orders, authz.UpdateStatus))
	assert.False(t, r.PermissionSet().Has(authz.Orders, authz.ViewAll))
}

func TestCreateRoleRejectsUnknownPermission(t *testing.T) {
	_, svc, _ := seeded(t)

	_, err := svc.Create(context.Background(), tenantA, CreateRoleRequest{
		Name:        "Raro",
		Permissions: []string{"orders:view", "orders:teleport"},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, core.ToAppError(err).StatusCode)
}

func TestDeleteRoleInUse(t *testing.T) {
	repo, svc, _ := seeded(t)

	r, err := svc.Create(context.Background(), tenantA, CreateRoleRequest{Name: "Temporal"})
	require.NoError(t, err)
	repo.users[r.ID] = 2

	err = svc.Delete(context.Background(), tenantA, r.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, core.ToAppError(err).StatusCode)

	repo.users[r.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), tenantA, r.ID))
}

func TestRoleOfOtherTenantIsNotFound(t *testing.T) {
	_, svc, roles := seeded(t)

	_, err := svc.Get(context.Background(), tenantB, roles[authz.RoleAdmin].ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}
