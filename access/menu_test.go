package access

import (
	"GoodDental/models"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func paths(routes []Route) []string {
	return lo.Map(routes, func(r Route, _ int) string { return r.Path })
}

func TestMenuFor_FiltersByRole(t *testing.T) {
	tests := []struct {
		role models.Role
		want []string
	}{
		{models.RoleAdmin, paths(Menu)},
		{models.RoleDoctor, []string{"/dashboard", "/patients", "/medical-records", "/dentogram"}},
		{models.RoleReceptionist, []string{"/dashboard", "/patients", "/pos"}},
		{models.RoleCashier, []string{"/dashboard", "/inventory", "/pos", "/cash"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got := MenuFor(Identity{ID: "u1", Role: tt.role, Active: true})
			assert.Equal(t, tt.want, paths(got))
		})
	}
}

func TestMenuFor_InactiveIdentitySeesNothing(t *testing.T) {
	got := MenuFor(Identity{ID: "u1", Role: models.RoleAdmin, Active: false})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMenuFor_UnknownRoleSeesNothing(t *testing.T) {
	got := MenuFor(Identity{ID: "u1", Role: models.Role("janitor"), Active: true})
	assert.Empty(t, got)
}

func TestMenuFor_KeepsTableOrder(t *testing.T) {
	table := []Route{
		{Path: "/b", AllowedRoles: Roles(models.RoleDoctor)},
		{Path: "/a", AllowedRoles: Roles(models.RoleAdmin)},
		{Path: "/c", AllowedRoles: Roles(models.RoleDoctor, models.RoleAdmin)},
	}
	got := filterMenu(table, Identity{Role: models.RoleDoctor, Active: true})
	assert.Equal(t, []string{"/b", "/c"}, paths(got))
}

func TestAllowed(t *testing.T) {
	doctor := Identity{ID: "d", Role: models.RoleDoctor, Active: true}

	assert.True(t, Allowed(doctor, "/dentogram"))
	assert.False(t, Allowed(doctor, "/employees"))
	assert.False(t, Allowed(doctor, "/unknown"))

	doctor.Active = false
	assert.False(t, Allowed(doctor, "/dentogram"))
}

func TestAllowedMatchesMenu(t *testing.T) {
	for _, role := range models.Roles {
		id := Identity{Role: role, Active: true}
		visible := paths(MenuFor(id))
		for _, r := range Menu {
			assert.Equal(t, lo.Contains(visible, r.Path), Allowed(id, r.Path), "%s %s", role, r.Path)
		}
	}
}
