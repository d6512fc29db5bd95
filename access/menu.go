// Package access decides which sections of the clinic application an
// employee may reach, based on their role.
package access

import (
	"GoodDental/models"

	"github.com/samber/lo"
)

// Identity is the resolved user behind a request.
type Identity struct {
	ID     string      `json:"id"`
	Role   models.Role `json:"role"`
	Active bool        `json:"active"`
}

// RoleSet is a set of roles.
type RoleSet map[models.Role]struct{}

// Roles builds a set.
func Roles(roles ...models.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s RoleSet) Has(role models.Role) bool {
	_, ok := s[role]
	return ok
}

// Route is one entry of the navigation menu.
type Route struct {
	Path         string  `json:"path"`
	Label        string  `json:"label"`
	AllowedRoles RoleSet `json:"-"`
}

var everyone = Roles(models.Roles...)

// Menu is the full navigation table, in display order.
var Menu = []Route{
	{Path: "/dashboard", Label: "Dashboard", AllowedRoles: everyone},
	{Path: "/patients", Label: "Patients", AllowedRoles: Roles(models.RoleAdmin, models.RoleDoctor, models.RoleReceptionist)},
	{Path: "/medical-records", Label: "Medical records", AllowedRoles: Roles(models.RoleAdmin, models.RoleDoctor)},
	{Path: "/dentogram", Label: "Dentogram", AllowedRoles: Roles(models.RoleAdmin, models.RoleDoctor)},
	{Path: "/employees", Label: "Employees", AllowedRoles: Roles(models.RoleAdmin)},
	{Path: "/inventory", Label: "Inventory", AllowedRoles: Roles(models.RoleAdmin, models.RoleCashier)},
	{Path: "/pos", Label: "Point of sale", AllowedRoles: Roles(models.RoleAdmin, models.RoleCashier, models.RoleReceptionist)},
	{Path: "/cash", Label: "Cash closing", AllowedRoles: Roles(models.RoleAdmin, models.RoleCashier)},
	{Path: "/reports", Label: "Reports", AllowedRoles: Roles(models.RoleAdmin)},
	{Path: "/enterprise", Label: "Clinic settings", AllowedRoles: Roles(models.RoleAdmin)},
}

// MenuFor returns the routes the identity may see, in table order. Inactive
// identities see nothing.
func MenuFor(id Identity) []Route {
	return filterMenu(Menu, id)
}

func filterMenu(table []Route, id Identity) []Route {
	if !id.Active {
		return []Route{}
	}
	return lo.Filter(table, func(r Route, _ int) bool {
		return r.AllowedRoles.Has(id.Role)
	})
}

// RolesFor returns the roles allowed on path, or nil when path is not in
// the menu.
func RolesFor(path string) RoleSet {
	if r, ok := lo.Find(Menu, func(r Route) bool { return r.Path == path }); ok {
		return r.AllowedRoles
	}
	return nil
}

// Allowed reports whether the identity may open path.
func Allowed(id Identity, path string) bool {
	return Permits(id, RolesFor(path))
}

// Permits reports whether an active identity holds one of roles.
func Permits(id Identity, roles RoleSet) bool {
	return id.Active && roles.Has(id.Role)
}
