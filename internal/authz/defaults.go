// AngelaMos | 2026
// defaults.go

package authz

const (
	RoleAdmin    = "admin"
	RoleSeller   = "seller"
	RoleCustomer = "customer"
)

type SystemRole struct {
	Name        string
	Slug        string
	Description string
	Priority    int
	Permissions Set
}

// SystemRoles are created with every tenant and cannot be deleted.
func SystemRoles() []SystemRole {
	return []SystemRole{
		{
			Name:        "Administrador",
			Slug:        RoleAdmin,
			Description: "Acceso total a la tienda",
			Priority:    100,
			Permissions: All(),
		},
		{
			Name:        "Vendedor",
			Slug:        RoleSeller,
			Description: "Gestiona productos y pedidos",
			Priority:    50,
			Permissions: NewSet(
				P(Users, View),
				P(Products, View),
				P(Products, Create),
				P(Products, Edit),
				P(Products, ManageStock),
				P(Orders, View),
				P(Orders, ViewAll),
				P(Orders, Create),
				P(Orders, Edit),
				P(Orders, UpdateStatus),
				P(Roles, View),
				P(Tenant, View),
			),
		},
		{
			Name:        "Cliente",
			Slug:        RoleCustomer,
			Description: "Compra en la tienda",
			Priority:    10,
			Permissions: NewSet(
				P(Products, View),
				P(Orders, View),
				P(Orders, Create),
				P(Orders, Cancel),
			),
		},
	}
}
