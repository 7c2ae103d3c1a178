package shared

// Order and payment permissions declared for RBAC.
const (
	PermOrdersRead    = "orders:read"
	PermOrdersWrite   = "orders:write"
	PermOrdersKitchen = "orders:kitchen"
	PermOrdersServe   = "orders:serve"

	PermPaymentsRead   = "payments:read"
	PermPaymentsRecord = "payments:record"
)

// OrderScopes lists all permissions related to orders and payments.
func OrderScopes() []string {
	return []string{
		PermOrdersRead,
		PermOrdersWrite,
		PermOrdersKitchen,
		PermOrdersServe,
		PermPaymentsRead,
		PermPaymentsRecord,
	}
}

// AllScopes returns every permission key known to the platform.
func AllScopes() []string {
	all := append([]string{}, CoreScopes()...)
	all = append(all, VenueScopes()...)
	all = append(all, OrderScopes()...)
	return all
}
