package shared

// Venue permissions declared for RBAC: restaurant settings, dining tables
// and the menu.
const (
	PermRestaurantRead  = "restaurant:read"
	PermRestaurantWrite = "restaurant:write"

	PermTablesRead   = "tables:read"
	PermTablesWrite  = "tables:write"
	PermTablesDelete = "tables:delete"

	PermMenuRead  = "menu:read"
	PermMenuWrite = "menu:write"
)

// VenueScopes lists all permissions related to the venue module.
func VenueScopes() []string {
	return []string{
		PermRestaurantRead,
		PermRestaurantWrite,
		PermTablesRead,
		PermTablesWrite,
		PermTablesDelete,
		PermMenuRead,
		PermMenuWrite,
	}
}
