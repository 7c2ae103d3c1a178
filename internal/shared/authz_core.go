package shared

// Core platform permissions. Keys follow the `category:action` format; the
// substring before the colon is the catalog category.
const (
	PermUsersRead  = "users:read"
	PermUsersWrite = "users:write"

	PermRolesRead  = "roles:read"
	PermRolesWrite = "roles:write"

	PermPermissionsRead = "permissions:read"
)

// CoreScopes lists all permissions related to the core platform.
func CoreScopes() []string {
	return []string{
		PermUsersRead,
		PermUsersWrite,
		PermRolesRead,
		PermRolesWrite,
		PermPermissionsRead,
	}
}
