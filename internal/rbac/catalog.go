package rbac

import (
	"fmt"
	"strings"

	"github.com/qrserve/qrserve/internal/shared"
)

// CatalogEntry describes one permission in the global catalog.
type CatalogEntry struct {
	Key         string
	Category    string
	Description string
}

// Category returns the catalog category of a permission key: the substring
// before the colon.
func Category(key string) string {
	if idx := strings.IndexByte(key, ':'); idx > 0 {
		return key[:idx]
	}
	return key
}

var descriptions = map[string]string{
	shared.PermUsersRead:       "View staff accounts",
	shared.PermUsersWrite:      "Create and update staff accounts",
	shared.PermRolesRead:       "View roles",
	shared.PermRolesWrite:      "Manage roles and their permissions",
	shared.PermPermissionsRead: "View the permission catalog",

	shared.PermRestaurantRead:  "View restaurant settings",
	shared.PermRestaurantWrite: "Update restaurant settings",
	shared.PermTablesRead:      "View dining tables",
	shared.PermTablesWrite:     "Create and update dining tables",
	shared.PermTablesDelete:    "Delete dining tables",
	shared.PermMenuRead:        "View the menu",
	shared.PermMenuWrite:       "Manage menu categories and items",

	shared.PermOrdersRead:    "View orders",
	shared.PermOrdersWrite:   "Confirm and update orders",
	shared.PermOrdersKitchen: "View the kitchen board and advance preparation",
	shared.PermOrdersServe:   "Mark orders as served",
	shared.PermPaymentsRead:  "View payments",
	shared.PermPaymentsRecord: "Record payments",
}

// Catalog builds the full permission catalog from the declared scopes.
// Every key must be well-formed (`category:action`); a malformed key is a
// programming error surfaced at startup.
func Catalog() ([]CatalogEntry, error) {
	keys := shared.AllScopes()
	entries := make([]CatalogEntry, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if !strings.Contains(key, ":") {
			return nil, fmt.Errorf("rbac: malformed permission key %q", key)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("rbac: duplicate permission key %q", key)
		}
		seen[key] = struct{}{}
		entries = append(entries, CatalogEntry{
			Key:         key,
			Category:    Category(key),
			Description: descriptions[key],
		})
	}
	return entries, nil
}

// DefaultTemplates maps role template names to their permission keys.
// Templates are seeded per restaurant; the owner template carries every
// tenant permission.
func DefaultTemplates() map[string][]string {
	tenantAll := append(append([]string{}, shared.CoreScopes()...), shared.VenueScopes()...)
	tenantAll = append(tenantAll, shared.OrderScopes()...)
	return map[string][]string{
		"owner": tenantAll,
		"manager": {
			shared.PermUsersRead, shared.PermUsersWrite,
			shared.PermRolesRead,
			shared.PermRestaurantRead, shared.PermRestaurantWrite,
			shared.PermTablesRead, shared.PermTablesWrite, shared.PermTablesDelete,
			shared.PermMenuRead, shared.PermMenuWrite,
			shared.PermOrdersRead, shared.PermOrdersWrite, shared.PermOrdersServe,
			shared.PermPaymentsRead, shared.PermPaymentsRecord,
		},
		"kitchen": {
			shared.PermOrdersRead, shared.PermOrdersKitchen, shared.PermMenuRead,
		},
		"waiter": {
			shared.PermOrdersRead, shared.PermOrdersWrite, shared.PermOrdersServe,
			shared.PermTablesRead, shared.PermMenuRead,
		},
		"cashier": {
			shared.PermOrdersRead, shared.PermPaymentsRead, shared.PermPaymentsRecord,
		},
	}
}

// ValidateTemplates checks every template key against the catalog. An
// unknown key is a construction-time error, never a silent miss at check
// time.
func ValidateTemplates(templates map[string][]string) error {
	entries, err := Catalog()
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		known[e.Key] = struct{}{}
	}
	for name, keys := range templates {
		for _, key := range keys {
			if _, ok := known[key]; !ok {
				return fmt.Errorf("rbac: role template %q references unknown permission %q", name, key)
			}
		}
	}
	return nil
}
