package auth

import "time"

// PrincipalType classifies the authenticated actor.
type PrincipalType string

const (
	// TypePlatformAdmin has cross-tenant metadata access and no business-data access.
	TypePlatformAdmin PrincipalType = "platform-admin"
	// TypeOwner owns one or more restaurants.
	TypeOwner PrincipalType = "restaurant-owner"
	// TypeStaff works at exactly one restaurant.
	TypeStaff PrincipalType = "staff"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Type         PrincipalType
	RestaurantID *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the request-scoped identity derived from a validated token.
// It is constructed once per request and never shared across requests.
type Principal struct {
	UserID       int64
	Email        string
	Type         PrincipalType
	RestaurantID *int64
}

// Principal derives the request identity from a user record.
func (u *User) Principal() Principal {
	return Principal{
		UserID:       u.ID,
		Email:        u.Email,
		Type:         u.Type,
		RestaurantID: u.RestaurantID,
	}
}
