package domain

import "time"

// Status represents the lifecycle state of an account.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// ParseStatus maps a string to a Status. ok is false for unknown values.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusActive, StatusDeleted:
		return Status(s), true
	}
	return "", false
}

// RoleName identifies one of the fixed roles. The wire spelling follows the
// authority names granted at login (ROLE_*).
type RoleName string

const (
	RoleCustomer RoleName = "ROLE_CUSTOMER"
	RoleStaff    RoleName = "ROLE_STAFF"
	RoleAdmin    RoleName = "ROLE_ADMIN"
)

// ResolveRoleName maps a requested role string to exactly one RoleName.
// Matching is case-sensitive: "admin" and "staff" select their roles, any
// other input (including unrecognised strings) falls back to RoleCustomer.
func ResolveRoleName(requested string) RoleName {
	switch requested {
	case "admin":
		return RoleAdmin
	case "staff":
		return RoleStaff
	default:
		return RoleCustomer
	}
}

// Role is a shared, immutable capability grant. Roles are seeded once and
// only ever looked up by the lifecycle manager, never created by it.
type Role struct {
	ID   string   `json:"id"`
	Name RoleName `json:"name"`
}

// Account is the core aggregate root: a user's persisted identity record.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Status       Status    `json:"status"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the account holds the administrative role.
func (a *Account) IsAdmin() bool {
	for _, r := range a.Roles {
		if r.Name == RoleAdmin {
			return true
		}
	}
	return false
}

// RoleNames returns the account's role names in stored order.
func (a *Account) RoleNames() []string {
	names := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		names = append(names, string(r.Name))
	}
	return names
}

// AuthenticatedIdentity is the resolved caller identity threaded in by the
// transport layer after token verification. Operations acting on "the current
// caller" receive it explicitly instead of reading ambient state.
type AuthenticatedIdentity struct {
	ID       string
	Username string
	Email    string
	Roles    []string
}
