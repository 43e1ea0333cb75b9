package model

import "time"

// Role describes what an account is allowed to do on the marketplace.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleCelebrity Role = "celebrity"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleCelebrity, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered account.
type User struct {
	ID           int64
	Login        string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Identity is the authenticated principal carried by auth tokens.
type Identity struct {
	UserID int64
	Role   Role
}
