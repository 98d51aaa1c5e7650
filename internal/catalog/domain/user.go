package domain

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // argon2id encoded
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleNames returns the names of the user's roles in assignment order.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasRole reports whether the user carries the named role.
func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Principal is the resolved identity attached to a request after successful
// authentication: who the caller is plus the role names that authorize them.
type Principal struct {
	UserID string
	Email  string
	Name   string
	Roles  []string
}

// HasRole reports whether the principal carries the named role.
func (p Principal) HasRole(name string) bool {
	for _, r := range p.Roles {
		if r == name {
			return true
		}
	}
	return false
}
