package domain

import (
	"strings"
	"time"
)

// Application role catalog. Users may only be assigned roles from this set.
const (
	RoleAdmin   = "ROLE_ADMIN"
	RoleUser    = "ROLE_USER"
	RoleManager = "ROLE_MANAGER"
)

// AppRoles returns every role name the application recognises.
func AppRoles() []string {
	return []string{RoleAdmin, RoleUser, RoleManager}
}

// IsAppRole reports whether name matches a known role, ignoring case.
func IsAppRole(name string) bool {
	for _, r := range AppRoles() {
		if strings.EqualFold(r, name) {
			return true
		}
	}
	return false
}

type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
