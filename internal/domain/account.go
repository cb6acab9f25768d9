package domain

import (
	"strings"
	"time"
)

// Role enumerates account roles.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleManager       Role = "MANAGER"
	RoleCollaborator  Role = "COLLABORATOR"
	RoleIntern        Role = "INTERN"
)

// DefaultRole is assigned when registration omits a role.
const DefaultRole = RoleCollaborator

// ParseRole normalizes a role name, reporting false for unknown values.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	switch role {
	case RoleAdministrator, RoleManager, RoleCollaborator, RoleIntern:
		return role, true
	}
	return "", false
}

// IsElevated reports whether the role may perform management operations.
func (r Role) IsElevated() bool {
	return r == RoleAdministrator || r == RoleManager
}

// Account models a staff member able to sign in to the back office.
type Account struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string
	Role               Role
	Active             bool
	ImageRef           *string
	RefreshFingerprint *string
	RefreshExpiresAt   *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasLiveSession reports whether a refresh fingerprint is stored and not stale at now.
func (a *Account) HasLiveSession(now time.Time) bool {
	return a.RefreshFingerprint != nil && a.RefreshExpiresAt != nil && !now.After(*a.RefreshExpiresAt)
}

// NormalizeEmail lowercases and trims an address. Uniqueness is enforced on this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
