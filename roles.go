package accounts

import "strings"

// UserRole is the user's role
type UserRole string

const (
	// RoleStudent is the default role for new accounts
	RoleStudent UserRole = "student"
	// RoleTeacher is a staff role without admin access
	RoleTeacher UserRole = "teacher"
	// RoleAdmin can manage every account and the admin panel
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// RequiresLASID reports whether the role carries a student id.
func (r UserRole) RequiresLASID() bool {
	return r == RoleStudent
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	roleHierarchy := map[UserRole]int{
		RoleStudent: 0,
		RoleTeacher: 1,
		RoleAdmin:   2,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleStudent,
		RoleTeacher,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(strings.ToLower(strings.TrimSpace(roleStr)))
	if role == "" {
		return RoleStudent, true
	}
	return role, role.IsValid()
}
