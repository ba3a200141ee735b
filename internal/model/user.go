package model

import (
	"errors"
	"time"
)

// User represents an authentication user.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
// Unknown roles fail closed on either side.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:      2,
		RoleTechnician: 1,
	}
	r, ok := levels[role]
	m, okMin := levels[minimum]
	return ok && okMin && r >= m
}

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleTechnician
}

// MinPasswordLen is the shortest password accepted on creation or change.
const MinPasswordLen = 8

// ValidatePassword checks a candidate password against the policy.
func ValidatePassword(password string) error {
	if password == "" {
		return errors.New("password required")
	}
	if len(password) < MinPasswordLen {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
