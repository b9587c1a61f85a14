package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Roles a user can register with
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
)

// User represents an account in the system
type User struct {
	ID uuid.UUID `json:"id"` // unique identifier

	Name  string `json:"name"`  // display name
	Email string `json:"email"` // unique login
	Role  string `json:"role"`  // student or instructor

	// bcrypt hash - never serialized in responses
	Password string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// RegisterInput is what we expect when creating a new account
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginInput is what we expect on login
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidRole reports whether role is one we accept at registration
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleInstructor
}

// String provides a string representation of the user
// This is useful for logging and debugging
func (u *User) String() string {
	return fmt.Sprintf("User(ID=%s, Email=%s, Role=%s)", u.ID, u.Email, u.Role)
}
