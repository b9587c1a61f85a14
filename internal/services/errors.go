package services

import "errors"

// Sentinel errors services hand back to the HTTP layer. Handlers map
// them to status codes with errors.Is; anything else becomes a 500.
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrNotOwner           = errors.New("course belongs to another instructor")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
)
