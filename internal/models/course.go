package models

import (
	"time"

	"github.com/google/uuid"
)

// Course represents a published course in the catalog
type Course struct {
	ID uuid.UUID `json:"id"` // unique identifier

	Title       string `json:"title"`                 // course name
	Description string `json:"description,omitempty"` // what the course is about
	Category    string `json:"category,omitempty"`    // e.g. "programming", "design"

	InstructorID uuid.UUID `json:"instructor_id"` // owning instructor - immutable after creation

	Lessons  []Lesson    `json:"lessons"`  // ordered, append-only
	Comments []Comment   `json:"comments"` // ordered, append-only
	Likes    []uuid.UUID `json:"likes"`    // set of users who liked the course

	CreatedAt time.Time `json:"created_at"`
}

// CreateCourseInput is what we expect when creating a new course
type CreateCourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// UpdateCourseInput carries a partial update - nil fields are left untouched
type UpdateCourseInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// CourseWithEnrollment pairs a course with how many students enrolled in it.
// Computed at read time from the enrollments table, never stored.
type CourseWithEnrollment struct {
	Course          *Course `json:"course"`
	EnrollmentCount int     `json:"enrollment_count"`
}
