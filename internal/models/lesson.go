package models

import (
	"time"

	"github.com/google/uuid"
)

// Lesson represents a single lesson inside a course
type Lesson struct {
	ID       uuid.UUID `json:"id"`
	CourseID uuid.UUID `json:"course_id,omitempty"` // which course this belongs to

	Title    string `json:"title"`               // lesson name
	VideoURL string `json:"video_url,omitempty"` // relative path under the uploads dir

	CreatedAt time.Time `json:"created_at"`
}

// CreateLessonInput is what we expect when appending a lesson.
// The video itself arrives as a multipart file, not in this struct.
type CreateLessonInput struct {
	Title string `json:"title"`
}
