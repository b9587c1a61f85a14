package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a student/instructor comment on a course
type Comment struct {
	ID       uuid.UUID `json:"id"`
	CourseID uuid.UUID `json:"course_id,omitempty"`

	Text       string    `json:"text"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"` // denormalized at write time so we don't join on reads

	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentInput is what we expect when posting a comment
type CreateCommentInput struct {
	Text string `json:"text"`
}
