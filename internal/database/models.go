package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Row types mirroring the tables in schema.sql

type Course struct {
	ID           uuid.UUID
	Title        string
	Description  sql.NullString
	Category     sql.NullString
	InstructorID uuid.UUID
	CreatedAt    time.Time
}

type Lesson struct {
	ID        uuid.UUID
	CourseID  uuid.UUID
	Title     string
	VideoUrl  sql.NullString
	Position  int64
	CreatedAt time.Time
}

type Comment struct {
	ID         uuid.UUID
	CourseID   uuid.UUID
	Text       string
	AuthorID   uuid.UUID
	AuthorName string
	Position   int64
	CreatedAt  time.Time
}

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Password  string
	Role      string
	CreatedAt time.Time
}

type Enrollment struct {
	UserID    uuid.UUID
	CourseID  uuid.UUID
	CreatedAt time.Time
}
