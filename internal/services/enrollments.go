package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/NeroQue/course-marketplace-backend/internal/database"
	"github.com/NeroQue/course-marketplace-backend/internal/models"
	"github.com/google/uuid"
)

// EnrollmentStore is the slice of the database layer the enrollment
// service needs
type EnrollmentStore interface {
	GetCourse(ctx context.Context, id uuid.UUID) (database.Course, error)
	CreateEnrollment(ctx context.Context, arg database.CreateEnrollmentParams) error
	ListEnrolledCourses(ctx context.Context, userID uuid.UUID) ([]database.Course, error)
	ListLessonsByCourse(ctx context.Context, courseID uuid.UUID) ([]database.Lesson, error)
	ListCommentsByCourse(ctx context.Context, courseID uuid.UUID) ([]database.Comment, error)
	ListCourseLikes(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
}

// EnrollmentService handles students joining courses
type EnrollmentService struct {
	DB EnrollmentStore
}

// NewEnrollmentService creates service with db dependency
func NewEnrollmentService(db EnrollmentStore) *EnrollmentService {
	return &EnrollmentService{DB: db}
}

// Enroll adds the course to the user's enrolled-set
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID uuid.UUID) error {
	if _, err := s.DB.GetCourse(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("error retrieving course: %w", err)
	}

	if err := s.DB.CreateEnrollment(ctx, database.CreateEnrollmentParams{
		UserID:   userID,
		CourseID: courseID,
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAlreadyEnrolled
		}
		return fmt.Errorf("error creating enrollment: %w", err)
	}
	return nil
}

// EnrolledCourses returns the full course documents the user enrolled in
func (s *EnrollmentService) EnrolledCourses(ctx context.Context, userID uuid.UUID) ([]*models.Course, error) {
	rows, err := s.DB.ListEnrolledCourses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving enrolled courses: %w", err)
	}

	courses := make([]*models.Course, 0, len(rows))
	for _, row := range rows {
		course, err := hydrateCourse(ctx, s.DB, row)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, nil
}
