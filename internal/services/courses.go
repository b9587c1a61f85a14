package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/NeroQue/course-marketplace-backend/internal/database"
	"github.com/NeroQue/course-marketplace-backend/internal/models"
	"github.com/NeroQue/course-marketplace-backend/pkg/cache"
	"github.com/google/uuid"
)

// Catalog cache settings. One key holds the serialized full listing;
// the TTL bounds worst-case staleness when an invalidation is missed.
const (
	catalogCacheKey = "allCourses"
	catalogCacheTTL = 3600 * time.Second
)

// CourseStore is the slice of the database layer the course service
// needs. *database.Queries satisfies it; tests plug in a fake.
type CourseStore interface {
	CreateCourse(ctx context.Context, arg database.CreateCourseParams) (database.Course, error)
	GetCourse(ctx context.Context, id uuid.UUID) (database.Course, error)
	ListCourses(ctx context.Context) ([]database.Course, error)
	UpdateCourse(ctx context.Context, arg database.UpdateCourseParams) (database.Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	CreateLesson(ctx context.Context, arg database.CreateLessonParams) (database.Lesson, error)
	ListLessonsByCourse(ctx context.Context, courseID uuid.UUID) ([]database.Lesson, error)
	CreateComment(ctx context.Context, arg database.CreateCommentParams) (database.Comment, error)
	ListCommentsByCourse(ctx context.Context, courseID uuid.UUID) ([]database.Comment, error)
	ToggleLike(ctx context.Context, arg database.ToggleLikeParams) error
	ListCourseLikes(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
	ListInstructorCourses(ctx context.Context, instructorID uuid.UUID) ([]database.InstructorCourseRow, error)
}

// CourseService handles all catalog business logic
type CourseService struct {
	DB    CourseStore // source of truth
	Cache cache.Cache // disposable projection of the listing
}

// NewCourseService creates service with dependencies
func NewCourseService(db CourseStore, catalogCache cache.Cache) *CourseService {
	return &CourseService{
		DB:    db,
		Cache: catalogCache,
	}
}

// CreateCourse inserts a new course owned by instructorID and
// invalidates the catalog cache
func (s *CourseService) CreateCourse(ctx context.Context, instructorID uuid.UUID, input models.CreateCourseInput) (*models.Course, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.New("course title is required")
	}

	row, err := s.DB.CreateCourse(ctx, database.CreateCourseParams{
		ID:           uuid.New(),
		Title:        input.Title,
		Description:  sql.NullString{String: input.Description, Valid: input.Description != ""},
		Category:     sql.NullString{String: input.Category, Valid: input.Category != ""},
		InstructorID: instructorID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	// only bust the cache after the store accepted the write
	s.invalidateCatalog(ctx)

	return courseFromRow(row), nil
}

// ListCourses returns the serialized full course listing, going through
// the catalog cache. Cached bytes are served verbatim on a hit; any
// cache error is logged and treated as a miss so the read path stays up
// when the cache is down.
func (s *CourseService) ListCourses(ctx context.Context) (json.RawMessage, error) {
	cached, ok, err := s.Cache.Get(ctx, catalogCacheKey)
	if err != nil {
		log.Printf("Warning: course cache read failed, falling back to database: %v", err)
	} else if ok {
		return cached, nil
	}

	rows, err := s.DB.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving courses: %w", err)
	}

	courses := make([]*models.Course, 0, len(rows))
	for _, row := range rows {
		course, err := s.hydrateCourse(ctx, row)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	snapshot, err := json.Marshal(courses)
	if err != nil {
		return nil, fmt.Errorf("error serializing courses: %w", err)
	}

	if err := s.Cache.Set(ctx, catalogCacheKey, snapshot, catalogCacheTTL); err != nil {
		// not fatal - next read just hits the database again
		log.Printf("Warning: failed to populate course cache: %v", err)
	}

	return snapshot, nil
}

// GetCourse retrieves a single course by its ID, bypassing the cache
func (s *CourseService) GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	row, err := s.DB.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return s.hydrateCourse(ctx, row)
}

// UpdateCourse applies a partial update after verifying ownership, then
// invalidates the catalog cache
func (s *CourseService) UpdateCourse(ctx context.Context, courseID, requesterID uuid.UUID, input models.UpdateCourseInput) (*models.Course, error) {
	if err := s.checkOwnership(ctx, courseID, requesterID); err != nil {
		return nil, err
	}

	row, err := s.DB.UpdateCourse(ctx, database.UpdateCourseParams{
		ID:          courseID,
		Title:       nullString(input.Title),
		Description: nullString(input.Description),
		Category:    nullString(input.Category),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error updating course: %w", err)
	}

	s.invalidateCatalog(ctx)

	return s.hydrateCourse(ctx, row)
}

// DeleteCourse removes a course after verifying ownership, then
// invalidates the catalog cache
func (s *CourseService) DeleteCourse(ctx context.Context, courseID, requesterID uuid.UUID) error {
	if err := s.checkOwnership(ctx, courseID, requesterID); err != nil {
		return err
	}

	if err := s.DB.DeleteCourse(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("error deleting course: %w", err)
	}

	s.invalidateCatalog(ctx)
	return nil
}

// AddLesson appends a lesson to a course owned by requesterID.
// Lessons don't show in the listing view, so no cache invalidation.
func (s *CourseService) AddLesson(ctx context.Context, courseID, requesterID uuid.UUID, title, videoURL string) (*models.Lesson, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("lesson title is required")
	}

	if err := s.checkOwnership(ctx, courseID, requesterID); err != nil {
		return nil, err
	}

	row, err := s.DB.CreateLesson(ctx, database.CreateLessonParams{
		ID:       uuid.New(),
		CourseID: courseID,
		Title:    title,
		VideoUrl: sql.NullString{String: videoURL, Valid: videoURL != ""},
	})
	if err != nil {
		return nil, fmt.Errorf("error adding lesson: %w", err)
	}

	lesson := lessonFromRow(row)
	return &lesson, nil
}

// AddComment appends a comment to a course. Any authenticated user can
// comment; the author's display name is denormalized at write time.
// Comments don't show in the listing view, so no cache invalidation.
func (s *CourseService) AddComment(ctx context.Context, courseID, authorID uuid.UUID, authorName, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("comment text is required")
	}

	// make sure the course exists so callers get a proper not-found
	if _, err := s.DB.GetCourse(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	row, err := s.DB.CreateComment(ctx, database.CreateCommentParams{
		ID:         uuid.New(),
		CourseID:   courseID,
		Text:       text,
		AuthorID:   authorID,
		AuthorName: authorName,
	})
	if err != nil {
		return nil, fmt.Errorf("error adding comment: %w", err)
	}

	comment := commentFromRow(row)
	return &comment, nil
}

// ToggleLike flips userID's like on a course and returns the resulting
// like set. The flip is a single atomic store operation so concurrent
// likers can't lose updates. Likes don't show in the listing view, so
// no cache invalidation either; that staleness is deliberate.
func (s *CourseService) ToggleLike(ctx context.Context, courseID, userID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.DB.GetCourse(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	if err := s.DB.ToggleLike(ctx, database.ToggleLikeParams{CourseID: courseID, UserID: userID}); err != nil {
		return nil, fmt.Errorf("error toggling like: %w", err)
	}

	likes, err := s.DB.ListCourseLikes(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("error listing likes: %w", err)
	}
	if likes == nil {
		likes = []uuid.UUID{}
	}
	return likes, nil
}

// InstructorCourses returns the instructor's courses joined with how
// many students enrolled in each, computed at read time
func (s *CourseService) InstructorCourses(ctx context.Context, instructorID uuid.UUID) ([]models.CourseWithEnrollment, error) {
	rows, err := s.DB.ListInstructorCourses(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving instructor courses: %w", err)
	}

	results := make([]models.CourseWithEnrollment, 0, len(rows))
	for _, row := range rows {
		course, err := s.hydrateCourse(ctx, row.Course)
		if err != nil {
			return nil, err
		}
		results = append(results, models.CourseWithEnrollment{
			Course:          course,
			EnrollmentCount: int(row.EnrollmentCount),
		})
	}
	return results, nil
}

// checkOwnership loads the course and confirms requesterID owns it.
// Fetch-then-compare is safe here because instructor_id is immutable
// after creation.
func (s *CourseService) checkOwnership(ctx context.Context, courseID, requesterID uuid.UUID) error {
	row, err := s.DB.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("error retrieving course: %w", err)
	}
	if row.InstructorID != requesterID {
		return ErrNotOwner
	}
	return nil
}

// invalidateCatalog drops the cached listing. Failure is non-fatal:
// the TTL bounds how stale a missed invalidation can leave readers.
func (s *CourseService) invalidateCatalog(ctx context.Context) {
	if err := s.Cache.Delete(ctx, catalogCacheKey); err != nil {
		log.Printf("Warning: failed to invalidate course cache: %v", err)
	}
}

func (s *CourseService) hydrateCourse(ctx context.Context, row database.Course) (*models.Course, error) {
	return hydrateCourse(ctx, s.DB, row)
}

// courseHydrator is the read subset needed to assemble a full course
type courseHydrator interface {
	ListLessonsByCourse(ctx context.Context, courseID uuid.UUID) ([]database.Lesson, error)
	ListCommentsByCourse(ctx context.Context, courseID uuid.UUID) ([]database.Comment, error)
	ListCourseLikes(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
}

// hydrateCourse loads the course's lessons, comments, and likes and
// assembles the full API model
func hydrateCourse(ctx context.Context, db courseHydrator, row database.Course) (*models.Course, error) {
	course := courseFromRow(row)

	lessonRows, err := db.ListLessonsByCourse(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving lessons: %w", err)
	}
	for _, l := range lessonRows {
		course.Lessons = append(course.Lessons, lessonFromRow(l))
	}

	commentRows, err := db.ListCommentsByCourse(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving comments: %w", err)
	}
	for _, c := range commentRows {
		course.Comments = append(course.Comments, commentFromRow(c))
	}

	likes, err := db.ListCourseLikes(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving likes: %w", err)
	}
	course.Likes = append(course.Likes, likes...)

	return course, nil
}

// conversion helpers between db rows and API models

func courseFromRow(row database.Course) *models.Course {
	return &models.Course{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description.String,
		Category:     row.Category.String,
		InstructorID: row.InstructorID,
		Lessons:      []models.Lesson{},
		Comments:     []models.Comment{},
		Likes:        []uuid.UUID{},
		CreatedAt:    row.CreatedAt,
	}
}

func lessonFromRow(row database.Lesson) models.Lesson {
	return models.Lesson{
		ID:        row.ID,
		CourseID:  row.CourseID,
		Title:     row.Title,
		VideoURL:  row.VideoUrl.String,
		CreatedAt: row.CreatedAt,
	}
}

func commentFromRow(row database.Comment) models.Comment {
	return models.Comment{
		ID:         row.ID,
		CourseID:   row.CourseID,
		Text:       row.Text,
		AuthorID:   row.AuthorID,
		AuthorName: row.AuthorName,
		CreatedAt:  row.CreatedAt,
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
