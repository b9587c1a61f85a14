// Package databasetest provides an in-memory stand-in for the Queries
// layer so service and handler tests can run without Postgres. It
// mirrors the SQL semantics the services rely on: sql.ErrNoRows for
// missing rows, unique-violation errors for duplicate emails, atomic
// like toggling, and newest-first course listings.
package databasetest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/NeroQue/course-marketplace-backend/internal/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Store implements the services' store interfaces in memory
type Store struct {
	mu sync.Mutex

	courses  map[uuid.UUID]database.Course
	seq      map[uuid.UUID]int64 // insertion order, tie-breaks equal timestamps
	lessons  map[uuid.UUID][]database.Lesson
	comments map[uuid.UUID][]database.Comment
	likes    map[uuid.UUID]map[uuid.UUID]bool

	users        map[uuid.UUID]database.User
	usersByEmail map[string]uuid.UUID
	enrollments  map[uuid.UUID]map[uuid.UUID]bool // userID -> set of courseIDs

	nextSeq      int64
	nextPosition int64

	// ListCoursesCalls counts full catalog scans - cache tests use it to
	// prove hits never reach the store
	ListCoursesCalls int

	// error injection for failure-path tests
	CreateCourseErr error
	ListCoursesErr  error
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		courses:      make(map[uuid.UUID]database.Course),
		seq:          make(map[uuid.UUID]int64),
		lessons:      make(map[uuid.UUID][]database.Lesson),
		comments:     make(map[uuid.UUID][]database.Comment),
		likes:        make(map[uuid.UUID]map[uuid.UUID]bool),
		users:        make(map[uuid.UUID]database.User),
		usersByEmail: make(map[string]uuid.UUID),
		enrollments:  make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (s *Store) CreateCourse(ctx context.Context, arg database.CreateCourseParams) (database.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateCourseErr != nil {
		return database.Course{}, s.CreateCourseErr
	}

	s.nextSeq++
	c := database.Course{
		ID:           arg.ID,
		Title:        arg.Title,
		Description:  arg.Description,
		Category:     arg.Category,
		InstructorID: arg.InstructorID,
		CreatedAt:    time.Now(),
	}
	s.courses[arg.ID] = c
	s.seq[arg.ID] = s.nextSeq
	return c, nil
}

func (s *Store) GetCourse(ctx context.Context, id uuid.UUID) (database.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.courses[id]
	if !ok {
		return database.Course{}, sql.ErrNoRows
	}
	return c, nil
}

func (s *Store) ListCourses(ctx context.Context) ([]database.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ListCoursesCalls++
	if s.ListCoursesErr != nil {
		return nil, s.ListCoursesErr
	}

	courses := make([]database.Course, 0, len(s.courses))
	for _, c := range s.courses {
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool {
		if !courses[i].CreatedAt.Equal(courses[j].CreatedAt) {
			return courses[i].CreatedAt.After(courses[j].CreatedAt)
		}
		return s.seq[courses[i].ID] > s.seq[courses[j].ID]
	})
	return courses, nil
}

func (s *Store) UpdateCourse(ctx context.Context, arg database.UpdateCourseParams) (database.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.courses[arg.ID]
	if !ok {
		return database.Course{}, sql.ErrNoRows
	}
	// COALESCE semantics - null params keep the stored value
	if arg.Title.Valid {
		c.Title = arg.Title.String
	}
	if arg.Description.Valid {
		c.Description = arg.Description
	}
	if arg.Category.Valid {
		c.Category = arg.Category
	}
	s.courses[arg.ID] = c
	return c, nil
}

func (s *Store) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.courses, id)
	delete(s.seq, id)
	delete(s.lessons, id)
	delete(s.comments, id)
	delete(s.likes, id)
	for _, set := range s.enrollments {
		delete(set, id)
	}
	return nil
}

func (s *Store) CreateLesson(ctx context.Context, arg database.CreateLessonParams) (database.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPosition++
	l := database.Lesson{
		ID:        arg.ID,
		CourseID:  arg.CourseID,
		Title:     arg.Title,
		VideoUrl:  arg.VideoUrl,
		Position:  s.nextPosition,
		CreatedAt: time.Now(),
	}
	s.lessons[arg.CourseID] = append(s.lessons[arg.CourseID], l)
	return l, nil
}

func (s *Store) ListLessonsByCourse(ctx context.Context, courseID uuid.UUID) ([]database.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]database.Lesson(nil), s.lessons[courseID]...), nil
}

func (s *Store) CreateComment(ctx context.Context, arg database.CreateCommentParams) (database.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPosition++
	c := database.Comment{
		ID:         arg.ID,
		CourseID:   arg.CourseID,
		Text:       arg.Text,
		AuthorID:   arg.AuthorID,
		AuthorName: arg.AuthorName,
		Position:   s.nextPosition,
		CreatedAt:  time.Now(),
	}
	s.comments[arg.CourseID] = append(s.comments[arg.CourseID], c)
	return c, nil
}

func (s *Store) ListCommentsByCourse(ctx context.Context, courseID uuid.UUID) ([]database.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]database.Comment(nil), s.comments[courseID]...), nil
}

// ToggleLike flips set membership under the store lock, mirroring the
// single-statement toggle the real store runs
func (s *Store) ToggleLike(ctx context.Context, arg database.ToggleLikeParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.likes[arg.CourseID]
	if set == nil {
		set = make(map[uuid.UUID]bool)
		s.likes[arg.CourseID] = set
	}
	if set[arg.UserID] {
		delete(set, arg.UserID)
	} else {
		set[arg.UserID] = true
	}
	return nil
}

func (s *Store) ListCourseLikes(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uuid.UUID
	for id := range s.likes[courseID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) ListInstructorCourses(ctx context.Context, instructorID uuid.UUID) ([]database.InstructorCourseRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var courses []database.Course
	for _, c := range s.courses {
		if c.InstructorID == instructorID {
			courses = append(courses, c)
		}
	}
	sort.Slice(courses, func(i, j int) bool {
		if !courses[i].CreatedAt.Equal(courses[j].CreatedAt) {
			return courses[i].CreatedAt.After(courses[j].CreatedAt)
		}
		return s.seq[courses[i].ID] > s.seq[courses[j].ID]
	})

	rows := make([]database.InstructorCourseRow, 0, len(courses))
	for _, c := range courses {
		var count int64
		for _, set := range s.enrollments {
			if set[c.ID] {
				count++
			}
		}
		rows = append(rows, database.InstructorCourseRow{Course: c, EnrollmentCount: count})
	}
	return rows, nil
}

func (s *Store) CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[arg.Email]; exists {
		// same shape the real store surfaces for the unique index
		return database.User{}, &pq.Error{Code: "23505", Constraint: "users_email_key"}
	}

	u := database.User{
		ID:        arg.ID,
		Name:      arg.Name,
		Email:     arg.Email,
		Password:  arg.Password,
		Role:      arg.Role,
		CreatedAt: time.Now(),
	}
	s.users[arg.ID] = u
	s.usersByEmail[arg.Email] = arg.ID
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return database.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return database.User{}, sql.ErrNoRows
	}
	return s.users[id], nil
}

func (s *Store) CreateEnrollment(ctx context.Context, arg database.CreateEnrollmentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.enrollments[arg.UserID]
	if set == nil {
		set = make(map[uuid.UUID]bool)
		s.enrollments[arg.UserID] = set
	}
	if set[arg.CourseID] {
		// ON CONFLICT DO NOTHING returns no row
		return sql.ErrNoRows
	}
	set[arg.CourseID] = true
	return nil
}

func (s *Store) ListEnrolledCourses(ctx context.Context, userID uuid.UUID) ([]database.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var courses []database.Course
	for courseID := range s.enrollments[userID] {
		if c, ok := s.courses[courseID]; ok {
			courses = append(courses, c)
		}
	}
	sort.Slice(courses, func(i, j int) bool {
		return s.seq[courses[i].ID] > s.seq[courses[j].ID]
	})
	return courses, nil
}
