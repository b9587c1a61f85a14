package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const createCourse = `
INSERT INTO courses (id, title, description, category, instructor_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, title, description, category, instructor_id, created_at
`

type CreateCourseParams struct {
	ID           uuid.UUID
	Title        string
	Description  sql.NullString
	Category     sql.NullString
	InstructorID uuid.UUID
}

func (q *Queries) CreateCourse(ctx context.Context, arg CreateCourseParams) (Course, error) {
	row := q.db.QueryRowContext(ctx, createCourse,
		arg.ID, arg.Title, arg.Description, arg.Category, arg.InstructorID)
	var c Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.InstructorID, &c.CreatedAt)
	return c, err
}

const getCourse = `
SELECT id, title, description, category, instructor_id, created_at
FROM courses
WHERE id = $1
`

func (q *Queries) GetCourse(ctx context.Context, id uuid.UUID) (Course, error) {
	row := q.db.QueryRowContext(ctx, getCourse, id)
	var c Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.InstructorID, &c.CreatedAt)
	return c, err
}

const listCourses = `
SELECT id, title, description, category, instructor_id, created_at
FROM courses
ORDER BY created_at DESC, id
`

func (q *Queries) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := q.db.QueryContext(ctx, listCourses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.InstructorID, &c.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

const updateCourse = `
UPDATE courses
SET title       = COALESCE($2, title),
    description = COALESCE($3, description),
    category    = COALESCE($4, category)
WHERE id = $1
RETURNING id, title, description, category, instructor_id, created_at
`

type UpdateCourseParams struct {
	ID          uuid.UUID
	Title       sql.NullString
	Description sql.NullString
	Category    sql.NullString
}

// UpdateCourse replaces only the supplied fields. Null params keep the
// stored value via COALESCE. instructor_id is never touched here.
func (q *Queries) UpdateCourse(ctx context.Context, arg UpdateCourseParams) (Course, error) {
	row := q.db.QueryRowContext(ctx, updateCourse,
		arg.ID, arg.Title, arg.Description, arg.Category)
	var c Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.InstructorID, &c.CreatedAt)
	return c, err
}

const deleteCourse = `
DELETE FROM courses
WHERE id = $1
RETURNING id
`

// DeleteCourse removes the course row (lessons/comments/likes cascade).
// Returns sql.ErrNoRows when the course doesn't exist.
func (q *Queries) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	var deleted uuid.UUID
	return q.db.QueryRowContext(ctx, deleteCourse, id).Scan(&deleted)
}

const createLesson = `
INSERT INTO lessons (id, course_id, title, video_url)
VALUES ($1, $2, $3, $4)
RETURNING id, course_id, title, video_url, position, created_at
`

type CreateLessonParams struct {
	ID       uuid.UUID
	CourseID uuid.UUID
	Title    string
	VideoUrl sql.NullString
}

func (q *Queries) CreateLesson(ctx context.Context, arg CreateLessonParams) (Lesson, error) {
	row := q.db.QueryRowContext(ctx, createLesson,
		arg.ID, arg.CourseID, arg.Title, arg.VideoUrl)
	var l Lesson
	err := row.Scan(&l.ID, &l.CourseID, &l.Title, &l.VideoUrl, &l.Position, &l.CreatedAt)
	return l, err
}

const listLessonsByCourse = `
SELECT id, course_id, title, video_url, position, created_at
FROM lessons
WHERE course_id = $1
ORDER BY position
`

func (q *Queries) ListLessonsByCourse(ctx context.Context, courseID uuid.UUID) ([]Lesson, error) {
	rows, err := q.db.QueryContext(ctx, listLessonsByCourse, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []Lesson
	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.VideoUrl, &l.Position, &l.CreatedAt); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

const createComment = `
INSERT INTO comments (id, course_id, text, author_id, author_name)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, course_id, text, author_id, author_name, position, created_at
`

type CreateCommentParams struct {
	ID         uuid.UUID
	CourseID   uuid.UUID
	Text       string
	AuthorID   uuid.UUID
	AuthorName string
}

func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error) {
	row := q.db.QueryRowContext(ctx, createComment,
		arg.ID, arg.CourseID, arg.Text, arg.AuthorID, arg.AuthorName)
	var c Comment
	err := row.Scan(&c.ID, &c.CourseID, &c.Text, &c.AuthorID, &c.AuthorName, &c.Position, &c.CreatedAt)
	return c, err
}

const listCommentsByCourse = `
SELECT id, course_id, text, author_id, author_name, position, created_at
FROM comments
WHERE course_id = $1
ORDER BY position
`

func (q *Queries) ListCommentsByCourse(ctx context.Context, courseID uuid.UUID) ([]Comment, error) {
	rows, err := q.db.QueryContext(ctx, listCommentsByCourse, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.CourseID, &c.Text, &c.AuthorID, &c.AuthorName, &c.Position, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

const toggleLike = `
WITH removed AS (
    DELETE FROM course_likes
    WHERE course_id = $1 AND user_id = $2
    RETURNING user_id
)
INSERT INTO course_likes (course_id, user_id)
SELECT $1, $2
WHERE NOT EXISTS (SELECT 1 FROM removed)
`

type ToggleLikeParams struct {
	CourseID uuid.UUID
	UserID   uuid.UUID
}

// ToggleLike flips the user's membership in the course's like set as a
// single statement, so concurrent likers can't lose each other's update.
func (q *Queries) ToggleLike(ctx context.Context, arg ToggleLikeParams) error {
	_, err := q.db.ExecContext(ctx, toggleLike, arg.CourseID, arg.UserID)
	return err
}

const listCourseLikes = `
SELECT user_id
FROM course_likes
WHERE course_id = $1
`

func (q *Queries) ListCourseLikes(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.db.QueryContext(ctx, listCourseLikes, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

const listInstructorCourses = `
SELECT c.id, c.title, c.description, c.category, c.instructor_id, c.created_at,
       COUNT(e.user_id) AS enrollment_count
FROM courses c
LEFT JOIN enrollments e ON e.course_id = c.id
WHERE c.instructor_id = $1
GROUP BY c.id
ORDER BY c.created_at DESC, c.id
`

type InstructorCourseRow struct {
	Course          Course
	EnrollmentCount int64
}

// ListInstructorCourses joins each of the instructor's courses against
// the enrollments table and counts enrolled students at read time.
func (q *Queries) ListInstructorCourses(ctx context.Context, instructorID uuid.UUID) ([]InstructorCourseRow, error) {
	rows, err := q.db.QueryContext(ctx, listInstructorCourses, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []InstructorCourseRow
	for rows.Next() {
		var r InstructorCourseRow
		if err := rows.Scan(
			&r.Course.ID, &r.Course.Title, &r.Course.Description, &r.Course.Category,
			&r.Course.InstructorID, &r.Course.CreatedAt, &r.EnrollmentCount,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
