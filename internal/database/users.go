package database

import (
	"context"

	"github.com/google/uuid"
)

const createUser = `
INSERT INTO users (id, name, email, password, role)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, email, password, role, created_at
`

type CreateUserParams struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Password string
	Role     string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.ID, arg.Name, arg.Email, arg.Password, arg.Role)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	return u, err
}

const getUser = `
SELECT id, name, email, password, role, created_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, name, email, password, role, created_at
FROM users
WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	return u, err
}

const createEnrollment = `
INSERT INTO enrollments (user_id, course_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
RETURNING user_id
`

type CreateEnrollmentParams struct {
	UserID   uuid.UUID
	CourseID uuid.UUID
}

// CreateEnrollment adds the course to the user's enrolled-set.
// Returns sql.ErrNoRows when the user was already enrolled.
func (q *Queries) CreateEnrollment(ctx context.Context, arg CreateEnrollmentParams) error {
	var enrolled uuid.UUID
	return q.db.QueryRowContext(ctx, createEnrollment, arg.UserID, arg.CourseID).Scan(&enrolled)
}

const listEnrolledCourses = `
SELECT c.id, c.title, c.description, c.category, c.instructor_id, c.created_at
FROM courses c
JOIN enrollments e ON e.course_id = c.id
WHERE e.user_id = $1
ORDER BY e.created_at DESC, c.id
`

func (q *Queries) ListEnrolledCourses(ctx context.Context, userID uuid.UUID) ([]Course, error) {
	rows, err := q.db.QueryContext(ctx, listEnrolledCourses, userID)
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
