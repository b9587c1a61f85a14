package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/NeroQue/course-marketplace-backend/internal/database"
	"github.com/NeroQue/course-marketplace-backend/internal/models"
	"github.com/NeroQue/course-marketplace-backend/pkg/token"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the slice of the database layer the user service needs
type UserStore interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (database.User, error)
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
}

// UserService handles registration, login, and profile lookups
type UserService struct {
	DB     UserStore
	Tokens *token.Manager // issues login tokens
}

// NewUserService creates service with dependencies
func NewUserService(db UserStore, tokens *token.Manager) *UserService {
	return &UserService{
		DB:     db,
		Tokens: tokens,
	}
}

// Register creates a new account with a bcrypt-hashed password
func (s *UserService) Register(ctx context.Context, input models.RegisterInput) (*models.User, error) {
	if strings.TrimSpace(input.Name) == "" ||
		strings.TrimSpace(input.Email) == "" ||
		input.Password == "" || input.Role == "" {
		return nil, errors.New("name, email, password, and role are required")
	}
	if !models.ValidRole(input.Role) {
		return nil, errors.New("role must be student or instructor")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	row, err := s.DB.CreateUser(ctx, database.CreateUserParams{
		ID:       uuid.New(),
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
		Role:     input.Role,
	})
	if err != nil {
		// unique constraint on email - the database is the authority on
		// duplicates, no racy pre-check needed
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user := userFromRow(row)
	return &user, nil
}

// Login verifies credentials and returns a signed token
func (s *UserService) Login(ctx context.Context, input models.LoginInput) (string, error) {
	if input.Email == "" || input.Password == "" {
		return "", errors.New("email and password are required")
	}

	row, err := s.DB.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// same outcome as a wrong password - don't leak which emails exist
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("error retrieving user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.Password), []byte(input.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	signed, err := s.Tokens.Issue(row.ID, row.Role, row.Name)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return signed, nil
}

// Profile returns the user record for an authenticated identity
func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	row, err := s.DB.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	user := userFromRow(row)
	return &user, nil
}

func userFromRow(row database.User) models.User {
	return models.User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Role:      row.Role,
		Password:  row.Password, // json:"-" keeps this out of responses
		CreatedAt: row.CreatedAt,
	}
}
