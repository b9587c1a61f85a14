package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NeroQue/course-marketplace-backend/internal/database/databasetest"
	"github.com/NeroQue/course-marketplace-backend/internal/models"
	"github.com/NeroQue/course-marketplace-backend/pkg/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) (*UserService, *databasetest.Store) {
	t.Helper()
	store := databasetest.NewStore()
	tokens, err := token.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return NewUserService(store, tokens), store
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, store := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2",
		Role:     models.RoleInstructor,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Role != models.RoleInstructor {
		t.Errorf("Role = %q, want %q", user.Role, models.RoleInstructor)
	}

	// what hit the store is a bcrypt hash, never the plaintext
	row, err := store.GetUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("stored user not found: %v", err)
	}
	if row.Password == "hunter2" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.Password), []byte("hunter2")); err != nil {
		t.Errorf("stored hash does not verify against the password: %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	input := models.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2",
		Role:     models.RoleStudent,
	}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	input.Name = "Other Ada"
	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input models.RegisterInput
	}{
		{"missing name", models.RegisterInput{Email: "a@b.c", Password: "x", Role: models.RoleStudent}},
		{"missing email", models.RegisterInput{Name: "A", Password: "x", Role: models.RoleStudent}},
		{"missing password", models.RegisterInput{Name: "A", Email: "a@b.c", Role: models.RoleStudent}},
		{"unknown role", models.RegisterInput{Name: "A", Email: "a@b.c", Password: "x", Role: "admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.input); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2",
		Role:     models.RoleInstructor,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	signed, err := svc.Login(ctx, models.LoginInput{Email: "ada@example.com", Password: "hunter2"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := svc.Tokens.Parse(signed)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("token UserID = %s, want %s", claims.UserID, user.ID)
	}
	if claims.Role != models.RoleInstructor || claims.Name != "Ada" {
		t.Errorf("token claims = (%q, %q), want (instructor, Ada)", claims.Role, claims.Name)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2",
		Role:     models.RoleStudent,
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// wrong password and unknown email look identical to the caller
	if _, err := svc.Login(ctx, models.LoginInput{Email: "ada@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, models.LoginInput{Email: "nobody@example.com", Password: "hunter2"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2",
		Role:     models.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := svc.Profile(ctx, user.ID)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if got.Email != "ada@example.com" || got.Name != "Ada" {
		t.Errorf("profile = (%q, %q), want (ada@example.com, Ada)", got.Email, got.Name)
	}
}

func TestProfileNotFound(t *testing.T) {
	svc, _ := newUserService(t)

	if _, err := svc.Profile(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
