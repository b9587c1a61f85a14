package handlers

import (
	"net/http"
	"strings"

	"github.com/NeroQue/course-marketplace-backend/internal/models"
	"github.com/NeroQue/course-marketplace-backend/internal/services"
	"github.com/NeroQue/course-marketplace-backend/pkg/token"
)

// Response structs for user endpoints
type RegisterResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type ProfileResponse struct {
	User *models.User `json:"user"`
}

// UserHandler processes account-related HTTP requests
type UserHandler struct {
	Service *services.UserService
}

// NewUserHandler creates handler with injected service
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

// Register handles POST /api/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterInput
	if err := ValidateJSONBody(r, &input); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, "Invalid register body", err)
		return
	}

	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" ||
		input.Password == "" || input.Role == "" {
		SendErrorResponse(w, "All fields are required", http.StatusBadRequest, "Registration validation failed", nil)
		return
	}
	if !models.ValidRole(input.Role) {
		SendErrorResponse(w, "Role must be student or instructor", http.StatusBadRequest, "Registration validation failed", nil)
		return
	}

	user, err := h.Service.Register(r.Context(), input)
	if err != nil {
		SendServiceError(w, err, "Error registering user")
		return
	}

	SendJSONResponse(w, http.StatusCreated, RegisterResponse{
		Message: "User registered successfully",
		User:    user,
	})
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.LoginInput
	if err := ValidateJSONBody(r, &input); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, "Invalid login body", err)
		return
	}

	if input.Email == "" || input.Password == "" {
		SendErrorResponse(w, "Email and password are required", http.StatusBadRequest, "Login validation failed", nil)
		return
	}

	signed, err := h.Service.Login(r.Context(), input)
	if err != nil {
		SendServiceError(w, err, "Login failed")
		return
	}

	SendJSONResponse(w, http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   signed,
	})
}

// Profile handles GET /api/users/profile - returns the authenticated user
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, "Profile without identity", nil)
		return
	}

	user, err := h.Service.Profile(r.Context(), claims.UserID)
	if err != nil {
		SendServiceError(w, err, "Error retrieving profile")
		return
	}

	SendJSONResponse(w, http.StatusOK, ProfileResponse{User: user})
}
