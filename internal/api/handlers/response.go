package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/NeroQue/course-marketplace-backend/internal/services"
)

// Common response structures for consistency across all handlers
type ErrorResponse struct {
	Error string `json:"error"`
}

// Helper functions for consistent response handling

// SendErrorResponse sends a consistent error response with logging
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, logMessage string, err error) {
	// Log the detailed error; the client only sees the sanitized message
	if err != nil {
		log.Printf("%s: %v", logMessage, err)
	} else {
		log.Printf("%s", logMessage)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Error: message}
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		log.Printf("Failed to encode error response: %v", encodeErr)
	}
}

// SendJSONResponse sends data as JSON with the given status code
func SendJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// SendServiceError maps service-layer sentinel errors to HTTP statuses.
// Unrecognized errors become a generic 500 so internals never leak.
func SendServiceError(w http.ResponseWriter, err error, logPrefix string) {
	switch {
	case errors.Is(err, services.ErrCourseNotFound):
		SendErrorResponse(w, "Course not found", http.StatusNotFound, logPrefix, err)
	case errors.Is(err, services.ErrUserNotFound):
		SendErrorResponse(w, "User not found", http.StatusNotFound, logPrefix, err)
	case errors.Is(err, services.ErrNotOwner):
		SendErrorResponse(w, "Forbidden: you can only modify your own courses", http.StatusForbidden, logPrefix, err)
	case errors.Is(err, services.ErrInvalidCredentials):
		SendErrorResponse(w, "Invalid email or password", http.StatusUnauthorized, logPrefix, err)
	case errors.Is(err, services.ErrDuplicateEmail):
		SendErrorResponse(w, "User already exists", http.StatusBadRequest, logPrefix, err)
	case errors.Is(err, services.ErrAlreadyEnrolled):
		SendErrorResponse(w, "You are already enrolled in this course", http.StatusBadRequest, logPrefix, err)
	default:
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, logPrefix, err)
	}
}

// ValidateJSONBody validates and decodes JSON request body
func ValidateJSONBody(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return &ValidationError{Message: "Request body is required"}
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields() // Strict validation
	if err := decoder.Decode(dest); err != nil {
		return &ValidationError{Message: "Invalid JSON format: " + err.Error()}
	}

	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
