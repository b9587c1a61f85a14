package handlers

import (
	"net/http"

	"github.com/NeroQue/course-marketplace-backend/internal/models"
	"github.com/NeroQue/course-marketplace-backend/internal/services"
	"github.com/NeroQue/course-marketplace-backend/pkg/token"
	"github.com/google/uuid"
)

// Response structs for enrollment endpoints
type EnrollResponse struct {
	Message string `json:"message"`
}

type EnrolledCoursesResponse struct {
	Message string           `json:"message"`
	Data    []*models.Course `json:"data"`
}

// EnrollmentHandler processes enrollment HTTP requests
type EnrollmentHandler struct {
	Service *services.EnrollmentService
}

// NewEnrollmentHandler creates handler with injected service
func NewEnrollmentHandler(service *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{Service: service}
}

// Enroll handles POST /api/enroll/{courseId} - student joins a course
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, "Enroll without identity", nil)
		return
	}

	courseID, err := uuid.Parse(r.PathValue("courseId"))
	if err != nil {
		SendErrorResponse(w, "Invalid course ID format", http.StatusBadRequest, "Malformed course ID", err)
		return
	}

	if err := h.Service.Enroll(r.Context(), claims.UserID, courseID); err != nil {
		SendServiceError(w, err, "Error enrolling in course")
		return
	}

	SendJSONResponse(w, http.StatusOK, EnrollResponse{
		Message: "Successfully enrolled in the course",
	})
}

// MyCourses handles GET /api/enroll/my-courses - the student's
// enrolled course list
func (h *EnrollmentHandler) MyCourses(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, "Enrolled courses without identity", nil)
		return
	}

	courses, err := h.Service.EnrolledCourses(r.Context(), claims.UserID)
	if err != nil {
		SendServiceError(w, err, "Error retrieving enrolled courses")
		return
	}

	SendJSONResponse(w, http.StatusOK, EnrolledCoursesResponse{
		Message: "Courses retrieved successfully",
		Data:    courses,
	})
}
