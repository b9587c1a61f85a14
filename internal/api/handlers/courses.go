package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/NeroQue/course-marketplace-backend/internal/models"
	"github.com/NeroQue/course-marketplace-backend/internal/services"
	"github.com/NeroQue/course-marketplace-backend/pkg/token"
	"github.com/NeroQue/course-marketplace-backend/pkg/util"
	"github.com/google/uuid"
)

// multipart lesson uploads are capped at 128 MiB in memory+disk
const maxLessonUploadBytes = 128 << 20

// Response structs for course endpoints
type CourseResponse struct {
	Message string         `json:"message"`
	Data    *models.Course `json:"data"`
}

type CourseDeleteResponse struct {
	Message string `json:"message"`
}

type LikesResponse struct {
	Message string      `json:"message"`
	Likes   []uuid.UUID `json:"likes"`
}

type CommentResponse struct {
	Message string          `json:"message"`
	Comment *models.Comment `json:"comment"`
}

type LessonResponse struct {
	Message string         `json:"message"`
	Lesson  *models.Lesson `json:"lesson"`
}

type InstructorCoursesResponse struct {
	Message string                        `json:"message"`
	Data    []models.CourseWithEnrollment `json:"data"`
}

// CourseHandler processes course-related HTTP requests
type CourseHandler struct {
	Service *services.CourseService // handles all course business logic
}

// NewCourseHandler creates handler with injected service
func NewCourseHandler(service *services.CourseService) *CourseHandler {
	return &CourseHandler{Service: service}
}

// List handles GET /api/courses - the cached catalog read path.
// The service hands back the listing already serialized (either the
// cached snapshot or a fresh one), so we write it through as-is.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Service.ListCourses(r.Context())
	if err != nil {
		SendServiceError(w, err, "Error retrieving courses")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(snapshot)
}

// Create handles POST /api/courses - instructor publishes a new course
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, "Create course without identity", nil)
		return
	}

	var input models.CreateCourseInput
	if err := ValidateJSONBody(r, &input); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, "Invalid create course body", err)
		return
	}

	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.Description) == "" ||
		strings.TrimSpace(input.Category) == "" {
		SendErrorResponse(w, "Title, description, and category are required", http.StatusBadRequest, "Create course validation failed", nil)
		return
	}

	course, err := h.Service.CreateCourse(r.Context(), claims.UserID, input)
	if err != nil {
		SendServiceError(w, err, "Error creating course")
		return
	}

	SendJSONResponse(w, http.StatusCreated, CourseResponse{
		Message: "Course created successfully",
		Data:    course,
	})
}

// Get handles GET /api/courses/{id} - direct store lookup, bypasses cache
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	course, err := h.Service.GetCourse(r.Context(), courseID)
	if err != nil {
		SendServiceError(w, err, "Error retrieving course")
		return
	}

	SendJSONResponse(w, http.StatusOK, CourseResponse{
		Message: "Course retrieved successfully",
		Data:    course,
	})
}

// Update handles PUT /api/courses/{id} - owner edits listing fields
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, "Update course without identity", nil)
		return
	}

	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	var input models.UpdateCourseInput
	if err := ValidateJSONBody(r, &input); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, "Invalid update course body", err)
		return
	}

	course, err := h.Service.UpdateCourse(r.Context(), courseID, claims.UserID, input)
	if err != nil {
		SendServiceError(w, err, "Error updating course")
		return
	}

	SendJSONResponse(w, http.StatusOK, CourseResponse{
		Message: "Course updated successfully",
		Data:    course,
	})
}

// Delete handles DELETE /api/courses/{id} - owner removes the course
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, "Delete course without identity", nil)
		return
	}

	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteCourse(r.Context(), courseID, claims.UserID); err != nil {
		SendServiceError(w, err, "Error deleting course")
		return
	}

	SendJSONResponse(w, http.StatusOK, CourseDeleteResponse{
		Message: "Course deleted successfully",
	})
}

// ToggleLike handles POST /api/courses/{id}/like - like or unlike.
// Deliberately does not touch the catalog cache.
func (h *CourseHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, "Toggle like without identity", nil)
		return
	}

	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	likes, err := h.Service.ToggleLike(r.Context(), courseID, claims.UserID)
	if err != nil {
		SendServiceError(w, err, "Error toggling like")
		return
	}

	SendJSONResponse(w, http.StatusOK, LikesResponse{
		Message: "Like status updated",
		Likes:   likes,
	})
}

// AddComment handles POST /api/courses/{id}/comment
func (h *CourseHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, "Add comment without identity", nil)
		return
	}

	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	var input models.CreateCommentInput
	if err := ValidateJSONBody(r, &input); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, "Invalid comment body", err)
		return
	}
	if strings.TrimSpace(input.Text) == "" {
		SendErrorResponse(w, "Comment text is required", http.StatusBadRequest, "Comment validation failed", nil)
		return
	}

	comment, err := h.Service.AddComment(r.Context(), courseID, claims.UserID, claims.Name, input.Text)
	if err != nil {
		SendServiceError(w, err, "Error adding comment")
		return
	}

	SendJSONResponse(w, http.StatusCreated, CommentResponse{
		Message: "Comment added successfully",
		Comment: comment,
	})
}

// AddLesson handles POST /api/courses/{id}/lessons - multipart body with
// a "title" field and an optional "video" file stored under the uploads dir
func (h *CourseHandler) AddLesson(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, "Add lesson without identity", nil)
		return
	}

	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxLessonUploadBytes); err != nil {
		SendErrorResponse(w, "Invalid multipart body", http.StatusBadRequest, "Error parsing lesson upload", err)
		return
	}

	title := r.FormValue("title")
	if strings.TrimSpace(title) == "" {
		SendErrorResponse(w, "Lesson title is required", http.StatusBadRequest, "Lesson validation failed", nil)
		return
	}

	videoURL, err := saveLessonVideo(r)
	if err != nil {
		SendErrorResponse(w, "Failed to store lesson video", http.StatusInternalServerError, "Error saving lesson video", err)
		return
	}

	lesson, err := h.Service.AddLesson(r.Context(), courseID, claims.UserID, title, videoURL)
	if err != nil {
		// the video was written before the service ran its checks -
		// unlink it so rejected appends don't leave orphans behind
		removeLessonVideo(videoURL)
		SendServiceError(w, err, "Error adding lesson")
		return
	}

	SendJSONResponse(w, http.StatusCreated, LessonResponse{
		Message: "Lesson added successfully",
		Lesson:  lesson,
	})
}

// MyCourses handles GET /api/courses/my-courses - the instructor's own
// courses with per-course enrollment counts
func (h *CourseHandler) MyCourses(w http.ResponseWriter, r *http.Request) {
	claims, ok := token.FromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, "My-courses without identity", nil)
		return
	}

	courses, err := h.Service.InstructorCourses(r.Context(), claims.UserID)
	if err != nil {
		SendServiceError(w, err, "Error retrieving instructor courses")
		return
	}

	SendJSONResponse(w, http.StatusOK, InstructorCoursesResponse{
		Message: "Courses retrieved successfully",
		Data:    courses,
	})
}

// removeLessonVideo unlinks a stored video after its lesson was rejected
func removeLessonVideo(videoURL string) {
	if videoURL == "" {
		return
	}
	if err := os.Remove(util.ResolveUploadFilePath(videoURL)); err != nil {
		log.Printf("Failed to remove orphaned lesson video %s: %v", videoURL, err)
	}
}

// ServeLessonVideo handles GET /api/uploads/{file} - streams stored
// lesson media back to enrolled players
func (h *CourseHandler) ServeLessonVideo(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	// only bare file names - anything with a path separator is suspect
	if name == "" || name != filepath.Base(name) {
		SendErrorResponse(w, "Invalid file name", http.StatusBadRequest, "Malformed upload file name", nil)
		return
	}
	http.ServeFile(w, r, util.ResolveUploadFilePath(name))
}

// parseCourseID pulls the {id} path value and rejects malformed ids
// before the store ever sees them
func parseCourseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	courseID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		SendErrorResponse(w, "Invalid course ID format", http.StatusBadRequest, "Malformed course ID", err)
		return uuid.Nil, false
	}
	return courseID, true
}

// saveLessonVideo writes the optional "video" part to the uploads
// directory under a fresh name and returns the stored relative path.
// Returns "" when no video was attached.
func saveLessonVideo(r *http.Request) (string, error) {
	file, header, err := r.FormFile("video")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	uploadsDir := util.GetUploadsDirectory()
	if !util.EnsureDirectoryExists(uploadsDir) {
		return "", errors.New("uploads directory not writable: " + uploadsDir)
	}

	// random name so one upload can't clobber another
	name := uuid.New().String() + filepath.Ext(header.Filename)

	dst, err := os.Create(filepath.Join(uploadsDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return name, nil
}
