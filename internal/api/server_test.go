package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/NeroQue/course-marketplace-backend/internal/api/handlers"
	"github.com/NeroQue/course-marketplace-backend/internal/database/databasetest"
	"github.com/NeroQue/course-marketplace-backend/internal/models"
	"github.com/NeroQue/course-marketplace-backend/pkg/cache"
	"github.com/NeroQue/course-marketplace-backend/pkg/token"
	"github.com/google/uuid"
)

// newTestServer wires a full server against the in-memory store so the
// whole stack (NewServer wiring, routing, middleware, handlers,
// services, cache) runs in one process
func newTestServer(t *testing.T) (*Server, *databasetest.Store) {
	t.Helper()

	store := databasetest.NewStore()
	catalogCache := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { catalogCache.Close() })

	tokens, err := token.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	return NewServer(store, catalogCache, tokens), store
}

func issueToken(t *testing.T, s *Server, userID uuid.UUID, role, name string) string {
	t.Helper()
	signed, err := s.Tokens.Issue(userID, role, name)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	return signed
}

// doJSON fires a request at the server and decodes the JSON response
// into out (when out is non-nil)
func doJSON(t *testing.T, s *Server, method, path, bearer string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if out != nil && rec.Code < 400 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: response is not valid JSON: %v\nbody: %s", method, path, err, rec.Body.String())
		}
	}
	return rec
}

func createCourseHTTP(t *testing.T, s *Server, bearer, title string) *models.Course {
	t.Helper()
	var resp handlers.CourseResponse
	rec := doJSON(t, s, http.MethodPost, "/api/courses", bearer, models.CreateCourseInput{
		Title:       title,
		Description: "desc",
		Category:    "programming",
	}, &resp)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/courses = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	return resp.Data
}

func listCoursesHTTP(t *testing.T, s *Server) []*models.Course {
	t.Helper()
	rec := doJSON(t, s, http.MethodGet, "/api/courses", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/courses = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var courses []*models.Course
	if err := json.Unmarshal(rec.Body.Bytes(), &courses); err != nil {
		t.Fatalf("listing is not a JSON array: %v\nbody: %s", err, rec.Body.String())
	}
	return courses
}

func TestListCoursesIsPublic(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/courses", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/courses without a token = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}

func TestCreateCourseRequiresToken(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/courses", "", models.CreateCourseInput{Title: "t"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/courses", "garbage-token", models.CreateCourseInput{Title: "t"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token = %d, want 401", rec.Code)
	}
}

func TestCreateCourseRequiresInstructorRole(t *testing.T) {
	s, _ := newTestServer(t)
	student := issueToken(t, s, uuid.New(), models.RoleStudent, "Stu")

	rec := doJSON(t, s, http.MethodPost, "/api/courses", student, models.CreateCourseInput{
		Title: "t", Description: "d", Category: "c",
	}, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("student creating a course = %d, want 403", rec.Code)
	}
}

func TestCreateCourseValidatesBody(t *testing.T) {
	s, _ := newTestServer(t)
	instructor := issueToken(t, s, uuid.New(), models.RoleInstructor, "Ada")

	rec := doJSON(t, s, http.MethodPost, "/api/courses", instructor, models.CreateCourseInput{
		Title: "only a title",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing fields = %d, want 400", rec.Code)
	}
}

func TestCourseLifecycleKeepsListingFresh(t *testing.T) {
	s, _ := newTestServer(t)
	instructorID := uuid.New()
	instructor := issueToken(t, s, instructorID, models.RoleInstructor, "Ada")

	course := createCourseHTTP(t, s, instructor, "Go Basics")

	// listing reflects the create immediately
	listing := listCoursesHTTP(t, s)
	if len(listing) != 1 || listing[0].Title != "Go Basics" {
		t.Fatalf("listing after create = %+v, want the new course", listing)
	}

	// update busts the cache, so the next read shows the new title
	var updated handlers.CourseResponse
	rec := doJSON(t, s, http.MethodPut, "/api/courses/"+course.ID.String(), instructor,
		models.UpdateCourseInput{Title: strPtr("Go Basics, 2nd ed")}, &updated)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT course = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	listing = listCoursesHTTP(t, s)
	if listing[0].Title != "Go Basics, 2nd ed" {
		t.Errorf("listing after update shows %q, want the new title", listing[0].Title)
	}

	// delete empties the listing
	rec = doJSON(t, s, http.MethodDelete, "/api/courses/"+course.ID.String(), instructor, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE course = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if listing = listCoursesHTTP(t, s); len(listing) != 0 {
		t.Errorf("listing after delete has %d courses, want 0", len(listing))
	}
}

func TestLikesAreServedStaleFromListing(t *testing.T) {
	s, store := newTestServer(t)
	instructor := issueToken(t, s, uuid.New(), models.RoleInstructor, "Ada")
	likerID := uuid.New()
	liker := issueToken(t, s, likerID, models.RoleStudent, "Stu")

	course := createCourseHTTP(t, s, instructor, "likeable")
	listCoursesHTTP(t, s) // warm the cache
	scansBefore := store.ListCoursesCalls

	var likes handlers.LikesResponse
	rec := doJSON(t, s, http.MethodPost, "/api/courses/"+course.ID.String()+"/like", liker, nil, &likes)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST like = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(likes.Likes) != 1 || likes.Likes[0] != likerID {
		t.Fatalf("like response = %v, want [%s]", likes.Likes, likerID)
	}

	// the cached listing doesn't know about the like yet, and serving it
	// didn't touch the store
	listing := listCoursesHTTP(t, s)
	if len(listing[0].Likes) != 0 {
		t.Errorf("cached listing reflects the like: %v", listing[0].Likes)
	}
	if store.ListCoursesCalls != scansBefore {
		t.Errorf("like busted the cache: %d scans, want %d", store.ListCoursesCalls, scansBefore)
	}

	// the single-course read bypasses the cache and sees it
	var got handlers.CourseResponse
	rec = doJSON(t, s, http.MethodGet, "/api/courses/"+course.ID.String(), "", nil, &got)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET course = %d, want 200", rec.Code)
	}
	if len(got.Data.Likes) != 1 {
		t.Errorf("single-course read shows %d likes, want 1", len(got.Data.Likes))
	}
}

func TestNonOwnerCannotModifyCourse(t *testing.T) {
	s, _ := newTestServer(t)
	owner := issueToken(t, s, uuid.New(), models.RoleInstructor, "Ada")
	rival := issueToken(t, s, uuid.New(), models.RoleInstructor, "Eve")

	course := createCourseHTTP(t, s, owner, "mine")

	rec := doJSON(t, s, http.MethodDelete, "/api/courses/"+course.ID.String(), rival, nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("rival delete = %d, want 403", rec.Code)
	}
	rec = doJSON(t, s, http.MethodPut, "/api/courses/"+course.ID.String(), rival,
		models.UpdateCourseInput{Title: strPtr("stolen")}, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("rival update = %d, want 403", rec.Code)
	}

	// the course survived both attempts, untouched
	var got handlers.CourseResponse
	rec = doJSON(t, s, http.MethodGet, "/api/courses/"+course.ID.String(), "", nil, &got)
	if rec.Code != http.StatusOK || got.Data.Title != "mine" {
		t.Errorf("course after rejected edits = %d %q, want 200 %q", rec.Code, got.Data.Title, "mine")
	}
}

func TestMalformedAndMissingCourseIDs(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/courses/not-a-uuid", "", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id = %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/courses/"+uuid.New().String(), "", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id = %d, want 404", rec.Code)
	}
}

func TestCommentEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	instructor := issueToken(t, s, uuid.New(), models.RoleInstructor, "Ada")
	commenter := issueToken(t, s, uuid.New(), models.RoleStudent, "Stu")

	course := createCourseHTTP(t, s, instructor, "course")

	var resp handlers.CommentResponse
	rec := doJSON(t, s, http.MethodPost, "/api/courses/"+course.ID.String()+"/comment", commenter,
		models.CreateCommentInput{Text: "nice one"}, &resp)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST comment = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	// author name comes from the token, not the body
	if resp.Comment.AuthorName != "Stu" || resp.Comment.Text != "nice one" {
		t.Errorf("comment = (%q, %q), want (Stu, nice one)", resp.Comment.AuthorName, resp.Comment.Text)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/courses/"+course.ID.String()+"/comment", commenter,
		models.CreateCommentInput{Text: "   "}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank comment = %d, want 400", rec.Code)
	}
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	s, _ := newTestServer(t)

	var registered handlers.RegisterResponse
	rec := doJSON(t, s, http.MethodPost, "/api/users/register", "", models.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2",
		Role:     models.RoleInstructor,
	}, &registered)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("hunter2")) {
		t.Fatal("register response leaks the password")
	}

	// duplicate email is rejected
	rec = doJSON(t, s, http.MethodPost, "/api/users/register", "", models.RegisterInput{
		Name: "Imposter", Email: "ada@example.com", Password: "other", Role: models.RoleStudent,
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register = %d, want 400", rec.Code)
	}

	var login handlers.LoginResponse
	rec = doJSON(t, s, http.MethodPost, "/api/users/login", "", models.LoginInput{
		Email: "ada@example.com", Password: "hunter2",
	}, &login)
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, "/api/users/login", "", models.LoginInput{
		Email: "ada@example.com", Password: "wrong",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password login = %d, want 401", rec.Code)
	}

	// the issued token works against the protected profile endpoint
	var profile handlers.ProfileResponse
	rec = doJSON(t, s, http.MethodGet, "/api/users/profile", login.Token, nil, &profile)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if profile.User.Email != "ada@example.com" || profile.User.ID != registered.User.ID {
		t.Errorf("profile = %+v, want the registered user", profile.User)
	}
}

func TestEnrollmentFlow(t *testing.T) {
	s, _ := newTestServer(t)
	instructor := issueToken(t, s, uuid.New(), models.RoleInstructor, "Ada")
	student := issueToken(t, s, uuid.New(), models.RoleStudent, "Stu")

	course := createCourseHTTP(t, s, instructor, "course")
	enrollPath := "/api/enroll/" + course.ID.String()

	// instructors can't enroll
	if rec := doJSON(t, s, http.MethodPost, enrollPath, instructor, nil, nil); rec.Code != http.StatusForbidden {
		t.Errorf("instructor enroll = %d, want 403", rec.Code)
	}

	if rec := doJSON(t, s, http.MethodPost, enrollPath, student, nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("enroll = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, s, http.MethodPost, enrollPath, student, nil, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("double enroll = %d, want 400", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodPost, "/api/enroll/"+uuid.New().String(), student, nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("enroll in unknown course = %d, want 404", rec.Code)
	}

	var enrolled handlers.EnrolledCoursesResponse
	rec := doJSON(t, s, http.MethodGet, "/api/enroll/my-courses", student, nil, &enrolled)
	if rec.Code != http.StatusOK {
		t.Fatalf("my-courses = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(enrolled.Data) != 1 || enrolled.Data[0].ID != course.ID {
		t.Errorf("enrolled courses = %+v, want just %s", enrolled.Data, course.ID)
	}
}

func TestInstructorMyCoursesWithCounts(t *testing.T) {
	s, _ := newTestServer(t)
	instructorID := uuid.New()
	instructor := issueToken(t, s, instructorID, models.RoleInstructor, "Ada")

	course := createCourseHTTP(t, s, instructor, "popular")
	for i := 0; i < 2; i++ {
		student := issueToken(t, s, uuid.New(), models.RoleStudent, fmt.Sprintf("Stu%d", i))
		if rec := doJSON(t, s, http.MethodPost, "/api/enroll/"+course.ID.String(), student, nil, nil); rec.Code != http.StatusOK {
			t.Fatalf("enroll = %d, want 200", rec.Code)
		}
	}

	var resp handlers.InstructorCoursesResponse
	rec := doJSON(t, s, http.MethodGet, "/api/courses/my-courses", instructor, nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET my-courses = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(resp.Data) != 1 {
		t.Fatalf("instructor sees %d courses, want 1", len(resp.Data))
	}
	if resp.Data[0].EnrollmentCount != 2 {
		t.Errorf("enrollment count = %d, want 2", resp.Data[0].EnrollmentCount)
	}
}

func TestRejectedLessonUploadLeavesNoFile(t *testing.T) {
	uploadsDir := t.TempDir()
	t.Setenv("INTERNAL_UPLOADS_DIR", uploadsDir)

	s, _ := newTestServer(t)
	owner := issueToken(t, s, uuid.New(), models.RoleInstructor, "Ada")
	rival := issueToken(t, s, uuid.New(), models.RoleInstructor, "Eve")

	course := createCourseHTTP(t, s, owner, "mine")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("title", "intro"); err != nil {
		t.Fatalf("WriteField failed: %v", err)
	}
	part, err := mw.CreateFormFile("video", "clip.mp4")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write([]byte("not really a video"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/courses/"+course.ID.String()+"/lessons", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+rival)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("rival lesson upload = %d, want 403: %s", rec.Code, rec.Body.String())
	}

	// the rejected upload must not leave the video behind
	entries, err := os.ReadDir(uploadsDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("uploads dir has %d orphaned files after a rejected upload", len(entries))
	}
}

func TestUnknownJSONFieldsAreRejected(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "hunter2",
		"remember": "true",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("body with unknown field = %d, want 400", rec.Code)
	}
}

func TestServeLessonVideo(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/uploads/"+uuid.New().String()+".mp4", "", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing media file = %d, want 404", rec.Code)
	}
}

func strPtr(s string) *string { return &s }
