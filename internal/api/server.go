package api

import (
	"encoding/json"
	"net/http"

	"github.com/NeroQue/course-marketplace-backend/internal/api/handlers"
	"github.com/NeroQue/course-marketplace-backend/internal/models"
	"github.com/NeroQue/course-marketplace-backend/internal/services"
	"github.com/NeroQue/course-marketplace-backend/pkg/cache"
	"github.com/NeroQue/course-marketplace-backend/pkg/token"
)

// Store is everything the services need from the data layer.
// *database.Queries satisfies it in production; tests plug in a fake.
type Store interface {
	services.CourseStore
	services.UserStore
	services.EnrollmentStore
}

// Server holds all the app components together
type Server struct {
	Router *http.ServeMux // handles routing requests

	Tokens *token.Manager // verifies bearer tokens in middleware

	// handlers for different parts of the API
	CourseHandler     *handlers.CourseHandler
	UserHandler       *handlers.UserHandler
	EnrollmentHandler *handlers.EnrollmentHandler
}

// NewServer wires up all the dependencies and returns a ready-to-use
// server. The store and catalog cache are constructed by the caller and
// injected so their lifecycles (and their failures) stay out of the
// request path.
func NewServer(store Store, catalogCache cache.Cache, tokens *token.Manager) *Server {
	// create service layer instances
	courseSvc := services.NewCourseService(store, catalogCache)
	userSvc := services.NewUserService(store, tokens)
	enrollmentSvc := services.NewEnrollmentService(store)

	// wire everything together
	server := &Server{
		Router:            http.NewServeMux(),
		Tokens:            tokens,
		CourseHandler:     handlers.NewCourseHandler(courseSvc),
		UserHandler:       handlers.NewUserHandler(userSvc),
		EnrollmentHandler: handlers.NewEnrollmentHandler(enrollmentSvc),
	}

	server.setupRoutes()
	return server
}

// setupRoutes maps all the endpoints to handler functions
func (s *Server) setupRoutes() {
	s.Router.HandleFunc("/api", s.HelloHandler)

	// accounts
	s.Router.HandleFunc("POST /api/users/register", s.UserHandler.Register)
	s.Router.HandleFunc("POST /api/users/login", s.UserHandler.Login)
	s.Router.HandleFunc("GET /api/users/profile", s.Authenticate(s.UserHandler.Profile))

	// course catalog
	s.Router.HandleFunc("GET /api/courses", s.CourseHandler.List)
	s.Router.HandleFunc("POST /api/courses", s.RequireRole(models.RoleInstructor, s.CourseHandler.Create))
	// my-courses must be registered alongside {id} - the more specific
	// literal pattern wins in the mux
	s.Router.HandleFunc("GET /api/courses/my-courses", s.RequireRole(models.RoleInstructor, s.CourseHandler.MyCourses))
	s.Router.HandleFunc("GET /api/courses/{id}", s.CourseHandler.Get)
	s.Router.HandleFunc("PUT /api/courses/{id}", s.RequireRole(models.RoleInstructor, s.CourseHandler.Update))
	s.Router.HandleFunc("DELETE /api/courses/{id}", s.RequireRole(models.RoleInstructor, s.CourseHandler.Delete))

	// course interactions
	s.Router.HandleFunc("POST /api/courses/{id}/like", s.Authenticate(s.CourseHandler.ToggleLike))
	s.Router.HandleFunc("POST /api/courses/{id}/comment", s.Authenticate(s.CourseHandler.AddComment))
	s.Router.HandleFunc("POST /api/courses/{id}/lessons", s.RequireRole(models.RoleInstructor, s.CourseHandler.AddLesson))
	s.Router.HandleFunc("GET /api/uploads/{file}", s.CourseHandler.ServeLessonVideo)

	// enrollments
	s.Router.HandleFunc("POST /api/enroll/{courseId}", s.RequireRole(models.RoleStudent, s.EnrollmentHandler.Enroll))
	s.Router.HandleFunc("GET /api/enroll/my-courses", s.RequireRole(models.RoleStudent, s.EnrollmentHandler.MyCourses))
}

// ServeHTTP implements the http.Handler interface
// This allows the server to be used directly with http.ListenAndServe
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Delegate to the router
	s.Router.ServeHTTP(w, r)
}

// HelloHandler is a simple handler for the base API endpoint
// This is kept at the server level as it doesn't require business logic
func (s *Server) HelloHandler(w http.ResponseWriter, r *http.Request) {
	type responseData struct {
		Message string `json:"message"`
	}

	response := responseData{Message: "Hello from the course marketplace API!"}
	jsonResponse, _ := json.Marshal(response)
	w.Header().Set("Content-Type", "application/json")
	w.Write(jsonResponse)
}
