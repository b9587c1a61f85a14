package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/NeroQue/course-marketplace-backend/internal/api"
	"github.com/NeroQue/course-marketplace-backend/internal/database"
	"github.com/NeroQue/course-marketplace-backend/pkg/cache"
	"github.com/NeroQue/course-marketplace-backend/pkg/token"
	"github.com/NeroQue/course-marketplace-backend/pkg/util"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// how long a login token stays valid
const tokenTTL = time.Hour

// main entry point - sets up everything and starts the server
func main() {
	// load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Failed to load .env file: %s\n", err)
		// not a big deal - Docker will set these anyway
	}

	dbURL := os.Getenv("DB_URL")

	// token manager - refuses to start without a secret
	tokens, err := token.NewManager(os.Getenv("JWT_SECRET"), tokenTTL)
	if err != nil {
		log.Fatalf("JWT_SECRET must be set: %s\n", err)
	}

	// make sure lesson media has somewhere to go
	uploadsDir := util.GetUploadsDirectory()
	if !util.EnsureDirectoryExists(uploadsDir) {
		log.Printf("Warning: uploads directory %s not writable\n", uploadsDir)
		log.Println("Lesson video uploads may be limited")
	} else {
		log.Printf("Uploads directory configured: %s\n", uploadsDir)
	}

	// connect to postgres
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %s\n", err)
		return
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Database not reachable: %s\n", err)
	}

	// catalog cache - constructed once here, injected everywhere,
	// closed on the way out
	catalogCache := cache.NewMemoryCache(10 * time.Minute)
	defer catalogCache.Close()

	// wire everything together
	server := api.NewServer(database.New(db), catalogCache, tokens)
	handler := server.EnableCORS(server) // needed for frontend requests

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Println("Starting server on :" + port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Could not start server: %s\n", err)
	}
}
