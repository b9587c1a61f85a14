package util

import (
	"os"
	"path/filepath"
)

// GetUploadsDirectory figures out where lesson media gets stored
func GetUploadsDirectory() string {
	// check container env var first
	uploadsDir := os.Getenv("INTERNAL_UPLOADS_DIR")
	if uploadsDir != "" {
		return uploadsDir
	}

	// fallback to local dev env var
	uploadsDir = os.Getenv("UPLOADS_DIR")
	if uploadsDir == "" {
		// last resort - uploads under the current directory
		uploadsDir = "uploads"
	}

	return uploadsDir
}

// EnsureDirectoryExists creates directory if it doesn't exist
func EnsureDirectoryExists(path string) bool {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// try to create it
		err = os.MkdirAll(path, 0755)
		if err != nil {
			return false
		}
	}
	return true
}

// ResolveUploadFilePath converts a stored relative path to an absolute
// path under the uploads directory
func ResolveUploadFilePath(relativePath string) string {
	baseDir := GetUploadsDirectory()
	return filepath.Join(baseDir, relativePath)
}
