package env

import (
	"os"

	"github.com/joho/godotenv"
)

// candidate locations of the .env file, relative to the working directory
var envFiles = []string{
	".env",          // Current directory
	"../../.env",    // From cmd/identitysync to project root
	"../../../.env", // Fallback for deeper nesting
}

// SetupEnvFile loads the first .env file found into the process environment.
// Variables already set in the environment win. It returns the loaded path,
// or "" when no file exists (the normal case in containers).
func SetupEnvFile() string {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err == nil {
			return envFile
		}
	}
	return ""
}
