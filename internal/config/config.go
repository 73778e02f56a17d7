package config

import "os"

// Get reads an environment variable with a fallback default.
// Composition roots call godotenv.Load before using this.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
