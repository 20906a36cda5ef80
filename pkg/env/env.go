package env

import "os"

// Get returns the value of the environment variable or the fallback when it
// is unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
