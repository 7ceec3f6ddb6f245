//go:build integration

package testdb

import "os"

// Environment variables consulted by DatabaseURL, in order.
const (
	EnvTestDatabaseURL = "TASKER_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// DatabaseURL returns the first non-empty test database URL, or "".
func DatabaseURL() string {
	for _, key := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
