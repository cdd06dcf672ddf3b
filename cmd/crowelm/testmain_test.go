package main

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain loads .env so binary-exec tests see the same variables the
// CLI itself would. A missing file is fine; CI runs without one.
func TestMain(m *testing.M) {
	_ = godotenv.Load()
	os.Exit(m.Run())
}
