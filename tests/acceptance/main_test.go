package acceptance

import (
	"os"
	"path/filepath"
	"testing"
)

// binaryPath is the findskill binary under test, overridable with FINDSKILL_BIN
var binaryPath = "../../bin/findskill"

// TestMain runs setup and teardown for acceptance tests
func TestMain(m *testing.M) {
	if bin := os.Getenv("FINDSKILL_BIN"); bin != "" {
		binaryPath = bin
	}
	if abs, err := filepath.Abs(binaryPath); err == nil {
		binaryPath = abs
	}
	code := m.Run()
	os.Exit(code)
}

func requireBinary(t *testing.T) {
	t.Helper()
	if _, err := os.Stat(binaryPath); err != nil {
		t.Skipf("findskill binary not found at %s, run go build -o bin/findskill ./cmd/findskill first", binaryPath)
	}
}
