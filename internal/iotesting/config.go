// Package iotesting provides shared test utilities for integration
// tests. This is an internal package for test infrastructure only.
package iotesting

import (
	"os"
	"testing"

	"github.com/comparadb/comparasub/pkg/config"
)

// DestName is the destination schema name used by server-engine
// integration tests, so tests never touch a production schema.
const DestName = "compara_subset_test"

// TestConfig returns a configuration suitable for hermetic tests: the
// sqlite engine and defaults everywhere else. Callers fill in the
// per-run paths.
func TestConfig() *config.Config {
	cfg := config.New()
	cfg.Database.Engine = config.EngineSQLite
	return cfg
}

// SetupTempConfigDir points COMPARASUB_CONFIG_DIR at a fresh temporary
// directory so tests cannot touch the real config under ~/.config.
// The override and the directory are undone when the test finishes.
func SetupTempConfigDir(t *testing.T) string {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "comparasub-test-config-*")
	if err != nil {
		t.Fatalf("Failed to create temp config dir: %v", err)
	}

	orig := os.Getenv("COMPARASUB_CONFIG_DIR")
	if err = os.Setenv("COMPARASUB_CONFIG_DIR", tempDir); err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to set COMPARASUB_CONFIG_DIR: %v", err)
	}

	t.Cleanup(func() {
		if orig != "" {
			os.Setenv("COMPARASUB_CONFIG_DIR", orig)
		} else {
			os.Unsetenv("COMPARASUB_CONFIG_DIR")
		}
		os.RemoveAll(tempDir)
	})

	return tempDir
}
