package config

import (
	"os"
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "comparasub"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/comparasub by default; the COMPARASUB_CONFIG_DIR
// environment variable overrides it, which keeps tests away from the
// real directory.
func ConfigDir(homeDir string) string {
	if dir := os.Getenv("COMPARASUB_CONFIG_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for scratch files.
// Returns ~/.cache/comparasub by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/comparasub/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/comparasub/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}
