// Package defaults provides embedded default files for the data directory.
// These are copied to the platform data directory on first run.
//
// Platform paths:
//
//	macOS:   ~/Library/Application Support/BrowserPilot/
//	Windows: %AppData%\BrowserPilot\
//	Linux:   ~/.config/browserpilot/
//
// Override with BROWSERPILOT_DATA_DIR environment variable.
package defaults

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

//go:embed dotpilot/*
var defaultFiles embed.FS

// ConfigFile is the user-editable config overlay in the data directory.
const ConfigFile = "config.yaml"

// DataDir returns the platform-appropriate data directory.
// Set BROWSERPILOT_DATA_DIR to override.
func DataDir() (string, error) {
	if dir := os.Getenv("BROWSERPILOT_DATA_DIR"); dir != "" {
		return dir, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}

	// Linux: lowercase per XDG convention
	if runtime.GOOS == "linux" {
		return filepath.Join(configDir, "browserpilot"), nil
	}
	return filepath.Join(configDir, "BrowserPilot"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist
// and copies default files if they're missing.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := copyDefaults(dir, false); err != nil {
		return "", err
	}

	return dir, nil
}

// Reset replaces the config files in dir with the embedded defaults.
// The database and browser profile are left alone.
func Reset(dir string) error {
	return copyDefaults(dir, true)
}

func copyDefaults(dir string, overwrite bool) error {
	return fs.WalkDir(defaultFiles, "dotpilot", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == "dotpilot" {
			return nil
		}

		// embed.FS always uses forward slashes
		relPath := strings.TrimPrefix(path, "dotpilot/")
		destPath := filepath.Join(dir, relPath)

		if d.IsDir() {
			return os.MkdirAll(destPath, 0755)
		}

		if !overwrite {
			if _, err := os.Stat(destPath); err == nil {
				return nil
			}
		}

		data, err := defaultFiles.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read embedded %s: %w", path, err)
		}
		if err := os.WriteFile(destPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", destPath, err)
		}
		return nil
	})
}
