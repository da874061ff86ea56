package utils

import (
	"path/filepath"
	"strings"

	"github.com/funvibe/caselower/internal/config"
)

// HasFixtureExt reports whether path ends in a fixture extension.
func HasFixtureExt(path string) bool {
	for _, ext := range config.FixtureFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimFixtureExt removes a recognized fixture extension.
func TrimFixtureExt(name string) string {
	for _, ext := range config.FixtureFileExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// FixtureName derives a fixture name from a file path.
// It takes the base filename and removes any recognized fixture extension.
func FixtureName(path string) string {
	return TrimFixtureExt(filepath.Base(path))
}

// IsConfigFile reports whether the base name of path is the naming
// configuration rather than a fixture.
func IsConfigFile(path string) bool {
	name := filepath.Base(path)
	return name == config.ConfigFileName || name == config.ConfigFileAltName
}

// GetProjectDir returns the directory context for a fixture path.
// If the path points to a fixture file, returns the file's directory.
// If the path points to a directory, returns the path itself.
func GetProjectDir(path string) string {
	if HasFixtureExt(path) {
		return filepath.Dir(path)
	}
	return path
}
