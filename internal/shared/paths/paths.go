package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AppDir is the directory name used under the user config/cache roots
const AppDir = "modxel"

// SettingsFileName is the name of the persisted server/session settings file
const SettingsFileName = "Modx.settings"

// StateFileName is the name of the workspace buffer state file
const StateFileName = "buffers.yaml"

// ConfigDir returns the per-user configuration directory
func ConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppDir)
	}
	return filepath.Join(os.TempDir(), AppDir, "config")
}

// StateDir returns the per-user directory holding workspace state
func StateDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, AppDir)
	}
	return filepath.Join(os.TempDir(), AppDir, "state")
}

// ScratchDir returns the directory that holds element scratch files
func ScratchDir() string {
	return filepath.Join(os.TempDir(), AppDir)
}

// SettingsFile returns the default settings file location
func SettingsFile() string {
	return filepath.Join(ConfigDir(), SettingsFileName)
}

// ConfigFile returns the default TOML configuration file location
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// StateFile returns the workspace state file inside dir
func StateFile(dir string) string {
	return filepath.Join(dir, StateFileName)
}

// Scratch derives the scratch path for an element name inside the group
// directory of dir. Path separators and parent references are neutralised so
// the result always stays inside dir.
func Scratch(dir, group, name string) string {
	return filepath.Join(dir, SanitizeName(group), SanitizeName(name))
}

// SanitizeName turns an element name into a single safe path component
func SanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")
	clean := strings.TrimSpace(replacer.Replace(name))
	switch clean {
	case "", ".", "..":
		return "untitled"
	}
	return clean
}

// EnsureDir creates dir and its parents when missing
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
