package v2md

import (
	"os"
	"path/filepath"
)

const appName = "v2md"

// DefaultDataDir returns XDG data home or a platform fallback.
func DefaultDataDir(app string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	if app == "" {
		return dataHome
	}
	return filepath.Join(dataHome, app)
}

// DefaultCookieFile returns the cookie jar path inside the data dir.
func DefaultCookieFile(app string) string {
	return filepath.Join(DefaultDataDir(app), "cookies.toml")
}
