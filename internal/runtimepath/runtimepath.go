// Package runtimepath locates the per-user files the daemon and its clients
// agree on.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "multibox"

// SocketEnv overrides the socket location, mainly for tests and for running
// more than one daemon per user.
const SocketEnv = "MULTIBOX_SOCKET"

// Dir returns the first usable runtime directory: $XDG_RUNTIME_DIR, then
// /run/user/<uid>, then a private directory under the system temp dir.
func Dir() (string, error) {
	uid := os.Getuid()
	for _, dir := range runtimeCandidates(os.Getenv("XDG_RUNTIME_DIR"), uid) {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return dir, nil
		}
	}
	fallback := filepath.Join(os.TempDir(), fmt.Sprintf("%s-runtime-%d", appName, uid))
	if err := os.MkdirAll(fallback, 0o700); err != nil {
		return "", fmt.Errorf("create runtime dir: %w", err)
	}
	return fallback, nil
}

func runtimeCandidates(xdg string, uid int) []string {
	var dirs []string
	if xdg != "" {
		dirs = append(dirs, xdg)
	}
	return append(dirs, fmt.Sprintf("/run/user/%d", uid))
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	if p := os.Getenv(SocketEnv); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".sock"), nil
}

// StateDir returns $XDG_STATE_HOME/multibox, defaulting to
// ~/.local/state/multibox.
func StateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", appName), nil
}
