//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package diagnostic

// IsTerminal reports false on platforms without terminal detection.
func IsTerminal(fd uintptr) bool {
	return false
}
