//go:build darwin || freebsd || netbsd || openbsd

package diagnostic

import "golang.org/x/sys/unix"

const ioctlReadTermios = unix.TIOCGETA
