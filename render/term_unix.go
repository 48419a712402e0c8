//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package render

import "golang.org/x/sys/unix"

func terminalWidth(fd uintptr) (int, bool) {
	ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	if err != nil {
		return 0, false
	}
	return int(ws.Col), true
}
