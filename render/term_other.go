//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd || windows)

package render

func terminalWidth(uintptr) (int, bool) {
	return 0, false
}
