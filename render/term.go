package render

import (
	"io"
	"os"
)

// DetectWidth returns the terminal width of w, or DefaultWidth when w is not a terminal
func DetectWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return DefaultWidth
	}
	if cols, ok := terminalWidth(f.Fd()); ok && cols > 0 {
		return cols
	}
	return DefaultWidth
}
