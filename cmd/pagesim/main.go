// Command pagesim replays page reference strings under FIFO, LRU and OPT replacement.
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("pagesim failed", "error", err)
		os.Exit(1)
	}
}
