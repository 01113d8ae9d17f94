package models

import (
	"os"
)

// playCue writes the terminal bell. If the terminal suppresses it, or the
// write itself fails, nothing happens; the cue is cosmetic.
func playCue(enabled bool) {
	if !enabled {
		return
	}
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		// Fall back to stdout; a failed write is silently dropped.
		_, _ = os.Stdout.Write([]byte("\a"))
		return
	}
	defer tty.Close()
	_, _ = tty.Write([]byte("\a"))
}
