// spinner.go implements the spinner shown on stderr while hubben waits on the backend.
package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StartSpinner prints a lightweight ASCII spinner until the returned stop
// function is called. Stop prints "[klar]" or "[fel]" depending on the
// success flag and is safe to call more than once; only the first call
// prints. When w is not a terminal the spinner stays silent.
func StartSpinner(w io.Writer, message string) func(success bool) {
	if !IsTerminal(w) {
		return func(bool) {}
	}
	frames := []rune{'|', '/', '-', '\\'}
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()
		idx := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %c", message, frames[idx])
				idx = (idx + 1) % len(frames)
			}
		}
	}()
	var once sync.Once
	return func(success bool) {
		once.Do(func() {
			close(done)
			<-exited
			status := "[klar]"
			if !success {
				status = "[fel]"
			}
			fmt.Fprintf(w, "\r%s %s\n", message, status)
		})
	}
}
