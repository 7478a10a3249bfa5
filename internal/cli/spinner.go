package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a status line while a result is computed.
type spinner struct {
	out     io.Writer
	message string

	mu      sync.Mutex // guards writes to out
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newSpinner(w io.Writer, message string) *spinner {
	return &spinner{
		out:     w,
		message: message,
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// startSpinner starts a spinner on f, or returns an idle one when f is
// not a terminal so that piped and logged output stays clean.
func startSpinner(ctx context.Context, f *os.File, message string) *spinner {
	s := newSpinner(f, message)
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		s.start(ctx)
	} else {
		close(s.stopped)
	}
	return s
}

// start draws a frame every 80ms until stop is called or ctx ends.
func (s *spinner) start(ctx context.Context) {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				s.clearLine()
				return
			case <-s.quit:
				s.clearLine()
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// stop ends the animation and waits until the line is cleared. It may be
// called more than once.
func (s *spinner) stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.stopped
}

func (s *spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}
