package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/mattn/go-isatty"
)

const clearLine = "\r\033[K"

// Spinner animates a label and the elapsed seconds on one line of a
// terminal while exec waits for a reply. On anything but a terminal it
// stays silent so redirected output is not polluted.
type Spinner struct {
	out     io.Writer
	label   string
	style   spinner.Spinner
	enabled bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewSpinner returns a spinner for w, enabled only when w is a terminal.
func NewSpinner(w io.Writer, label string) *Spinner {
	return newSpinner(w, label, isTerminal(w))
}

func newSpinner(w io.Writer, label string, enabled bool) *Spinner {
	return &Spinner{out: w, label: label, style: spinner.MiniDot, enabled: enabled}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(f.Fd())
}

// Start begins the animation. A running spinner ignores the call.
func (s *Spinner) Start() {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.animate(s.stop, s.done)
}

func (s *Spinner) animate(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.style.FPS)
	defer ticker.Stop()
	started := time.Now()
	for frame := 0; ; frame++ {
		elapsed := int(time.Since(started).Seconds())
		fmt.Fprintf(s.out, "\r%s %s %ds", s.style.Frames[frame%len(s.style.Frames)], s.label, elapsed)
		select {
		case <-stop:
			fmt.Fprint(s.out, clearLine)
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the animation and clears the line. It is safe to call on a
// spinner that never started.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}
