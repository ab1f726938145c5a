package cli

import (
	"fmt"
	"runtime"

	"github.com/atotto/clipboard"

	"github.com/doeshing/persona-go/internal/ports"
)

// Clipboard implements ports.Clipboard on top of the platform clipboard tools
// (pbcopy, xclip, xsel, wl-copy, the Windows API).
type Clipboard struct {
	write func(string) error
}

// NewClipboard builds the clipboard helper.
func NewClipboard() *Clipboard {
	return &Clipboard{write: clipboard.WriteAll}
}

// Enabled reports whether a clipboard tool was found.
func (c *Clipboard) Enabled() bool {
	return !clipboard.Unsupported
}

// Copy copies text to the system clipboard.
func (c *Clipboard) Copy(text string) error {
	if !c.Enabled() {
		return fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
	}
	if err := c.write(text); err != nil {
		return fmt.Errorf("clipboard write failed: %w", err)
	}
	return nil
}

var _ ports.Clipboard = (*Clipboard)(nil)
