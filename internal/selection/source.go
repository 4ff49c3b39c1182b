// Package selection watches the desktop for newly selected or copied text.
package selection

import (
	"strings"

	"github.com/atotto/clipboard"
)

// Source reports the text currently selected on the desktop.
type Source interface {
	// Poll returns the current selection, or false if none is available.
	Poll() (string, bool)
}

// ClipboardSource reads the system clipboard. On Linux and BSD it needs
// xclip, xsel or wl-clipboard installed.
type ClipboardSource struct {
	read func() (string, error)
}

// NewClipboardSource returns a Source backed by the system clipboard.
func NewClipboardSource() *ClipboardSource {
	return &ClipboardSource{read: clipboard.ReadAll}
}

// Available reports whether a clipboard utility was found.
func (s *ClipboardSource) Available() bool {
	return !clipboard.Unsupported
}

func (s *ClipboardSource) Poll() (string, bool) {
	text, err := s.read()
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (string, bool)

func (f SourceFunc) Poll() (string, bool) { return f() }
