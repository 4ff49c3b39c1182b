package selection

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultInterval is the polling period used when Watcher.Interval is zero.
const DefaultInterval = 500 * time.Millisecond

// Watcher polls a Source and reports each new selection once.
type Watcher struct {
	Source   Source
	Interval time.Duration
	// MinLength is the minimum selection length in characters.
	MinLength int
	OnChange  func(text string)

	last string
}

// Run polls until ctx is done. The selection present when Run starts is
// treated as already seen so stale clipboard content is not reported.
func (w *Watcher) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	if text, ok := w.Source.Poll(); ok {
		w.last = strings.TrimSpace(text)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *Watcher) check() {
	text, ok := w.Source.Poll()
	if !ok {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" || text == w.last {
		return
	}
	w.last = text
	if utf8.RuneCountInString(text) < w.MinLength {
		return
	}
	if w.OnChange != nil {
		w.OnChange(text)
	}
}
