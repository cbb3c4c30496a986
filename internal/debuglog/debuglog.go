// Package debuglog keeps the append-only diagnostic log shown in the page's debug panel.
package debuglog

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Reporter collects diagnostic messages. It is safe for concurrent use and
// every method is a no-op on a nil receiver.
type Reporter struct {
	mu      sync.Mutex
	lines   []string
	visible bool
	logger  *slog.Logger
}

// New returns a reporter that mirrors messages to logger (slog.Default when nil)
func New(logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{logger: logger}
}

// Add appends a message. The panel becomes visible on the first message and stays so.
func (r *Reporter) Add(msg string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.lines = append(r.lines, msg)
	r.visible = true
	logger := r.logger
	r.mu.Unlock()

	if logger != nil {
		logger.Debug(msg, "source", "debuglog")
	}
}

// Addf formats and appends a message
func (r *Reporter) Addf(format string, args ...any) {
	if r == nil {
		return
	}
	r.Add(fmt.Sprintf(format, args...))
}

// Lines returns a copy of all messages in append order
func (r *Reporter) Lines() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Text renders the log the way the panel shows it, one message per line
func (r *Reporter) Text() string {
	lines := r.Lines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Visible reports whether the panel has been revealed
func (r *Reporter) Visible() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible
}

type discard struct{}

func (discard) Add(string)          {}
func (discard) Addf(string, ...any) {}

// Discard drops every message
var Discard discard
