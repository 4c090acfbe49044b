package contact

import (
	"fmt"
	"io"
	"strconv"
	"sync"
)

// Notifier surfaces transient, toast-style notifications for a submission. Loading
// returns an id that the matching Success or Error call replaces.
type Notifier interface {
	Loading(msg string) string
	Success(id, msg string)
	Error(id, msg string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Loading(string) string  { return "" }
func (NopNotifier) Success(string, string) {}
func (NopNotifier) Error(string, string)   {}

// WriterNotifier prints notifications as lines on an io.Writer.
type WriterNotifier struct {
	mu  sync.Mutex
	w   io.Writer
	seq int
}

// NewWriterNotifier creates a notifier that writes to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Loading(msg string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	id := "toast-" + strconv.Itoa(n.seq)
	fmt.Fprintf(n.w, "… %s\n", msg)
	return id
}

func (n *WriterNotifier) Success(_ string, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "✓ %s\n", msg)
}

func (n *WriterNotifier) Error(_ string, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "✗ %s\n", msg)
}
