package transporters

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"tweet-suggester/pkg/log"
)

// Text writes human readable lines, used by the CLI:
//
//	15:04:05 WARN  message key=value key2=value2
type Text struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewText creates a transporter writing to os.Stderr.
func NewText() *Text {
	return &Text{writer: os.Stderr}
}

// NewTextWithWriter creates a transporter writing to w.
func NewTextWithWriter(w io.Writer) *Text {
	return &Text{writer: w}
}

func (t *Text) Name() string { return "text" }

// Write formats the entry on one line with fields sorted by key.
func (t *Text) Write(entry log.Entry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s %s", entry.Timestamp.Format("15:04:05"), entry.Level, entry.Message)

	if entry.RequestID != "" {
		fmt.Fprintf(&b, " request_id=%s", entry.RequestID)
	}

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
	}
	b.WriteByte('\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := io.WriteString(t.writer, b.String())
	return err
}

func (t *Text) Close() error { return nil }
