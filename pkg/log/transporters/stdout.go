// Package transporters contains log output destinations.
package transporters

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"tweet-suggester/pkg/log"
)

// Stdout writes line-delimited JSON entries to stdout or any io.Writer.
type Stdout struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewStdout creates a transporter writing to os.Stdout.
func NewStdout() *Stdout {
	return &Stdout{writer: os.Stdout}
}

// NewStdoutWithWriter creates a transporter writing to w.
func NewStdoutWithWriter(w io.Writer) *Stdout {
	return &Stdout{writer: w}
}

func (s *Stdout) Name() string { return "stdout" }

// Write marshals the entry and writes it followed by a newline.
func (s *Stdout) Write(entry log.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.writer.Write(data)
	return err
}

func (s *Stdout) Close() error { return nil }
