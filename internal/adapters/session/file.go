package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"tweet-suggester/internal/domain"
)

var validSessionID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// File keeps one JSON document per session in a directory. It lets
// one-shot processes such as the CLI continue a session across runs.
type File struct {
	dir string
	ttl time.Duration
}

// NewFile creates the directory if needed.
func NewFile(dir string, ttl time.Duration) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &File{dir: dir, ttl: ttl}, nil
}

func (f *File) path(sessionID string) (string, error) {
	if !validSessionID.MatchString(sessionID) {
		return "", fmt.Errorf("invalid session id %q", sessionID)
	}
	return filepath.Join(f.dir, sessionID+".json"), nil
}

// Load returns the session state, or a fresh one if unknown or expired.
func (f *File) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	p, err := f.path(sessionID)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewState(), nil
	}
	if err != nil {
		return nil, err
	}
	if f.ttl > 0 && time.Since(info.ModTime()) > f.ttl {
		os.Remove(p)
		return domain.NewState(), nil
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	var st domain.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &st, nil
}

// Save writes the state through a temporary file and a rename.
func (f *File) Save(ctx context.Context, sessionID string, st *domain.State) error {
	p, err := f.path(sessionID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Delete forgets the session.
func (f *File) Delete(ctx context.Context, sessionID string) error {
	p, err := f.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Close is a no-op; it lets File stand in wherever a closable store is expected.
func (f *File) Close() error { return nil }
