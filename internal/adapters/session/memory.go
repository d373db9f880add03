// Package session contains the stores persisting per-session engine state.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"tweet-suggester/internal/domain"
)

// Memory is an in-memory state store with TTL support.
// States are stored as JSON so callers never share slices with the store.
type Memory struct {
	states sync.Map
	ttl    time.Duration
	stop   chan struct{}
	once   sync.Once
}

// memoryEntry holds a serialized state with expiration metadata.
type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// NewMemory creates a new in-memory store; idle sessions expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	m := &Memory{ttl: ttl, stop: make(chan struct{})}
	go m.cleanup()
	return m
}

// Load returns the session state, or a fresh one if unknown or expired.
func (m *Memory) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	value, ok := m.states.Load(sessionID)
	if !ok {
		return domain.NewState(), nil
	}

	entry := value.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		m.states.Delete(sessionID)
		return domain.NewState(), nil
	}

	var st domain.State
	if err := json.Unmarshal(entry.payload, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Save stores the state and resets its TTL.
func (m *Memory) Save(ctx context.Context, sessionID string, st *domain.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}
	m.states.Store(sessionID, &memoryEntry{
		payload:   payload,
		expiresAt: time.Now().Add(m.ttl),
	})
	return nil
}

// Delete forgets the session.
func (m *Memory) Delete(ctx context.Context, sessionID string) error {
	m.states.Delete(sessionID)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *Memory) Len() int {
	n := 0
	m.states.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close stops the background sweeper.
func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}

// cleanup periodically removes expired sessions.
func (m *Memory) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *Memory) sweep(now time.Time) {
	m.states.Range(func(key, value any) bool {
		if now.After(value.(*memoryEntry).expiresAt) {
			m.states.Delete(key)
		}
		return true
	})
}
