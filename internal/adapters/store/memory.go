// Package store contains the store gateway adapters for the tweet table.
package store

import (
	"context"
	"sort"
	"sync"

	"tweet-suggester/internal/domain"
)

// Memory is an in-process tweet table.
type Memory struct {
	mu     sync.RWMutex
	tweets map[string]domain.Tweet
	order  []string
}

// NewMemory creates a store seeded with the given tweets.
func NewMemory(seed ...domain.Tweet) *Memory {
	m := &Memory{tweets: make(map[string]domain.Tweet, len(seed))}
	for _, t := range seed {
		m.Put(t)
	}
	return m
}

// Put inserts or replaces a tweet.
func (m *Memory) Put(t domain.Tweet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tweets[t.ID]; !exists {
		m.order = append(m.order, t.ID)
	}
	t.Tags = domain.NormalizeTags(t.Tags)
	m.tweets[t.ID] = t
}

// Get returns a tweet by id.
func (m *Memory) Get(id string) (domain.Tweet, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tweets[id]
	return t, ok
}

// QueryTweets returns the tweets matching q in insertion order.
func (m *Memory) QueryTweets(ctx context.Context, q domain.TweetQuery) ([]domain.Tweet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Tweet, 0, len(m.order))
	for _, id := range m.order {
		t := m.tweets[id]
		if q.Matches(t) {
			t.Tags = append([]string{}, t.Tags...)
			out = append(out, t)
		}
	}
	return out, nil
}

// UpdateTweet applies the patch to a single tweet.
func (m *Memory) UpdateTweet(ctx context.Context, id string, patch domain.TweetPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tweets[id]
	if !ok {
		return domain.ErrTweetNotFound
	}
	m.tweets[id] = patch.Apply(t)
	return nil
}

// Tags returns every distinct tag in the table, sorted.
func (m *Memory) Tags() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, t := range m.tweets {
		for _, tag := range t.Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
