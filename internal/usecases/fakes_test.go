package usecases

import (
	"context"
	"sync"

	"tweet-suggester/internal/domain"
)

// fakeTweetStore is an in-memory TweetStore with injectable failures.
type fakeTweetStore struct {
	mu        sync.Mutex
	tweets    []domain.Tweet
	queryErr  error
	updateErr error
	onQuery   func()
	queries   int
	updates   []domain.TweetPatch
}

func newFakeTweetStore(tweets []domain.Tweet) *fakeTweetStore {
	return &fakeTweetStore{tweets: tweets}
}

func (f *fakeTweetStore) QueryTweets(ctx context.Context, q domain.TweetQuery) ([]domain.Tweet, error) {
	f.mu.Lock()
	hook := f.onQuery
	f.queries++
	err := f.queryErr
	var out []domain.Tweet
	for _, t := range f.tweets {
		if q.Matches(t) {
			t.Tags = append([]string(nil), t.Tags...)
			out = append(out, t)
		}
	}
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeTweetStore) UpdateTweet(ctx context.Context, id string, patch domain.TweetPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}
	for i, t := range f.tweets {
		if t.ID == id {
			f.tweets[i] = patch.Apply(t)
			f.updates = append(f.updates, patch)
			return nil
		}
	}
	return domain.ErrTweetNotFound
}

func (f *fakeTweetStore) get(id string) (domain.Tweet, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tweets {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Tweet{}, false
}

func (f *fakeTweetStore) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

// fakeStateStore keeps deep copies of session states in a map.
type fakeStateStore struct {
	mu     sync.Mutex
	states map[string]*domain.State
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: make(map[string]*domain.State)}
}

func (f *fakeStateStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st, ok := f.states[sessionID]; ok {
		return st.Clone(), nil
	}
	return domain.NewState(), nil
}

func (f *fakeStateStore) Save(ctx context.Context, sessionID string, st *domain.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[sessionID] = st.Clone()
	return nil
}

func (f *fakeStateStore) Delete(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.states, sessionID)
	return nil
}

// recordingRecorder collects op/outcome pairs.
type recordingRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingRecorder) RecordOperation(op, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, op+":"+outcome)
}

func (r *recordingRecorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func ids(tweets []domain.Tweet) []string {
	out := make([]string, len(tweets))
	for i, t := range tweets {
		out[i] = t.ID
	}
	return out
}

func containsID(tweets []domain.Tweet, id string) bool {
	for _, t := range tweets {
		if t.ID == id {
			return true
		}
	}
	return false
}
