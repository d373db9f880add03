package domain

import "time"

// StatusKind classifies the outcome of the last engine operation.
type StatusKind string

const (
	StatusIdle         StatusKind = "idle"
	StatusLoaded       StatusKind = "loaded"
	StatusEmpty        StatusKind = "empty"
	StatusFetchFailed  StatusKind = "fetch_failed"
	StatusUpdateFailed StatusKind = "update_failed"
)

// Status is the human readable signal surfaced by the UI shell.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
	Count   int        `json:"count"`
}

// IsError reports whether the status describes a failed gateway call.
func (s Status) IsError() bool {
	return s.Kind == StatusFetchFailed || s.Kind == StatusUpdateFailed
}

// EditState tracks the single tweet in edit mode.
// The zero value means no tweet is being edited.
type EditState struct {
	TweetID string `json:"tweet_id,omitempty"`
	Draft   string `json:"draft,omitempty"`
}

// Editing reports whether any tweet is in edit mode.
func (e EditState) Editing() bool {
	return e.TweetID != ""
}

// State is the complete per-session view state of the suggestion engine.
// It is serialized as JSON by the session stores.
type State struct {
	Filters     Filters   `json:"filters"`
	Pool        []Tweet   `json:"pool"`
	Suggestions []Tweet   `json:"suggestions"`
	Used        []Tweet   `json:"used"`
	Edit        EditState `json:"edit"`
	Status      Status    `json:"status"`

	// Generation counts successful tweet mutations. A refresh started at
	// an older generation may hold outdated tweets.
	Generation uint64    `json:"generation"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewState returns an empty state with no filters selected.
func NewState() *State {
	return &State{
		Filters:     Filters{Tags: []string{}, Ratings: []int{}},
		Pool:        []Tweet{},
		Suggestions: []Tweet{},
		Used:        []Tweet{},
		Status:      Status{Kind: StatusIdle},
	}
}

// Suggestion returns the displayed suggestion with the given id.
func (s *State) Suggestion(id string) (Tweet, bool) {
	for _, t := range s.Suggestions {
		if t.ID == id {
			return t, true
		}
	}
	return Tweet{}, false
}

// Find looks up a tweet in any list held by the state.
func (s *State) Find(id string) (Tweet, bool) {
	for _, list := range [][]Tweet{s.Suggestions, s.Pool, s.Used} {
		for _, t := range list {
			if t.ID == id {
				return t, true
			}
		}
	}
	return Tweet{}, false
}

// Remove drops the tweet from the suggestion list and the pool.
func (s *State) Remove(id string) {
	s.Suggestions = without(s.Suggestions, id)
	s.Pool = without(s.Pool, id)
}

// AddUsed puts the tweet at the end of the used list, replacing any copy
// already held there.
func (s *State) AddUsed(t Tweet) {
	t.Used = true
	s.Used = append(without(s.Used, t.ID), t)
}

// Replace applies fn to every held copy of the tweet with the given id.
func (s *State) Replace(id string, fn func(Tweet) Tweet) {
	for _, list := range [][]Tweet{s.Suggestions, s.Pool, s.Used} {
		for i := range list {
			if list[i].ID == id {
				list[i] = fn(list[i])
			}
		}
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	c := *s
	c.Filters.Tags = append([]string{}, s.Filters.Tags...)
	c.Filters.Ratings = append([]int{}, s.Filters.Ratings...)
	c.Pool = cloneTweets(s.Pool)
	c.Suggestions = cloneTweets(s.Suggestions)
	c.Used = cloneTweets(s.Used)
	return &c
}

func without(list []Tweet, id string) []Tweet {
	out := make([]Tweet, 0, len(list))
	for _, t := range list {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func cloneTweets(list []Tweet) []Tweet {
	out := make([]Tweet, len(list))
	for i, t := range list {
		t.Tags = append([]string{}, t.Tags...)
		if t.Rating != nil {
			t.Rating = Int(*t.Rating)
		}
		out[i] = t
	}
	return out
}
