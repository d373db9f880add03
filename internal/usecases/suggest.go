package usecases

import (
	"context"
	"fmt"

	"tweet-suggester/internal/domain"
	"tweet-suggester/pkg/log"
)

// RefreshSuggestions stores the filter selection, fetches every tweet
// visible to user, filters it and draws a fresh random sample that
// replaces the previous suggestions.
//
// The session lock is released while the gateway is queried. If the
// session's filters changed in the meantime the result is discarded and
// the current state is returned unchanged. If a tweet was mutated in the
// meantime the fetch is repeated, up to refreshAttempts times.
func (e *SuggestionEngine) RefreshSuggestions(ctx context.Context, sessionID string, filters domain.Filters, user *domain.User) (*domain.State, error) {
	filters = filters.Normalize()
	ctx = log.WithFields(ctx, "session_id", sessionID, "user_id", domain.UserID(user))

	var snap snapshot
	if _, err := e.mutate(ctx, sessionID, func(st *domain.State) error {
		st.Filters = filters
		snap = snapshotOf(st)
		return nil
	}); err != nil {
		return nil, err
	}

	return e.refresh(ctx, sessionID, snap, filters, user)
}

// Regenerate draws a new random sample with the session's current filters.
func (e *SuggestionEngine) Regenerate(ctx context.Context, sessionID string, user *domain.User) (*domain.State, error) {
	ctx = log.WithFields(ctx, "session_id", sessionID, "user_id", domain.UserID(user))

	st, err := e.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return e.refresh(ctx, sessionID, snapshotOf(st), st.Filters.Normalize(), user)
}

// refreshAttempts bounds how often one refresh refetches after concurrent
// tweet mutations.
const refreshAttempts = 3

// snapshot identifies the session state a fetch was started from.
type snapshot struct {
	filters    string
	generation uint64
}

func snapshotOf(st *domain.State) snapshot {
	return snapshot{filters: st.Filters.Key(), generation: st.Generation}
}

func (e *SuggestionEngine) refresh(ctx context.Context, sessionID string, snap snapshot, filters domain.Filters, user *domain.User) (*domain.State, error) {
	for attempt := 1; ; attempt++ {
		fetched, fetchErr := e.tweets.QueryTweets(ctx, domain.SuggestionQuery(user))

		var pool, suggestions []domain.Tweet
		if fetchErr == nil {
			pool = domain.ApplyFilters(fetched, filters, user)
			suggestions = e.sample(pool)
		}

		refetch := false
		st, err := e.mutate(ctx, sessionID, func(st *domain.State) error {
			if st.Filters.Key() != snap.filters {
				e.recorder.RecordOperation("refresh", "stale")
				log.GlobalDebugCtx(ctx, "discarding stale suggestions", "requested", snap.filters, "current", st.Filters.Key())
				return nil
			}
			if st.Generation != snap.generation {
				if attempt < refreshAttempts {
					refetch = true
					snap.generation = st.Generation
					return nil
				}
				e.recorder.RecordOperation("refresh", "stale")
				log.GlobalWarnCtx(ctx, "tweets kept changing during refresh, keeping current suggestions", "attempts", attempt)
				return nil
			}
			if fetchErr != nil {
				return e.fetchFailed(ctx, st, "refresh", fetchErr)
			}
			e.applyRefresh(ctx, st, pool, suggestions)
			log.GlobalDebugCtx(ctx, "suggestions refreshed", "fetched", len(fetched), "pool", len(pool), "shown", len(suggestions))
			return nil
		})
		if !refetch {
			return st, err
		}
		log.GlobalDebugCtx(ctx, "tweets changed during fetch, fetching again", "attempt", attempt)
	}
}

func (e *SuggestionEngine) applyRefresh(ctx context.Context, st *domain.State, pool, suggestions []domain.Tweet) {
	st.Pool = pool
	st.Suggestions = suggestions
	if st.Edit.Editing() {
		if _, ok := st.Suggestion(st.Edit.TweetID); !ok {
			st.Edit = domain.EditState{}
		}
	}

	if len(pool) == 0 {
		st.Status = domain.Status{Kind: domain.StatusEmpty, Message: "No tweets match the current filters"}
		e.recorder.RecordOperation("refresh", "empty")
		return
	}
	st.Status = domain.Status{
		Kind:    domain.StatusLoaded,
		Message: fmt.Sprintf("Loaded %d of %d matching tweets", len(suggestions), len(pool)),
		Count:   len(suggestions),
	}
	e.recorder.RecordOperation("refresh", "loaded")
}

// UsedTweets reloads the list of consumed tweets visible to user.
func (e *SuggestionEngine) UsedTweets(ctx context.Context, sessionID string, user *domain.User) (*domain.State, error) {
	ctx = log.WithFields(ctx, "session_id", sessionID, "user_id", domain.UserID(user))

	return e.mutate(ctx, sessionID, func(st *domain.State) error {
		return e.loadUsed(ctx, st, user)
	})
}

func (e *SuggestionEngine) loadUsed(ctx context.Context, st *domain.State, user *domain.User) error {
	used, err := e.queryUsed(ctx, user)
	if err != nil {
		return e.fetchFailed(ctx, st, "used_tweets", err)
	}
	st.Used = used
	e.recorder.RecordOperation("used_tweets", "loaded")
	return nil
}

func (e *SuggestionEngine) queryUsed(ctx context.Context, user *domain.User) ([]domain.Tweet, error) {
	used, err := e.tweets.QueryTweets(ctx, domain.UsedQuery(user))
	if err != nil {
		return nil, err
	}

	visible := make([]domain.Tweet, 0, len(used))
	for _, t := range used {
		if t.Used && t.OwnedBy(user) {
			visible = append(visible, t)
		}
	}
	return visible, nil
}
