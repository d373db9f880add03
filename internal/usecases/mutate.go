package usecases

import (
	"context"

	"tweet-suggester/internal/domain"
	"tweet-suggester/pkg/log"
)

// MarkUsed flags the tweet as consumed, drops it from the suggestions and
// reloads the used list. On failure the suggestions are left untouched.
// A failed reload does not fail the operation: the tweet is then added to
// the used list locally.
func (e *SuggestionEngine) MarkUsed(ctx context.Context, sessionID, tweetID string, user *domain.User) (*domain.State, error) {
	ctx = log.WithFields(ctx, "session_id", sessionID, "user_id", domain.UserID(user), "tweet_id", tweetID)

	return e.mutate(ctx, sessionID, func(st *domain.State) error {
		if err := e.tweets.UpdateTweet(ctx, tweetID, domain.TweetPatch{Used: domain.Bool(true)}); err != nil {
			return e.updateFailed(ctx, st, "mark_used", tweetID, err)
		}

		marked, held := st.Find(tweetID)
		st.Remove(tweetID)
		st.Generation++
		if st.Edit.TweetID == tweetID {
			st.Edit = domain.EditState{}
		}
		st.Status = domain.Status{
			Kind:    domain.StatusLoaded,
			Message: "Marked as used",
			Count:   len(st.Suggestions),
		}
		e.recorder.RecordOperation("mark_used", "ok")
		log.GlobalInfoCtx(ctx, "tweet marked as used")

		used, err := e.queryUsed(ctx, user)
		if err != nil {
			e.recorder.RecordOperation("used_tweets", "fetch_failed")
			log.GlobalWarnCtx(ctx, "used list reload failed", "error", err)
			if held {
				st.AddUsed(marked)
			}
			return nil
		}
		st.Used = used
		e.recorder.RecordOperation("used_tweets", "loaded")
		return nil
	})
}

// SetRating sets the tweet's rating, or clears it when rating is nil.
// A non-nil rating outside [1,5] is rejected before reaching the gateway.
func (e *SuggestionEngine) SetRating(ctx context.Context, sessionID, tweetID string, rating *int, user *domain.User) (*domain.State, error) {
	if !domain.ValidRating(rating) {
		return nil, domain.ErrInvalidRating
	}
	ctx = log.WithFields(ctx, "session_id", sessionID, "user_id", domain.UserID(user), "tweet_id", tweetID)

	patch := domain.TweetPatch{Rating: rating, ClearRating: rating == nil}
	if rating != nil && user != nil {
		patch.OwnerID = domain.String(user.ID)
	}

	return e.applyPatch(ctx, sessionID, "set_rating", tweetID, patch)
}

// SetFavorite sets or clears the favorite flag.
func (e *SuggestionEngine) SetFavorite(ctx context.Context, sessionID, tweetID string, favorite bool, user *domain.User) (*domain.State, error) {
	ctx = log.WithFields(ctx, "session_id", sessionID, "user_id", domain.UserID(user), "tweet_id", tweetID)

	patch := domain.TweetPatch{IsFavorite: domain.Bool(favorite)}
	if user != nil {
		patch.OwnerID = domain.String(user.ID)
	}

	return e.applyPatch(ctx, sessionID, "set_favorite", tweetID, patch)
}

// applyPatch writes the patch through the gateway and mirrors it into
// every in-memory copy of the tweet without refetching.
func (e *SuggestionEngine) applyPatch(ctx context.Context, sessionID, op, tweetID string, patch domain.TweetPatch) (*domain.State, error) {
	return e.mutate(ctx, sessionID, func(st *domain.State) error {
		if err := e.tweets.UpdateTweet(ctx, tweetID, patch); err != nil {
			return e.updateFailed(ctx, st, op, tweetID, err)
		}

		st.Replace(tweetID, patch.Apply)
		st.Generation++
		e.recorder.RecordOperation(op, "ok")
		log.GlobalDebugCtx(ctx, "tweet updated", "op", op)
		return nil
	})
}
