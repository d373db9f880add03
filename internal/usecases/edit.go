package usecases

import (
	"context"

	"tweet-suggester/internal/domain"
	"tweet-suggester/pkg/log"
)

// BeginEdit puts the tweet in edit mode with its display text as draft.
// Any other tweet's unsaved draft is discarded.
func (e *SuggestionEngine) BeginEdit(ctx context.Context, sessionID, tweetID string) (*domain.State, error) {
	ctx = log.WithFields(ctx, "session_id", sessionID, "tweet_id", tweetID)

	return e.mutate(ctx, sessionID, func(st *domain.State) error {
		tweet, ok := st.Find(tweetID)
		if !ok {
			return domain.ErrTweetNotFound
		}

		if st.Edit.Editing() && st.Edit.TweetID != tweetID {
			log.GlobalDebugCtx(ctx, "discarding unsaved draft", "previous_tweet_id", st.Edit.TweetID)
		}
		if st.Edit.TweetID == tweetID {
			return nil
		}

		st.Edit = domain.EditState{TweetID: tweetID, Draft: tweet.DisplayText()}
		return nil
	})
}

// UpdateDraft replaces the draft of the tweet in edit mode.
func (e *SuggestionEngine) UpdateDraft(ctx context.Context, sessionID, tweetID, draft string) (*domain.State, error) {
	return e.mutate(ctx, sessionID, func(st *domain.State) error {
		if st.Edit.TweetID != tweetID {
			return domain.ErrNotEditing
		}
		st.Edit.Draft = draft
		return nil
	})
}

// CancelEdit leaves edit mode without persisting the draft.
func (e *SuggestionEngine) CancelEdit(ctx context.Context, sessionID string) (*domain.State, error) {
	return e.mutate(ctx, sessionID, func(st *domain.State) error {
		st.Edit = domain.EditState{}
		return nil
	})
}

// SaveEdit commits newText as the tweet's custom text and leaves edit mode.
// On failure the edit state is kept as it was.
func (e *SuggestionEngine) SaveEdit(ctx context.Context, sessionID, tweetID, newText string, user *domain.User) (*domain.State, error) {
	ctx = log.WithFields(ctx, "session_id", sessionID, "user_id", domain.UserID(user), "tweet_id", tweetID)

	return e.mutate(ctx, sessionID, func(st *domain.State) error {
		if st.Edit.TweetID != tweetID {
			return domain.ErrNotEditing
		}

		patch := domain.TweetPatch{CustomText: domain.String(newText)}
		if user != nil {
			patch.OwnerID = domain.String(user.ID)
		}

		if err := e.tweets.UpdateTweet(ctx, tweetID, patch); err != nil {
			return e.updateFailed(ctx, st, "save_edit", tweetID, err)
		}

		st.Replace(tweetID, patch.Apply)
		st.Generation++
		st.Edit = domain.EditState{}
		e.recorder.RecordOperation("save_edit", "ok")
		log.GlobalInfoCtx(ctx, "tweet text saved")
		return nil
	})
}
