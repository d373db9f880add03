package usecases

import (
	"context"

	"tweet-suggester/internal/domain"
)

// TweetStore defines the store gateway holding the tweet table.
// Errors are treated as opaque; their message is shown to the user.
type TweetStore interface {
	QueryTweets(ctx context.Context, q domain.TweetQuery) ([]domain.Tweet, error)
	UpdateTweet(ctx context.Context, id string, patch domain.TweetPatch) error
}

// StateStore persists the per-session engine state.
// Load returns a fresh state for unknown sessions.
type StateStore interface {
	Load(ctx context.Context, sessionID string) (*domain.State, error)
	Save(ctx context.Context, sessionID string, state *domain.State) error
	Delete(ctx context.Context, sessionID string) error
}

// OperationRecorder receives the outcome of every engine operation.
type OperationRecorder interface {
	RecordOperation(op, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordOperation(string, string) {}
