package domain

import "errors"

var (
	// ErrFetchFailed is returned when the store gateway rejects a read.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrUpdateFailed is returned when the store gateway rejects a write.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTweetNotFound is returned when the tweet does not exist
	// or is not part of the current view.
	ErrTweetNotFound = errors.New("tweet not found")

	// ErrInvalidRating is returned for ratings outside [1,5].
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrNotEditing is returned when saving or drafting a tweet
	// that is not in edit mode.
	ErrNotEditing = errors.New("tweet is not being edited")

	// ErrUnauthorized is returned when a valid user is required but missing.
	ErrUnauthorized = errors.New("authentication required")

	// ErrRateLimited is returned when rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")
)
