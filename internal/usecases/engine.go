package usecases

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"tweet-suggester/internal/domain"
	"tweet-suggester/pkg/log"
)

// SuggestionEngine selects random tweet suggestions for a session and
// keeps the session state consistent with the store gateway.
//
// Every operation loads the session state, applies the change and saves
// it back while holding a per-session lock. The returned state is valid
// even when the error wraps domain.ErrFetchFailed or domain.ErrUpdateFailed;
// it is nil only when the session itself could not be loaded or saved.
type SuggestionEngine struct {
	tweets     TweetStore
	sessions   StateStore
	recorder   OperationRecorder
	locks      *sessionLocks
	sampleSize int
	now        func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a SuggestionEngine.
type Option func(*SuggestionEngine)

// WithSampleSize sets how many suggestions are drawn at once.
func WithSampleSize(n int) Option {
	return func(e *SuggestionEngine) {
		if n > 0 {
			e.sampleSize = n
		}
	}
}

// WithRand sets the random source used for sampling.
func WithRand(rng *rand.Rand) Option {
	return func(e *SuggestionEngine) {
		e.rng = rng
	}
}

// WithRecorder sets the operation outcome recorder.
func WithRecorder(r OperationRecorder) Option {
	return func(e *SuggestionEngine) {
		e.recorder = r
	}
}

// WithClock overrides the clock stamping State.UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *SuggestionEngine) {
		e.now = now
	}
}

// NewSuggestionEngine creates a new SuggestionEngine.
func NewSuggestionEngine(tweets TweetStore, sessions StateStore, opts ...Option) *SuggestionEngine {
	e := &SuggestionEngine{
		tweets:     tweets,
		sessions:   sessions,
		recorder:   noopRecorder{},
		locks:      newSessionLocks(),
		sampleSize: domain.DefaultSampleSize,
		now:        time.Now,
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SampleSize returns the maximum number of suggestions per draw.
func (e *SuggestionEngine) SampleSize() int {
	return e.sampleSize
}

// State returns a copy of the session state.
func (e *SuggestionEngine) State(ctx context.Context, sessionID string) (*domain.State, error) {
	unlock := e.locks.Lock(sessionID)
	defer unlock()

	st, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return st.Clone(), nil
}

// EndSession forgets the session state, used on logout.
func (e *SuggestionEngine) EndSession(ctx context.Context, sessionID string) error {
	unlock := e.locks.Lock(sessionID)
	defer unlock()

	if err := e.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	log.GlobalInfoCtx(ctx, "session ended", "session_id", sessionID)
	return nil
}

// mutate runs fn on the loaded session state under the session lock and
// saves the result. fn's error is returned alongside the saved state.
func (e *SuggestionEngine) mutate(ctx context.Context, sessionID string, fn func(st *domain.State) error) (*domain.State, error) {
	unlock := e.locks.Lock(sessionID)
	defer unlock()

	st, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	opErr := fn(st)
	st.UpdatedAt = e.now()

	if err := e.sessions.Save(ctx, sessionID, st); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return st.Clone(), opErr
}

func (e *SuggestionEngine) sample(pool []domain.Tweet) []domain.Tweet {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return domain.Sample(e.rng, pool, e.sampleSize)
}

// fetchFailed records a gateway read failure in the status.
func (e *SuggestionEngine) fetchFailed(ctx context.Context, st *domain.State, op string, err error) error {
	st.Status = domain.Status{Kind: domain.StatusFetchFailed, Message: err.Error()}
	e.recorder.RecordOperation(op, "fetch_failed")
	log.GlobalErrorCtx(ctx, "tweet fetch failed", "op", op, "error", err)
	return fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
}

// updateFailed records a gateway write failure in the status.
// Callers must not have touched any other part of st.
func (e *SuggestionEngine) updateFailed(ctx context.Context, st *domain.State, op, tweetID string, err error) error {
	st.Status = domain.Status{Kind: domain.StatusUpdateFailed, Message: err.Error()}
	e.recorder.RecordOperation(op, "update_failed")
	log.GlobalErrorCtx(ctx, "tweet update failed", "op", op, "tweet_id", tweetID, "error", err)
	return fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
}
