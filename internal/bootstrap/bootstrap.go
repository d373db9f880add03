// Package bootstrap builds the adapters selected by the configuration.
// It is shared by the server and the CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"tweet-suggester/internal/adapters/session"
	"tweet-suggester/internal/adapters/store"
	"tweet-suggester/internal/config"
	"tweet-suggester/internal/domain"
	"tweet-suggester/internal/usecases"
	"tweet-suggester/pkg/log"
)

// TagReloadInterval is how often the tag catalogue file is checked.
const TagReloadInterval = 30 * time.Second

// Store is a tweet gateway owning its connection.
type Store interface {
	usecases.TweetStore
	Close() error
}

// Sessions is a state store owning its connection.
type Sessions interface {
	usecases.StateStore
	Close() error
}

type memoryStore struct{ *store.Memory }

func (memoryStore) Close() error { return nil }

// inserter is implemented by the SQL stores.
type inserter interface {
	Insert(ctx context.Context, tweets ...domain.Tweet) error
}

// OpenStore builds the tweet gateway selected by the store driver. Local
// drivers are filled from the seed file while they are empty.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pg, err := store.NewPostgres(ctx, cfg.DSN, cfg.Table)
		if err != nil {
			return nil, err
		}
		return pg, nil

	case config.DriverSQLite:
		lite, err := store.NewSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		seed, err := LoadSeed(cfg.SeedFile)
		if err == nil {
			_, err = SeedIfEmpty(ctx, lite, seed)
		}
		if err != nil {
			lite.Close()
			return nil, err
		}
		return lite, nil

	case config.DriverMemory:
		seed, err := LoadSeed(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		log.GlobalInfo("using in-memory store", "tweets", len(seed))
		return memoryStore{store.NewMemory(seed...)}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// LoadSeed reads the seed file; a missing file yields no tweets.
func LoadSeed(path string) ([]domain.Tweet, error) {
	if path == "" {
		return nil, nil
	}
	seed, err := store.LoadSeed(path)
	if errors.Is(err, os.ErrNotExist) {
		log.GlobalWarn("seed file not found", "path", path)
		return nil, nil
	}
	return seed, err
}

// SeedIfEmpty inserts seed when the table holds no tweets and reports how
// many were inserted.
func SeedIfEmpty(ctx context.Context, s Store, seed []domain.Tweet) (int, error) {
	if len(seed) == 0 {
		return 0, nil
	}
	ins, ok := s.(inserter)
	if !ok {
		return 0, errors.New("store does not support seeding")
	}
	existing, err := s.QueryTweets(ctx, domain.TweetQuery{})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	if err := ins.Insert(ctx, seed...); err != nil {
		return 0, err
	}
	log.GlobalInfo("seeded store", "tweets", len(seed))
	return len(seed), nil
}

// OpenSessions builds the state store selected by the session driver.
func OpenSessions(ctx context.Context, cfg config.SessionConfig) (Sessions, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		r, err := session.NewRedis(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.DriverFile:
		f, err := session.NewFile(cfg.Dir, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return f, nil
	case config.DriverMemory:
		return session.NewMemory(cfg.TTL), nil
	}
	return nil, fmt.Errorf("unknown session driver %q", cfg.Driver)
}

// LoadTags loads the tag catalogue file. Without one, an in-memory store
// offers the tags present in its seed.
func LoadTags(path string, tweets usecases.TweetStore, interval time.Duration) (*config.TagCatalog, error) {
	catalog, err := config.LoadTagCatalog(path, interval)
	if err == nil {
		return catalog, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if mem, ok := tweets.(memoryStore); ok {
		log.GlobalWarn("tag catalogue not found, using seed tags", "path", path)
		return config.NewTagCatalog(mem.Tags()...), nil
	}
	log.GlobalWarn("tag catalogue not found", "path", path)
	return config.NewTagCatalog(), nil
}
