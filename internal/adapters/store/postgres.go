package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"tweet-suggester/internal/domain"
)

// PostgresSchema creates the tweets table. The hosted backend owns its
// schema; this is used by tests and local setups only.
//
//go:embed postgres_schema.sql
var PostgresSchema string

// Postgres reads and updates the hosted tweets table.
type Postgres struct {
	sqlTable
}

// NewPostgres connects to the database and verifies the connection.
func NewPostgres(ctx context.Context, dsn, table string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewPostgresFromDB(db, table), nil
}

// NewPostgresFromDB wraps an existing connection pool.
func NewPostgresFromDB(db *sql.DB, table string) *Postgres {
	if table == "" {
		table = "tweets"
	}
	return &Postgres{
		sqlTable: sqlTable{
			db:    db,
			table: pq.QuoteIdentifier(table),
			dialect: dialect{
				placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
				tagsValue: func(tags []string) (any, error) {
					if tags == nil {
						tags = []string{}
					}
					return pq.Array(tags), nil
				},
				tagsDest: func() (any, func() ([]string, error)) {
					var tags pq.StringArray
					return &tags, func() ([]string, error) { return tags, nil }
				},
			},
		},
	}
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// QueryTweets returns the tweets matching q.
func (p *Postgres) QueryTweets(ctx context.Context, q domain.TweetQuery) ([]domain.Tweet, error) {
	return p.queryTweets(ctx, q)
}

// UpdateTweet applies the patch to a single tweet.
func (p *Postgres) UpdateTweet(ctx context.Context, id string, patch domain.TweetPatch) error {
	return p.updateTweet(ctx, id, patch)
}

// Insert adds tweets to the table.
func (p *Postgres) Insert(ctx context.Context, tweets ...domain.Tweet) error {
	return p.insert(ctx, tweets...)
}
