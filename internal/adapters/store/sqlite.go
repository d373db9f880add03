package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"tweet-suggester/internal/domain"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// SQLite stores tweets in a local SQLite database. Tags are kept as a
// JSON array in a text column.
type SQLite struct {
	sqlTable
}

// NewSQLite opens the database at path and creates the table if needed.
// Use ":memory:" for a throwaway database.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A second connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{
		sqlTable: sqlTable{
			db:    db,
			table: "tweets",
			dialect: dialect{
				placeholder: func(int) string { return "?" },
				tagsValue:   encodeJSONTags,
				tagsDest:    jsonTagsDest,
			},
		},
	}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// QueryTweets returns the tweets matching q.
func (s *SQLite) QueryTweets(ctx context.Context, q domain.TweetQuery) ([]domain.Tweet, error) {
	return s.queryTweets(ctx, q)
}

// UpdateTweet applies the patch to a single tweet.
func (s *SQLite) UpdateTweet(ctx context.Context, id string, patch domain.TweetPatch) error {
	return s.updateTweet(ctx, id, patch)
}

// Insert adds tweets to the table, used to seed local databases.
func (s *SQLite) Insert(ctx context.Context, tweets ...domain.Tweet) error {
	return s.insert(ctx, tweets...)
}

func encodeJSONTags(tags []string) (any, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func jsonTagsDest() (any, func() ([]string, error)) {
	var raw sql.NullString
	return &raw, func() ([]string, error) {
		if !raw.Valid || raw.String == "" {
			return nil, nil
		}
		var tags []string
		if err := json.Unmarshal([]byte(raw.String), &tags); err != nil {
			return nil, err
		}
		return tags, nil
	}
}
