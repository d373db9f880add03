package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"tweet-suggester/internal/domain"
)

const selectColumns = "id, text, custom_text, tags, rating, is_favorite, used, is_active, owner_id"

// dialect captures what differs between the SQL drivers.
type dialect struct {
	// placeholder returns the bind marker for the n-th (1-based) argument.
	placeholder func(n int) string
	// tagsValue converts tags into a driver argument.
	tagsValue func(tags []string) (any, error)
	// tagsDest returns a scan destination and a decoder for the tags column.
	tagsDest func() (any, func() ([]string, error))
}

// sqlTable implements the gateway on top of database/sql.
type sqlTable struct {
	db      *sql.DB
	table   string
	dialect dialect
}

// args accumulates bind arguments and their placeholders.
type args struct {
	d    dialect
	vals []any
}

func (a *args) add(v any) string {
	a.vals = append(a.vals, v)
	return a.d.placeholder(len(a.vals))
}

func (s *sqlTable) queryTweets(ctx context.Context, q domain.TweetQuery) ([]domain.Tweet, error) {
	a := &args{d: s.dialect}
	var where []string

	if q.Used != nil {
		where = append(where, "used = "+a.add(*q.Used))
	}
	if q.IsActive != nil {
		where = append(where, "is_active = "+a.add(*q.IsActive))
	}
	if q.Owner != nil {
		if q.Owner.UserID == "" {
			where = append(where, "owner_id IS NULL")
		} else {
			where = append(where, "(owner_id IS NULL OR owner_id = "+a.add(q.Owner.UserID)+")")
		}
	}

	query := "SELECT " + selectColumns + " FROM " + s.table
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, a.vals...)
	if err != nil {
		return nil, fmt.Errorf("query tweets: %w", err)
	}
	defer rows.Close()

	var tweets []domain.Tweet
	for rows.Next() {
		t, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		tweets = append(tweets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweets: %w", err)
	}
	return tweets, nil
}

func (s *sqlTable) scan(rows *sql.Rows) (domain.Tweet, error) {
	var (
		t          domain.Tweet
		customText sql.NullString
		rating     sql.NullInt64
		ownerID    sql.NullString
	)
	tagsDest, decodeTags := s.dialect.tagsDest()

	if err := rows.Scan(&t.ID, &t.Text, &customText, tagsDest, &rating,
		&t.IsFavorite, &t.Used, &t.IsActive, &ownerID); err != nil {
		return domain.Tweet{}, fmt.Errorf("scan tweet: %w", err)
	}

	tags, err := decodeTags()
	if err != nil {
		return domain.Tweet{}, fmt.Errorf("decode tags of tweet %s: %w", t.ID, err)
	}
	t.Tags = domain.NormalizeTags(tags)
	t.CustomText = customText.String
	t.OwnerID = ownerID.String
	if rating.Valid {
		t.Rating = domain.Int(int(rating.Int64))
	}
	return t, nil
}

func (s *sqlTable) updateTweet(ctx context.Context, id string, patch domain.TweetPatch) error {
	a := &args{d: s.dialect}
	var set []string

	if patch.Used != nil {
		set = append(set, "used = "+a.add(*patch.Used))
	}
	if patch.ClearRating {
		set = append(set, "rating = NULL")
	} else if patch.Rating != nil {
		set = append(set, "rating = "+a.add(*patch.Rating))
	}
	if patch.IsFavorite != nil {
		set = append(set, "is_favorite = "+a.add(*patch.IsFavorite))
	}
	if patch.CustomText != nil {
		set = append(set, "custom_text = "+a.add(nullString(*patch.CustomText)))
	}
	if patch.OwnerID != nil {
		set = append(set, "owner_id = "+a.add(nullString(*patch.OwnerID)))
	}
	if len(set) == 0 {
		return nil
	}

	query := "UPDATE " + s.table + " SET " + strings.Join(set, ", ") + " WHERE id = " + a.add(id)
	res, err := s.db.ExecContext(ctx, query, a.vals...)
	if err != nil {
		return fmt.Errorf("update tweet: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tweet: %w", err)
	}
	if n == 0 {
		return domain.ErrTweetNotFound
	}
	return nil
}

func (s *sqlTable) insert(ctx context.Context, tweets ...domain.Tweet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tweets {
		a := &args{d: s.dialect}
		tags, err := s.dialect.tagsValue(domain.NormalizeTags(t.Tags))
		if err != nil {
			return fmt.Errorf("encode tags of tweet %s: %w", t.ID, err)
		}
		var rating any
		if t.Rating != nil {
			rating = *t.Rating
		}

		values := []string{
			a.add(t.ID), a.add(t.Text), a.add(nullString(t.CustomText)), a.add(tags),
			a.add(rating), a.add(t.IsFavorite), a.add(t.Used), a.add(t.IsActive),
			a.add(nullString(t.OwnerID)),
		}
		query := "INSERT INTO " + s.table + " (" + selectColumns + ") VALUES (" + strings.Join(values, ", ") + ")"
		if _, err := tx.ExecContext(ctx, query, a.vals...); err != nil {
			return fmt.Errorf("insert tweet %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
