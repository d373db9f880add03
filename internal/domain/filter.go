package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Filters is the user's current filter selection.
// All active filters combine with AND.
type Filters struct {
	Tags          []string `json:"tags"`
	Ratings       []int    `json:"ratings"`
	FavoritesOnly bool     `json:"favorites_only"`
	Search        string   `json:"search"`
}

// Normalize returns a canonical copy: uppercase sorted tags, sorted
// in-range ratings without duplicates. A blank search term becomes empty;
// any other term is kept as typed.
func (f Filters) Normalize() Filters {
	tags := NormalizeTags(f.Tags)
	sort.Strings(tags)

	ratings := make([]int, 0, len(f.Ratings))
	seen := make(map[int]struct{}, len(f.Ratings))
	for _, r := range f.Ratings {
		if r < MinRating || r > MaxRating {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		ratings = append(ratings, r)
	}
	sort.Ints(ratings)

	return Filters{
		Tags:          tags,
		Ratings:       ratings,
		FavoritesOnly: f.FavoritesOnly,
		Search:        searchTerm(f.Search),
	}
}

func searchTerm(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// Key returns a canonical fingerprint of the selection. Two selections
// with the same key produce the same filtered pool.
func (f Filters) Key() string {
	n := f.Normalize()

	var b strings.Builder
	b.WriteString("tags=")
	b.WriteString(strings.Join(n.Tags, ","))
	b.WriteString(";ratings=")
	for i, r := range n.Ratings {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(r))
	}
	b.WriteString(";fav=")
	b.WriteString(strconv.FormatBool(n.FavoritesOnly))
	b.WriteString(";q=")
	b.WriteString(strings.ToLower(n.Search))
	return b.String()
}

// Match reports whether t satisfies every active filter.
// f must be normalized.
func (f Filters) Match(t Tweet) bool {
	if len(f.Tags) > 0 && !t.HasAnyTag(f.Tags) {
		return false
	}
	if len(f.Ratings) > 0 && !ratingIn(t.Rating, f.Ratings) {
		return false
	}
	if f.FavoritesOnly && !t.IsFavorite {
		return false
	}
	if f.Search != "" &&
		!strings.Contains(strings.ToLower(t.DisplayText()), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func ratingIn(r *int, ratings []int) bool {
	if r == nil {
		return false
	}
	for _, want := range ratings {
		if *r == want {
			return true
		}
	}
	return false
}

// ApplyFilters keeps the tweets visible to u that match every active filter.
// The input order is preserved.
func ApplyFilters(pool []Tweet, f Filters, u *User) []Tweet {
	f = f.Normalize()
	out := make([]Tweet, 0, len(pool))
	for _, t := range pool {
		if t.VisibleTo(u) && f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
