// Package domain contains the core business entities and rules.
package domain

import (
	"net/url"
	"strings"
)

// ShareIntentURL is the Twitter/X compose endpoint used to publish a draft.
const ShareIntentURL = "https://twitter.com/intent/tweet"

const (
	MinRating = 1
	MaxRating = 5
)

// Tweet is a stored tweet draft.
type Tweet struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	CustomText string   `json:"custom_text,omitempty"` // User override, empty until edited
	Tags       []string `json:"tags"`
	Rating     *int     `json:"rating"` // nil means unrated
	IsFavorite bool     `json:"is_favorite"`
	Used       bool     `json:"used"`
	IsActive   bool     `json:"is_active"`
	OwnerID    string   `json:"owner_id,omitempty"` // Empty means public
}

// User is the acting user as supplied by the auth collaborator.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// UserID returns the id of u, or "" for anonymous mode.
func UserID(u *User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

// DisplayText returns the text shown and shared for the tweet: the custom
// text when one is set, the original text otherwise.
func (t Tweet) DisplayText() string {
	if t.CustomText != "" {
		return t.CustomText
	}
	return t.Text
}

// ShareURL returns the share intent link carrying the display text.
// Spaces are encoded as %20 so the link matches what browsers produce.
func (t Tweet) ShareURL() string {
	escaped := strings.ReplaceAll(url.QueryEscape(t.DisplayText()), "+", "%20")
	return ShareIntentURL + "?text=" + escaped
}

// VisibleTo reports whether the tweet may be offered to the given user.
func (t Tweet) VisibleTo(u *User) bool {
	if !t.IsActive || t.Used {
		return false
	}
	return t.OwnedBy(u)
}

// OwnedBy reports whether the tweet is public or belongs to u.
func (t Tweet) OwnedBy(u *User) bool {
	return t.OwnerID == "" || t.OwnerID == UserID(u)
}

// HasAnyTag reports whether the tweet carries any of the given canonical tags.
func (t Tweet) HasAnyTag(tags []string) bool {
	for _, have := range t.Tags {
		canonical := strings.ToUpper(strings.TrimSpace(have))
		for _, want := range tags {
			if canonical == want {
				return true
			}
		}
	}
	return false
}

// ValidRating reports whether r is nil or within [MinRating, MaxRating].
func ValidRating(r *int) bool {
	return r == nil || (*r >= MinRating && *r <= MaxRating)
}

// NormalizeTags uppercases, trims and dedupes tags, dropping blanks.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToUpper(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// TweetPatch is a partial update applied by the store gateway.
// Nil fields are left untouched.
type TweetPatch struct {
	Used        *bool
	Rating      *int
	ClearRating bool
	IsFavorite  *bool
	CustomText  *string
	OwnerID     *string
}

// IsEmpty reports whether the patch changes nothing.
func (p TweetPatch) IsEmpty() bool {
	return p.Used == nil && p.Rating == nil && !p.ClearRating &&
		p.IsFavorite == nil && p.CustomText == nil && p.OwnerID == nil
}

// Apply returns a copy of t with the patch applied.
func (p TweetPatch) Apply(t Tweet) Tweet {
	if p.Used != nil {
		t.Used = *p.Used
	}
	if p.ClearRating {
		t.Rating = nil
	} else if p.Rating != nil {
		r := *p.Rating
		t.Rating = &r
	}
	if p.IsFavorite != nil {
		t.IsFavorite = *p.IsFavorite
	}
	if p.CustomText != nil {
		t.CustomText = *p.CustomText
	}
	if p.OwnerID != nil {
		t.OwnerID = *p.OwnerID
	}
	return t
}

// TweetQuery selects rows from the store gateway.
// Nil fields do not constrain the query.
type TweetQuery struct {
	Used     *bool
	IsActive *bool
	Owner    *OwnerScope
}

// OwnerScope restricts rows to public ones plus those owned by UserID.
// An empty UserID matches public rows only.
type OwnerScope struct {
	UserID string
}

// Matches reports whether t satisfies the query.
func (q TweetQuery) Matches(t Tweet) bool {
	if q.Used != nil && t.Used != *q.Used {
		return false
	}
	if q.IsActive != nil && t.IsActive != *q.IsActive {
		return false
	}
	if q.Owner != nil && t.OwnerID != "" && t.OwnerID != q.Owner.UserID {
		return false
	}
	return true
}

// SuggestionQuery returns the query for the visibility invariant of u.
func SuggestionQuery(u *User) TweetQuery {
	return TweetQuery{
		Used:     Bool(false),
		IsActive: Bool(true),
		Owner:    &OwnerScope{UserID: UserID(u)},
	}
}

// UsedQuery returns the query for tweets already consumed and visible to u.
func UsedQuery(u *User) TweetQuery {
	return TweetQuery{
		Used:  Bool(true),
		Owner: &OwnerScope{UserID: UserID(u)},
	}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i.
func Int(i int) *int { return &i }

// String returns a pointer to s.
func String(s string) *string { return &s }
