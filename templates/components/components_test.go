package components

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"tweet-suggester/internal/domain"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestTweetCard_Display(t *testing.T) {
	tweet := domain.Tweet{
		ID:         "7",
		Text:       "Stack sats",
		CustomText: "Stack <b>sats</b> daily",
		Tags:       []string{"bitcoin"},
		Rating:     domain.Int(3),
		IsFavorite: true,
	}

	html := renderString(t, TweetCard(tweet, domain.EditState{}))

	for _, want := range []string{
		`id="tweet-7"`,
		"Stack &lt;b&gt;sats&lt;/b&gt; daily",
		"Original: Stack sats",
		"<li>BITCOIN</li>",
		`action="/tweets/7/used"`,
		`action="/tweets/7/edit"`,
		`class="favorite on"`,
		`value="false"`,
		"intent/tweet?text=Stack%20%3Cb%3Esats%3C%2Fb%3E%20daily",
		`class="clear"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("card missing %q\n%s", want, html)
		}
	}
	if n := strings.Count(html, `class="star on"`); n != 3 {
		t.Errorf("lit stars = %d, want 3", n)
	}
	if strings.Contains(html, "<b>") {
		t.Error("custom text must be escaped")
	}
}

func TestTweetCard_EditMode(t *testing.T) {
	tweet := domain.Tweet{ID: "7", Text: "Stack sats"}

	html := renderString(t, TweetCard(tweet, domain.EditState{TweetID: "7", Draft: "draft & more"}))

	if !strings.Contains(html, "<textarea") || !strings.Contains(html, "draft &amp; more") {
		t.Errorf("edit form missing draft\n%s", html)
	}
	if !strings.Contains(html, `action="/tweets/7/edit/save"`) || !strings.Contains(html, `action="/tweets/7/edit/cancel"`) {
		t.Errorf("edit form missing save/cancel\n%s", html)
	}
	if strings.Contains(html, `action="/tweets/7/edit"`) || strings.Contains(html, `class="clear"`) {
		t.Errorf("edit button or clear rating should be hidden\n%s", html)
	}
}

func TestFilterBar_ReflectsSelection(t *testing.T) {
	f := domain.Filters{Tags: []string{"MEMES"}, Ratings: []int{4}, FavoritesOnly: true, Search: `"gm"`}

	html := renderString(t, FilterBar([]string{"BITCOIN", "MEMES"}, f))

	for _, want := range []string{
		`value="MEMES" checked`,
		`value="4" checked`,
		`value="true" checked`,
		`value="&#34;gm&#34;"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("filter bar missing %q\n%s", want, html)
		}
	}
	if strings.Contains(html, `value="BITCOIN" checked`) {
		t.Error("unselected tag rendered as checked")
	}
}

func TestStatusBanner(t *testing.T) {
	tests := []struct {
		name   string
		status domain.Status
		want   string
	}{
		{"idle renders nothing", domain.Status{Kind: domain.StatusIdle, Message: "x"}, ""},
		{"no message renders nothing", domain.Status{Kind: domain.StatusLoaded}, ""},
		{"kind becomes a class", domain.Status{Kind: domain.StatusFetchFailed, Message: "down"}, "status-fetch_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := renderString(t, StatusBanner(tt.status))
			if tt.want == "" && html != "" {
				t.Errorf("html = %q, want empty", html)
			}
			if tt.want != "" && !strings.Contains(html, tt.want) {
				t.Errorf("html = %q, want to contain %q", html, tt.want)
			}
		})
	}
}

func TestUserBar(t *testing.T) {
	if html := renderString(t, UserBar(nil)); !strings.Contains(html, "Browsing public tweets") {
		t.Errorf("anonymous bar = %q", html)
	}
	if html := renderString(t, UserBar(&domain.User{ID: "bob"})); !strings.Contains(html, "<strong>bob</strong>") {
		t.Errorf("user without email should show the id, got %q", html)
	}
}

func TestUsedList_EmptyRendersNothing(t *testing.T) {
	if html := renderString(t, UsedList(nil)); html != "" {
		t.Errorf("html = %q, want empty", html)
	}
}
