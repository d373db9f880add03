package store

import (
	"context"
	"errors"
	"testing"

	"tweet-suggester/internal/domain"
	"tweet-suggester/internal/usecases"
	"tweet-suggester/test/fixtures"
)

// gateway is the store surface shared by every adapter under test.
type gateway interface {
	usecases.TweetStore
}

// runGatewayContract exercises the behaviour every tweet store must share.
func runGatewayContract(t *testing.T, newStore func(t *testing.T, seed []domain.Tweet) gateway) {
	ctx := context.Background()

	t.Run("suggestion query honours visibility", func(t *testing.T) {
		s := newStore(t, fixtures.MixedPool())

		anon, err := s.QueryTweets(ctx, domain.SuggestionQuery(nil))
		if err != nil {
			t.Fatalf("QueryTweets() error = %v", err)
		}
		alice, err := s.QueryTweets(ctx, domain.SuggestionQuery(fixtures.Alice()))
		if err != nil {
			t.Fatalf("QueryTweets() error = %v", err)
		}

		assertIDs(t, anon, "1", "2", "3")
		assertIDs(t, alice, "1", "2", "3", "6")
	})

	t.Run("used query", func(t *testing.T) {
		s := newStore(t, fixtures.MixedPool())

		used, err := s.QueryTweets(ctx, domain.UsedQuery(fixtures.Alice()))
		if err != nil {
			t.Fatalf("QueryTweets() error = %v", err)
		}

		assertIDs(t, used, "5", "8")
	})

	t.Run("fields round trip", func(t *testing.T) {
		s := newStore(t, fixtures.MixedPool())

		all, err := s.QueryTweets(ctx, domain.TweetQuery{})
		if err != nil {
			t.Fatalf("QueryTweets() error = %v", err)
		}
		var first domain.Tweet
		for _, tw := range all {
			if tw.ID == "1" {
				first = tw
			}
		}
		if first.Text != "Bitcoin fixes this" || first.Rating == nil || *first.Rating != 5 ||
			!first.IsFavorite || !first.IsActive || len(first.Tags) != 1 || first.Tags[0] != "BITCOIN" {
			t.Errorf("tweet 1 = %+v", first)
		}
	})

	t.Run("update applies patch", func(t *testing.T) {
		s := newStore(t, fixtures.ScenarioPool())

		err := s.UpdateTweet(ctx, "2", domain.TweetPatch{
			Rating:     domain.Int(5),
			IsFavorite: domain.Bool(true),
			CustomText: domain.String("Hello"),
			OwnerID:    domain.String("alice"),
		})
		if err != nil {
			t.Fatalf("UpdateTweet() error = %v", err)
		}

		got := find(t, s, "2")
		if got.Rating == nil || *got.Rating != 5 || !got.IsFavorite || got.CustomText != "Hello" || got.OwnerID != "alice" {
			t.Errorf("tweet 2 = %+v", got)
		}
	})

	t.Run("clear rating and custom text", func(t *testing.T) {
		s := newStore(t, fixtures.ScenarioPool())
		s.UpdateTweet(ctx, "1", domain.TweetPatch{CustomText: domain.String("x")})

		err := s.UpdateTweet(ctx, "1", domain.TweetPatch{ClearRating: true, CustomText: domain.String("")})
		if err != nil {
			t.Fatalf("UpdateTweet() error = %v", err)
		}

		got := find(t, s, "1")
		if got.Rating != nil || got.CustomText != "" {
			t.Errorf("tweet 1 = %+v, want rating and custom text cleared", got)
		}
	})

	t.Run("mark used hides from suggestions", func(t *testing.T) {
		s := newStore(t, fixtures.ScenarioPool())

		if err := s.UpdateTweet(ctx, "1", domain.TweetPatch{Used: domain.Bool(true)}); err != nil {
			t.Fatalf("UpdateTweet() error = %v", err)
		}

		visible, _ := s.QueryTweets(ctx, domain.SuggestionQuery(nil))
		assertIDs(t, visible, "2")
	})

	t.Run("unknown id", func(t *testing.T) {
		s := newStore(t, fixtures.ScenarioPool())

		err := s.UpdateTweet(ctx, "404", domain.TweetPatch{Used: domain.Bool(true)})
		if !errors.Is(err, domain.ErrTweetNotFound) {
			t.Errorf("UpdateTweet() error = %v, want ErrTweetNotFound", err)
		}
	})
}

func find(t *testing.T, s gateway, id string) domain.Tweet {
	t.Helper()
	all, err := s.QueryTweets(context.Background(), domain.TweetQuery{})
	if err != nil {
		t.Fatalf("QueryTweets() error = %v", err)
	}
	for _, tw := range all {
		if tw.ID == id {
			return tw
		}
	}
	t.Fatalf("tweet %s not found", id)
	return domain.Tweet{}
}

func assertIDs(t *testing.T, tweets []domain.Tweet, want ...string) {
	t.Helper()
	if len(tweets) != len(want) {
		t.Fatalf("got %d tweets %v, want %v", len(tweets), tweetIDs(tweets), want)
	}
	for i, id := range want {
		if tweets[i].ID != id {
			t.Errorf("tweet[%d] = %s, want %s", i, tweets[i].ID, id)
		}
	}
}

func tweetIDs(tweets []domain.Tweet) []string {
	out := make([]string, len(tweets))
	for i, t := range tweets {
		out[i] = t.ID
	}
	return out
}

func TestMemory_Contract(t *testing.T) {
	runGatewayContract(t, func(t *testing.T, seed []domain.Tweet) gateway {
		return NewMemory(seed...)
	})
}

func TestMemory_HonoursCancelledContext(t *testing.T) {
	s := NewMemory(fixtures.ScenarioPool()...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.QueryTweets(ctx, domain.TweetQuery{}); !errors.Is(err, context.Canceled) {
		t.Errorf("QueryTweets() error = %v, want context.Canceled", err)
	}
}

func TestMemory_Tags(t *testing.T) {
	s := NewMemory(fixtures.MixedPool()...)

	got := s.Tags()

	want := []string{"ADOPTION", "BITCOIN", "CRYPTO", "DEFI", "MARKET", "MEMES", "TRADING"}
	if len(got) != len(want) {
		t.Fatalf("Tags() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tags()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSQLite_Contract(t *testing.T) {
	runGatewayContract(t, func(t *testing.T, seed []domain.Tweet) gateway {
		s, err := NewSQLite(":memory:")
		if err != nil {
			t.Fatalf("NewSQLite() error = %v", err)
		}
		t.Cleanup(func() { s.Close() })
		if err := s.Insert(context.Background(), seed...); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		return s
	})
}

func TestSQLite_DuplicateInsertRollsBack(t *testing.T) {
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	pool := fixtures.ScenarioPool()
	err = s.Insert(ctx, pool[0], pool[1], pool[0])

	if err == nil {
		t.Fatal("Insert() with duplicate id should fail")
	}
	all, _ := s.QueryTweets(ctx, domain.TweetQuery{})
	if len(all) != 0 {
		t.Errorf("rows = %d, want 0 after rollback", len(all))
	}
}

func TestParseSeed(t *testing.T) {
	data := []byte(`
tweets:
  - id: "1"
    text: "hello"
    tags: [bitcoin, Memes]
    rating: 4
  - id: "2"
    text: "retired"
    is_active: false
`)

	tweets, err := ParseSeed(data)

	if err != nil {
		t.Fatalf("ParseSeed() error = %v", err)
	}
	if len(tweets) != 2 {
		t.Fatalf("len = %d, want 2", len(tweets))
	}
	if !tweets[0].IsActive || tweets[1].IsActive {
		t.Error("is_active should default to true and honour false")
	}
	if tweets[0].Tags[0] != "BITCOIN" || tweets[0].Tags[1] != "MEMES" {
		t.Errorf("tags = %v, want normalized", tweets[0].Tags)
	}
}

func TestParseSeed_Rejects(t *testing.T) {
	tests := map[string]string{
		"missing text":   "tweets:\n  - id: \"1\"\n",
		"bad rating":     "tweets:\n  - id: \"1\"\n    text: x\n    rating: 7\n",
		"not yaml lists": "tweets: 3\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseSeed([]byte(doc)); err == nil {
				t.Error("ParseSeed() error = nil, want error")
			}
		})
	}
}

func TestLoadSeed_RepositoryFixture(t *testing.T) {
	tweets, err := LoadSeed("../../../config/seed.yaml")

	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}
	if len(tweets) == 0 {
		t.Fatal("seed file should not be empty")
	}
}
