// Package fixtures provides tweet pools shared by tests.
package fixtures

import (
	"strconv"

	"tweet-suggester/internal/domain"
)

// ScenarioPool returns the two-tweet pool used by the suggestion
// walkthrough: a BITCOIN tweet rated 4 and a MEMES tweet rated 2.
func ScenarioPool() []domain.Tweet {
	return []domain.Tweet{
		{ID: "1", Text: "Stack sats", Tags: []string{"BITCOIN"}, Rating: domain.Int(4), IsActive: true},
		{ID: "2", Text: "Runes meme", Tags: []string{"MEMES"}, Rating: domain.Int(2), IsActive: true},
	}
}

// MixedPool returns tweets covering every flag combination the engine
// filters on: inactive, used, favorites, private to a user.
func MixedPool() []domain.Tweet {
	return []domain.Tweet{
		{ID: "1", Text: "Bitcoin fixes this", Tags: []string{"BITCOIN"}, Rating: domain.Int(5), IsFavorite: true, IsActive: true},
		{ID: "2", Text: "DeFi summer again", Tags: []string{"DEFI", "CRYPTO"}, Rating: domain.Int(3), IsActive: true},
		{ID: "3", Text: "Memes are culture", Tags: []string{"MEMES"}, IsActive: true},
		{ID: "4", Text: "Retired draft", Tags: []string{"BITCOIN"}, IsActive: false},
		{ID: "5", Text: "Already posted", Tags: []string{"MARKET"}, Used: true, IsActive: true},
		{ID: "6", Text: "Alice's private take", Tags: []string{"TRADING"}, Rating: domain.Int(4), IsActive: true, OwnerID: "alice"},
		{ID: "7", Text: "Bob's private take", Tags: []string{"TRADING"}, IsActive: true, OwnerID: "bob"},
		{ID: "8", Text: "Alice already used this", Tags: []string{"ADOPTION"}, Used: true, IsActive: true, OwnerID: "alice"},
	}
}

// Numbered returns n active public tweets with ids "1".."n".
func Numbered(n int) []domain.Tweet {
	tweets := make([]domain.Tweet, n)
	for i := range tweets {
		id := strconv.Itoa(i + 1)
		tweets[i] = domain.Tweet{ID: id, Text: "Tweet number " + id, Tags: []string{"CRYPTO"}, IsActive: true}
	}
	return tweets
}

// Alice is the user owning the private tweets of MixedPool.
func Alice() *domain.User {
	return &domain.User{ID: "alice", Email: "alice@example.com"}
}
