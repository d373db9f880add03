package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tweet-suggester/internal/domain"
)

// seedFile represents the YAML structure of a fixture file.
type seedFile struct {
	Tweets []struct {
		ID         string   `yaml:"id"`
		Text       string   `yaml:"text"`
		CustomText string   `yaml:"custom_text"`
		Tags       []string `yaml:"tags"`
		Rating     *int     `yaml:"rating"`
		IsFavorite bool     `yaml:"is_favorite"`
		Used       bool     `yaml:"used"`
		IsActive   *bool    `yaml:"is_active"`
		OwnerID    string   `yaml:"owner_id"`
	} `yaml:"tweets"`
}

// LoadSeed reads tweets from a YAML fixture file used to fill local stores.
// Tweets are active unless is_active is set to false.
func LoadSeed(path string) ([]domain.Tweet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML fixture document.
func ParseSeed(data []byte) ([]domain.Tweet, error) {
	var raw seedFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	tweets := make([]domain.Tweet, 0, len(raw.Tweets))
	for i, r := range raw.Tweets {
		if r.ID == "" || r.Text == "" {
			return nil, fmt.Errorf("parse seed: tweet #%d needs id and text", i+1)
		}
		if !domain.ValidRating(r.Rating) {
			return nil, fmt.Errorf("parse seed: tweet %s: %w", r.ID, domain.ErrInvalidRating)
		}
		active := true
		if r.IsActive != nil {
			active = *r.IsActive
		}
		tweets = append(tweets, domain.Tweet{
			ID:         r.ID,
			Text:       r.Text,
			CustomText: r.CustomText,
			Tags:       domain.NormalizeTags(r.Tags),
			Rating:     r.Rating,
			IsFavorite: r.IsFavorite,
			Used:       r.Used,
			IsActive:   active,
			OwnerID:    r.OwnerID,
		})
	}
	return tweets, nil
}
