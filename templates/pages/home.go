// Package pages contains the full-page templ components.
package pages

import "tweet-suggester/internal/domain"

// HomeData is the view model of the main page.
type HomeData struct {
	State        *domain.State
	Tags         []string
	User         *domain.User
	LoginMissing bool // auth is required and no user resolved
}
