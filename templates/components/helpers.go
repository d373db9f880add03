// Package components contains the reusable templ components of the page.
//
// Edit the .templ sources and run `templ generate`; the _templ.go files
// are generated output.
package components

import (
	"github.com/a-h/templ"

	"tweet-suggester/internal/domain"
)

func tweetURL(id, action string) templ.SafeURL {
	return templ.URL("/tweets/" + id + "/" + action)
}

func showStatus(s domain.Status) bool {
	return s.Kind != "" && s.Kind != domain.StatusIdle && s.Message != ""
}

func displayName(u *domain.User) string {
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

func starOn(current *int, r int) bool {
	return current != nil && r <= *current
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
