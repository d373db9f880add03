package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"tweet-suggester/internal/domain"
	"tweet-suggester/pkg/log"
)

const (
	// CookieName holds the access token for browser sessions.
	CookieName = "access_token"

	userLocalsKey = "user"
)

// Middleware resolves the user from the Authorization header or the
// access token cookie. Requests without a valid token continue anonymously.
func Middleware(v *Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(CookieName)
		}
		if token == "" || !v.Enabled() {
			return c.Next()
		}

		user, err := v.Verify(token)
		if err != nil {
			log.GlobalWarnCtx(c.UserContext(), "ignoring invalid access token", "error", err)
			return c.Next()
		}

		c.Locals(userLocalsKey, user)
		c.SetUserContext(log.WithFields(c.UserContext(), "user_id", user.ID))
		return c.Next()
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserFrom(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": domain.ErrUnauthorized.Error(),
			})
		}
		return c.Next()
	}
}

// UserFrom returns the user resolved by Middleware, or nil.
func UserFrom(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(userLocalsKey).(*domain.User)
	return user
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
