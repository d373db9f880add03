package auth

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"tweet-suggester/internal/domain"
)

const testSecret = "test-secret"

func TestVerify_ValidToken_ReturnsUser(t *testing.T) {
	// Arrange
	token, err := IssueToken(testSecret, domain.User{ID: "u-1", Email: "a@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	// Act
	user, err := NewVerifier(testSecret).Verify(token)

	// Assert
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if user.ID != "u-1" || user.Email != "a@example.com" {
		t.Errorf("user = %+v", user)
	}
}

func TestVerify_Rejects(t *testing.T) {
	expired, _ := IssueToken(testSecret, domain.User{ID: "u-1"}, -time.Minute)
	wrongSecret, _ := IssueToken("other", domain.User{ID: "u-1"}, time.Hour)
	noSubject, _ := IssueToken(testSecret, domain.User{}, time.Hour)
	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u-1"}).
		SignedString([]byte(testSecret))
	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))

	tests := map[string]string{
		"expired":      expired,
		"wrong secret": wrongSecret,
		"no subject":   noSubject,
		"no expiry":    noExpiry,
		"wrong alg":    wrongAlg,
		"garbage":      "not.a.jwt",
	}

	v := NewVerifier(testSecret)
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestVerifier_DisabledWithoutSecret(t *testing.T) {
	v := NewVerifier("")

	if v.Enabled() {
		t.Error("Enabled() = true without a secret")
	}
	if _, err := v.Verify("anything"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func newAuthApp(v *Verifier, guard bool) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(v))
	if guard {
		app.Use(RequireUser())
	}
	app.Get("/", func(c *fiber.Ctx) error {
		if u := UserFrom(c); u != nil {
			return c.SendString(u.ID)
		}
		return c.SendString("anonymous")
	})
	return app
}

func do(t *testing.T, app *fiber.App, headers map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func TestMiddleware_ResolvesUser(t *testing.T) {
	token, _ := IssueToken(testSecret, domain.User{ID: "u-1"}, time.Hour)
	app := newAuthApp(NewVerifier(testSecret), false)

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"bearer header", map[string]string{"Authorization": "Bearer " + token}, "u-1"},
		{"lowercase bearer", map[string]string{"Authorization": "bearer " + token}, "u-1"},
		{"cookie", map[string]string{"Cookie": CookieName + "=" + token}, "u-1"},
		{"no token", map[string]string{}, "anonymous"},
		{"invalid token", map[string]string{"Authorization": "Bearer nope"}, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, got := do(t, app, tt.headers)

			if status != fiber.StatusOK || got != tt.want {
				t.Errorf("got %d %q, want 200 %q", status, got, tt.want)
			}
		})
	}
}

func TestRequireUser_RejectsAnonymous(t *testing.T) {
	app := newAuthApp(NewVerifier(testSecret), true)

	status, got := do(t, app, nil)

	if status != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401 (%s)", status, got)
	}
}
