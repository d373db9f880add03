package web

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"tweet-suggester/internal/adapters/auth"
	"tweet-suggester/pkg/log"
	"tweet-suggester/pkg/log/transporters"
	"tweet-suggester/test/fixtures"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// captureAccessLog installs a global logger writing into a buffer and
// returns a function that flushes it and decodes every entry.
func captureAccessLog(t *testing.T) func() []map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := log.New(log.Debug, transporters.NewStdoutWithWriter(&buf))
	log.SetDefault(logger)
	t.Cleanup(func() { log.SetDefault(nil) })

	return func() []map[string]any {
		logger.Close()
		var entries []map[string]any
		sc := bufio.NewScanner(&buf)
		for sc.Scan() {
			var e map[string]any
			if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
				t.Fatalf("log line %q is not JSON: %v", sc.Text(), err)
			}
			entries = append(entries, e)
		}
		return entries
	}
}

func accessEntry(t *testing.T, entries []map[string]any) map[string]any {
	t.Helper()
	for _, e := range entries {
		if e["msg"] == "request served" {
			return e
		}
	}
	t.Fatalf("no access log entry in %v", entries)
	return nil
}

func newLoggedApp() *fiber.App {
	app := fiber.New()
	app.Use(requestid.New(RequestIDConfig()))
	app.Use(RequestContextMiddleware())
	app.Use(AccessLogMiddleware())
	app.Use(auth.Middleware(auth.NewVerifier(testSecret)))
	return app
}

func TestRequestContextMiddleware_CarriesRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"generated", ""},
		{"provided by caller", "trace-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			app := newLoggedApp()
			var seen string
			app.Get("/", func(c *fiber.Ctx) error {
				seen = log.RequestIDFromContext(c.UserContext())
				return c.SendString("ok")
			})
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderXRequestID, tt.header)
			}

			// Act
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			resp.Body.Close()

			// Assert
			header := resp.Header.Get(fiber.HeaderXRequestID)
			if seen == "" || seen != header {
				t.Errorf("context id = %q, header = %q, want equal and non-empty", seen, header)
			}
			if tt.header != "" && seen != tt.header {
				t.Errorf("request id = %q, want the caller's %q", seen, tt.header)
			}
		})
	}
}

func TestAccessLogMiddleware_TagsSessionAndUser(t *testing.T) {
	// Arrange
	entries := captureAccessLog(t)
	app := newLoggedApp()
	site := app.Group("", SessionMiddleware())
	site.Get("/tweets/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })

	token, err := auth.IssueToken(testSecret, *fixtures.Alice(), time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	const sid = "0b6f3c1e-8f55-4d7a-9f0e-2f1b9c6e4a10"
	req := httptest.NewRequest("GET", "/tweets/42", nil)
	req.Header.Set(fiber.HeaderXRequestID, "trace-abc")
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	req.Header.Set("Cookie", SessionCookie+"="+sid)

	// Act
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()

	// Assert
	e := accessEntry(t, entries())
	want := map[string]any{
		"session_id": sid,
		"user_id":    fixtures.Alice().ID,
		"request_id": "trace-abc",
		"route":      "/tweets/:id",
		"path":       "/tweets/42",
		"method":     "GET",
		"status":     float64(200),
		"level":      "INFO",
	}
	for k, v := range want {
		if e[k] != v {
			t.Errorf("%s = %v, want %v", k, e[k], v)
		}
	}
}

func TestAccessLogMiddleware_AnonymousHasEmptyUser(t *testing.T) {
	entries := captureAccessLog(t)
	app := newLoggedApp()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()

	e := accessEntry(t, entries())
	if e["user_id"] != "" || e["session_id"] != "" {
		t.Errorf("user_id = %v, session_id = %v, want both empty", e["user_id"], e["session_id"])
	}
}

func TestAccessLogMiddleware_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		name       string
		handler    fiber.Handler
		wantStatus float64
		wantLevel  string
	}{
		{"ok", func(c *fiber.Ctx) error { return c.SendString("ok") }, 200, "INFO"},
		{"client error", func(c *fiber.Ctx) error { return c.Status(404).SendString("missing") }, 404, "WARN"},
		{"server error", func(c *fiber.Ctx) error { return c.Status(502).SendString("gateway") }, 502, "ERROR"},
		{"returned fiber error", func(c *fiber.Ctx) error { return fiber.ErrConflict }, 409, "WARN"},
		{"returned plain error", func(c *fiber.Ctx) error { return errors.New("boom") }, 500, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			entries := captureAccessLog(t)
			app := newLoggedApp()
			app.Get("/", tt.handler)

			// Act
			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			resp.Body.Close()

			// Assert
			e := accessEntry(t, entries())
			if e["status"] != tt.wantStatus || e["level"] != tt.wantLevel {
				t.Errorf("status = %v level = %v, want %v %v", e["status"], e["level"], tt.wantStatus, tt.wantLevel)
			}
		})
	}
}

func TestRateLimiter_AllowsBurstThenRejects(t *testing.T) {
	// Arrange
	rl := NewRateLimiter(1, 2)
	defer rl.Close()

	// Act & Assert
	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("burst of 2 should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request within the same second should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other IPs have their own bucket")
	}
}

func TestRateLimiter_DisabledWhenPerMinuteIsZero(t *testing.T) {
	rl := NewRateLimiter(0, 1)
	defer rl.Close()

	for i := 0; i < 100; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d rejected, limiter should be disabled", i)
		}
	}
}

func TestRateLimiter_MiddlewareOnlyLimitsMutations(t *testing.T) {
	// Arrange
	rl := NewRateLimiter(1, 1)
	defer rl.Close()

	app := fiber.New()
	app.Use(rl.Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Post("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	// Act
	codes := make([]int, 0, 4)
	for _, method := range []string{"POST", "POST", "GET", "GET"} {
		resp, err := app.Test(httptest.NewRequest(method, "/", nil))
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	// Assert
	want := []int{200, 429, 200, 200}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}
}

func TestRateLimiter_SweepForgetsIdleClients(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	defer rl.Close()
	rl.Allow("1.2.3.4")

	rl.sweep(time.Now().Add(time.Hour))

	rl.mu.Lock()
	n := len(rl.clients)
	rl.mu.Unlock()
	if n != 0 {
		t.Errorf("clients = %d, want 0 after sweep", n)
	}
}

func TestSessionMiddleware_AssignsAndReusesID(t *testing.T) {
	// Arrange
	app := fiber.New()
	app.Use(SessionMiddleware())
	var seen string
	app.Get("/", func(c *fiber.Ctx) error {
		seen = SessionID(c)
		return c.SendString("ok")
	})

	// Act: first visit gets a new cookie
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()

	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			cookie = c.Value
		}
	}

	// Assert
	if cookie == "" || cookie != seen {
		t.Fatalf("cookie = %q, session id = %q, want equal and non-empty", cookie, seen)
	}

	// Act: second visit reuses it
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", SessionCookie+"="+cookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()

	if seen != cookie {
		t.Errorf("session id = %q, want reused %q", seen, cookie)
	}
	if len(resp.Cookies()) != 0 {
		t.Error("an existing session should not be re-issued")
	}
}

func TestSessionMiddleware_ReplacesInvalidID(t *testing.T) {
	app := fiber.New()
	app.Use(SessionMiddleware())
	var seen string
	app.Get("/", func(c *fiber.Ctx) error {
		seen = SessionID(c)
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", SessionCookie+"=../../etc/passwd")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()

	if seen == "../../etc/passwd" || seen == "" {
		t.Errorf("session id = %q, want a fresh uuid", seen)
	}
}

func TestRateLimiter_RejectsWithJSONError(t *testing.T) {
	// Arrange
	rl := NewRateLimiter(1, 1)
	defer rl.Close()
	app := fiber.New()
	app.Use(rl.Middleware())
	app.Post("/tweets/1/used", func(c *fiber.Ctx) error { return c.SendString("ok") })

	first, err := app.Test(httptest.NewRequest("POST", "/tweets/1/used", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	first.Body.Close()

	// Act
	resp, err := app.Test(httptest.NewRequest("POST", "/tweets/1/used", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	// Assert
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "rate limit exceeded" {
		t.Errorf("error = %q, want %q", body["error"], "rate limit exceeded")
	}
}
