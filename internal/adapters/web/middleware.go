package web

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"tweet-suggester/internal/adapters/auth"
	"tweet-suggester/internal/domain"
	"tweet-suggester/pkg/log"
)

// SessionCookie holds the id of the visitor's engine session.
const SessionCookie = "sid"

const sessionLocalsKey = "sid"

// RateLimiter throttles mutating requests per client IP with a token bucket.
type RateLimiter struct {
	clients map[string]*client
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idle    time.Duration
	stop    chan struct{}
	once    sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per IP with the given burst.
// A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   rate.Inf,
		burst:   burst,
		idle:    10 * time.Minute,
		stop:    make(chan struct{}),
	}
	if perMinute > 0 {
		rl.limit = rate.Limit(float64(perMinute) / 60)
	}
	go rl.cleanup(5 * time.Minute)
	return rl
}

// Allow reports whether ip may make another request now.
func (rl *RateLimiter) Allow(ip string) bool {
	if rl.limit == rate.Inf {
		return true
	}

	rl.mu.Lock()
	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()

	return c.limiter.Allow()
}

// Middleware returns a Fiber middleware rejecting mutating requests over
// the limit with 429. Reads are never limited.
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		if !rl.Allow(c.IP()) {
			log.GlobalWarnCtx(c.UserContext(), "rate limit exceeded", "ip", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": domain.ErrRateLimited.Error(),
			})
		}
		return c.Next()
	}
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

// cleanup periodically forgets clients that have been idle.
func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.sweep(now)
		}
	}
}

func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.idle {
			delete(rl.clients, ip)
		}
	}
}

// SessionMiddleware assigns every visitor a session id cookie.
// Ids that are not UUIDs are replaced.
func SessionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(SessionCookie)
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    sid,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(sessionLocalsKey, sid)
		return c.Next()
	}
}

// SessionID returns the id assigned by SessionMiddleware.
func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionLocalsKey).(string)
	return sid
}

const requestIDLocalsKey = "requestid"

// RequestIDConfig reuses the caller's X-Request-ID or issues a UUID.
func RequestIDConfig() requestid.Config {
	return requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: requestIDLocalsKey,
	}
}

// RequestContextMiddleware carries the request id into the user context
// read by the engine's loggers. It runs after requestid.New.
func RequestContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(requestIDLocalsKey).(string); ok && id != "" {
			c.SetUserContext(log.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// AccessLogMiddleware writes one entry per request, tagged with the
// visitor's session and user. 5xx log at error level, 4xx at warn.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		sid := SessionID(c)
		if sid == "" {
			sid = c.Cookies(SessionCookie)
		}
		fields := []any{
			"method", c.Method(),
			"route", c.Route().Path,
			"path", c.Path(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"session_id", sid,
			"user_id", domain.UserID(auth.UserFrom(c)),
			"ip", c.IP(),
		}
		if err != nil {
			fields = append(fields, "error", err)
		}

		ctx := c.UserContext()
		switch {
		case status >= fiber.StatusInternalServerError:
			log.GlobalErrorCtx(ctx, "request served", fields...)
		case status >= fiber.StatusBadRequest:
			log.GlobalWarnCtx(ctx, "request served", fields...)
		default:
			log.GlobalInfoCtx(ctx, "request served", fields...)
		}
		return err
	}
}
