package web

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"tweet-suggester/internal/adapters/auth"
	"tweet-suggester/internal/domain"
	"tweet-suggester/internal/usecases"
	"tweet-suggester/pkg/log"
	"tweet-suggester/templates/pages"
)

// TagSource provides the tag catalogue shown as filter buttons.
type TagSource interface {
	Tags() []string
}

// Handlers contains the HTTP handlers for the web application.
type Handlers struct {
	engine       *usecases.SuggestionEngine
	tags         TagSource
	validate     *validator.Validate
	authRequired bool
	timeout      time.Duration
}

// HandlersConfig holds the optional knobs of Handlers.
type HandlersConfig struct {
	AuthRequired   bool
	RequestTimeout time.Duration
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(engine *usecases.SuggestionEngine, tags TagSource, cfg HandlersConfig) *Handlers {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Handlers{
		engine:       engine,
		tags:         tags,
		validate:     validator.New(),
		authRequired: cfg.AuthRequired,
		timeout:      cfg.RequestTimeout,
	}
}

// render is a helper to render templ components with the status already
// set on the response.
func render(c *fiber.Ctx, component templ.Component) error {
	c.Set("Content-Type", "text/html")
	status := c.Response().StatusCode()
	return adaptor.HTTPHandler(templ.Handler(component, templ.WithStatus(status)))(c)
}

func (h *Handlers) context(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.timeout)
}

// Home renders the suggester page. A new session gets its first draw and
// used list loaded before rendering.
func (h *Handlers) Home(c *fiber.Ctx) error {
	user := auth.UserFrom(c)
	if h.authRequired && user == nil {
		c.Status(fiber.StatusUnauthorized)
		return render(c, pages.Home(pages.HomeData{Tags: h.tags.Tags(), LoginMissing: true}))
	}

	ctx, cancel := h.context(c)
	defer cancel()
	sid := SessionID(c)

	st, err := h.engine.State(ctx, sid)
	if err != nil {
		log.GlobalErrorCtx(ctx, "load session failed", "error", err)
		return h.renderError(c, err)
	}

	if st.Status.Kind == domain.StatusIdle {
		if next, err := h.engine.UsedTweets(ctx, sid, user); next != nil {
			st = next
		} else if err != nil {
			return h.renderError(c, err)
		}
		if next, err := h.engine.RefreshSuggestions(ctx, sid, st.Filters, user); next != nil {
			st = next
		} else if err != nil {
			return h.renderError(c, err)
		}
	}

	return render(c, pages.Home(pages.HomeData{State: st, Tags: h.tags.Tags(), User: user}))
}

// SubmitFilters applies the filter form and draws new suggestions.
func (h *Handlers) SubmitFilters(c *fiber.Ctx) error {
	req := filtersRequest{
		Tags:          formValues(c, "tags"),
		FavoritesOnly: c.FormValue("favorites_only") == "true",
		Search:        c.FormValue("search"),
	}
	for _, v := range formValues(c, "ratings") {
		r, err := strconv.Atoi(v)
		if err != nil {
			return h.renderError(c, domain.ErrInvalidRating)
		}
		req.Ratings = append(req.Ratings, r)
	}
	if err := h.validate.Struct(req); err != nil {
		return h.renderError(c, errInvalidRequest)
	}

	return h.formAction(c, func(ctx context.Context, sid string, user *domain.User) (*domain.State, error) {
		return h.engine.RefreshSuggestions(ctx, sid, req.filters(), user)
	})
}

// SubmitRegenerate draws a new sample with the current filters.
func (h *Handlers) SubmitRegenerate(c *fiber.Ctx) error {
	return h.formAction(c, func(ctx context.Context, sid string, user *domain.User) (*domain.State, error) {
		return h.engine.Regenerate(ctx, sid, user)
	})
}

// SubmitMarkUsed marks a suggestion as used.
func (h *Handlers) SubmitMarkUsed(c *fiber.Ctx) error {
	id := c.Params("id")
	return h.formAction(c, func(ctx context.Context, sid string, user *domain.User) (*domain.State, error) {
		return h.engine.MarkUsed(ctx, sid, id, user)
	})
}

// SubmitRating sets or clears (empty value) the rating of a tweet.
func (h *Handlers) SubmitRating(c *fiber.Ctx) error {
	id := c.Params("id")
	var rating *int
	if v := c.FormValue("rating"); v != "" {
		r, err := strconv.Atoi(v)
		if err != nil {
			return h.renderError(c, domain.ErrInvalidRating)
		}
		rating = &r
	}
	return h.formAction(c, func(ctx context.Context, sid string, user *domain.User) (*domain.State, error) {
		return h.engine.SetRating(ctx, sid, id, rating, user)
	})
}

// SubmitFavorite sets the favorite flag of a tweet.
func (h *Handlers) SubmitFavorite(c *fiber.Ctx) error {
	id := c.Params("id")
	favorite := c.FormValue("favorite") == "true"
	return h.formAction(c, func(ctx context.Context, sid string, user *domain.User) (*domain.State, error) {
		return h.engine.SetFavorite(ctx, sid, id, favorite, user)
	})
}

// SubmitBeginEdit puts a tweet in edit mode.
func (h *Handlers) SubmitBeginEdit(c *fiber.Ctx) error {
	id := c.Params("id")
	return h.formAction(c, func(ctx context.Context, sid string, _ *domain.User) (*domain.State, error) {
		return h.engine.BeginEdit(ctx, sid, id)
	})
}

// SubmitCancelEdit leaves edit mode without saving.
func (h *Handlers) SubmitCancelEdit(c *fiber.Ctx) error {
	return h.formAction(c, func(ctx context.Context, sid string, _ *domain.User) (*domain.State, error) {
		return h.engine.CancelEdit(ctx, sid)
	})
}

// SubmitSaveEdit persists the edited text as the tweet's custom text.
func (h *Handlers) SubmitSaveEdit(c *fiber.Ctx) error {
	id := c.Params("id")
	req := draftRequest{Text: c.FormValue("text")}
	if err := h.validate.Struct(req); err != nil {
		return h.renderError(c, errInvalidRequest)
	}
	return h.formAction(c, func(ctx context.Context, sid string, user *domain.User) (*domain.State, error) {
		return h.engine.SaveEdit(ctx, sid, id, req.Text, user)
	})
}

// Logout forgets the session and drops the auth and session cookies.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.engine.EndSession(ctx, SessionID(c)); err != nil {
		log.GlobalErrorCtx(ctx, "end session failed", "error", err)
	}
	c.ClearCookie(auth.CookieName, SessionCookie)

	if wantsJSON(c) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Health reports liveness.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type action func(ctx context.Context, sessionID string, user *domain.User) (*domain.State, error)

// formAction runs an engine operation for a form post and redirects home.
// Gateway failures are stored in the session status, so they redirect too.
func (h *Handlers) formAction(c *fiber.Ctx, fn action) error {
	user := auth.UserFrom(c)
	if h.authRequired && user == nil {
		return h.renderError(c, domain.ErrUnauthorized)
	}

	ctx, cancel := h.context(c)
	defer cancel()

	st, err := fn(ctx, SessionID(c), user)
	if err != nil && (st == nil || !isGatewayError(err)) {
		log.GlobalWarnCtx(ctx, "form action failed", "path", c.Path(), "error", err)
		return h.renderError(c, err)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// renderError renders a full-page error.
func (h *Handlers) renderError(c *fiber.Ctx, err error) error {
	c.Status(statusFor(err))
	return render(c, pages.Error(h.friendlyError(err)))
}

// friendlyError returns a neutral, non-blaming error message.
func (h *Handlers) friendlyError(err error) string {
	switch {
	case errors.Is(err, domain.ErrTweetNotFound):
		return "This tweet isn't part of your suggestions anymore. Try loading new ones."
	case errors.Is(err, domain.ErrInvalidRating):
		return "Ratings go from 1 to 5 stars."
	case errors.Is(err, domain.ErrNotEditing):
		return "This tweet isn't being edited. Click Edit first."
	case errors.Is(err, domain.ErrUnauthorized):
		return "Please log in to continue."
	case errors.Is(err, errInvalidRequest):
		return "Some of the values you sent aren't valid."
	case isGatewayError(err):
		return "We couldn't reach the tweet database. Please try again in a moment."
	default:
		return "Something went wrong. Please try again in a moment."
	}
}

var errInvalidRequest = errors.New("invalid request")

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRating), errors.Is(err, errInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrTweetNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrNotEditing):
		return fiber.StatusConflict
	case isGatewayError(err):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func isGatewayError(err error) bool {
	return errors.Is(err, domain.ErrFetchFailed) || errors.Is(err, domain.ErrUpdateFailed)
}

func formValues(c *fiber.Ctx, key string) []string {
	var values []string
	for _, v := range c.Request().PostArgs().PeekMulti(key) {
		values = append(values, string(v))
	}
	return values
}

func wantsJSON(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}
