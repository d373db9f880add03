package web

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"tweet-suggester/internal/adapters/auth"
	"tweet-suggester/internal/domain"
	"tweet-suggester/pkg/log"
)

type filtersRequest struct {
	Tags          []string `json:"tags" validate:"max=20,dive,required,max=32"`
	Ratings       []int    `json:"ratings" validate:"max=5,dive,min=1,max=5"`
	FavoritesOnly bool     `json:"favorites_only"`
	Search        string   `json:"search" validate:"max=200"`
}

func (r filtersRequest) filters() domain.Filters {
	return domain.Filters{
		Tags:          r.Tags,
		Ratings:       r.Ratings,
		FavoritesOnly: r.FavoritesOnly,
		Search:        r.Search,
	}
}

type ratingRequest struct {
	Rating *int `json:"rating" validate:"omitempty,min=1,max=5"`
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

type draftRequest struct {
	Text string `json:"text" validate:"max=1000"`
}

// errorResponse is the JSON body of failed API calls. State is set when
// the failure was recorded in the session status.
type errorResponse struct {
	Error string        `json:"error"`
	State *domain.State `json:"state,omitempty"`
}

// APIState returns the session state.
func (h *Handlers) APIState(c *fiber.Ctx) error {
	return h.apiAction(c, func(ctx context.Context, sid string, _ *domain.User) (*domain.State, error) {
		return h.engine.State(ctx, sid)
	})
}

// APIRefresh stores the filters from the body and draws new suggestions.
func (h *Handlers) APIRefresh(c *fiber.Ctx) error {
	var req filtersRequest
	if err := h.parse(c, &req); err != nil {
		return h.apiError(c, nil, err)
	}
	return h.apiAction(c, func(ctx context.Context, sid string, user *domain.User) (*domain.State, error) {
		return h.engine.RefreshSuggestions(ctx, sid, req.filters(), user)
	})
}

// APIRegenerate draws a new sample with the current filters.
func (h *Handlers) APIRegenerate(c *fiber.Ctx) error {
	return h.apiAction(c, func(ctx context.Context, sid string, user *domain.User) (*domain.State, error) {
		return h.engine.Regenerate(ctx, sid, user)
	})
}

// APIUsed reloads and returns the used tweets.
func (h *Handlers) APIUsed(c *fiber.Ctx) error {
	user := auth.UserFrom(c)
	ctx, cancel := h.context(c)
	defer cancel()

	st, err := h.engine.UsedTweets(ctx, SessionID(c), user)
	if err != nil {
		return h.apiError(c, st, err)
	}
	return c.JSON(fiber.Map{"tweets": st.Used})
}

// APIMarkUsed marks a suggestion as used.
func (h *Handlers) APIMarkUsed(c *fiber.Ctx) error {
	id := c.Params("id")
	return h.apiAction(c, func(ctx context.Context, sid string, user *domain.User) (*domain.State, error) {
		return h.engine.MarkUsed(ctx, sid, id, user)
	})
}

// APISetRating sets the rating, or clears it when rating is null.
func (h *Handlers) APISetRating(c *fiber.Ctx) error {
	id := c.Params("id")
	var req ratingRequest
	if err := h.parse(c, &req); err != nil {
		return h.apiError(c, nil, err)
	}
	return h.apiAction(c, func(ctx context.Context, sid string, user *domain.User) (*domain.State, error) {
		return h.engine.SetRating(ctx, sid, id, req.Rating, user)
	})
}

// APISetFavorite sets the favorite flag.
func (h *Handlers) APISetFavorite(c *fiber.Ctx) error {
	id := c.Params("id")
	var req favoriteRequest
	if err := h.parse(c, &req); err != nil {
		return h.apiError(c, nil, err)
	}
	return h.apiAction(c, func(ctx context.Context, sid string, user *domain.User) (*domain.State, error) {
		return h.engine.SetFavorite(ctx, sid, id, req.Favorite, user)
	})
}

// APIBeginEdit puts a tweet in edit mode.
func (h *Handlers) APIBeginEdit(c *fiber.Ctx) error {
	id := c.Params("id")
	return h.apiAction(c, func(ctx context.Context, sid string, _ *domain.User) (*domain.State, error) {
		return h.engine.BeginEdit(ctx, sid, id)
	})
}

// APIUpdateDraft replaces the draft of the tweet being edited.
func (h *Handlers) APIUpdateDraft(c *fiber.Ctx) error {
	id := c.Params("id")
	var req draftRequest
	if err := h.parse(c, &req); err != nil {
		return h.apiError(c, nil, err)
	}
	return h.apiAction(c, func(ctx context.Context, sid string, _ *domain.User) (*domain.State, error) {
		return h.engine.UpdateDraft(ctx, sid, id, req.Text)
	})
}

// APICancelEdit leaves edit mode.
func (h *Handlers) APICancelEdit(c *fiber.Ctx) error {
	return h.apiAction(c, func(ctx context.Context, sid string, _ *domain.User) (*domain.State, error) {
		return h.engine.CancelEdit(ctx, sid)
	})
}

// APISaveEdit saves the body text, or the current draft when the body is
// empty, as the tweet's custom text.
func (h *Handlers) APISaveEdit(c *fiber.Ctx) error {
	id := c.Params("id")
	var req struct {
		Text *string `json:"text" validate:"omitempty,max=1000"`
	}
	if len(c.Body()) > 0 {
		if err := h.parse(c, &req); err != nil {
			return h.apiError(c, nil, err)
		}
	}
	return h.apiAction(c, func(ctx context.Context, sid string, user *domain.User) (*domain.State, error) {
		text := ""
		if req.Text != nil {
			text = *req.Text
		} else {
			st, err := h.engine.State(ctx, sid)
			if err != nil {
				return nil, err
			}
			if st.Edit.TweetID != id {
				return st, domain.ErrNotEditing
			}
			text = st.Edit.Draft
		}
		return h.engine.SaveEdit(ctx, sid, id, text, user)
	})
}

// APITags returns the tag catalogue.
func (h *Handlers) APITags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"tags": h.tags.Tags()})
}

// parse decodes and validates the JSON body.
func (h *Handlers) parse(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	if err := h.validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

func (h *Handlers) apiAction(c *fiber.Ctx, fn action) error {
	ctx, cancel := h.context(c)
	defer cancel()

	st, err := fn(ctx, SessionID(c), auth.UserFrom(c))
	if err != nil {
		return h.apiError(c, st, err)
	}
	return c.JSON(st)
}

func (h *Handlers) apiError(c *fiber.Ctx, st *domain.State, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.GlobalErrorCtx(c.UserContext(), "api request failed", "path", c.Path(), "error", err)
	} else {
		log.GlobalWarnCtx(c.UserContext(), "api request rejected", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(errorResponse{Error: err.Error(), State: st})
}
