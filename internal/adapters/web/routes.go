package web

import (
	"github.com/gofiber/fiber/v2"

	"tweet-suggester/internal/adapters/auth"
)

// RouteOptions carries the optional pieces wired into the routes.
type RouteOptions struct {
	StaticDir      string
	RateLimiter    *RateLimiter
	Metrics        fiber.Handler // serves /metrics when set
	RequireAPIUser bool
}

// SetupRoutes configures the application routes.
func SetupRoutes(app *fiber.App, handlers *Handlers, opts RouteOptions) {
	if opts.StaticDir != "" {
		app.Static("/static", opts.StaticDir)
	}

	app.Get("/healthz", handlers.Health)
	if opts.Metrics != nil {
		app.Get("/metrics", opts.Metrics)
	}

	site := app.Group("", SessionMiddleware())
	if opts.RateLimiter != nil {
		site.Use(opts.RateLimiter.Middleware())
	}

	// HTML page and form posts, each redirecting back to /
	site.Get("/", handlers.Home)
	site.Post("/filters", handlers.SubmitFilters)
	site.Post("/regenerate", handlers.SubmitRegenerate)
	site.Post("/tweets/:id/used", handlers.SubmitMarkUsed)
	site.Post("/tweets/:id/rating", handlers.SubmitRating)
	site.Post("/tweets/:id/favorite", handlers.SubmitFavorite)
	site.Post("/tweets/:id/edit", handlers.SubmitBeginEdit)
	site.Post("/tweets/:id/edit/cancel", handlers.SubmitCancelEdit)
	site.Post("/tweets/:id/edit/save", handlers.SubmitSaveEdit)
	site.Post("/logout", handlers.Logout)

	// JSON API
	api := site.Group("/api")
	api.Get("/tags", handlers.APITags)
	if opts.RequireAPIUser {
		api.Use(auth.RequireUser())
	}
	api.Get("/state", handlers.APIState)
	api.Post("/suggestions", handlers.APIRefresh)
	api.Post("/suggestions/regenerate", handlers.APIRegenerate)
	api.Get("/used", handlers.APIUsed)
	api.Post("/tweets/:id/used", handlers.APIMarkUsed)
	api.Put("/tweets/:id/rating", handlers.APISetRating)
	api.Put("/tweets/:id/favorite", handlers.APISetFavorite)
	api.Post("/tweets/:id/edit", handlers.APIBeginEdit)
	api.Put("/tweets/:id/edit", handlers.APIUpdateDraft)
	api.Delete("/tweets/:id/edit", handlers.APICancelEdit)
	api.Post("/tweets/:id/edit/save", handlers.APISaveEdit)
}
