package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tweet-suggester/internal/adapters/auth"
	"tweet-suggester/internal/bootstrap"
	"tweet-suggester/internal/domain"
)

func suggestCmd(c *cli) *cobra.Command {
	var f domain.Filters

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Apply filters and draw new suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, r := range f.Ratings {
				if r < domain.MinRating || r > domain.MaxRating {
					return domain.ErrInvalidRating
				}
			}
			return c.run(cmd, func(ctx context.Context, e *env) (*domain.State, error) {
				return e.engine.RefreshSuggestions(ctx, c.sessionID, f, c.user())
			})
		},
	}

	cmd.Flags().StringSliceVarP(&f.Tags, "tag", "t", nil, "only tweets with one of these tags")
	cmd.Flags().IntSliceVarP(&f.Ratings, "rating", "r", nil, "only tweets with one of these ratings")
	cmd.Flags().BoolVar(&f.FavoritesOnly, "favorites", false, "only favorite tweets")
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "only tweets containing this text")
	return cmd
}

func regenerateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate",
		Short: "Draw new suggestions with the current filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, e *env) (*domain.State, error) {
				return e.engine.Regenerate(ctx, c.sessionID, c.user())
			})
		},
	}
}

func showCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current suggestions of the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, e *env) (*domain.State, error) {
				return e.engine.State(ctx, c.sessionID)
			})
		},
	}
}

func usedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "used",
		Short: "List the tweets already marked as used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			st, err := e.engine.UsedTweets(ctx, c.sessionID, c.user())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(st.Used) == 0 {
				fmt.Fprintln(out, "No used tweets yet.")
				return nil
			}
			for _, t := range st.Used {
				printTweet(out, t, false)
			}
			return nil
		},
	}
}

func markUsedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-used <tweet-id>",
		Short: "Mark a suggested tweet as used",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, e *env) (*domain.State, error) {
				return e.engine.MarkUsed(ctx, c.sessionID, args[0], c.user())
			})
		},
	}
}

func rateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <tweet-id> <1-5|clear>",
		Short: "Set or clear the star rating of a suggested tweet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := parseRating(args[1])
			if err != nil {
				return err
			}
			return c.run(cmd, func(ctx context.Context, e *env) (*domain.State, error) {
				return e.engine.SetRating(ctx, c.sessionID, args[0], rating, c.user())
			})
		},
	}
}

func parseRating(s string) (*int, error) {
	if s == "clear" || s == "none" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < domain.MinRating || n > domain.MaxRating {
		return nil, domain.ErrInvalidRating
	}
	return &n, nil
}

func favoriteCmd(c *cli) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "favorite <tweet-id>",
		Short: "Mark a suggested tweet as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, e *env) (*domain.State, error) {
				return e.engine.SetFavorite(ctx, c.sessionID, args[0], !off, c.user())
			})
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "remove the favorite flag instead")
	return cmd
}

func editCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <tweet-id> [text]",
		Short: "Save custom text for a suggested tweet; empty text reverts to the original",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			return c.run(cmd, func(ctx context.Context, e *env) (*domain.State, error) {
				if st, err := e.engine.BeginEdit(ctx, c.sessionID, args[0]); err != nil {
					return st, err
				}
				return e.engine.SaveEdit(ctx, c.sessionID, args[0], text, c.user())
			})
		},
	}
}

func tagsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tag catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			catalog, err := bootstrap.LoadTags(e.cfg.TagsFile, e.tweets, time.Hour)
			if err != nil {
				return err
			}
			defer catalog.Close()

			for _, tag := range catalog.Tags() {
				fmt.Fprintln(cmd.OutOrStdout(), tag)
			}
			return nil
		},
	}
}

func resetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the session's filters, suggestions and edits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.engine.EndSession(cmd.Context(), c.sessionID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s reset\n", c.sessionID)
			return nil
		},
	}
}

func seedCmd(c *cli) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the seed tweets into an empty sqlite or postgres table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			if file == "" {
				file = e.cfg.Store.SeedFile
			}
			seed, err := bootstrap.LoadSeed(file)
			if err != nil {
				return err
			}
			n, err := bootstrap.SeedIfEmpty(cmd.Context(), e.tweets, seed)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Table already has tweets, nothing inserted")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d tweets\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "seed file (default from config)")
	return cmd
}

func tokenCmd(c *cli) *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a login token for --user, signed with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.userID == "" {
				return fmt.Errorf("token needs --user")
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not configured")
			}

			token, err := auth.IssueToken(cfg.Auth.JWTSecret, domain.User{ID: c.userID, Email: email}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
