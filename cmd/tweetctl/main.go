package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tweet-suggester/internal/bootstrap"
	"tweet-suggester/internal/config"
	"tweet-suggester/internal/domain"
	"tweet-suggester/internal/usecases"
	"tweet-suggester/pkg/log"
	"tweet-suggester/pkg/log/transporters"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds the persistent flags shared by every command.
type cli struct {
	cfgPath   string
	userID    string
	sessionID string
	stateDir  string
	verbose   bool
}

// env is what a command runs against.
type env struct {
	cfg      config.Config
	engine   *usecases.SuggestionEngine
	tweets   bootstrap.Store
	sessions bootstrap.Sessions
	logger   *log.Logger
}

func (e *env) Close() {
	e.sessions.Close()
	e.tweets.Close()
	e.logger.Close()
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	home, _ := os.UserHomeDir()
	defaultStateDir := filepath.Join(home, ".tweetctl", "sessions")

	rootCmd := &cobra.Command{
		Use:          "tweetctl",
		Short:        "Draw tweet suggestions and curate the tweet table",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgPath, "config", "config/app.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&c.userID, "user", "", "act as this user (default anonymous)")
	rootCmd.PersistentFlags().StringVar(&c.sessionID, "session", "cli", "session name kept between runs")
	rootCmd.PersistentFlags().StringVar(&c.stateDir, "state-dir", defaultStateDir, "directory for session state when the config keeps it in memory")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(suggestCmd(c))
	rootCmd.AddCommand(regenerateCmd(c))
	rootCmd.AddCommand(showCmd(c))
	rootCmd.AddCommand(usedCmd(c))
	rootCmd.AddCommand(markUsedCmd(c))
	rootCmd.AddCommand(rateCmd(c))
	rootCmd.AddCommand(favoriteCmd(c))
	rootCmd.AddCommand(editCmd(c))
	rootCmd.AddCommand(tagsCmd(c))
	rootCmd.AddCommand(resetCmd(c))
	rootCmd.AddCommand(seedCmd(c))
	rootCmd.AddCommand(tokenCmd(c))

	return rootCmd
}

// loadConfig reads the configuration. Session state kept in memory would
// be lost when the process exits, so it moves to files under stateDir.
func (c *cli) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Session.Driver == config.DriverMemory {
		cfg.Session.Driver = config.DriverFile
		cfg.Session.Dir = c.stateDir
	}
	return cfg, nil
}

func (c *cli) newLogger() *log.Logger {
	level := log.Warn
	if c.verbose {
		level = log.Debug
	}
	return log.New(level, transporters.NewTextWithWriter(os.Stderr))
}

func (c *cli) open(ctx context.Context) (*env, error) {
	logger := c.newLogger()
	log.SetDefault(logger)

	cfg, err := c.loadConfig()
	if err != nil {
		logger.Close()
		return nil, err
	}

	tweets, err := bootstrap.OpenStore(ctx, cfg.Store)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	sessions, err := bootstrap.OpenSessions(ctx, cfg.Session)
	if err != nil {
		tweets.Close()
		logger.Close()
		return nil, fmt.Errorf("open sessions: %w", err)
	}

	engine := usecases.NewSuggestionEngine(tweets, sessions, usecases.WithSampleSize(cfg.Engine.SampleSize))
	return &env{cfg: cfg, engine: engine, tweets: tweets, sessions: sessions, logger: logger}, nil
}

// user returns the acting user, nil for anonymous mode.
func (c *cli) user() *domain.User {
	if c.userID == "" {
		return nil
	}
	return &domain.User{ID: c.userID}
}

// run opens the environment, runs fn and prints the resulting state. A
// gateway failure still prints the state so its status is visible.
func (c *cli) run(cmd *cobra.Command, fn func(ctx context.Context, e *env) (*domain.State, error)) error {
	ctx := cmd.Context()
	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := fn(ctx, e)
	if st != nil {
		printState(cmd.OutOrStdout(), st)
	}
	return err
}
