// Package commands implements keywordctl, an admin CLI that inspects and
// edits the keyword store directly.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/Priya8975/keyword-pager/internal/config"
	"github.com/Priya8975/keyword-pager/internal/store"
	"github.com/spf13/cobra"
)

var (
	backend     string
	redisURL    string
	databaseURL string
	keyPrefix   string
)

// openStore is replaced in tests.
var openStore = func(ctx context.Context, opts store.Options) (store.KeywordStore, error) {
	return store.Open(ctx, opts)
}

var rootCmd = &cobra.Command{
	Use:   "keywordctl",
	Short: "Inspect and edit keyword subscriptions",
	Long: `keywordctl talks to the same keyword store as the keyword-pager server.

Connection settings default to the server's environment (STORE_BACKEND,
REDIS_URL, DATABASE_URL, REDIS_KEY_PREFIX, CONFIG_FILE) and can be
overridden with flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "store backend: memory, redis or postgres")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis-url", "", "Redis connection URL")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL")
	rootCmd.PersistentFlags().StringVar(&keyPrefix, "prefix", "", "Redis key prefix")
}

// storeOptions merges flags over the environment. Flags win when set.
func storeOptions() (store.Options, error) {
	opts := store.Options{Backend: backend, RedisURL: redisURL, DatabaseURL: databaseURL, KeyPrefix: keyPrefix}

	if backend == "" {
		cfg, err := config.Load()
		if err != nil {
			return store.Options{}, err
		}
		opts.Backend = cfg.StoreBackend
		if opts.RedisURL == "" {
			opts.RedisURL = cfg.RedisURL
		}
		if opts.DatabaseURL == "" {
			opts.DatabaseURL = cfg.DatabaseURL
		}
		if opts.KeyPrefix == "" {
			opts.KeyPrefix = cfg.RedisKeyPrefix
		}
	}
	return opts, nil
}

func withStore(cmd *cobra.Command, fn func(ctx context.Context, s store.KeywordStore) error) error {
	opts, err := storeOptions()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
