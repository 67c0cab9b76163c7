package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/Priya8975/keyword-pager/internal/engine"
	"github.com/Priya8975/keyword-pager/internal/store"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <subscriber> <keyword> [keyword...]",
	Short: "Subscribe a user to keywords",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubscription(cmd, engine.CommandAdd, args[0], args[1:])
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <subscriber> <keyword> [keyword...]",
	Short: "Unsubscribe a user from keywords",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubscription(cmd, engine.CommandRemove, args[0], args[1:])
	},
}

func init() {
	rootCmd.AddCommand(addCmd, removeCmd)
}

func runSubscription(cmd *cobra.Command, kind engine.CommandKind, subscriberID string, words []string) error {
	keywords := engine.Normalize(strings.Join(words, " "))

	return withStore(cmd, func(ctx context.Context, s store.KeywordStore) error {
		manager := engine.NewSubscriptionManager(s, nil, quietLogger())

		var (
			conf engine.Confirmation
			err  error
		)
		if kind == engine.CommandRemove {
			conf, err = manager.Unsubscribe(ctx, subscriberID, keywords)
		} else {
			conf, err = manager.Subscribe(ctx, subscriberID, keywords)
		}

		fmt.Fprintln(cmd.OutOrStdout(), engine.Acknowledgment(kind, conf))
		if err != nil {
			return fmt.Errorf("some keywords were not saved: %w", err)
		}
		return nil
	})
}
