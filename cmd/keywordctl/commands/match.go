package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Priya8975/keyword-pager/internal/engine"
	"github.com/Priya8975/keyword-pager/internal/store"
	"github.com/spf13/cobra"
)

var matchReference string

var matchCmd = &cobra.Command{
	Use:   "match <message text>",
	Short: "Show who a channel message would notify, without sending anything",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchReference, "reference", "<message link>", "reference to include in the notification text")
	rootCmd.AddCommand(matchCmd)
}

// printGateway stands in for Slack during a dry run.
type printGateway struct {
	out io.Writer
}

func (g printGateway) PostMessage(_ context.Context, subscriberID, text string) error {
	_, err := fmt.Fprintf(g.out, "would notify %s: %s\n", subscriberID, text)
	return err
}

func (g printGateway) ResolvePermalink(_ context.Context, channelID, _ string) (string, error) {
	return "<#" + channelID + ">", nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	return withStore(cmd, func(ctx context.Context, s store.KeywordStore) error {
		out := cmd.OutOrStdout()
		notifier := engine.NewNotifier(s, printGateway{out: out}, nil, quietLogger())

		notified, err := notifier.Dispatch(ctx, engine.Normalize(text), matchReference)
		if len(notified) == 0 {
			fmt.Fprintln(out, "no subscribers matched")
		}
		if err != nil {
			return fmt.Errorf("some keywords could not be read: %w", err)
		}
		return nil
	})
}
