package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Priya8975/keyword-pager/internal/domain"
	"github.com/Priya8975/keyword-pager/internal/engine"
	"github.com/Priya8975/keyword-pager/internal/store"
	"github.com/spf13/cobra"
)

var getJSON bool

var getCmd = &cobra.Command{
	Use:   "get <keyword>",
	Short: "Show the subscribers of a keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().BoolVar(&getJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	tokens := engine.Normalize(args[0])
	if len(tokens) != 1 {
		return fmt.Errorf("keyword must be a single word, got %q", args[0])
	}
	keyword := tokens[0]

	return withStore(cmd, func(ctx context.Context, s store.KeywordStore) error {
		subscribers, found, err := s.Get(ctx, keyword)
		if err != nil {
			return fmt.Errorf("reading keyword %q: %w", keyword, err)
		}
		if !found {
			return fmt.Errorf("keyword %q not found", keyword)
		}

		out := cmd.OutOrStdout()
		if getJSON {
			if subscribers == nil {
				subscribers = []string{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(domain.Keyword{Name: keyword, Subscribers: subscribers})
		}

		if len(subscribers) == 0 {
			fmt.Fprintf(out, "%s: no subscribers\n", keyword)
			return nil
		}
		fmt.Fprintf(out, "%s: %s\n", keyword, strings.Join(subscribers, ", "))
		return nil
	})
}
