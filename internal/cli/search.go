package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showstore/internal/sqlite"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

func newSearchCmd() *cobra.Command {
	var opts types.SearchOptions
	cmd := &cobra.Command{
		Use:     "search <term>...",
		Short:   "Search episode titles and overviews",
		Example: "  showstore search red wedding\n  showstore search pilot --show 42",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(b *sqlite.Backend) error {
				hits, err := b.Search(strings.Join(args, " "), opts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), hits)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.ShowID, "show", 0, "only episodes of this show")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum hits (default: search_limit)")
	return cmd
}

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the episode search index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(b *sqlite.Backend) error {
				return b.RebuildSearchIndex()
			})
		},
	}
}
