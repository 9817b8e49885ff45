package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showstore/internal/dispatch"
)

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the paths the store serves",
		Long:  "List every path pattern. # matches a number, * matches any segment.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := dispatch.Default()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATTERN\tKIND\tTYPE\tINSERTS")
			for _, r := range m.Routes() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Pattern, r.Kind, r.ContentType(), r.Table)
			}
			return w.Flush()
		},
	}
}
