package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showstore/internal/schema"
)

const modulePath = "github.com/mesh-intelligence/showstore"

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the showstore version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "showstore %s\nmodule: %s\nschema: %d\n", Version, modulePath, schema.CurrentVersion)
			return nil
		},
	}
}
