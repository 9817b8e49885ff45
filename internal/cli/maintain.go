package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showstore/internal/sqlite"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(b *sqlite.Backend) error {
				v, err := b.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "initialized %s (schema %d)\n", b.DatabasePath(), v)
				return nil
			})
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade the database schema to the current version",
		Long: `Open the database, which upgrades it to the current schema version in a
single transaction, and print the resulting version. Databases older than
the oldest supported version are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(b *sqlite.Backend) error {
				v, err := b.Version()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}
}

func newRecountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recount <show-id>",
		Short: "Recompute the episode counters of a show's seasons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("show id %q: %w", args[0], err)
			}
			return withStore(func(b *sqlite.Backend) error {
				return b.RecountSeasons(id, 0)
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every table to <dir>/<table>.jsonl",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(b *sqlite.Backend) error {
				return b.Export(args[0])
			})
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Replace tables with the contents of <dir>/<table>.jsonl",
		Long: `Replace the contents of every table that has a JSONL file in the directory.
Tables without a file keep their rows. The import is all or nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(b *sqlite.Backend) error {
				return b.Import(args[0])
			})
		},
	}
}
