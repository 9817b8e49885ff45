package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showstore/internal/sqlite"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// selectionFlags are shared by query, update and delete.
type selectionFlags struct {
	where string
	args  []string
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.where, "where", "", "selection, e.g. \"watched = ? AND number > ?\"")
	cmd.Flags().StringArrayVar(&s.args, "arg", nil, "selection argument (repeatable)")
}

func newQueryCmd() *cobra.Command {
	var (
		sel     selectionFlags
		columns []string
		sort    string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "query <path>",
		Short: "Print the rows a path resolves to",
		Example: `  showstore query shows --sort "title COLLATE NOCASE"
  showstore query episodes/ofshow/42 --where "watched = ?" --arg 0
  showstore query episodes/withshow --select _id,title,show_title --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(b *sqlite.Backend) error {
				rows, err := b.Query(args[0], types.QueryOptions{
					Projection: columns,
					Selection:  sel.where,
					Args:       parseArgs(sel.args),
					SortOrder:  sort,
					Limit:      limit,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rows)
			})
		},
	}
	sel.register(cmd)
	cmd.Flags().StringSliceVar(&columns, "select", nil, "columns to return (default: all)")
	cmd.Flags().StringVar(&sort, "sort", "", "sort order (default: the path's own)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <path>",
		Short:   "Print the single row an item path resolves to",
		Example: "  showstore get shows/42\n  showstore get lists/list-default",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(b *sqlite.Backend) error {
				row, err := b.Get(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), row)
			})
		},
	}
}

func newInsertCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "insert <path> <json>",
		Short:   "Insert a row and print its id",
		Example: `  showstore insert shows '{"title": "The Wire", "tvdb_id": 79126}'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseValues(args[1])
			if err != nil {
				return err
			}
			return withStore(func(b *sqlite.Backend) error {
				id, err := b.Insert(args[0], values)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
}

func newUpdateCmd() *cobra.Command {
	var sel selectionFlags
	cmd := &cobra.Command{
		Use:     "update <path> <json>",
		Short:   "Update rows and print how many changed",
		Example: `  showstore update episodes/ofseason/7 '{"watched": 1}' --where "number <= ?" --arg 3`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseValues(args[1])
			if err != nil {
				return err
			}
			return withStore(func(b *sqlite.Backend) error {
				n, err := b.Update(args[0], values, sel.where, parseArgs(sel.args)...)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
	sel.register(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var sel selectionFlags
	cmd := &cobra.Command{
		Use:     "delete <path>",
		Short:   "Delete rows and print how many were removed",
		Example: "  showstore delete shows/42\n  showstore delete episodes/ofshow/42",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(b *sqlite.Backend) error {
				n, err := b.Delete(args[0], sel.where, parseArgs(sel.args)...)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
	sel.register(cmd)
	return cmd
}
