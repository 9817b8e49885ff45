package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/showstore/internal/sqlite"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// batchFile is the YAML layout read by the batch command.
type batchFile struct {
	Operations []types.Operation `yaml:"operations"`
}

func readBatch(path string) ([]types.Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f batchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f.Operations, nil
}

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Apply a batch of writes atomically",
		Long: `Apply every operation in the file in one transaction. If any operation
fails nothing is written. An operation may copy the id of an earlier insert
into one of its columns with backrefs.`,
		Example: `  operations:
    - op: insert
      path: shows
      values: {title: "Slow Horses", tmdb_id: 95480}
    - op: insert
      path: seasons
      values: {number: 1}
      backrefs: {show_id: 0}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := readBatch(args[0])
			if err != nil {
				return err
			}
			return withStore(func(b *sqlite.Backend) error {
				results, err := b.ApplyBatch(ops)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), results)
			})
		},
	}
}
