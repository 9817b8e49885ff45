// Package cli implements the showstore command-line interface: path-based
// queries and writes against a store, batches from YAML files, search and
// maintenance commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showstore/internal/logging"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	logLevel  string
	logFormat string
}

var (
	flags rootFlags

	// settings is loaded by the root command before any subcommand runs.
	settings appConfig
)

// NewRootCmd creates the top-level "showstore" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags = rootFlags{}
	root := &cobra.Command{
		Use:   "showstore",
		Short: "Local TV show and movie catalog store",
		Long: "showstore keeps a catalog of shows, seasons, episodes, lists and movies\n" +
			"in SQLite and addresses it by resource paths such as shows/42 or\n" +
			"episodes/ofseason/7/withshow.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/showstore)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: .showstore-db)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: json or console")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newMigrateCmd(),
		newRoutesCmd(),
		newQueryCmd(),
		newGetCmd(),
		newInsertCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newBatchCmd(),
		newSearchCmd(),
		newReindexCmd(),
		newRecountCmd(),
		newExportCmd(),
		newImportCmd(),
	)
	return root
}

// setup loads configuration and initializes logging.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	settings = cfg
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cmd.ErrOrStderr()})
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// exitCode separates failures of the engine or the file system from
// mistakes in the command line or the data.
func exitCode(err error) int {
	var pathErr *os.PathError
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrEngine), errors.Is(err, types.ErrMigration), errors.As(err, &pathErr):
		return exitSysError
	}
	return exitUserError
}
