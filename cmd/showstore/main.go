// Command showstore manages a local show catalog from the command line.
package main

import (
	"os"

	"github.com/mesh-intelligence/showstore/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
