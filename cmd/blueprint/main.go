// Command blueprint edits, validates and projects API design documents.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/blueprint/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
