package main

import (
	"os"

	"github.com/harlowe/gaugeline/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		// Commands report their own errors through the output formatter;
		// cobra prints usage errors itself. Only the exit code is left.
		os.Exit(cli.GetExitCode(err))
	}
}
