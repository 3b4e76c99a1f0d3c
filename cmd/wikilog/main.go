// Command wikilog compiles wikilog item and comment filters into query
// descriptors and optionally runs them against a wikilog database.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jravasi/mediawiki-wikilog/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands report their own errors; cobra errors (bad flags) are not.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
