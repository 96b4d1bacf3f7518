// Command blobrelay stores JSON values in a local SQLite record store and
// relays them to a host page.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/blobrelay/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
