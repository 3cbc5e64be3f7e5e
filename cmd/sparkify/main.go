// Command sparkify loads the song and log datasets into the sparkify tables.
package main

import (
	"os"

	"sparkify/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
