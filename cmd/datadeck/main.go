// Command datadeck is the CLI for cleaning CSV files and running the server.
package main

import (
	"fmt"
	"os"

	"datadeck/cmd/datadeck/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
