// Command dupimg is a thin CLI driver over pkg/engine, exercising the
// functional API's operations as subcommands. Grounded on the
// teacher's cmd/imaged-cli/main.go command-table structure.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dupimg/dupimg/cmd/dupimg/commands"
)

func main() {
	app := &cli.App{
		Name:    "dupimg",
		Version: "1.0.0",
		Usage:   "duplicate image detection engine",
		Commands: []*cli.Command{
			commands.ScanCommand,
			commands.StatsCommand,
			commands.UndoCommand,
			commands.RedoCommand,
			commands.CleanCommand,
			commands.ReportCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
