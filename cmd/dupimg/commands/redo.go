package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/dupimg/dupimg/pkg/api"
)

// RedoCommand extends undo's demo session one step further: scan,
// apply hints, undo, then redo, leaving the engine in the same
// post-apply state a plain clean run would have produced.
var RedoCommand = &cli.Command{
	Name:   "redo",
	Usage:  "scan, apply hints, undo, then redo in one session",
	Flags:  searchFlags,
	Action: runRedo,
}

func runRedo(c *cli.Context) error {
	eng, err := newEngineFromFlags(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer eng.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupInterruptHandler(eng, cancel)

	if err := eng.Search(ctx); err != nil {
		return cli.Exit(fmt.Sprintf("search failed: %v", err), 1)
	}
	if err := eng.ResultApply(api.GlobalActionApplyAllHints); err != nil {
		return cli.Exit(fmt.Sprintf("apply hints: %v", err), 1)
	}
	if err := eng.Undo(); err != nil {
		return cli.Exit(fmt.Sprintf("undo: %v", err), 1)
	}
	if err := eng.Redo(); err != nil {
		return cli.Exit(fmt.Sprintf("redo: %v", err), 1)
	}
	fmt.Println("redo complete: hints re-applied")
	return nil
}
