package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/dupimg/dupimg/pkg/api"
)

// UndoCommand demonstrates undo(): it runs a full scan, applies every
// pending hint, then rolls that apply back in the same session. The
// undo stack lives only in the engine's memory, so unlike scan/clean
// it cannot operate across separate invocations.
var UndoCommand = &cli.Command{
	Name:   "undo",
	Usage:  "scan, apply hints, then undo the apply in one session",
	Flags:  searchFlags,
	Action: runUndo,
}

func runUndo(c *cli.Context) error {
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

	before := eng.StatisticGet()
	if err := eng.ResultApply(api.GlobalActionApplyAllHints); err != nil {
		return cli.Exit(fmt.Sprintf("apply hints: %v", err), 1)
	}
	fmt.Printf("applied hints across %d duplicate pairs and %d defects\n", before.DuplicatePairs, before.DefectiveImages)

	if err := eng.Undo(); err != nil {
		return cli.Exit(fmt.Sprintf("undo: %v", err), 1)
	}
	fmt.Println("undo complete: deleted files are restored")
	return nil
}
