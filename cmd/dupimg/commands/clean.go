package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/dupimg/dupimg/pkg/api"
	"github.com/dupimg/dupimg/pkg/engine"
)

// CleanCommand loads a result set saved by scan and applies
// result_apply(apply_all_hints) to it, or previews what would happen
// under --dry-run without touching any file.
var CleanCommand = &cli.Command{
	Name:  "clean",
	Usage: "apply recommended hints to a saved result set",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "result", Usage: "result file produced by scan", Value: "dupimg.result", Required: true},
		&cli.StringFlag{Name: "cache", Usage: "fingerprint cache directory", Value: "dupimg-cache"},
		&cli.BoolFlag{Name: "dry-run", Aliases: []string{"d"}, Usage: "show what would be applied without modifying any file"},
	},
	Action: runClean,
}

func runClean(c *cli.Context) error {
	eng, err := engine.New(engine.DefaultOptions(), c.String("cache"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("create engine: %v", err), 1)
	}
	defer eng.Release()

	if err := eng.Load(api.FileResult, c.String("result")); err != nil {
		return cli.Exit(fmt.Sprintf("load results: %v", err), 1)
	}

	if c.Bool("dry-run") {
		return previewHints(eng)
	}

	if err := eng.ResultApply(api.GlobalActionApplyAllHints); err != nil {
		return cli.Exit(fmt.Sprintf("apply hints: %v", err), 1)
	}
	fmt.Println("applied every pending hint")
	return nil
}

func previewHints(eng *engine.Engine) error {
	results, err := eng.ResultGet(0, 0)
	if err != nil {
		return cli.Exit(fmt.Sprintf("read results: %v", err), 1)
	}

	var pending int
	var reclaimed int64
	for _, r := range results {
		switch r.Hint {
		case api.HintDeleteFirst:
			fmt.Printf("would delete %s (keeping %s)\n", r.First.Path, r.Second.Path)
			pending++
			reclaimed += r.First.Size
		case api.HintDeleteSecond:
			fmt.Printf("would delete %s (keeping %s)\n", r.Second.Path, r.First.Path)
			pending++
			reclaimed += r.Second.Size
		case api.HintDeleteDefective:
			fmt.Printf("would delete %s (defective)\n", r.DefectImage.Path)
			pending++
			reclaimed += r.DefectImage.Size
		}
	}
	fmt.Printf("\n%d of %d results have a pending hint, %s reclaimable\n", pending, len(results), formatBytes(reclaimed))
	return nil
}
