// Package commands implements one urfave/cli/v2 subcommand per
// functional-API operation group, grounded on the teacher's
// cmd/imaged-cli/commands package split (one file per command, a
// shared engine-construction helper per command).
package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/dupimg/dupimg/pkg/engine"
)

var searchFlags = []cli.Flag{
	&cli.StringSliceFlag{Name: "search", Aliases: []string{"s"}, Usage: "root directory to search (repeatable)"},
	&cli.StringSliceFlag{Name: "ignore", Usage: "root directory to skip entirely (repeatable)"},
	&cli.StringSliceFlag{Name: "valid", Usage: "root directory treated as a known-good reference set (repeatable)"},
	&cli.StringSliceFlag{Name: "delete", Usage: "root directory whose files are eligible for deletion (repeatable)"},
	&cli.StringFlag{Name: "cache", Aliases: []string{"c"}, Usage: "fingerprint cache directory", Value: "dupimg-cache"},
	&cli.Float64Flag{Name: "threshold", Aliases: []string{"t"}, Usage: "duplicate/near-duplicate difference threshold", Value: 2.0},
	&cli.BoolFlag{Name: "check-defects", Usage: "flag technically defective images (blockiness, blurring, blank)"},
	&cli.IntFlag{Name: "collector-workers", Usage: "fingerprint collector worker count (0 = auto)"},
	&cli.IntFlag{Name: "comparator-workers", Usage: "comparator worker count (0 = auto)"},
}

// newEngineFromFlags builds an engine configured from the shared
// search flag set, with no paths set yet.
func newEngineFromFlags(c *cli.Context) (*engine.Engine, error) {
	opts := engine.DefaultOptions()
	opts.Compare.ThresholdDifference = c.Float64("threshold")
	opts.Defect.CheckDefects = c.Bool("check-defects")
	opts.Advanced.CollectorWorkers = c.Int("collector-workers")
	opts.Advanced.ComparatorWorkers = c.Int("comparator-workers")

	eng, err := engine.New(opts, c.String("cache"))
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	eng.PathSet(engine.PathSearch, c.StringSlice("search"))
	eng.PathSet(engine.PathIgnore, c.StringSlice("ignore"))
	eng.PathSet(engine.PathValid, c.StringSlice("valid"))
	eng.PathSet(engine.PathDelete, c.StringSlice("delete"))
	return eng, nil
}

func formatBytes(bytes int64) string {
	return humanize.Bytes(uint64(bytes))
}
