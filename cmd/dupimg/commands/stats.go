package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

// StatsCommand runs a search and reports only statistic_get()'s
// summary, for a quick read on a directory tree without keeping a
// result file around.
var StatsCommand = &cli.Command{
	Name:   "stats",
	Usage:  "scan search paths and print summary statistics only",
	Flags:  searchFlags,
	Action: runStats,
}

func runStats(c *cli.Context) error {
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
	printStatistic(eng.StatisticGet())
	return nil
}
