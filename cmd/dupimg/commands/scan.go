package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dupimg/dupimg/internal/utils"
	"github.com/dupimg/dupimg/pkg/api"
	"github.com/dupimg/dupimg/pkg/engine"
)

// ScanCommand runs search() end to end: scan the configured paths,
// fingerprint and compare every image, then save the results for later
// inspection via the report command. stop() is exercised through
// SIGINT/SIGTERM rather than a flag, since a CLI invocation has no
// other running operation to interrupt it with.
var ScanCommand = &cli.Command{
	Name:  "scan",
	Usage: "scan search paths, find duplicates and defects",
	Flags: append(searchFlags,
		&cli.StringFlag{Name: "result", Usage: "path to save the result set for the report/clean commands", Value: "dupimg.result"},
	),
	Action: runScan,
}

func runScan(c *cli.Context) error {
	eng, err := newEngineFromFlags(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer eng.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupInterruptHandler(eng, cancel)

	done := make(chan struct{})
	go reportScanProgress(eng, done)

	err = eng.Search(ctx)
	close(done)
	if err != nil {
		return cli.Exit(fmt.Sprintf("search failed: %v", err), 1)
	}

	if path := c.String("result"); path != "" {
		if err := eng.Save(api.FileResult, path); err != nil {
			return cli.Exit(fmt.Sprintf("save results: %v", err), 1)
		}
		fmt.Printf("results saved to %s\n", path)
	}

	printStatistic(eng.StatisticGet())
	return nil
}

// reportScanProgress polls the engine's live statistic, since search()
// is a blocking call rather than one that streams progress events.
func reportScanProgress(eng *engine.Engine, done <-chan struct{}) {
	tracker := utils.NewProgressTracker(0, "scanning")
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			stat := eng.StatisticGet()
			if stat.ScannedFiles == 0 {
				continue
			}
			tracker.Total = stat.ScannedFiles
			tracker.Set(stat.CollectedImages)
		}
	}
}

func setupInterruptHandler(eng *engine.Engine, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nreceived interrupt, stopping...")
		eng.Stop()
		cancel()
	}()
}

func printStatistic(stat api.Statistic) {
	fmt.Printf("\nscanned files:    %d\n", stat.ScannedFiles)
	fmt.Printf("collected images: %d\n", stat.CollectedImages)
	fmt.Printf("compared pairs:   %d\n", stat.ComparedPairs)
	fmt.Printf("duplicate pairs:  %d\n", stat.DuplicatePairs)
	fmt.Printf("defective images: %d\n", stat.DefectiveImages)
	fmt.Printf("elapsed:          %v\n", stat.Elapsed.Round(time.Millisecond))
}
