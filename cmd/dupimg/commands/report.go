package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/dupimg/dupimg/internal/report"
	"github.com/dupimg/dupimg/pkg/api"
	"github.com/dupimg/dupimg/pkg/engine"
)

// ReportCommand renders a result file saved by scan into one of the
// export formats internal/report offers. This export is explicitly
// non-authoritative: the engine's own binary result file remains the
// source of truth.
var ReportCommand = &cli.Command{
	Name:  "report",
	Usage: "export a saved result set as text, JSON or SQLite",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "result", Usage: "result file produced by scan", Value: "dupimg.result", Required: true},
		&cli.StringFlag{Name: "cache", Usage: "fingerprint cache directory", Value: "dupimg-cache"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "text, json or sqlite", Value: "text"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file path", Required: true},
	},
	Action: runReport,
}

func runReport(c *cli.Context) error {
	eng, err := engine.New(engine.DefaultOptions(), c.String("cache"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("create engine: %v", err), 1)
	}
	defer eng.Release()

	if err := eng.Load(api.FileResult, c.String("result")); err != nil {
		return cli.Exit(fmt.Sprintf("load results: %v", err), 1)
	}

	groups := eng.GroupGet()
	summary := report.NewSummary(report.StatisticFromGroups(groups), groups)
	gen := report.NewGenerator()

	switch c.String("format") {
	case "json":
		err = gen.JSON(summary, c.String("output"))
	case "sqlite":
		err = gen.ExportSQLite(summary, c.String("output"))
	default:
		err = gen.Text(summary, c.String("output"))
	}
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
