package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dupimg/dupimg/pkg/api"
)

// Text writes a human-readable rendering of summary to outputPath.
func (g *Generator) Text(summary *Summary, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create text report: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(g.textContent(summary)); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	g.logger.Infof("text report saved to %s", outputPath)
	return nil
}

func (g *Generator) textContent(summary *Summary) string {
	var sb strings.Builder

	sb.WriteString("DUPLICATE IMAGE REPORT\n")
	sb.WriteString("======================\n\n")

	stat := summary.Statistic
	sb.WriteString("SUMMARY\n-------\n")
	fmt.Fprintf(&sb, "Scanned files:     %d\n", stat.ScannedFiles)
	fmt.Fprintf(&sb, "Collected images:  %d\n", stat.CollectedImages)
	fmt.Fprintf(&sb, "Compared pairs:    %d\n", stat.ComparedPairs)
	fmt.Fprintf(&sb, "Duplicate pairs:   %d\n", stat.DuplicatePairs)
	fmt.Fprintf(&sb, "Defective images:  %d\n", stat.DefectiveImages)
	fmt.Fprintf(&sb, "Elapsed:           %v\n\n", stat.Elapsed.Round(time.Millisecond))

	if len(summary.Groups) > 0 {
		sb.WriteString("GROUPS\n------\n")
		for _, group := range summary.Groups {
			fmt.Fprintf(&sb, "Group %d (%d images)\n", group.ID, len(group.Images))
			for _, img := range group.Images {
				fmt.Fprintf(&sb, "  - %s (%s)\n", img.Path, humanize.Bytes(uint64(img.Size)))
			}
			for _, result := range group.Results {
				sb.WriteString("    " + describeResult(result) + "\n")
			}
			sb.WriteString("\n")
		}
	}

	if len(summary.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n---------------\n")
		for _, rec := range summary.Recommendations {
			fmt.Fprintf(&sb, "[%s] %s -> %s\n", rec.Priority, rec.Description, rec.Action)
		}
	}

	return sb.String()
}

func describeResult(r *api.Result) string {
	if r.Kind == api.ResultDefect {
		return fmt.Sprintf("defect: %s (%s)", r.DefectImage.Path, r.DefectKind)
	}
	return fmt.Sprintf("duplicate: %s <-> %s (diff %.2f, %s)", r.First.Path, r.Second.Path, r.Difference, r.Transform)
}
