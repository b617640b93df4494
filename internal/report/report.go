// Package report renders a finished search's results and statistics for
// the CLI: a JSON form for machine consumption and a text form for a
// terminal. Grounded on the teacher's internal/report/generator.go and
// json_report.go (logrus-backed Generator, enhance-then-marshal shape),
// generalized from the teacher's ScanReport/DuplicateGroup/Cluster model
// onto this engine's []*api.Result / []*api.ImageGroup / api.Statistic.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dupimg/dupimg/pkg/api"
)

// Generator renders a Summary to disk in the formats the CLI offers.
type Generator struct {
	logger *logrus.Logger
}

func NewGenerator() *Generator {
	return &Generator{logger: logrus.New()}
}

// Summary is the enhanced, self-contained view of a finished search that
// both report formats render from.
type Summary struct {
	GeneratedAt     time.Time         `json:"generated_at"`
	Statistic       api.Statistic     `json:"statistic"`
	Groups          []*api.ImageGroup `json:"groups"`
	Recommendations []Recommendation  `json:"recommendations"`
}

// Recommendation is one actionable suggestion derived from the summary's
// counts, the teacher's recommendation shape trimmed to what this
// engine's result model can actually back up.
type Recommendation struct {
	Priority    string `json:"priority"` // low, medium, high
	Description string `json:"description"`
	Action      string `json:"action"`
}

// NewSummary builds a Summary from a finished search's live state.
func NewSummary(stat api.Statistic, groups []*api.ImageGroup) *Summary {
	s := &Summary{Statistic: stat, Groups: groups}
	s.Recommendations = recommendationsFor(stat)
	return s
}

// StatisticFromGroups derives a Statistic from a loaded result set
// directly, for callers (like the report command) that only have a
// saved FileResult and not a live engine's running counters.
func StatisticFromGroups(groups []*api.ImageGroup) api.Statistic {
	var stat api.Statistic
	seen := make(map[string]struct{})
	for _, group := range groups {
		for _, img := range group.Images {
			if _, ok := seen[img.Path]; !ok {
				seen[img.Path] = struct{}{}
				stat.CollectedImages++
			}
		}
		for _, r := range group.Results {
			if r.Kind == api.ResultDefect {
				stat.DefectiveImages++
			} else {
				stat.DuplicatePairs++
			}
		}
	}
	return stat
}

func recommendationsFor(stat api.Statistic) []Recommendation {
	var recs []Recommendation
	if stat.DuplicatePairs > 0 {
		recs = append(recs, Recommendation{
			Priority:    "high",
			Description: fmt.Sprintf("found %d duplicate pairs", stat.DuplicatePairs),
			Action:      "review results and apply hints to reclaim space",
		})
	}
	if stat.DefectiveImages > 0 {
		recs = append(recs, Recommendation{
			Priority:    "medium",
			Description: fmt.Sprintf("found %d defective images", stat.DefectiveImages),
			Action:      "inspect defect results before deleting originals",
		})
	}
	if stat.CollectedImages > 5000 {
		recs = append(recs, Recommendation{
			Priority:    "low",
			Description: "large collection scanned",
			Action:      "consider narrowing search paths or raising the minimum file size",
		})
	}
	return recs
}

// JSON writes summary to outputPath as indented JSON.
func (g *Generator) JSON(summary *Summary, outputPath string) error {
	summary.GeneratedAt = time.Now()
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json report: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	g.logger.Infof("json report saved to %s", outputPath)
	return nil
}
