// Package report renders learning progress as a markdown document.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/at-ishikawa/vocasync/internal/learning"
)

// RenderMarkdown builds a progress report from statistics and the
// weakest items.
func RenderMarkdown(result learning.StatisticsResult, weakest []learning.LearningRecord, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Learning progress\n\n")
	fmt.Fprintf(&b, "Generated at %s\n\n", generatedAt.Format("2006-01-02 15:04"))

	fmt.Fprintf(&b, "## Totals\n\n")
	fmt.Fprintf(&b, "- Reviews: %d\n", result.Aggregate.Reviews)
	fmt.Fprintf(&b, "- Correct: %d (%.0f%%)\n", result.Aggregate.Correct, result.Aggregate.Accuracy*100)
	fmt.Fprintf(&b, "- New items: %d\n\n", result.Aggregate.NewItems)

	if len(result.Periods) > 0 {
		fmt.Fprintf(&b, "## By month\n\n")
		fmt.Fprintf(&b, "| Month | Reviews | Correct | New items | Accuracy |\n")
		fmt.Fprintf(&b, "|-------|---------|---------|-----------|----------|\n")
		for _, period := range result.Periods {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %.0f%% |\n",
				period.Period, period.Reviews, period.Correct, period.NewItems, period.Accuracy*100)
		}
		fmt.Fprintf(&b, "\n")
	}

	if len(weakest) > 0 {
		fmt.Fprintf(&b, "## Weakest items\n\n")
		fmt.Fprintf(&b, "| Item | Accuracy | Mastery | Seen |\n")
		fmt.Fprintf(&b, "|------|----------|---------|------|\n")
		for _, record := range weakest {
			fmt.Fprintf(&b, "| %s | %.0f%% | %d | %d |\n",
				record.ItemID, record.Accuracy*100, record.MasteryLevel, record.TotalSeen)
		}
		fmt.Fprintf(&b, "\n")
	}

	return b.String()
}
