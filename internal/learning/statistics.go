package learning

import (
	"fmt"
	"sort"
)

// PeriodStatistics holds review statistics for one month.
type PeriodStatistics struct {
	Period   string // "2025-01"
	Reviews  int    // review events in the period
	Correct  int    // events graded as remembered
	NewItems int    // items reviewed for the first time in the period
	Accuracy float64
}

// AggregateStatistics holds totals across all periods.
type AggregateStatistics struct {
	Reviews  int
	Correct  int
	NewItems int
	Accuracy float64
}

// StatisticsResult holds both per-period and aggregate statistics.
type StatisticsResult struct {
	Periods   []PeriodStatistics
	Aggregate AggregateStatistics
}

type periodData struct {
	reviews  int
	correct  int
	newItems int
}

// CalculateStatistics derives review statistics from the append-only
// event history. It accepts optional year and month filters (0 means no
// filter). An item counts as new in the period of its first event.
func CalculateStatistics(events []ReviewEvent, year, month int) StatisticsResult {
	stats := make(map[string]*periodData)
	seen := make(map[string]struct{})

	ordered := make([]ReviewEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var totalReviews, totalCorrect, totalNew int
	for _, event := range ordered {
		if event.Timestamp.IsZero() {
			continue
		}

		_, alreadySeen := seen[event.ItemID]
		seen[event.ItemID] = struct{}{}

		eventYear := event.Timestamp.Year()
		eventMonth := int(event.Timestamp.Month())
		if !matchesFilter(eventYear, eventMonth, year, month) {
			continue
		}

		period := fmt.Sprintf("%d-%02d", eventYear, eventMonth)
		if stats[period] == nil {
			stats[period] = &periodData{}
		}

		stats[period].reviews++
		totalReviews++
		if event.Correct {
			stats[period].correct++
			totalCorrect++
		}
		if !alreadySeen {
			stats[period].newItems++
			totalNew++
		}
	}

	periods := make([]PeriodStatistics, 0, len(stats))
	for period, data := range stats {
		periods = append(periods, PeriodStatistics{
			Period:   period,
			Reviews:  data.reviews,
			Correct:  data.correct,
			NewItems: data.newItems,
			Accuracy: accuracyOf(data.correct, data.reviews),
		})
	}

	// Newest period first
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Period > periods[j].Period
	})

	return StatisticsResult{
		Periods: periods,
		Aggregate: AggregateStatistics{
			Reviews:  totalReviews,
			Correct:  totalCorrect,
			NewItems: totalNew,
			Accuracy: accuracyOf(totalCorrect, totalReviews),
		},
	}
}

func matchesFilter(eventYear, eventMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if eventYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return eventMonth == filterMonth
}

func accuracyOf(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}
