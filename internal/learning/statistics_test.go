package learning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateStatistics(t *testing.T) {
	january := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	february := time.Date(2026, 2, 5, 9, 0, 0, 0, time.UTC)

	events := []ReviewEvent{
		{ItemID: "word-1", Quality: 5, Correct: true, Timestamp: january},
		{ItemID: "word-2", Quality: 2, Correct: false, Timestamp: january.Add(time.Hour)},
		{ItemID: "word-1", Quality: 4, Correct: true, Timestamp: february},
		{ItemID: "word-3", Quality: 3, Correct: true, Timestamp: february.Add(time.Hour)},
	}

	tests := []struct {
		name          string
		year          int
		month         int
		wantPeriods   []PeriodStatistics
		wantAggregate AggregateStatistics
	}{
		{
			name: "no filter returns every period newest first",
			wantPeriods: []PeriodStatistics{
				{Period: "2026-02", Reviews: 2, Correct: 2, NewItems: 1, Accuracy: 1},
				{Period: "2026-01", Reviews: 2, Correct: 1, NewItems: 2, Accuracy: 0.5},
			},
			wantAggregate: AggregateStatistics{Reviews: 4, Correct: 3, NewItems: 3, Accuracy: 0.75},
		},
		{
			name:  "month filter keeps only the matching period",
			year:  2026,
			month: 2,
			wantPeriods: []PeriodStatistics{
				{Period: "2026-02", Reviews: 2, Correct: 2, NewItems: 1, Accuracy: 1},
			},
			wantAggregate: AggregateStatistics{Reviews: 2, Correct: 2, NewItems: 1, Accuracy: 1},
		},
		{
			name:          "year without events is empty",
			year:          2020,
			wantPeriods:   []PeriodStatistics{},
			wantAggregate: AggregateStatistics{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateStatistics(events, tt.year, tt.month)

			assert.Equal(t, tt.wantPeriods, got.Periods)
			assert.Equal(t, tt.wantAggregate, got.Aggregate)
		})
	}
}

func TestCalculateStatistics_FirstEventBeforeFilterIsNotNew(t *testing.T) {
	events := []ReviewEvent{
		{ItemID: "word-1", Quality: 5, Correct: true, Timestamp: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)},
		{ItemID: "word-1", Quality: 4, Correct: true, Timestamp: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)},
	}

	got := CalculateStatistics(events, 2026, 2)

	require.Len(t, got.Periods, 1)
	assert.Equal(t, 0, got.Periods[0].NewItems)
	assert.Equal(t, 1, got.Periods[0].Reviews)
}

func TestCalculateStatistics_IgnoresEventsWithoutTimestamp(t *testing.T) {
	events := []ReviewEvent{
		{ItemID: "word-1", Quality: 5, Correct: true},
	}

	got := CalculateStatistics(events, 0, 0)
	assert.Empty(t, got.Periods)
	assert.Equal(t, AggregateStatistics{}, got.Aggregate)
}
