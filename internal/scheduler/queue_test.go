package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/at-ishikawa/vocasync/internal/learning"
)

func TestDueItems(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	records := []learning.LearningRecord{
		{ItemID: "future", NextReviewAt: now.Add(time.Hour)},
		{ItemID: "overdue", NextReviewAt: now.AddDate(0, 0, -3)},
		{ItemID: "exactly-now", NextReviewAt: now},
		{ItemID: "yesterday", NextReviewAt: now.AddDate(0, 0, -1)},
	}

	got := DueItems(records, now)

	ids := make([]string, 0, len(got))
	for _, record := range got {
		ids = append(ids, record.ItemID)
	}
	assert.Equal(t, []string{"overdue", "yesterday", "exactly-now"}, ids)
}

func TestDueItems_Empty(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	assert.Empty(t, DueItems(nil, now))
}

func TestNewItems(t *testing.T) {
	records := []learning.LearningRecord{
		{ItemID: "seen-1"},
		{ItemID: "seen-2"},
	}
	allIDs := []string{"seen-1", "fresh-1", "seen-2", "fresh-2", "fresh-3"}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{
			name:  "limit keeps wordlist order",
			limit: 2,
			want:  []string{"fresh-1", "fresh-2"},
		},
		{
			name:  "negative limit returns all unseen items",
			limit: -1,
			want:  []string{"fresh-1", "fresh-2", "fresh-3"},
		},
		{
			name:  "zero limit introduces nothing",
			limit: 0,
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewItems(records, allIDs, tt.limit))
		})
	}
}
