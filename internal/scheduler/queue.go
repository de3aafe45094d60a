package scheduler

import (
	"sort"
	"time"

	"github.com/at-ishikawa/vocasync/internal/learning"
)

// DueItems returns the records due for review at now, most overdue first.
func DueItems(records []learning.LearningRecord, now time.Time) []learning.LearningRecord {
	var due []learning.LearningRecord
	for _, record := range records {
		if !record.NextReviewAt.After(now) {
			due = append(due, record)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextReviewAt.Before(due[j].NextReviewAt)
	})
	return due
}

// NewItems returns up to limit item ids from allIDs that have no record
// yet, keeping the order of allIDs. A negative limit means no limit.
func NewItems(records []learning.LearningRecord, allIDs []string, limit int) []string {
	if limit == 0 {
		return nil
	}

	known := make(map[string]struct{}, len(records))
	for _, record := range records {
		known[record.ItemID] = struct{}{}
	}

	var fresh []string
	for _, id := range allIDs {
		if _, ok := known[id]; ok {
			continue
		}
		fresh = append(fresh, id)
		if limit >= 0 && len(fresh) >= limit {
			break
		}
	}
	return fresh
}
