// Package scheduler computes how a learning record evolves after a
// review. It implements a modified SM-2: interval growth is driven by a
// per-item easiness factor, a lapse fully resets the streak, and the
// mastery level compounds accuracy with the streak length.
package scheduler

import (
	"math"
	"time"

	"github.com/at-ishikawa/vocasync/internal/learning"
)

// MaxQuality is the top of the ordinal quality scale (0-5).
const MaxQuality = 5

// NewRecord returns the initial record for an item on its first review.
func NewRecord(itemID string) learning.LearningRecord {
	return learning.LearningRecord{
		ItemID:     itemID,
		EaseFactor: learning.DefaultEaseFactor,
	}
}

// Schedule applies one quality grade to a record and returns the updated
// record. It is pure: the input record is not modified, no I/O happens,
// and the result is fully determined by (record, quality, now).
func Schedule(record learning.LearningRecord, quality int, now time.Time) learning.LearningRecord {
	if quality < 0 {
		quality = 0
	}
	if quality > MaxQuality {
		quality = MaxQuality
	}
	if record.EaseFactor == 0 {
		record.EaseFactor = learning.DefaultEaseFactor
	}

	remembered := quality >= learning.RememberedThreshold
	if remembered {
		switch record.Repetitions {
		case 0:
			record.IntervalDays = 1
		case 1:
			record.IntervalDays = 6
		default:
			record.IntervalDays = int(math.Round(float64(record.IntervalDays) * record.EaseFactor))
		}
		record.Repetitions++
	} else {
		record.Repetitions = 0
		record.IntervalDays = 1
	}

	record.EaseFactor = updateEaseFactor(record.EaseFactor, quality)
	record.NextReviewAt = now.AddDate(0, 0, record.IntervalDays)

	record.TotalSeen++
	if remembered {
		record.CorrectCount++
	}
	record.Accuracy = float64(record.CorrectCount) / float64(record.TotalSeen)

	// Mastery uses the post-update repetitions on purpose: it compounds
	// accuracy with the current streak length.
	record.MasteryLevel = masteryLevel(record.Accuracy, record.Repetitions)

	record.LastReviewedAt = now
	record.LastModifiedAt = now
	return record
}

// updateEaseFactor applies the standard SM-2 easiness delta and clamps
// the result to the minimum. There is no upper bound: consistently easy
// items are allowed to accrue very long intervals.
func updateEaseFactor(ef float64, quality int) float64 {
	q := float64(quality)
	ef += 0.1 - (5-q)*(0.08+(5-q)*0.02)
	return math.Max(ef, learning.MinEaseFactor)
}

func masteryLevel(accuracy float64, repetitions int) int {
	level := int(math.Round(accuracy * 100 * (1 + float64(repetitions)*0.1)))
	if level > 100 {
		return 100
	}
	if level < 0 {
		return 0
	}
	return level
}
