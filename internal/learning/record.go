// Package learning owns the per-item learning records, the append-only
// review history, and the aggregate statistics derived from them.
package learning

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// DefaultEaseFactor is the initial SM-2 easiness multiplier.
	DefaultEaseFactor = 2.5
	// MinEaseFactor is the floor the easiness multiplier is clamped to.
	MinEaseFactor = 1.3
)

// LearningRecord is the mutable per-item scheduling state. Exactly one
// record exists per item id per replica; records are created lazily on
// the first review of an item.
type LearningRecord struct {
	ItemID         string    `json:"item_id" validate:"required"`
	EaseFactor     float64   `json:"ease_factor" validate:"omitempty,gte=1.3"`
	Repetitions    int       `json:"repetitions" validate:"gte=0"`
	IntervalDays   int       `json:"interval_days" validate:"gte=0"`
	NextReviewAt   time.Time `json:"next_review_at"`
	TotalSeen      int       `json:"total_seen" validate:"gte=0"`
	CorrectCount   int       `json:"correct_count" validate:"gte=0,ltefield=TotalSeen"`
	Accuracy       float64   `json:"accuracy" validate:"gte=0,lte=1"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	MasteryLevel   int       `json:"mastery_level" validate:"gte=0,lte=100"`
	LastModifiedAt time.Time `json:"last_modified_at"`
	SyncVersion    int       `json:"sync_version" validate:"gte=0"`

	// Extra carries fields written by newer versions of this tool so a
	// merge on an older version does not drop them.
	Extra map[string]json.RawMessage `json:"-"`
}

// recordAlias avoids recursing into the custom JSON methods below.
type recordAlias LearningRecord

var recordKnownKeys = []string{
	"item_id", "ease_factor", "repetitions", "interval_days",
	"next_review_at", "total_seen", "correct_count", "accuracy",
	"last_reviewed_at", "mastery_level", "last_modified_at", "sync_version",
}

// MarshalJSON emits the known fields plus any preserved unknown fields.
func (r LearningRecord) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(recordAlias(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return known, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(known, &doc); err != nil {
		return nil, err
	}
	for key, value := range r.Extra {
		if _, ok := doc[key]; ok {
			continue
		}
		doc[key] = value
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes the known fields and keeps every unknown field
// in Extra so it survives a round-trip.
func (r *LearningRecord) UnmarshalJSON(data []byte) error {
	var alias recordAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	for _, key := range recordKnownKeys {
		delete(doc, key)
	}
	if len(doc) > 0 {
		alias.Extra = doc
	}

	*r = LearningRecord(alias)
	return nil
}

// Clamp repairs out-of-range derived fields in place. Fields that can be
// recomputed safely are clamped; identity fields are left for Validate.
func (r *LearningRecord) Clamp() {
	if r.EaseFactor == 0 {
		r.EaseFactor = DefaultEaseFactor
	}
	if r.EaseFactor < MinEaseFactor {
		r.EaseFactor = MinEaseFactor
	}
	if r.Repetitions < 0 {
		r.Repetitions = 0
	}
	if r.TotalSeen < 0 {
		r.TotalSeen = 0
	}
	if r.CorrectCount < 0 {
		r.CorrectCount = 0
	}
	if r.CorrectCount > r.TotalSeen {
		r.CorrectCount = r.TotalSeen
	}
	if r.TotalSeen > 0 {
		r.Accuracy = float64(r.CorrectCount) / float64(r.TotalSeen)
	} else {
		r.Accuracy = 0
	}
	if r.MasteryLevel < 0 {
		r.MasteryLevel = 0
	}
	if r.MasteryLevel > 100 {
		r.MasteryLevel = 100
	}
	if r.SyncVersion < 0 {
		r.SyncVersion = 0
	}
}

// Validate rejects records that cannot be repaired by Clamp.
func (r LearningRecord) Validate() error {
	if r.ItemID == "" {
		return &ValidationError{Field: "item_id", Message: "item id is required"}
	}
	if r.IntervalDays < 0 {
		return &ValidationError{Field: "interval_days", Message: fmt.Sprintf("interval must not be negative: %d", r.IntervalDays)}
	}
	return nil
}

// Equal reports whether two records carry identical content, including
// preserved unknown fields. Used by the merge engine to skip version
// bumps on no-op merges.
func (r LearningRecord) Equal(other LearningRecord) bool {
	if r.ItemID != other.ItemID ||
		r.EaseFactor != other.EaseFactor ||
		r.Repetitions != other.Repetitions ||
		r.IntervalDays != other.IntervalDays ||
		!r.NextReviewAt.Equal(other.NextReviewAt) ||
		r.TotalSeen != other.TotalSeen ||
		r.CorrectCount != other.CorrectCount ||
		r.Accuracy != other.Accuracy ||
		!r.LastReviewedAt.Equal(other.LastReviewedAt) ||
		r.MasteryLevel != other.MasteryLevel ||
		!r.LastModifiedAt.Equal(other.LastModifiedAt) ||
		r.SyncVersion != other.SyncVersion {
		return false
	}
	if len(r.Extra) != len(other.Extra) {
		return false
	}
	for key, value := range r.Extra {
		otherValue, ok := other.Extra[key]
		if !ok || string(value) != string(otherValue) {
			return false
		}
	}
	return true
}
