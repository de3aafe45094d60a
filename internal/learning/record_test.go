package learning

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLearningRecord_JSONRoundTripKeepsUnknownFields(t *testing.T) {
	blob := []byte(`{
		"item_id": "word-1",
		"ease_factor": 2.5,
		"repetitions": 3,
		"interval_days": 15,
		"total_seen": 4,
		"correct_count": 3,
		"accuracy": 0.75,
		"mastery_level": 90,
		"sync_version": 2,
		"future_field": {"nested": true},
		"another_future_field": "value"
	}`)

	var record LearningRecord
	require.NoError(t, json.Unmarshal(blob, &record))

	assert.Equal(t, "word-1", record.ItemID)
	require.Contains(t, record.Extra, "future_field")
	require.Contains(t, record.Extra, "another_future_field")

	encoded, err := json.Marshal(record)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(encoded, &doc))
	assert.JSONEq(t, `{"nested": true}`, string(doc["future_field"]))
	assert.JSONEq(t, `"value"`, string(doc["another_future_field"]))
}

func TestLearningRecord_Clamp(t *testing.T) {
	tests := []struct {
		name   string
		record LearningRecord
		want   LearningRecord
	}{
		{
			name:   "zero ease factor becomes the default",
			record: LearningRecord{ItemID: "word-1"},
			want:   LearningRecord{ItemID: "word-1", EaseFactor: DefaultEaseFactor},
		},
		{
			name:   "ease factor below the floor is raised",
			record: LearningRecord{ItemID: "word-1", EaseFactor: 0.5},
			want:   LearningRecord{ItemID: "word-1", EaseFactor: MinEaseFactor},
		},
		{
			name:   "correct count above total seen is capped and accuracy recomputed",
			record: LearningRecord{ItemID: "word-1", EaseFactor: 2.5, TotalSeen: 3, CorrectCount: 5, Accuracy: 0.2},
			want:   LearningRecord{ItemID: "word-1", EaseFactor: 2.5, TotalSeen: 3, CorrectCount: 3, Accuracy: 1},
		},
		{
			name:   "mastery level above one hundred is capped",
			record: LearningRecord{ItemID: "word-1", EaseFactor: 2.5, MasteryLevel: 140},
			want:   LearningRecord{ItemID: "word-1", EaseFactor: 2.5, MasteryLevel: 100},
		},
		{
			name:   "negative counters reset to zero",
			record: LearningRecord{ItemID: "word-1", EaseFactor: 2.5, Repetitions: -1, TotalSeen: -2, CorrectCount: -3, SyncVersion: -1},
			want:   LearningRecord{ItemID: "word-1", EaseFactor: 2.5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.record.Clamp()
			assert.Equal(t, tt.want, tt.record)
		})
	}
}

func TestLearningRecord_Equal(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	base := LearningRecord{
		ItemID:         "word-1",
		EaseFactor:     2.5,
		Repetitions:    3,
		IntervalDays:   15,
		LastModifiedAt: now,
		SyncVersion:    2,
		Extra:          map[string]json.RawMessage{"future": json.RawMessage(`1`)},
	}

	same := base
	same.Extra = map[string]json.RawMessage{"future": json.RawMessage(`1`)}
	assert.True(t, base.Equal(same))

	differentField := base
	differentField.Repetitions = 4
	assert.False(t, base.Equal(differentField))

	differentExtra := base
	differentExtra.Extra = map[string]json.RawMessage{"future": json.RawMessage(`2`)}
	assert.False(t, base.Equal(differentExtra))
}
