package snapshot

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/vocasync/internal/learning"
)

func TestSerializeDeserialize_RoundTrip(t *testing.T) {
	exportedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	original := New(
		[]learning.LearningRecord{
			{
				ItemID:       "word-1",
				EaseFactor:   2.5,
				Repetitions:  3,
				IntervalDays: 15,
				TotalSeen:    4,
				CorrectCount: 3,
				Accuracy:     0.75,
				MasteryLevel: 90,
				SyncVersion:  2,
			},
		},
		[]learning.ReviewEvent{
			{ID: "event-1", ItemID: "word-1", Quality: 4, Correct: true, Timestamp: exportedAt},
		},
		[]learning.SessionLog{
			{ID: "session-1", StartedAt: exportedAt, FinishedAt: exportedAt.Add(time.Minute), Reviewed: 1, Correct: 1},
		},
		exportedAt,
	)

	blob, err := Serialize(original)
	require.NoError(t, err)

	decoded, err := Deserialize(blob)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDeserialize_KeepsUnknownFields(t *testing.T) {
	blob := []byte(`{
		"records": [
			{"item_id": "word-1", "ease_factor": 2.5, "device_hint": "phone"}
		],
		"review_events": [],
		"session_logs": [],
		"exported_at": "2026-08-01T12:00:00Z",
		"schema_revision": 7
	}`)

	decoded, err := Deserialize(blob)
	require.NoError(t, err)

	require.Contains(t, decoded.Extra, "schema_revision")
	require.Len(t, decoded.Records, 1)
	require.Contains(t, decoded.Records[0].Extra, "device_hint")

	encoded, err := Serialize(decoded)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(encoded, &doc))
	assert.JSONEq(t, `7`, string(doc["schema_revision"]))
}

func TestDeserialize_Malformed(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{
			name: "not json",
			blob: "{broken",
		},
		{
			name: "record without item id",
			blob: `{"records": [{"ease_factor": 2.5}], "exported_at": "2026-08-01T12:00:00Z"}`,
		},
		{
			name: "review event with quality out of range",
			blob: `{"records": [], "review_events": [{"item_id": "word-1", "quality": 9}], "exported_at": "2026-08-01T12:00:00Z"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize([]byte(tt.blob))

			var malformed *MalformedSnapshotError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestDeserialize_ClampsRepairableFields(t *testing.T) {
	blob := []byte(`{
		"records": [
			{"item_id": "word-1", "ease_factor": 0.4, "total_seen": 2, "correct_count": 5}
		],
		"exported_at": "2026-08-01T12:00:00Z"
	}`)

	decoded, err := Deserialize(blob)
	require.NoError(t, err)

	require.Len(t, decoded.Records, 1)
	assert.InDelta(t, learning.MinEaseFactor, decoded.Records[0].EaseFactor, 1e-9)
	assert.Equal(t, 2, decoded.Records[0].CorrectCount)
	assert.InDelta(t, 1.0, decoded.Records[0].Accuracy, 1e-9)
}

func TestChecksum_OrderIndependent(t *testing.T) {
	exportedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	first := learning.LearningRecord{ItemID: "word-1", EaseFactor: 2.5}
	second := learning.LearningRecord{ItemID: "word-2", EaseFactor: 2.6}

	a, err := Checksum(New([]learning.LearningRecord{first, second}, nil, nil, exportedAt))
	require.NoError(t, err)
	b, err := Checksum(New([]learning.LearningRecord{second, first}, nil, nil, exportedAt))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestChecksum_DetectsContentChange(t *testing.T) {
	exportedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	record := learning.LearningRecord{ItemID: "word-1", EaseFactor: 2.5}

	a, err := Checksum(New([]learning.LearningRecord{record}, nil, nil, exportedAt))
	require.NoError(t, err)

	record.Repetitions = 1
	b, err := Checksum(New([]learning.LearningRecord{record}, nil, nil, exportedAt))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
