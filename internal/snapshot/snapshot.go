// Package snapshot defines the exportable unit of learning data and its
// serialized form. The blob is a self-describing JSON document: fields a
// reader does not understand are preserved opaquely so an older version
// never drops data written by a newer one.
package snapshot

import (
	"encoding/json"
	"time"

	"github.com/at-ishikawa/vocasync/internal/learning"
)

// Snapshot is the complete exportable state at a point in time.
type Snapshot struct {
	Records      []learning.LearningRecord `json:"records"`
	ReviewEvents []learning.ReviewEvent    `json:"review_events"`
	SessionLogs  []learning.SessionLog     `json:"session_logs"`
	ExportedAt   time.Time                 `json:"exported_at"`

	// Extra preserves unknown envelope fields across a round-trip.
	Extra map[string]json.RawMessage `json:"-"`
}

// New builds a snapshot from the store collections.
func New(records []learning.LearningRecord, events []learning.ReviewEvent, sessions []learning.SessionLog, exportedAt time.Time) Snapshot {
	return Snapshot{
		Records:      records,
		ReviewEvents: events,
		SessionLogs:  sessions,
		ExportedAt:   exportedAt,
	}
}

type snapshotAlias Snapshot

var snapshotKnownKeys = []string{"records", "review_events", "session_logs", "exported_at"}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(snapshotAlias(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return known, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(known, &doc); err != nil {
		return nil, err
	}
	for key, value := range s.Extra {
		if _, ok := doc[key]; ok {
			continue
		}
		doc[key] = value
	}
	return json.Marshal(doc)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var alias snapshotAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	for _, key := range snapshotKnownKeys {
		delete(doc, key)
	}
	if len(doc) > 0 {
		alias.Extra = doc
	}

	*s = Snapshot(alias)
	return nil
}

// RecordByID returns the record for an item id, if present.
func (s Snapshot) RecordByID(itemID string) (learning.LearningRecord, bool) {
	for _, record := range s.Records {
		if record.ItemID == itemID {
			return record, true
		}
	}
	return learning.LearningRecord{}, false
}
