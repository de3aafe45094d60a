package learning

import "time"

// RememberedThreshold is the lowest quality grade that counts as a
// successful recall. Grades below it are lapses.
const RememberedThreshold = 3

// ReviewEvent is one immutable review outcome. Events are append-only
// historical facts: they feed aggregate statistics and travel inside
// snapshots, but the merge engine never replays them into record state.
type ReviewEvent struct {
	ID          string    `json:"id,omitempty"`
	ItemID      string    `json:"item_id" validate:"required"`
	Quality     int       `json:"quality" validate:"gte=0,lte=5"`
	Correct     bool      `json:"correct"`
	TimeSpentMs int64     `json:"time_spent_ms" validate:"gte=0"`
	Timestamp   time.Time `json:"timestamp"`
}

// SessionLog summarizes one review session.
type SessionLog struct {
	ID         string    `json:"id,omitempty"`
	DeviceID   string    `json:"device_id,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Reviewed   int       `json:"reviewed"`
	Correct    int       `json:"correct"`
}
