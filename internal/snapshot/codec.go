package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/go-playground/validator/v10"
)

// MalformedSnapshotError reports a blob that could not be decoded into a
// valid snapshot. The operation that triggered the decode aborts without
// any state change.
type MalformedSnapshotError struct {
	Err error
}

func (e *MalformedSnapshotError) Error() string {
	return fmt.Sprintf("malformed snapshot: %v", e.Err)
}

func (e *MalformedSnapshotError) Unwrap() error {
	return e.Err
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Serialize encodes a snapshot as a self-describing JSON document.
func Serialize(s Snapshot) ([]byte, error) {
	blob, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json.Marshal > %w", err)
	}
	return blob, nil
}

// Deserialize decodes a blob and validates every record at the boundary,
// so the merge engine always operates on a checked in-memory type.
func Deserialize(blob []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(blob, &s); err != nil {
		return Snapshot{}, &MalformedSnapshotError{Err: err}
	}

	for i := range s.Records {
		s.Records[i].Clamp()
		if err := validate.Struct(s.Records[i]); err != nil {
			return Snapshot{}, &MalformedSnapshotError{Err: fmt.Errorf("record %q: %w", s.Records[i].ItemID, err)}
		}
	}
	for i := range s.ReviewEvents {
		if err := validate.Struct(s.ReviewEvents[i]); err != nil {
			return Snapshot{}, &MalformedSnapshotError{Err: fmt.Errorf("review event %d: %w", i, err)}
		}
	}

	return s, nil
}

// Checksum returns a stable, order-independent hash over the snapshot
// content, sufficient to detect accidental corruption. Entry hashes are
// combined by addition so the result does not depend on collection order.
func Checksum(s Snapshot) (string, error) {
	var sum uint64

	add := func(v any) error {
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("json.Marshal > %w", err)
		}
		sum += xxhash.Sum64(encoded)
		return nil
	}

	for _, record := range s.Records {
		if err := add(record); err != nil {
			return "", err
		}
	}
	for _, event := range s.ReviewEvents {
		if err := add(event); err != nil {
			return "", err
		}
	}
	for _, session := range s.SessionLogs {
		if err := add(session); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%016x", sum), nil
}
