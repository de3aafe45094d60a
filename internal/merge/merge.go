// Package merge reconciles two independently evolved snapshots of the
// learning data into one. Records merge by conditional last-writer-wins
// with conflict detection; review events and session logs are historical
// facts and merge by set union.
package merge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/at-ishikawa/vocasync/internal/learning"
	"github.com/at-ishikawa/vocasync/internal/snapshot"
)

// ConflictType classifies why a conflict was emitted.
type ConflictType string

// ConflictBothModified means the same item diverged meaningfully on two
// replicas without one clearly superseding the other.
const ConflictBothModified ConflictType = "both-modified"

// Conflict surfaces one unresolved record divergence. Conflicts are
// transient: they live on the sync status until resolved, never in the
// record store.
type Conflict struct {
	ItemID string                  `json:"item_id"`
	Local  learning.LearningRecord `json:"local"`
	Remote learning.LearningRecord `json:"remote"`
	Type   ConflictType            `json:"type"`
}

// Result is the outcome of one merge pass.
type Result struct {
	Merged    snapshot.Snapshot
	Conflicts []Conflict
}

// Merge reconciles local against remote. A nil remote means there is
// nothing to reconcile: the local snapshot is returned unchanged and the
// caller should upload it as the new remote.
func Merge(local snapshot.Snapshot, remote *snapshot.Snapshot, policy Policy, now time.Time) Result {
	if remote == nil {
		return Result{Merged: local}
	}

	result := Result{
		Merged: snapshot.Snapshot{
			ExportedAt: now,
			Extra:      mergeExtras(local.Extra, remote.Extra),
		},
	}

	remoteByID := make(map[string]learning.LearningRecord, len(remote.Records))
	for _, record := range remote.Records {
		remoteByID[record.ItemID] = record
	}
	localSeen := make(map[string]struct{}, len(local.Records))

	for _, localRecord := range local.Records {
		localSeen[localRecord.ItemID] = struct{}{}

		remoteRecord, ok := remoteByID[localRecord.ItemID]
		if !ok {
			result.Merged.Records = append(result.Merged.Records, localRecord)
			continue
		}

		if localRecord.Equal(remoteRecord) && !policy.AlwaysBumpVersion {
			// Content-identical on both sides: carry through untouched
			// so merging a snapshot with itself is a no-op.
			result.Merged.Records = append(result.Merged.Records, localRecord)
			continue
		}

		if isConflict(localRecord, remoteRecord, policy) {
			result.Conflicts = append(result.Conflicts, Conflict{
				ItemID: localRecord.ItemID,
				Local:  localRecord,
				Remote: remoteRecord,
				Type:   ConflictBothModified,
			})
		}

		resolved := provisionalWinner(localRecord, remoteRecord)
		resolved.SyncVersion = maxInt(localRecord.SyncVersion, remoteRecord.SyncVersion) + 1
		resolved.LastModifiedAt = now
		result.Merged.Records = append(result.Merged.Records, resolved)
	}

	// Remote-only records, in remote order
	for _, remoteRecord := range remote.Records {
		if _, ok := localSeen[remoteRecord.ItemID]; ok {
			continue
		}
		result.Merged.Records = append(result.Merged.Records, remoteRecord)
	}

	result.Merged.ReviewEvents = unionEvents(local.ReviewEvents, remote.ReviewEvents)
	result.Merged.SessionLogs = unionSessions(local.SessionLogs, remote.SessionLogs)
	return result
}

// isConflict applies the conflict heuristic: both replicas advanced the
// record (sync versions differ), far enough apart in time, with at least
// one significant learning field diverging. A difference confined to
// lastModifiedAt never conflicts.
func isConflict(local, remote learning.LearningRecord, policy Policy) bool {
	if local.SyncVersion == remote.SyncVersion {
		return false
	}

	delta := local.LastModifiedAt.Sub(remote.LastModifiedAt)
	if delta < 0 {
		delta = -delta
	}
	if delta <= policy.ConflictWindow {
		return false
	}

	return significantDiff(local, remote)
}

func significantDiff(local, remote learning.LearningRecord) bool {
	return local.Repetitions != remote.Repetitions ||
		local.MasteryLevel != remote.MasteryLevel ||
		local.CorrectCount != remote.CorrectCount
}

// provisionalWinner picks the record used when the caller takes no
// conflict action: newer modification time wins; on an exact tie, the
// longer streak, then the higher mastery.
func provisionalWinner(local, remote learning.LearningRecord) learning.LearningRecord {
	if local.LastModifiedAt.After(remote.LastModifiedAt) {
		return local
	}
	if remote.LastModifiedAt.After(local.LastModifiedAt) {
		return remote
	}
	if local.Repetitions != remote.Repetitions {
		if local.Repetitions > remote.Repetitions {
			return local
		}
		return remote
	}
	if remote.MasteryLevel > local.MasteryLevel {
		return remote
	}
	return local
}

// Choice selects a side when resolving a conflict explicitly.
type Choice string

const (
	ChooseLocal  Choice = "local"
	ChooseRemote Choice = "remote"
)

// Resolve applies an explicit user choice for one conflicted item. The
// chosen record replaces the provisional one in the merged snapshot, its
// sync version is bumped again, and the conflict is removed from the
// outstanding list. The remaining conflicts are returned.
func Resolve(merged *snapshot.Snapshot, conflicts []Conflict, itemID string, choice Choice, now time.Time) ([]Conflict, error) {
	index := -1
	for i, conflict := range conflicts {
		if conflict.ItemID == itemID {
			index = i
			break
		}
	}
	if index < 0 {
		return conflicts, fmt.Errorf("no outstanding conflict for item %q", itemID)
	}

	conflict := conflicts[index]
	chosen := conflict.Local
	if choice == ChooseRemote {
		chosen = conflict.Remote
	}

	replaced := false
	for i := range merged.Records {
		if merged.Records[i].ItemID != itemID {
			continue
		}
		chosen.SyncVersion = merged.Records[i].SyncVersion + 1
		chosen.LastModifiedAt = now
		merged.Records[i] = chosen
		replaced = true
		break
	}
	if !replaced {
		return conflicts, fmt.Errorf("conflicted item %q missing from merged snapshot", itemID)
	}

	remaining := make([]Conflict, 0, len(conflicts)-1)
	remaining = append(remaining, conflicts[:index]...)
	remaining = append(remaining, conflicts[index+1:]...)
	return remaining, nil
}

// unionEvents merges two append-only event logs by dedup. Events are
// keyed by id when present, else by (item id, timestamp), else by full
// content. Local order is kept; remote-only entries are appended.
func unionEvents(local, remote []learning.ReviewEvent) []learning.ReviewEvent {
	seen := make(map[string]struct{}, len(local))
	merged := make([]learning.ReviewEvent, 0, len(local))
	for _, event := range local {
		seen[eventKey(event)] = struct{}{}
		merged = append(merged, event)
	}
	for _, event := range remote {
		key := eventKey(event)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, event)
	}
	return merged
}

func eventKey(event learning.ReviewEvent) string {
	if event.ID != "" {
		return "id:" + event.ID
	}
	if !event.Timestamp.IsZero() {
		return fmt.Sprintf("ts:%s:%d", event.ItemID, event.Timestamp.UnixNano())
	}
	encoded, err := json.Marshal(event)
	if err != nil {
		return fmt.Sprintf("raw:%v", event)
	}
	return "raw:" + string(encoded)
}

func unionSessions(local, remote []learning.SessionLog) []learning.SessionLog {
	seen := make(map[string]struct{}, len(local))
	merged := make([]learning.SessionLog, 0, len(local))
	for _, session := range local {
		seen[sessionKey(session)] = struct{}{}
		merged = append(merged, session)
	}
	for _, session := range remote {
		key := sessionKey(session)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, session)
	}
	return merged
}

func sessionKey(session learning.SessionLog) string {
	if session.ID != "" {
		return "id:" + session.ID
	}
	if !session.StartedAt.IsZero() {
		return fmt.Sprintf("ts:%s:%d", session.DeviceID, session.StartedAt.UnixNano())
	}
	encoded, err := json.Marshal(session)
	if err != nil {
		return fmt.Sprintf("raw:%v", session)
	}
	return "raw:" + string(encoded)
}

func mergeExtras(local, remote map[string]json.RawMessage) map[string]json.RawMessage {
	if len(local) == 0 && len(remote) == 0 {
		return nil
	}
	merged := make(map[string]json.RawMessage, len(local)+len(remote))
	for key, value := range remote {
		merged[key] = value
	}
	// Local wins on overlapping envelope fields
	for key, value := range local {
		merged[key] = value
	}
	return merged
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
