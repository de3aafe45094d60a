package learning

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/at-ishikawa/vocasync/internal/localstore"
)

// Document keys for the local persistence boundary. One document per
// logical collection so each can be read and written independently.
const (
	keyRecords     = "learning_records"
	keyEvents      = "review_events"
	keySessionLogs = "session_logs"
)

// Store is the single writer of learning record state. It keeps the
// collections in memory and persists each mutation through the local
// document store. A corrupt document is reported as a warning and the
// affected collection falls back to empty rather than failing startup.
//
// All accessors hold the store mutex: a review session and a background
// sync mutate the same collections from different goroutines, and a
// merge must not interleave with an in-flight review write.
type Store struct {
	mu       sync.RWMutex
	docs     *localstore.Store
	records  map[string]LearningRecord
	events   []ReviewEvent
	sessions []SessionLog

	changes chan struct{}
	now     func() time.Time
}

// NewStore loads the persisted collections and returns a ready store.
func NewStore(docs *localstore.Store) (*Store, error) {
	store := &Store{
		docs:    docs,
		records: map[string]LearningRecord{},
		changes: make(chan struct{}, 1),
		now:     time.Now,
	}

	var records []LearningRecord
	if err := store.load(keyRecords, &records); err != nil {
		return nil, err
	}
	for _, record := range records {
		record.Clamp()
		store.records[record.ItemID] = record
	}
	if err := store.load(keyEvents, &store.events); err != nil {
		return nil, err
	}
	if err := store.load(keySessionLogs, &store.sessions); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) load(key string, v any) error {
	if _, err := s.docs.Read(key, v); err != nil {
		var corrupt *localstore.CorruptStateError
		if errors.As(err, &corrupt) {
			slog.Default().Warn("local collection is corrupt, starting empty",
				"key", key,
				"error", err)
			return nil
		}
		return fmt.Errorf("docs.Read(%s) > %w", key, err)
	}
	return nil
}

// Get returns the record for an item id.
func (s *Store) Get(itemID string) (LearningRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[itemID]
	return record, ok
}

// Upsert validates and stores a record, replacing any existing record
// for the same item id, and refreshes its modification time.
func (s *Store) Upsert(record LearningRecord) error {
	record.Clamp()
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record.LastModifiedAt = s.now()
	s.records[record.ItemID] = record
	if err := s.persistRecords(); err != nil {
		return err
	}
	s.notify()
	return nil
}

// All returns every record, ordered by item id.
func (s *Store) All() []LearningRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.allLocked()
}

// allLocked builds the sorted record slice. Callers hold s.mu.
func (s *Store) allLocked() []LearningRecord {
	records := make([]LearningRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ItemID < records[j].ItemID
	})
	return records
}

// Weakest returns up to n reviewed records ordered by ascending accuracy.
func (s *Store) Weakest(n int) []LearningRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []LearningRecord
	for _, record := range s.records {
		if record.TotalSeen > 0 {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Accuracy != records[j].Accuracy {
			return records[i].Accuracy < records[j].Accuracy
		}
		return records[i].ItemID < records[j].ItemID
	})
	if n >= 0 && len(records) > n {
		records = records[:n]
	}
	return records
}

// AppendReviewEvent appends one immutable review event.
func (s *Store) AppendReviewEvent(event ReviewEvent) error {
	if event.ItemID == "" {
		return &ValidationError{Field: "item_id", Message: "item id is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	if err := s.docs.Write(keyEvents, s.events); err != nil {
		return fmt.Errorf("docs.Write(%s) > %w", keyEvents, err)
	}
	s.notify()
	return nil
}

// AppendSessionLog appends one session summary.
func (s *Store) AppendSessionLog(log SessionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = append(s.sessions, log)
	if err := s.docs.Write(keySessionLogs, s.sessions); err != nil {
		return fmt.Errorf("docs.Write(%s) > %w", keySessionLogs, err)
	}
	s.notify()
	return nil
}

// Events returns the append-only review history in insertion order.
func (s *Store) Events() []ReviewEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]ReviewEvent, len(s.events))
	copy(events, s.events)
	return events
}

// Sessions returns the session logs in insertion order.
func (s *Store) Sessions() []SessionLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]SessionLog, len(s.sessions))
	copy(sessions, s.sessions)
	return sessions
}

// ReplaceAll replaces every collection wholesale. Used when applying a
// merged or imported snapshot; records keep their own timestamps.
func (s *Store) ReplaceAll(records []LearningRecord, events []ReviewEvent, sessions []SessionLog) error {
	replaced := make(map[string]LearningRecord, len(records))
	for _, record := range records {
		record.Clamp()
		if err := record.Validate(); err != nil {
			return err
		}
		replaced[record.ItemID] = record
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = replaced
	s.events = append([]ReviewEvent{}, events...)
	s.sessions = append([]SessionLog{}, sessions...)

	if err := s.persistRecords(); err != nil {
		return err
	}
	if err := s.docs.Write(keyEvents, s.events); err != nil {
		return fmt.Errorf("docs.Write(%s) > %w", keyEvents, err)
	}
	if err := s.docs.Write(keySessionLogs, s.sessions); err != nil {
		return fmt.Errorf("docs.Write(%s) > %w", keySessionLogs, err)
	}
	s.notify()
	return nil
}

// Changes reports mutations with a coalescing buffer of one. A debounced
// subscriber outside this package decides whether to trigger a sync.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

func (s *Store) persistRecords() error {
	if err := s.docs.Write(keyRecords, s.allLocked()); err != nil {
		return fmt.Errorf("docs.Write(%s) > %w", keyRecords, err)
	}
	return nil
}

func (s *Store) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
