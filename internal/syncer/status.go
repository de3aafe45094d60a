package syncer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/vocasync/internal/localstore"
	"github.com/at-ishikawa/vocasync/internal/merge"
)

// Local document keys owned by the orchestrator.
const (
	keyMetadata  = "sync_metadata"
	keyDeviceID  = "device_id"
	keyAutoSync  = "auto_sync"
	keyConflicts = "sync_conflicts"
)

// Metadata tracks the outcome of the last successful sync. It is stored
// alongside the snapshot locally and is never transmitted as part of the
// snapshot's record data.
type Metadata struct {
	LastSyncTime time.Time `json:"last_sync_time"`
	Checksum     string    `json:"checksum"`
	RecordCount  int       `json:"record_count"`
	DeviceID     string    `json:"device_id"`
	SyncVersion  int       `json:"sync_version"`
}

// Status is the externally observable sync state.
type Status struct {
	LastSyncTime time.Time
	InProgress   bool
	LoggedOut    bool
	LastError    string
	Conflicts    []merge.Conflict
}

type deviceIdentity struct {
	DeviceID string `json:"device_id"`
}

// loadOrCreateDeviceID returns the stable per-installation identifier,
// generating and persisting one on first use.
func loadOrCreateDeviceID(docs *localstore.Store) (string, error) {
	var identity deviceIdentity
	found, err := docs.Read(keyDeviceID, &identity)
	if err != nil {
		return "", fmt.Errorf("docs.Read(%s) > %w", keyDeviceID, err)
	}
	if found && identity.DeviceID != "" {
		return identity.DeviceID, nil
	}

	identity.DeviceID = uuid.NewString()
	if err := docs.Write(keyDeviceID, identity); err != nil {
		return "", fmt.Errorf("docs.Write(%s) > %w", keyDeviceID, err)
	}
	return identity.DeviceID, nil
}

type autoSyncSetting struct {
	Enabled bool `json:"enabled"`
}

// AutoSyncEnabled reads the persisted auto-sync flag.
func AutoSyncEnabled(docs *localstore.Store) (bool, error) {
	var setting autoSyncSetting
	if _, err := docs.Read(keyAutoSync, &setting); err != nil {
		return false, fmt.Errorf("docs.Read(%s) > %w", keyAutoSync, err)
	}
	return setting.Enabled, nil
}

// SetAutoSync persists the auto-sync flag.
func SetAutoSync(docs *localstore.Store, enabled bool) error {
	if err := docs.Write(keyAutoSync, autoSyncSetting{Enabled: enabled}); err != nil {
		return fmt.Errorf("docs.Write(%s) > %w", keyAutoSync, err)
	}
	return nil
}
