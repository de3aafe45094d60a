package syncer

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned when a sync is requested while another
// one is in flight. Requests are rejected, never queued.
var ErrSyncInProgress = errors.New("sync already in progress")

// ErrNoRemoteData reports that a download found no remote snapshot.
// This is an informational outcome, not a failure.
var ErrNoRemoteData = errors.New("no remote data")

// AuthExpiredError means the remote session is no longer valid. The
// orchestrator drops to a logged-out state and does not retry.
type AuthExpiredError struct {
	Err error
}

func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf("authentication expired: %v", e.Err)
}

func (e *AuthExpiredError) Unwrap() error {
	return e.Err
}

// SyncError is a transient sync failure. It is surfaced without
// automatic retry and the local record store is left untouched.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s failed: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
