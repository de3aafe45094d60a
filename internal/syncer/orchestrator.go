// Package syncer orchestrates snapshot synchronization against the
// remote blob store. Exactly one sync may be in flight at a time; all
// sync-path failures leave the previously persisted local state exactly
// as it was before the attempt.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/at-ishikawa/vocasync/internal/learning"
	"github.com/at-ishikawa/vocasync/internal/localstore"
	"github.com/at-ishikawa/vocasync/internal/merge"
	"github.com/at-ishikawa/vocasync/internal/remote"
	"github.com/at-ishikawa/vocasync/internal/snapshot"
)

// Strategy selects how a sync reconciles local and remote state.
type Strategy string

const (
	// StrategyUpload overwrites the remote snapshot with local state.
	StrategyUpload Strategy = "upload"
	// StrategyDownload replaces local state with the remote snapshot.
	StrategyDownload Strategy = "download"
	// StrategyMerge reconciles both sides and writes the result to each.
	// This is the default.
	StrategyMerge Strategy = "merge"
)

// Orchestrator coordinates the merge engine, the snapshot codec, and
// the remote blob store.
type Orchestrator struct {
	store  *learning.Store
	docs   *localstore.Store
	blob   remote.BlobStore
	policy merge.Policy

	folderName string
	fileName   string
	deviceID   string

	mu     sync.Mutex
	status Status
	now    func() time.Time
}

// NewOrchestrator creates an orchestrator. The device identifier is
// loaded from the local document store, generated on first use.
func NewOrchestrator(store *learning.Store, docs *localstore.Store, blob remote.BlobStore, policy merge.Policy, folderName, fileName string) (*Orchestrator, error) {
	deviceID, err := loadOrCreateDeviceID(docs)
	if err != nil {
		return nil, fmt.Errorf("loadOrCreateDeviceID > %w", err)
	}

	orchestrator := &Orchestrator{
		store:      store,
		docs:       docs,
		blob:       blob,
		policy:     policy,
		folderName: folderName,
		fileName:   fileName,
		deviceID:   deviceID,
		now:        time.Now,
	}

	var metadata Metadata
	if _, err := docs.Read(keyMetadata, &metadata); err == nil {
		orchestrator.status.LastSyncTime = metadata.LastSyncTime
	}

	// Outstanding conflicts outlive the process that detected them, so
	// every CLI invocation sees and can resolve them.
	var conflicts []merge.Conflict
	if found, err := docs.Read(keyConflicts, &conflicts); err == nil && found {
		orchestrator.status.Conflicts = conflicts
	}

	return orchestrator, nil
}

// DeviceID returns the stable per-installation identifier.
func (o *Orchestrator) DeviceID() string {
	return o.deviceID
}

// Status returns a copy of the current sync status.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	status := o.status
	status.Conflicts = append([]merge.Conflict{}, o.status.Conflicts...)
	return status
}

// Sync runs one sync attempt with the given strategy. A second request
// while one is in flight is rejected with ErrSyncInProgress.
func (o *Orchestrator) Sync(ctx context.Context, strategy Strategy) (Status, error) {
	if err := o.begin(); err != nil {
		return o.Status(), err
	}

	var err error
	switch strategy {
	case StrategyUpload:
		err = o.upload(ctx)
	case StrategyDownload:
		err = o.download(ctx)
	case StrategyMerge, "":
		err = o.mergeSync(ctx)
	default:
		err = fmt.Errorf("unknown sync strategy %q", strategy)
	}

	o.end(err)
	return o.Status(), err
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status.InProgress {
		return ErrSyncInProgress
	}
	o.status.InProgress = true
	o.status.LastError = ""
	return nil
}

func (o *Orchestrator) end(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.status.InProgress = false
	if err == nil {
		o.status.LastSyncTime = o.now()
		o.status.LoggedOut = false
		return
	}
	if errors.Is(err, ErrNoRemoteData) {
		return
	}

	o.status.LastError = err.Error()
	var authErr *AuthExpiredError
	if errors.As(err, &authErr) {
		o.status.LoggedOut = true
	}
}

// upload serializes the local snapshot and overwrites the remote file,
// creating it when absent.
func (o *Orchestrator) upload(ctx context.Context) error {
	local := o.localSnapshot()
	if err := o.writeRemote(ctx, local); err != nil {
		return err
	}
	if err := o.updateMetadata(local); err != nil {
		return err
	}
	return o.setConflicts(nil)
}

// download replaces local state wholesale with the remote snapshot. An
// absent remote is reported as ErrNoRemoteData, not a failure.
func (o *Orchestrator) download(ctx context.Context) error {
	remoteSnapshot, found, err := o.readRemote(ctx)
	if err != nil {
		return err
	}
	if !found {
		return ErrNoRemoteData
	}

	if err := o.store.ReplaceAll(remoteSnapshot.Records, remoteSnapshot.ReviewEvents, remoteSnapshot.SessionLogs); err != nil {
		return &SyncError{Op: "download", Err: err}
	}
	if err := o.updateMetadata(*remoteSnapshot); err != nil {
		return err
	}
	return o.setConflicts(nil)
}

// mergeSync reconciles local state against the remote snapshot, uploads
// the merged result, and only then persists it locally, so an upload
// failure cannot leave a partially applied merge behind.
func (o *Orchestrator) mergeSync(ctx context.Context) error {
	remoteSnapshot, found, err := o.readRemote(ctx)
	if err != nil {
		return err
	}

	local := o.localSnapshot()
	if !found {
		remoteSnapshot = nil
	}
	result := merge.Merge(local, remoteSnapshot, o.policy, o.now())

	if err := o.writeRemote(ctx, result.Merged); err != nil {
		return err
	}
	if err := o.store.ReplaceAll(result.Merged.Records, result.Merged.ReviewEvents, result.Merged.SessionLogs); err != nil {
		return &SyncError{Op: "merge", Err: err}
	}
	if err := o.updateMetadata(result.Merged); err != nil {
		return err
	}

	// Unresolved conflicts from earlier merges stay attached until the
	// user resolves them; a fresh conflict for the same item replaces
	// the stale one.
	conflicts := result.Conflicts
	seen := make(map[string]struct{}, len(conflicts))
	for _, conflict := range conflicts {
		seen[conflict.ItemID] = struct{}{}
	}
	for _, previous := range o.Status().Conflicts {
		if _, ok := seen[previous.ItemID]; !ok {
			conflicts = append(conflicts, previous)
		}
	}

	if len(conflicts) > 0 {
		slog.Default().Warn("merge produced unresolved conflicts",
			"count", len(conflicts))
	}
	return o.setConflicts(conflicts)
}

// Resolve applies an explicit user choice for one conflicted item. The
// chosen record replaces the provisional one in the local store and the
// conflict is dropped from the status.
func (o *Orchestrator) Resolve(itemID string, choice merge.Choice) error {
	o.mu.Lock()
	conflicts := o.status.Conflicts
	o.mu.Unlock()

	merged := snapshot.New(o.store.All(), nil, nil, o.now())
	remaining, err := merge.Resolve(&merged, conflicts, itemID, choice, o.now())
	if err != nil {
		return fmt.Errorf("merge.Resolve(%s) > %w", itemID, err)
	}

	resolved, ok := merged.RecordByID(itemID)
	if !ok {
		return fmt.Errorf("resolved record %q missing", itemID)
	}
	if err := o.store.Upsert(resolved); err != nil {
		return fmt.Errorf("store.Upsert(%s) > %w", itemID, err)
	}

	return o.setConflicts(remaining)
}

func (o *Orchestrator) localSnapshot() snapshot.Snapshot {
	return snapshot.New(o.store.All(), o.store.Events(), o.store.Sessions(), o.now())
}

func (o *Orchestrator) readRemote(ctx context.Context) (*snapshot.Snapshot, bool, error) {
	folderID, err := o.blob.EnsureFolder(ctx, o.folderName)
	if err != nil {
		return nil, false, o.wrapRemoteError("find folder", err)
	}

	fileID, found, err := o.blob.FindFile(ctx, folderID, o.fileName)
	if err != nil {
		return nil, false, o.wrapRemoteError("find file", err)
	}
	if !found {
		return nil, false, nil
	}

	blob, err := o.blob.FetchContent(ctx, fileID)
	if err != nil {
		return nil, false, o.wrapRemoteError("download", err)
	}

	decoded, err := snapshot.Deserialize(blob)
	if err != nil {
		// Malformed remote data aborts the operation with no state change.
		return nil, false, err
	}
	return &decoded, true, nil
}

func (o *Orchestrator) writeRemote(ctx context.Context, s snapshot.Snapshot) error {
	blob, err := snapshot.Serialize(s)
	if err != nil {
		return &SyncError{Op: "serialize", Err: err}
	}

	folderID, err := o.blob.EnsureFolder(ctx, o.folderName)
	if err != nil {
		return o.wrapRemoteError("find folder", err)
	}

	fileID, found, err := o.blob.FindFile(ctx, folderID, o.fileName)
	if err != nil {
		return o.wrapRemoteError("find file", err)
	}
	if found {
		if err := o.blob.UpdateFile(ctx, fileID, blob); err != nil {
			return o.wrapRemoteError("upload", err)
		}
		return nil
	}
	if _, err := o.blob.CreateFile(ctx, folderID, o.fileName, blob); err != nil {
		return o.wrapRemoteError("upload", err)
	}
	return nil
}

func (o *Orchestrator) updateMetadata(s snapshot.Snapshot) error {
	checksum, err := snapshot.Checksum(s)
	if err != nil {
		return &SyncError{Op: "checksum", Err: err}
	}

	var metadata Metadata
	if _, err := o.docs.Read(keyMetadata, &metadata); err != nil {
		var corrupt *localstore.CorruptStateError
		if !errors.As(err, &corrupt) {
			return &SyncError{Op: "metadata", Err: err}
		}
		metadata = Metadata{}
	}

	metadata.LastSyncTime = o.now()
	metadata.Checksum = checksum
	metadata.RecordCount = len(s.Records)
	metadata.DeviceID = o.deviceID
	metadata.SyncVersion++

	if err := o.docs.Write(keyMetadata, metadata); err != nil {
		return &SyncError{Op: "metadata", Err: err}
	}
	return nil
}

// setConflicts updates the in-memory conflict list and persists it next
// to the sync metadata.
func (o *Orchestrator) setConflicts(conflicts []merge.Conflict) error {
	o.mu.Lock()
	o.status.Conflicts = conflicts
	o.mu.Unlock()

	if conflicts == nil {
		conflicts = []merge.Conflict{}
	}
	if err := o.docs.Write(keyConflicts, conflicts); err != nil {
		return &SyncError{Op: "conflicts", Err: err}
	}
	return nil
}

func (o *Orchestrator) wrapRemoteError(op string, err error) error {
	if errors.Is(err, remote.ErrUnauthorized) {
		return &AuthExpiredError{Err: err}
	}
	return &SyncError{Op: op, Err: err}
}
