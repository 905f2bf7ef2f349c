package core

import (
	"fmt"
	"sync"
)

// Service is the orchestration layer for one project's change log: snapshot
// creation, lookup, revert, cascade revert, and the pending-change ledger.
//
// A project's filesystem and snapshot log live behind one logical execution
// context: every operation on a Service runs strictly one at a time, in
// program order. Operations on different projects (different Service
// instances) are fully independent.
type Service struct {
	mu        sync.Mutex
	snapshots SnapshotStore
	backups   BackupStore
	pending   PendingStore
	workspace Workspace
	logger    Logger
	clock     Clock
	idgen     IDGenerator
}

// NewService creates a Service with the provided dependencies.
func NewService(snapshots SnapshotStore, backups BackupStore, pending PendingStore, workspace Workspace, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		snapshots: snapshots,
		backups:   backups,
		pending:   pending,
		workspace: workspace,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}

// CreateSnapshot records one mutating turn: the metadata record first, then a
// backup blob for every edit or delete change. Storage failures propagate as
// fatal to the calling turn. Returns the created snapshot.
func (s *Service) CreateSnapshot(label string, sessionID string, changes []ChangeInput) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(changes) == 0 {
		return nil, Validationf("snapshot must record at least one change")
	}

	snap := &Snapshot{
		ID:        s.idgen.New(),
		Timestamp: s.clock.Now().UnixMilli(),
		Label:     label,
		SessionID: sessionID,
		Changes:   make([]Change, 0, len(changes)),
	}

	seen := make(map[string]bool, len(changes))
	for _, in := range changes {
		fp, err := NewFilePath(in.Path)
		if err != nil {
			return nil, err
		}
		if !in.Action.IsSnapshotAction() {
			return nil, Validationf("invalid snapshot action %q for %s", in.Action, fp)
		}
		if seen[fp.String()] {
			return nil, Validationf("duplicate change entry for %s", fp)
		}
		seen[fp.String()] = true

		switch in.Action {
		case ActionCreate:
			if in.Before != nil {
				return nil, Validationf("create change for %s must not carry pre-mutation content", fp)
			}
		default:
			if in.Before == nil {
				return nil, Validationf("%s change for %s requires pre-mutation content", in.Action, fp)
			}
		}
		snap.Changes = append(snap.Changes, Change{Path: fp, Action: in.Action})
	}

	if err := s.snapshots.CreateSnapshot(snap); err != nil {
		return nil, fmt.Errorf("recording snapshot metadata: %w", err)
	}

	for i, in := range changes {
		if in.Action == ActionCreate {
			continue
		}
		if err := s.backups.PutBackup(snap.ID, snap.Changes[i].Path, in.Before); err != nil {
			return nil, &FilesystemError{Op: "storing backup for " + snap.Changes[i].Path.String(), Err: err}
		}
	}

	s.logger.Info("snapshot created", "id", snap.ID, "label", label, "changes", len(snap.Changes))
	return snap, nil
}

// GetSnapshot returns full snapshot metadata, or a NotFoundError.
func (s *Service) GetSnapshot(id string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots.GetSnapshot(id)
}

// ListSnapshots returns summaries for all snapshots, newest first.
func (s *Service) ListSnapshots() ([]SnapshotSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots.ListSnapshots()
}

// BackupContent is the pre-mutation content recorded for one change.
// Content is nil when the recorded action is create, because nothing
// pre-existed. That is distinct from empty content.
type BackupContent struct {
	Path    FilePath
	Action  Action
	Content []byte
}

// GetBackupContent returns the backup for one (snapshot, path) pair. The path
// must be one of the snapshot's recorded changes.
func (s *Service) GetBackupContent(id string, rawPath string) (*BackupContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp, err := NewFilePath(rawPath)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshots.GetSnapshot(id)
	if err != nil {
		return nil, err
	}

	ch, ok := findChange(snap, fp)
	if !ok {
		return nil, &NotFoundError{Resource: "change", Key: fmt.Sprintf("%s in snapshot %s", fp, id)}
	}

	if ch.Action == ActionCreate {
		return &BackupContent{Path: fp, Action: ActionCreate}, nil
	}

	content, err := s.backups.GetBackup(id, fp)
	if err != nil {
		return nil, &FilesystemError{Op: "reading backup for " + fp.String(), Err: err}
	}
	return &BackupContent{Path: fp, Action: ch.Action, Content: content}, nil
}

// findChange returns the change entry for a path within a snapshot.
func findChange(snap *Snapshot, fp FilePath) (Change, bool) {
	for _, ch := range snap.Changes {
		if ch.Path == fp {
			return ch, true
		}
	}
	return Change{}, false
}
