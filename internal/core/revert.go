package core

import (
	"errors"
	"fmt"
)

// RevertPath undoes the recorded change for one (snapshot, path) pair by
// applying the inverse operation:
//
//   - create: delete the path if present (no error if already absent)
//   - edit:   overwrite the path with the snapshot's backup content
//   - delete: recreate the path from the snapshot's backup content
//
// Every inverse is idempotent; calling RevertPath twice converges to the same
// workspace state without error. Returns the reverted change on success.
func (s *Service) RevertPath(snapshotID string, rawPath string) (*Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp, err := NewFilePath(rawPath)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshots.GetSnapshot(snapshotID)
	if err != nil {
		return nil, err
	}

	ch, ok := findChange(snap, fp)
	if !ok {
		return nil, &NotFoundError{Resource: "change", Key: fmt.Sprintf("%s in snapshot %s", fp, snapshotID)}
	}

	if err := s.applyInverse(snapshotID, ch); err != nil {
		return nil, err
	}

	s.logger.Info("path reverted", "snapshot", snapshotID, "path", fp.String(), "action", string(ch.Action))
	return &ch, nil
}

// RevertSnapshot undoes every change in a snapshot, in recorded order. A
// missing snapshot aborts before any mutation. A per-path failure does not
// stop the loop and does not roll back prior reverts in the same call; all
// failures are collected and surfaced as one response-level error.
func (s *Service) RevertSnapshot(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.snapshots.GetSnapshot(id)
	if err != nil {
		return err
	}

	var failures []error
	for _, ch := range snap.Changes {
		if err := s.applyInverse(id, ch); err != nil {
			s.logger.Error("revert failed", "snapshot", id, "path", ch.Path.String(), "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", ch.Path, err))
			continue
		}
		s.logger.Debug("path reverted", "snapshot", id, "path", ch.Path.String())
	}

	if len(failures) > 0 {
		return &FilesystemError{Op: "reverting snapshot " + id, Err: errors.Join(failures...)}
	}

	s.logger.Info("snapshot reverted", "id", id, "changes", len(snap.Changes))
	return nil
}

// applyInverse performs the filesystem work for one inverse operation.
// Callers hold s.mu.
func (s *Service) applyInverse(snapshotID string, ch Change) error {
	switch ch.Action {
	case ActionCreate:
		// Unconditional: delete if present, no-op otherwise.
		if err := s.workspace.DeleteFile(ch.Path); err != nil {
			return &FilesystemError{Op: "deleting " + ch.Path.String(), Err: err}
		}
		return nil

	case ActionEdit, ActionDelete:
		content, err := s.backups.GetBackup(snapshotID, ch.Path)
		if err != nil {
			return &FilesystemError{Op: "reading backup for " + ch.Path.String(), Err: err}
		}
		if err := s.workspace.WriteFile(ch.Path, content); err != nil {
			return &FilesystemError{Op: "restoring " + ch.Path.String(), Err: err}
		}
		return nil

	default:
		return Validationf("snapshot %s records unknown action %q for %s", snapshotID, ch.Action, ch.Path)
	}
}
