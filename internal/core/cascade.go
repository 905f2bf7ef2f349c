package core

// CascadeReverted is one successfully reverted path, attributed to the
// snapshot whose backup was applied.
type CascadeReverted struct {
	Path       string `json:"path"`
	SnapshotID string `json:"snapshotId"`
	Action     Action `json:"action"`
}

// CascadeFailure is one path whose inverse operation failed.
type CascadeFailure struct {
	Path       string `json:"path"`
	SnapshotID string `json:"snapshotId"`
	Action     Action `json:"action"`
	Error      string `json:"error"`
}

// CascadeResult reports the outcome of a cascade revert. Partial failures and
// missing snapshot ids are data in this result, not errors: cascade revert is
// deliberately the most forgiving entry point.
type CascadeResult struct {
	Reverted         []CascadeReverted `json:"reverted"`
	Failed           []CascadeFailure  `json:"failed"`
	MissingSnapshots []string          `json:"missingSnapshots"`
}

// CascadeRevert undoes multiple snapshots together, deduplicating overlapping
// file touches to the earliest included state.
//
// snapshotIDs must be ordered newest first. The engine trusts the caller's
// ordering and does not re-derive it from snapshot timestamps; a caller that
// passes an incorrect order gets a correspondingly incorrect resolution.
//
// Ids that resolve to no snapshot are reported in MissingSnapshots and
// contribute no changes. Each resolved path is reverted using the backup of
// the snapshot that owns it (see resolveTargets); the outcome lands in
// exactly one of Reverted or Failed.
func (s *Service) CascadeRevert(snapshotIDs []string) (*CascadeResult, error) {
	if len(snapshotIDs) == 0 {
		return nil, Validationf("cascade revert requires at least one snapshot id")
	}
	for _, id := range snapshotIDs {
		if !IsHexToken(id) {
			return nil, Validationf("invalid snapshot id %q: not a hex token", id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &CascadeResult{
		Reverted:         []CascadeReverted{},
		Failed:           []CascadeFailure{},
		MissingSnapshots: []string{},
	}

	found := make([]*Snapshot, 0, len(snapshotIDs))
	for _, id := range snapshotIDs {
		snap, err := s.snapshots.GetSnapshot(id)
		if err != nil {
			if IsNotFound(err) {
				result.MissingSnapshots = append(result.MissingSnapshots, id)
				continue
			}
			return nil, err
		}
		found = append(found, snap)
	}

	for _, target := range resolveTargets(found) {
		ch := Change{Path: target.path, Action: target.action}
		if err := s.applyInverse(target.snapshotID, ch); err != nil {
			s.logger.Error("cascade revert failed for path", "snapshot", target.snapshotID, "path", target.path.String(), "error", err)
			result.Failed = append(result.Failed, CascadeFailure{
				Path:       target.path.String(),
				SnapshotID: target.snapshotID,
				Action:     target.action,
				Error:      err.Error(),
			})
			continue
		}
		result.Reverted = append(result.Reverted, CascadeReverted{
			Path:       target.path.String(),
			SnapshotID: target.snapshotID,
			Action:     target.action,
		})
	}

	s.logger.Info("cascade revert complete",
		"requested", len(snapshotIDs),
		"reverted", len(result.Reverted),
		"failed", len(result.Failed),
		"missing", len(result.MissingSnapshots))
	return result, nil
}

// revertTarget is the resolved owner of one path within a cascade.
type revertTarget struct {
	path       FilePath
	snapshotID string
	action     Action
}

// resolveTargets deduplicates overlapping file touches across snapshots.
//
// Snapshots arrive newest first, so for every path the last snapshot in the
// iteration to claim it is the chronologically earliest one that touched it.
// That snapshot owns the revert: its backup holds the state from before the
// earliest included edit, never an intermediate state. The result preserves
// first-seen path order.
func resolveTargets(snaps []*Snapshot) []revertTarget {
	index := make(map[string]int)
	var targets []revertTarget
	for _, snap := range snaps {
		for _, ch := range snap.Changes {
			t := revertTarget{path: ch.Path, snapshotID: snap.ID, action: ch.Action}
			if i, ok := index[ch.Path.String()]; ok {
				targets[i] = t
				continue
			}
			index[ch.Path.String()] = len(targets)
			targets = append(targets, t)
		}
	}
	return targets
}
