package core

// PendingChanges returns the full pending-change ledger, empty if none saved.
func (s *Service) PendingChanges() (map[string]PendingChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.LoadPending()
}

// SavePendingChanges replaces the ledger wholesale: entries omitted from the
// map are deleted, entries present overwrite prior values.
//
// The ledger is never reconciled with revert operations in either direction.
// A client that reverts a snapshot whose changes are also staged here must
// explicitly re-save the ledger; the server never infers that a revert
// should clear a pending entry.
func (s *Service) SavePendingChanges(changes map[string]PendingChange) error {
	for key, ch := range changes {
		fp, err := NewFilePath(key)
		if err != nil {
			return err
		}
		if ch.Path != fp.String() {
			return Validationf("pending change key %q does not match its path %q", key, ch.Path)
		}
		if !ch.Action.IsPendingAction() {
			return Validationf("invalid pending action %q for %s", ch.Action, key)
		}
		if !ch.Status.IsValid() {
			return Validationf("invalid pending status %q for %s", ch.Status, key)
		}
		for _, hs := range ch.HunkStatuses {
			if !hs.IsValid() {
				return Validationf("invalid hunk status %q for %s", hs, key)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.pending.SavePending(changes); err != nil {
		return err
	}
	s.logger.Debug("pending ledger replaced", "entries", len(changes))
	return nil
}
