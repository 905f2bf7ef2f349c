package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"snaplog-go/internal/core"
)

// Wire DTOs. The core types stay transport-agnostic; these fix the JSON
// field names the editor UI depends on.

type snapshotSummaryDTO struct {
	ID          string `json:"id"`
	Timestamp   int64  `json:"timestamp"`
	Label       string `json:"label"`
	ChangeCount int    `json:"changeCount"`
}

type changeDTO struct {
	Path   string `json:"path"`
	Action string `json:"action"`
}

type snapshotDTO struct {
	ID        string      `json:"id"`
	Timestamp int64       `json:"timestamp"`
	Label     string      `json:"label"`
	SessionID string      `json:"sessionId,omitempty"`
	Changes   []changeDTO `json:"changes"`
}

type snapshotFileDTO struct {
	Path    string  `json:"path"`
	Content *string `json:"content,omitempty"` // omitted when action = create
	Action  string  `json:"action"`
}

func toSnapshotDTO(snap *core.Snapshot) snapshotDTO {
	dto := snapshotDTO{
		ID:        snap.ID,
		Timestamp: snap.Timestamp,
		Label:     snap.Label,
		SessionID: snap.SessionID,
		Changes:   make([]changeDTO, 0, len(snap.Changes)),
	}
	for _, ch := range snap.Changes {
		dto.Changes = append(dto.Changes, changeDTO{Path: ch.Path.String(), Action: string(ch.Action)})
	}
	return dto
}

// GET /snapshots
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.svc.ListSnapshots()
	if err != nil {
		s.writeError(w, err)
		return
	}
	dtos := make([]snapshotSummaryDTO, 0, len(summaries))
	for _, sm := range summaries {
		dtos = append(dtos, snapshotSummaryDTO{ID: sm.ID, Timestamp: sm.Timestamp, Label: sm.Label, ChangeCount: sm.ChangeCount})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"snapshots": dtos})
}

// GET /snapshot/{id}
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.GetSnapshot(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"snapshot": toSnapshotDTO(snap)})
}

// GET /snapshot/{id}/file?path=
func (s *Server) handleGetSnapshotFile(w http.ResponseWriter, r *http.Request) {
	rawPath := r.URL.Query().Get("path")
	if rawPath == "" {
		s.writeError(w, core.Validationf("query parameter 'path' is required"))
		return
	}

	bc, err := s.svc.GetBackupContent(chi.URLParam(r, "id"), rawPath)
	if err != nil {
		s.writeError(w, err)
		return
	}

	dto := snapshotFileDTO{Path: bc.Path.String(), Action: string(bc.Action)}
	if bc.Action != core.ActionCreate {
		content := string(bc.Content)
		dto.Content = &content
	}
	s.writeJSON(w, http.StatusOK, dto)
}

// POST /snapshot/{id}/revert
//
// Missing snapshots surface as 5xx here, not 404: the revert entry points
// treat "nothing to revert" as a server-side failure of the operation.
func (s *Server) handleRevertSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RevertSnapshot(chi.URLParam(r, "id")); err != nil {
		s.writeRevertError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type revertFileRequest struct {
	Path       string `json:"path"`
	SnapshotID string `json:"snapshotId"`
}

// POST /snapshot/revert-file
func (s *Server) handleRevertFile(w http.ResponseWriter, r *http.Request) {
	var req revertFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, core.Validationf("invalid request body: %v", err))
		return
	}
	if req.SnapshotID == "" {
		s.writeError(w, core.Validationf("snapshotId is required"))
		return
	}

	if _, err := s.svc.RevertPath(req.SnapshotID, req.Path); err != nil {
		s.writeRevertError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type cascadeRequest struct {
	SnapshotIDs []string `json:"snapshotIds"`
}

// POST /snapshots/revert-cascade
func (s *Server) handleCascadeRevert(w http.ResponseWriter, r *http.Request) {
	var req cascadeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, core.Validationf("invalid request body: %v", err))
		return
	}

	result, err := s.svc.CascadeRevert(req.SnapshotIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	// Partial failures and missing ids are data in the result, not errors.
	s.writeJSON(w, http.StatusOK, result)
}

// GET /pending-changes
func (s *Server) handleGetPendingChanges(w http.ResponseWriter, r *http.Request) {
	pending, err := s.svc.PendingChanges()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pending)
}

// PUT /pending-changes
func (s *Server) handlePutPendingChanges(w http.ResponseWriter, r *http.Request) {
	var changes map[string]core.PendingChange
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		s.writeError(w, core.Validationf("invalid request body: %v", err))
		return
	}
	if changes == nil {
		changes = map[string]core.PendingChange{}
	}

	if err := s.svc.SavePendingChanges(changes); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// writeError maps the error taxonomy onto status codes: validation 400,
// not-found 404, everything else 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsValidation(err):
		status = http.StatusBadRequest
	case core.IsNotFound(err):
		status = http.StatusNotFound
	}
	s.writeErrorStatus(w, status, err)
}

// writeRevertError is writeError for the two revert entry points, where
// not-found is a 5xx rather than a 404.
func (s *Server) writeRevertError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if core.IsValidation(err) {
		status = http.StatusBadRequest
	}
	s.writeErrorStatus(w, status, err)
}

func (s *Server) writeErrorStatus(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": fmt.Sprintf("%v", err)})
}
