package core

// Action is the net effect a mutating turn had on one file.
type Action string

const (
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"

	// ActionMove only appears in the pending-change ledger; snapshots record
	// moves as a delete of the old path and a create of the new one.
	ActionMove Action = "move"
)

// IsSnapshotAction reports whether a is valid inside a snapshot change entry.
func (a Action) IsSnapshotAction() bool {
	return a == ActionCreate || a == ActionEdit || a == ActionDelete
}

// IsPendingAction reports whether a is valid inside a pending change.
func (a Action) IsPendingAction() bool {
	return a.IsSnapshotAction() || a == ActionMove
}

// Change is one recorded file mutation within a snapshot.
type Change struct {
	Path   FilePath
	Action Action
}

// Snapshot is the immutable record of one mutating turn: which files changed,
// how, and (via the backup store) what they contained beforehand.
// Snapshots are append-only; nothing in this package ever updates one.
type Snapshot struct {
	ID        string // lowercase hex token
	Timestamp int64  // milliseconds since epoch
	Label     string
	SessionID string // optional; groups snapshots from one conversation
	Changes   []Change
}

// SnapshotSummary is the lightweight listing form of a snapshot.
type SnapshotSummary struct {
	ID          string
	Timestamp   int64
	Label       string
	ChangeCount int
}

// ChangeInput describes one file mutation when creating a snapshot.
// Before holds the pre-mutation content and is required for edit and delete
// actions; it must be nil for create.
type ChangeInput struct {
	Path   string
	Action Action
	Before []byte
}

// PendingStatus is the review state of a pending change or of one of its hunks.
type PendingStatus string

const (
	StatusPending  PendingStatus = "pending"
	StatusApproved PendingStatus = "approved"
	StatusRejected PendingStatus = "rejected"
)

func (s PendingStatus) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// PendingChange is one staged, human-reviewable diff. The ledger is written
// wholesale by the review UI and its lifecycle is fully independent of
// snapshots: reverting a snapshot never touches it.
type PendingChange struct {
	Path          string          `json:"path"`
	Action        Action          `json:"action"`
	BeforeContent *string         `json:"beforeContent,omitempty"`
	AfterContent  *string         `json:"afterContent,omitempty"`
	SnapshotID    string          `json:"snapshotId,omitempty"`
	Status        PendingStatus   `json:"status"`
	HunkStatuses  []PendingStatus `json:"hunkStatuses"`
	SessionID     string          `json:"sessionId"`
}
