package core

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts snapshot id generation so tests are deterministic.
// Generated ids must be lowercase hex tokens (see IsHexToken).
type IDGenerator interface {
	New() string
}

// HexIDGenerator produces 32-character lowercase hex tokens (dash-stripped
// random UUIDs).
type HexIDGenerator struct{}

func (HexIDGenerator) New() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

var hexTokenRE = regexp.MustCompile(`^[0-9a-f]+$`)

// IsHexToken reports whether s is a non-empty lowercase hex token, the only
// shape accepted for snapshot ids supplied by callers.
func IsHexToken(s string) bool {
	return hexTokenRE.MatchString(s)
}
