package core

import (
	"path"
	"strings"
)

// FilePath is a normalized, validated project-absolute file path ("/src/x.ts").
// Snapshot changes, backup blobs, and the pending ledger all key on the same
// path form, so validation happens once here and the value is passed by value
// everywhere else.
type FilePath struct {
	p string
}

// NewFilePath validates and normalizes a raw path. The path must be non-empty,
// slash-separated, and absolute with respect to the project root. The result
// is cleaned, so "/a//b/../c.ts" and "/a/c.ts" are the same FilePath.
func NewFilePath(raw string) (FilePath, error) {
	if raw == "" {
		return FilePath{}, &ValidationError{Msg: "path must not be empty"}
	}
	if strings.ContainsRune(raw, '\x00') {
		return FilePath{}, &ValidationError{Msg: "path contains a NUL byte"}
	}
	if !strings.HasPrefix(raw, "/") {
		return FilePath{}, &ValidationError{Msg: "path must be project-absolute (start with /): " + raw}
	}
	cleaned := path.Clean(raw)
	return FilePath{p: cleaned}, nil
}

// MustFilePath is NewFilePath for compile-time-constant paths in tests and
// fixtures. It panics on invalid input.
func MustFilePath(raw string) FilePath {
	fp, err := NewFilePath(raw)
	if err != nil {
		panic(err)
	}
	return fp
}

// String returns the normalized path.
func (p FilePath) String() string { return p.p }

// IsZero reports whether p is the zero value (no path).
func (p FilePath) IsZero() bool { return p.p == "" }

// IsRoot reports whether p is the project root "/".
func (p FilePath) IsRoot() bool { return p.p == "/" }

// Rel returns the path relative to the project root, without the leading
// slash, still slash-separated. The root itself maps to ".".
func (p FilePath) Rel() string {
	if p.IsRoot() {
		return "."
	}
	return strings.TrimPrefix(p.p, "/")
}

// Dir returns the parent directory of p as a FilePath.
func (p FilePath) Dir() FilePath {
	return FilePath{p: path.Dir(p.p)}
}
