package core_test

import (
	"testing"

	"snaplog-go/internal/core"
)

func TestNewFilePath(t *testing.T) {
	t.Run("accepts and normalizes project-absolute paths", func(t *testing.T) {
		tests := []struct {
			raw  string
			want string
		}{
			{"/src/x.ts", "/src/x.ts"},
			{"/src//x.ts", "/src/x.ts"},
			{"/src/./x.ts", "/src/x.ts"},
			{"/src/sub/../x.ts", "/src/x.ts"},
			{"/a/b/c.go", "/a/b/c.go"},
			{"/", "/"},
		}
		for _, tt := range tests {
			fp, err := core.NewFilePath(tt.raw)
			if err != nil {
				t.Errorf("NewFilePath(%q) error = %v", tt.raw, err)
				continue
			}
			if fp.String() != tt.want {
				t.Errorf("NewFilePath(%q) = %q, want %q", tt.raw, fp.String(), tt.want)
			}
		}
	})

	t.Run("rejects invalid paths", func(t *testing.T) {
		for _, raw := range []string{"", "src/x.ts", "relative", "\x00", "/src/\x00.ts"} {
			_, err := core.NewFilePath(raw)
			if err == nil {
				t.Errorf("NewFilePath(%q) expected error, got nil", raw)
				continue
			}
			if !core.IsValidation(err) {
				t.Errorf("NewFilePath(%q) error = %v, want ValidationError", raw, err)
			}
		}
	})

	t.Run("normalized paths compare equal", func(t *testing.T) {
		a := core.MustFilePath("/src//x.ts")
		b := core.MustFilePath("/src/x.ts")
		if a != b {
			t.Errorf("expected %q == %q after normalization", a, b)
		}
	})

	t.Run("Rel strips the leading slash", func(t *testing.T) {
		if got := core.MustFilePath("/src/x.ts").Rel(); got != "src/x.ts" {
			t.Errorf("Rel() = %q, want %q", got, "src/x.ts")
		}
		if got := core.MustFilePath("/").Rel(); got != "." {
			t.Errorf("Rel() for root = %q, want %q", got, ".")
		}
	})
}

func TestIsHexToken(t *testing.T) {
	valid := []string{"aabb0001", "deadbeef", "0", "ffffffffffffffff"}
	for _, s := range valid {
		if !core.IsHexToken(s) {
			t.Errorf("IsHexToken(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "DEADBEEF", "xyz", "aabb-0001", "aabb 0001"}
	for _, s := range invalid {
		if core.IsHexToken(s) {
			t.Errorf("IsHexToken(%q) = true, want false", s)
		}
	}
}
