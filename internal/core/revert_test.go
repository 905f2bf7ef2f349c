package core_test

import (
	"errors"
	"testing"

	"snaplog-go/internal/core"
)

func TestService_RevertPath(t *testing.T) {
	t.Run("edit revert restores the backup content", func(t *testing.T) {
		t.Parallel()
		svc, ws, _ := setupService(t, "aabb0001")

		mustCreate(t, svc, []core.ChangeInput{{Path: "/src/x.ts", Action: core.ActionEdit, Before: []byte("v0")}})
		ws.Seed("/src/x.ts", "v1")

		ch, err := svc.RevertPath("aabb0001", "/src/x.ts")
		if err != nil {
			t.Fatalf("RevertPath() error = %v", err)
		}
		if ch.Action != core.ActionEdit {
			t.Errorf("Action = %q, want edit", ch.Action)
		}
		if got, _ := ws.Content("/src/x.ts"); got != "v0" {
			t.Errorf("content = %q, want %q", got, "v0")
		}
	})

	t.Run("create revert deletes the path and is idempotent", func(t *testing.T) {
		t.Parallel()
		svc, ws, _ := setupService(t, "aabb0001")

		mustCreate(t, svc, []core.ChangeInput{{Path: "/src/new.ts", Action: core.ActionCreate}})
		ws.Seed("/src/new.ts", "fresh")

		if _, err := svc.RevertPath("aabb0001", "/src/new.ts"); err != nil {
			t.Fatalf("RevertPath() error = %v", err)
		}
		if _, ok := ws.Content("/src/new.ts"); ok {
			t.Error("path still present after create revert")
		}

		// Second call: path already absent, still a no-error no-op.
		if _, err := svc.RevertPath("aabb0001", "/src/new.ts"); err != nil {
			t.Fatalf("second RevertPath() error = %v", err)
		}
	})

	t.Run("delete revert recreates from backup", func(t *testing.T) {
		t.Parallel()
		svc, ws, _ := setupService(t, "aabb0001")

		mustCreate(t, svc, []core.ChangeInput{{Path: "/docs/gone.md", Action: core.ActionDelete, Before: []byte("old text")}})

		if _, err := svc.RevertPath("aabb0001", "/docs/gone.md"); err != nil {
			t.Fatalf("RevertPath() error = %v", err)
		}
		if got, _ := ws.Content("/docs/gone.md"); got != "old text" {
			t.Errorf("content = %q, want %q", got, "old text")
		}
	})

	t.Run("missing snapshot is NotFound", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := setupService(t)

		_, err := svc.RevertPath("deadbeef", "/x.ts")
		if !core.IsNotFound(err) {
			t.Errorf("error = %v, want NotFoundError", err)
		}
	})

	t.Run("path not in snapshot is NotFound", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := setupService(t, "aabb0001")
		mustCreate(t, svc, []core.ChangeInput{{Path: "/src/x.ts", Action: core.ActionCreate}})

		_, err := svc.RevertPath("aabb0001", "/other.ts")
		if !core.IsNotFound(err) {
			t.Errorf("error = %v, want NotFoundError", err)
		}
	})
}

func TestService_RevertSnapshot(t *testing.T) {
	t.Run("reverts every change in recorded order", func(t *testing.T) {
		t.Parallel()
		svc, ws, _ := setupService(t, "aabb0001")

		mustCreate(t, svc, []core.ChangeInput{
			{Path: "/src/x.ts", Action: core.ActionEdit, Before: []byte("v0")},
			{Path: "/src/new.ts", Action: core.ActionCreate},
			{Path: "/docs/gone.md", Action: core.ActionDelete, Before: []byte("doc")},
		})
		ws.Seed("/src/x.ts", "v1")
		ws.Seed("/src/new.ts", "fresh")

		if err := svc.RevertSnapshot("aabb0001"); err != nil {
			t.Fatalf("RevertSnapshot() error = %v", err)
		}

		if got, _ := ws.Content("/src/x.ts"); got != "v0" {
			t.Errorf("/src/x.ts = %q, want %q", got, "v0")
		}
		if _, ok := ws.Content("/src/new.ts"); ok {
			t.Error("/src/new.ts still present")
		}
		if got, _ := ws.Content("/docs/gone.md"); got != "doc" {
			t.Errorf("/docs/gone.md = %q, want %q", got, "doc")
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()
		svc, ws, _ := setupService(t, "aabb0001")

		mustCreate(t, svc, []core.ChangeInput{{Path: "/src/x.ts", Action: core.ActionEdit, Before: []byte("v0")}})
		ws.Seed("/src/x.ts", "v1")

		if err := svc.RevertSnapshot("aabb0001"); err != nil {
			t.Fatalf("first RevertSnapshot() error = %v", err)
		}
		if err := svc.RevertSnapshot("aabb0001"); err != nil {
			t.Fatalf("second RevertSnapshot() error = %v", err)
		}
		if got, _ := ws.Content("/src/x.ts"); got != "v0" {
			t.Errorf("content = %q, want %q", got, "v0")
		}
	})

	t.Run("missing snapshot aborts before any mutation", func(t *testing.T) {
		t.Parallel()
		svc, ws, _ := setupService(t)
		ws.Seed("/src/x.ts", "untouched")

		err := svc.RevertSnapshot("deadbeef")
		if !core.IsNotFound(err) {
			t.Fatalf("error = %v, want NotFoundError", err)
		}
		if got, _ := ws.Content("/src/x.ts"); got != "untouched" {
			t.Errorf("workspace mutated on missing snapshot: %q", got)
		}
	})

	t.Run("per-path failure continues and never rolls back", func(t *testing.T) {
		t.Parallel()
		svc, ws, _ := setupService(t, "aabb0001")

		mustCreate(t, svc, []core.ChangeInput{
			{Path: "/a.ts", Action: core.ActionEdit, Before: []byte("a0")},
			{Path: "/b.ts", Action: core.ActionEdit, Before: []byte("b0")},
			{Path: "/c.ts", Action: core.ActionEdit, Before: []byte("c0")},
		})
		ws.Seed("/a.ts", "a1")
		ws.Seed("/b.ts", "b1")
		ws.Seed("/c.ts", "c1")
		ws.FailPaths["/b.ts"] = errors.New("disk full")

		err := svc.RevertSnapshot("aabb0001")
		if err == nil {
			t.Fatal("expected aggregate error, got nil")
		}
		var fsErr *core.FilesystemError
		if !errors.As(err, &fsErr) {
			t.Errorf("error = %v, want FilesystemError", err)
		}

		// a.ts (before the failure) stays reverted; c.ts (after) was still
		// attempted and reverted.
		if got, _ := ws.Content("/a.ts"); got != "a0" {
			t.Errorf("/a.ts = %q, want %q (no rollback)", got, "a0")
		}
		if got, _ := ws.Content("/b.ts"); got != "b1" {
			t.Errorf("/b.ts = %q, want untouched %q", got, "b1")
		}
		if got, _ := ws.Content("/c.ts"); got != "c0" {
			t.Errorf("/c.ts = %q, want %q (loop continued)", got, "c0")
		}
	})
}
