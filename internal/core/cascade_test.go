package core_test

import (
	"errors"
	"testing"
	"time"

	"snaplog-go/internal/core"
)

func TestService_CascadeRevert(t *testing.T) {
	t.Run("overlapping edits resolve to the earliest included state", func(t *testing.T) {
		t.Parallel()
		svc, ws, clock := setupService(t, "aa01", "aa02", "aa03")

		// Three turns edit the same file: v0 -> v1 -> v2 -> v3.
		mustCreate(t, svc, []core.ChangeInput{{Path: "/src/x.ts", Action: core.ActionEdit, Before: []byte("v0")}})
		clock.Advance(time.Second)
		mustCreate(t, svc, []core.ChangeInput{{Path: "/src/x.ts", Action: core.ActionEdit, Before: []byte("v1")}})
		clock.Advance(time.Second)
		mustCreate(t, svc, []core.ChangeInput{{Path: "/src/x.ts", Action: core.ActionEdit, Before: []byte("v2")}})
		ws.Seed("/src/x.ts", "v3")

		res, err := svc.CascadeRevert([]string{"aa03", "aa02", "aa01"})
		if err != nil {
			t.Fatalf("CascadeRevert() error = %v", err)
		}

		if got, _ := ws.Content("/src/x.ts"); got != "v0" {
			t.Errorf("content = %q, want %q", got, "v0")
		}
		if len(res.Reverted) != 1 {
			t.Fatalf("got %d reverted entries, want 1: %+v", len(res.Reverted), res.Reverted)
		}
		if res.Reverted[0].SnapshotID != "aa01" {
			t.Errorf("reverted path attributed to %q, want earliest %q", res.Reverted[0].SnapshotID, "aa01")
		}
		if len(res.Failed) != 0 || len(res.MissingSnapshots) != 0 {
			t.Errorf("unexpected failures %+v or missing %v", res.Failed, res.MissingSnapshots)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()
		svc, ws, clock := setupService(t, "aa01", "aa02")

		mustCreate(t, svc, []core.ChangeInput{{Path: "/src/x.ts", Action: core.ActionEdit, Before: []byte("v0")}})
		clock.Advance(time.Second)
		mustCreate(t, svc, []core.ChangeInput{{Path: "/src/new.ts", Action: core.ActionCreate}})
		ws.Seed("/src/x.ts", "v2")
		ws.Seed("/src/new.ts", "fresh")

		ids := []string{"aa02", "aa01"}
		if _, err := svc.CascadeRevert(ids); err != nil {
			t.Fatalf("first CascadeRevert() error = %v", err)
		}
		if _, err := svc.CascadeRevert(ids); err != nil {
			t.Fatalf("second CascadeRevert() error = %v", err)
		}

		if got, _ := ws.Content("/src/x.ts"); got != "v0" {
			t.Errorf("/src/x.ts = %q, want %q", got, "v0")
		}
		if _, ok := ws.Content("/src/new.ts"); ok {
			t.Error("/src/new.ts still present after cascade")
		}
	})

	t.Run("unknown ids are reported and the rest still revert", func(t *testing.T) {
		t.Parallel()
		svc, ws, _ := setupService(t, "aa01")

		mustCreate(t, svc, []core.ChangeInput{{Path: "/src/x.ts", Action: core.ActionEdit, Before: []byte("v0")}})
		ws.Seed("/src/x.ts", "v1")

		res, err := svc.CascadeRevert([]string{"deadbeef", "aa01"})
		if err != nil {
			t.Fatalf("CascadeRevert() error = %v", err)
		}
		if len(res.MissingSnapshots) != 1 || res.MissingSnapshots[0] != "deadbeef" {
			t.Errorf("MissingSnapshots = %v, want [deadbeef]", res.MissingSnapshots)
		}
		if got, _ := ws.Content("/src/x.ts"); got != "v0" {
			t.Errorf("content = %q, want %q", got, "v0")
		}
	})

	t.Run("never touches snapshots outside the request", func(t *testing.T) {
		t.Parallel()
		svc, ws, clock := setupService(t, "aa01", "aa02")

		mustCreate(t, svc, []core.ChangeInput{{Path: "/keep.ts", Action: core.ActionEdit, Before: []byte("keep-v0")}})
		clock.Advance(time.Second)
		mustCreate(t, svc, []core.ChangeInput{{Path: "/undo.ts", Action: core.ActionEdit, Before: []byte("undo-v0")}})
		ws.Seed("/keep.ts", "keep-v1")
		ws.Seed("/undo.ts", "undo-v1")

		if _, err := svc.CascadeRevert([]string{"aa02"}); err != nil {
			t.Fatalf("CascadeRevert() error = %v", err)
		}

		if got, _ := ws.Content("/undo.ts"); got != "undo-v0" {
			t.Errorf("/undo.ts = %q, want %q", got, "undo-v0")
		}
		if got, _ := ws.Content("/keep.ts"); got != "keep-v1" {
			t.Errorf("/keep.ts = %q, want untouched %q", got, "keep-v1")
		}
	})

	t.Run("per-path failures land in Failed and the rest continue", func(t *testing.T) {
		t.Parallel()
		svc, ws, _ := setupService(t, "aa01")

		mustCreate(t, svc, []core.ChangeInput{
			{Path: "/a.ts", Action: core.ActionEdit, Before: []byte("a0")},
			{Path: "/b.ts", Action: core.ActionEdit, Before: []byte("b0")},
		})
		ws.Seed("/a.ts", "a1")
		ws.Seed("/b.ts", "b1")
		ws.FailPaths["/a.ts"] = errors.New("write denied")

		res, err := svc.CascadeRevert([]string{"aa01"})
		if err != nil {
			t.Fatalf("CascadeRevert() error = %v", err)
		}
		if len(res.Failed) != 1 || res.Failed[0].Path != "/a.ts" {
			t.Fatalf("Failed = %+v, want one entry for /a.ts", res.Failed)
		}
		if res.Failed[0].Error == "" {
			t.Error("failure entry has an empty error message")
		}
		if len(res.Reverted) != 1 || res.Reverted[0].Path != "/b.ts" {
			t.Errorf("Reverted = %+v, want one entry for /b.ts", res.Reverted)
		}
		if got, _ := ws.Content("/b.ts"); got != "b0" {
			t.Errorf("/b.ts = %q, want %q", got, "b0")
		}
	})

	t.Run("rejects invalid id lists", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := setupService(t)

		for _, ids := range [][]string{nil, {}, {"not-hex!"}, {"aa01", "XYZ"}, {"aa01", ""}} {
			_, err := svc.CascadeRevert(ids)
			if err == nil {
				t.Errorf("CascadeRevert(%v) expected error, got nil", ids)
				continue
			}
			if !core.IsValidation(err) {
				t.Errorf("CascadeRevert(%v) error = %v, want ValidationError", ids, err)
			}
		}
	})

	t.Run("result slices are never nil", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := setupService(t)

		res, err := svc.CascadeRevert([]string{"deadbeef"})
		if err != nil {
			t.Fatalf("CascadeRevert() error = %v", err)
		}
		if res.Reverted == nil || res.Failed == nil || res.MissingSnapshots == nil {
			t.Errorf("result has nil slices: %+v", res)
		}
	})
}
