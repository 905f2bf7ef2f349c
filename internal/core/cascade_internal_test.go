package core

import "testing"

func TestResolveTargets(t *testing.T) {
	snap := func(id string, changes ...Change) *Snapshot {
		return &Snapshot{ID: id, Changes: changes}
	}
	edit := func(p string) Change {
		return Change{Path: MustFilePath(p), Action: ActionEdit}
	}

	t.Run("later snapshots in newest-first order win overlapping paths", func(t *testing.T) {
		targets := resolveTargets([]*Snapshot{
			snap("cc03", edit("/x.ts"), edit("/c.ts")),
			snap("cc02", edit("/x.ts")),
			snap("cc01", edit("/x.ts"), edit("/a.ts")),
		})

		want := map[string]string{"/x.ts": "cc01", "/c.ts": "cc03", "/a.ts": "cc01"}
		if len(targets) != len(want) {
			t.Fatalf("got %d targets, want %d: %+v", len(targets), len(want), targets)
		}
		for _, tg := range targets {
			if owner, ok := want[tg.path.String()]; !ok || tg.snapshotID != owner {
				t.Errorf("path %s owned by %s, want %s", tg.path, tg.snapshotID, owner)
			}
		}
	})

	t.Run("preserves first-seen path order", func(t *testing.T) {
		targets := resolveTargets([]*Snapshot{
			snap("cc02", edit("/b.ts"), edit("/a.ts")),
			snap("cc01", edit("/a.ts"), edit("/z.ts")),
		})

		wantOrder := []string{"/b.ts", "/a.ts", "/z.ts"}
		for i, want := range wantOrder {
			if targets[i].path.String() != want {
				t.Errorf("targets[%d] = %s, want %s", i, targets[i].path, want)
			}
		}
	})

	t.Run("winning snapshot supplies the action", func(t *testing.T) {
		targets := resolveTargets([]*Snapshot{
			snap("cc02", edit("/x.ts")),
			snap("cc01", Change{Path: MustFilePath("/x.ts"), Action: ActionCreate}),
		})

		if len(targets) != 1 {
			t.Fatalf("got %d targets, want 1", len(targets))
		}
		if targets[0].action != ActionCreate {
			t.Errorf("action = %q, want create from the owning snapshot", targets[0].action)
		}
	})

	t.Run("empty input yields no targets", func(t *testing.T) {
		if targets := resolveTargets(nil); len(targets) != 0 {
			t.Errorf("got %d targets, want 0", len(targets))
		}
	})
}
