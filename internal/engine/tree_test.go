package engine_test

import (
	"context"
	"testing"
)

func TestEngine_Children(t *testing.T) {
	t.Run("unknown parent yields an empty list", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		missing := "missing"
		children, err := eng.Children(&missing)
		if err != nil {
			t.Fatalf("Children() error = %v", err)
		}
		if len(children) != 0 {
			t.Errorf("child count = %d, want 0", len(children))
		}
	})
}

func TestEngine_Descendants(t *testing.T) {
	t.Run("breadth-first over the subtree", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		root := mustAddFolder(t, eng, nil, "root")
		a := mustAddFolder(t, eng, &root.ID, "a")
		b := mustAddDoc(t, eng, &root.ID, "b", nil)
		nested := mustAddDoc(t, eng, &a.ID, "nested", nil)

		got, err := eng.Descendants(root.ID)
		if err != nil {
			t.Fatalf("Descendants() error = %v", err)
		}

		want := []string{a.ID, b.ID, nested.ID}
		if len(got) != len(want) {
			t.Fatalf("descendant count = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("descendants[%d] = %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("leaf has no descendants", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		doc := mustAddDoc(t, eng, nil, "doc", nil)

		got, err := eng.Descendants(doc.ID)
		if err != nil {
			t.Fatalf("Descendants() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("descendant count = %d, want 0", len(got))
		}
	})

	t.Run("unknown node yields nil", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		got, err := eng.Descendants("missing")
		if err != nil {
			t.Fatalf("Descendants() error = %v", err)
		}
		if got != nil {
			t.Errorf("Descendants() = %v, want nil", got)
		}
	})
}

func TestEngine_AncestorChain(t *testing.T) {
	t.Run("walks from parent to root", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		root := mustAddFolder(t, eng, nil, "root")
		mid := mustAddFolder(t, eng, &root.ID, "mid")
		leaf := mustAddDoc(t, eng, &mid.ID, "leaf", nil)

		chain, err := eng.AncestorChain(leaf.ID)
		if err != nil {
			t.Fatalf("AncestorChain() error = %v", err)
		}
		want := []string{mid.ID, root.ID}
		if len(chain) != len(want) {
			t.Fatalf("chain length = %d, want %d", len(chain), len(want))
		}
		for i := range want {
			if chain[i] != want[i] {
				t.Errorf("chain[%d] = %s, want %s", i, chain[i], want[i])
			}
		}
	})

	t.Run("root-level node has an empty chain", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		doc := mustAddDoc(t, eng, nil, "doc", nil)

		chain, err := eng.AncestorChain(doc.ID)
		if err != nil {
			t.Fatalf("AncestorChain() error = %v", err)
		}
		if len(chain) != 0 {
			t.Errorf("chain length = %d, want 0", len(chain))
		}
	})
}

func TestEngine_CorruptTree(t *testing.T) {
	t.Run("link cycle is reported, not traversed forever", func(t *testing.T) {
		eng, conn := newTestEngineWithConn(t)

		a := mustAddFolder(t, eng, nil, "a")
		b := mustAddFolder(t, eng, &a.ID, "b")

		// Close the loop: a's parent becomes its own child.
		if _, err := conn.Exec(`UPDATE nodes SET parent_id = ? WHERE id = ?`, b.ID, a.ID); err != nil {
			t.Fatalf("corrupting parent link: %v", err)
		}

		_, err := eng.Descendants(a.ID)
		assertCorruptTree(t, err)

		_, err = eng.AncestorChain(b.ID)
		assertCorruptTree(t, err)
	})

	t.Run("dangling parent reference is reported", func(t *testing.T) {
		eng, conn := newTestEngineWithConn(t)

		a := mustAddFolder(t, eng, nil, "a")

		// A dangling reference needs the foreign key check off, and the
		// pragma is per connection, so both statements must share one.
		ctx := context.Background()
		c, err := conn.Conn(ctx)
		if err != nil {
			t.Fatalf("pinning connection: %v", err)
		}
		defer c.Close()
		if _, err := c.ExecContext(ctx, `PRAGMA foreign_keys = OFF`); err != nil {
			t.Fatalf("disabling foreign keys: %v", err)
		}
		if _, err := c.ExecContext(ctx, `UPDATE nodes SET parent_id = 'ghost' WHERE id = ?`, a.ID); err != nil {
			t.Fatalf("corrupting parent link: %v", err)
		}

		_, err = eng.AncestorChain(a.ID)
		assertCorruptTree(t, err)
	})
}

func TestEngine_FindByTitle(t *testing.T) {
	eng, _ := newTestEngine(t)

	mustAddDoc(t, eng, nil, "Meeting Notes", nil)
	mustAddFolder(t, eng, nil, "Notebooks")
	mustAddDoc(t, eng, nil, "Recipes", nil)

	got, err := eng.FindByTitle("note")
	if err != nil {
		t.Fatalf("FindByTitle() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("match count = %d, want 2 (case-insensitive substring)", len(got))
	}
}
