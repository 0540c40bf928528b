package ninep

import "testing"

func TestFidTableLifecycle(t *testing.T) {
	tbl := NewFidTable[string]()

	if _, ok := tbl.Lookup(1); ok {
		t.Fatal("expected miss on empty table")
	}

	tbl.Insert(1, "root")
	f, ok := tbl.Lookup(1)
	if !ok || f.Aux != "root" {
		t.Fatalf("expected fid 1 -> root, got %+v", f)
	}

	tbl.Insert(1, "replaced")
	f, _ = tbl.Lookup(1)
	if f.Aux != "replaced" {
		t.Fatalf("expected overwrite on collision, got %q", f.Aux)
	}

	tbl.Remove(1)
	if _, ok := tbl.Lookup(1); ok {
		t.Fatal("expected removal to take effect")
	}

	// Removing an absent fid must not panic.
	tbl.Remove(999)
}

func TestFidTableReset(t *testing.T) {
	tbl := NewFidTable[int]()
	tbl.Insert(1, 10)
	tbl.Insert(2, 20)
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 fids, got %d", tbl.Len())
	}
	tbl.Reset()
	if tbl.Len() != 0 {
		t.Fatalf("expected empty table after reset, got %d", tbl.Len())
	}
}
