package hostfs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/NERVsystems/n9p/internal/ninep"
)

func newTestBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	return NewBackend(dir, 8, nil), dir
}

func attach(t *testing.T, b *Backend) *ninep.Fid[*Fid] {
	t.Helper()
	fid := &ninep.Fid[*Fid]{Num: 1, Aux: b.NewAux()}
	if _, err := b.Rattach(context.Background(), fid, nil, "glenda", "", ninep.NoNuname); err != nil {
		t.Fatalf("attach: %v", err)
	}
	return fid
}

func TestAttachRoot(t *testing.T) {
	b, dir := newTestBackend(t)
	fid := attach(t, b)
	if fid.Aux.path() != dir {
		t.Fatalf("expected root path %q, got %q", dir, fid.Aux.path())
	}
}

func TestWalkAndCreateWriteRead(t *testing.T) {
	b, _ := newTestBackend(t)
	root := attach(t, b)

	child := &ninep.Fid[*Fid]{Num: 2, Aux: b.NewAux()}
	if _, err := b.Rwalk(context.Background(), root, child, nil); err != nil {
		t.Fatalf("walk nil: %v", err)
	}

	reply, err := b.Rlcreate(context.Background(), child, "hello.txt", uint32(os.O_RDWR), 0o644, 0)
	if err != nil {
		t.Fatalf("lcreate: %v", err)
	}
	if reply.Qid.Type&ninep.QTDIR != 0 {
		t.Fatal("created file must not be a directory qid")
	}

	wr, err := b.Rwrite(context.Background(), child, 0, []byte("hello"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if wr.Count != 5 {
		t.Fatalf("expected 5 bytes written, got %d", wr.Count)
	}

	rr, err := b.Rread(context.Background(), child, 0, 64)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(rr.Data) != "hello" {
		t.Fatalf("expected %q, got %q", "hello", rr.Data)
	}

	if _, err := b.Rclunk(context.Background(), child); err != nil {
		t.Fatalf("clunk: %v", err)
	}
}

func TestWalkPartialStopsOnMissingComponent(t *testing.T) {
	b, dir := newTestBackend(t)
	root := attach(t, b)
	if err := os.Mkdir(filepath.Join(dir, "a"), 0o755); err != nil {
		t.Fatal(err)
	}

	newfid := &ninep.Fid[*Fid]{Num: 2, Aux: b.NewAux()}
	reply, err := b.Rwalk(context.Background(), root, newfid, []string{"a", "nosuch", "b"})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(reply.Wqids) != 1 {
		t.Fatalf("expected partial walk of 1 qid, got %d", len(reply.Wqids))
	}
}

func TestWalkEnforcesMaxDepth(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755); err != nil {
		t.Fatal(err)
	}
	b := NewBackend(dir, 1, nil)
	root := attach(t, b)
	newfid := &ninep.Fid[*Fid]{Num: 2, Aux: b.NewAux()}
	_, err := b.Rwalk(context.Background(), root, newfid, []string{"a", "b"})
	var de *ninep.DispatchError
	if !errors.As(err, &de) || de.Errno != uint32(syscall.ELOOP) {
		t.Fatalf("expected ELOOP once max depth is exceeded, got %v", err)
	}
}

func TestReaddirIncludesDotAndDotDot(t *testing.T) {
	b, dir := newTestBackend(t)
	root := attach(t, b)
	if err := os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	reply, err := b.Rreaddir(context.Background(), root, 0, 4096)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(reply.Entries) < 3 {
		t.Fatalf("expected at least . .. and f, got %d entries", len(reply.Entries))
	}
	if reply.Entries[0].Name != "." || reply.Entries[1].Name != ".." {
		t.Fatalf("expected . and .. first, got %+v", reply.Entries[:2])
	}
}

func TestMkdirRenameRemove(t *testing.T) {
	b, _ := newTestBackend(t)
	root := attach(t, b)

	if _, err := b.Rmkdir(context.Background(), root, "sub", 0o755, 0); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if _, err := b.RrenameAt(context.Background(), root, root, "sub", "sub2"); err != nil {
		t.Fatalf("renameat: %v", err)
	}

	if _, err := b.RunlinkAt(context.Background(), root, "sub2", 0); err != nil {
		t.Fatalf("unlinkat: %v", err)
	}
}

func TestStatfs(t *testing.T) {
	b, _ := newTestBackend(t)
	root := attach(t, b)
	if _, err := b.Rstatfs(context.Background(), root); err != nil {
		t.Fatalf("statfs: %v", err)
	}
}
