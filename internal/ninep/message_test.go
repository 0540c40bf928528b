package ninep

import (
	"reflect"
	"testing"
)

func TestQidRoundTrip(t *testing.T) {
	q := Qid{Type: QTDIR, Version: 7, Path: 0xdeadbeef}
	buf := make([]byte, 32)
	n := q.Encode(buf)
	got, gn, err := decodeQid(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gn != n || got != q {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, q)
	}
}

func TestRgetattrRoundTrip(t *testing.T) {
	msg := &RgetattrMsg{
		Valid: GetattrBasic,
		Qid:   Qid{Type: QTFILE, Version: 1, Path: 42},
		Stat: Stat{
			Mode: 0644, UID: 1000, GID: 1000, NLink: 1,
			Size: 4096, BlkSize: 512, Blocks: 8,
			ATime: Time{Sec: 100, NSec: 1}, MTime: Time{Sec: 200, NSec: 2}, CTime: Time{Sec: 300, NSec: 3},
		},
	}
	buf := make([]byte, 256)
	n := msg.Encode(buf)

	got, err := decodeRgetattr(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Valid != msg.Valid || got.Qid != msg.Qid || !reflect.DeepEqual(got.Stat, msg.Stat) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, msg)
	}

	// The four reserved trailing u64 fields (btime.sec, btime.nsec,
	// gen, data_version) must be present and zero on the wire.
	tail := n - 32
	for i := 0; i < 32; i++ {
		if buf[tail+i] != 0 {
			t.Fatalf("reserved trailing bytes not zero at offset %d", i)
		}
	}
}

func TestTwalkRoundTrip(t *testing.T) {
	msg := &TwalkMsg{Fid: 1, Newfid: 2, Wnames: []string{"etc", "hostname"}}
	buf := make([]byte, 256)
	n := msg.Encode(buf)

	got, err := decodeTwalk(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Fid != msg.Fid || got.Newfid != msg.Newfid || !reflect.DeepEqual(got.Wnames, msg.Wnames) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, msg)
	}
}

func TestTwalkEmptyWnames(t *testing.T) {
	msg := &TwalkMsg{Fid: 1, Newfid: 2, Wnames: nil}
	buf := make([]byte, 64)
	n := msg.Encode(buf)
	got, err := decodeTwalk(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Wnames) != 0 {
		t.Fatalf("expected empty Wnames, got %v", got.Wnames)
	}
}

func TestTwriteRoundTrip(t *testing.T) {
	msg := &TwriteMsg{Fid: 3, Offset: 128, Data: []byte("hello world")}
	buf := make([]byte, 256)
	n := msg.Encode(buf)

	got, err := decodeTwrite(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Fid != msg.Fid || got.Offset != msg.Offset || string(got.Data) != string(msg.Data) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, msg)
	}
}

func TestDirEntriesRoundTrip(t *testing.T) {
	entries := []DirEntry{
		{Qid: Qid{Type: QTDIR, Path: 1}, Offset: 2, Type: QTDIR, Name: "."},
		{Qid: Qid{Type: QTDIR, Path: 2}, Offset: 3, Type: QTDIR, Name: ".."},
		{Qid: Qid{Type: QTFILE, Path: 3}, Offset: 4, Type: QTFILE, Name: "hostname"},
	}
	buf := make([]byte, 256)
	n := encodeDirEntries(buf, entries)

	got, gn, err := decodeDirEntries(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gn != n || !reflect.DeepEqual(got, entries) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, entries)
	}
}

func TestDecodeBodyRejectsUnknownType(t *testing.T) {
	if _, err := decodeBody(255, nil); err == nil {
		t.Fatal("expected error for unknown message type")
	}
}

func TestSetAttrRoundTrip(t *testing.T) {
	sa := SetAttr{
		Valid: AttrMode | AttrSize,
		Mode:  0755,
		UID:   1000,
		GID:   1000,
		Size:  1024,
		ATime: Time{Sec: 1, NSec: 2},
		MTime: Time{Sec: 3, NSec: 4},
	}
	buf := make([]byte, 128)
	n := sa.Encode(buf)
	got, gn, err := decodeSetAttr(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gn != n || got != sa {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, sa)
	}
}

func TestTgetattrMasksUnknownBits(t *testing.T) {
	msg := &TgetattrMsg{Fid: 1, ReqMask: GetattrBasic | 0xffff0000}
	buf := make([]byte, 12)
	n := msg.Encode(buf)

	got, err := decodeTgetattr(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ReqMask != GetattrBasic {
		t.Fatalf("unknown bits not truncated: got %#x, want %#x", got.ReqMask, GetattrBasic)
	}
}

func TestSetAttrMasksUnknownBits(t *testing.T) {
	sa := SetAttr{Valid: AttrMode | AttrSize | 0xfffff000}
	buf := make([]byte, 128)
	n := sa.Encode(buf)

	got, _, err := decodeSetAttr(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Valid != AttrMode|AttrSize {
		t.Fatalf("unknown bits not truncated: got %#x, want %#x", got.Valid, AttrMode|AttrSize)
	}
}

func TestFlockMasksUnknownBits(t *testing.T) {
	l := Flock{Type: LockTypeWrlck | 0xfc, Flags: 0x01 | 0xfffffffc, ProcID: 9}
	buf := make([]byte, 64)
	n := l.Encode(buf)

	got, _, err := decodeFlock(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != LockTypeWrlck {
		t.Fatalf("unknown Type bits not truncated: got %#x, want %#x", got.Type, LockTypeWrlck)
	}
	if got.Flags != 0x01 {
		t.Fatalf("unknown Flags bits not truncated: got %#x, want %#x", got.Flags, 0x01)
	}
}

func TestGetlockMasksUnknownBits(t *testing.T) {
	l := Getlock{Type: LockTypeRdlck | 0xfc, ProcID: 9}
	buf := make([]byte, 64)
	n := l.Encode(buf)

	got, _, err := decodeGetlock(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != LockTypeRdlck {
		t.Fatalf("unknown Type bits not truncated: got %#x, want %#x", got.Type, LockTypeRdlck)
	}
}
