package ninep

import (
	"context"
	"testing"
)

// fakeBackend is a minimal in-memory filesystem exercising the
// dispatcher's fid-resolution rules: every walked name resolves except
// "nosuch", which stops the walk there, to exercise the Twalk
// partial-walk non-registration rule.
type fakeBackend struct {
	UnimplementedBackend[string]
}

func (fakeBackend) NewAux() string { return "" }

func (fakeBackend) Rattach(ctx context.Context, fid, afid *Fid[string], uname, aname string, nuname uint32) (RattachMsg, error) {
	fid.Aux = "/"
	return RattachMsg{Qid: Qid{Type: QTDIR, Path: 1}}, nil
}

func (fakeBackend) Rwalk(ctx context.Context, fid, newfid *Fid[string], wnames []string) (RwalkMsg, error) {
	var qids []Qid
	for i, name := range wnames {
		if name == "nosuch" {
			break
		}
		_ = i
		qids = append(qids, Qid{Type: QTFILE, Path: uint64(len(qids) + 1)})
	}
	return RwalkMsg{Wqids: qids}, nil
}

func (fakeBackend) Rclunk(ctx context.Context, fid *Fid[string]) (RclunkMsg, error) {
	return RclunkMsg{}, nil
}

func TestDispatchAttachAndWalk(t *testing.T) {
	d := NewDispatcher[string](fakeBackend{})

	reply, err := dispatchTyped(t, d, &TattachMsg{Fid: 1, Afid: NoFid, Uname: "glenda"})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, ok := reply.(*RattachMsg); !ok {
		t.Fatalf("expected RattachMsg, got %T", reply)
	}
	if _, ok := d.Fids.Lookup(1); !ok {
		t.Fatal("fid 1 not registered after attach")
	}

	reply, err = dispatchTyped(t, d, &TwalkMsg{Fid: 1, Newfid: 2, Wnames: []string{"hello"}})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	rw, ok := reply.(*RwalkMsg)
	if !ok || len(rw.Wqids) != 1 {
		t.Fatalf("expected full walk success, got %+v", reply)
	}
	if _, ok := d.Fids.Lookup(2); !ok {
		t.Fatal("newfid not registered after full walk")
	}
}

func TestDispatchPartialWalkNotRegistered(t *testing.T) {
	d := NewDispatcher[string](fakeBackend{})
	if _, err := dispatchTyped(t, d, &TattachMsg{Fid: 1, Afid: NoFid}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	reply, err := dispatchTyped(t, d, &TwalkMsg{Fid: 1, Newfid: 9, Wnames: []string{"a", "nosuch", "b"}})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	rw, ok := reply.(*RwalkMsg)
	if !ok {
		t.Fatalf("expected RwalkMsg, got %T", reply)
	}
	if len(rw.Wqids) != 1 {
		t.Fatalf("expected partial walk of 1 qid, got %d", len(rw.Wqids))
	}
	if _, ok := d.Fids.Lookup(9); ok {
		t.Fatal("newfid must not be registered after a partial walk")
	}
}

func TestDispatchWalkBadFid(t *testing.T) {
	d := NewDispatcher[string](fakeBackend{})
	reply, err := dispatchTyped(t, d, &TwalkMsg{Fid: 77, Newfid: 2, Wnames: []string{"x"}})
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	re, ok := reply.(*RlerrorMsg)
	if !ok {
		t.Fatalf("expected RlerrorMsg for unknown fid, got %T", reply)
	}
	if re.Ecode == 0 {
		t.Fatal("expected non-zero errno for bad fid")
	}
}

func TestDispatchClunkAlwaysRemoves(t *testing.T) {
	d := NewDispatcher[string](fakeBackend{})
	if _, err := dispatchTyped(t, d, &TattachMsg{Fid: 1, Afid: NoFid}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := dispatchTyped(t, d, &TclunkMsg{Fid: 1}); err != nil {
		t.Fatalf("clunk: %v", err)
	}
	if _, ok := d.Fids.Lookup(1); ok {
		t.Fatal("fid must be removed after clunk")
	}
}

func TestDispatchVersionResetsFids(t *testing.T) {
	d := NewDispatcher[string](fakeBackend{})
	if _, err := dispatchTyped(t, d, &TattachMsg{Fid: 1, Afid: NoFid}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if d.Fids.Len() != 1 {
		t.Fatal("expected one fid before version reset")
	}
	reply, err := dispatchTyped(t, d, &TversionMsg{Msize: MaxMessageSize, Version: Version})
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	rv, ok := reply.(*RversionMsg)
	if !ok || rv.Version != Version {
		t.Fatalf("expected negotiated version reply, got %+v", reply)
	}
	if d.Fids.Len() != 0 {
		t.Fatal("Tversion must reset the fid table")
	}
}

// dispatchTyped encodes msg, round trips it through Dispatch by
// re-decoding its own encoding (as the real frame layer would), and
// returns the reply.
func dispatchTyped(t *testing.T, d *Dispatcher[string], msg Message) (Message, error) {
	t.Helper()
	buf := make([]byte, MaxMessageSize)
	n := msg.Encode(buf)
	return d.Dispatch(context.Background(), msg.Type(), 1, buf[:n])
}
