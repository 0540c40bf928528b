package ninep

import "context"

// Dispatcher resolves fids and invokes Backend methods for decoded
// requests. One Dispatcher serves one connection; its FidTable is the
// connection's only shared mutable state. Mirrors rs9p's
// dispatch_once, including its newfid-resolution table and the Twalk
// partial-walk registration rule.
type Dispatcher[Aux any] struct {
	Backend Backend[Aux]
	Fids    *FidTable[Aux]
}

// NewDispatcher creates a dispatcher over a fresh fid table.
func NewDispatcher[Aux any](backend Backend[Aux]) *Dispatcher[Aux] {
	return &Dispatcher[Aux]{Backend: backend, Fids: NewFidTable[Aux]()}
}

// Dispatch decodes msgType/payload, resolves fids, invokes the
// matching backend method, and returns the reply message. A non-nil
// error is always a protocol-level failure (malformed body) that the
// caller (server.go) must treat as fatal to the connection; backend
// and dispatch errors are returned as a *RlerrorMsg reply, not as Go
// errors.
func (d *Dispatcher[Aux]) Dispatch(ctx context.Context, msgType uint8, tag uint16, payload []byte) (Message, error) {
	body, err := decodeBody(msgType, payload)
	if err != nil {
		return nil, err
	}

	switch m := body.(type) {
	case *TversionMsg:
		d.Fids.Reset()
		reply, err := d.Backend.Rversion(ctx, m.Msize, m.Version)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TauthMsg:
		newfid := &Fid[Aux]{Num: m.Afid, Aux: d.Backend.NewAux()}
		reply, err := d.Backend.Rauth(ctx, newfid, m.Uname, m.Aname, m.NUname)
		if err != nil {
			return errReply(err), nil
		}
		d.Fids.Insert(m.Afid, newfid.Aux)
		return &reply, nil

	case *TattachMsg:
		newfid := &Fid[Aux]{Num: m.Fid, Aux: d.Backend.NewAux()}
		var afid *Fid[Aux]
		if m.Afid != NoFid {
			afid, _ = d.Fids.Lookup(m.Afid)
		}
		reply, err := d.Backend.Rattach(ctx, newfid, afid, m.Uname, m.Aname, m.NUname)
		if err != nil {
			return errReply(err), nil
		}
		d.Fids.Insert(m.Fid, newfid.Aux)
		return &reply, nil

	case *TflushMsg:
		reply, err := d.Backend.Rflush(ctx, m.Oldtag)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TwalkMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		newfid := &Fid[Aux]{Num: m.Newfid, Aux: d.Backend.NewAux()}
		reply, err := d.Backend.Rwalk(ctx, fid, newfid, m.Wnames)
		if err != nil {
			return errReply(err), nil
		}
		// Register only on full success or an empty wnames walk
		// (the latter aliases the source fid's identity); a partial
		// walk must not install the newfid.
		if len(reply.Wqids) == len(m.Wnames) {
			d.Fids.Insert(m.Newfid, newfid.Aux)
		}
		return &reply, nil

	case *TstatfsMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rstatfs(ctx, fid)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TlopenMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rlopen(ctx, fid, m.Flags)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TlcreateMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rlcreate(ctx, fid, m.Name, m.Flags, m.Mode, m.GID)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TsymlinkMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rsymlink(ctx, fid, m.Name, m.Target, m.GID)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TmknodMsg:
		dfid, ok := d.Fids.Lookup(m.Dfid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rmknod(ctx, dfid, m.Name, m.Mode, m.Major, m.Minor, m.GID)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TrenameMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		dfid, ok := d.Fids.Lookup(m.Dfid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rrename(ctx, fid, dfid, m.Name)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TreadlinkMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rreadlink(ctx, fid)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TgetattrMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rgetattr(ctx, fid, m.ReqMask)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TsetattrMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rsetattr(ctx, fid, m.SetAttr)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TxattrWalkMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		newfid := &Fid[Aux]{Num: m.Newfid, Aux: d.Backend.NewAux()}
		reply, err := d.Backend.RxattrWalk(ctx, fid, newfid, m.Name)
		if err != nil {
			return errReply(err), nil
		}
		d.Fids.Insert(m.Newfid, newfid.Aux)
		return &reply, nil

	case *TxattrCreateMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.RxattrCreate(ctx, fid, m.Name, m.AttrSize, m.Flags)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TreaddirMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rreaddir(ctx, fid, m.Offset, m.Count)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TfsyncMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rfsync(ctx, fid)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TlockMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rlock(ctx, fid, m.Flock)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TgetlockMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rgetlock(ctx, fid, m.Getlock)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TlinkMsg:
		dfid, ok := d.Fids.Lookup(m.Dfid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rlink(ctx, dfid, fid, m.Name)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TmkdirMsg:
		dfid, ok := d.Fids.Lookup(m.Dfid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rmkdir(ctx, dfid, m.Name, m.Mode, m.GID)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TrenameAtMsg:
		olddirfid, ok := d.Fids.Lookup(m.OldDirFid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		newdirfid, ok := d.Fids.Lookup(m.NewDirFid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.RrenameAt(ctx, olddirfid, newdirfid, m.OldName, m.NewName)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TunlinkAtMsg:
		dirfid, ok := d.Fids.Lookup(m.DirFd)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.RunlinkAt(ctx, dirfid, m.Name, m.Flags)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TreadMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rread(ctx, fid, m.Offset, m.Count)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TwriteMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rwrite(ctx, fid, m.Offset, m.Data)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TclunkMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rclunk(ctx, fid)
		// Tclunk always removes the fid, success or failure.
		d.Fids.Remove(m.Fid)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	case *TremoveMsg:
		fid, ok := d.Fids.Lookup(m.Fid)
		if !ok {
			return errReply(ErrBadFid), nil
		}
		reply, err := d.Backend.Rremove(ctx, fid)
		// Tremove implies clunk unconditionally.
		d.Fids.Remove(m.Fid)
		if err != nil {
			return errReply(err), nil
		}
		return &reply, nil

	default:
		return errReply(ErrProto), nil
	}
}

func errReply(err error) Message {
	return &RlerrorMsg{Ecode: errnoOf(err)}
}
