package ninep

import "context"

// Backend is the capability set a filesystem implements: one method
// per 9P2000.L operation, plus a default-aux factory for newly
// introduced fids. Embedding UnimplementedBackend[Aux]
// gives every method an EOPNOTSUPP body, matching rs9p's Filesystem
// trait defaults; a concrete backend overrides only the operations it
// supports.
type Backend[Aux any] interface {
	// NewAux constructs the auxiliary state for a fid the dispatcher
	// is about to register (Tattach.fid, Twalk.newfid, Tauth.afid,
	// TxattrWalk.newfid).
	NewAux() Aux

	Rversion(ctx context.Context, msize uint32, version string) (RversionMsg, error)
	Rauth(ctx context.Context, afid *Fid[Aux], uname, aname string, nuname uint32) (RauthMsg, error)
	Rattach(ctx context.Context, fid *Fid[Aux], afid *Fid[Aux], uname, aname string, nuname uint32) (RattachMsg, error)
	Rwalk(ctx context.Context, fid *Fid[Aux], newfid *Fid[Aux], wnames []string) (RwalkMsg, error)
	Rflush(ctx context.Context, oldtag uint16) (RflushMsg, error)

	Rstatfs(ctx context.Context, fid *Fid[Aux]) (RstatfsMsg, error)
	Rlopen(ctx context.Context, fid *Fid[Aux], flags uint32) (RlopenMsg, error)
	Rlcreate(ctx context.Context, fid *Fid[Aux], name string, flags, mode, gid uint32) (RlcreateMsg, error)
	Rsymlink(ctx context.Context, fid *Fid[Aux], name, target string, gid uint32) (RsymlinkMsg, error)
	Rmknod(ctx context.Context, dfid *Fid[Aux], name string, mode, major, minor, gid uint32) (RmknodMsg, error)
	Rrename(ctx context.Context, fid, dfid *Fid[Aux], name string) (RrenameMsg, error)
	Rreadlink(ctx context.Context, fid *Fid[Aux]) (RreadlinkMsg, error)
	Rgetattr(ctx context.Context, fid *Fid[Aux], reqMask uint64) (RgetattrMsg, error)
	Rsetattr(ctx context.Context, fid *Fid[Aux], attr SetAttr) (RsetattrMsg, error)
	RxattrWalk(ctx context.Context, fid *Fid[Aux], newfid *Fid[Aux], name string) (RxattrWalkMsg, error)
	RxattrCreate(ctx context.Context, fid *Fid[Aux], name string, attrSize uint64, flags uint32) (RxattrCreateMsg, error)
	Rreaddir(ctx context.Context, fid *Fid[Aux], offset uint64, count uint32) (RreaddirMsg, error)
	Rfsync(ctx context.Context, fid *Fid[Aux]) (RfsyncMsg, error)
	Rlock(ctx context.Context, fid *Fid[Aux], flock Flock) (RlockMsg, error)
	Rgetlock(ctx context.Context, fid *Fid[Aux], getlock Getlock) (RgetlockMsg, error)
	Rlink(ctx context.Context, dfid, fid *Fid[Aux], name string) (RlinkMsg, error)
	Rmkdir(ctx context.Context, dfid *Fid[Aux], name string, mode, gid uint32) (RmkdirMsg, error)
	RrenameAt(ctx context.Context, olddirfid, newdirfid *Fid[Aux], oldname, newname string) (RrenameAtMsg, error)
	RunlinkAt(ctx context.Context, dirfid *Fid[Aux], name string, flags uint32) (RunlinkAtMsg, error)
	Rread(ctx context.Context, fid *Fid[Aux], offset uint64, count uint32) (RreadMsg, error)
	Rwrite(ctx context.Context, fid *Fid[Aux], offset uint64, data []byte) (RwriteMsg, error)
	Rclunk(ctx context.Context, fid *Fid[Aux]) (RclunkMsg, error)
	Rremove(ctx context.Context, fid *Fid[Aux]) (RremoveMsg, error)
}

// UnimplementedBackend gives every Backend[Aux] method an EOPNOTSUPP
// body, the way a generated gRPC UnimplementedXServer does — Go has no
// trait-default-method equivalent, so embedding is the idiom. Rversion
// and Rflush get real default bodies: version negotiation and
// immediate flush acknowledgement respectively.
type UnimplementedBackend[Aux any] struct{}

func (UnimplementedBackend[Aux]) NewAux() Aux {
	var zero Aux
	return zero
}

func (UnimplementedBackend[Aux]) Rversion(ctx context.Context, msize uint32, version string) (RversionMsg, error) {
	negotiated := msize
	if negotiated > MaxMessageSize {
		negotiated = MaxMessageSize
	}
	v := Unknown
	if version == Version {
		v = Version
	}
	return RversionMsg{Msize: negotiated, Version: v}, nil
}

func (UnimplementedBackend[Aux]) Rflush(ctx context.Context, oldtag uint16) (RflushMsg, error) {
	return RflushMsg{}, nil
}

func (UnimplementedBackend[Aux]) Rauth(ctx context.Context, afid *Fid[Aux], uname, aname string, nuname uint32) (RauthMsg, error) {
	return RauthMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rattach(ctx context.Context, fid *Fid[Aux], afid *Fid[Aux], uname, aname string, nuname uint32) (RattachMsg, error) {
	return RattachMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rwalk(ctx context.Context, fid *Fid[Aux], newfid *Fid[Aux], wnames []string) (RwalkMsg, error) {
	return RwalkMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rstatfs(ctx context.Context, fid *Fid[Aux]) (RstatfsMsg, error) {
	return RstatfsMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rlopen(ctx context.Context, fid *Fid[Aux], flags uint32) (RlopenMsg, error) {
	return RlopenMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rlcreate(ctx context.Context, fid *Fid[Aux], name string, flags, mode, gid uint32) (RlcreateMsg, error) {
	return RlcreateMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rsymlink(ctx context.Context, fid *Fid[Aux], name, target string, gid uint32) (RsymlinkMsg, error) {
	return RsymlinkMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rmknod(ctx context.Context, dfid *Fid[Aux], name string, mode, major, minor, gid uint32) (RmknodMsg, error) {
	return RmknodMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rrename(ctx context.Context, fid, dfid *Fid[Aux], name string) (RrenameMsg, error) {
	return RrenameMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rreadlink(ctx context.Context, fid *Fid[Aux]) (RreadlinkMsg, error) {
	return RreadlinkMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rgetattr(ctx context.Context, fid *Fid[Aux], reqMask uint64) (RgetattrMsg, error) {
	return RgetattrMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rsetattr(ctx context.Context, fid *Fid[Aux], attr SetAttr) (RsetattrMsg, error) {
	return RsetattrMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) RxattrWalk(ctx context.Context, fid *Fid[Aux], newfid *Fid[Aux], name string) (RxattrWalkMsg, error) {
	return RxattrWalkMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) RxattrCreate(ctx context.Context, fid *Fid[Aux], name string, attrSize uint64, flags uint32) (RxattrCreateMsg, error) {
	return RxattrCreateMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rreaddir(ctx context.Context, fid *Fid[Aux], offset uint64, count uint32) (RreaddirMsg, error) {
	return RreaddirMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rfsync(ctx context.Context, fid *Fid[Aux]) (RfsyncMsg, error) {
	return RfsyncMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rlock(ctx context.Context, fid *Fid[Aux], flock Flock) (RlockMsg, error) {
	return RlockMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rgetlock(ctx context.Context, fid *Fid[Aux], getlock Getlock) (RgetlockMsg, error) {
	return RgetlockMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rlink(ctx context.Context, dfid, fid *Fid[Aux], name string) (RlinkMsg, error) {
	return RlinkMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rmkdir(ctx context.Context, dfid *Fid[Aux], name string, mode, gid uint32) (RmkdirMsg, error) {
	return RmkdirMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) RrenameAt(ctx context.Context, olddirfid, newdirfid *Fid[Aux], oldname, newname string) (RrenameAtMsg, error) {
	return RrenameAtMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) RunlinkAt(ctx context.Context, dirfid *Fid[Aux], name string, flags uint32) (RunlinkAtMsg, error) {
	return RunlinkAtMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rread(ctx context.Context, fid *Fid[Aux], offset uint64, count uint32) (RreadMsg, error) {
	return RreadMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rwrite(ctx context.Context, fid *Fid[Aux], offset uint64, data []byte) (RwriteMsg, error) {
	return RwriteMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rclunk(ctx context.Context, fid *Fid[Aux]) (RclunkMsg, error) {
	return RclunkMsg{}, ErrNotSupported
}

func (UnimplementedBackend[Aux]) Rremove(ctx context.Context, fid *Fid[Aux]) (RremoveMsg, error) {
	return RremoveMsg{}, ErrNotSupported
}

var _ Backend[int] = UnimplementedBackend[int]{}
