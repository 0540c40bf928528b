package hostfs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/NERVsystems/n9p/internal/ninep"
)

// Backend exports a real directory tree over 9P2000.L, grounded in
// rs9p's unpfs reference filesystem. One Backend instance is shared
// across every connection; per-fid state (the resolved host path, any
// open *os.File, and the walk depth) lives in *Fid.
type Backend struct {
	ninep.UnimplementedBackend[*Fid]

	root     string
	maxDepth int
	logger   logrus.FieldLogger
}

// NewBackend exports root, rejecting walks that would descend more
// than maxDepth path components below it (an ELOOP guard against a
// self-referential mount).
func NewBackend(root string, maxDepth int, logger logrus.FieldLogger) *Backend {
	if logger == nil {
		logger = logrus.New()
	}
	return &Backend{root: root, maxDepth: maxDepth, logger: logger}
}

func (b *Backend) NewAux() *Fid { return &Fid{} }

func (b *Backend) Rattach(ctx context.Context, fid, afid *ninep.Fid[*Fid], uname, aname string, nuname uint32) (ninep.RattachMsg, error) {
	fid.Aux.setPath(b.root)
	fid.Aux.setDepth(0)
	qid, err := statQid(b.root)
	if err != nil {
		return ninep.RattachMsg{}, err
	}
	return ninep.RattachMsg{Qid: qid}, nil
}

func (b *Backend) Rwalk(ctx context.Context, fid, newfid *ninep.Fid[*Fid], wnames []string) (ninep.RwalkMsg, error) {
	path := fid.Aux.path()
	depth := fid.Aux.getDepth()

	var wqids []ninep.Qid
	for i, name := range wnames {
		switch name {
		case "..":
			if depth > 0 {
				depth--
			}
		case ".":
			// depth unchanged
		default:
			depth++
			if depth > b.maxDepth {
				return ninep.RwalkMsg{}, ninep.NewError(uint32(unix.ELOOP))
			}
		}

		candidate := filepath.Join(path, name)
		qid, err := statQid(candidate)
		if err != nil {
			if i == 0 {
				return ninep.RwalkMsg{}, err
			}
			break
		}
		wqids = append(wqids, qid)
		path = candidate
	}

	newfid.Aux.setPath(path)
	newfid.Aux.setDepth(depth)
	return ninep.RwalkMsg{Wqids: wqids}, nil
}

func (b *Backend) Rgetattr(ctx context.Context, fid *ninep.Fid[*Fid], reqMask uint64) (ninep.RgetattrMsg, error) {
	var st unix.Stat_t
	if err := unix.Lstat(fid.Aux.path(), &st); err != nil {
		return ninep.RgetattrMsg{}, err
	}
	qid := qidFromStat(&st)
	return ninep.RgetattrMsg{
		Valid: reqMask,
		Qid:   qid,
		Stat:  statFromUnix(&st),
	}, nil
}

func (b *Backend) Rsetattr(ctx context.Context, fid *ninep.Fid[*Fid], attr ninep.SetAttr) (ninep.RsetattrMsg, error) {
	path := fid.Aux.path()

	if attr.Valid&ninep.AttrMode != 0 {
		if err := os.Chmod(path, os.FileMode(attr.Mode&0o7777)); err != nil {
			return ninep.RsetattrMsg{}, err
		}
	}
	if attr.Valid&(ninep.AttrUID|ninep.AttrGID) != 0 {
		uid, gid := -1, -1
		if attr.Valid&ninep.AttrUID != 0 {
			uid = int(attr.UID)
		}
		if attr.Valid&ninep.AttrGID != 0 {
			gid = int(attr.GID)
		}
		if err := os.Chown(path, uid, gid); err != nil {
			return ninep.RsetattrMsg{}, err
		}
	}
	if attr.Valid&ninep.AttrSize != 0 {
		if err := os.Truncate(path, int64(attr.Size)); err != nil {
			return ninep.RsetattrMsg{}, err
		}
	}
	if attr.Valid&(ninep.AttrATimeSet|ninep.AttrMTimeSet) != 0 {
		var st unix.Stat_t
		if err := unix.Lstat(path, &st); err != nil {
			return ninep.RsetattrMsg{}, err
		}
		atime := time.Unix(st.Atim.Sec, st.Atim.Nsec)
		mtime := time.Unix(st.Mtim.Sec, st.Mtim.Nsec)
		if attr.Valid&ninep.AttrATimeSet != 0 {
			atime = time.Unix(int64(attr.ATime.Sec), int64(attr.ATime.NSec))
		}
		if attr.Valid&ninep.AttrMTimeSet != 0 {
			mtime = time.Unix(int64(attr.MTime.Sec), int64(attr.MTime.NSec))
		}
		if err := os.Chtimes(path, atime, mtime); err != nil {
			return ninep.RsetattrMsg{}, err
		}
	}
	return ninep.RsetattrMsg{}, nil
}

func (b *Backend) Rreadlink(ctx context.Context, fid *ninep.Fid[*Fid]) (ninep.RreadlinkMsg, error) {
	target, err := os.Readlink(fid.Aux.path())
	if err != nil {
		return ninep.RreadlinkMsg{}, err
	}
	return ninep.RreadlinkMsg{Target: target}, nil
}

func (b *Backend) Rreaddir(ctx context.Context, fid *ninep.Fid[*Fid], offset uint64, count uint32) (ninep.RreaddirMsg, error) {
	path := fid.Aux.path()
	all, err := os.ReadDir(path)
	if err != nil {
		return ninep.RreaddirMsg{}, err
	}

	var entries []ninep.DirEntry
	var size uint32

	appendEntry := func(e ninep.DirEntry) bool {
		buf := make([]byte, 512)
		n := uint32(e.Encode(buf))
		if size+n > count {
			return false
		}
		entries = append(entries, e)
		size += n
		return true
	}

	start := offset
	if offset == 0 {
		dotQid, err := statQid(path)
		if err != nil {
			return ninep.RreaddirMsg{}, err
		}
		if !appendEntry(ninep.DirEntry{Qid: dotQid, Offset: 0, Type: dotQid.Type, Name: "."}) {
			return ninep.RreaddirMsg{Entries: entries}, nil
		}
		parentQid, err := statQid(filepath.Join(path, ".."))
		if err != nil {
			return ninep.RreaddirMsg{}, err
		}
		if !appendEntry(ninep.DirEntry{Qid: parentQid, Offset: 1, Type: parentQid.Type, Name: ".."}) {
			return ninep.RreaddirMsg{Entries: entries}, nil
		}
		start = 0
	} else {
		start = offset - 1
	}

	for i := int(start); i < len(all); i++ {
		info, err := all[i].Info()
		if err != nil {
			continue
		}
		qid := qidFromFileInfo(info)
		entry := ninep.DirEntry{
			Qid:    qid,
			Offset: 2 + uint64(i),
			Type:   qid.Type,
			Name:   all[i].Name(),
		}
		if !appendEntry(entry) {
			break
		}
	}

	return ninep.RreaddirMsg{Entries: entries}, nil
}

func (b *Backend) Rlopen(ctx context.Context, fid *ninep.Fid[*Fid], flags uint32) (ninep.RlopenMsg, error) {
	path := fid.Aux.path()
	qid, err := statQid(path)
	if err != nil {
		return ninep.RlopenMsg{}, err
	}
	if qid.Type&ninep.QTDIR == 0 {
		f, err := os.OpenFile(path, maskFlags(flags), 0)
		if err != nil {
			return ninep.RlopenMsg{}, err
		}
		fid.Aux.setOpenFile(f)
	}
	return ninep.RlopenMsg{Qid: qid, Iounit: 0}, nil
}

func (b *Backend) Rlcreate(ctx context.Context, fid *ninep.Fid[*Fid], name string, flags, mode, gid uint32) (ninep.RlcreateMsg, error) {
	path := filepath.Join(fid.Aux.path(), name)
	f, err := os.OpenFile(path, maskFlags(flags)|os.O_CREATE, os.FileMode(mode&0o7777))
	if err != nil {
		return ninep.RlcreateMsg{}, err
	}
	qid, err := statQid(path)
	if err != nil {
		f.Close()
		return ninep.RlcreateMsg{}, err
	}
	fid.Aux.setPath(path)
	fid.Aux.setOpenFile(f)
	return ninep.RlcreateMsg{Qid: qid, Iounit: 0}, nil
}

func (b *Backend) Rsymlink(ctx context.Context, fid *ninep.Fid[*Fid], name, target string, gid uint32) (ninep.RsymlinkMsg, error) {
	path := filepath.Join(fid.Aux.path(), name)
	if err := os.Symlink(target, path); err != nil {
		return ninep.RsymlinkMsg{}, err
	}
	qid, err := statQid(path)
	if err != nil {
		return ninep.RsymlinkMsg{}, err
	}
	return ninep.RsymlinkMsg{Qid: qid}, nil
}

func (b *Backend) Rmkdir(ctx context.Context, dfid *ninep.Fid[*Fid], name string, mode, gid uint32) (ninep.RmkdirMsg, error) {
	path := filepath.Join(dfid.Aux.path(), name)
	if err := os.Mkdir(path, os.FileMode(mode&0o7777)); err != nil {
		return ninep.RmkdirMsg{}, err
	}
	qid, err := statQid(path)
	if err != nil {
		return ninep.RmkdirMsg{}, err
	}
	return ninep.RmkdirMsg{Qid: qid}, nil
}

func (b *Backend) RrenameAt(ctx context.Context, olddirfid, newdirfid *ninep.Fid[*Fid], oldname, newname string) (ninep.RrenameAtMsg, error) {
	oldpath := filepath.Join(olddirfid.Aux.path(), oldname)
	newpath := filepath.Join(newdirfid.Aux.path(), newname)
	if err := os.Rename(oldpath, newpath); err != nil {
		return ninep.RrenameAtMsg{}, err
	}
	return ninep.RrenameAtMsg{}, nil
}

func (b *Backend) Rrename(ctx context.Context, fid, dfid *ninep.Fid[*Fid], name string) (ninep.RrenameMsg, error) {
	oldpath := fid.Aux.path()
	newpath := filepath.Join(dfid.Aux.path(), name)
	if err := os.Rename(oldpath, newpath); err != nil {
		return ninep.RrenameMsg{}, err
	}
	fid.Aux.setPath(newpath)
	return ninep.RrenameMsg{}, nil
}

func (b *Backend) RunlinkAt(ctx context.Context, dirfid *ninep.Fid[*Fid], name string, flags uint32) (ninep.RunlinkAtMsg, error) {
	path := filepath.Join(dirfid.Aux.path(), name)
	if err := os.Remove(path); err != nil {
		return ninep.RunlinkAtMsg{}, err
	}
	return ninep.RunlinkAtMsg{}, nil
}

func (b *Backend) Rfsync(ctx context.Context, fid *ninep.Fid[*Fid]) (ninep.RfsyncMsg, error) {
	f := fid.Aux.openFile()
	if f == nil {
		return ninep.RfsyncMsg{}, ninep.ErrBadFid
	}
	if err := f.Sync(); err != nil {
		return ninep.RfsyncMsg{}, err
	}
	return ninep.RfsyncMsg{}, nil
}

func (b *Backend) Rread(ctx context.Context, fid *ninep.Fid[*Fid], offset uint64, count uint32) (ninep.RreadMsg, error) {
	f := fid.Aux.openFile()
	if f == nil {
		return ninep.RreadMsg{}, ninep.ErrBadFid
	}
	buf := make([]byte, count)
	n, err := f.ReadAt(buf, int64(offset))
	if err != nil && !errors.Is(err, io.EOF) {
		return ninep.RreadMsg{}, err
	}
	return ninep.RreadMsg{Data: buf[:n]}, nil
}

func (b *Backend) Rwrite(ctx context.Context, fid *ninep.Fid[*Fid], offset uint64, data []byte) (ninep.RwriteMsg, error) {
	f := fid.Aux.openFile()
	if f == nil {
		return ninep.RwriteMsg{}, ninep.ErrBadFid
	}
	n, err := f.WriteAt(data, int64(offset))
	if err != nil {
		return ninep.RwriteMsg{}, err
	}
	return ninep.RwriteMsg{Count: uint32(n)}, nil
}

func (b *Backend) Rclunk(ctx context.Context, fid *ninep.Fid[*Fid]) (ninep.RclunkMsg, error) {
	if f := fid.Aux.openFile(); f != nil {
		f.Close()
	}
	return ninep.RclunkMsg{}, nil
}

func (b *Backend) Rremove(ctx context.Context, fid *ninep.Fid[*Fid]) (ninep.RremoveMsg, error) {
	path := fid.Aux.path()
	if f := fid.Aux.openFile(); f != nil {
		f.Close()
	}
	if err := os.Remove(path); err != nil {
		return ninep.RremoveMsg{}, err
	}
	return ninep.RremoveMsg{}, nil
}

func (b *Backend) Rstatfs(ctx context.Context, fid *ninep.Fid[*Fid]) (ninep.RstatfsMsg, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(fid.Aux.path(), &st); err != nil {
		return ninep.RstatfsMsg{}, err
	}
	return ninep.RstatfsMsg{StatFs: ninep.StatFs{
		Type:    uint32(st.Type),
		BSize:   uint32(st.Bsize),
		Blocks:  st.Blocks,
		BFree:   st.Bfree,
		BAvail:  st.Bavail,
		Files:   st.Files,
		FFree:   st.Ffree,
		FSID:    uint64(uint32(st.Fsid.Val[0]))<<32 | uint64(uint32(st.Fsid.Val[1])),
		NameLen: uint32(st.Namelen),
	}}, nil
}

func statQid(path string) (ninep.Qid, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return ninep.Qid{}, err
	}
	return qidFromStat(&st), nil
}

func qidFromStat(st *unix.Stat_t) ninep.Qid {
	return ninep.Qid{Type: qidType(st.Mode), Path: st.Ino}
}

func qidFromFileInfo(info os.FileInfo) ninep.Qid {
	var typ uint8
	switch {
	case info.IsDir():
		typ = ninep.QTDIR
	case info.Mode()&os.ModeSymlink != 0:
		typ = ninep.QTSYMLINK
	default:
		typ = ninep.QTFILE
	}
	var ino uint64
	if st, ok := info.Sys().(*unix.Stat_t); ok {
		ino = st.Ino
	}
	return ninep.Qid{Type: typ, Path: ino}
}

func qidType(mode uint32) uint8 {
	switch mode & unix.S_IFMT {
	case unix.S_IFDIR:
		return ninep.QTDIR
	case unix.S_IFLNK:
		return ninep.QTSYMLINK
	default:
		return ninep.QTFILE
	}
}

func statFromUnix(st *unix.Stat_t) ninep.Stat {
	return ninep.Stat{
		Mode:    st.Mode,
		UID:     st.Uid,
		GID:     st.Gid,
		NLink:   uint64(st.Nlink),
		RDev:    st.Rdev,
		Size:    uint64(st.Size),
		BlkSize: uint64(st.Blksize),
		Blocks:  uint64(st.Blocks),
		ATime:   ninep.Time{Sec: uint64(st.Atim.Sec), NSec: uint64(st.Atim.Nsec)},
		MTime:   ninep.Time{Sec: uint64(st.Mtim.Sec), NSec: uint64(st.Mtim.Nsec)},
		CTime:   ninep.Time{Sec: uint64(st.Ctim.Sec), NSec: uint64(st.Ctim.Nsec)},
	}
}

var _ ninep.Backend[*Fid] = (*Backend)(nil)
