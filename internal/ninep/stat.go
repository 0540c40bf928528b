package ninep

import (
	"encoding/binary"
	"unicode/utf8"
)

// SetAttr.Valid mask bits, selecting which fields of a Tsetattr apply.
// Mirrors the Linux v9fs ATTR_* bits.
const (
	AttrMode     uint32 = 1 << 0
	AttrUID      uint32 = 1 << 1
	AttrGID      uint32 = 1 << 2
	AttrSize     uint32 = 1 << 3
	AttrATime    uint32 = 1 << 4
	AttrMTime    uint32 = 1 << 5
	AttrCTime    uint32 = 1 << 6
	AttrATimeSet uint32 = 1 << 7
	AttrMTimeSet uint32 = 1 << 8

	AttrAll = AttrMode | AttrUID | AttrGID | AttrSize | AttrATime |
		AttrMTime | AttrCTime | AttrATimeSet | AttrMTimeSet
)

// Rgetattr.Valid mask bits, selecting which stat fields the backend
// actually populated.
const (
	GetattrMode  uint64 = 1 << 0
	GetattrNLink uint64 = 1 << 1
	GetattrUID   uint64 = 1 << 2
	GetattrGID   uint64 = 1 << 3
	GetattrRdev  uint64 = 1 << 4
	GetattrATime uint64 = 1 << 5
	GetattrMTime uint64 = 1 << 6
	GetattrCTime uint64 = 1 << 7
	GetattrIno   uint64 = 1 << 8
	GetattrSize  uint64 = 1 << 9
	GetattrBlocks uint64 = 1 << 10
	GetattrBasic = GetattrMode | GetattrNLink | GetattrUID | GetattrGID |
		GetattrRdev | GetattrATime | GetattrMTime | GetattrCTime |
		GetattrIno | GetattrSize | GetattrBlocks
	GetattrAll uint64 = 0x3fff
)

// Time is the wire layout of a POSIX timestamp: seconds and nanoseconds.
type Time struct {
	Sec  uint64
	NSec uint64
}

const timeSize = 16

func (t Time) Encode(buf []byte) int {
	binary.LittleEndian.PutUint64(buf[0:8], t.Sec)
	binary.LittleEndian.PutUint64(buf[8:16], t.NSec)
	return timeSize
}

func decodeTime(buf []byte) (Time, int, error) {
	if len(buf) < timeSize {
		return Time{}, 0, errShortMessage
	}
	return Time{
		Sec:  binary.LittleEndian.Uint64(buf[0:8]),
		NSec: binary.LittleEndian.Uint64(buf[8:16]),
	}, timeSize, nil
}

// Stat is the POSIX-shaped attribute record carried in Rgetattr.
type Stat struct {
	Mode    uint32
	UID     uint32
	GID     uint32
	NLink   uint64
	RDev    uint64
	Size    uint64
	BlkSize uint64
	Blocks  uint64
	ATime   Time
	MTime   Time
	CTime   Time
}

func (s Stat) Encode(buf []byte) int {
	n := 0
	binary.LittleEndian.PutUint32(buf[n:n+4], s.Mode)
	n += 4
	binary.LittleEndian.PutUint32(buf[n:n+4], s.UID)
	n += 4
	binary.LittleEndian.PutUint32(buf[n:n+4], s.GID)
	n += 4
	binary.LittleEndian.PutUint64(buf[n:n+8], s.NLink)
	n += 8
	binary.LittleEndian.PutUint64(buf[n:n+8], s.RDev)
	n += 8
	binary.LittleEndian.PutUint64(buf[n:n+8], s.Size)
	n += 8
	binary.LittleEndian.PutUint64(buf[n:n+8], s.BlkSize)
	n += 8
	binary.LittleEndian.PutUint64(buf[n:n+8], s.Blocks)
	n += 8
	n += s.ATime.Encode(buf[n:])
	n += s.MTime.Encode(buf[n:])
	n += s.CTime.Encode(buf[n:])
	return n
}

func decodeStat(buf []byte) (Stat, int, error) {
	const fixed = 4 + 4 + 4 + 8 + 8 + 8 + 8 + 8
	if len(buf) < fixed+3*timeSize {
		return Stat{}, 0, errShortMessage
	}
	var s Stat
	n := 0
	s.Mode = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	s.UID = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	s.GID = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	s.NLink = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	s.RDev = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	s.Size = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	s.BlkSize = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	s.Blocks = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	var tn int
	var err error
	s.ATime, tn, err = decodeTime(buf[n:])
	if err != nil {
		return Stat{}, 0, err
	}
	n += tn
	s.MTime, tn, err = decodeTime(buf[n:])
	if err != nil {
		return Stat{}, 0, err
	}
	n += tn
	s.CTime, tn, err = decodeTime(buf[n:])
	if err != nil {
		return Stat{}, 0, err
	}
	n += tn
	return s, n, nil
}

// SetAttr carries the fields a Tsetattr may change; Valid selects which
// ones the client actually set.
type SetAttr struct {
	Valid uint32
	Mode  uint32
	UID   uint32
	GID   uint32
	Size  uint64
	ATime Time
	MTime Time
}

func (a SetAttr) Encode(buf []byte) int {
	n := 0
	binary.LittleEndian.PutUint32(buf[n:n+4], a.Valid)
	n += 4
	binary.LittleEndian.PutUint32(buf[n:n+4], a.Mode)
	n += 4
	binary.LittleEndian.PutUint32(buf[n:n+4], a.UID)
	n += 4
	binary.LittleEndian.PutUint32(buf[n:n+4], a.GID)
	n += 4
	binary.LittleEndian.PutUint64(buf[n:n+8], a.Size)
	n += 8
	n += a.ATime.Encode(buf[n:])
	n += a.MTime.Encode(buf[n:])
	return n
}

func decodeSetAttr(buf []byte) (SetAttr, int, error) {
	const fixed = 4 + 4 + 4 + 4 + 8
	if len(buf) < fixed+2*timeSize {
		return SetAttr{}, 0, errShortMessage
	}
	var a SetAttr
	n := 0
	a.Valid = binary.LittleEndian.Uint32(buf[n:n+4]) & AttrAll
	n += 4
	a.Mode = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	a.UID = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	a.GID = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	a.Size = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	var tn int
	var err error
	a.ATime, tn, err = decodeTime(buf[n:])
	if err != nil {
		return SetAttr{}, 0, err
	}
	n += tn
	a.MTime, tn, err = decodeTime(buf[n:])
	if err != nil {
		return SetAttr{}, 0, err
	}
	n += tn
	return a, n, nil
}

// StatFs is the reply body of Rstatfs, mirroring struct statvfs.
type StatFs struct {
	Type    uint32
	BSize   uint32
	Blocks  uint64
	BFree   uint64
	BAvail  uint64
	Files   uint64
	FFree   uint64
	FSID    uint64
	NameLen uint32
}

func (f StatFs) Encode(buf []byte) int {
	n := 0
	binary.LittleEndian.PutUint32(buf[n:n+4], f.Type)
	n += 4
	binary.LittleEndian.PutUint32(buf[n:n+4], f.BSize)
	n += 4
	binary.LittleEndian.PutUint64(buf[n:n+8], f.Blocks)
	n += 8
	binary.LittleEndian.PutUint64(buf[n:n+8], f.BFree)
	n += 8
	binary.LittleEndian.PutUint64(buf[n:n+8], f.BAvail)
	n += 8
	binary.LittleEndian.PutUint64(buf[n:n+8], f.Files)
	n += 8
	binary.LittleEndian.PutUint64(buf[n:n+8], f.FFree)
	n += 8
	binary.LittleEndian.PutUint64(buf[n:n+8], f.FSID)
	n += 8
	binary.LittleEndian.PutUint32(buf[n:n+4], f.NameLen)
	n += 4
	return n
}

func decodeStatFs(buf []byte) (StatFs, int, error) {
	const size = 4 + 4 + 8*6 + 4
	if len(buf) < size {
		return StatFs{}, 0, errShortMessage
	}
	var f StatFs
	n := 0
	f.Type = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	f.BSize = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	f.Blocks = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	f.BFree = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	f.BAvail = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	f.Files = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	f.FFree = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	f.FSID = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	f.NameLen = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	return f, n, nil
}

// DirEntry is one record of a Treaddir reply stream.
type DirEntry struct {
	Qid    Qid
	Offset uint64
	Type   uint8
	Name   string
}

func (e DirEntry) Encode(buf []byte) int {
	n := e.Qid.Encode(buf)
	binary.LittleEndian.PutUint64(buf[n:n+8], e.Offset)
	n += 8
	buf[n] = e.Type
	n++
	n += encodeString(buf[n:], e.Name)
	return n
}

func decodeDirEntry(buf []byte) (DirEntry, int, error) {
	var e DirEntry
	qid, n, err := decodeQid(buf)
	if err != nil {
		return DirEntry{}, 0, err
	}
	e.Qid = qid
	if len(buf) < n+9 {
		return DirEntry{}, 0, errShortMessage
	}
	e.Offset = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	e.Type = buf[n]
	n++
	name, sn, err := decodeStringAt(buf[n:])
	if err != nil {
		return DirEntry{}, 0, err
	}
	e.Name = name
	n += sn
	return e, n, nil
}

// encodeDirEntries writes a Rreaddir body: a u32 total byte size of the
// entry payload followed by the entries themselves.
func encodeDirEntries(buf []byte, entries []DirEntry) int {
	n := 4
	start := n
	for _, e := range entries {
		n += e.Encode(buf[n:])
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n-start))
	return n
}

func decodeDirEntries(buf []byte) ([]DirEntry, int, error) {
	if len(buf) < 4 {
		return nil, 0, errShortMessage
	}
	size := binary.LittleEndian.Uint32(buf[0:4])
	if len(buf) < int(4+size) {
		return nil, 0, errShortMessage
	}
	body := buf[4 : 4+size]
	var entries []DirEntry
	off := 0
	for off < len(body) {
		e, n, err := decodeDirEntry(body[off:])
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
		off += n
	}
	return entries, int(4 + size), nil
}

// Flock describes an advisory lock request (Tlock).
type Flock struct {
	Type     uint8
	Flags    uint32
	Start    uint64
	Length   uint64
	ProcID   uint32
	ClientID string
}

func (l Flock) Encode(buf []byte) int {
	buf[0] = l.Type
	n := 1
	binary.LittleEndian.PutUint32(buf[n:n+4], l.Flags)
	n += 4
	binary.LittleEndian.PutUint64(buf[n:n+8], l.Start)
	n += 8
	binary.LittleEndian.PutUint64(buf[n:n+8], l.Length)
	n += 8
	binary.LittleEndian.PutUint32(buf[n:n+4], l.ProcID)
	n += 4
	n += encodeString(buf[n:], l.ClientID)
	return n
}

func decodeFlock(buf []byte) (Flock, int, error) {
	if len(buf) < 21 {
		return Flock{}, 0, errShortMessage
	}
	var l Flock
	l.Type = buf[0] & LockTypeAll
	n := 1
	l.Flags = binary.LittleEndian.Uint32(buf[n:n+4]) & LockFlagAll
	n += 4
	l.Start = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	l.Length = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	l.ProcID = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	cid, sn, err := decodeStringAt(buf[n:])
	if err != nil {
		return Flock{}, 0, err
	}
	l.ClientID = cid
	n += sn
	return l, n, nil
}

// Getlock is the body of Tgetlock/Rgetlock: query or report a lock
// without acquiring it.
type Getlock struct {
	Type     uint8
	Start    uint64
	Length   uint64
	ProcID   uint32
	ClientID string
}

func (l Getlock) Encode(buf []byte) int {
	buf[0] = l.Type
	n := 1
	binary.LittleEndian.PutUint64(buf[n:n+8], l.Start)
	n += 8
	binary.LittleEndian.PutUint64(buf[n:n+8], l.Length)
	n += 8
	binary.LittleEndian.PutUint32(buf[n:n+4], l.ProcID)
	n += 4
	n += encodeString(buf[n:], l.ClientID)
	return n
}

func decodeGetlock(buf []byte) (Getlock, int, error) {
	if len(buf) < 17 {
		return Getlock{}, 0, errShortMessage
	}
	var l Getlock
	l.Type = buf[0] & LockTypeAll
	n := 1
	l.Start = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	l.Length = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	l.ProcID = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	cid, sn, err := decodeStringAt(buf[n:])
	if err != nil {
		return Getlock{}, 0, err
	}
	l.ClientID = cid
	n += sn
	return l, n, nil
}

// Lock status values (Rlock reply byte).
const (
	LockSuccess uint8 = 0
	LockBlocked uint8 = 1
	LockError   uint8 = 2
	LockGrace   uint8 = 3
)

// Lock types, shared by Flock.Type and Getlock.Type.
const (
	LockTypeRdlck uint8 = 0
	LockTypeWrlck uint8 = 1
	LockTypeUnlck uint8 = 2

	// LockTypeAll masks Type to its 2-bit range.
	LockTypeAll uint8 = 0x03
	// LockFlagAll masks Flock.Flags to its 2-bit range.
	LockFlagAll uint32 = 0x03
)

// encodeString writes a u16-length-prefixed UTF-8 string.
func encodeString(buf []byte, s string) int {
	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(s)))
	copy(buf[2:], s)
	return 2 + len(s)
}

// decodeStringAt decodes a u16-length-prefixed string and validates
// UTF-8, per spec: non-UTF-8 content is a protocol error.
func decodeStringAt(buf []byte) (string, int, error) {
	if len(buf) < 2 {
		return "", 0, errShortMessage
	}
	size := binary.LittleEndian.Uint16(buf[0:2])
	if len(buf) < int(2+size) {
		return "", 0, errShortMessage
	}
	s := string(buf[2 : 2+size])
	if !utf8.ValidString(s) {
		return "", 0, errBadString
	}
	return s, int(2 + size), nil
}

// encodeStrings writes a u16 count followed by that many strings.
func encodeStrings(buf []byte, ss []string) int {
	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(ss)))
	n := 2
	for _, s := range ss {
		n += encodeString(buf[n:], s)
	}
	return n
}

func decodeStrings(buf []byte) ([]string, int, error) {
	if len(buf) < 2 {
		return nil, 0, errShortMessage
	}
	count := binary.LittleEndian.Uint16(buf[0:2])
	n := 2
	ss := make([]string, count)
	for i := range ss {
		s, sn, err := decodeStringAt(buf[n:])
		if err != nil {
			return nil, 0, err
		}
		ss[i] = s
		n += sn
	}
	return ss, n, nil
}

func encodeQids(buf []byte, qids []Qid) int {
	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(qids)))
	n := 2
	for _, q := range qids {
		n += q.Encode(buf[n:])
	}
	return n
}

func decodeQids(buf []byte) ([]Qid, int, error) {
	if len(buf) < 2 {
		return nil, 0, errShortMessage
	}
	count := binary.LittleEndian.Uint16(buf[0:2])
	n := 2
	qids := make([]Qid, count)
	for i := range qids {
		q, qn, err := decodeQid(buf[n:])
		if err != nil {
			return nil, 0, err
		}
		qids[i] = q
		n += qn
	}
	return qids, n, nil
}
