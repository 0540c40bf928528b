package ninep

import (
	"encoding/binary"
	"fmt"
)

// Message is implemented by every T- and R-message.
type Message interface {
	Type() uint8
	Encode(buf []byte) int
}

// --- Rlerror ---

type RlerrorMsg struct {
	Ecode uint32
}

func (m *RlerrorMsg) Type() uint8 { return Rlerror }

func (m *RlerrorMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Ecode)
	return 4
}

// --- Tversion / Rversion ---

type TversionMsg struct {
	Msize   uint32
	Version string
}

func (m *TversionMsg) Type() uint8 { return Tversion }

func (m *TversionMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Msize)
	return 4 + encodeString(buf[4:], m.Version)
}

func decodeTversion(buf []byte) (*TversionMsg, error) {
	if len(buf) < 6 {
		return nil, errShortMessage
	}
	m := &TversionMsg{Msize: binary.LittleEndian.Uint32(buf[0:4])}
	v, _, err := decodeStringAt(buf[4:])
	if err != nil {
		return nil, err
	}
	m.Version = v
	return m, nil
}

type RversionMsg struct {
	Msize   uint32
	Version string
}

func (m *RversionMsg) Type() uint8 { return Rversion }

func (m *RversionMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Msize)
	return 4 + encodeString(buf[4:], m.Version)
}

// --- Tauth / Rauth ---

type TauthMsg struct {
	Afid    uint32
	Uname   string
	Aname   string
	NUname  uint32
}

func (m *TauthMsg) Type() uint8 { return Tauth }

func (m *TauthMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Afid)
	n := 4
	n += encodeString(buf[n:], m.Uname)
	n += encodeString(buf[n:], m.Aname)
	binary.LittleEndian.PutUint32(buf[n:n+4], m.NUname)
	n += 4
	return n
}

func decodeTauth(buf []byte) (*TauthMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	m := &TauthMsg{Afid: binary.LittleEndian.Uint32(buf[0:4])}
	n := 4
	uname, sn, err := decodeStringAt(buf[n:])
	if err != nil {
		return nil, err
	}
	m.Uname = uname
	n += sn
	aname, sn, err := decodeStringAt(buf[n:])
	if err != nil {
		return nil, err
	}
	m.Aname = aname
	n += sn
	if len(buf) < n+4 {
		return nil, errShortMessage
	}
	m.NUname = binary.LittleEndian.Uint32(buf[n : n+4])
	return m, nil
}

type RauthMsg struct {
	Aqid Qid
}

func (m *RauthMsg) Type() uint8 { return Rauth }

func (m *RauthMsg) Encode(buf []byte) int { return m.Aqid.Encode(buf) }

// --- Tattach / Rattach ---

type TattachMsg struct {
	Fid    uint32
	Afid   uint32
	Uname  string
	Aname  string
	NUname uint32
}

func (m *TattachMsg) Type() uint8 { return Tattach }

func (m *TattachMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	binary.LittleEndian.PutUint32(buf[4:8], m.Afid)
	n := 8
	n += encodeString(buf[n:], m.Uname)
	n += encodeString(buf[n:], m.Aname)
	binary.LittleEndian.PutUint32(buf[n:n+4], m.NUname)
	n += 4
	return n
}

func decodeTattach(buf []byte) (*TattachMsg, error) {
	if len(buf) < 8 {
		return nil, errShortMessage
	}
	m := &TattachMsg{
		Fid:  binary.LittleEndian.Uint32(buf[0:4]),
		Afid: binary.LittleEndian.Uint32(buf[4:8]),
	}
	n := 8
	uname, sn, err := decodeStringAt(buf[n:])
	if err != nil {
		return nil, err
	}
	m.Uname = uname
	n += sn
	aname, sn, err := decodeStringAt(buf[n:])
	if err != nil {
		return nil, err
	}
	m.Aname = aname
	n += sn
	if len(buf) < n+4 {
		return nil, errShortMessage
	}
	m.NUname = binary.LittleEndian.Uint32(buf[n : n+4])
	return m, nil
}

type RattachMsg struct {
	Qid Qid
}

func (m *RattachMsg) Type() uint8 { return Rattach }

func (m *RattachMsg) Encode(buf []byte) int { return m.Qid.Encode(buf) }

// --- Tflush / Rflush ---

type TflushMsg struct {
	Oldtag uint16
}

func (m *TflushMsg) Type() uint8 { return Tflush }

func (m *TflushMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint16(buf[0:2], m.Oldtag)
	return 2
}

func decodeTflush(buf []byte) (*TflushMsg, error) {
	if len(buf) < 2 {
		return nil, errShortMessage
	}
	return &TflushMsg{Oldtag: binary.LittleEndian.Uint16(buf[0:2])}, nil
}

type RflushMsg struct{}

func (m *RflushMsg) Type() uint8        { return Rflush }
func (m *RflushMsg) Encode(buf []byte) int { return 0 }

// --- Twalk / Rwalk ---

type TwalkMsg struct {
	Fid    uint32
	Newfid uint32
	Wnames []string
}

func (m *TwalkMsg) Type() uint8 { return Twalk }

func (m *TwalkMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	binary.LittleEndian.PutUint32(buf[4:8], m.Newfid)
	return 8 + encodeStrings(buf[8:], m.Wnames)
}

func decodeTwalk(buf []byte) (*TwalkMsg, error) {
	if len(buf) < 8 {
		return nil, errShortMessage
	}
	m := &TwalkMsg{
		Fid:    binary.LittleEndian.Uint32(buf[0:4]),
		Newfid: binary.LittleEndian.Uint32(buf[4:8]),
	}
	names, _, err := decodeStrings(buf[8:])
	if err != nil {
		return nil, err
	}
	m.Wnames = names
	return m, nil
}

type RwalkMsg struct {
	Wqids []Qid
}

func (m *RwalkMsg) Type() uint8          { return Rwalk }
func (m *RwalkMsg) Encode(buf []byte) int { return encodeQids(buf, m.Wqids) }

// --- Tstatfs / Rstatfs ---

type TstatfsMsg struct {
	Fid uint32
}

func (m *TstatfsMsg) Type() uint8 { return Tstatfs }

func (m *TstatfsMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	return 4
}

func decodeTstatfs(buf []byte) (*TstatfsMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	return &TstatfsMsg{Fid: binary.LittleEndian.Uint32(buf[0:4])}, nil
}

type RstatfsMsg struct {
	StatFs StatFs
}

func (m *RstatfsMsg) Type() uint8          { return Rstatfs }
func (m *RstatfsMsg) Encode(buf []byte) int { return m.StatFs.Encode(buf) }

// --- Tlopen / Rlopen ---

type TlopenMsg struct {
	Fid   uint32
	Flags uint32
}

func (m *TlopenMsg) Type() uint8 { return Tlopen }

func (m *TlopenMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	binary.LittleEndian.PutUint32(buf[4:8], m.Flags)
	return 8
}

func decodeTlopen(buf []byte) (*TlopenMsg, error) {
	if len(buf) < 8 {
		return nil, errShortMessage
	}
	return &TlopenMsg{
		Fid:   binary.LittleEndian.Uint32(buf[0:4]),
		Flags: binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

type RlopenMsg struct {
	Qid    Qid
	Iounit uint32
}

func (m *RlopenMsg) Type() uint8 { return Rlopen }

func (m *RlopenMsg) Encode(buf []byte) int {
	n := m.Qid.Encode(buf)
	binary.LittleEndian.PutUint32(buf[n:n+4], m.Iounit)
	return n + 4
}

// --- Tlcreate / Rlcreate ---

type TlcreateMsg struct {
	Fid   uint32
	Name  string
	Flags uint32
	Mode  uint32
	GID   uint32
}

func (m *TlcreateMsg) Type() uint8 { return Tlcreate }

func (m *TlcreateMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	n := 4 + encodeString(buf[4:], m.Name)
	binary.LittleEndian.PutUint32(buf[n:n+4], m.Flags)
	n += 4
	binary.LittleEndian.PutUint32(buf[n:n+4], m.Mode)
	n += 4
	binary.LittleEndian.PutUint32(buf[n:n+4], m.GID)
	n += 4
	return n
}

func decodeTlcreate(buf []byte) (*TlcreateMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	m := &TlcreateMsg{Fid: binary.LittleEndian.Uint32(buf[0:4])}
	name, n, err := decodeStringAt(buf[4:])
	if err != nil {
		return nil, err
	}
	m.Name = name
	n += 4
	if len(buf) < n+12 {
		return nil, errShortMessage
	}
	m.Flags = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	m.Mode = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	m.GID = binary.LittleEndian.Uint32(buf[n : n+4])
	return m, nil
}

type RlcreateMsg struct {
	Qid    Qid
	Iounit uint32
}

func (m *RlcreateMsg) Type() uint8 { return Rlcreate }

func (m *RlcreateMsg) Encode(buf []byte) int {
	n := m.Qid.Encode(buf)
	binary.LittleEndian.PutUint32(buf[n:n+4], m.Iounit)
	return n + 4
}

// --- Tsymlink / Rsymlink ---

type TsymlinkMsg struct {
	Fid    uint32
	Name   string
	Target string
	GID    uint32
}

func (m *TsymlinkMsg) Type() uint8 { return Tsymlink }

func (m *TsymlinkMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	n := 4 + encodeString(buf[4:], m.Name)
	n += encodeString(buf[n:], m.Target)
	binary.LittleEndian.PutUint32(buf[n:n+4], m.GID)
	return n + 4
}

func decodeTsymlink(buf []byte) (*TsymlinkMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	m := &TsymlinkMsg{Fid: binary.LittleEndian.Uint32(buf[0:4])}
	n := 4
	name, sn, err := decodeStringAt(buf[n:])
	if err != nil {
		return nil, err
	}
	m.Name = name
	n += sn
	target, sn, err := decodeStringAt(buf[n:])
	if err != nil {
		return nil, err
	}
	m.Target = target
	n += sn
	if len(buf) < n+4 {
		return nil, errShortMessage
	}
	m.GID = binary.LittleEndian.Uint32(buf[n : n+4])
	return m, nil
}

type RsymlinkMsg struct {
	Qid Qid
}

func (m *RsymlinkMsg) Type() uint8          { return Rsymlink }
func (m *RsymlinkMsg) Encode(buf []byte) int { return m.Qid.Encode(buf) }

// --- Tmknod / Rmknod ---

type TmknodMsg struct {
	Dfid  uint32
	Name  string
	Mode  uint32
	Major uint32
	Minor uint32
	GID   uint32
}

func (m *TmknodMsg) Type() uint8 { return Tmknod }

func (m *TmknodMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Dfid)
	n := 4 + encodeString(buf[4:], m.Name)
	binary.LittleEndian.PutUint32(buf[n:n+4], m.Mode)
	n += 4
	binary.LittleEndian.PutUint32(buf[n:n+4], m.Major)
	n += 4
	binary.LittleEndian.PutUint32(buf[n:n+4], m.Minor)
	n += 4
	binary.LittleEndian.PutUint32(buf[n:n+4], m.GID)
	n += 4
	return n
}

func decodeTmknod(buf []byte) (*TmknodMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	m := &TmknodMsg{Dfid: binary.LittleEndian.Uint32(buf[0:4])}
	name, n, err := decodeStringAt(buf[4:])
	if err != nil {
		return nil, err
	}
	m.Name = name
	n += 4
	if len(buf) < n+16 {
		return nil, errShortMessage
	}
	m.Mode = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	m.Major = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	m.Minor = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	m.GID = binary.LittleEndian.Uint32(buf[n : n+4])
	return m, nil
}

type RmknodMsg struct {
	Qid Qid
}

func (m *RmknodMsg) Type() uint8          { return Rmknod }
func (m *RmknodMsg) Encode(buf []byte) int { return m.Qid.Encode(buf) }

// --- Trename / Rrename ---

type TrenameMsg struct {
	Fid  uint32
	Dfid uint32
	Name string
}

func (m *TrenameMsg) Type() uint8 { return Trename }

func (m *TrenameMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	binary.LittleEndian.PutUint32(buf[4:8], m.Dfid)
	return 8 + encodeString(buf[8:], m.Name)
}

func decodeTrename(buf []byte) (*TrenameMsg, error) {
	if len(buf) < 8 {
		return nil, errShortMessage
	}
	m := &TrenameMsg{
		Fid:  binary.LittleEndian.Uint32(buf[0:4]),
		Dfid: binary.LittleEndian.Uint32(buf[4:8]),
	}
	name, _, err := decodeStringAt(buf[8:])
	if err != nil {
		return nil, err
	}
	m.Name = name
	return m, nil
}

type RrenameMsg struct{}

func (m *RrenameMsg) Type() uint8          { return Rrename }
func (m *RrenameMsg) Encode(buf []byte) int { return 0 }

// --- Treadlink / Rreadlink ---

type TreadlinkMsg struct {
	Fid uint32
}

func (m *TreadlinkMsg) Type() uint8 { return Treadlink }

func (m *TreadlinkMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	return 4
}

func decodeTreadlink(buf []byte) (*TreadlinkMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	return &TreadlinkMsg{Fid: binary.LittleEndian.Uint32(buf[0:4])}, nil
}

type RreadlinkMsg struct {
	Target string
}

func (m *RreadlinkMsg) Type() uint8          { return Rreadlink }
func (m *RreadlinkMsg) Encode(buf []byte) int { return encodeString(buf, m.Target) }

// --- Tgetattr / Rgetattr ---

type TgetattrMsg struct {
	Fid     uint32
	ReqMask uint64
}

func (m *TgetattrMsg) Type() uint8 { return Tgetattr }

func (m *TgetattrMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	binary.LittleEndian.PutUint64(buf[4:12], m.ReqMask)
	return 12
}

func decodeTgetattr(buf []byte) (*TgetattrMsg, error) {
	if len(buf) < 12 {
		return nil, errShortMessage
	}
	return &TgetattrMsg{
		Fid:     binary.LittleEndian.Uint32(buf[0:4]),
		ReqMask: binary.LittleEndian.Uint64(buf[4:12]) & GetattrAll,
	}, nil
}

// RgetattrMsg is the reply to Tgetattr. Per spec, the encoder appends
// four reserved u64 zero fields (btime.sec, btime.nsec, gen,
// data_version) after Stat; the decoder consumes and discards them.
type RgetattrMsg struct {
	Valid uint64
	Qid   Qid
	Stat  Stat
}

func (m *RgetattrMsg) Type() uint8 { return Rgetattr }

func (m *RgetattrMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint64(buf[0:8], m.Valid)
	n := 8 + m.Qid.Encode(buf[8:])
	n += m.Stat.Encode(buf[n:])
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(buf[n:n+8], 0)
		n += 8
	}
	return n
}

func decodeRgetattr(buf []byte) (*RgetattrMsg, error) {
	if len(buf) < 8 {
		return nil, errShortMessage
	}
	m := &RgetattrMsg{Valid: binary.LittleEndian.Uint64(buf[0:8])}
	n := 8
	qid, qn, err := decodeQid(buf[n:])
	if err != nil {
		return nil, err
	}
	m.Qid = qid
	n += qn
	stat, sn, err := decodeStat(buf[n:])
	if err != nil {
		return nil, err
	}
	m.Stat = stat
	n += sn
	if len(buf) < n+32 {
		return nil, errShortMessage
	}
	return m, nil
}

// --- Tsetattr / Rsetattr ---

type TsetattrMsg struct {
	Fid     uint32
	SetAttr SetAttr
}

func (m *TsetattrMsg) Type() uint8 { return Tsetattr }

func (m *TsetattrMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	return 4 + m.SetAttr.Encode(buf[4:])
}

func decodeTsetattr(buf []byte) (*TsetattrMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	m := &TsetattrMsg{Fid: binary.LittleEndian.Uint32(buf[0:4])}
	sa, _, err := decodeSetAttr(buf[4:])
	if err != nil {
		return nil, err
	}
	m.SetAttr = sa
	return m, nil
}

type RsetattrMsg struct{}

func (m *RsetattrMsg) Type() uint8          { return Rsetattr }
func (m *RsetattrMsg) Encode(buf []byte) int { return 0 }

// --- TxattrWalk / RxattrWalk ---

type TxattrWalkMsg struct {
	Fid    uint32
	Newfid uint32
	Name   string
}

func (m *TxattrWalkMsg) Type() uint8 { return TxattrWalk }

func (m *TxattrWalkMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	binary.LittleEndian.PutUint32(buf[4:8], m.Newfid)
	return 8 + encodeString(buf[8:], m.Name)
}

func decodeTxattrWalk(buf []byte) (*TxattrWalkMsg, error) {
	if len(buf) < 8 {
		return nil, errShortMessage
	}
	m := &TxattrWalkMsg{
		Fid:    binary.LittleEndian.Uint32(buf[0:4]),
		Newfid: binary.LittleEndian.Uint32(buf[4:8]),
	}
	name, _, err := decodeStringAt(buf[8:])
	if err != nil {
		return nil, err
	}
	m.Name = name
	return m, nil
}

type RxattrWalkMsg struct {
	Size uint64
}

func (m *RxattrWalkMsg) Type() uint8 { return RxattrWalk }

func (m *RxattrWalkMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint64(buf[0:8], m.Size)
	return 8
}

// --- TxattrCreate / RxattrCreate ---

type TxattrCreateMsg struct {
	Fid      uint32
	Name     string
	AttrSize uint64
	Flags    uint32
}

func (m *TxattrCreateMsg) Type() uint8 { return TxattrCreate }

func (m *TxattrCreateMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	n := 4 + encodeString(buf[4:], m.Name)
	binary.LittleEndian.PutUint64(buf[n:n+8], m.AttrSize)
	n += 8
	binary.LittleEndian.PutUint32(buf[n:n+4], m.Flags)
	return n + 4
}

func decodeTxattrCreate(buf []byte) (*TxattrCreateMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	m := &TxattrCreateMsg{Fid: binary.LittleEndian.Uint32(buf[0:4])}
	name, n, err := decodeStringAt(buf[4:])
	if err != nil {
		return nil, err
	}
	m.Name = name
	n += 4
	if len(buf) < n+12 {
		return nil, errShortMessage
	}
	m.AttrSize = binary.LittleEndian.Uint64(buf[n : n+8])
	n += 8
	m.Flags = binary.LittleEndian.Uint32(buf[n : n+4])
	return m, nil
}

type RxattrCreateMsg struct{}

func (m *RxattrCreateMsg) Type() uint8          { return RxattrCreate }
func (m *RxattrCreateMsg) Encode(buf []byte) int { return 0 }

// --- Treaddir / Rreaddir ---

type TreaddirMsg struct {
	Fid    uint32
	Offset uint64
	Count  uint32
}

func (m *TreaddirMsg) Type() uint8 { return Treaddir }

func (m *TreaddirMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	binary.LittleEndian.PutUint64(buf[4:12], m.Offset)
	binary.LittleEndian.PutUint32(buf[12:16], m.Count)
	return 16
}

func decodeTreaddir(buf []byte) (*TreaddirMsg, error) {
	if len(buf) < 16 {
		return nil, errShortMessage
	}
	return &TreaddirMsg{
		Fid:    binary.LittleEndian.Uint32(buf[0:4]),
		Offset: binary.LittleEndian.Uint64(buf[4:12]),
		Count:  binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

type RreaddirMsg struct {
	Entries []DirEntry
}

func (m *RreaddirMsg) Type() uint8 { return Rreaddir }

func (m *RreaddirMsg) Encode(buf []byte) int { return encodeDirEntries(buf, m.Entries) }

// --- Tfsync / Rfsync ---

type TfsyncMsg struct {
	Fid uint32
}

func (m *TfsyncMsg) Type() uint8 { return Tfsync }

func (m *TfsyncMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	return 4
}

func decodeTfsync(buf []byte) (*TfsyncMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	return &TfsyncMsg{Fid: binary.LittleEndian.Uint32(buf[0:4])}, nil
}

type RfsyncMsg struct{}

func (m *RfsyncMsg) Type() uint8          { return Rfsync }
func (m *RfsyncMsg) Encode(buf []byte) int { return 0 }

// --- Tlock / Rlock ---

type TlockMsg struct {
	Fid   uint32
	Flock Flock
}

func (m *TlockMsg) Type() uint8 { return Tlock }

func (m *TlockMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	return 4 + m.Flock.Encode(buf[4:])
}

func decodeTlock(buf []byte) (*TlockMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	m := &TlockMsg{Fid: binary.LittleEndian.Uint32(buf[0:4])}
	fl, _, err := decodeFlock(buf[4:])
	if err != nil {
		return nil, err
	}
	m.Flock = fl
	return m, nil
}

type RlockMsg struct {
	Status uint8
}

func (m *RlockMsg) Type() uint8 { return Rlock }

func (m *RlockMsg) Encode(buf []byte) int {
	buf[0] = m.Status
	return 1
}

// --- Tgetlock / Rgetlock ---

type TgetlockMsg struct {
	Fid     uint32
	Getlock Getlock
}

func (m *TgetlockMsg) Type() uint8 { return Tgetlock }

func (m *TgetlockMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	return 4 + m.Getlock.Encode(buf[4:])
}

func decodeTgetlock(buf []byte) (*TgetlockMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	m := &TgetlockMsg{Fid: binary.LittleEndian.Uint32(buf[0:4])}
	gl, _, err := decodeGetlock(buf[4:])
	if err != nil {
		return nil, err
	}
	m.Getlock = gl
	return m, nil
}

type RgetlockMsg struct {
	Getlock Getlock
}

func (m *RgetlockMsg) Type() uint8          { return Rgetlock }
func (m *RgetlockMsg) Encode(buf []byte) int { return m.Getlock.Encode(buf) }

// --- Tlink / Rlink ---

type TlinkMsg struct {
	Dfid uint32
	Fid  uint32
	Name string
}

func (m *TlinkMsg) Type() uint8 { return Tlink }

func (m *TlinkMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Dfid)
	binary.LittleEndian.PutUint32(buf[4:8], m.Fid)
	return 8 + encodeString(buf[8:], m.Name)
}

func decodeTlink(buf []byte) (*TlinkMsg, error) {
	if len(buf) < 8 {
		return nil, errShortMessage
	}
	m := &TlinkMsg{
		Dfid: binary.LittleEndian.Uint32(buf[0:4]),
		Fid:  binary.LittleEndian.Uint32(buf[4:8]),
	}
	name, _, err := decodeStringAt(buf[8:])
	if err != nil {
		return nil, err
	}
	m.Name = name
	return m, nil
}

type RlinkMsg struct{}

func (m *RlinkMsg) Type() uint8          { return Rlink }
func (m *RlinkMsg) Encode(buf []byte) int { return 0 }

// --- Tmkdir / Rmkdir ---

type TmkdirMsg struct {
	Dfid uint32
	Name string
	Mode uint32
	GID  uint32
}

func (m *TmkdirMsg) Type() uint8 { return Tmkdir }

func (m *TmkdirMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Dfid)
	n := 4 + encodeString(buf[4:], m.Name)
	binary.LittleEndian.PutUint32(buf[n:n+4], m.Mode)
	n += 4
	binary.LittleEndian.PutUint32(buf[n:n+4], m.GID)
	return n + 4
}

func decodeTmkdir(buf []byte) (*TmkdirMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	m := &TmkdirMsg{Dfid: binary.LittleEndian.Uint32(buf[0:4])}
	name, n, err := decodeStringAt(buf[4:])
	if err != nil {
		return nil, err
	}
	m.Name = name
	n += 4
	if len(buf) < n+8 {
		return nil, errShortMessage
	}
	m.Mode = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	m.GID = binary.LittleEndian.Uint32(buf[n : n+4])
	return m, nil
}

type RmkdirMsg struct {
	Qid Qid
}

func (m *RmkdirMsg) Type() uint8          { return Rmkdir }
func (m *RmkdirMsg) Encode(buf []byte) int { return m.Qid.Encode(buf) }

// --- TrenameAt / RrenameAt ---

type TrenameAtMsg struct {
	OldDirFid uint32
	OldName   string
	NewDirFid uint32
	NewName   string
}

func (m *TrenameAtMsg) Type() uint8 { return TrenameAt }

func (m *TrenameAtMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.OldDirFid)
	n := 4 + encodeString(buf[4:], m.OldName)
	binary.LittleEndian.PutUint32(buf[n:n+4], m.NewDirFid)
	n += 4
	n += encodeString(buf[n:], m.NewName)
	return n
}

func decodeTrenameAt(buf []byte) (*TrenameAtMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	m := &TrenameAtMsg{OldDirFid: binary.LittleEndian.Uint32(buf[0:4])}
	name, n, err := decodeStringAt(buf[4:])
	if err != nil {
		return nil, err
	}
	m.OldName = name
	n += 4
	if len(buf) < n+4 {
		return nil, errShortMessage
	}
	m.NewDirFid = binary.LittleEndian.Uint32(buf[n : n+4])
	n += 4
	name2, _, err := decodeStringAt(buf[n:])
	if err != nil {
		return nil, err
	}
	m.NewName = name2
	return m, nil
}

type RrenameAtMsg struct{}

func (m *RrenameAtMsg) Type() uint8          { return RrenameAt }
func (m *RrenameAtMsg) Encode(buf []byte) int { return 0 }

// --- TunlinkAt / RunlinkAt ---

type TunlinkAtMsg struct {
	DirFd uint32
	Name  string
	Flags uint32
}

func (m *TunlinkAtMsg) Type() uint8 { return TunlinkAt }

func (m *TunlinkAtMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.DirFd)
	n := 4 + encodeString(buf[4:], m.Name)
	binary.LittleEndian.PutUint32(buf[n:n+4], m.Flags)
	return n + 4
}

func decodeTunlinkAt(buf []byte) (*TunlinkAtMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	m := &TunlinkAtMsg{DirFd: binary.LittleEndian.Uint32(buf[0:4])}
	name, n, err := decodeStringAt(buf[4:])
	if err != nil {
		return nil, err
	}
	m.Name = name
	n += 4
	if len(buf) < n+4 {
		return nil, errShortMessage
	}
	m.Flags = binary.LittleEndian.Uint32(buf[n : n+4])
	return m, nil
}

type RunlinkAtMsg struct{}

func (m *RunlinkAtMsg) Type() uint8          { return RunlinkAt }
func (m *RunlinkAtMsg) Encode(buf []byte) int { return 0 }

// --- Tread / Rread ---

type TreadMsg struct {
	Fid    uint32
	Offset uint64
	Count  uint32
}

func (m *TreadMsg) Type() uint8 { return Tread }

func (m *TreadMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	binary.LittleEndian.PutUint64(buf[4:12], m.Offset)
	binary.LittleEndian.PutUint32(buf[12:16], m.Count)
	return 16
}

func decodeTread(buf []byte) (*TreadMsg, error) {
	if len(buf) < 16 {
		return nil, errShortMessage
	}
	return &TreadMsg{
		Fid:    binary.LittleEndian.Uint32(buf[0:4]),
		Offset: binary.LittleEndian.Uint64(buf[4:12]),
		Count:  binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

type RreadMsg struct {
	Data []byte
}

func (m *RreadMsg) Type() uint8 { return Rread }

func (m *RreadMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(m.Data)))
	copy(buf[4:], m.Data)
	return 4 + len(m.Data)
}

// --- Twrite / Rwrite ---

type TwriteMsg struct {
	Fid    uint32
	Offset uint64
	Data   []byte
}

func (m *TwriteMsg) Type() uint8 { return Twrite }

func (m *TwriteMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	binary.LittleEndian.PutUint64(buf[4:12], m.Offset)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(m.Data)))
	copy(buf[16:], m.Data)
	return 16 + len(m.Data)
}

func decodeTwrite(buf []byte) (*TwriteMsg, error) {
	if len(buf) < 16 {
		return nil, errShortMessage
	}
	count := binary.LittleEndian.Uint32(buf[12:16])
	if len(buf) < int(16+count) {
		return nil, errShortMessage
	}
	return &TwriteMsg{
		Fid:    binary.LittleEndian.Uint32(buf[0:4]),
		Offset: binary.LittleEndian.Uint64(buf[4:12]),
		Data:   buf[16 : 16+count],
	}, nil
}

type RwriteMsg struct {
	Count uint32
}

func (m *RwriteMsg) Type() uint8 { return Rwrite }

func (m *RwriteMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Count)
	return 4
}

// --- Tclunk / Rclunk ---

type TclunkMsg struct {
	Fid uint32
}

func (m *TclunkMsg) Type() uint8 { return Tclunk }

func (m *TclunkMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	return 4
}

func decodeTclunk(buf []byte) (*TclunkMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	return &TclunkMsg{Fid: binary.LittleEndian.Uint32(buf[0:4])}, nil
}

type RclunkMsg struct{}

func (m *RclunkMsg) Type() uint8          { return Rclunk }
func (m *RclunkMsg) Encode(buf []byte) int { return 0 }

// --- Tremove / Rremove ---

type TremoveMsg struct {
	Fid uint32
}

func (m *TremoveMsg) Type() uint8 { return Tremove }

func (m *TremoveMsg) Encode(buf []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], m.Fid)
	return 4
}

func decodeTremove(buf []byte) (*TremoveMsg, error) {
	if len(buf) < 4 {
		return nil, errShortMessage
	}
	return &TremoveMsg{Fid: binary.LittleEndian.Uint32(buf[0:4])}, nil
}

type RremoveMsg struct{}

func (m *RremoveMsg) Type() uint8          { return Rremove }
func (m *RremoveMsg) Encode(buf []byte) int { return 0 }

// decodeBody decodes a request payload given its type byte. Legacy
// 9P2000 types and Tlerror are rejected before reaching here by the
// frame reader (see frame.go), so an unrecognized type at this point
// is itself a protocol error.
func decodeBody(msgType uint8, payload []byte) (Message, error) {
	switch msgType {
	case Tversion:
		return decodeTversion(payload)
	case Tauth:
		return decodeTauth(payload)
	case Tattach:
		return decodeTattach(payload)
	case Tflush:
		return decodeTflush(payload)
	case Twalk:
		return decodeTwalk(payload)
	case Tstatfs:
		return decodeTstatfs(payload)
	case Tlopen:
		return decodeTlopen(payload)
	case Tlcreate:
		return decodeTlcreate(payload)
	case Tsymlink:
		return decodeTsymlink(payload)
	case Tmknod:
		return decodeTmknod(payload)
	case Trename:
		return decodeTrename(payload)
	case Treadlink:
		return decodeTreadlink(payload)
	case Tgetattr:
		return decodeTgetattr(payload)
	case Tsetattr:
		return decodeTsetattr(payload)
	case TxattrWalk:
		return decodeTxattrWalk(payload)
	case TxattrCreate:
		return decodeTxattrCreate(payload)
	case Treaddir:
		return decodeTreaddir(payload)
	case Tfsync:
		return decodeTfsync(payload)
	case Tlock:
		return decodeTlock(payload)
	case Tgetlock:
		return decodeTgetlock(payload)
	case Tlink:
		return decodeTlink(payload)
	case Tmkdir:
		return decodeTmkdir(payload)
	case TrenameAt:
		return decodeTrenameAt(payload)
	case TunlinkAt:
		return decodeTunlinkAt(payload)
	case Tread:
		return decodeTread(payload)
	case Twrite:
		return decodeTwrite(payload)
	case Tclunk:
		return decodeTclunk(payload)
	case Tremove:
		return decodeTremove(payload)
	default:
		return nil, newProtocolError(fmt.Sprintf("unknown message type %d", msgType))
	}
}
