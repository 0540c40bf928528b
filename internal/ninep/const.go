// Package ninep implements the 9P2000.L wire protocol: message codec,
// length-delimited framing, per-connection fid table, and a concurrent
// dispatcher over a pluggable filesystem backend.
package ninep

// Protocol constants.
const (
	// Version is the only version string this server negotiates to.
	Version = "9P2000.L"

	// Unknown is returned by Rversion when the client did not offer Version.
	Unknown = "unknown"

	// MaxMessageSize is the default negotiated msize ceiling.
	MaxMessageSize = 64 * 1024

	// NoTag is used only for Tversion/Rversion.
	NoTag uint16 = 0xFFFF

	// NoFid represents "no fid" (e.g. Tattach.afid with no auth).
	NoFid uint32 = 0xFFFFFFFF

	// NoNuname means no numeric uid was supplied on attach.
	NoNuname uint32 = 0xFFFFFFFF

	// DefaultPort is the conventional 9P listen port.
	DefaultPort = 564

	// IOHdrSize is the per-message header overhead budgeted out of msize
	// when sizing Tread/Twrite payloads.
	IOHdrSize = 24

	// ReadDirHdrSize is the header overhead budgeted out of msize for
	// Treaddir.
	ReadDirHdrSize = 24
)

// Message type bytes. T-messages are requests, R-messages are replies.
// Types are fixed by the Linux v9fs 9P2000.L wire protocol; legacy
// 9P2000 types (Topen/Tcreate/Tstat/Twstat and Tlerror) are reserved
// below and MUST be rejected by the frame decoder.
const (
	Tlerror uint8 = 6 // never valid on the wire; 9P2000.L uses Rlerror only
	Rlerror uint8 = 7

	Tstatfs uint8 = 8
	Rstatfs uint8 = 9

	Tlopen uint8 = 12
	Rlopen uint8 = 13

	Tlcreate uint8 = 14
	Rlcreate uint8 = 15

	Tsymlink uint8 = 16
	Rsymlink uint8 = 17

	Tmknod uint8 = 18
	Rmknod uint8 = 19

	Trename uint8 = 20
	Rrename uint8 = 21

	Treadlink uint8 = 22
	Rreadlink uint8 = 23

	Tgetattr uint8 = 24
	Rgetattr uint8 = 25

	Tsetattr uint8 = 26
	Rsetattr uint8 = 27

	TxattrWalk uint8 = 30
	RxattrWalk uint8 = 31

	TxattrCreate uint8 = 32
	RxattrCreate uint8 = 33

	Treaddir uint8 = 40
	Rreaddir uint8 = 41

	Tfsync uint8 = 50
	Rfsync uint8 = 51

	Tlock uint8 = 52
	Rlock uint8 = 53

	Tgetlock uint8 = 54
	Rgetlock uint8 = 55

	Tlink uint8 = 70
	Rlink uint8 = 71

	Tmkdir uint8 = 72
	Rmkdir uint8 = 73

	TrenameAt uint8 = 74
	RrenameAt uint8 = 75

	TunlinkAt uint8 = 76
	RunlinkAt uint8 = 77

	Tversion uint8 = 100
	Rversion uint8 = 101

	Tauth uint8 = 102
	Rauth uint8 = 103

	Tattach uint8 = 104
	Rattach uint8 = 105

	Tflush uint8 = 108
	Rflush uint8 = 109

	Twalk uint8 = 110
	Rwalk uint8 = 111

	// Legacy 9P2000 types. Reserved so a stray client negotiating the
	// old dialect fails fast with a protocol error rather than silent
	// misbehavior.
	Topen  uint8 = 112
	Ropen  uint8 = 113
	Tcreate uint8 = 114
	Rcreate uint8 = 115

	Tread uint8 = 116
	Rread uint8 = 117

	Twrite uint8 = 118
	Rwrite uint8 = 119

	Tclunk uint8 = 120
	Rclunk uint8 = 121

	Tremove uint8 = 122
	Rremove uint8 = 123

	Tstat  uint8 = 124
	Rstat  uint8 = 125
	Twstat uint8 = 126
	Rwstat uint8 = 127
)

// legacyTypes are 9P2000 message bytes that 9P2000.L no longer uses.
// The frame decoder rejects all of them as protocol errors.
var legacyTypes = map[uint8]bool{
	Tlerror: true,
	Topen:   true, Ropen: true,
	Tcreate: true, Rcreate: true,
	Tstat: true, Rstat: true,
	Twstat: true, Rwstat: true,
}

// MessageName returns a human-readable name for a message type byte,
// for logging.
func MessageName(t uint8) string {
	if name, ok := messageNames[t]; ok {
		return name
	}
	return "unknown"
}

var messageNames = map[uint8]string{
	Rlerror: "Rlerror",
	Tstatfs: "Tstatfs", Rstatfs: "Rstatfs",
	Tlopen: "Tlopen", Rlopen: "Rlopen",
	Tlcreate: "Tlcreate", Rlcreate: "Rlcreate",
	Tsymlink: "Tsymlink", Rsymlink: "Rsymlink",
	Tmknod: "Tmknod", Rmknod: "Rmknod",
	Trename: "Trename", Rrename: "Rrename",
	Treadlink: "Treadlink", Rreadlink: "Rreadlink",
	Tgetattr: "Tgetattr", Rgetattr: "Rgetattr",
	Tsetattr: "Tsetattr", Rsetattr: "Rsetattr",
	TxattrWalk: "TxattrWalk", RxattrWalk: "RxattrWalk",
	TxattrCreate: "TxattrCreate", RxattrCreate: "RxattrCreate",
	Treaddir: "Treaddir", Rreaddir: "Rreaddir",
	Tfsync: "Tfsync", Rfsync: "Rfsync",
	Tlock: "Tlock", Rlock: "Rlock",
	Tgetlock: "Tgetlock", Rgetlock: "Rgetlock",
	Tlink: "Tlink", Rlink: "Rlink",
	Tmkdir: "Tmkdir", Rmkdir: "Rmkdir",
	TrenameAt: "TrenameAt", RrenameAt: "RrenameAt",
	TunlinkAt: "TunlinkAt", RunlinkAt: "RunlinkAt",
	Tversion: "Tversion", Rversion: "Rversion",
	Tauth: "Tauth", Rauth: "Rauth",
	Tattach: "Tattach", Rattach: "Rattach",
	Tflush: "Tflush", Rflush: "Rflush",
	Twalk: "Twalk", Rwalk: "Rwalk",
	Tread: "Tread", Rread: "Rread",
	Twrite: "Twrite", Rwrite: "Rwrite",
	Tclunk: "Tclunk", Rclunk: "Rclunk",
	Tremove: "Tremove", Rremove: "Rremove",
}
