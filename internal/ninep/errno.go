package ninep

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ProtocolError marks a frame-level failure: malformed length, unknown
// type byte, non-UTF-8 string, truncated body. The connection driver
// closes the connection on this class of error rather than replying
// Rlerror.
type ProtocolError struct {
	msg string
}

func (e *ProtocolError) Error() string { return e.msg }

func newProtocolError(msg string) error { return &ProtocolError{msg: msg} }

var (
	errShortMessage = newProtocolError("message too short for its type")
	errBadString    = newProtocolError("non-UTF-8 string in message")
)

// DispatchError carries an errno straight to Rlerror without consulting
// the errno-mapping heuristics below; used for fid-table/dispatch-level
// failures (EBADF, EPROTO, EOPNOTSUPP) where the errno is already known.
type DispatchError struct {
	Errno uint32
}

func (e *DispatchError) Error() string { return unix.Errno(e.Errno).Error() }

// NewError returns an error that maps to the given errno when converted
// to Rlerror, for backend implementations that want to be explicit.
func NewError(errno uint32) error { return &DispatchError{Errno: errno} }

var (
	// ErrBadFid is returned by the dispatcher when a request names a
	// fid absent from the table.
	ErrBadFid = &DispatchError{Errno: uint32(unix.EBADF)}
	// ErrProto is returned when the dispatcher has no case for a
	// decoded request type.
	ErrProto = &DispatchError{Errno: uint32(unix.EPROTO)}
	// ErrNotSupported is the default reply for backend methods the
	// concrete backend does not implement.
	ErrNotSupported = &DispatchError{Errno: uint32(unix.EOPNOTSUPP)}
)

// errnoOf maps an arbitrary error to a numeric errno for Rlerror. It
// uses a DispatchError's errno first, then recognizes unix.Errno and
// syscall.Errno (os and golang.org/x/sys/unix both return these from
// host calls), and defaults to EIO for anything else.
func errnoOf(err error) uint32 {
	if err == nil {
		return 0
	}
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Errno
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		return uint32(errno)
	}
	return uint32(unix.EIO)
}
