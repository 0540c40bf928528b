package ninep

import "encoding/binary"

// QidType bits, encoded in Qid.Type.
const (
	QTDIR     uint8 = 0x80
	QTAPPEND  uint8 = 0x40
	QTEXCL    uint8 = 0x20
	QTMOUNT   uint8 = 0x10
	QTAUTH    uint8 = 0x08
	QTTMP     uint8 = 0x04
	QTSYMLINK uint8 = 0x02
	QTLINK    uint8 = 0x01
	QTFILE    uint8 = 0x00
)

// Qid is the server-unique file identity carried in most replies.
// Two files in the same hierarchy must never share a (Version, Path)
// pair at the same time.
type Qid struct {
	Type    uint8
	Version uint32
	Path    uint64
}

const qidSize = 13

func (q Qid) Encode(buf []byte) int {
	buf[0] = q.Type
	binary.LittleEndian.PutUint32(buf[1:5], q.Version)
	binary.LittleEndian.PutUint64(buf[5:13], q.Path)
	return qidSize
}

func decodeQid(buf []byte) (Qid, int, error) {
	if len(buf) < qidSize {
		return Qid{}, 0, errShortMessage
	}
	return Qid{
		Type:    buf[0],
		Version: binary.LittleEndian.Uint32(buf[1:5]),
		Path:    binary.LittleEndian.Uint64(buf[5:13]),
	}, qidSize, nil
}
