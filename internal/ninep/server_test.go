package ninep

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// decodeRversionForTest and decodeRattachForTest mimic a client-side
// decoder; the production decoder only needs the T-message half
// (message.go's decodeBody), so the client direction is hand-rolled
// here rather than duplicating it in the package proper.
func decodeRversionForTest(buf []byte) (msize uint32, version string, err error) {
	msize = binary.LittleEndian.Uint32(buf[0:4])
	n := int(binary.LittleEndian.Uint16(buf[4:6]))
	return msize, string(buf[6 : 6+n]), nil
}

func decodeRattachForTest(buf []byte) (Qid, error) {
	q, _, err := decodeQid(buf)
	return q, err
}

func TestServerHandleConnVersionAndAttach(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	srv := &Server[string]{Backend: fakeBackend{}, Logger: logger, Msize: MaxMessageSize}

	done := make(chan struct{})
	go func() {
		srv.handleConn(context.Background(), serverConn)
		close(done)
	}()

	clientDec := NewDecoder(clientConn, MaxMessageSize)
	clientEnc := NewEncoder(clientConn, MaxMessageSize)

	tv := &TversionMsg{Msize: MaxMessageSize, Version: Version}
	buf := make([]byte, MaxMessageSize)
	n := tv.Encode(buf)
	if err := clientEnc.WriteMessage(Tversion, NoTag, buf[:n]); err != nil {
		t.Fatalf("write Tversion: %v", err)
	}

	mt, tag, payload, err := clientDec.ReadMessage()
	if err != nil {
		t.Fatalf("read Rversion: %v", err)
	}
	if mt != Rversion || tag != NoTag {
		t.Fatalf("unexpected reply: type=%d tag=%d", mt, tag)
	}
	_, version, err := decodeRversionForTest(payload)
	if err != nil {
		t.Fatalf("decode Rversion: %v", err)
	}
	if version != Version {
		t.Fatalf("expected negotiated version %q, got %q", Version, version)
	}

	ta := &TattachMsg{Fid: 1, Afid: NoFid, Uname: "glenda"}
	n = ta.Encode(buf)
	if err := clientEnc.WriteMessage(Tattach, 1, buf[:n]); err != nil {
		t.Fatalf("write Tattach: %v", err)
	}
	mt, _, payload, err = clientDec.ReadMessage()
	if err != nil {
		t.Fatalf("read Rattach: %v", err)
	}
	if mt != Rattach {
		t.Fatalf("expected Rattach, got type %d", mt)
	}
	if _, err := decodeRattachForTest(payload); err != nil {
		t.Fatalf("decode Rattach: %v", err)
	}

	clientConn.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handleConn did not return after client closed")
	}
}
