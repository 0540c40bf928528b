package ninep

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, MaxMessageSize)
	body := []byte{1, 2, 3, 4, 5}
	if err := enc.WriteMessage(Tversion, 0xFFFF, body); err != nil {
		t.Fatalf("write: %v", err)
	}

	dec := NewDecoder(&buf, MaxMessageSize)
	msgType, tag, payload, err := dec.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if msgType != Tversion || tag != 0xFFFF || !bytes.Equal(payload, body) {
		t.Fatalf("mismatch: type=%d tag=%d payload=%v", msgType, tag, payload)
	}
}

func TestDecoderRejectsLegacyType(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, MaxMessageSize)
	if err := enc.WriteMessage(Topen, 1, []byte{0, 0}); err != nil {
		t.Fatalf("write: %v", err)
	}
	dec := NewDecoder(&buf, MaxMessageSize)
	if _, _, _, err := dec.ReadMessage(); err == nil {
		t.Fatal("expected a protocol error for a legacy message type")
	}
}

func TestDecoderRejectsOversizeFrame(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, 4096)
	if err := enc.WriteMessage(Tversion, 0, make([]byte, 4096)); err != nil {
		t.Fatalf("write: %v", err)
	}
	dec := NewDecoder(&buf, 64)
	if _, _, _, err := dec.ReadMessage(); err == nil {
		t.Fatal("expected a protocol error for an oversize frame")
	}
}

func TestDecoderSetMsizeGrowsBuffer(t *testing.T) {
	dec := NewDecoder(bytes.NewReader(nil), 64)
	dec.SetMsize(MaxMessageSize)
	if len(dec.buf) < MaxMessageSize {
		t.Fatalf("expected buffer to grow to at least %d, got %d", MaxMessageSize, len(dec.buf))
	}
}
