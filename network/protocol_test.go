package network

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/inktrail/hand"
)

func TestMessageEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	in := &Message{Type: MsgLandmarks, Seq: 7, Ack: 3, Payload: []byte{1, 2, 3}}
	if err := in.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() != HeaderSize+3 {
		t.Errorf("encoded size = %d, want %d", buf.Len(), HeaderSize+3)
	}

	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Type != in.Type || out.Seq != in.Seq || out.Ack != in.Ack || !bytes.Equal(out.Payload, in.Payload) {
		t.Errorf("Decode = %+v, want %+v", out, in)
	}
}

func TestMessageRejectsOversizedPayload(t *testing.T) {
	m := NewMessage(MsgLandmarks, make([]byte, MaxPayloadSize+1))
	err := m.Encode(&bytes.Buffer{})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("Encode error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestDecodeTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	_ = NewMessage(MsgCaptureFailed, []byte("no camera")).Encode(&buf)
	raw := buf.Bytes()[:buf.Len()-2]

	if _, err := Decode(bytes.NewReader(raw)); err == nil {
		t.Error("Expected error for truncated message")
	}
}

func TestCaptureRequestRoundTrip(t *testing.T) {
	in := CaptureRequest{
		SessionID:              uuid.New(),
		Width:                  1920,
		Height:                 1080,
		MaxHands:               1,
		ModelComplexity:        1,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
	}
	b, err := in.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	var out CaptureRequest
	if err := out.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}

	if err := out.UnmarshalBinary(b[:10]); !errors.Is(err, ErrShortPayload) {
		t.Errorf("short request error = %v, want ErrShortPayload", err)
	}
}

func TestLandmarksRoundTrip(t *testing.T) {
	captured := time.Unix(1700000000, 250)
	h := hand.Synthesize(hand.Landmark{X: 0.25, Y: 0.75, Z: -0.125}, true)
	in := hand.Frame{Captured: captured, Hands: []hand.Hand{h}}

	b, err := EncodeLandmarks(in)
	if err != nil {
		t.Fatalf("EncodeLandmarks: %v", err)
	}

	out, err := DecodeLandmarks(42, b, 1)
	if err != nil {
		t.Fatalf("DecodeLandmarks: %v", err)
	}
	if out.Seq != 42 {
		t.Errorf("Seq = %d, want 42", out.Seq)
	}
	if !out.Captured.Equal(captured) {
		t.Errorf("Captured = %v, want %v", out.Captured, captured)
	}
	if len(out.Hands) != 1 || out.Hands[0] != h {
		t.Errorf("Hands = %+v, want [%+v]", out.Hands, h)
	}
}

func TestLandmarksEmptyFrame(t *testing.T) {
	b, err := EncodeLandmarks(hand.Frame{})
	if err != nil {
		t.Fatalf("EncodeLandmarks: %v", err)
	}
	out, err := DecodeLandmarks(1, b, 1)
	if err != nil {
		t.Fatalf("DecodeLandmarks: %v", err)
	}
	if len(out.Hands) != 0 || !out.Captured.IsZero() {
		t.Errorf("empty frame decoded as %+v", out)
	}
}

func TestLandmarksExtraHandsDropped(t *testing.T) {
	first := hand.Synthesize(hand.Landmark{X: 0.5, Y: 0.5}, true)
	second := hand.Synthesize(hand.Landmark{X: 0.25, Y: 0.25}, false)
	b, _ := EncodeLandmarks(hand.Frame{Hands: []hand.Hand{first, second}})

	out, err := DecodeLandmarks(1, b, 1)
	if err != nil {
		t.Fatalf("DecodeLandmarks: %v", err)
	}
	if len(out.Hands) != 1 || out.Hands[0] != first {
		t.Errorf("expected only the first hand, got %d hands", len(out.Hands))
	}

	all, _ := DecodeLandmarks(1, b, 0)
	if len(all.Hands) != 2 {
		t.Errorf("maxHands=0 kept %d hands, want 2", len(all.Hands))
	}
}

func TestLandmarksTruncated(t *testing.T) {
	b, _ := EncodeLandmarks(hand.Frame{Hands: []hand.Hand{{}}})

	for _, n := range []int{0, 5, len(b) - 1} {
		if _, err := DecodeLandmarks(1, b[:n], 1); !errors.Is(err, ErrShortPayload) {
			t.Errorf("len %d: error = %v, want ErrShortPayload", n, err)
		}
	}
}
