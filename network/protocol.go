package network

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// MessageType identifies the semantic meaning of a message
type MessageType uint8

const (
	// Control messages
	MsgHeartbeat  MessageType = 0x01
	MsgDisconnect MessageType = 0x03

	// Capture session
	MsgCaptureRequest MessageType = 0x10 // Viewer asks the sidecar to open the camera
	MsgCaptureReady   MessageType = 0x11 // Camera opened, landmarks will follow
	MsgCaptureFailed  MessageType = 0x12 // Camera unavailable, payload is the reason

	// Inference results
	MsgLandmarks MessageType = 0x20
)

// String returns a short name for logs
func (t MessageType) String() string {
	switch t {
	case MsgHeartbeat:
		return "heartbeat"
	case MsgDisconnect:
		return "disconnect"
	case MsgCaptureRequest:
		return "capture_request"
	case MsgCaptureReady:
		return "capture_ready"
	case MsgCaptureFailed:
		return "capture_failed"
	case MsgLandmarks:
		return "landmarks"
	default:
		return "unknown"
	}
}

// HeaderSize is the fixed header preceding every message
// Layout: [Type:1][Flags:1][Seq:4][Ack:4][Len:2]
const HeaderSize = 12

// MaxPayloadSize is bounded by the 16-bit length field
const MaxPayloadSize = 65535

// Header flags
const (
	FlagNone uint8 = 0x00
)

// ErrPayloadTooLarge is returned when a payload does not fit the length field
var ErrPayloadTooLarge = errors.New("payload exceeds maximum size")

// Message represents a framed network message
type Message struct {
	Type    MessageType
	Flags   uint8
	Seq     uint32 // Sender's sequence number
	Ack     uint32 // Last received sequence from peer
	Payload []byte
}

// Encode writes the header and payload to w
func (m *Message) Encode(w io.Writer) error {
	payloadLen := len(m.Payload)
	if payloadLen > MaxPayloadSize {
		return errors.Wrapf(ErrPayloadTooLarge, "%s payload of %d bytes", m.Type, payloadLen)
	}

	var header [HeaderSize]byte
	header[0] = byte(m.Type)
	header[1] = m.Flags
	binary.BigEndian.PutUint32(header[2:6], m.Seq)
	binary.BigEndian.PutUint32(header[6:10], m.Ack)
	binary.BigEndian.PutUint16(header[10:12], uint16(payloadLen))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	if payloadLen > 0 {
		if _, err := w.Write(m.Payload); err != nil {
			return err
		}
	}

	return nil
}

// Decode reads one message from r
func Decode(r io.Reader) (*Message, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	payloadLen := binary.BigEndian.Uint16(header[10:12])

	m := &Message{
		Type:  MessageType(header[0]),
		Flags: header[1],
		Seq:   binary.BigEndian.Uint32(header[2:6]),
		Ack:   binary.BigEndian.Uint32(header[6:10]),
	}

	if payloadLen > 0 {
		m.Payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, m.Payload); err != nil {
			return nil, errors.Wrapf(err, "reading %s payload", m.Type)
		}
	}

	return m, nil
}

// NewMessage creates a message with the given type and payload
func NewMessage(t MessageType, payload []byte) *Message {
	return &Message{
		Type:    t,
		Flags:   FlagNone,
		Payload: payload,
	}
}
