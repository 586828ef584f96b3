package network

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lixenwraith/inktrail/constants"
	"github.com/lixenwraith/inktrail/hand"
)

// ErrShortPayload is returned when a payload ends before its declared content
var ErrShortPayload = errors.New("short payload")

// CaptureRequest asks the recognizer sidecar to open the camera
// Width and Height are hints, the sidecar picks the closest mode it can open
type CaptureRequest struct {
	SessionID              uuid.UUID
	Width                  uint16
	Height                 uint16
	MaxHands               uint8
	ModelComplexity        uint8
	MinDetectionConfidence float32
	MinTrackingConfidence  float32
}

// captureRequestSize is [W:2][H:2][Hands:1][Complexity:1][Det:4][Track:4][Session:16]
const captureRequestSize = 30

// MarshalBinary encodes the request payload
func (r CaptureRequest) MarshalBinary() ([]byte, error) {
	b := make([]byte, captureRequestSize)
	binary.BigEndian.PutUint16(b[0:2], r.Width)
	binary.BigEndian.PutUint16(b[2:4], r.Height)
	b[4] = r.MaxHands
	b[5] = r.ModelComplexity
	binary.BigEndian.PutUint32(b[6:10], math.Float32bits(r.MinDetectionConfidence))
	binary.BigEndian.PutUint32(b[10:14], math.Float32bits(r.MinTrackingConfidence))
	copy(b[14:30], r.SessionID[:])
	return b, nil
}

// UnmarshalBinary decodes the request payload
func (r *CaptureRequest) UnmarshalBinary(b []byte) error {
	if len(b) < captureRequestSize {
		return errors.Wrapf(ErrShortPayload, "capture request: %d of %d bytes", len(b), captureRequestSize)
	}
	r.Width = binary.BigEndian.Uint16(b[0:2])
	r.Height = binary.BigEndian.Uint16(b[2:4])
	r.MaxHands = b[4]
	r.ModelComplexity = b[5]
	r.MinDetectionConfidence = math.Float32frombits(binary.BigEndian.Uint32(b[6:10]))
	r.MinTrackingConfidence = math.Float32frombits(binary.BigEndian.Uint32(b[10:14]))
	copy(r.SessionID[:], b[14:30])
	return nil
}

// Landmark payload layout: [Captured:8][Count:1] then Count hands of
// LandmarkCount x [X:4][Y:4][Z:4] float32
const (
	landmarksHeaderSize = 9
	landmarkSize        = 12
	handSize            = constants.LandmarkCount * landmarkSize
)

// MaxHandsPerPayload is the most hands a single message can carry
const MaxHandsPerPayload = (MaxPayloadSize - landmarksHeaderSize) / handSize

// EncodeLandmarks serializes a recognizer frame
func EncodeLandmarks(f hand.Frame) ([]byte, error) {
	if len(f.Hands) > MaxHandsPerPayload {
		return nil, errors.Wrapf(ErrPayloadTooLarge, "%d hands", len(f.Hands))
	}

	b := make([]byte, landmarksHeaderSize+len(f.Hands)*handSize)
	var captured int64
	if !f.Captured.IsZero() {
		captured = f.Captured.UnixNano()
	}
	binary.BigEndian.PutUint64(b[0:8], uint64(captured))
	b[8] = uint8(len(f.Hands))

	off := landmarksHeaderSize
	for i := range f.Hands {
		for _, l := range f.Hands[i] {
			binary.BigEndian.PutUint32(b[off:], math.Float32bits(float32(l.X)))
			binary.BigEndian.PutUint32(b[off+4:], math.Float32bits(float32(l.Y)))
			binary.BigEndian.PutUint32(b[off+8:], math.Float32bits(float32(l.Z)))
			off += landmarkSize
		}
	}
	return b, nil
}

// DecodeLandmarks parses a landmark payload
// Hands beyond maxHands are skipped; maxHands <= 0 keeps every hand
func DecodeLandmarks(seq uint32, b []byte, maxHands int) (hand.Frame, error) {
	if len(b) < landmarksHeaderSize {
		return hand.Frame{}, errors.Wrap(ErrShortPayload, "landmarks header")
	}

	count := int(b[8])
	if need := landmarksHeaderSize + count*handSize; len(b) < need {
		return hand.Frame{}, errors.Wrapf(ErrShortPayload, "landmarks: %d hands need %d bytes, got %d", count, need, len(b))
	}

	f := hand.Frame{Seq: seq}
	if ns := int64(binary.BigEndian.Uint64(b[0:8])); ns != 0 {
		f.Captured = time.Unix(0, ns)
	}

	keep := count
	if maxHands > 0 && keep > maxHands {
		keep = maxHands
	}
	if keep == 0 {
		return f, nil
	}

	f.Hands = make([]hand.Hand, keep)
	off := landmarksHeaderSize
	for i := 0; i < keep; i++ {
		for j := range f.Hands[i] {
			f.Hands[i][j] = hand.Landmark{
				X: float64(math.Float32frombits(binary.BigEndian.Uint32(b[off:]))),
				Y: float64(math.Float32frombits(binary.BigEndian.Uint32(b[off+4:]))),
				Z: float64(math.Float32frombits(binary.BigEndian.Uint32(b[off+8:]))),
			}
			off += landmarkSize
		}
	}
	return f, nil
}
