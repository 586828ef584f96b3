package capture

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/inktrail/constants"
	"github.com/lixenwraith/inktrail/hand"
	"github.com/lixenwraith/inktrail/network"
)

// ErrCaptureFailed is returned when the sidecar could not open the camera
var ErrCaptureFailed = errors.New("camera unavailable")

// ErrDisconnected is returned when the link drops before the camera opens
var ErrDisconnected = errors.New("recognizer disconnected")

// Request is the camera and recognizer configuration sent on open
type Request = network.CaptureRequest

// DefaultRequest returns the 1080p single-hand request with fixed confidences
func DefaultRequest() Request {
	return Request{
		SessionID:              uuid.New(),
		Width:                  constants.SurfaceWidth,
		Height:                 constants.SurfaceHeight,
		MaxHands:               1,
		ModelComplexity:        1,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
	}
}

// Session is an open camera stream on the recognizer sidecar
type Session struct {
	transport *network.Transport
	request   Request
	threshold float64
	box       *mailbox
	log       *zap.Logger

	// ready receives the outcome of the open handshake exactly once
	ready     chan error
	readyOnce sync.Once
}

// Option adjusts a session before it opens
type Option func(*Session)

// WithPinchThreshold sets the distance below which a frame counts as a pinch
// when deciding which queued frames may be coalesced
func WithPinchThreshold(threshold float64) Option {
	return func(s *Session) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// Open dials the sidecar and requests the camera
// Any failure is final: the caller logs it and the feature does not start
func Open(ctx context.Context, cfg *network.Config, req Request, log *zap.Logger, opts ...Option) (*Session, error) {
	s := newSession(cfg, req, log, opts)
	if err := s.handshake(ctx, s.transport.Start); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenConn runs the same handshake over an already established connection
func OpenConn(ctx context.Context, conn net.Conn, cfg *network.Config, req Request, log *zap.Logger, opts ...Option) (*Session, error) {
	s := newSession(cfg, req, log, opts)
	err := s.handshake(ctx, func() error {
		_, err := s.transport.Attach(conn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newSession(cfg *network.Config, req Request, log *zap.Logger, opts []Option) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	// The viewer is always the dialing side
	c := *cfg
	c.Role = network.RoleClient

	s := &Session{
		request:   req,
		threshold: constants.PinchThreshold,
		box:       newMailbox(),
		log:       log.Named("capture").With(zap.String("session", req.SessionID.String())),
		ready:     make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.transport = network.NewTransport(&c, log)
	s.transport.SetHandlers(nil, s.onDisconnect, s.onMessage)
	return s
}

func (s *Session) handshake(ctx context.Context, connect func() error) error {
	if err := connect(); err != nil {
		s.box.close()
		return errors.Wrap(err, "connect to recognizer")
	}

	up, ok := s.transport.Upstream()
	if !ok {
		s.fail()
		return errors.New("recognizer transport has no upstream peer")
	}

	payload, err := s.request.MarshalBinary()
	if err != nil {
		s.fail()
		return errors.Wrap(err, "encode capture request")
	}
	if !s.transport.Send(up, network.NewMessage(network.MsgCaptureRequest, payload)) {
		s.fail()
		return errors.Wrap(ErrDisconnected, "send capture request")
	}

	s.log.Info("capture requested",
		zap.Uint16("width", s.request.Width),
		zap.Uint16("height", s.request.Height),
		zap.Uint8("max_hands", s.request.MaxHands),
	)

	select {
	case err := <-s.ready:
		if err != nil {
			s.fail()
			return err
		}
	case <-ctx.Done():
		s.fail()
		return errors.Wrap(ctx.Err(), "waiting for camera")
	}

	s.log.Info("capture ready")
	return nil
}

func (s *Session) fail() {
	s.transport.Stop()
	s.box.close()
}

func (s *Session) resolve(err error) {
	s.readyOnce.Do(func() { s.ready <- err })
}

func (s *Session) onMessage(_ network.PeerID, msg *network.Message) {
	switch msg.Type {
	case network.MsgCaptureReady:
		s.resolve(nil)

	case network.MsgCaptureFailed:
		s.resolve(errors.Wrap(ErrCaptureFailed, string(msg.Payload)))

	case network.MsgLandmarks:
		f, err := network.DecodeLandmarks(msg.Seq, msg.Payload, int(s.request.MaxHands))
		if err != nil {
			s.log.Warn("bad landmark payload", zap.Uint32("seq", msg.Seq), zap.Error(err))
			return
		}
		if f.Captured.IsZero() {
			f.Captured = time.Now()
		}
		s.box.publish(f, classify(f, s.threshold))

	default:
		s.log.Debug("ignored message", zap.Stringer("type", msg.Type))
	}
}

func (s *Session) onDisconnect(network.PeerID) {
	s.resolve(ErrDisconnected)
	s.box.close()
	s.log.Info("recognizer link closed")
}

// Frames delivers decoded recognizer frames, latest wins
func (s *Session) Frames() <-chan hand.Frame {
	return s.box.ch
}

// Stats returns delivery counters
func (s *Session) Stats() Stats {
	return s.box.stats()
}

// Request returns the request the session was opened with
func (s *Session) Request() Request {
	return s.request
}

// Close tears down the link
func (s *Session) Close() error {
	err := s.transport.Stop()
	s.box.close()
	return err
}
