// hand-sim is a development recognizer sidecar
// It answers capture requests and streams a scripted figure-eight pinch stroke
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/inktrail/hand"
	"github.com/lixenwraith/inktrail/network"
)

var (
	addrFlag   = flag.String("addr", "127.0.0.1:7878", "Listen address")
	fpsFlag    = flag.Int("fps", 30, "Frames per second")
	periodFlag = flag.Duration("period", 6*time.Second, "Duration of one figure-eight loop")
	strokeFlag = flag.Duration("stroke", 4*time.Second, "Pinch held per cycle before a release")
	gapFlag    = flag.Duration("gap", time.Second, "Release duration per cycle")
	failFlag   = flag.Bool("fail", false, "Answer every capture request with CaptureFailed")
)

// script describes the simulated fingertip motion
type script struct {
	period time.Duration
	stroke time.Duration
	gap    time.Duration
}

// at returns the frame seen elapsed after the stream began
func (s script) at(elapsed time.Duration) hand.Frame {
	phase := 2 * math.Pi * float64(elapsed%s.period) / float64(s.period)
	l := hand.Landmark{
		X: 0.5 + 0.3*math.Sin(phase),
		Y: 0.5 + 0.2*math.Sin(2*phase),
	}

	cycle := s.stroke + s.gap
	pinched := elapsed%cycle < s.stroke
	return hand.Frame{Hands: []hand.Hand{hand.Synthesize(l, pinched)}}
}

type simulator struct {
	transport *network.Transport
	script    script
	interval  time.Duration
	fail      bool
	log       *zap.Logger

	mu      sync.Mutex
	streams map[network.PeerID]context.CancelFunc
}

func (s *simulator) onMessage(id network.PeerID, msg *network.Message) {
	if msg.Type != network.MsgCaptureRequest {
		return
	}

	var req network.CaptureRequest
	if err := req.UnmarshalBinary(msg.Payload); err != nil {
		s.log.Warn("bad capture request", zap.Uint32("peer", uint32(id)), zap.Error(err))
		s.transport.Send(id, network.NewMessage(network.MsgCaptureFailed, []byte("malformed request")))
		return
	}

	log := s.log.With(zap.Uint32("peer", uint32(id)), zap.String("session", req.SessionID.String()))
	if s.fail {
		log.Info("refusing capture")
		s.transport.Send(id, network.NewMessage(network.MsgCaptureFailed, []byte("camera unavailable")))
		return
	}

	log.Info("capture started",
		zap.Uint16("width", req.Width),
		zap.Uint16("height", req.Height),
		zap.Uint8("max_hands", req.MaxHands),
	)
	s.transport.Send(id, network.NewMessage(network.MsgCaptureReady, nil))

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.streams[id]; ok {
		prev()
	}
	// The viewer may have left before the stream was registered
	if !s.transport.Connected(id) {
		cancel()
		delete(s.streams, id)
		return
	}
	s.streams[id] = cancel

	go s.stream(ctx, id, log)
}

func (s *simulator) onDisconnect(id network.PeerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.streams[id]; ok {
		cancel()
		delete(s.streams, id)
	}
	s.log.Info("viewer disconnected", zap.Uint32("peer", uint32(id)))
}

func (s *simulator) stream(ctx context.Context, id network.PeerID, log *zap.Logger) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	start := time.Now()
	var frames uint64
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			f := s.script.at(now.Sub(start))
			f.Captured = now
			payload, err := network.EncodeLandmarks(f)
			if err != nil {
				log.Error("encode landmarks", zap.Error(err))
				return
			}
			frames++
			if !s.transport.Send(id, network.NewMessage(network.MsgLandmarks, payload)) {
				if !s.transport.Connected(id) {
					return
				}
				log.Debug("send queue full, frame dropped", zap.Uint64("frame", frames))
			}
		}
	}
}

func main() {
	flag.Parse()

	if *fpsFlag < 1 || *periodFlag <= 0 || *strokeFlag <= 0 || *gapFlag < 0 {
		fmt.Fprintln(os.Stderr, "fps, period and stroke must be positive")
		os.Exit(2)
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	sim := &simulator{
		script:   script{period: *periodFlag, stroke: *strokeFlag, gap: *gapFlag},
		interval: time.Second / time.Duration(*fpsFlag),
		fail:     *failFlag,
		log:      log.Named("hand-sim"),
		streams:  make(map[network.PeerID]context.CancelFunc),
	}
	sim.transport = network.NewTransport(network.ServerConfig(*addrFlag), log)
	sim.transport.SetHandlers(nil, sim.onDisconnect, sim.onMessage)

	if err := sim.transport.Start(); err != nil {
		log.Fatal("listen", zap.Error(err))
	}
	defer sim.transport.Stop()
	log.Info("recognizer simulator listening", zap.Stringer("addr", sim.transport.Addr()), zap.Bool("fail", sim.fail))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
}
