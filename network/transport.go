package network

import (
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Transport handles network I/O for a specific role
type Transport struct {
	config   *Config
	listener net.Listener
	peers    *PeerManager
	log      *zap.Logger

	// upstream is the server peer in client role
	upstream atomic.Uint32

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewTransport creates a transport with the given configuration
func NewTransport(cfg *Config, log *zap.Logger) *Transport {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("network")
	return &Transport{
		config: cfg,
		peers:  NewPeerManager(cfg, log),
		log:    log,
		stopCh: make(chan struct{}),
	}
}

// SetHandlers configures message and connection callbacks
// Must be called before Start
func (t *Transport) SetHandlers(
	onConnect func(PeerID),
	onDisconnect func(PeerID),
	onMessage func(PeerID, *Message),
) {
	t.peers.SetHandlers(onConnect, onDisconnect, onMessage)
}

// Start begins listening (server) or connecting (client)
func (t *Transport) Start() error {
	if !t.running.CompareAndSwap(false, true) {
		return nil // Already running
	}

	switch t.config.Role {
	case RoleServer:
		return t.startServer()
	case RoleClient:
		return t.startClient()
	default:
		return nil // RoleNone, no-op
	}
}

// startServer binds and accepts connections
func (t *Transport) startServer() error {
	var ln net.Listener
	var err error

	if t.config.TLS != nil {
		ln, err = tls.Listen("tcp", t.config.Address, t.config.TLS)
	} else {
		ln, err = net.Listen("tcp", t.config.Address)
	}

	if err != nil {
		t.running.Store(false)
		return errors.Wrapf(err, "listen %s", t.config.Address)
	}

	t.listener = ln
	t.log.Info("listening", zap.String("addr", ln.Addr().String()))

	t.wg.Add(1)
	go t.acceptLoop()

	return nil
}

// acceptLoop handles incoming connections
func (t *Transport) acceptLoop() {
	defer t.wg.Done()

	for {
		conn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.stopCh:
				return
			default:
				if errors.Is(err, net.ErrClosed) {
					return
				}
				continue
			}
		}

		if _, err := t.peers.AddConnection(conn); err != nil {
			t.log.Warn("connection rejected", zap.Error(err))
		}
	}
}

// startClient connects to the server
func (t *Transport) startClient() error {
	conn, err := dial(t.config.Address, t.config)
	if err != nil {
		t.running.Store(false)
		return errors.Wrapf(err, "dial %s", t.config.Address)
	}

	if _, err := t.Attach(conn); err != nil {
		t.running.Store(false)
		return err
	}
	return nil
}

// Attach adopts an already established connection
// In client role the first attached peer becomes the upstream
func (t *Transport) Attach(conn net.Conn) (PeerID, error) {
	id, err := t.peers.AddConnection(conn)
	if err != nil {
		return 0, err
	}
	if t.config.Role == RoleClient {
		t.upstream.CompareAndSwap(0, uint32(id))
	}
	t.running.Store(true)
	return id, nil
}

// Upstream returns the server peer in client role
func (t *Transport) Upstream() (PeerID, bool) {
	id := PeerID(t.upstream.Load())
	return id, id != 0
}

// Addr returns the bound listener address in server role
func (t *Transport) Addr() net.Addr {
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

// Stop halts the transport
func (t *Transport) Stop() error {
	if !t.running.CompareAndSwap(true, false) {
		return nil
	}

	close(t.stopCh)

	if t.listener != nil {
		t.listener.Close()
	}

	t.peers.Close()
	t.wg.Wait()

	return nil
}

// Send transmits to a specific peer
func (t *Transport) Send(id PeerID, msg *Message) bool {
	return t.peers.Send(id, msg)
}

// Broadcast sends to all peers
func (t *Transport) Broadcast(msg *Message) {
	t.peers.Broadcast(msg)
}

// Connected reports whether the peer is still attached
func (t *Transport) Connected(id PeerID) bool {
	_, ok := t.peers.GetPeer(id)
	return ok
}

// PeerCount returns connected peer count
func (t *Transport) PeerCount() int {
	return t.peers.PeerCount()
}

// IsRunning returns transport state
func (t *Transport) IsRunning() bool {
	return t.running.Load()
}
