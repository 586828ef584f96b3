package network

import (
	"bufio"
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PeerID uniquely identifies a connected peer
type PeerID uint32

// ConnState represents connection lifecycle state
type ConnState uint8

const (
	StateDisconnected ConnState = iota
	StateConnected
	StateDisconnecting
)

// ErrMaxPeers is returned when a connection arrives with every slot taken
var ErrMaxPeers = errors.New("max peers reached")

// Peer represents a remote endpoint
type Peer struct {
	ID       PeerID
	Addr     string
	State    atomic.Uint32 // ConnState
	LastSeen atomic.Int64  // UnixNano

	// Sequence tracking
	OutSeq atomic.Uint32 // Next outbound sequence
	InSeq  atomic.Uint32 // Last processed inbound sequence

	// I/O
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	config *Config

	// Send queue
	sendCh chan *Message

	// Lifecycle
	closeCh   chan struct{}
	closeOnce sync.Once
}

// newPeer creates a peer from an established connection
func newPeer(id PeerID, conn net.Conn, cfg *Config) *Peer {
	p := &Peer{
		ID:      id,
		Addr:    conn.RemoteAddr().String(),
		conn:    conn,
		reader:  bufio.NewReaderSize(conn, cfg.ReadBufferSize),
		writer:  bufio.NewWriterSize(conn, cfg.WriteBufferSize),
		config:  cfg,
		sendCh:  make(chan *Message, cfg.SendQueueSize),
		closeCh: make(chan struct{}),
	}
	p.State.Store(uint32(StateConnected))
	p.LastSeen.Store(time.Now().UnixNano())
	return p
}

// Send queues a message for transmission
// Returns false if peer is disconnected or queue full
func (p *Peer) Send(msg *Message) bool {
	if ConnState(p.State.Load()) != StateConnected {
		return false
	}

	msg.Seq = p.OutSeq.Add(1)
	msg.Ack = p.InSeq.Load()

	select {
	case p.sendCh <- msg:
		return true
	default:
		return false // Queue full
	}
}

// Close initiates shutdown, safe to call more than once
func (p *Peer) Close() {
	p.closeOnce.Do(func() {
		p.State.Store(uint32(StateDisconnecting))
		close(p.closeCh)
		p.conn.Close()
	})
}

// Done is closed once the peer shuts down
func (p *Peer) Done() <-chan struct{} {
	return p.closeCh
}

// readLoop reads messages from the connection until error or close
// Heartbeats refresh liveness and are not forwarded
func (p *Peer) readLoop(handler func(PeerID, *Message), log *zap.Logger) {
	defer p.Close()

	for {
		select {
		case <-p.closeCh:
			return
		default:
		}

		if p.config.ReadTimeout > 0 {
			_ = p.conn.SetReadDeadline(time.Now().Add(p.config.ReadTimeout))
		}

		msg, err := Decode(p.reader)
		if err != nil {
			select {
			case <-p.closeCh:
			default:
				log.Debug("peer read ended", zap.Uint32("peer", uint32(p.ID)), zap.Error(err))
			}
			return
		}

		p.LastSeen.Store(time.Now().UnixNano())

		if msg.Seq > p.InSeq.Load() {
			p.InSeq.Store(msg.Seq)
		}

		switch msg.Type {
		case MsgHeartbeat:
			continue
		case MsgDisconnect:
			return
		}

		handler(p.ID, msg)
	}
}

// writeLoop sends queued messages and heartbeats
func (p *Peer) writeLoop(log *zap.Logger) {
	defer p.Close()

	var heartbeat <-chan time.Time
	if p.config.HeartbeatInterval > 0 {
		ticker := time.NewTicker(p.config.HeartbeatInterval)
		defer ticker.Stop()
		heartbeat = ticker.C
	}

	for {
		var msg *Message
		select {
		case <-p.closeCh:
			return
		case msg = <-p.sendCh:
		case <-heartbeat:
			msg = NewMessage(MsgHeartbeat, nil)
			msg.Seq = p.OutSeq.Add(1)
			msg.Ack = p.InSeq.Load()
		}

		if p.config.WriteTimeout > 0 {
			_ = p.conn.SetWriteDeadline(time.Now().Add(p.config.WriteTimeout))
		}
		if err := msg.Encode(p.writer); err != nil {
			log.Debug("peer write failed", zap.Uint32("peer", uint32(p.ID)), zap.Error(err))
			return
		}
		if err := p.writer.Flush(); err != nil {
			log.Debug("peer flush failed", zap.Uint32("peer", uint32(p.ID)), zap.Error(err))
			return
		}
	}
}

// PeerManager handles multiple peer connections
type PeerManager struct {
	mu       sync.RWMutex
	peers    map[PeerID]*Peer
	nextID   atomic.Uint32
	maxPeers int
	config   *Config
	log      *zap.Logger

	// Callbacks
	onConnect    func(PeerID)
	onDisconnect func(PeerID)
	onMessage    func(PeerID, *Message)
}

// NewPeerManager creates a peer manager
func NewPeerManager(cfg *Config, log *zap.Logger) *PeerManager {
	return &PeerManager{
		peers:    make(map[PeerID]*Peer),
		maxPeers: cfg.MaxPeers,
		config:   cfg,
		log:      log,
	}
}

// SetHandlers configures event callbacks
func (pm *PeerManager) SetHandlers(
	onConnect func(PeerID),
	onDisconnect func(PeerID),
	onMessage func(PeerID, *Message),
) {
	pm.onConnect = onConnect
	pm.onDisconnect = onDisconnect
	pm.onMessage = onMessage
}

// AddConnection registers a new peer from a raw connection
func (pm *PeerManager) AddConnection(conn net.Conn) (PeerID, error) {
	pm.mu.Lock()
	if len(pm.peers) >= pm.maxPeers {
		pm.mu.Unlock()
		conn.Close()
		return 0, ErrMaxPeers
	}

	id := PeerID(pm.nextID.Add(1))
	peer := newPeer(id, conn, pm.config)
	pm.peers[id] = peer
	pm.mu.Unlock()

	log := pm.log.With(zap.Uint32("peer", uint32(id)), zap.String("addr", peer.Addr))
	log.Info("peer connected")

	// Callback runs before the read loop so it can set up per-peer state
	if pm.onConnect != nil {
		pm.onConnect(id)
	}

	go peer.readLoop(pm.handleMessage, log)
	go peer.writeLoop(log)
	go pm.monitorPeer(peer, log)

	return id, nil
}

// handleMessage routes received messages
func (pm *PeerManager) handleMessage(id PeerID, msg *Message) {
	if pm.onMessage != nil {
		pm.onMessage(id, msg)
	}
}

// monitorPeer removes the peer once it closes
func (pm *PeerManager) monitorPeer(peer *Peer, log *zap.Logger) {
	<-peer.closeCh

	pm.mu.Lock()
	delete(pm.peers, peer.ID)
	pm.mu.Unlock()

	log.Info("peer disconnected")

	if pm.onDisconnect != nil {
		pm.onDisconnect(peer.ID)
	}
}

// Send transmits a message to a specific peer
func (pm *PeerManager) Send(id PeerID, msg *Message) bool {
	pm.mu.RLock()
	peer, ok := pm.peers[id]
	pm.mu.RUnlock()

	if !ok {
		return false
	}
	return peer.Send(msg)
}

// Broadcast sends a message to all connected peers
func (pm *PeerManager) Broadcast(msg *Message) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	for _, peer := range pm.peers {
		// Clone message for independent sequence numbers
		clone := *msg
		peer.Send(&clone)
	}
}

// GetPeer retrieves a peer by ID
func (pm *PeerManager) GetPeer(id PeerID) (*Peer, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p, ok := pm.peers[id]
	return p, ok
}

// PeerCount returns current connected peer count
func (pm *PeerManager) PeerCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// Close disconnects all peers
func (pm *PeerManager) Close() {
	pm.mu.Lock()
	peers := pm.peers
	pm.peers = make(map[PeerID]*Peer)
	pm.mu.Unlock()

	for _, peer := range peers {
		peer.Close()
	}
}

// dial establishes a connection with optional TLS
func dial(addr string, cfg *Config) (net.Conn, error) {
	dialer := &net.Dialer{
		Timeout: cfg.ConnectTimeout,
	}

	if cfg.TLS != nil {
		return tls.DialWithDialer(dialer, "tcp", addr, cfg.TLS)
	}
	return dialer.Dial("tcp", addr)
}
