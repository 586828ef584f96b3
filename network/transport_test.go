package network

import (
	"net"
	"testing"
	"time"
)

func TestTransportClientServer(t *testing.T) {
	srvCfg := ServerConfig("127.0.0.1:0")
	srv := NewTransport(srvCfg, nil)

	received := make(chan *Message, 4)
	connected := make(chan PeerID, 1)
	srv.SetHandlers(
		func(id PeerID) { connected <- id },
		nil,
		func(_ PeerID, msg *Message) { received <- msg },
	)
	if err := srv.Start(); err != nil {
		t.Fatalf("server Start: %v", err)
	}
	defer srv.Stop()

	cli := NewTransport(ClientConfig(srv.Addr().String()), nil)
	replies := make(chan *Message, 4)
	cli.SetHandlers(nil, nil, func(_ PeerID, msg *Message) { replies <- msg })
	if err := cli.Start(); err != nil {
		t.Fatalf("client Start: %v", err)
	}
	defer cli.Stop()

	up, ok := cli.Upstream()
	if !ok {
		t.Fatal("Expected client upstream peer")
	}
	if !cli.Send(up, NewMessage(MsgCaptureRequest, []byte{1})) {
		t.Fatal("client Send failed")
	}

	var peer PeerID
	select {
	case peer = <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw the connection")
	}

	select {
	case msg := <-received:
		if msg.Type != MsgCaptureRequest {
			t.Errorf("server got %s, want capture_request", msg.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the request")
	}

	srv.Send(peer, NewMessage(MsgCaptureReady, nil))
	select {
	case msg := <-replies:
		if msg.Type != MsgCaptureReady {
			t.Errorf("client got %s, want capture_ready", msg.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client never received the reply")
	}
}

func TestTransportDialFailure(t *testing.T) {
	cfg := ClientConfig("127.0.0.1:1")
	cfg.ConnectTimeout = 500 * time.Millisecond
	tr := NewTransport(cfg, nil)

	if err := tr.Start(); err == nil {
		tr.Stop()
		t.Fatal("Expected dial error")
	}
	if tr.IsRunning() {
		t.Error("Transport reports running after failed dial")
	}
}

func TestMaxPeersRejects(t *testing.T) {
	cfg := ServerConfig("127.0.0.1:0")
	cfg.MaxPeers = 1
	tr := NewTransport(cfg, nil)
	defer tr.Stop()

	a1, b1 := net.Pipe()
	defer b1.Close()
	if _, err := tr.Attach(a1); err != nil {
		t.Fatalf("first Attach: %v", err)
	}

	a2, b2 := net.Pipe()
	defer b2.Close()
	if _, err := tr.Attach(a2); err != ErrMaxPeers {
		t.Errorf("second Attach error = %v, want ErrMaxPeers", err)
	}
}

func TestConnectedTracksPeerLifetime(t *testing.T) {
	disconnected := make(chan PeerID, 1)
	tr := NewTransport(ServerConfig("127.0.0.1:0"), nil)
	tr.SetHandlers(nil, func(id PeerID) { disconnected <- id }, nil)
	defer tr.Stop()

	a, b := net.Pipe()
	id, err := tr.Attach(a)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if !tr.Connected(id) {
		t.Fatal("Expected attached peer to be connected")
	}

	b.Close()
	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect never reported")
	}
	if tr.Connected(id) {
		t.Error("peer still connected after disconnect callback")
	}
	if tr.Connected(id + 100) {
		t.Error("unknown peer reported connected")
	}
}
