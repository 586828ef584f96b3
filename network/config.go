package network

import (
	"crypto/tls"
	"time"
)

// Role defines which side of the recognizer link this process plays
type Role uint8

const (
	RoleNone   Role = iota // Network disabled
	RoleClient             // Dials the recognizer sidecar
	RoleServer             // Accepts viewer connections (sidecar side)
)

// Config holds network configuration
type Config struct {
	// Role determines connection behavior
	Role Role

	// Address to bind (server) or connect to (client)
	Address string

	// TLS configuration (nil = plaintext, the sidecar normally runs on loopback)
	TLS *tls.Config

	// Connection limits
	MaxPeers int

	// Timing
	ConnectTimeout    time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	HeartbeatInterval time.Duration

	// Buffer sizes
	ReadBufferSize  int
	WriteBufferSize int
	SendQueueSize   int
}

// DefaultConfig returns loopback-friendly defaults
func DefaultConfig() *Config {
	return &Config{
		Role:              RoleNone,
		Address:           "127.0.0.1:7878",
		TLS:               nil,
		MaxPeers:          4,
		ConnectTimeout:    5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2 * time.Second,
		HeartbeatInterval: 2 * time.Second,
		ReadBufferSize:    64 * 1024,
		WriteBufferSize:   64 * 1024,
		SendQueueSize:     64,
	}
}

// ClientConfig returns defaults for dialing addr
func ClientConfig(addr string) *Config {
	cfg := DefaultConfig()
	cfg.Role = RoleClient
	cfg.Address = addr
	return cfg
}

// ServerConfig returns defaults for listening on addr
func ServerConfig(addr string) *Config {
	cfg := DefaultConfig()
	cfg.Role = RoleServer
	cfg.Address = addr
	return cfg
}
