// Package config handles configuration for the board server, including
// defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/sketchboard/internal/board/history"
)

// Config holds runtime settings for the board server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP listener (/ws, exports, health).
//   - EndpointAddrGRPC: bind address for the gRPC listener.
//   - LogLevel: debug, info, warn or error.
//   - LookupTimeout: bound on user lookups made outside the event loop.
//   - RedoPolicy: "trusted" appends client-supplied redo operations as is,
//     "verified" only reinstates operations the server itself undid.
//   - SendBufferSize / WriteTimeout: per-connection outbound queue and write deadline.
//   - MDNSEnabled / MDNSInstance: LAN advertisement of the HTTP endpoint.
//   - S3Bucket / S3Region / S3BaseEndpoint / S3RootUser / S3RootPassword:
//     export upload target. An empty bucket disables uploads.
type Config struct {
	EndpointAddrHTTP string
	EndpointAddrGRPC string
	LogLevel         string
	LookupTimeout    time.Duration
	RedoPolicy       string
	SendBufferSize   int
	WriteTimeout     time.Duration
	MDNSEnabled      bool
	MDNSInstance     string
	S3Bucket         string
	S3Region         string
	S3BaseEndpoint   string
	S3RootUser       string
	S3RootPassword   string
}

// LoadDefaults populates Config with defaults suitable for a local board.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.LogLevel = "info"
	c.LookupTimeout = 2 * time.Second
	c.RedoPolicy = string(history.PolicyTrusted)
	c.SendBufferSize = 256
	c.WriteTimeout = 10 * time.Second
	c.MDNSEnabled = false
	c.MDNSInstance = ""
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.S3RootUser = ""
	c.S3RootPassword = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
