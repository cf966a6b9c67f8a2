// Package config loads the tunable BTP timing and window parameters from
// a TOML file, falling back to the protocol's defaults (§4.5, §4.7) when a
// value is unset.
package config

import (
	"time"

	"github.com/BurntSushi/toml"
)

// Policy holds the timers and window size a communicator negotiates and
// enforces. Durations are expressed in milliseconds in the TOML file.
type Policy struct {
	AckDelayMs         int64  `toml:"ack_delay_ms"`
	IdleTimeoutMs      int64  `toml:"idle_timeout_ms"`
	HandshakeTimeoutMs int64  `toml:"handshake_timeout_ms"`
	DefaultWindowSize  uint8  `toml:"default_window_size"`
	DefaultSegmentSize uint16 `toml:"default_segment_size"`
}

// Default returns the protocol's baseline policy. The segment size
// defaults to a common BLE ATT-MTU-minus-overhead value; real deployments
// should raise it once MTU negotiation with the peripheral completes.
func Default() Policy {
	return Policy{
		AckDelayMs:         2500,
		IdleTimeoutMs:      30_000,
		HandshakeTimeoutMs: 5_000,
		DefaultWindowSize:  8,
		DefaultSegmentSize: 247,
	}
}

// AckDelay returns the configured ack-delay timeout as a Duration.
func (p Policy) AckDelay() time.Duration { return time.Duration(p.AckDelayMs) * time.Millisecond }

// IdleTimeout returns the configured idle timeout as a Duration.
func (p Policy) IdleTimeout() time.Duration { return time.Duration(p.IdleTimeoutMs) * time.Millisecond }

// HandshakeTimeout returns the configured handshake response timeout.
func (p Policy) HandshakeTimeout() time.Duration {
	return time.Duration(p.HandshakeTimeoutMs) * time.Millisecond
}

// Load decodes a TOML file at path into a Policy seeded with defaults, so
// the file need only override the fields it cares about.
func Load(path string) (Policy, error) {
	p := Default()
	_, err := toml.DecodeFile(path, &p)
	if err != nil {
		return Policy{}, err
	}
	return p, nil
}
