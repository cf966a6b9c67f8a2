// Package btp implements BTP (Bluetooth Transport Protocol) framing: the
// data packet header, the handshake request/response management messages,
// and a small resizable buffer used to build outgoing frames (§4.6, §4.7).
package btp

import "fmt"

// ErrorKind enumerates the BTP framing/handshake error taxonomy (§7).
type ErrorKind int

const (
	ErrTruncated ErrorKind = iota
	ErrInvalidFlags
	ErrUnexpectedFrameType
	ErrHandshakeRejected
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTruncated:
		return "Truncated"
	case ErrInvalidFlags:
		return "InvalidFlags"
	case ErrUnexpectedFrameType:
		return "UnexpectedFrameType"
	case ErrHandshakeRejected:
		return "HandshakeRejected"
	default:
		return "Unknown"
	}
}

// ProtocolError is the package-prefixed error type returned by
// ParseDataPacket and ParseHandshakeResponse. Callers use errors.As to
// branch on Kind rather than matching the message text.
type ProtocolError struct {
	Kind ErrorKind
	Msg  string
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("btp: %s: %s", e.Kind, e.Msg) }

func newError(kind ErrorKind, format string, a ...interface{}) error {
	return &ProtocolError{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}
