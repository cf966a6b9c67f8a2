package btp

const (
	protocolVersion   uint8 = 0x04
	managementOpcode  uint8 = 0x6C
	defaultSegmentSize uint16 = 20
	defaultWindowSize uint8  = 4
)

// HandshakeRequest is the fixed 9-byte management message a central sends
// to open a BTP session (§4.7).
type HandshakeRequest struct {
	buf [9]byte
}

// NewHandshakeRequest returns a request pre-filled with a default segment
// size of 20 and window size of 4, ready for SetSegmentSize/SetWindowSize.
func NewHandshakeRequest() HandshakeRequest {
	r := HandshakeRequest{
		buf: [9]byte{
			uint8(FlagsHandshakeRequest),
			managementOpcode,
			protocolVersion, 0, 0, 0,
			uint8(defaultSegmentSize & 0xFF), uint8(defaultSegmentSize >> 8),
			defaultWindowSize,
		},
	}
	return r
}

func (r *HandshakeRequest) SetSegmentSize(size uint16) {
	r.buf[6] = uint8(size & 0xFF)
	r.buf[7] = uint8(size >> 8)
}

func (r *HandshakeRequest) SetWindowSize(size uint8) {
	r.buf[8] = size
}

// Bytes returns the wire representation of the request.
func (r HandshakeRequest) Bytes() []byte {
	out := make([]byte, len(r.buf))
	copy(out, r.buf[:])
	return out
}

// HandshakeResponse is the fixed 6-byte management message a peripheral
// replies with, carrying the negotiated segment and window size.
type HandshakeResponse struct {
	SelectedSegmentSize uint16
	SelectedWindowSize  uint8
}

// ParseHandshakeResponse parses a 6-byte handshake response. The protocol
// byte must select BTP version 4; any other flags, opcode, or protocol
// byte is rejected.
func ParseHandshakeResponse(buf []byte) (HandshakeResponse, error) {
	if len(buf) != 6 {
		return HandshakeResponse{}, newError(ErrTruncated, "invalid data length: expected 6, got %d", len(buf))
	}

	flags, opcode, protocol := buf[0], buf[1], buf[2]
	if HeaderFlags(flags) != FlagsHandshakeResponse {
		return HandshakeResponse{}, newError(ErrHandshakeRejected, "invalid response flags: 0x%02x", flags)
	}
	if opcode != managementOpcode {
		return HandshakeResponse{}, newError(ErrHandshakeRejected, "invalid management opcode: 0x%02x", opcode)
	}
	if protocol != protocolVersion {
		return HandshakeResponse{}, newError(ErrHandshakeRejected, "invalid protocol: 0x%02x", protocol)
	}

	return HandshakeResponse{
		SelectedSegmentSize: uint16(buf[3]) | uint16(buf[4])<<8,
		SelectedWindowSize:  buf[5],
	}, nil
}
