package btpcomm

import "github.com/xendarboh/chipoble/btp"

// reassembler accumulates BTP data-packet payloads into complete
// upper-layer messages (§4.8 "Reassembly").
type reassembler struct {
	active      bool
	expectedLen int
	buf         []byte
}

// accept feeds one segment's flags and payload into the accumulator. It
// returns a non-nil message once segment-end completes one.
func (r *reassembler) accept(flags btp.HeaderFlags, payload []byte) ([]byte, error) {
	if flags&btp.FlagSegmentBegin != 0 {
		if len(payload) < 2 {
			return nil, newError(ErrReassemblyProtocol, "segment-begin payload too short for length header")
		}
		r.expectedLen = int(payload[0]) | int(payload[1])<<8
		r.buf = append([]byte{}, payload[2:]...)
		r.active = true
	} else {
		if !r.active {
			return nil, newError(ErrReassemblyProtocol, "non-begin segment received without an active accumulator")
		}
		r.buf = append(r.buf, payload...)
	}

	if len(r.buf) > r.expectedLen {
		return nil, newError(ErrReassemblyOverflow, "reassembled length %d exceeds declared length %d", len(r.buf), r.expectedLen)
	}

	if flags&btp.FlagSegmentEnd != 0 {
		if len(r.buf) != r.expectedLen {
			return nil, newError(ErrReassemblyUnderflow, "reassembled length %d is short of declared length %d", len(r.buf), r.expectedLen)
		}
		msg := r.buf
		r.active = false
		r.buf = nil
		r.expectedLen = 0
		return msg, nil
	}

	return nil, nil
}
