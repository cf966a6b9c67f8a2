package btpcomm

import "github.com/xendarboh/chipoble/btp"

// segmenter splits outgoing messages into BTP data-packet payloads that
// fit the negotiated segment size (§4.8 "Segmentation").
type segmenter struct {
	segmentSize int

	current      []byte // bytes of the in-progress message not yet emitted
	currentFirst bool   // true until the first segment of current has been built
}

func newSegmenter(segmentSize int) *segmenter {
	return &segmenter{segmentSize: segmentSize}
}

// hasPending reports whether a segment is ready to be emitted for an
// already-started message (ignores the outgoing queue).
func (s *segmenter) hasPending() bool {
	return s.current != nil
}

// start begins segmenting a new message.
func (s *segmenter) start(msg []byte) {
	s.current = msg
	s.currentFirst = true
}

// next produces the next segment's flags and payload, given whether the
// frame carrying it will also piggyback an ack. ok is false if no message
// is in progress.
func (s *segmenter) next(ackPresent bool) (flags btp.HeaderFlags, payload []byte, ok bool, err error) {
	if s.current == nil {
		return 0, nil, false, nil
	}

	overhead := 2
	if ackPresent {
		overhead = 3
	}
	maxPayload := s.segmentSize - overhead

	if s.currentFirst {
		maxPayload -= 2
		if maxPayload < 0 {
			return 0, nil, false, newError(ErrInternal, "segment size %d too small for a length-prefixed first segment", s.segmentSize)
		}
		take := maxPayload
		if take > len(s.current) {
			take = len(s.current)
		}
		length := len(s.current)
		chunk := make([]byte, 2+take)
		chunk[0] = byte(length & 0xFF)
		chunk[1] = byte((length >> 8) & 0xFF)
		copy(chunk[2:], s.current[:take])

		s.current = s.current[take:]
		s.currentFirst = false
		flags |= btp.FlagSegmentBegin
		payload = chunk
	} else {
		if maxPayload < 0 {
			return 0, nil, false, newError(ErrInternal, "segment size %d too small for a continuation segment", s.segmentSize)
		}
		take := maxPayload
		if take > len(s.current) {
			take = len(s.current)
		}
		payload = s.current[:take]
		s.current = s.current[take:]
	}

	if len(s.current) == 0 {
		flags |= btp.FlagSegmentEnd
		s.current = nil
	}

	return flags, payload, true, nil
}
