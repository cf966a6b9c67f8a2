package window

import (
	"time"

	"github.com/xendarboh/chipoble/btp"
)

// Default timing constants per §4.5, overridable via config.Policy.
const (
	DefaultAckSendTimeout = 2500 * time.Millisecond
	DefaultIdleTimeout    = 30 * time.Second
)

// packetCounter tracks one direction's packet/ack sequence numbers,
// modulo 256.
type packetCounter struct {
	lastSeenTime     time.Time
	lastPacketNumber uint8
	ackNumber        uint8
}

func newPacketCounter(clock Clock) packetCounter {
	return packetCounter{
		lastSeenTime:     clock.Now(),
		lastPacketNumber: 0xFF,
		ackNumber:        0xFF,
	}
}

// unacknowledgedCount returns how many packets are in flight without an ack.
func (c *packetCounter) unacknowledgedCount() uint8 {
	return c.lastPacketNumber - c.ackNumber
}

func (c *packetCounter) nextPacket(clock Clock) {
	if c.lastPacketNumber == c.ackNumber {
		c.lastSeenTime = clock.Now()
	}
	c.lastPacketNumber++
}

// markLatestAck reports (and clears) the latest unacknowledged packet
// number, or nil if nothing is outstanding.
func (c *packetCounter) markLatestAck(clock Clock) *uint8 {
	if c.lastPacketNumber == c.ackNumber {
		return nil
	}
	c.lastSeenTime = clock.Now()
	c.ackNumber = c.lastPacketNumber
	n := c.ackNumber
	return &n
}

func (c *packetCounter) ackPacket(ackNumber uint8, clock Clock) error {
	ackDelta := ackNumber - c.ackNumber
	if ackDelta > c.unacknowledgedCount() {
		return newError(ErrAckOutOfRange, "ack number %d out of range [%d..%d]", ackNumber, c.ackNumber, c.lastPacketNumber)
	}
	c.ackNumber = ackNumber
	c.lastSeenTime = clock.Now()
	return nil
}

// PacketData indicates whether a pending send carries application payload
// or is purely a flow-control ack.
type PacketData int

const (
	NoData PacketData = iota
	HasData
)

// SendAction is the outcome of PrepareSend: either wait a Duration before
// retrying, or send now with the given sequence info.
type SendAction struct {
	ShouldWait bool
	Wait       time.Duration
	Info       btp.SequenceInfo
}

// State tracks send/receive window state for one end of a BTP session
// (client or server side).
type State struct {
	windowSize     uint8
	ackSendTimeout time.Duration
	idleTimeout    time.Duration
	clock          Clock

	sent     packetCounter
	received packetCounter
}

func newState(windowSize uint8, ackSendTimeout, idleTimeout time.Duration, clock Clock) *State {
	return &State{
		windowSize:     windowSize,
		ackSendTimeout: ackSendTimeout,
		idleTimeout:    idleTimeout,
		clock:          clock,
		sent:           newPacketCounter(clock),
		received:       newPacketCounter(clock),
	}
}

// NewClient creates window state for a client immediately after a
// handshake completes. The handshake response is treated as packet 0,
// already received. windowSize must be at least 2: a window of 1 can
// never satisfy the deadlock-avoidance rule in PrepareSend, since sending
// the single available slot would leave no room left to piggyback an ack.
func NewClient(windowSize uint8, ackSendTimeout, idleTimeout time.Duration, clock Clock) (*State, error) {
	if windowSize < 2 {
		return nil, newError(ErrInvalidWindowSize, "window size %d is below the minimum of 2", windowSize)
	}
	s := newState(windowSize, ackSendTimeout, idleTimeout, clock)
	s.received.nextPacket(clock)
	return s, nil
}

// NewServer creates window state for a server immediately after a
// handshake completes. The handshake response it just sent is treated as
// packet 0, sent but not yet acknowledged. Same windowSize floor as
// NewClient.
func NewServer(windowSize uint8, ackSendTimeout, idleTimeout time.Duration, clock Clock) (*State, error) {
	if windowSize < 2 {
		return nil, newError(ErrInvalidWindowSize, "window size %d is below the minimum of 2", windowSize)
	}
	s := newState(windowSize, ackSendTimeout, idleTimeout, clock)
	s.sent.nextPacket(clock)
	return s, nil
}

// PacketReceived updates receive state for an incoming packet. Sequence
// numbers must be monotonically increasing (mod 256); any piggybacked ack
// is applied to the send side.
func (s *State) PacketReceived(info btp.SequenceInfo) error {
	s.received.nextPacket(s.clock)

	if s.received.lastPacketNumber != info.SequenceNumber {
		return newError(ErrUnexpectedSequence, "received unexpected sequence number %d, expected %d",
			info.SequenceNumber, s.received.lastPacketNumber)
	}

	if info.AckNumber != nil {
		if err := s.sent.ackPacket(*info.AckNumber, s.clock); err != nil {
			return err
		}
	}

	return nil
}

// SentUnacknowledgedCount returns the number of outbound packets sent but
// not yet acknowledged by the remote, for observability.
func (s *State) SentUnacknowledgedCount() uint8 {
	return s.sent.unacknowledgedCount()
}

// PrepareSend decides whether a packet can be sent now, and if so with
// what sequence/ack numbers, applying the BTP send policy:
//
//  1. if the remote hasn't acked anything within the idle timeout, the
//     session is dead.
//  2. if the remote's window is full, wait for it to open.
//  3. if the remote has exactly one free slot left and we have nothing
//     to acknowledge, hold off so that last slot is
//     reserved for a packet carrying an ack (avoids a send/receive
//     deadlock).
//  4. if there is no data to send and plenty of window remains, delay any
//     standalone ack up to the ack-send timeout in case data arrives to
//     piggyback on.
//  5. otherwise, send.
func (s *State) PrepareSend(data PacketData) (SendAction, error) {
	now := s.clock.Now()

	if s.sent.unacknowledgedCount() != 0 && s.sent.lastSeenTime.Add(s.idleTimeout).Before(now) {
		return SendAction{}, newError(ErrIdleTimeout, "timeout receiving data: no ack received in time")
	}

	if s.sent.unacknowledgedCount() >= s.windowSize {
		return SendAction{ShouldWait: true, Wait: s.idleTimeout - now.Sub(s.sent.lastSeenTime)}, nil
	}

	if s.received.unacknowledgedCount() == 0 && s.sent.unacknowledgedCount()+1 == s.windowSize {
		return SendAction{ShouldWait: true, Wait: s.idleTimeout - now.Sub(s.sent.lastSeenTime)}, nil
	}

	if s.received.unacknowledgedCount()+2 < s.windowSize && data == NoData {
		sinceLastSent := now.Sub(s.sent.lastSeenTime)
		if sinceLastSent < s.ackSendTimeout {
			return SendAction{ShouldWait: true, Wait: s.ackSendTimeout - sinceLastSent}, nil
		}
	}

	s.sent.nextPacket(s.clock)

	return SendAction{
		Info: btp.SequenceInfo{
			SequenceNumber: s.sent.lastPacketNumber,
			AckNumber:      s.received.markLatestAck(s.clock),
		},
	}, nil
}
