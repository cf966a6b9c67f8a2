package btpcomm

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	channels "gopkg.in/eapache/channels.v1"

	"github.com/xendarboh/chipoble/btp"
	"github.com/xendarboh/chipoble/btp/window"
	"github.com/xendarboh/chipoble/config"
	"github.com/xendarboh/chipoble/metrics"
)

// Transport is the pluggable BLE GATT link a Communicator drives: one
// frame out at a time, and a stream of inbound frames that closes when
// the link goes away.
type Transport interface {
	WriteFrame(frame []byte) error
	Frames() <-chan []byte
}

// State is a BTP connection's lifecycle stage (§4.8 "State machine").
type State int32

const (
	StateNew State = iota
	StateDiscovered
	StateHandshakeSent
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateDiscovered:
		return "discovered"
	case StateHandshakeSent:
		return "handshake-sent"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Communicator drives the client side of a BTP session: handshake
// negotiation followed by a segmentation/window-aware event loop.
type Communicator struct {
	log       *log.Logger
	metrics   *metrics.Set
	transport Transport
	policy    config.Policy
	clock     window.Clock

	state int32 // atomic State

	win         *window.State
	segmentSize int
	windowSize  uint8

	mu   sync.Mutex
	seg  *segmenter
	reas reassembler

	outQueue channels.Channel
	inbox    chan []byte

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

// New creates a Communicator over transport, ready for Start. A nil
// metrics.Set and a nil logger (replaced by a stderr logger) are both
// legal. The window clock is always window.SystemClock.
func New(transport Transport, policy config.Policy, logger *log.Logger, m *metrics.Set) *Communicator {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "btpcomm",
		})
	}
	return &Communicator{
		log:       logger.WithPrefix("btpcomm"),
		metrics:   m,
		transport: transport,
		policy:    policy,
		clock:     window.SystemClock{},
		state:     int32(StateNew),
		outQueue:  channels.NewInfiniteChannel(),
		inbox:     make(chan []byte, 16),
		closed:    make(chan struct{}),
	}
}

// State returns the connection's current lifecycle stage.
func (c *Communicator) State() State {
	return State(atomic.LoadInt32(&c.state))
}

func (c *Communicator) setState(s State) {
	atomic.StoreInt32(&c.state, int32(s))
	c.log.Debug("state transition", "state", s.String())
}

// Start performs the handshake and, on success, launches the background
// event loop. It blocks until the session is Open or the handshake fails.
func (c *Communicator) Start(ctx context.Context) error {
	c.setState(StateDiscovered)

	req := btp.NewHandshakeRequest()
	req.SetWindowSize(c.policy.DefaultWindowSize)
	req.SetSegmentSize(c.policy.DefaultSegmentSize)

	if err := c.transport.WriteFrame(req.Bytes()); err != nil {
		return newError(ErrHandshakeRejected, "writing handshake request: %v", err)
	}
	c.setState(StateHandshakeSent)

	select {
	case frame, ok := <-c.transport.Frames():
		if !ok {
			return ErrRemoteClosed
		}
		resp, err := btp.ParseHandshakeResponse(frame)
		if err != nil {
			// err is already a *btp.ProtocolError carrying its own Kind.
			return err
		}
		c.segmentSize = int(resp.SelectedSegmentSize)
		c.windowSize = resp.SelectedWindowSize
	case <-time.After(c.policy.HandshakeTimeout()):
		return newError(ErrHandshakeRejected, "timed out waiting for handshake response")
	case <-ctx.Done():
		return ctx.Err()
	}

	win, err := window.NewClient(c.windowSize, c.policy.AckDelay(), c.policy.IdleTimeout(), c.clock)
	if err != nil {
		// err is already a *window.Error carrying its own Kind.
		return err
	}
	c.win = win
	c.seg = newSegmenter(c.segmentSize)
	c.setState(StateOpen)
	c.log.Info("session open", "segment_size", c.segmentSize, "window_size", c.windowSize)

	go c.loop(ctx)
	return nil
}

// Write enqueues payload as a new upper-layer message to be segmented and
// sent by the event loop.
func (c *Communicator) Write(payload []byte) error {
	select {
	case <-c.closed:
		return ErrRemoteClosed
	default:
	}
	msg := make([]byte, len(payload))
	copy(msg, payload)
	c.outQueue.In() <- msg
	return nil
}

// Read blocks until a complete reassembled message is available, the
// transport closes, or ctx is done.
func (c *Communicator) Read(ctx context.Context) ([]byte, error) {
	select {
	case msg, ok := <-c.inbox:
		if !ok {
			return nil, c.closeErrOrDefault()
		}
		return msg, nil
	case <-c.closed:
		return nil, c.closeErrOrDefault()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Communicator) closeErrOrDefault() error {
	if c.closeErr != nil {
		return c.closeErr
	}
	return ErrRemoteClosed
}

// Close tears down the session.
func (c *Communicator) Close() {
	c.closeWith(nil)
}

func (c *Communicator) closeWith(err error) {
	c.closeOnce.Do(func() {
		c.closeErr = err
		c.setState(StateClosed)
		close(c.closed)
		close(c.inbox)
	})
}

func (c *Communicator) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.closeWith(ctx.Err())
			return
		case <-c.closed:
			return
		default:
		}

		c.mu.Lock()
		if !c.seg.hasPending() {
			select {
			case next := <-c.outQueue.Out():
				c.seg.start(next.([]byte))
			default:
			}
		}
		hasData := c.seg.hasPending()
		c.mu.Unlock()

		data := window.NoData
		if hasData {
			data = window.HasData
		}

		action, err := c.win.PrepareSend(data)
		if err != nil {
			c.log.Error("send policy failed", "err", err)
			c.metrics.ObserveIdleTimeout()
			c.closeWith(err)
			return
		}

		if action.ShouldWait {
			select {
			case frame, ok := <-c.transport.Frames():
				if !ok {
					c.closeWith(ErrRemoteClosed)
					return
				}
				if err := c.handleInbound(frame); err != nil {
					c.log.Error("inbound frame rejected", "err", err)
					c.closeWith(err)
					return
				}
			case <-time.After(action.Wait):
			case <-ctx.Done():
				c.closeWith(ctx.Err())
				return
			case <-c.closed:
				return
			}
			continue
		}

		if err := c.sendFrame(action.Info); err != nil {
			c.log.Error("writing frame", "err", err)
			c.closeWith(err)
			return
		}
	}
}

func (c *Communicator) sendFrame(info btp.SequenceInfo) error {
	c.mu.Lock()
	flags, payload, ok, err := c.seg.next(info.AckNumber != nil)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	var buf btp.ResizableBuffer
	idx := 0
	if info.AckNumber != nil {
		flags |= btp.FlagContainsAck
		buf.SetU8(idx, uint8(flags))
		idx++
		buf.SetU8(idx, *info.AckNumber)
		idx++
	} else {
		buf.SetU8(idx, uint8(flags))
		idx++
	}
	buf.SetU8(idx, info.SequenceNumber)
	idx++
	if ok {
		buf.SetAt(idx, payload)
	} else {
		c.metrics.ObserveStandaloneAck()
	}

	if err := c.transport.WriteFrame(buf.Bytes()); err != nil {
		return err
	}
	c.metrics.ObserveFrameSent()
	c.metrics.SetWindowOccupancy(int(c.win.SentUnacknowledgedCount()))
	return nil
}

func (c *Communicator) handleInbound(frame []byte) error {
	c.metrics.ObserveFrameReceived()
	p, err := btp.ParseDataPacket(frame)
	if err != nil {
		return err
	}
	if err := c.win.PacketReceived(p.SequenceInfo); err != nil {
		return err
	}

	if len(p.Payload) == 0 && p.Flags&(btp.FlagSegmentBegin|btp.FlagSegmentEnd) == 0 {
		return nil
	}

	c.mu.Lock()
	msg, err := c.reas.accept(p.Flags, p.Payload)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if msg != nil {
		c.metrics.ObserveBytesReassembled(len(msg))
		select {
		case c.inbox <- msg:
		case <-c.closed:
		}
	}
	return nil
}
