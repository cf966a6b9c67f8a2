// Command btploop is a loopback demo: a BTP client Communicator talks to
// an in-process peripheral stand-in over a net.Pipe, proving out the
// handshake and windowed send/receive path end to end.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"io"
	"net"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/charmbracelet/log"

	"github.com/xendarboh/chipoble/btp"
	"github.com/xendarboh/chipoble/btp/window"
	"github.com/xendarboh/chipoble/btpcomm"
	"github.com/xendarboh/chipoble/config"
)

func main() {
	versioninfo.AddFlag(flag.CommandLine)
	message := flag.String("message", "ping", "payload to send to the loopback peripheral")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "btploop",
	})

	clientConn, peripheralConn := net.Pipe()

	policy := config.Default()

	go runPeripheral(peripheralConn, policy, logger.WithPrefix("peripheral"))

	client := btpcomm.New(newPipeTransport(clientConn), policy, logger.WithPrefix("client"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), policy.HandshakeTimeout())
	defer cancel()
	if err := client.Start(ctx); err != nil {
		logger.Fatal("handshake failed", "err", err)
	}

	if err := client.Write([]byte(*message)); err != nil {
		logger.Fatal("write failed", "err", err)
	}

	readCtx, readCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer readCancel()
	reply, err := client.Read(readCtx)
	if err != nil {
		logger.Fatal("read failed", "err", err)
	}

	logger.Info("round trip complete", "sent", *message, "received", string(reply))
	client.Close()
}

// pipeTransport adapts a stream net.Conn into a btpcomm.Transport by
// length-prefixing each frame.
type pipeTransport struct {
	conn net.Conn
	out  chan []byte
}

func newPipeTransport(conn net.Conn) *pipeTransport {
	t := &pipeTransport{conn: conn, out: make(chan []byte, 16)}
	go t.readLoop()
	return t
}

func (t *pipeTransport) WriteFrame(frame []byte) error {
	hdr := make([]byte, 2)
	binary.LittleEndian.PutUint16(hdr, uint16(len(frame)))
	if _, err := t.conn.Write(hdr); err != nil {
		return err
	}
	_, err := t.conn.Write(frame)
	return err
}

func (t *pipeTransport) Frames() <-chan []byte { return t.out }

func (t *pipeTransport) readLoop() {
	defer close(t.out)
	hdr := make([]byte, 2)
	for {
		if _, err := io.ReadFull(t.conn, hdr); err != nil {
			return
		}
		n := binary.LittleEndian.Uint16(hdr)
		buf := make([]byte, n)
		if _, err := io.ReadFull(t.conn, buf); err != nil {
			return
		}
		t.out <- buf
	}
}

// runPeripheral is a minimal GATT-server stand-in: it completes the BTP
// handshake and then echoes back any single-segment payload it receives,
// reversed. It does not implement general segmentation/reassembly — the
// loopback demo only ever sends messages that fit in one segment.
func runPeripheral(conn net.Conn, policy config.Policy, logger *log.Logger) {
	transport := newPipeTransport(conn)

	reqFrame, ok := <-transport.Frames()
	if !ok {
		return
	}
	_ = reqFrame // handshake request: fixed fields, nothing to negotiate down for this demo

	resp := []byte{
		0x65, 0x6C, 0x04,
		byte(policy.DefaultSegmentSize & 0xFF), byte(policy.DefaultSegmentSize >> 8),
		policy.DefaultWindowSize,
	}
	if err := transport.WriteFrame(resp); err != nil {
		logger.Error("writing handshake response", "err", err)
		return
	}

	win, err := window.NewServer(policy.DefaultWindowSize, policy.AckDelay(), policy.IdleTimeout(), window.SystemClock{})
	if err != nil {
		logger.Error("initializing window state", "err", err)
		return
	}

	for frame := range transport.Frames() {
		p, err := btp.ParseDataPacket(frame)
		if err != nil {
			logger.Error("bad data packet", "err", err)
			return
		}
		if err := win.PacketReceived(p.SequenceInfo); err != nil {
			logger.Error("window rejected packet", "err", err)
			return
		}

		if len(p.Payload) <= 2 {
			continue
		}
		payload := reverse(p.Payload[2:])

		action, err := win.PrepareSend(window.HasData)
		if err != nil {
			logger.Error("prepare send failed", "err", err)
			return
		}

		var buf btp.ResizableBuffer
		flags := btp.FlagSegmentBegin | btp.FlagSegmentEnd
		idx := 0
		if action.Info.AckNumber != nil {
			flags |= btp.FlagContainsAck
			buf.SetU8(idx, uint8(flags))
			idx++
			buf.SetU8(idx, *action.Info.AckNumber)
			idx++
		} else {
			buf.SetU8(idx, uint8(flags))
			idx++
		}
		buf.SetU8(idx, action.Info.SequenceNumber)
		idx++
		buf.SetU8(idx, uint8(len(payload)&0xFF))
		buf.SetU8(idx+1, uint8(len(payload)>>8))
		buf.SetAt(idx+2, payload)

		if err := transport.WriteFrame(buf.Bytes()); err != nil {
			logger.Error("writing reply", "err", err)
			return
		}
	}
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
