package window_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xendarboh/chipoble/btp"
	"github.com/xendarboh/chipoble/btp/window"
)

func expectSend(t *testing.T, src, dst *window.State, data window.PacketData, wantSeq uint8, wantAck *uint8) {
	t.Helper()
	action, err := src.PrepareSend(data)
	require.NoError(t, err)
	require.False(t, action.ShouldWait)
	require.Equal(t, wantSeq, action.Info.SequenceNumber)
	if wantAck == nil {
		require.Nil(t, action.Info.AckNumber)
	} else {
		require.NotNil(t, action.Info.AckNumber)
		require.Equal(t, *wantAck, *action.Info.AckNumber)
	}
	require.NoError(t, dst.PacketReceived(action.Info))
}

func expectWait(t *testing.T, s *window.State, data window.PacketData, want time.Duration) {
	t.Helper()
	action, err := s.PrepareSend(data)
	require.NoError(t, err)
	require.True(t, action.ShouldWait)
	require.Equal(t, want, action.Wait)
}

func u8(v uint8) *uint8 { return &v }

// TestWindowMatchesSpecSample replicates the Matter specification's BTP
// window-size-4 walkthrough.
func TestWindowMatchesSpecSample(t *testing.T) {
	clock := window.NewManualClock(time.Unix(0, 0))
	client, err := window.NewClient(4, window.DefaultAckSendTimeout, window.DefaultIdleTimeout, clock)
	require.NoError(t, err)
	server, err := window.NewServer(4, window.DefaultAckSendTimeout, window.DefaultIdleTimeout, clock)
	require.NoError(t, err)

	expectWait(t, server, window.NoData, window.DefaultAckSendTimeout)

	expectSend(t, client, server, window.HasData, 0, u8(0))

	expectWait(t, server, window.NoData, window.DefaultAckSendTimeout)
	expectWait(t, client, window.NoData, window.DefaultAckSendTimeout)

	expectSend(t, client, server, window.HasData, 1, nil)

	// only 2 window slots remain, send ack early
	expectSend(t, server, client, window.NoData, 1, u8(1))

	expectSend(t, client, server, window.HasData, 2, u8(1))

	expectWait(t, server, window.NoData, window.DefaultAckSendTimeout)
	clock.Advance(time.Second)

	expectWait(t, server, window.NoData, window.DefaultAckSendTimeout-time.Second)
	clock.Advance(window.DefaultAckSendTimeout - time.Second)

	expectSend(t, server, client, window.NoData, 2, u8(2))

	// connection is idle, client side also waits
	expectWait(t, client, window.NoData, window.DefaultAckSendTimeout)
}

func TestPacketReceivedRejectsNonMonotonicSequence(t *testing.T) {
	clock := window.NewManualClock(time.Unix(0, 0))
	server, err := window.NewServer(4, window.DefaultAckSendTimeout, window.DefaultIdleTimeout, clock)
	require.NoError(t, err)

	err = server.PacketReceived(btp.SequenceInfo{SequenceNumber: 5})
	require.Error(t, err)

	var windowErr *window.Error
	require.ErrorAs(t, err, &windowErr)
	require.Equal(t, window.ErrUnexpectedSequence, windowErr.Kind)
}

func TestPrepareSendTimesOutWhenIdle(t *testing.T) {
	clock := window.NewManualClock(time.Unix(0, 0))
	client, err := window.NewClient(4, window.DefaultAckSendTimeout, window.DefaultIdleTimeout, clock)
	require.NoError(t, err)
	server, err := window.NewServer(4, window.DefaultAckSendTimeout, window.DefaultIdleTimeout, clock)
	require.NoError(t, err)

	expectSend(t, client, server, window.HasData, 0, u8(0))

	clock.Advance(window.DefaultIdleTimeout + time.Second)

	_, err = client.PrepareSend(window.HasData)
	require.Error(t, err)

	var windowErr *window.Error
	require.ErrorAs(t, err, &windowErr)
	require.Equal(t, window.ErrIdleTimeout, windowErr.Kind)
}

func TestPrepareSendReservesLastSlotForAck(t *testing.T) {
	clock := window.NewManualClock(time.Unix(0, 0))
	client, err := window.NewClient(2, window.DefaultAckSendTimeout, window.DefaultIdleTimeout, clock)
	require.NoError(t, err)
	server, err := window.NewServer(2, window.DefaultAckSendTimeout, window.DefaultIdleTimeout, clock)
	require.NoError(t, err)

	expectSend(t, client, server, window.HasData, 0, u8(0))

	// client has one packet outstanding and nothing left to ack: with
	// window size 2, sending again would leave the server's window full
	// with no slot free to piggyback an ack, so the client must wait
	// rather than risk the deadlock described in §4.5.
	action, err := client.PrepareSend(window.HasData)
	require.NoError(t, err)
	require.True(t, action.ShouldWait)
	require.Equal(t, window.DefaultIdleTimeout, action.Wait)
}

func TestNewClientAndNewServerRejectWindowSizeBelowTwo(t *testing.T) {
	clock := window.NewManualClock(time.Unix(0, 0))

	_, err := window.NewClient(1, window.DefaultAckSendTimeout, window.DefaultIdleTimeout, clock)
	require.Error(t, err)

	_, err = window.NewServer(1, window.DefaultAckSendTimeout, window.DefaultIdleTimeout, clock)
	require.Error(t, err)
}
