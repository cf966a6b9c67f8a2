package matter_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xendarboh/chipoble/endian"
	"github.com/xendarboh/chipoble/matter"
)

func TestParseUnicastNoSourceNoDestination(t *testing.T) {
	data := []byte{
		0x00,                   // flags: none set
		0x34, 0x12,             // session id 0x1234
		0x00,                   // security flags
		0x00, 0x00, 0x00, 0x00, // counter
		0xaa, 0xbb, 0xcc, // payload
	}
	h, rest, err := matter.Parse(data)
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), h.SessionID)
	require.Nil(t, h.Source)
	require.Equal(t, matter.DestinationNone, h.Destination.Kind)
	st, err := h.Flags.SessionType()
	require.NoError(t, err)
	require.Equal(t, matter.SessionUnicast, st)
	require.Equal(t, []byte{0xaa, 0xbb, 0xcc}, rest)
}

func TestParseScenario5GroupMulticastWithSource(t *testing.T) {
	// spec.md §8.2 scenario 5
	data := []byte{
		0x06, 0x33, 0x22, 0x01, 0x01, 0x00, 0x00, 0x00,
		0x12, 0x34, 0x56, 0x78, 0xAA, 0xBB, 0xCC, 0xDD,
		0xCD, 0xAB,
	}
	h, rest, err := matter.Parse(data)
	require.NoError(t, err)
	require.Equal(t, uint16(0x2233), h.SessionID)
	require.Equal(t, uint32(1), h.Counter)
	require.NotNil(t, h.Source)
	require.Equal(t, uint64(0xDDCCBBAA78563412), *h.Source)
	require.Equal(t, matter.DestinationGroup, h.Destination.Kind)
	require.Equal(t, uint16(0xABCD), h.Destination.Group)
	st, err := h.Flags.SessionType()
	require.NoError(t, err)
	require.Equal(t, matter.SessionGroupMulticast, st)
	require.Empty(t, rest)
}

func TestParseDestinationNode(t *testing.T) {
	data := []byte{
		0x01, 0x33, 0x22, 0x00, 0x45, 0x23, 0x01, 0x00,
		0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88,
	}
	h, rest, err := matter.Parse(data)
	require.NoError(t, err)
	require.Equal(t, uint32(0x12345), h.Counter)
	require.Nil(t, h.Source)
	require.Equal(t, matter.DestinationNode, h.Destination.Kind)
	require.Equal(t, uint64(0x8877665544332211), h.Destination.Node)
	require.Empty(t, rest)
}

func TestParseRejectsInvalidVersion(t *testing.T) {
	data := []byte{0x11, 0, 0, 0, 0, 0, 0, 0, 0}
	_, _, err := matter.Parse(data)
	require.Error(t, err)
	var de *matter.DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, matter.ErrInvalidVersion, de.Kind)
}

func TestParseRejectsTruncated(t *testing.T) {
	for _, data := range [][]byte{{}, {0, 0, 0}} {
		_, _, err := matter.Parse(data)
		require.Error(t, err)
		var de *matter.DecodeError
		require.ErrorAs(t, err, &de)
		require.Equal(t, matter.ErrTruncated, de.Kind)
	}
}

func TestParseRejectsReservedDestination(t *testing.T) {
	data := []byte{0x03, 0, 0, 0, 0, 0, 0, 0, 0}
	_, _, err := matter.Parse(data)
	require.Error(t, err)
	var de *matter.DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, matter.ErrInvalidFlags, de.Kind)
}

func TestParseRejectsReservedSessionType(t *testing.T) {
	data := []byte{0x00, 0, 0, 0x02, 0, 0, 0, 0}
	_, _, err := matter.Parse(data)
	require.Error(t, err)
	var de *matter.DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, matter.ErrInvalidSessionType, de.Kind)
}

func TestParseRejectsUnknownSecurityBits(t *testing.T) {
	data := []byte{0x00, 0, 0, 0x1C, 0, 0, 0, 0}
	_, _, err := matter.Parse(data)
	require.Error(t, err)
	var de *matter.DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, matter.ErrInvalidFlags, de.Kind)
}

func TestHeaderRoundTrip(t *testing.T) {
	src := uint64(0xDDCCBBAA78563412)
	h := matter.Header{
		Flags:     matter.SecurityFlags(1),
		SessionID: 0x2233,
		Source:    &src,
		Destination: matter.Destination{
			Kind:  matter.DestinationGroup,
			Group: 0xABCD,
		},
		Counter: 1,
	}

	buf := make([]byte, 32)
	w := endian.NewSliceWriter(buf)
	require.NoError(t, h.Serialize(w))

	parsed, rest, err := matter.Parse(buf[:w.Len()])
	require.NoError(t, err)
	require.Equal(t, h, parsed)
	require.Empty(t, rest)
}
