package endian_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xendarboh/chipoble/endian"
)

func TestReaderRoundTrip(t *testing.T) {
	data := []byte{1, 0x11, 0x12, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	r := endian.NewReader(data)

	u8, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(1), u8)

	u16, err := r.ReadU16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x1211), u16)

	u64, err := r.ReadU64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0807060504030201), u64)

	_, err = r.ReadU8()
	require.ErrorIs(t, err, endian.ErrInsufficientData)
}

func TestReaderU32ConsumesFourBytes(t *testing.T) {
	data := []byte{1, 0x11, 0x12, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	r := endian.NewReader(data)

	v, err := r.ReadU32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x01121101), v)
	require.Equal(t, 7, r.Remaining())

	rest, err := r.Read(7)
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, rest)
}

func TestReaderSkipAndBorrow(t *testing.T) {
	data := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	r := endian.NewReader(data)
	require.NoError(t, r.Skip(2))

	b, err := r.Read(2)
	require.NoError(t, err)
	require.Equal(t, []byte{0xCC, 0xDD}, b)
	// borrowed slice aliases the original buffer.
	b[0] = 0x00
	require.Equal(t, byte(0x00), data[2])
}

func TestSliceWriterOverflowReportsMissing(t *testing.T) {
	w := endian.NewSliceWriter(make([]byte, 2))
	require.NoError(t, w.WriteU8(1))
	err := w.WriteU32(0xDEADBEEF)
	require.Error(t, err)
	var spaceErr *endian.InsufficientSpaceError
	require.ErrorAs(t, err, &spaceErr)
	require.Equal(t, 3, spaceErr.Missing)
}

func TestSliceWriterRoundTrip(t *testing.T) {
	dst := make([]byte, 8)
	w := endian.NewSliceWriter(dst)
	require.NoError(t, w.WriteU16(0x1234))
	require.NoError(t, w.WriteU32(0xCAFEBABE))
	require.NoError(t, w.WriteU8(0xFF))
	require.Equal(t, 7, w.Len())

	r := endian.NewReader(dst)
	u16, err := r.ReadU16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), u16)
	u32, err := r.ReadU32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xCAFEBABE), u32)
	u8, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(0xFF), u8)
}

func TestSizeEstimatorCountsOnly(t *testing.T) {
	var w endian.SizeEstimator
	require.NoError(t, w.WriteU8(1))
	require.NoError(t, w.WriteU16(2))
	require.NoError(t, w.WriteU32(3))
	require.NoError(t, w.WriteU64(4))
	require.NoError(t, w.Write([]byte{1, 2, 3}))
	require.Equal(t, 1+2+4+8+3, w.Len())
}
