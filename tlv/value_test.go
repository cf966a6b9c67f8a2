package tlv_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xendarboh/chipoble/tlv"
)

func TestNumericConversionLaw(t *testing.T) {
	cases := []struct {
		name    string
		v       tlv.Value
		convert func(tlv.Value) (int64, error)
		wantOK  bool
		want    int64
	}{
		{"signed fits int8", tlv.SignedValue(-5), func(v tlv.Value) (int64, error) {
			n, err := v.AsInt8()
			return int64(n), err
		}, true, -5},
		{"signed overflow int8", tlv.SignedValue(200), func(v tlv.Value) (int64, error) {
			n, err := v.AsInt8()
			return int64(n), err
		}, false, 0},
		{"unsigned fits uint8", tlv.UnsignedValue(255), func(v tlv.Value) (int64, error) {
			n, err := v.AsUint8()
			return int64(n), err
		}, true, 255},
		{"unsigned overflow uint8", tlv.UnsignedValue(256), func(v tlv.Value) (int64, error) {
			n, err := v.AsUint8()
			return int64(n), err
		}, false, 0},
		{"unsigned to signed representable", tlv.UnsignedValue(10), func(v tlv.Value) (int64, error) {
			return v.AsInt64()
		}, true, 10},
		{"signed negative to unsigned fails", tlv.SignedValue(-1), func(v tlv.Value) (int64, error) {
			n, err := v.AsUint64()
			return int64(n), err
		}, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.convert(tc.v)
			if tc.wantOK {
				require.NoError(t, err)
				require.Equal(t, tc.want, got)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestFloatWideningAndNarrowing(t *testing.T) {
	v := tlv.Float32Value(1.5)
	f64, err := v.AsFloat64()
	require.NoError(t, err)
	require.Equal(t, 1.5, f64)

	// Narrowing from float64 to float32 is rejected.
	d := tlv.Float64Value(2.5)
	_, err = d.AsFloat32()
	require.Error(t, err)
}

func TestStringRequiresValidUTF8(t *testing.T) {
	v := tlv.UTF8Value([]byte{0xFF, 0xFE})
	_, err := v.AsString()
	require.Error(t, err)
	var tlvErr *tlv.Error
	require.ErrorAs(t, err, &tlvErr)
	require.Equal(t, tlv.ErrInvalidUtf8, tlvErr.Kind)
}

func TestBytesCoercesFromUtf8AndBytes(t *testing.T) {
	b1, err := tlv.UTF8Value([]byte("hi")).AsBytes()
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), b1)

	b2, err := tlv.BytesValue([]byte{1, 2, 3}).AsBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, b2)
}

func TestNullCoercesToNone(t *testing.T) {
	require.True(t, tlv.NullValue().IsNull())
	require.False(t, tlv.UnsignedValue(0).IsNull())
}
