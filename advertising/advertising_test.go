package advertising_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xendarboh/chipoble/advertising"
)

func TestParseScenario1NoVendorProduct(t *testing.T) {
	data := []byte{0x00, 0xD2, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00}
	c, err := advertising.Parse(data)
	require.NoError(t, err)
	require.Equal(t, uint16(1234), c.Discriminator)
	require.Nil(t, c.VendorID)
	require.Nil(t, c.ProductID)
	require.Zero(t, c.Flags)
}

func TestParseScenario1WithVendorProductAndFlag(t *testing.T) {
	data := []byte{0x00, 0x8A, 0x0C, 0x11, 0x22, 0x33, 0x44, 0x01}
	c, err := advertising.Parse(data)
	require.NoError(t, err)
	require.Equal(t, uint16(3210), c.Discriminator)
	require.NotNil(t, c.VendorID)
	require.Equal(t, uint16(0x2211), *c.VendorID)
	require.NotNil(t, c.ProductID)
	require.Equal(t, uint16(0x4433), *c.ProductID)
	require.Equal(t, advertising.FlagAdditionalData, c.Flags)
}

func TestParseRejectsShortBuffer(t *testing.T) {
	_, err := advertising.Parse(make([]byte, 7))
	require.Error(t, err)
}

func TestParseRejectsWrongOpcode(t *testing.T) {
	data := []byte{0x01, 0xD2, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00}
	_, err := advertising.Parse(data)
	require.Error(t, err)
}

func TestParseRejectsNonZeroVersion(t *testing.T) {
	data := []byte{0x00, 0xD2, 0x14, 0x00, 0x00, 0x00, 0x00, 0x00}
	_, err := advertising.Parse(data)
	require.Error(t, err)
}

func TestParseRejectsReservedFlagBits(t *testing.T) {
	data := []byte{0x00, 0xD2, 0x04, 0x00, 0x00, 0x00, 0x00, 0x02}
	_, err := advertising.Parse(data)
	require.Error(t, err)
}
