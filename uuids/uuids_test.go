package uuids_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xendarboh/chipoble/uuids"
)

func TestStringFormat(t *testing.T) {
	require.Equal(t, "0000FFF6-0000-1000-8000-00805F9B34FB", uuids.MatterService.String())
	require.Equal(t, "18EE2EF5-263D-4559-959F-4F9C429F9D11", uuids.WriteCharacteristic.String())
	require.Equal(t, "18EE2EF5-263D-4559-959F-4F9C429F9D12", uuids.ReadCharacteristic.String())
	require.Equal(t, "64630238-8772-45F2-B87D-748A83218F04", uuids.CommissioningDataCharacteristic.String())
}
