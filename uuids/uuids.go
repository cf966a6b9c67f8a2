// Package uuids exposes the fixed 128-bit BLE service and characteristic
// identities a CHIPoBLE transport adapter matches against during GATT
// discovery (§6). Discovery itself is external to this module.
package uuids

import (
	"encoding/hex"
	"strings"
)

// UUID is a 128-bit identifier in standard big-endian byte order.
type UUID [16]byte

// String formats u in canonical 8-4-4-4-12 hex form, matching the
// upper-case convention of the fixed identities in §6.
func (u UUID) String() string {
	h := strings.ToUpper(hex.EncodeToString(u[:]))
	return h[0:8] + "-" + h[8:12] + "-" + h[12:16] + "-" + h[16:20] + "-" + h[20:32]
}

var (
	// MatterService is the primary GATT service advertised by a
	// CHIPoBLE-capable peripheral.
	MatterService = UUID{0x00, 0x00, 0xFF, 0xF6, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0x80, 0x5F, 0x9B, 0x34, 0xFB}

	// WriteCharacteristic is the characteristic the central writes BTP
	// frames to.
	WriteCharacteristic = UUID{0x18, 0xEE, 0x2E, 0xF5, 0x26, 0x3D, 0x45, 0x59, 0x95, 0x9F, 0x4F, 0x9C, 0x42, 0x9F, 0x9D, 0x11}

	// ReadCharacteristic is the characteristic the peripheral notifies
	// BTP frames on.
	ReadCharacteristic = UUID{0x18, 0xEE, 0x2E, 0xF5, 0x26, 0x3D, 0x45, 0x59, 0x95, 0x9F, 0x4F, 0x9C, 0x42, 0x9F, 0x9D, 0x12}

	// CommissioningDataCharacteristic carries additional commissioning
	// data referenced by the advertising payload's additional-data flag.
	CommissioningDataCharacteristic = UUID{0x64, 0x63, 0x02, 0x38, 0x87, 0x72, 0x45, 0xF2, 0xB8, 0x7D, 0x74, 0x8A, 0x83, 0x21, 0x8F, 0x04}
)
