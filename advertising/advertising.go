// Package advertising parses the commissionable advertising payload
// broadcast over BLE by a Matter device during onboarding (§6, §8.2
// scenario 1).
package advertising

import (
	"fmt"

	"github.com/xendarboh/chipoble/endian"
)

const commissionableOpcode = 0x00

// Flags carries the commissionable payload's reserved-must-be-zero flag
// byte; only AdditionalData is currently defined.
type Flags uint8

const (
	FlagAdditionalData Flags = 0x01
	flagsKnownMask     Flags = FlagAdditionalData
)

// Error reports a malformed advertising payload.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("advertising: %s", e.Msg) }

func newError(format string, a ...interface{}) error {
	return &Error{Msg: fmt.Sprintf(format, a...)}
}

// Commissionable is the parsed 8-byte commissionable advertising payload.
type Commissionable struct {
	Discriminator uint16 // 12-bit
	VendorID      *uint16
	ProductID     *uint16
	Flags         Flags
}

// Parse decodes an 8-byte commissionable advertising payload. Any opcode
// other than 0x00, a non-zero version nibble, or a set reserved flag bit
// is rejected.
func Parse(data []byte) (Commissionable, error) {
	if len(data) < 8 {
		return Commissionable{}, newError("payload too short: %d bytes", len(data))
	}

	r := endian.NewReader(data)

	opcode, err := r.ReadU8()
	if err != nil {
		return Commissionable{}, newError("opcode: %v", err)
	}
	if opcode != commissionableOpcode {
		return Commissionable{}, newError("unsupported opcode 0x%02x, only 0x00 (commissionable) is supported", opcode)
	}

	versionAndDiscriminator, err := r.ReadU16()
	if err != nil {
		return Commissionable{}, newError("version/discriminator: %v", err)
	}
	version := (versionAndDiscriminator >> 12) & 0x0F
	if version != 0 {
		return Commissionable{}, newError("unsupported commissionable payload version %d", version)
	}
	discriminator := versionAndDiscriminator & 0x0FFF

	rawVendor, err := r.ReadU16()
	if err != nil {
		return Commissionable{}, newError("vendor id: %v", err)
	}
	rawProduct, err := r.ReadU16()
	if err != nil {
		return Commissionable{}, newError("product id: %v", err)
	}
	rawFlags, err := r.ReadU8()
	if err != nil {
		return Commissionable{}, newError("flags: %v", err)
	}
	if Flags(rawFlags)&^flagsKnownMask != 0 {
		return Commissionable{}, newError("reserved flag bits set: 0x%02x", rawFlags&^uint8(flagsKnownMask))
	}

	var vendorID, productID *uint16
	if rawVendor != 0 {
		vendorID = &rawVendor
	}
	if rawProduct != 0 {
		productID = &rawProduct
	}

	return Commissionable{
		Discriminator: discriminator,
		VendorID:      vendorID,
		ProductID:     productID,
		Flags:         Flags(rawFlags),
	}, nil
}
