package exchange

import "github.com/xendarboh/chipoble/endian"

// ExchangeFlags carries the initiator/acknowledgement/reliability/
// secured-extensions/vendor bits of an exchange header (§3.2).
type ExchangeFlags uint8

const (
	FlagInitiator         ExchangeFlags = 0b0000_0001
	FlagAcknowledgement   ExchangeFlags = 0b0000_0010
	FlagReliability       ExchangeFlags = 0b0000_0100
	FlagSecuredExtensions ExchangeFlags = 0b0000_1000
	FlagVendor            ExchangeFlags = 0b0001_0000
	flagsKnownMask        ExchangeFlags = FlagInitiator | FlagAcknowledgement | FlagReliability | FlagSecuredExtensions | FlagVendor
)

// Header is the Matter exchange/protocol header (§3.2, §4.5).
type Header struct {
	Flags      ExchangeFlags
	OpCode     ProtocolOpCode
	Exchange   uint16
	AckCounter *uint32
}

// Parse decodes an exchange header from the front of buf, returning the
// header and the unconsumed remainder (extensions, payload).
func Parse(buf []byte) (Header, []byte, error) {
	r := endian.NewReader(buf)

	rawFlags, err := r.ReadU8()
	if err != nil {
		return Header{}, nil, newDecodeError(ErrTruncated, "exchange flags: %w", err)
	}
	flags := ExchangeFlags(rawFlags)
	if flags&^flagsKnownMask != 0 {
		return Header{}, nil, newDecodeError(ErrInvalidFlags, "unknown exchange bits 0x%x", rawFlags&^uint8(flagsKnownMask))
	}

	opcodeByte, err := r.ReadU8()
	if err != nil {
		return Header{}, nil, newDecodeError(ErrTruncated, "protocol opcode: %w", err)
	}

	exchangeID, err := r.ReadU16()
	if err != nil {
		return Header{}, nil, newDecodeError(ErrTruncated, "exchange id: %w", err)
	}

	protocolID, err := r.ReadU16()
	if err != nil {
		return Header{}, nil, newDecodeError(ErrTruncated, "protocol id: %w", err)
	}

	var opCode ProtocolOpCode
	if flags&FlagVendor != 0 {
		vendorID, err := r.ReadU16()
		if err != nil {
			return Header{}, nil, newDecodeError(ErrTruncated, "vendor id: %w", err)
		}
		opCode, err = vendorOpcode(vendorID, protocolID, opcodeByte)
		if err != nil {
			return Header{}, nil, err
		}
	} else {
		opCode, err = resolveOpcode(protocolID, opcodeByte)
		if err != nil {
			return Header{}, nil, err
		}
	}

	var ackCounter *uint32
	if flags&FlagAcknowledgement != 0 {
		v, err := r.ReadU32()
		if err != nil {
			return Header{}, nil, newDecodeError(ErrTruncated, "ack counter: %w", err)
		}
		ackCounter = &v
	}

	rest, err := r.Read(r.Remaining())
	if err != nil {
		return Header{}, nil, newDecodeError(ErrTruncated, "remainder: %w", err)
	}

	return Header{
		Flags:      flags,
		OpCode:     opCode,
		Exchange:   exchangeID,
		AckCounter: ackCounter,
	}, rest, nil
}

// SkipExtensionsIfPresent advances past a u16-length-prefixed secured
// extensions block when SecuredExtensions is set, without interpreting
// its contents (spec §9 open question: deferred to the secure channel).
func (h Header) SkipExtensionsIfPresent(r *endian.Reader) error {
	if h.Flags&FlagSecuredExtensions == 0 {
		return nil
	}
	n, err := r.ReadU16()
	if err != nil {
		return newDecodeError(ErrTruncated, "secured extensions length: %w", err)
	}
	if err := r.Skip(int(n)); err != nil {
		return newDecodeError(ErrTruncated, "secured extensions body: %w", err)
	}
	return nil
}

// Serialize derives the vendor/acknowledgement flag bits from OpCode and
// AckCounter, then emits the header fields in wire order.
func (h Header) Serialize(w endian.Writer) error {
	flags := h.Flags &^ (FlagVendor | FlagAcknowledgement)
	if h.OpCode.Family == FamilyVendor {
		flags |= FlagVendor
	}
	if h.AckCounter != nil {
		flags |= FlagAcknowledgement
	}

	if err := w.WriteU8(uint8(flags)); err != nil {
		return err
	}
	if err := w.WriteU8(h.OpCode.opcodeByte()); err != nil {
		return err
	}
	if err := w.WriteU16(h.Exchange); err != nil {
		return err
	}
	if err := w.WriteU16(h.OpCode.protocolID()); err != nil {
		return err
	}
	if h.OpCode.Family == FamilyVendor {
		if err := w.WriteU16(h.OpCode.VendorID); err != nil {
			return err
		}
	}
	if h.AckCounter != nil {
		if err := w.WriteU32(*h.AckCounter); err != nil {
			return err
		}
	}
	return nil
}
