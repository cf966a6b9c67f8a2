package matter

import "github.com/xendarboh/chipoble/endian"

const (
	flagsVersionMask   = 0xF0
	flagsVersionV1     = 0x00
	flagsSourcePresent = 0x04
	flagsDestMask      = 0x03
	flagsDestNone      = 0x00
	flagsDestNode      = 0x01
	flagsDestGroup     = 0x02
	flagsDestReserved  = 0x03
)

// SecurityFlags carries the privacy/control/extensions-present bits plus
// the 2-bit session-type subfield of a message header (§3.2).
type SecurityFlags uint8

const (
	SecurityFlagPrivacy           SecurityFlags = 0b1000_0000
	SecurityFlagControl           SecurityFlags = 0b0100_0000
	SecurityFlagExtensionsPresent SecurityFlags = 0b0010_0000
	securityFlagsSessionTypeMask  SecurityFlags = 0b0000_0011
	securityFlagsKnownMask        SecurityFlags = SecurityFlagPrivacy | SecurityFlagControl | SecurityFlagExtensionsPresent | securityFlagsSessionTypeMask
)

// SessionType is the resolved 2-bit session-type subfield.
type SessionType int

const (
	SessionUnicast SessionType = iota
	SessionGroupMulticast
)

// SessionType reports the header's session type, failing for the
// reserved encodings 2 and 3.
func (f SecurityFlags) SessionType() (SessionType, error) {
	switch f & securityFlagsSessionTypeMask {
	case 0:
		return SessionUnicast, nil
	case 1:
		return SessionGroupMulticast, nil
	default:
		return 0, newDecodeError(ErrInvalidSessionType, "reserved session type %d", f&securityFlagsSessionTypeMask)
	}
}

// DestinationKind distinguishes the three destination encodings.
type DestinationKind int

const (
	DestinationNone DestinationKind = iota
	DestinationNode
	DestinationGroup
)

// Destination is the sum type {None, Node(NodeId), Group(GroupId)}.
type Destination struct {
	Kind  DestinationKind
	Node  uint64
	Group uint16
}

// Header is the Matter message header (§3.2, §4.4).
type Header struct {
	Flags       SecurityFlags
	SessionID   uint16
	Source      *uint64 // optional NodeId
	Destination Destination
	Counter     uint32
}

// Parse decodes a message header from the front of buf, returning the
// header and the unconsumed remainder (extensions, payload, MIC).
func Parse(buf []byte) (Header, []byte, error) {
	r := endian.NewReader(buf)

	messageFlags, err := r.ReadU8()
	if err != nil {
		return Header{}, nil, newDecodeError(ErrTruncated, "message flags: %w", err)
	}
	if messageFlags&flagsVersionMask != flagsVersionV1 {
		return Header{}, nil, newDecodeError(ErrInvalidVersion, "version nibble 0x%x", messageFlags&flagsVersionMask)
	}

	sessionID, err := r.ReadU16()
	if err != nil {
		return Header{}, nil, newDecodeError(ErrTruncated, "session id: %w", err)
	}

	rawFlags, err := r.ReadU8()
	if err != nil {
		return Header{}, nil, newDecodeError(ErrTruncated, "security flags: %w", err)
	}
	flags := SecurityFlags(rawFlags)
	if flags&^securityFlagsKnownMask != 0 {
		return Header{}, nil, newDecodeError(ErrInvalidFlags, "unknown security bits 0x%x", rawFlags&^uint8(securityFlagsKnownMask))
	}
	if _, err := flags.SessionType(); err != nil {
		return Header{}, nil, err
	}

	counter, err := r.ReadU32()
	if err != nil {
		return Header{}, nil, newDecodeError(ErrTruncated, "counter: %w", err)
	}

	var source *uint64
	if messageFlags&flagsSourcePresent != 0 {
		v, err := r.ReadU64()
		if err != nil {
			return Header{}, nil, newDecodeError(ErrTruncated, "source node id: %w", err)
		}
		source = &v
	}

	var dest Destination
	switch messageFlags & flagsDestMask {
	case flagsDestNode:
		v, err := r.ReadU64()
		if err != nil {
			return Header{}, nil, newDecodeError(ErrTruncated, "destination node id: %w", err)
		}
		dest = Destination{Kind: DestinationNode, Node: v}
	case flagsDestGroup:
		v, err := r.ReadU16()
		if err != nil {
			return Header{}, nil, newDecodeError(ErrTruncated, "destination group id: %w", err)
		}
		dest = Destination{Kind: DestinationGroup, Group: v}
	case flagsDestReserved:
		return Header{}, nil, newDecodeError(ErrInvalidFlags, "reserved destination kind 0x3")
	default:
		dest = Destination{Kind: DestinationNone}
	}

	rest, err := r.Read(r.Remaining())
	if err != nil {
		return Header{}, nil, newDecodeError(ErrTruncated, "remainder: %w", err)
	}

	return Header{
		Flags:       flags,
		SessionID:   sessionID,
		Source:      source,
		Destination: dest,
		Counter:     counter,
	}, rest, nil
}

// SkipExtensionsIfPresent advances past a u16-length-prefixed extensions
// block when ExtensionsPresent is set, without interpreting its contents
// (spec §9 open question: secured-extension skipping is deferred, so this
// only moves the cursor).
func (h Header) SkipExtensionsIfPresent(r *endian.Reader) error {
	if h.Flags&SecurityFlagExtensionsPresent == 0 {
		return nil
	}
	n, err := r.ReadU16()
	if err != nil {
		return newDecodeError(ErrTruncated, "extensions length: %w", err)
	}
	if err := r.Skip(int(n)); err != nil {
		return newDecodeError(ErrTruncated, "extensions body: %w", err)
	}
	return nil
}

// Serialize reconstructs the message-flags byte from Source/Destination
// and writes the header fields in wire order. It never emits extensions.
func (h Header) Serialize(w endian.Writer) error {
	var messageFlags uint8
	if h.Source != nil {
		messageFlags |= flagsSourcePresent
	}
	switch h.Destination.Kind {
	case DestinationNode:
		messageFlags |= flagsDestNode
	case DestinationGroup:
		messageFlags |= flagsDestGroup
	}

	if err := w.WriteU8(messageFlags); err != nil {
		return err
	}
	if err := w.WriteU16(h.SessionID); err != nil {
		return err
	}
	if err := w.WriteU8(uint8(h.Flags)); err != nil {
		return err
	}
	if err := w.WriteU32(h.Counter); err != nil {
		return err
	}
	if h.Source != nil {
		if err := w.WriteU64(*h.Source); err != nil {
			return err
		}
	}
	switch h.Destination.Kind {
	case DestinationNode:
		if err := w.WriteU64(h.Destination.Node); err != nil {
			return err
		}
	case DestinationGroup:
		if err := w.WriteU16(h.Destination.Group); err != nil {
			return err
		}
	}
	return nil
}
