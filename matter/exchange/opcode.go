package exchange

// ProtocolFamily discriminates the four standard protocol ids plus the
// vendor-scoped escape hatch (§3.2).
type ProtocolFamily int

const (
	FamilySecureChannel ProtocolFamily = iota
	FamilyInteractionModel
	FamilyBdx
	FamilyUserDirectedCommissioning
	FamilyVendor
)

// Standard protocol ids, per §4.5 opcode resolution.
const (
	ProtocolIDSecureChannel               uint16 = 0
	ProtocolIDInteractionModel            uint16 = 1
	ProtocolIDBdx                         uint16 = 2
	ProtocolIDUserDirectedCommissioning   uint16 = 3
)

// SecureChannelOpcode is the opcode set of the secure-channel protocol.
type SecureChannelOpcode uint8

const (
	SCMessageCounterSyncRequest  SecureChannelOpcode = 0x00
	SCMessageCounterSyncResponse SecureChannelOpcode = 0x01
	SCMrpStandaloneAck           SecureChannelOpcode = 0x10
	SCPbkdfParamRequest          SecureChannelOpcode = 0x20
	SCPbkdfParamResponse         SecureChannelOpcode = 0x21
	SCPasePake1                  SecureChannelOpcode = 0x22
	SCPasePake2                  SecureChannelOpcode = 0x23
	SCPasePake3                  SecureChannelOpcode = 0x24
	SCCaseSigma1                 SecureChannelOpcode = 0x30
	SCCaseSigma2                 SecureChannelOpcode = 0x31
	SCCaseSigma3                 SecureChannelOpcode = 0x32
	SCCaseSigma2Resume           SecureChannelOpcode = 0x33
	SCStatusReport               SecureChannelOpcode = 0x40
)

func parseSecureChannelOpcode(b uint8) (SecureChannelOpcode, error) {
	switch SecureChannelOpcode(b) {
	case SCMessageCounterSyncRequest, SCMessageCounterSyncResponse, SCMrpStandaloneAck,
		SCPbkdfParamRequest, SCPbkdfParamResponse, SCPasePake1, SCPasePake2, SCPasePake3,
		SCCaseSigma1, SCCaseSigma2, SCCaseSigma3, SCCaseSigma2Resume, SCStatusReport:
		return SecureChannelOpcode(b), nil
	default:
		return 0, newDecodeError(ErrUnknownOpCode, "secure channel opcode 0x%02x", b)
	}
}

// InteractionModelOpcode is the opcode set of the interaction-model protocol.
type InteractionModelOpcode uint8

const (
	IMStatusResponse    InteractionModelOpcode = 0x01
	IMReadRequest       InteractionModelOpcode = 0x02
	IMSubscribeRequest  InteractionModelOpcode = 0x03
	IMSubscribeResponse InteractionModelOpcode = 0x04
	IMReportData        InteractionModelOpcode = 0x05
	IMWriteRequest       InteractionModelOpcode = 0x06
	IMWriteResponse      InteractionModelOpcode = 0x07
	IMInvokeRequest      InteractionModelOpcode = 0x08
	IMInvokeResponse     InteractionModelOpcode = 0x09
	IMTimedRequest       InteractionModelOpcode = 0x0A
)

func parseInteractionModelOpcode(b uint8) (InteractionModelOpcode, error) {
	switch InteractionModelOpcode(b) {
	case IMStatusResponse, IMReadRequest, IMSubscribeRequest, IMSubscribeResponse, IMReportData,
		IMWriteRequest, IMWriteResponse, IMInvokeRequest, IMInvokeResponse, IMTimedRequest:
		return InteractionModelOpcode(b), nil
	default:
		return 0, newDecodeError(ErrUnknownOpCode, "interaction model opcode 0x%02x", b)
	}
}

// BdxOpcode is the opcode set of the bulk data exchange protocol.
type BdxOpcode uint8

const (
	BdxSendInit           BdxOpcode = 0x01
	BdxSendAccept         BdxOpcode = 0x02
	BdxReceiveInit        BdxOpcode = 0x04
	BdxReceiveAccept      BdxOpcode = 0x05
	BdxBlockQuery         BdxOpcode = 0x10
	BdxBlock              BdxOpcode = 0x11
	BdxBlockEOF           BdxOpcode = 0x12
	BdxBlockAck           BdxOpcode = 0x13
	BdxBlockAckEOF        BdxOpcode = 0x14
	BdxBlockQueryWithSkip BdxOpcode = 0x15
)

func parseBdxOpcode(b uint8) (BdxOpcode, error) {
	switch BdxOpcode(b) {
	case BdxSendInit, BdxSendAccept, BdxReceiveInit, BdxReceiveAccept, BdxBlockQuery,
		BdxBlock, BdxBlockEOF, BdxBlockAck, BdxBlockAckEOF, BdxBlockQueryWithSkip:
		return BdxOpcode(b), nil
	default:
		return 0, newDecodeError(ErrUnknownOpCode, "bdx opcode 0x%02x", b)
	}
}

// UserDirectedCommissioningOpcode is the opcode set of the UDC protocol.
type UserDirectedCommissioningOpcode uint8

const (
	UDCIdentificationDeclaration UserDirectedCommissioningOpcode = 0x00
)

func parseUDCOpcode(b uint8) (UserDirectedCommissioningOpcode, error) {
	switch UserDirectedCommissioningOpcode(b) {
	case UDCIdentificationDeclaration:
		return UserDirectedCommissioningOpcode(b), nil
	default:
		return 0, newDecodeError(ErrUnknownOpCode, "user directed commissioning opcode 0x%02x", b)
	}
}

// ProtocolOpCode is the sum type over the four standard protocol families
// plus the vendor-scoped escape hatch (§3.2).
type ProtocolOpCode struct {
	Family ProtocolFamily

	SecureChannel             SecureChannelOpcode
	InteractionModel          InteractionModelOpcode
	Bdx                       BdxOpcode
	UserDirectedCommissioning UserDirectedCommissioningOpcode

	VendorID     uint16
	VendorProtocolID uint16
	VendorOpcode uint8
}

func resolveOpcode(protocolID uint16, opcode uint8) (ProtocolOpCode, error) {
	switch protocolID {
	case ProtocolIDSecureChannel:
		op, err := parseSecureChannelOpcode(opcode)
		if err != nil {
			return ProtocolOpCode{}, err
		}
		return ProtocolOpCode{Family: FamilySecureChannel, SecureChannel: op}, nil
	case ProtocolIDInteractionModel:
		op, err := parseInteractionModelOpcode(opcode)
		if err != nil {
			return ProtocolOpCode{}, err
		}
		return ProtocolOpCode{Family: FamilyInteractionModel, InteractionModel: op}, nil
	case ProtocolIDBdx:
		op, err := parseBdxOpcode(opcode)
		if err != nil {
			return ProtocolOpCode{}, err
		}
		return ProtocolOpCode{Family: FamilyBdx, Bdx: op}, nil
	case ProtocolIDUserDirectedCommissioning:
		op, err := parseUDCOpcode(opcode)
		if err != nil {
			return ProtocolOpCode{}, err
		}
		return ProtocolOpCode{Family: FamilyUserDirectedCommissioning, UserDirectedCommissioning: op}, nil
	default:
		return ProtocolOpCode{}, newDecodeError(ErrUnknownProtocolId, "protocol id %d", protocolID)
	}
}

func vendorOpcode(vendorID, protocolID uint16, opcode uint8) (ProtocolOpCode, error) {
	if vendorID == 0 {
		return ProtocolOpCode{}, newDecodeError(ErrInvalidVendorId, "vendor id 0 is reserved")
	}
	return ProtocolOpCode{
		Family:           FamilyVendor,
		VendorID:         vendorID,
		VendorProtocolID: protocolID,
		VendorOpcode:     opcode,
	}, nil
}

// protocolID reports the wire protocol id for serialization.
func (p ProtocolOpCode) protocolID() uint16 {
	switch p.Family {
	case FamilySecureChannel:
		return ProtocolIDSecureChannel
	case FamilyInteractionModel:
		return ProtocolIDInteractionModel
	case FamilyBdx:
		return ProtocolIDBdx
	case FamilyUserDirectedCommissioning:
		return ProtocolIDUserDirectedCommissioning
	case FamilyVendor:
		return p.VendorProtocolID
	default:
		return 0
	}
}

// opcodeByte reports the wire opcode byte for serialization.
func (p ProtocolOpCode) opcodeByte() uint8 {
	switch p.Family {
	case FamilySecureChannel:
		return uint8(p.SecureChannel)
	case FamilyInteractionModel:
		return uint8(p.InteractionModel)
	case FamilyBdx:
		return uint8(p.Bdx)
	case FamilyUserDirectedCommissioning:
		return uint8(p.UserDirectedCommissioning)
	case FamilyVendor:
		return p.VendorOpcode
	default:
		return 0
	}
}
