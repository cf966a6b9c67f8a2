package tlv

import "github.com/xendarboh/chipoble/endian"

// Encoder serializes (Tag, Value) records using the same layout Decoder
// consumes, so that parse-then-serialize round-trips bit-exactly (§4.9).
type Encoder struct {
	w endian.Writer
}

// NewEncoder wraps w (a fixed SliceWriter or a SizeEstimator) for emitting
// records.
func NewEncoder(w endian.Writer) *Encoder {
	return &Encoder{w: w}
}

// EmitRecord writes one (tag, value) pair.
func (e *Encoder) EmitRecord(rec Record) error {
	if err := e.emitTag(rec.Tag); err != nil {
		return err
	}
	return e.emitValue(rec.Value)
}

func (e *Encoder) emitTag(t Tag) error {
	if err := e.w.WriteU8(uint8(t.Kind)); err != nil {
		return err
	}
	switch t.Kind {
	case TagAnonymous:
		return nil
	case TagContextSpecific:
		return e.w.WriteU8(t.Context)
	case TagImplicit:
		return e.w.WriteU32(t.Implicit)
	case TagFull:
		if err := e.w.WriteU16(t.VendorID); err != nil {
			return err
		}
		if err := e.w.WriteU16(t.ProfileID); err != nil {
			return err
		}
		return e.w.WriteU32(t.Full)
	default:
		return newError(ErrInternal, "unknown tag kind %d", t.Kind)
	}
}

func (e *Encoder) emitValue(v Value) error {
	if err := e.w.WriteU8(uint8(v.Kind)); err != nil {
		return err
	}
	switch v.Kind {
	case ValueSigned:
		return e.w.WriteU64(uint64(v.Signed))
	case ValueUnsigned:
		return e.w.WriteU64(v.Unsigned)
	case ValueBool:
		var b uint8
		if v.Bool {
			b = 1
		}
		return e.w.WriteU8(b)
	case ValueFloat32:
		return e.w.WriteU32(float32ToBits(v.Float32))
	case ValueFloat64:
		return e.w.WriteU64(float64ToBits(v.Float64))
	case ValueUTF8, ValueBytes:
		if err := e.w.WriteU32(uint32(len(v.Bytes))); err != nil {
			return err
		}
		return e.w.Write(v.Bytes)
	case ValueNull:
		return nil
	case ValueContainerStart:
		return e.w.WriteU8(uint8(v.Container))
	case ValueContainerEnd:
		return nil
	default:
		return newError(ErrInternal, "unknown value kind %d", v.Kind)
	}
}

// EncodedSize reports the serialized length of recs without allocating the
// destination buffer, by running the encoder against a SizeEstimator.
func EncodedSize(recs []Record) (int, error) {
	var est endian.SizeEstimator
	enc := NewEncoder(&est)
	for _, r := range recs {
		if err := enc.EmitRecord(r); err != nil {
			return 0, err
		}
	}
	return est.Len(), nil
}
