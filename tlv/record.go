package tlv

import (
	"io"

	"github.com/xendarboh/chipoble/endian"
)

// Record is one (tag, value) pair yielded by the stream decoder (§3.1).
type Record struct {
	Tag   Tag
	Value Value
}

// Decoder is a lazy, forward-only, zero-copy record iterator over a byte
// buffer (C3). It never allocates for string/byte payloads: the returned
// slices alias the buffer passed to NewDecoder.
//
// Once Next reports false with a non-nil Err, the decoder is fused: every
// subsequent call returns the same terminal error.
type Decoder struct {
	r   *endian.Reader
	cur Record
	err error
}

// NewDecoder wraps buf for lazy record iteration.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{r: endian.NewReader(buf)}
}

// Err returns the terminal decode error, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Record returns the record most recently yielded by Next.
func (d *Decoder) Record() Record {
	return d.cur
}

// Next advances to the next record and reports whether one was produced.
// It returns false both at a clean end of buffer (Err() == nil) and on a
// malformed encoding (Err() != nil); callers distinguish the two by
// checking Err().
func (d *Decoder) Next() bool {
	if d.err != nil {
		return false
	}
	rec, err := d.decodeOne()
	if err == io.EOF {
		return false
	}
	if err != nil {
		d.err = err
		return false
	}
	d.cur = rec
	return true
}

func (d *Decoder) decodeOne() (Record, error) {
	if d.r.Remaining() == 0 {
		return Record{}, io.EOF
	}

	tag, err := d.decodeTag()
	if err != nil {
		return Record{}, err
	}

	value, err := d.decodeValue()
	if err != nil {
		return Record{}, err
	}

	return Record{Tag: tag, Value: value}, nil
}

func (d *Decoder) decodeTag() (Tag, error) {
	kindByte, err := d.r.ReadU8()
	if err != nil {
		return Tag{}, newError(ErrInvalidData, "truncated tag control byte: %v", err)
	}

	switch TagKind(kindByte) {
	case TagAnonymous:
		return AnonymousTag(), nil
	case TagContextSpecific:
		v, err := d.r.ReadU8()
		if err != nil {
			return Tag{}, newError(ErrInvalidData, "truncated context tag: %v", err)
		}
		return ContextTag(v), nil
	case TagImplicit:
		v, err := d.r.ReadU32()
		if err != nil {
			return Tag{}, newError(ErrInvalidData, "truncated implicit tag: %v", err)
		}
		return ImplicitTag(v), nil
	case TagFull:
		vendor, err := d.r.ReadU16()
		if err != nil {
			return Tag{}, newError(ErrInvalidData, "truncated full tag vendor id: %v", err)
		}
		profile, err := d.r.ReadU16()
		if err != nil {
			return Tag{}, newError(ErrInvalidData, "truncated full tag profile id: %v", err)
		}
		tagNum, err := d.r.ReadU32()
		if err != nil {
			return Tag{}, newError(ErrInvalidData, "truncated full tag number: %v", err)
		}
		return FullTag(vendor, profile, tagNum), nil
	default:
		return Tag{}, newError(ErrInvalidData, "unknown tag kind byte 0x%02x", kindByte)
	}
}

func (d *Decoder) decodeValue() (Value, error) {
	kindByte, err := d.r.ReadU8()
	if err != nil {
		return Value{}, newError(ErrInvalidData, "truncated value control byte: %v", err)
	}

	switch ValueKind(kindByte) {
	case ValueSigned:
		v, err := d.r.ReadU64()
		if err != nil {
			return Value{}, newError(ErrInvalidData, "truncated signed value: %v", err)
		}
		return SignedValue(int64(v)), nil
	case ValueUnsigned:
		v, err := d.r.ReadU64()
		if err != nil {
			return Value{}, newError(ErrInvalidData, "truncated unsigned value: %v", err)
		}
		return UnsignedValue(v), nil
	case ValueBool:
		v, err := d.r.ReadU8()
		if err != nil {
			return Value{}, newError(ErrInvalidData, "truncated bool value: %v", err)
		}
		return BoolValue(v != 0), nil
	case ValueFloat32:
		v, err := d.r.ReadU32()
		if err != nil {
			return Value{}, newError(ErrInvalidData, "truncated float32 value: %v", err)
		}
		return Float32Value(float32FromBits(v)), nil
	case ValueFloat64:
		v, err := d.r.ReadU64()
		if err != nil {
			return Value{}, newError(ErrInvalidData, "truncated float64 value: %v", err)
		}
		return Float64Value(float64FromBits(v)), nil
	case ValueUTF8:
		b, err := d.readLengthPrefixed()
		if err != nil {
			return Value{}, err
		}
		return UTF8Value(b), nil
	case ValueBytes:
		b, err := d.readLengthPrefixed()
		if err != nil {
			return Value{}, err
		}
		return BytesValue(b), nil
	case ValueNull:
		return NullValue(), nil
	case ValueContainerStart:
		ck, err := d.r.ReadU8()
		if err != nil {
			return Value{}, newError(ErrInvalidData, "truncated container kind: %v", err)
		}
		if ck > uint8(ContainerList) {
			return Value{}, newError(ErrInvalidData, "unknown container kind byte 0x%02x", ck)
		}
		return ContainerStartValue(ContainerKind(ck)), nil
	case ValueContainerEnd:
		return ContainerEndValue(), nil
	default:
		return Value{}, newError(ErrInvalidData, "unknown value kind byte 0x%02x", kindByte)
	}
}

func (d *Decoder) readLengthPrefixed() ([]byte, error) {
	n, err := d.r.ReadU32()
	if err != nil {
		return nil, newError(ErrInvalidData, "truncated length prefix: %v", err)
	}
	b, err := d.r.Read(int(n))
	if err != nil {
		return nil, newError(ErrInvalidData, "truncated payload of length %d: %v", n, err)
	}
	return b, nil
}
