package tlv

import "unicode/utf8"

// ContainerKind distinguishes the three TLV container types.
type ContainerKind int

const (
	ContainerStructure ContainerKind = iota
	ContainerArray
	ContainerList
)

// ValueKind discriminates the Value sum type (§3.1).
type ValueKind int

const (
	ValueSigned ValueKind = iota
	ValueUnsigned
	ValueBool
	ValueFloat32
	ValueFloat64
	ValueUTF8
	ValueBytes
	ValueNull
	ValueContainerStart
	ValueContainerEnd
)

// Value is a tagged union over the TLV value variants. Byte-slice payloads
// (UTF8/Bytes) borrow from the buffer the record was decoded from.
type Value struct {
	Kind      ValueKind
	Signed    int64
	Unsigned  uint64
	Bool      bool
	Float32   float32
	Float64   float64
	Bytes     []byte
	Container ContainerKind
}

func SignedValue(v int64) Value    { return Value{Kind: ValueSigned, Signed: v} }
func UnsignedValue(v uint64) Value { return Value{Kind: ValueUnsigned, Unsigned: v} }
func BoolValue(v bool) Value       { return Value{Kind: ValueBool, Bool: v} }
func Float32Value(v float32) Value { return Value{Kind: ValueFloat32, Float32: v} }
func Float64Value(v float64) Value { return Value{Kind: ValueFloat64, Float64: v} }
func UTF8Value(b []byte) Value     { return Value{Kind: ValueUTF8, Bytes: b} }
func BytesValue(b []byte) Value    { return Value{Kind: ValueBytes, Bytes: b} }
func NullValue() Value             { return Value{Kind: ValueNull} }
func ContainerStartValue(k ContainerKind) Value {
	return Value{Kind: ValueContainerStart, Container: k}
}
func ContainerEndValue() Value { return Value{Kind: ValueContainerEnd} }

// AsInt64 coerces a Signed/Unsigned value into an int64, failing with
// ConversionFailed when the magnitude does not fit.
func (v Value) AsInt64() (int64, error) {
	switch v.Kind {
	case ValueSigned:
		return v.Signed, nil
	case ValueUnsigned:
		if v.Unsigned > 1<<63-1 {
			return 0, newError(ErrConversionFailed, "unsigned %d does not fit in int64", v.Unsigned)
		}
		return int64(v.Unsigned), nil
	default:
		return 0, newError(ErrInvalidType, "value kind %d is not numeric", v.Kind)
	}
}

// AsUint64 coerces a Signed/Unsigned value into a uint64.
func (v Value) AsUint64() (uint64, error) {
	switch v.Kind {
	case ValueUnsigned:
		return v.Unsigned, nil
	case ValueSigned:
		if v.Signed < 0 {
			return 0, newError(ErrConversionFailed, "signed %d does not fit in uint64", v.Signed)
		}
		return uint64(v.Signed), nil
	default:
		return 0, newError(ErrInvalidType, "value kind %d is not numeric", v.Kind)
	}
}

// AsUint8/16/32, AsInt8/16/32 perform the lossless-width numeric coercion
// required by §4.2: success iff the value is representable in the target
// integer width, equal to the natural cast when it succeeds.

func (v Value) AsUint8() (uint8, error) {
	n, err := v.AsUint64()
	if err != nil {
		return 0, err
	}
	if n > 0xFF {
		return 0, newError(ErrConversionFailed, "%d does not fit in uint8", n)
	}
	return uint8(n), nil
}

func (v Value) AsUint16() (uint16, error) {
	n, err := v.AsUint64()
	if err != nil {
		return 0, err
	}
	if n > 0xFFFF {
		return 0, newError(ErrConversionFailed, "%d does not fit in uint16", n)
	}
	return uint16(n), nil
}

func (v Value) AsUint32() (uint32, error) {
	n, err := v.AsUint64()
	if err != nil {
		return 0, err
	}
	if n > 0xFFFFFFFF {
		return 0, newError(ErrConversionFailed, "%d does not fit in uint32", n)
	}
	return uint32(n), nil
}

func (v Value) AsInt8() (int8, error) {
	n, err := v.AsInt64()
	if err != nil {
		return 0, err
	}
	if n < -128 || n > 127 {
		return 0, newError(ErrConversionFailed, "%d does not fit in int8", n)
	}
	return int8(n), nil
}

func (v Value) AsInt16() (int16, error) {
	n, err := v.AsInt64()
	if err != nil {
		return 0, err
	}
	if n < -32768 || n > 32767 {
		return 0, newError(ErrConversionFailed, "%d does not fit in int16", n)
	}
	return int16(n), nil
}

func (v Value) AsInt32() (int32, error) {
	n, err := v.AsInt64()
	if err != nil {
		return 0, err
	}
	if n < -2147483648 || n > 2147483647 {
		return 0, newError(ErrConversionFailed, "%d does not fit in int32", n)
	}
	return int32(n), nil
}

// AsBool requires a Bool value.
func (v Value) AsBool() (bool, error) {
	if v.Kind != ValueBool {
		return false, newError(ErrInvalidType, "value kind %d is not bool", v.Kind)
	}
	return v.Bool, nil
}

// AsFloat32 requires a Float32 value; narrowing from Float64 is rejected.
func (v Value) AsFloat32() (float32, error) {
	if v.Kind != ValueFloat32 {
		return 0, newError(ErrInvalidType, "value kind %d is not float32", v.Kind)
	}
	return v.Float32, nil
}

// AsFloat64 coerces Float32 or Float64 into a float64; float32 widens
// without precision loss.
func (v Value) AsFloat64() (float64, error) {
	switch v.Kind {
	case ValueFloat32:
		return float64(v.Float32), nil
	case ValueFloat64:
		return v.Float64, nil
	default:
		return 0, newError(ErrInvalidType, "value kind %d is not float", v.Kind)
	}
}

// AsBytes coerces Bytes or UTF8 into a borrowed byte slice.
func (v Value) AsBytes() ([]byte, error) {
	switch v.Kind {
	case ValueBytes, ValueUTF8:
		return v.Bytes, nil
	default:
		return nil, newError(ErrInvalidType, "value kind %d is not bytes", v.Kind)
	}
}

// AsString requires a UTF8 value and validates the bytes form valid UTF-8.
func (v Value) AsString() (string, error) {
	if v.Kind != ValueUTF8 {
		return "", newError(ErrInvalidType, "value kind %d is not utf8", v.Kind)
	}
	if !utf8.Valid(v.Bytes) {
		return "", newError(ErrInvalidUtf8, "utf8 payload is not valid UTF-8")
	}
	return string(v.Bytes), nil
}

// IsNull reports whether v is the Null variant.
func (v Value) IsNull() bool {
	return v.Kind == ValueNull
}
