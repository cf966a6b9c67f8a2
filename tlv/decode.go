package tlv

// DecodeEnd is the outcome of a MergeDecode call (§4.3): a container's
// merge-decode either consumed its own container_end (DataConsumed) or
// ran off the stream while still open (StreamFinished, always an error
// one level up).
type DecodeEnd int

const (
	DataConsumed DecodeEnd = iota
	StreamFinished
)

// MergeDecodable is implemented by a structured type that can merge-decode
// itself from a record sequence positioned on its opening record (a
// container_start for container types, or the scalar record itself for
// leaf types).
//
// dec MUST already have a current record (dec.Record() valid) when
// MergeDecode is called; container implementations advance dec themselves
// until they consume their matching container_end.
type MergeDecodable interface {
	MergeDecode(dec *Decoder) (DecodeEnd, error)
}

// Decode implements the top-level decode operation (§4.3): advances dec to
// its first record, verifies it opens a structure container, merge-decodes
// into v, and confirms the stream is thereafter exhausted.
func Decode(dec *Decoder, v MergeDecodable) error {
	if !dec.Next() {
		if err := dec.Err(); err != nil {
			return err
		}
		return newError(ErrInvalidData, "empty stream, expected structure")
	}

	cur := dec.Record()
	if cur.Value.Kind != ValueContainerStart || cur.Value.Container != ContainerStructure {
		return newError(ErrInvalidData, "expected top-level structure container_start")
	}

	end, err := v.MergeDecode(dec)
	if err != nil {
		return err
	}
	if end != DataConsumed {
		return newError(ErrInvalidNesting, "top-level structure not closed")
	}

	if dec.Next() {
		return newError(ErrInvalidNesting, "trailing records after top-level structure")
	}
	if err := dec.Err(); err != nil {
		return err
	}
	return nil
}

// FieldDispatcher routes one inner record of a container, by tag, to the
// merge-decoder for the matching field. It returns (DataConsumed, nil) for
// an unrecognized tag having skipped the full value (§4.3 field binding).
type FieldDispatcher func(tag Tag, dec *Decoder) (DecodeEnd, error)

// MergeDecodeContainer implements the common container merge-decode loop
// shared by every hand-written structured/array/list type: validate the
// opening container_start, then repeatedly advance and dispatch by tag
// until the matching container_end, skipping unrecognized tags in full.
func MergeDecodeContainer(dec *Decoder, kind ContainerKind, dispatch FieldDispatcher) (DecodeEnd, error) {
	cur := dec.Record()
	if cur.Value.Kind != ValueContainerStart || cur.Value.Container != kind {
		return 0, newError(ErrInvalidData, "expected container_start(%d)", kind)
	}

	for {
		if !dec.Next() {
			if err := dec.Err(); err != nil {
				return 0, err
			}
			return StreamFinished, nil
		}

		rec := dec.Record()
		if rec.Value.Kind == ValueContainerEnd {
			return DataConsumed, nil
		}

		end, err := dispatch(rec.Tag, dec)
		if err != nil {
			return 0, err
		}
		if end != DataConsumed {
			return 0, newError(ErrInvalidNesting, "field decode left stream open")
		}
	}
}

// SkipValue consumes the full value currently positioned under dec
// (scalar: just the current record; container: every record through its
// matching container_end, including nested containers), so the stream
// stays balanced after an unrecognized tag.
func SkipValue(dec *Decoder) (DecodeEnd, error) {
	cur := dec.Record()
	if cur.Value.Kind != ValueContainerStart {
		return DataConsumed, nil
	}

	depth := 1
	for depth > 0 {
		if !dec.Next() {
			if err := dec.Err(); err != nil {
				return 0, err
			}
			return StreamFinished, nil
		}
		switch dec.Record().Value.Kind {
		case ValueContainerStart:
			depth++
		case ValueContainerEnd:
			depth--
		}
	}
	return DataConsumed, nil
}

// DecodeScalar merge-decodes a non-container record via apply, which
// receives the record's value. It is the leaf-field building block for
// hand-written structured types.
func DecodeScalar(dec *Decoder, apply func(Value) error) (DecodeEnd, error) {
	cur := dec.Record()
	if cur.Value.Kind == ValueContainerStart || cur.Value.Kind == ValueContainerEnd {
		return 0, newError(ErrInvalidData, "expected scalar value, got container marker")
	}
	if err := apply(cur.Value); err != nil {
		return 0, err
	}
	return DataConsumed, nil
}

// DecodeOptionalScalar merge-decodes an optional leaf field: a Null value
// clears it (none), anything else decodes through decodeSome and sets it
// (some). Later records with the same tag overwrite per last-wins (§4.3).
func DecodeOptionalScalar(dec *Decoder, clear func(), decodeSome func(Value) error) (DecodeEnd, error) {
	cur := dec.Record()
	if cur.Value.IsNull() {
		clear()
		return DataConsumed, nil
	}
	if cur.Value.Kind == ValueContainerStart || cur.Value.Kind == ValueContainerEnd {
		return 0, newError(ErrInvalidData, "expected scalar value, got container marker")
	}
	if err := decodeSome(cur.Value); err != nil {
		return 0, err
	}
	return DataConsumed, nil
}
