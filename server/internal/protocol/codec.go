package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is a payload that can be written to and read from a frame body.
// Bodies use the protobuf wire format; field numbers are local to this server.
type Message interface {
	AppendWire(b []byte) []byte
	UnmarshalWire(b []byte) error
}

var errWireType = errors.New("unexpected wire type")

// Marshal encodes m into a fresh buffer.
func Marshal(m Message) []byte {
	if m == nil {
		return nil
	}
	return m.AppendWire(nil)
}

// Unmarshal decodes b into m.
func Unmarshal(b []byte, m Message) error {
	return m.UnmarshalWire(b)
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	return appendUint(b, num, uint64(int64(v)))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, m Message) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.AppendWire(nil))
}

type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

func (f field) uint32() (uint32, error) {
	if f.typ != protowire.VarintType {
		return 0, fmt.Errorf("field %d: %w", f.num, errWireType)
	}
	return uint32(f.varint), nil
}

func (f field) uint64() (uint64, error) {
	if f.typ != protowire.VarintType {
		return 0, fmt.Errorf("field %d: %w", f.num, errWireType)
	}
	return f.varint, nil
}

func (f field) int32() (int32, error) {
	if f.typ != protowire.VarintType {
		return 0, fmt.Errorf("field %d: %w", f.num, errWireType)
	}
	return int32(f.varint), nil
}

func (f field) string() (string, error) {
	if f.typ != protowire.BytesType {
		return "", fmt.Errorf("field %d: %w", f.num, errWireType)
	}
	return string(f.bytes), nil
}

func (f field) message(m Message) error {
	if f.typ != protowire.BytesType {
		return fmt.Errorf("field %d: %w", f.num, errWireType)
	}
	if err := m.UnmarshalWire(f.bytes); err != nil {
		return fmt.Errorf("field %d: %w", f.num, err)
	}
	return nil
}

// walkFields visits every known-shape field in b. Unknown wire types are
// skipped so newer clients can add fields without breaking older servers.
func walkFields(b []byte, visit func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.varint = v
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.bytes = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}

		if err := visit(f); err != nil {
			return err
		}
	}
	return nil
}
