package protocol

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// NewAttributeBytes creates an attribute carrying a copy of v.
func NewAttributeBytes(id uint16, v []byte) Attribute {
	buf := make([]byte, len(v))
	copy(buf, v)
	return Attribute{ID: id, Value: buf}
}

// NewAttributeUint8 creates a one-byte attribute.
func NewAttributeUint8(id uint16, v uint8) Attribute {
	return Attribute{ID: id, Value: []byte{v}}
}

// NewAttributeUint16 creates a little-endian uint16 attribute.
func NewAttributeUint16(id uint16, v uint16) Attribute {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return Attribute{ID: id, Value: buf}
}

// NewAttributeUint32 creates a little-endian uint32 attribute.
func NewAttributeUint32(id uint16, v uint32) Attribute {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return Attribute{ID: id, Value: buf}
}

// NewAttributeInt16 creates a two's-complement little-endian int16 attribute.
func NewAttributeInt16(id uint16, v int16) Attribute {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, uint16(v))
	return Attribute{ID: id, Value: buf}
}

// NewAttributeFloat32 creates an IEEE-754 binary32 little-endian attribute.
func NewAttributeFloat32(id uint16, v float32) Attribute {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	return Attribute{ID: id, Value: buf}
}

// NewAttributeString creates an attribute holding the UTF-8 bytes of v,
// without terminator or length prefix.
func NewAttributeString(id uint16, v string) Attribute {
	return Attribute{ID: id, Value: []byte(v)}
}

// The numeric accessors read the leading bytes of the payload and ignore the
// rest. A payload shorter than the type width is ErrShortValue.

// Uint8 returns the first payload byte.
func (a Attribute) Uint8() (uint8, error) {
	if len(a.Value) < 1 {
		return 0, ErrShortValue
	}
	return a.Value[0], nil
}

// Uint16 returns the payload as little-endian uint16.
func (a Attribute) Uint16() (uint16, error) {
	if len(a.Value) < 2 {
		return 0, ErrShortValue
	}
	return binary.LittleEndian.Uint16(a.Value), nil
}

// Uint32 returns the payload as little-endian uint32.
func (a Attribute) Uint32() (uint32, error) {
	if len(a.Value) < 4 {
		return 0, ErrShortValue
	}
	return binary.LittleEndian.Uint32(a.Value), nil
}

// Int16 returns the payload as little-endian int16.
func (a Attribute) Int16() (int16, error) {
	v, err := a.Uint16()
	return int16(v), err
}

// Float32 returns the payload as little-endian binary32.
func (a Attribute) Float32() (float32, error) {
	v, err := a.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Text returns the payload as a string. It fails with ErrInvalidUTF8 when
// the payload is not valid UTF-8.
func (a Attribute) Text() (string, error) {
	if !utf8.Valid(a.Value) {
		return "", ErrInvalidUTF8
	}
	return string(a.Value), nil
}
