package protocol

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"testing/quick"
)

func TestAttributeConstructorsLittleEndian(t *testing.T) {
	cases := []struct {
		name string
		attr Attribute
		want []byte
	}{
		{"u8", NewAttributeUint8(1, 0xAB), []byte{0xAB}},
		{"u16", NewAttributeUint16(1, 0x1234), []byte{0x34, 0x12}},
		{"u32", NewAttributeUint32(1, 0x12345678), []byte{0x78, 0x56, 0x34, 0x12}},
		{"i16", NewAttributeInt16(1, -2), []byte{0xFE, 0xFF}},
		{"f32", NewAttributeFloat32(1, 1.0), []byte{0x00, 0x00, 0x80, 0x3F}},
		{"str", NewAttributeString(1, "Zusi"), []byte("Zusi")},
		{"bytes", NewAttributeBytes(1, []byte{9, 8}), []byte{9, 8}},
	}
	for _, tc := range cases {
		if !bytes.Equal(tc.attr.Value, tc.want) {
			t.Fatalf("%s: got=% x want=% x", tc.name, tc.attr.Value, tc.want)
		}
	}
}

func TestNewAttributeBytesCopiesInput(t *testing.T) {
	src := []byte{1, 2, 3}
	attr := NewAttributeBytes(7, src)
	src[0] = 0xFF
	if attr.Value[0] != 1 {
		t.Fatalf("attribute shares caller buffer")
	}
}

func TestAccessorsRoundTrip(t *testing.T) {
	u8 := func(id uint16, v uint8) bool {
		got, err := NewAttributeUint8(id, v).Uint8()
		return err == nil && got == v
	}
	u16 := func(id uint16, v uint16) bool {
		got, err := NewAttributeUint16(id, v).Uint16()
		return err == nil && got == v
	}
	u32 := func(id uint16, v uint32) bool {
		got, err := NewAttributeUint32(id, v).Uint32()
		return err == nil && got == v
	}
	i16 := func(id uint16, v int16) bool {
		got, err := NewAttributeInt16(id, v).Int16()
		return err == nil && got == v
	}
	f32 := func(id uint16, v float32) bool {
		got, err := NewAttributeFloat32(id, v).Float32()
		return err == nil && math.Float32bits(got) == math.Float32bits(v)
	}
	str := func(id uint16, v string) bool {
		got, err := NewAttributeString(id, v).Text()
		return err == nil && got == v
	}
	for name, fn := range map[string]any{"u8": u8, "u16": u16, "u32": u32, "i16": i16, "f32": f32, "str": str} {
		if err := quick.Check(fn, nil); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}

func TestAccessorsRejectShortPayload(t *testing.T) {
	empty := Attribute{ID: 1}
	one := Attribute{ID: 1, Value: []byte{1}}
	three := Attribute{ID: 1, Value: []byte{1, 2, 3}}

	if _, err := empty.Uint8(); !errors.Is(err, ErrShortValue) {
		t.Fatalf("u8: expected ErrShortValue, got %v", err)
	}
	if _, err := one.Uint16(); !errors.Is(err, ErrShortValue) {
		t.Fatalf("u16: expected ErrShortValue, got %v", err)
	}
	if _, err := one.Int16(); !errors.Is(err, ErrShortValue) {
		t.Fatalf("i16: expected ErrShortValue, got %v", err)
	}
	if _, err := three.Float32(); !errors.Is(err, ErrShortValue) || !errors.Is(err, ErrDecode) {
		t.Fatalf("f32: expected ErrShortValue, got %v", err)
	}
	if _, err := three.Uint32(); !errors.Is(err, ErrShortValue) {
		t.Fatalf("u32: expected ErrShortValue, got %v", err)
	}
}

func TestAccessorsIgnoreExcessBytes(t *testing.T) {
	attr := Attribute{ID: 1, Value: []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}}
	if v, err := attr.Uint8(); err != nil || v != 0x01 {
		t.Fatalf("u8: got=%#x err=%v", v, err)
	}
	if v, err := attr.Uint16(); err != nil || v != 0x0201 {
		t.Fatalf("u16: got=%#x err=%v", v, err)
	}
	if v, err := attr.Uint32(); err != nil || v != 0x04030201 {
		t.Fatalf("u32: got=%#x err=%v", v, err)
	}
}

func TestTextRejectsInvalidUTF8(t *testing.T) {
	attr := Attribute{ID: 1, Value: []byte{0xFF, 0xFE}}
	if _, err := attr.Text(); !errors.Is(err, ErrInvalidUTF8) || !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	umlaut := NewAttributeString(1, "Geschwindigkeit km/h ä")
	if s, err := umlaut.Text(); err != nil || s != "Geschwindigkeit km/h ä" {
		t.Fatalf("unexpected text=%q err=%v", s, err)
	}
}
