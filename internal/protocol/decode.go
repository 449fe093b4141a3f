package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Limits constrains decode memory use. A zero field means unlimited.
type Limits struct {
	MaxAttributeBytes uint32
	MaxDepth          int
}

func DefaultLimits() Limits {
	return Limits{
		MaxAttributeBytes: 16 * 1024 * 1024,
		MaxDepth:          64,
	}
}

// Values above this size are read incrementally so a hostile length field
// cannot force a single huge allocation.
const eagerValueLen = 64 * 1024

// Decode reads one complete message tree from r without limits.
func Decode(r io.Reader) (Node, error) {
	return DecodeWithLimits(r, Limits{})
}

// DecodeWithLimits reads one complete message tree from r.
//
// A clean end of stream before the first byte of a message is returned as
// io.EOF. Any end of stream after that is ErrTruncated. Other read errors
// are returned unchanged.
func DecodeWithLimits(r io.Reader, limits Limits) (Node, error) {
	var head [lengthSize]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Node{}, io.EOF
		}
		return Node{}, truncated(err)
	}
	if l := binary.LittleEndian.Uint32(head[:]); l != markerStart {
		return Node{}, fmt.Errorf("%w: got %#08x", ErrUnexpectedMarker, l)
	}
	id, err := readUint16(r)
	if err != nil {
		return Node{}, err
	}

	// Explicit parent stack; stack[len-1] is the node being filled.
	stack := []Node{{ID: id}}
	for {
		l, err := readUint32(r)
		if err != nil {
			return Node{}, err
		}
		switch {
		case l == markerStart:
			if limits.MaxDepth > 0 && len(stack) >= limits.MaxDepth {
				return Node{}, ErrTooDeep
			}
			childID, err := readUint16(r)
			if err != nil {
				return Node{}, err
			}
			stack = append(stack, Node{ID: childID})
		case l == markerEnd:
			done := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return done, nil
			}
			parent := &stack[len(stack)-1]
			parent.Children = append(parent.Children, done)
		case l < idSize:
			return Node{}, fmt.Errorf("%w: length=%d", ErrShortAttribute, l)
		default:
			valueLen := l - idSize
			if limits.MaxAttributeBytes > 0 && valueLen > limits.MaxAttributeBytes {
				return Node{}, fmt.Errorf("%w: %d bytes", ErrAttributeTooLarge, valueLen)
			}
			attrID, err := readUint16(r)
			if err != nil {
				return Node{}, err
			}
			value, err := readValue(r, valueLen)
			if err != nil {
				return Node{}, err
			}
			top := &stack[len(stack)-1]
			top.Attributes = append(top.Attributes, Attribute{ID: attrID, Value: value})
		}
	}
}

func readUint16(r io.Reader) (uint16, error) {
	var buf [idSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, truncated(err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [lengthSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, truncated(err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readValue(r io.Reader, n uint32) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	if n <= eagerValueLen {
		value := make([]byte, n)
		if _, err := io.ReadFull(r, value); err != nil {
			return nil, truncated(err)
		}
		return value, nil
	}
	var buf bytes.Buffer
	copied, err := io.CopyN(&buf, r, int64(n))
	if err != nil {
		return nil, truncated(err)
	}
	if copied != int64(n) {
		return nil, ErrTruncated
	}
	return buf.Bytes(), nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
