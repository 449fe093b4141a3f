package protocol

import (
	"encoding/binary"
	"io"
)

const (
	lengthSize = 4
	idSize     = 2
)

// Encode writes n and its subtree to w. Nothing is buffered beyond one
// record header; callers that wrap w in a buffer must flush after Encode
// returns.
func Encode(w io.Writer, n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	if err := writeStart(w, n.ID); err != nil {
		return err
	}
	for _, attr := range n.Attributes {
		if err := writeAttribute(w, attr); err != nil {
			return err
		}
	}
	for i := range n.Children {
		if err := Encode(w, &n.Children[i]); err != nil {
			return err
		}
	}
	return writeEnd(w)
}

// EncodedLen returns the number of bytes Encode writes for n, zero for nil.
func EncodedLen(n *Node) int {
	if n == nil {
		return 0
	}
	total := lengthSize + idSize + lengthSize
	for _, attr := range n.Attributes {
		total += lengthSize + idSize + len(attr.Value)
	}
	for i := range n.Children {
		total += EncodedLen(&n.Children[i])
	}
	return total
}

func writeStart(w io.Writer, id uint16) error {
	var buf [lengthSize + idSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], markerStart)
	binary.LittleEndian.PutUint16(buf[4:6], id)
	_, err := w.Write(buf[:])
	return err
}

func writeEnd(w io.Writer) error {
	var buf [lengthSize]byte
	binary.LittleEndian.PutUint32(buf[:], markerEnd)
	_, err := w.Write(buf[:])
	return err
}

func writeAttribute(w io.Writer, attr Attribute) error {
	if uint64(len(attr.Value)) > MaxAttributeValueLen {
		return ErrAttributeTooLarge
	}
	var buf [lengthSize + idSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(attr.Value)+idSize))
	binary.LittleEndian.PutUint16(buf[4:6], attr.ID)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	if len(attr.Value) == 0 {
		return nil
	}
	_, err := w.Write(attr.Value)
	return err
}
