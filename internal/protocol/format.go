package protocol

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Format writes an indented, human-readable rendering of n to w.
func Format(w io.Writer, n *Node) error {
	var b strings.Builder
	formatNode(&b, n, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

// String renders the tree the same way as Format.
func (n Node) String() string {
	var b strings.Builder
	formatNode(&b, &n, 0)
	return b.String()
}

func formatNode(b *strings.Builder, n *Node, indent int) {
	pad := strings.Repeat("  ", indent)
	fmt.Fprintf(b, "%sNode, ID = %#x [\n", pad, n.ID)
	for _, attr := range n.Attributes {
		fmt.Fprintf(b, "%s  %s\n", pad, attr.String())
	}
	for i := range n.Children {
		formatNode(b, &n.Children[i], indent+1)
		b.WriteByte('\n')
	}
	b.WriteString(pad)
	b.WriteByte(']')
}

// String shows the raw payload plus every interpretation that fits it.
func (a Attribute) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attribute, ID = %#x, Value = %v", a.ID, a.Value)
	switch len(a.Value) {
	case 1:
		fmt.Fprintf(&b, ", as_u8 = %d", a.Value[0])
	case 2:
		v, _ := a.Uint16()
		fmt.Fprintf(&b, ", as_u16 = %d", v)
	case 4:
		v, _ := a.Float32()
		fmt.Fprintf(&b, ", as_f32 = %g", v)
	}
	if utf8.Valid(a.Value) {
		fmt.Fprintf(&b, ", as_str = %q", a.Value)
	}
	return b.String()
}
