package protocol

// Wire length sentinels.
const (
	markerStart uint32 = 0x00000000
	markerEnd   uint32 = 0xFFFFFFFF
)

// MaxAttributeValueLen is the largest value that fits the u32 length field
// without colliding with the end-of-node marker.
const MaxAttributeValueLen = 0xFFFFFFFE - 2

// Attribute is one (id, payload) leaf. The payload carries no type; callers
// pick an accessor from fields.go.
type Attribute struct {
	ID    uint16
	Value []byte
}

// Node is a tagged tree element. Attributes and Children keep insertion order
// through Encode/Decode; duplicate ids are legal.
type Node struct {
	ID         uint16
	Attributes []Attribute
	Children   []Node
}

// NewNode builds a node from its id and attributes.
func NewNode(id uint16, attrs ...Attribute) Node {
	return Node{ID: id, Attributes: attrs}
}

// WithChildren returns n with children appended.
func (n Node) WithChildren(children ...Node) Node {
	n.Children = append(n.Children, children...)
	return n
}

// Equal reports structural equality: ids, attribute payloads and ordering.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.ID != o.ID || len(n.Attributes) != len(o.Attributes) || len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Attributes {
		if !n.Attributes[i].Equal(o.Attributes[i]) {
			return false
		}
	}
	for i := range n.Children {
		if !n.Children[i].Equal(&o.Children[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether both attributes carry the same id and payload bytes.
func (a Attribute) Equal(o Attribute) bool {
	if a.ID != o.ID || len(a.Value) != len(o.Value) {
		return false
	}
	for i := range a.Value {
		if a.Value[i] != o.Value[i] {
			return false
		}
	}
	return true
}
