package protocol

import "fmt"

// Lookups are depth-first, left-to-right, and return the first match. A miss
// is a nil result. Returned pointers alias the tree.

func matchAll(*Node) bool { return true }

// FindNodeExclCond returns the first node below n whose id path relative to n
// equals ids and for which cond is true. With an empty path it returns n
// itself when cond(n) holds.
func (n *Node) FindNodeExclCond(ids []uint16, cond func(*Node) bool) *Node {
	if len(ids) == 0 {
		if cond(n) {
			return n
		}
		return nil
	}
	for i := range n.Children {
		c := &n.Children[i]
		if c.ID != ids[0] {
			continue
		}
		if found := c.FindNodeExclCond(ids[1:], cond); found != nil {
			return found
		}
	}
	return nil
}

// FindNodeExcl is FindNodeExclCond without a predicate.
func (n *Node) FindNodeExcl(ids []uint16) *Node {
	return n.FindNodeExclCond(ids, matchAll)
}

// FindNodeCond matches ids[0] against n's own id and resolves the rest of
// the path below n. ids must not be empty.
func (n *Node) FindNodeCond(ids []uint16, cond func(*Node) bool) *Node {
	mustPath("FindNode", ids, 1)
	if n.ID != ids[0] {
		return nil
	}
	return n.FindNodeExclCond(ids[1:], cond)
}

// FindNode is FindNodeCond without a predicate.
func (n *Node) FindNode(ids []uint16) *Node {
	return n.FindNodeCond(ids, matchAll)
}

// FindAttributeExcl returns the first attribute whose id is the last element
// of ids, held by a node whose path relative to n is the rest of ids.
// ids must not be empty.
func (n *Node) FindAttributeExcl(ids []uint16) *Attribute {
	mustPath("FindAttributeExcl", ids, 1)
	if len(ids) == 1 {
		for i := range n.Attributes {
			if n.Attributes[i].ID == ids[0] {
				return &n.Attributes[i]
			}
		}
		return nil
	}
	for i := range n.Children {
		c := &n.Children[i]
		if c.ID != ids[0] {
			continue
		}
		if found := c.FindAttributeExcl(ids[1:]); found != nil {
			return found
		}
	}
	return nil
}

// FindAttribute matches ids[0] against n's own id and resolves the rest with
// FindAttributeExcl. ids must hold at least two elements.
func (n *Node) FindAttribute(ids []uint16) *Attribute {
	mustPath("FindAttribute", ids, 2)
	if n.ID != ids[0] {
		return nil
	}
	return n.FindAttributeExcl(ids[1:])
}

func mustPath(op string, ids []uint16, min int) {
	if len(ids) < min {
		panic(fmt.Sprintf("protocol: %s requires an id path of at least %d, got %d", op, min, len(ids)))
	}
}
