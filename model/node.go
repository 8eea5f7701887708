package model

/*
Node is a single vertex of a committed tree. It is either a leaf
node carrying the tree's additive contribution for samples that
reach it, or a test node comparing a feature value against a
threshold to select one of two children.

All references are positions in the owning Tree's node array. A
Node is a plain value: committed trees hand out copies, so holders
cannot alter the tree they came from.
*/
type Node struct {
	leaf        bool
	parent      int
	leafValue   float64
	splitIndex  int
	op          Operator
	threshold   float64
	defaultLeft bool
	left        int
	right       int
}

// NoParent is the parent index reported by root nodes.
const NoParent = -1

// NewLeafNode returns a leaf node with the given contribution value
// whose parent sits at index parent (NoParent for a root).
func NewLeafNode(value float64, parent int) Node {
	return Node{leaf: true, leafValue: value, parent: parent}
}

// NewTestNode returns a test node comparing feature splitIndex against
// threshold with op. defaultLeft selects the child taken when the
// feature value is missing; left and right are the children's indices
// and parent the parent's (NoParent for a root).
func NewTestNode(splitIndex int, op Operator, threshold float64, defaultLeft bool, left, right, parent int) Node {
	return Node{
		splitIndex:  splitIndex,
		op:          op,
		threshold:   threshold,
		defaultLeft: defaultLeft,
		left:        left,
		right:       right,
		parent:      parent,
	}
}

// IsLeaf returns whether the node is a leaf node.
func (n Node) IsLeaf() bool {
	return n.leaf
}

// IsRoot returns whether the node is the root of its tree.
func (n Node) IsRoot() bool {
	return n.parent == NoParent
}

// Parent returns the index of the node's parent, or NoParent if the
// node is the root of its tree.
func (n Node) Parent() int {
	return n.parent
}

// LeafValue returns the contribution value of a leaf node. It is only
// meaningful when IsLeaf reports true.
func (n Node) LeafValue() float64 {
	return n.leafValue
}

// SplitIndex returns the id of the feature a test node compares.
func (n Node) SplitIndex() int {
	return n.splitIndex
}

// Operator returns the comparison a test node applies.
func (n Node) Operator() Operator {
	return n.op
}

// Threshold returns the value a test node compares the feature against.
func (n Node) Threshold() float64 {
	return n.threshold
}

// DefaultLeft returns whether a test node routes samples with a
// missing feature value to its left child.
func (n Node) DefaultLeft() bool {
	return n.defaultLeft
}

// LeftChild returns the index of a test node's left child.
func (n Node) LeftChild() int {
	return n.left
}

// RightChild returns the index of a test node's right child.
func (n Node) RightChild() int {
	return n.right
}

// DefaultChild returns the index of the child a test node takes when
// the tested feature value is missing.
func (n Node) DefaultChild() int {
	if n.defaultLeft {
		return n.left
	}
	return n.right
}
