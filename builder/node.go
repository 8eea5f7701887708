package builder

import "github.com/CodingCat/tree-lite/model"

type nodeKind int

// A draft node starts empty and is assigned exactly once, becoming
// either a test node or a leaf node. There is no transition out of
// an assigned state.
const (
	kindEmpty nodeKind = iota
	kindTest
	kindLeaf
)

// draftNode is a node under construction. Only the fields matching
// kind are meaningful; structural links (parent, storage index) are
// not kept here, they are derived during the commit walk.
type draftNode struct {
	kind nodeKind

	// test fields
	splitIndex  int
	op          model.Operator
	threshold   float64
	defaultLeft bool
	leftKey     int
	rightKey    int

	// leaf fields
	leafValue float64
}
