package builder

import "fmt"

// Usage errors reported synchronously by builder calls. A call that
// fails with one of these leaves the builder exactly as it was.
var (
	// ErrTreeIndexOutOfRange is returned when a tree index does not
	// address a tree in the builder.
	ErrTreeIndexOutOfRange = fmt.Errorf("tree index out of range")
	// ErrDuplicateNodeKey is returned by CreateNode when the key is
	// already taken within the addressed tree.
	ErrDuplicateNodeKey = fmt.Errorf("node key already exists")
	// ErrNodeNotFound is returned when a node key does not address a
	// node in the addressed tree.
	ErrNodeNotFound = fmt.Errorf("node key not found")
	// ErrNodeNotEmpty is returned when assigning a type to a node
	// that has already been made a test or leaf node.
	ErrNodeNotEmpty = fmt.Errorf("node has already been assigned")
	// ErrSameChildKeys is returned by SetTestNode when the left and
	// right child keys are identical.
	ErrSameChildKeys = fmt.Errorf("left and right child keys are identical")
	// ErrFeatureOutOfRange is returned by SetTestNode when the
	// feature id is negative or not below the builder's feature count.
	ErrFeatureOutOfRange = fmt.Errorf("feature id out of range")
)

// StructuralKind enumerates the tree-level defects Commit can find.
type StructuralKind int

const (
	// MissingRoot: the tree has no root designated.
	MissingRoot StructuralKind = iota
	// DanglingChild: a test node declares a child key that does not
	// exist in the tree.
	DanglingChild
	// SharedChild: two test nodes declare the same key as a child.
	SharedChild
	// Cycle: a test node declares one of its own ancestors as a child.
	Cycle
	// OrphanedNode: a node is not reachable from the root.
	OrphanedNode
	// EmptyNode: a reachable node was never made a test or leaf node.
	EmptyNode
)

func (k StructuralKind) String() string {
	switch k {
	case MissingRoot:
		return "no root node designated"
	case DanglingChild:
		return "child key does not exist"
	case SharedChild:
		return "key is a child of more than one node"
	case Cycle:
		return "key is an ancestor of its own parent"
	case OrphanedNode:
		return "node is not reachable from the root"
	case EmptyNode:
		return "node was never assigned a type"
	}
	return "unknown structural defect"
}

/*
StructuralError describes why Commit rejected a tree. Tree is the
position of the offending tree within the builder; Key is the node
key the defect was found at, or NoKey when the defect is not tied to
a node (a missing root).
*/
type StructuralError struct {
	Kind StructuralKind
	Tree int
	Key  int
}

// NoKey is the Key of a StructuralError that concerns a whole tree
// rather than a single node.
const NoKey = -1

func (e *StructuralError) Error() string {
	if e.Key == NoKey {
		return fmt.Sprintf("tree %d: %v", e.Tree, e.Kind)
	}
	return fmt.Sprintf("tree %d: node %d: %v", e.Tree, e.Key, e.Kind)
}
