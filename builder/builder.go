/*
Package builder implements incremental, out-of-order construction of
decision tree ensembles.

A Builder owns an ordered collection of tree drafts. Within a draft,
nodes are addressed by caller-chosen integer keys, created empty, and
later assigned exactly once as either a test node or a leaf node;
child keys may be declared before the nodes they name exist. Commit
validates every draft (single designated root, every node reachable,
no dangling child references, no cycles or shared children, no node
left unassigned) and compacts the sparse key space into the dense,
index-addressed, immutable trees of a model.Model. Commit is
all-or-nothing across trees and leaves the drafts editable.

A Builder has no concurrency contract: it is meant to be driven by a
single logical owner, and embedding code that needs shared access
must serialize calls itself.
*/
package builder

import (
	"fmt"

	"github.com/CodingCat/tree-lite/model"
)

// Builder assembles an ensemble tree by tree and node by node.
type Builder struct {
	numFeatures int
	trees       []*treeDraft
}

/*
New returns an empty Builder for ensembles over numFeatures input
features; the bound is enforced on every SetTestNode call. An error
is returned if numFeatures is not positive.
*/
func New(numFeatures int) (*Builder, error) {
	if numFeatures <= 0 {
		return nil, fmt.Errorf("number of features must be positive, got %d", numFeatures)
	}
	return &Builder{numFeatures: numFeatures}, nil
}

// NumFeatures returns the feature-count bound the builder was
// created with.
func (b *Builder) NumFeatures() int {
	return b.numFeatures
}

// NumTrees returns the number of tree drafts in the builder.
func (b *Builder) NumTrees() int {
	return len(b.trees)
}

/*
CreateTree inserts a new empty tree draft at the given position,
shifting later trees up by one, and returns the position of the new
tree. Passing -1 appends the tree at the end. It returns -1 and an
error if index is outside 0..NumTrees.
*/
func (b *Builder) CreateTree(index int) (int, error) {
	if index == -1 {
		index = len(b.trees)
	}
	if index < 0 || index > len(b.trees) {
		return -1, fmt.Errorf("creating tree at %d: %w", index, ErrTreeIndexOutOfRange)
	}
	b.trees = append(b.trees, nil)
	copy(b.trees[index+1:], b.trees[index:])
	b.trees[index] = newTreeDraft()
	return index, nil
}

// DeleteTree removes the tree draft at index, shifting later trees
// down by one.
func (b *Builder) DeleteTree(index int) error {
	if index < 0 || index >= len(b.trees) {
		return fmt.Errorf("deleting tree %d: %w", index, ErrTreeIndexOutOfRange)
	}
	b.trees = append(b.trees[:index], b.trees[index+1:]...)
	return nil
}

// CreateNode inserts an empty node with the given key into the tree
// at treeIndex. The key must not already be taken in that tree.
func (b *Builder) CreateNode(treeIndex, key int) error {
	td, err := b.tree(treeIndex)
	if err == nil {
		err = td.createNode(key)
	}
	if err != nil {
		return fmt.Errorf("tree %d: creating node %d: %w", treeIndex, key, err)
	}
	return nil
}

/*
DeleteNode removes the node with the given key from the tree at
treeIndex, clearing the tree's root designation if that node was the
root. Deletion never cascades: any test node still declaring key as
a child is left with a dangling reference, which Commit reports
rather than repairs.
*/
func (b *Builder) DeleteNode(treeIndex, key int) error {
	td, err := b.tree(treeIndex)
	if err == nil {
		err = td.deleteNode(key)
	}
	if err != nil {
		return fmt.Errorf("tree %d: deleting node %d: %w", treeIndex, key, err)
	}
	return nil
}

// SetRootNode designates the node with the given key as the root of
// the tree at treeIndex, replacing any previous designation.
func (b *Builder) SetRootNode(treeIndex, key int) error {
	td, err := b.tree(treeIndex)
	if err == nil {
		err = td.setRoot(key)
	}
	if err != nil {
		return fmt.Errorf("tree %d: setting node %d as root: %w", treeIndex, key, err)
	}
	return nil
}

/*
SetTestNode turns the empty node at key in the tree at treeIndex
into a test node evaluating [feature splitIndex] op [threshold].
defaultLeft picks the child taken when the feature value is missing.
leftKey and rightKey name the children within the same tree; they
need not exist yet, they are resolved at Commit. The call fails if
the node does not exist or is no longer empty, if splitIndex is
outside the builder's feature bound, or if the two child keys are
identical.
*/
func (b *Builder) SetTestNode(treeIndex, key, splitIndex int, op model.Operator, threshold float64, defaultLeft bool, leftKey, rightKey int) error {
	err := func() error {
		td, err := b.tree(treeIndex)
		if err != nil {
			return err
		}
		if splitIndex < 0 || splitIndex >= b.numFeatures {
			return fmt.Errorf("feature %d: %w", splitIndex, ErrFeatureOutOfRange)
		}
		if leftKey == rightKey {
			return fmt.Errorf("child key %d: %w", leftKey, ErrSameChildKeys)
		}
		n, err := td.emptyNode(key)
		if err != nil {
			return err
		}
		n.kind = kindTest
		n.splitIndex = splitIndex
		n.op = op
		n.threshold = threshold
		n.defaultLeft = defaultLeft
		n.leftKey = leftKey
		n.rightKey = rightKey
		return nil
	}()
	if err != nil {
		return fmt.Errorf("tree %d: setting node %d as test node: %w", treeIndex, key, err)
	}
	return nil
}

// SetLeafNode turns the empty node at key in the tree at treeIndex
// into a leaf node with the given contribution value.
func (b *Builder) SetLeafNode(treeIndex, key int, value float64) error {
	err := func() error {
		td, err := b.tree(treeIndex)
		if err != nil {
			return err
		}
		n, err := td.emptyNode(key)
		if err != nil {
			return err
		}
		n.kind = kindLeaf
		n.leafValue = value
		return nil
	}()
	if err != nil {
		return fmt.Errorf("tree %d: setting node %d as leaf node: %w", treeIndex, key, err)
	}
	return nil
}

/*
Commit validates every tree draft and, only if all pass, returns a
committed model holding a compacted copy of the ensemble. On failure
the returned error carries the first structural defect found (a
*StructuralError naming the tree and node) and no model is produced.
Commit never consumes the drafts: the builder remains fully editable
afterwards, whether the commit succeeded or not, and the returned
model's lifetime is independent of the builder's.
*/
func (b *Builder) Commit() (*model.Model, error) {
	trees := make([]model.Tree, len(b.trees))
	for i, td := range b.trees {
		t, err := td.commit(i)
		if err != nil {
			return nil, err
		}
		trees[i] = t
	}
	return model.New(b.numFeatures, trees)
}

func (b *Builder) tree(index int) (*treeDraft, error) {
	if index < 0 || index >= len(b.trees) {
		return nil, ErrTreeIndexOutOfRange
	}
	return b.trees[index], nil
}
