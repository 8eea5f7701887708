package builder_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodingCat/tree-lite/builder"
	"github.com/CodingCat/tree-lite/model"
)

// newStumpBuilder returns a builder over 4 features holding one
// finished tree: a root testing feature 3 <= 0.5 with two leaf
// children valued -0.2 and 0.7.
func newStumpBuilder(t *testing.T) *builder.Builder {
	t.Helper()
	b, err := builder.New(4)
	require.NoError(t, err)
	_, err = b.CreateTree(-1)
	require.NoError(t, err)
	for _, key := range []int{0, 1, 2} {
		require.NoError(t, b.CreateNode(0, key))
	}
	require.NoError(t, b.SetRootNode(0, 0))
	require.NoError(t, b.SetTestNode(0, 0, 3, model.LE, 0.5, true, 1, 2))
	require.NoError(t, b.SetLeafNode(0, 1, -0.2))
	require.NoError(t, b.SetLeafNode(0, 2, 0.7))
	return b
}

// addLeafOnlyTree creates a tree at the given position whose single
// node is a root leaf with the given value, and returns its position.
func addLeafOnlyTree(t *testing.T, b *builder.Builder, index int, value float64) int {
	t.Helper()
	pos, err := b.CreateTree(index)
	require.NoError(t, err)
	require.NoError(t, b.CreateNode(pos, 0))
	require.NoError(t, b.SetRootNode(pos, 0))
	require.NoError(t, b.SetLeafNode(pos, 0, value))
	return pos
}

func structuralError(t *testing.T, err error) *builder.StructuralError {
	t.Helper()
	var serr *builder.StructuralError
	require.ErrorAs(t, err, &serr)
	return serr
}

func TestNewRejectsNonPositiveFeatureCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		b, err := builder.New(n)
		assert.Error(t, err)
		assert.Nil(t, b)
	}
}

func TestCommitStump(t *testing.T) {
	b := newStumpBuilder(t)
	m, err := b.Commit()
	require.NoError(t, err)
	require.Equal(t, 1, m.NumTrees())
	assert.Equal(t, 4, m.NumFeatures())

	tree := m.At(0)
	require.Equal(t, 3, tree.Len())
	root := tree.Root()
	require.False(t, root.IsLeaf())
	assert.True(t, root.IsRoot())
	assert.Equal(t, model.NoParent, root.Parent())
	assert.Equal(t, 3, root.SplitIndex())
	assert.Equal(t, model.LE, root.Operator())
	assert.Equal(t, 0.5, root.Threshold())
	assert.True(t, root.DefaultLeft())
	assert.Equal(t, 1, root.LeftChild())
	assert.Equal(t, 2, root.RightChild())
	assert.Equal(t, 1, root.DefaultChild())

	left, right := tree.At(1), tree.At(2)
	require.True(t, left.IsLeaf())
	require.True(t, right.IsLeaf())
	assert.Equal(t, -0.2, left.LeafValue())
	assert.Equal(t, 0.7, right.LeafValue())
	assert.Equal(t, 0, left.Parent())
	assert.Equal(t, 0, right.Parent())
	assert.Equal(t, 2, tree.LeafCount())
}

func TestCreateTreeInsertionOrder(t *testing.T) {
	b, err := builder.New(1)
	require.NoError(t, err)

	pos := addLeafOnlyTree(t, b, -1, 1.0)
	assert.Equal(t, 0, pos)
	pos = addLeafOnlyTree(t, b, -1, 2.0)
	assert.Equal(t, 1, pos)
	pos = addLeafOnlyTree(t, b, 0, 3.0)
	assert.Equal(t, 0, pos)

	m, err := b.Commit()
	require.NoError(t, err)
	require.Equal(t, 3, m.NumTrees())
	values := make([]float64, 0, 3)
	for i := 0; i < m.NumTrees(); i++ {
		values = append(values, m.At(i).Root().LeafValue())
	}
	assert.Equal(t, []float64{3.0, 1.0, 2.0}, values)
}

func TestCreateTreeIndexOutOfRange(t *testing.T) {
	b, err := builder.New(1)
	require.NoError(t, err)
	for _, index := range []int{1, 5, -2} {
		pos, err := b.CreateTree(index)
		assert.ErrorIs(t, err, builder.ErrTreeIndexOutOfRange)
		assert.Equal(t, -1, pos)
	}
	assert.Equal(t, 0, b.NumTrees())
}

func TestDeleteTree(t *testing.T) {
	b, err := builder.New(1)
	require.NoError(t, err)
	addLeafOnlyTree(t, b, -1, 1.0)

	require.NoError(t, b.DeleteTree(0))
	assert.Equal(t, 0, b.NumTrees())

	pos, err := b.CreateTree(-1)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	assert.ErrorIs(t, b.DeleteTree(1), builder.ErrTreeIndexOutOfRange)
	assert.ErrorIs(t, b.DeleteTree(-1), builder.ErrTreeIndexOutOfRange)
}

func TestDeleteTreeShiftsLaterTrees(t *testing.T) {
	b, err := builder.New(1)
	require.NoError(t, err)
	addLeafOnlyTree(t, b, -1, 1.0)
	addLeafOnlyTree(t, b, -1, 2.0)
	addLeafOnlyTree(t, b, -1, 3.0)

	require.NoError(t, b.DeleteTree(1))
	m, err := b.Commit()
	require.NoError(t, err)
	require.Equal(t, 2, m.NumTrees())
	assert.Equal(t, 1.0, m.At(0).Root().LeafValue())
	assert.Equal(t, 3.0, m.At(1).Root().LeafValue())
}

func TestCreateNodeDuplicateKey(t *testing.T) {
	b, err := builder.New(1)
	require.NoError(t, err)
	_, err = b.CreateTree(-1)
	require.NoError(t, err)
	require.NoError(t, b.CreateNode(0, 7))

	assert.ErrorIs(t, b.CreateNode(0, 7), builder.ErrDuplicateNodeKey)

	require.NoError(t, b.SetRootNode(0, 7))
	require.NoError(t, b.SetLeafNode(0, 7, 1.0))
	m, err := b.Commit()
	require.NoError(t, err)
	assert.Equal(t, 1, m.At(0).Len())
}

func TestCreateNodeInvalidTree(t *testing.T) {
	b, err := builder.New(1)
	require.NoError(t, err)
	assert.ErrorIs(t, b.CreateNode(0, 0), builder.ErrTreeIndexOutOfRange)
}

func TestSetNodeTypeTwiceFails(t *testing.T) {
	b, err := builder.New(2)
	require.NoError(t, err)
	_, err = b.CreateTree(-1)
	require.NoError(t, err)
	require.NoError(t, b.CreateNode(0, 0))
	require.NoError(t, b.SetRootNode(0, 0))
	require.NoError(t, b.SetLeafNode(0, 0, 1.5))

	assert.ErrorIs(t, b.SetLeafNode(0, 0, 9.9), builder.ErrNodeNotEmpty)
	assert.ErrorIs(t, b.SetTestNode(0, 0, 1, model.LT, 0.0, false, 1, 2), builder.ErrNodeNotEmpty)

	m, err := b.Commit()
	require.NoError(t, err)
	assert.Equal(t, 1.5, m.At(0).Root().LeafValue())
}

func TestSetLeafNodeOnMissingKey(t *testing.T) {
	b, err := builder.New(1)
	require.NoError(t, err)
	_, err = b.CreateTree(-1)
	require.NoError(t, err)
	assert.ErrorIs(t, b.SetLeafNode(0, 42, 1.0), builder.ErrNodeNotFound)
}

func TestSetTestNodePreconditions(t *testing.T) {
	b, err := builder.New(4)
	require.NoError(t, err)
	_, err = b.CreateTree(-1)
	require.NoError(t, err)
	require.NoError(t, b.CreateNode(0, 0))

	assert.ErrorIs(t, b.SetTestNode(0, 0, 0, model.LT, 0.0, false, 1, 1), builder.ErrSameChildKeys)
	assert.ErrorIs(t, b.SetTestNode(0, 0, 4, model.LT, 0.0, false, 1, 2), builder.ErrFeatureOutOfRange)
	assert.ErrorIs(t, b.SetTestNode(0, 0, -1, model.LT, 0.0, false, 1, 2), builder.ErrFeatureOutOfRange)
	assert.ErrorIs(t, b.SetTestNode(0, 9, 0, model.LT, 0.0, false, 1, 2), builder.ErrNodeNotFound)

	// the node at key 0 must still be empty after the failed calls
	assert.NoError(t, b.SetLeafNode(0, 0, 1.0))
}

func TestDeleteNodeClearsRootDesignation(t *testing.T) {
	b := newStumpBuilder(t)
	require.NoError(t, b.DeleteNode(0, 0))

	_, err := b.Commit()
	serr := structuralError(t, err)
	assert.Equal(t, builder.MissingRoot, serr.Kind)
	assert.Equal(t, 0, serr.Tree)
	assert.Equal(t, builder.NoKey, serr.Key)
}

func TestDeleteNodeMissingKey(t *testing.T) {
	b := newStumpBuilder(t)
	assert.ErrorIs(t, b.DeleteNode(0, 42), builder.ErrNodeNotFound)
}

func TestSetRootNodeReplacesPrevious(t *testing.T) {
	b, err := builder.New(1)
	require.NoError(t, err)
	_, err = b.CreateTree(-1)
	require.NoError(t, err)
	require.NoError(t, b.CreateNode(0, 1))
	require.NoError(t, b.CreateNode(0, 2))
	require.NoError(t, b.SetLeafNode(0, 1, 1.0))
	require.NoError(t, b.SetRootNode(0, 1))
	require.NoError(t, b.SetRootNode(0, 2))

	// node 1 is now unreachable: the root moved to node 2
	require.NoError(t, b.DeleteNode(0, 1))
	require.NoError(t, b.SetLeafNode(0, 2, 2.0))
	m, err := b.Commit()
	require.NoError(t, err)
	assert.Equal(t, 2.0, m.At(0).Root().LeafValue())

	assert.ErrorIs(t, b.SetRootNode(0, 42), builder.ErrNodeNotFound)
}

func TestCommitDanglingChild(t *testing.T) {
	b, err := builder.New(2)
	require.NoError(t, err)
	_, err = b.CreateTree(-1)
	require.NoError(t, err)
	require.NoError(t, b.CreateNode(0, 0))
	require.NoError(t, b.CreateNode(0, 1))
	require.NoError(t, b.SetRootNode(0, 0))
	require.NoError(t, b.SetTestNode(0, 0, 0, model.LT, 1.0, false, 1, 2))
	require.NoError(t, b.SetLeafNode(0, 1, 1.0))

	_, err = b.Commit()
	serr := structuralError(t, err)
	assert.Equal(t, builder.DanglingChild, serr.Kind)
	assert.Equal(t, 2, serr.Key)
}

func TestCommitSharedChild(t *testing.T) {
	b, err := builder.New(2)
	require.NoError(t, err)
	_, err = b.CreateTree(-1)
	require.NoError(t, err)
	for key := 0; key <= 5; key++ {
		require.NoError(t, b.CreateNode(0, key))
	}
	require.NoError(t, b.SetRootNode(0, 0))
	require.NoError(t, b.SetTestNode(0, 0, 0, model.LT, 1.0, false, 1, 2))
	require.NoError(t, b.SetTestNode(0, 1, 1, model.GE, 2.0, false, 3, 4))
	require.NoError(t, b.SetTestNode(0, 2, 1, model.GE, 3.0, false, 3, 5))
	for _, key := range []int{3, 4, 5} {
		require.NoError(t, b.SetLeafNode(0, key, float64(key)))
	}

	_, err = b.Commit()
	serr := structuralError(t, err)
	assert.Equal(t, builder.SharedChild, serr.Kind)
	assert.Equal(t, 3, serr.Key)
}

func TestCommitCycle(t *testing.T) {
	b, err := builder.New(2)
	require.NoError(t, err)
	_, err = b.CreateTree(-1)
	require.NoError(t, err)
	for key := 0; key <= 3; key++ {
		require.NoError(t, b.CreateNode(0, key))
	}
	require.NoError(t, b.SetRootNode(0, 0))
	require.NoError(t, b.SetTestNode(0, 0, 0, model.LT, 1.0, false, 1, 2))
	require.NoError(t, b.SetTestNode(0, 1, 1, model.GE, 2.0, false, 3, 0))
	require.NoError(t, b.SetLeafNode(0, 2, 1.0))
	require.NoError(t, b.SetLeafNode(0, 3, 2.0))

	_, err = b.Commit()
	serr := structuralError(t, err)
	assert.Equal(t, builder.Cycle, serr.Kind)
	assert.Equal(t, 0, serr.Key)
}

func TestCommitOrphanedNode(t *testing.T) {
	b := newStumpBuilder(t)
	require.NoError(t, b.CreateNode(0, 5))
	require.NoError(t, b.SetLeafNode(0, 5, 1.0))

	_, err := b.Commit()
	serr := structuralError(t, err)
	assert.Equal(t, builder.OrphanedNode, serr.Kind)
	assert.Equal(t, 5, serr.Key)
}

func TestCommitEmptyNode(t *testing.T) {
	b, err := builder.New(2)
	require.NoError(t, err)
	_, err = b.CreateTree(-1)
	require.NoError(t, err)
	for key := 0; key <= 2; key++ {
		require.NoError(t, b.CreateNode(0, key))
	}
	require.NoError(t, b.SetRootNode(0, 0))
	require.NoError(t, b.SetTestNode(0, 0, 0, model.LT, 1.0, false, 1, 2))
	require.NoError(t, b.SetLeafNode(0, 1, 1.0))

	_, err = b.Commit()
	serr := structuralError(t, err)
	assert.Equal(t, builder.EmptyNode, serr.Kind)
	assert.Equal(t, 2, serr.Key)
}

func TestCommitAllOrNothing(t *testing.T) {
	b := newStumpBuilder(t)
	pos, err := b.CreateTree(-1)
	require.NoError(t, err)
	require.NoError(t, b.CreateNode(pos, 0))

	// second tree has no root yet: nothing may be committed
	m, err := b.Commit()
	require.Error(t, err)
	assert.Nil(t, m)
	serr := structuralError(t, err)
	assert.Equal(t, builder.MissingRoot, serr.Kind)
	assert.Equal(t, 1, serr.Tree)

	// the drafts are still editable; fixing the tree makes the whole
	// ensemble committable
	require.NoError(t, b.SetRootNode(pos, 0))
	require.NoError(t, b.SetLeafNode(pos, 0, 1.0))
	m, err = b.Commit()
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumTrees())
}

func TestCommitIsRepeatable(t *testing.T) {
	b := newStumpBuilder(t)
	m1, err := b.Commit()
	require.NoError(t, err)
	m2, err := b.Commit()
	require.NoError(t, err)
	assert.Equal(t, m1, m2)
}

func TestCommitLeavesBuilderEditable(t *testing.T) {
	b := newStumpBuilder(t)
	m1, err := b.Commit()
	require.NoError(t, err)

	addLeafOnlyTree(t, b, -1, 1.0)
	m2, err := b.Commit()
	require.NoError(t, err)

	assert.Equal(t, 1, m1.NumTrees())
	assert.Equal(t, 2, m2.NumTrees())
}

func TestCommitCompactsArbitraryKeys(t *testing.T) {
	b, err := builder.New(3)
	require.NoError(t, err)
	_, err = b.CreateTree(-1)
	require.NoError(t, err)

	// keys are deliberately sparse and created out of order
	for _, key := range []int{700, 31, 60, 8, 412, 99, 1000} {
		require.NoError(t, b.CreateNode(0, key))
	}
	require.NoError(t, b.SetTestNode(0, 31, 0, model.LT, 1.0, true, 8, 412))
	require.NoError(t, b.SetTestNode(0, 60, 2, model.GT, 2.0, false, 99, 1000))
	require.NoError(t, b.SetTestNode(0, 700, 1, model.EQ, 3.0, false, 31, 60))
	require.NoError(t, b.SetRootNode(0, 700))
	for _, key := range []int{8, 412, 99, 1000} {
		require.NoError(t, b.SetLeafNode(0, key, float64(key)))
	}

	m, err := b.Commit()
	require.NoError(t, err)
	tree := m.At(0)
	require.Equal(t, 7, tree.Len())

	// breadth-first compaction: the root's children land at 1 and 2,
	// the grandchildren at 3..6
	root := tree.Root()
	assert.Equal(t, 1, root.SplitIndex())
	assert.Equal(t, 1, root.LeftChild())
	assert.Equal(t, 2, root.RightChild())
	assert.Equal(t, []float64{8, 412, 99, 1000}, []float64{
		tree.At(3).LeafValue(),
		tree.At(4).LeafValue(),
		tree.At(5).LeafValue(),
		tree.At(6).LeafValue(),
	})

	// every non-root node is the child of exactly one test node
	refs := make([]int, tree.Len())
	for i := 0; i < tree.Len(); i++ {
		n := tree.At(i)
		if !n.IsLeaf() {
			refs[n.LeftChild()]++
			refs[n.RightChild()]++
		}
	}
	for i, r := range refs {
		if i == 0 {
			assert.Equal(t, 0, r)
		} else {
			assert.Equal(t, 1, r, "node %d", i)
		}
	}
}

func TestCommitEmptyBuilder(t *testing.T) {
	b, err := builder.New(1)
	require.NoError(t, err)
	m, err := b.Commit()
	require.NoError(t, err)
	assert.Equal(t, 0, m.NumTrees())
}

func TestStructuralErrorMessages(t *testing.T) {
	err := &builder.StructuralError{Kind: builder.SharedChild, Tree: 2, Key: 9}
	assert.Equal(t, "tree 2: node 9: key is a child of more than one node", err.Error())
	err = &builder.StructuralError{Kind: builder.MissingRoot, Tree: 0, Key: builder.NoKey}
	assert.Equal(t, "tree 0: no root node designated", err.Error())
	assert.False(t, errors.Is(err, builder.ErrNodeNotFound))
}
