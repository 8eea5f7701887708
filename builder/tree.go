package builder

import (
	"sort"

	"github.com/CodingCat/tree-lite/model"
)

// treeDraft is one tree under construction: a sparse, key-addressed
// collection of draft nodes plus the root designation. Keys are
// caller-chosen and carry no ordering or adjacency meaning; the
// dense layout only appears at commit.
type treeDraft struct {
	nodes   map[int]*draftNode
	rootKey int
	hasRoot bool
}

func newTreeDraft() *treeDraft {
	return &treeDraft{nodes: make(map[int]*draftNode)}
}

func (td *treeDraft) createNode(key int) error {
	if _, ok := td.nodes[key]; ok {
		return ErrDuplicateNodeKey
	}
	td.nodes[key] = &draftNode{}
	return nil
}

func (td *treeDraft) deleteNode(key int) error {
	if _, ok := td.nodes[key]; !ok {
		return ErrNodeNotFound
	}
	delete(td.nodes, key)
	if td.hasRoot && td.rootKey == key {
		td.hasRoot = false
	}
	return nil
}

func (td *treeDraft) setRoot(key int) error {
	if _, ok := td.nodes[key]; !ok {
		return ErrNodeNotFound
	}
	td.rootKey = key
	td.hasRoot = true
	return nil
}

// emptyNode returns the node at key, failing unless it exists and is
// still unassigned.
func (td *treeDraft) emptyNode(key int) (*draftNode, error) {
	n, ok := td.nodes[key]
	if !ok {
		return nil, ErrNodeNotFound
	}
	if n.kind != kindEmpty {
		return nil, ErrNodeNotEmpty
	}
	return n, nil
}

/*
commit validates the draft and compacts it into a dense committed
tree. treeIndex is only used to report which tree a structural
defect was found in.

The walk is breadth-first from the root; storage indices are
assigned in discovery order, so the root lands at index 0 and
children always sit at higher indices than their parents. Parent
links are derived here rather than maintained incrementally.
*/
func (td *treeDraft) commit(treeIndex int) (model.Tree, error) {
	if !td.hasRoot {
		return model.Tree{}, &StructuralError{Kind: MissingRoot, Tree: treeIndex, Key: NoKey}
	}
	if _, ok := td.nodes[td.rootKey]; !ok {
		return model.Tree{}, &StructuralError{Kind: MissingRoot, Tree: treeIndex, Key: NoKey}
	}

	order := []int{td.rootKey}
	index := map[int]int{td.rootKey: 0}
	parentOf := map[int]int{}
	for qi := 0; qi < len(order); qi++ {
		key := order[qi]
		n := td.nodes[key]
		if n.kind != kindTest {
			continue
		}
		for _, childKey := range []int{n.leftKey, n.rightKey} {
			if _, ok := td.nodes[childKey]; !ok {
				return model.Tree{}, &StructuralError{Kind: DanglingChild, Tree: treeIndex, Key: childKey}
			}
			if _, seen := index[childKey]; seen {
				kind := SharedChild
				for a := key; ; {
					if a == childKey {
						kind = Cycle
						break
					}
					p, ok := parentOf[a]
					if !ok {
						break
					}
					a = p
				}
				return model.Tree{}, &StructuralError{Kind: kind, Tree: treeIndex, Key: childKey}
			}
			index[childKey] = len(order)
			parentOf[childKey] = key
			order = append(order, childKey)
		}
	}

	if len(order) != len(td.nodes) {
		orphans := make([]int, 0, len(td.nodes)-len(order))
		for key := range td.nodes {
			if _, ok := index[key]; !ok {
				orphans = append(orphans, key)
			}
		}
		sort.Ints(orphans)
		return model.Tree{}, &StructuralError{Kind: OrphanedNode, Tree: treeIndex, Key: orphans[0]}
	}

	nodes := make([]model.Node, len(order))
	for i, key := range order {
		n := td.nodes[key]
		parent := model.NoParent
		if i != 0 {
			parent = index[parentOf[key]]
		}
		switch n.kind {
		case kindLeaf:
			nodes[i] = model.NewLeafNode(n.leafValue, parent)
		case kindTest:
			nodes[i] = model.NewTestNode(n.splitIndex, n.op, n.threshold, n.defaultLeft,
				index[n.leftKey], index[n.rightKey], parent)
		default:
			return model.Tree{}, &StructuralError{Kind: EmptyNode, Tree: treeIndex, Key: key}
		}
	}
	return model.NewTree(nodes)
}
