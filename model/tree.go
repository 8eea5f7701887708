package model

import "fmt"

/*
Tree is a single committed decision tree: a dense array of Nodes
addressed by position, with the root always at index 0. Trees are
immutable once built; they are produced by the builder's commit
pass or directly by model loaders.
*/
type Tree struct {
	nodes []Node
}

/*
NewTree takes a dense node array, with the root at index 0 and all
child and parent references expressed as array positions, and
returns a Tree over a copy of it. It verifies that the array
describes a single well-formed tree: the root has no parent, every
child reference points inside the array at a node whose parent
reference points back, and every non-root node is the child of
exactly one test node. An error describing the first violation is
returned otherwise.
*/
func NewTree(nodes []Node) (Tree, error) {
	if len(nodes) == 0 {
		return Tree{}, fmt.Errorf("tree has no nodes")
	}
	if !nodes[0].IsRoot() {
		return Tree{}, fmt.Errorf("node 0 must be the root, has parent %d", nodes[0].Parent())
	}
	refs := make([]int, len(nodes))
	for i, n := range nodes {
		if i != 0 && (n.Parent() < 0 || n.Parent() >= len(nodes)) {
			return Tree{}, fmt.Errorf("node %d: parent %d out of range", i, n.Parent())
		}
		if n.IsLeaf() {
			continue
		}
		for _, c := range []int{n.LeftChild(), n.RightChild()} {
			if c <= 0 || c >= len(nodes) {
				return Tree{}, fmt.Errorf("node %d: child %d out of range", i, c)
			}
			if nodes[c].Parent() != i {
				return Tree{}, fmt.Errorf("node %d: child %d has parent %d", i, c, nodes[c].Parent())
			}
			refs[c]++
		}
		if n.LeftChild() == n.RightChild() {
			return Tree{}, fmt.Errorf("node %d: left and right children are both %d", i, n.LeftChild())
		}
	}
	for i, r := range refs {
		if i == 0 && r != 0 {
			return Tree{}, fmt.Errorf("root node referenced as a child")
		}
		if i != 0 && r != 1 {
			return Tree{}, fmt.Errorf("node %d referenced as a child by %d nodes", i, r)
		}
	}
	t := Tree{nodes: make([]Node, len(nodes))}
	copy(t.nodes, nodes)
	return t, nil
}

// Len returns the number of nodes in the tree.
func (t Tree) Len() int {
	return len(t.nodes)
}

// At returns a copy of the node at index i.
func (t Tree) At(i int) Node {
	return t.nodes[i]
}

// Root returns a copy of the tree's root node.
func (t Tree) Root() Node {
	return t.nodes[0]
}

/*
Walk goes through the tree breadth-first from the root, calling f
with every visited node and its index: a node's children are always
visited after it, level by level, in left-then-right order. If a
call to f returns an error the walk is aborted and that error is
returned; otherwise Walk returns nil once every node has been
visited.
*/
func (t Tree) Walk(f func(i int, n Node) error) error {
	queue := []int{0}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		n := t.nodes[i]
		if err := f(i, n); err != nil {
			return err
		}
		if !n.IsLeaf() {
			queue = append(queue, n.LeftChild(), n.RightChild())
		}
	}
	return nil
}

// LeafCount returns the number of leaf nodes in the tree.
func (t Tree) LeafCount() int {
	var leaves int
	for _, n := range t.nodes {
		if n.IsLeaf() {
			leaves++
		}
	}
	return leaves
}
