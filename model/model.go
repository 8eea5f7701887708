/*
Package model defines the committed, read-only form of a decision
tree ensemble: an ordered sequence of dense, index-addressed trees
plus the number of input features the ensemble was built over.

Models are produced either by the builder package's commit pass or
directly by format loaders, and are consumed by traversal code such
as printers and inference engines. Once constructed a model is never
mutated; accessors hand out value copies.
*/
package model

import "fmt"

// Model is a committed decision tree ensemble.
type Model struct {
	numFeatures int
	trees       []Tree
}

/*
New takes the number of input features and an ordered list of
committed trees and returns a Model over a copy of the list. It
returns an error if the feature count is not positive.
*/
func New(numFeatures int, trees []Tree) (*Model, error) {
	if numFeatures <= 0 {
		return nil, fmt.Errorf("number of features must be positive, got %d", numFeatures)
	}
	m := &Model{numFeatures: numFeatures, trees: make([]Tree, len(trees))}
	copy(m.trees, trees)
	return m, nil
}

// NumFeatures returns the number of input features the ensemble
// splits over.
func (m *Model) NumFeatures() int {
	return m.numFeatures
}

// NumTrees returns the number of trees in the ensemble.
func (m *Model) NumTrees() int {
	return len(m.trees)
}

// At returns the tree at position i within the ensemble.
func (m *Model) At(i int) Tree {
	return m.trees[i]
}
