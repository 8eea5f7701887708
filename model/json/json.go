/*
Package json serializes committed models to JSON and back, and
registers the "json" model format with the loader registry.

A model is a JSON object with the following fields:
  - "numFeatures": the number of input features the ensemble splits over
  - "trees": an array of trees, each a JSON object with a "nodes"
    field holding the tree's nodes in storage order (index 0 is the
    root).

A node carries "p" (parent index, -1 for the root) and either "lv"
(leaf value) for a leaf node or "f", "op", "t", "dl", "cl", "cr"
(split feature, operator, threshold, default-left flag, left and
right child index) for a test node.
*/
package json

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/CodingCat/tree-lite/model"
	"github.com/CodingCat/tree-lite/model/loader"
)

func init() {
	loader.Register("json", ReadJSONModel)
}

type jsonNode struct {
	Parent      int      `json:"p"`
	Leaf        *float64 `json:"lv,omitempty"`
	Split       *int     `json:"f,omitempty"`
	Op          string   `json:"op,omitempty"`
	Threshold   float64  `json:"t,omitempty"`
	DefaultLeft bool     `json:"dl,omitempty"`
	Left        int      `json:"cl,omitempty"`
	Right       int      `json:"cr,omitempty"`
}

type jsonTree struct {
	Nodes []jsonNode `json:"nodes"`
}

/*
WriteJSONModel takes a committed model and an io.Writer and
serializes the model as JSON onto the io.Writer. An error is
returned if the model cannot be serialized or written onto the
io.Writer.
*/
func WriteJSONModel(m *model.Model, w io.Writer) error {
	header := fmt.Sprintf(`{"numFeatures":%d,"trees":[`, m.NumFeatures())
	if _, err := w.Write([]byte(header)); err != nil {
		return err
	}
	for i := 0; i < m.NumTrees(); i++ {
		if i != 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		if err := writeTree(m.At(i), w); err != nil {
			return fmt.Errorf("encoding tree %d: %v", i, err)
		}
	}
	_, err := w.Write([]byte(`]}`))
	return err
}

func writeTree(t model.Tree, w io.Writer) error {
	jt := jsonTree{Nodes: make([]jsonNode, t.Len())}
	for i := 0; i < t.Len(); i++ {
		jt.Nodes[i] = encodeNode(t.At(i))
	}
	data, err := json.Marshal(&jt)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func encodeNode(n model.Node) jsonNode {
	jn := jsonNode{Parent: n.Parent()}
	if n.IsLeaf() {
		lv := n.LeafValue()
		jn.Leaf = &lv
		return jn
	}
	f := n.SplitIndex()
	jn.Split = &f
	jn.Op = n.Operator().String()
	jn.Threshold = n.Threshold()
	jn.DefaultLeft = n.DefaultLeft()
	jn.Left = n.LeftChild()
	jn.Right = n.RightChild()
	return jn
}

/*
ReadJSONModel takes an io.Reader and unmarshals its contents into a
new committed model. The JSON is expected in the form produced by
WriteJSONModel; every tree is structurally validated as it is
rebuilt. An error is returned if the JSON cannot be read, decoded or
does not describe well-formed trees.
*/
func ReadJSONModel(r io.Reader) (*model.Model, error) {
	jm := &struct {
		NumFeatures int        `json:"numFeatures"`
		Trees       []jsonTree `json:"trees"`
	}{}
	if err := json.NewDecoder(r).Decode(jm); err != nil {
		return nil, fmt.Errorf("decoding model: %v", err)
	}
	trees := make([]model.Tree, len(jm.Trees))
	for i, jt := range jm.Trees {
		t, err := decodeTree(jt)
		if err != nil {
			return nil, fmt.Errorf("decoding tree %d: %v", i, err)
		}
		trees[i] = t
	}
	return model.New(jm.NumFeatures, trees)
}

func decodeTree(jt jsonTree) (model.Tree, error) {
	nodes := make([]model.Node, len(jt.Nodes))
	for i, jn := range jt.Nodes {
		n, err := decodeNode(jn)
		if err != nil {
			return model.Tree{}, fmt.Errorf("node %d: %v", i, err)
		}
		nodes[i] = n
	}
	return model.NewTree(nodes)
}

func decodeNode(jn jsonNode) (model.Node, error) {
	if jn.Leaf != nil {
		if jn.Split != nil {
			return model.Node{}, fmt.Errorf("node carries both leaf and split fields")
		}
		return model.NewLeafNode(*jn.Leaf, jn.Parent), nil
	}
	if jn.Split == nil {
		return model.Node{}, fmt.Errorf("node carries neither leaf nor split fields")
	}
	op, err := model.ParseOperator(jn.Op)
	if err != nil {
		return model.Node{}, err
	}
	return model.NewTestNode(*jn.Split, op, jn.Threshold, jn.DefaultLeft, jn.Left, jn.Right, jn.Parent), nil
}
