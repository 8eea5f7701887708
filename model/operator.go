package model

import "fmt"

/*
Operator is the binary comparison a test node applies between a
sample's feature value and the node's threshold: the left child is
taken when [feature value] Operator [threshold] holds, the right
child otherwise.
*/
type Operator int

// Comparison operators available to test nodes.
const (
	EQ Operator = iota
	LT
	LE
	GT
	GE
)

var operatorNames = map[Operator]string{
	EQ: "==",
	LT: "<",
	LE: "<=",
	GT: ">",
	GE: ">=",
}

func (op Operator) String() string {
	return operatorNames[op]
}

// Valid returns whether op is one of the defined comparison operators.
func (op Operator) Valid() bool {
	_, ok := operatorNames[op]
	return ok
}

/*
ParseOperator takes the textual form of a comparison operator, as
produced by Operator's String method, and returns the corresponding
Operator or an error if the text does not name one.
*/
func ParseOperator(s string) (Operator, error) {
	for op, name := range operatorNames {
		if name == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown comparison operator %q", s)
}
