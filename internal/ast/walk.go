package ast

// Walk traverses the syntax tree starting from node, calling fn for each node.
// If fn returns false, Walk stops traversing that branch.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *LetValue:
		Walk(n.Name, fn)
		Walk(n.Value, fn)
		Walk(n.Body, fn)

	case *LetType:
		Walk(n.Name, fn)
		Walk(n.TypeExpr, fn)
		Walk(n.Body, fn)

	case *Sequence:
		for _, item := range n.Items {
			Walk(item, fn)
		}

	case *Assign:
		Walk(n.Name, fn)
		Walk(n.Value, fn)

	case *ArrayLit:
		for _, elem := range n.Elems {
			Walk(elem, fn)
		}

	case *ArrayTypeLit:
		Walk(n.Elem, fn)

	case *Arithmetic:
		for _, operand := range n.Operands {
			Walk(operand, fn)
		}

	case *ArrayGet:
		Walk(n.Index, fn)
		Walk(n.Array, fn)

	case *ArraySet:
		Walk(n.Index, fn)
		Walk(n.Array, fn)
		Walk(n.Value, fn)

	case *Ident, *IntegerLit:
		// leaves
	}
}

// Depth returns the nesting depth of the tree; a leaf has depth 1.
func Depth(node Node) int {
	depth := 0
	var visit func(Node, int)
	visit = func(n Node, d int) {
		if d > depth {
			depth = d
		}
		Walk(n, func(child Node) bool {
			if child == n {
				return true
			}
			visit(child, d+1)
			return false
		})
	}
	visit(node, 1)
	return depth
}
