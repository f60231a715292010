package hbs

import (
	"log/slog"
	"slices"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// Paths returns the sorted member paths that the render-time context must
// supply for p, such as "page.title". Names bound by an enclosing block
// and the callees of call expressions are excluded.
func (p *Program) Paths() ([]string, error) {
	var (
		scope []string // binder of each open block, "" if none
		seen  = make(map[string]bool)
	)

	add := func(path, head string) {
		if !slices.Contains(scope, head) {
			seen[path] = true
		}
	}

	for _, in := range p.Instructions {
		if in.Op != OpText && in.Expr != "" {
			tree, err := parser.Parse(in.Expr)
			if err != nil {
				return nil, ErrExprParse.
					With(slog.String("expr", in.Expr)).
					Wrap(err)
			}

			collectPaths(tree.Node, add)
		}

		switch in.Op {
		case OpIf, OpIfNot, OpSome, OpNone, OpRange:
			scope = append(scope, in.Local)
		case OpEnd:
			if len(scope) > 0 {
				scope = scope[:len(scope)-1]
			}
		}
	}

	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}

	slices.Sort(paths)

	return paths, nil
}

// memberPath returns the dotted path and head identifier of node if it is
// an identifier or a chain of static member accesses.
func memberPath(node ast.Node) (path, head string, ok bool) {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		return n.Value, n.Value, true

	case *ast.MemberNode:
		prop, isString := n.Property.(*ast.StringNode)
		if !isString {
			return "", "", false
		}

		base, head, ok := memberPath(n.Node)
		if !ok {
			return "", "", false
		}

		return base + "." + prop.Value, head, true
	}

	return "", "", false
}

func collectPaths(node ast.Node, add func(path, head string)) {
	if node == nil {
		return
	}

	if path, head, ok := memberPath(node); ok {
		add(path, head)

		return
	}

	switch n := node.(type) {
	case *ast.CallNode:
		// A bare function name is not part of the context.
		if _, ok := n.Callee.(*ast.IdentifierNode); !ok {
			collectPaths(n.Callee, add)
		}

		for _, arg := range n.Arguments {
			collectPaths(arg, add)
		}

	case *ast.BuiltinNode:
		for _, arg := range n.Arguments {
			collectPaths(arg, add)
		}

	case *ast.MemberNode:
		collectPaths(n.Node, add)
		collectPaths(n.Property, add)

	case *ast.BinaryNode:
		collectPaths(n.Left, add)
		collectPaths(n.Right, add)

	case *ast.UnaryNode:
		collectPaths(n.Node, add)
	}
}
