// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ir

import (
	"github.com/gx-org/loopnest/base/iter"
	"github.com/gx-org/loopnest/base/ordered"
)

// Walk traverses the statements under root in pre-order.
// pre returns whether to descend into the children of the node.
func Walk(root Node, pre func(Node) bool) {
	if !pre(root) {
		return
	}
	for _, child := range childStatements(root) {
		Walk(child, pre)
	}
}

func childStatements(n Node) []Node {
	switch nT := n.(type) {
	case *Subroutine:
		return nT.Body
	case *Loop:
		return nT.Body
	case *Conditional:
		var children []Node
		for c := range iter.All(nT.Body, nT.Else) {
			children = append(children, c)
		}
		return children
	}
	return nil
}

// FindLoops returns all loops under root in pre-order. With greedy set,
// the walk does not recurse into a found loop, so only the outermost
// loop of each nest is returned.
func FindLoops(root Node, greedy bool) []*Loop {
	var loops []*Loop
	Walk(root, func(n Node) bool {
		l, ok := n.(*Loop)
		if !ok {
			return true
		}
		loops = append(loops, l)
		return !greedy
	})
	return loops
}

// WalkExprs calls f on every expression under root in pre-order,
// including expressions held by statements. f returns whether to
// descend into subexpressions.
func WalkExprs(root Node, f func(Expr) bool) {
	if e, ok := root.(Expr); ok {
		walkExpr(e, f)
		return
	}
	for _, e := range statementExprs(root) {
		walkExpr(e, f)
	}
	for _, child := range childStatements(root) {
		WalkExprs(child, f)
	}
}

func walkExpr(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	for _, sub := range subExprs(e) {
		walkExpr(sub, f)
	}
}

func subExprs(e Expr) []Expr {
	switch eT := e.(type) {
	case *Sum:
		return eT.Terms
	case *Product:
		return eT.Factors
	case *Quotient:
		return []Expr{eT.Num, eT.Den}
	case *Comparison:
		return []Expr{eT.Left, eT.Right}
	case *ArrayRef:
		return eT.Subscripts
	}
	return nil
}

// statementExprs returns the expressions directly held by a statement.
func statementExprs(n Node) []Expr {
	switch nT := n.(type) {
	case *Loop:
		return []Expr{nT.Var, nT.Bounds.Start, nT.Bounds.Stop, nT.Bounds.Step}
	case *Assignment:
		return []Expr{nT.LHS, nT.RHS}
	case *Conditional:
		return []Expr{nT.Cond}
	case *Call:
		return nT.Args
	}
	return nil
}

// FindVariables returns the scalar variables referenced anywhere under
// root, deduplicated by name, in first-occurrence order. Array names are
// not reported; their subscript expressions are still searched.
func FindVariables(root Node) []*Var {
	vars := ordered.NewMap[string, *Var]()
	WalkExprs(root, func(e Expr) bool {
		if v, ok := e.(*Var); ok {
			if _, seen := vars.Load(v.Name); !seen {
				vars.Store(v.Name, v)
			}
		}
		return true
	})
	return vars.Values()
}
