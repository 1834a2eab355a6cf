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

// Transform applies a replacement map keyed by node identity, producing a
// rewritten copy of the subtree. A replaced node is taken as-is: the walk
// does not recurse into replacements. Subtrees without any replaced node
// are returned unchanged, so untouched siblings stay structurally shared.
func Transform(root Node, repl map[Node]Node) Node {
	if r, ok := repl[root]; ok {
		return r
	}
	switch n := root.(type) {
	case *Subroutine:
		body, changed := TransformBody(n.Body, repl)
		if !changed {
			return n
		}
		c := n.Clone()
		c.Body = body
		return c
	case *Loop:
		body, changed := TransformBody(n.Body, repl)
		if !changed {
			return n
		}
		c := n.Clone()
		c.Body = body
		return c
	case *Conditional:
		body, bodyChanged := TransformBody(n.Body, repl)
		els, elseChanged := TransformBody(n.Else, repl)
		if !bodyChanged && !elseChanged {
			return n
		}
		c := *n
		c.Body = body
		c.Else = els
		return &c
	}
	return root
}

// TransformBody applies a replacement map to every statement of a body.
// The second return value reports whether anything changed; if not, the
// input slice is returned as-is.
func TransformBody(body []Node, repl map[Node]Node) ([]Node, bool) {
	changed := false
	out := body
	for i, stmt := range body {
		r := Transform(stmt, repl)
		if r == stmt {
			continue
		}
		if !changed {
			out = make([]Node, len(body))
			copy(out, body)
			changed = true
		}
		out[i] = r
	}
	return out, changed
}

// ExprMap associates expressions with their replacements. Matching is
// structural: every occurrence equal to a key is replaced, not only the
// key object itself.
type ExprMap struct {
	pairs []exprPair
}

type exprPair struct {
	from Expr
	to   Expr
}

// NewExprMap returns an empty expression substitution map.
func NewExprMap() *ExprMap {
	return &ExprMap{}
}

// Put registers a replacement.
func (m *ExprMap) Put(from, to Expr) {
	m.pairs = append(m.pairs, exprPair{from: from, to: to})
}

func (m *ExprMap) find(e Expr) (Expr, bool) {
	for _, p := range m.pairs {
		if Equal(p.from, e) {
			return p.to, true
		}
	}
	return nil, false
}

// Apply substitutes within a single expression. A matched expression is
// replaced wholesale; the walk does not descend into the replacement, so
// a variable may be mapped to an expression mentioning the same variable.
func (m *ExprMap) Apply(e Expr) Expr {
	if e == nil {
		return nil
	}
	if to, ok := m.find(e); ok {
		return to
	}
	switch eT := e.(type) {
	case *Sum:
		terms, changed := m.applyAll(eT.Terms)
		if !changed {
			return e
		}
		return &Sum{Terms: terms}
	case *Product:
		factors, changed := m.applyAll(eT.Factors)
		if !changed {
			return e
		}
		return &Product{Factors: factors}
	case *Quotient:
		num, den := m.Apply(eT.Num), m.Apply(eT.Den)
		if num == eT.Num && den == eT.Den {
			return e
		}
		return &Quotient{Num: num, Den: den}
	case *Comparison:
		left, right := m.Apply(eT.Left), m.Apply(eT.Right)
		if left == eT.Left && right == eT.Right {
			return e
		}
		return &Comparison{Op: eT.Op, Left: left, Right: right}
	case *ArrayRef:
		subs, changed := m.applyAll(eT.Subscripts)
		if !changed {
			return e
		}
		return &ArrayRef{Name: eT.Name, Subscripts: subs}
	}
	return e
}

func (m *ExprMap) applyAll(es []Expr) ([]Expr, bool) {
	changed := false
	out := es
	for i, e := range es {
		r := m.Apply(e)
		if r == e {
			continue
		}
		if !changed {
			out = make([]Expr, len(es))
			copy(out, es)
			changed = true
		}
		out[i] = r
	}
	return out, changed
}

// SubstituteExprs replaces expressions throughout a subtree, returning a
// rewritten copy. With invalidateSource set, statements whose expressions
// were rewritten lose their cached source text, since it no longer
// matches the tree.
func SubstituteExprs(root Node, m *ExprMap, invalidateSource bool) Node {
	switch n := root.(type) {
	case *Subroutine:
		body, changed := SubstituteExprsInBody(n.Body, m, invalidateSource)
		if !changed {
			return n
		}
		c := n.Clone()
		c.Body = body
		return c
	case *Loop:
		return substituteLoop(n, m, invalidateSource)
	case *Assignment:
		lhs, rhs := m.Apply(n.LHS), m.Apply(n.RHS)
		if lhs == n.LHS && rhs == n.RHS {
			return n
		}
		c := &Assignment{LHS: lhs, RHS: rhs, Src: n.Src}
		if invalidateSource {
			c.Src = ""
		}
		return c
	case *Conditional:
		cond := m.Apply(n.Cond)
		body, bodyChanged := SubstituteExprsInBody(n.Body, m, invalidateSource)
		els, elseChanged := SubstituteExprsInBody(n.Else, m, invalidateSource)
		if cond == n.Cond && !bodyChanged && !elseChanged {
			return n
		}
		c := &Conditional{Cond: cond, Body: body, Else: els, Src: n.Src}
		if invalidateSource {
			c.Src = ""
		}
		return c
	case *Call:
		args, changed := m.applyAll(n.Args)
		if !changed {
			return n
		}
		c := &Call{Name: n.Name, Args: args, Src: n.Src}
		if invalidateSource {
			c.Src = ""
		}
		return c
	}
	return root
}

func substituteLoop(n *Loop, m *ExprMap, invalidateSource bool) Node {
	start := m.Apply(n.Bounds.Start)
	stop := m.Apply(n.Bounds.Stop)
	step := m.Apply(n.Bounds.Step)
	boundsChanged := start != n.Bounds.Start || stop != n.Bounds.Stop || step != n.Bounds.Step
	loopVar := n.Var
	if to, ok := m.find(n.Var); ok {
		// The induction variable itself can only be renamed, not
		// replaced by a composite expression.
		if v, isVar := to.(*Var); isVar {
			loopVar = v
		}
	}
	body, bodyChanged := SubstituteExprsInBody(n.Body, m, invalidateSource)
	if !boundsChanged && loopVar == n.Var && !bodyChanged {
		return n
	}
	c := n.Clone()
	c.Var = loopVar
	c.Body = body
	if boundsChanged {
		c.Bounds = &LoopRange{Start: start, Stop: stop, Step: step}
	}
	if invalidateSource {
		c.Src = ""
	}
	return c
}

// SubstituteExprsInBody applies an expression substitution to every
// statement of a body. The second return value reports whether anything
// changed.
func SubstituteExprsInBody(body []Node, m *ExprMap, invalidateSource bool) ([]Node, bool) {
	changed := false
	out := body
	for i, stmt := range body {
		r := SubstituteExprs(stmt, m, invalidateSource)
		if r == stmt {
			continue
		}
		if !changed {
			out = make([]Node, len(body))
			copy(out, body)
			changed = true
		}
		out[i] = r
	}
	return out, changed
}
