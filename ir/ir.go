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

// Package ir is the intermediate representation of Fortran program units
// manipulated by the analysis and transformation passes.
//
// Expressions form a closed set of variants (literals, variables, sums,
// products, quotients, comparisons, array references). Expressions are
// immutable by convention: a rewrite always builds a new expression and
// never mutates one in place, so expressions may be shared between owners.
package ir

// ----------------------------------------------------------------------------
// Types of node in the tree.
type (
	// Node in the tree.
	Node interface {
		// node marks a structure as a node structure.
		// It prevents external implementations of the interface.
		node()
	}

	// Expr is a symbolic arithmetic expression.
	Expr interface {
		Node

		// expr marks a structure as an expression variant.
		expr()

		// String is the canonical source rendering of the expression.
		String() string
	}
)

// ----------------------------------------------------------------------------
// Expression variants.
type (
	// IntLit is an integer literal.
	IntLit struct {
		Val int64
	}

	// FloatLit is a floating point literal.
	FloatLit struct {
		Val float64
	}

	// Var is a reference to a scalar variable.
	// Names are stored lower-cased, as Fortran identifiers are case
	// insensitive.
	Var struct {
		Name string
	}

	// Sum is the sum of two or more terms.
	Sum struct {
		Terms []Expr
	}

	// Product is the product of two or more factors.
	Product struct {
		Factors []Expr
	}

	// Quotient is the division Num/Den.
	Quotient struct {
		Num Expr
		Den Expr
	}

	// Comparison is a relational expression, e.g. i <= n.
	Comparison struct {
		Op    string
		Left  Expr
		Right Expr
	}

	// ArrayRef is a subscripted array access, e.g. a(i, j+1).
	ArrayRef struct {
		Name       string
		Subscripts []Expr
	}
)

func (*IntLit) node()     {}
func (*FloatLit) node()   {}
func (*Var) node()        {}
func (*Sum) node()        {}
func (*Product) node()    {}
func (*Quotient) node()   {}
func (*Comparison) node() {}
func (*ArrayRef) node()   {}

func (*IntLit) expr()     {}
func (*FloatLit) expr()   {}
func (*Var) expr()        {}
func (*Sum) expr()        {}
func (*Product) expr()    {}
func (*Quotient) expr()   {}
func (*Comparison) expr() {}
func (*ArrayRef) expr()   {}

// NewInt returns an integer literal.
func NewInt(v int64) *IntLit {
	return &IntLit{Val: v}
}

// NewVar returns a variable reference.
func NewVar(name string) *Var {
	return &Var{Name: name}
}

// Add returns the sum of the given expressions.
func Add(terms ...Expr) *Sum {
	return &Sum{Terms: terms}
}

// Mul returns the product of the given expressions.
func Mul(factors ...Expr) *Product {
	return &Product{Factors: factors}
}

// Sub returns x - y, represented as x + (-1)*y.
func Sub(x, y Expr) *Sum {
	return Add(x, Mul(NewInt(-1), y))
}

// Div returns x / y.
func Div(x, y Expr) *Quotient {
	return &Quotient{Num: x, Den: y}
}

// ----------------------------------------------------------------------------
// Statements and program structure.
type (
	// LoopRange is the (start, stop, step) triple of a loop header.
	// A nil Step means a step of 1.
	LoopRange struct {
		Start Expr
		Stop  Expr
		Step  Expr
	}

	// Loop is a counted do-loop: an induction variable, a range
	// and an ordered body.
	Loop struct {
		Var    *Var
		Bounds *LoopRange
		Body   []Node

		// Src caches the original source text of the loop header.
		// It is dropped when a rewrite invalidates it.
		Src string
	}

	// Assignment is a single assignment statement.
	Assignment struct {
		LHS Expr
		RHS Expr
		Src string
	}

	// Conditional is an if/else block.
	Conditional struct {
		Cond Expr
		Body []Node
		Else []Node
		Src  string
	}

	// Call is a subroutine call statement.
	Call struct {
		Name string
		Args []Expr
		Src  string
	}

	// Subroutine is a single program unit: a name, the ordered dummy
	// argument names (lower-cased), declarations and an executable body.
	Subroutine struct {
		Name string
		Args []string
		Body []Node
	}
)

func (*LoopRange) node()   {}
func (*Loop) node()        {}
func (*Assignment) node()  {}
func (*Conditional) node() {}
func (*Call) node()        {}
func (*Subroutine) node()  {}

// StepOrOne returns the loop step, defaulting a nil step to the literal 1.
func (r *LoopRange) StepOrOne() Expr {
	if r.Step == nil {
		return NewInt(1)
	}
	return r.Step
}

// IsNormalized returns true if the range starts at the literal 1
// with a literal step of 1.
func (r *LoopRange) IsNormalized() bool {
	return isLiteralOne(r.Start) && isLiteralOne(r.StepOrOne())
}

func isLiteralOne(e Expr) bool {
	lit, ok := e.(*IntLit)
	return ok && lit.Val == 1
}

// Clone returns a shallow copy of the loop. Callers override fields
// on the copy; the original is left untouched.
func (l *Loop) Clone() *Loop {
	c := *l
	return &c
}

// Clone returns a shallow copy of the subroutine.
func (s *Subroutine) Clone() *Subroutine {
	c := *s
	return &c
}
