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
	"strconv"
	"strings"
)

// String returns the decimal representation of the literal.
func (e *IntLit) String() string {
	return strconv.FormatInt(e.Val, 10)
}

// String returns the shortest representation of the literal.
func (e *FloatLit) String() string {
	return strconv.FormatFloat(e.Val, 'g', -1, 64)
}

// String returns the variable name.
func (e *Var) String() string {
	return e.Name
}

// String renders the sum with infix + and -.
func (e *Sum) String() string {
	var s strings.Builder
	for i, t := range e.Terms {
		ts := t.String()
		if i == 0 {
			s.WriteString(ts)
			continue
		}
		if rest, ok := strings.CutPrefix(ts, "-"); ok {
			s.WriteString(" - ")
			s.WriteString(rest)
		} else {
			s.WriteString(" + ")
			s.WriteString(ts)
		}
	}
	return s.String()
}

// String renders the product with infix *. A leading -1 factor is
// rendered as a sign.
func (e *Product) String() string {
	factors := e.Factors
	var s strings.Builder
	if len(factors) > 1 {
		if lit, ok := factors[0].(*IntLit); ok && lit.Val == -1 {
			s.WriteString("-")
			factors = factors[1:]
		}
	}
	for i, f := range factors {
		if i > 0 {
			s.WriteString("*")
		}
		s.WriteString(parenthesize(f))
	}
	return s.String()
}

// String renders the quotient with infix /.
func (e *Quotient) String() string {
	return parenthesize(e.Num) + "/" + parenthesize(e.Den)
}

// String renders the comparison with its infix operator.
func (e *Comparison) String() string {
	return e.Left.String() + " " + e.Op + " " + e.Right.String()
}

// String renders the array reference with its subscript list.
func (e *ArrayRef) String() string {
	subs := make([]string, len(e.Subscripts))
	for i, s := range e.Subscripts {
		subs[i] = s.String()
	}
	return e.Name + "(" + strings.Join(subs, ", ") + ")"
}

// parenthesize wraps composite expressions so that precedence
// survives the flat rendering.
func parenthesize(e Expr) string {
	switch e.(type) {
	case *Sum, *Quotient, *Comparison:
		return "(" + e.String() + ")"
	}
	return e.String()
}

// Equal reports structural equality of two expressions.
// Sums and products are compared in order; algebraic equivalence
// is the job of the expression normalizer, not of this predicate.
func Equal(x, y Expr) bool {
	switch xT := x.(type) {
	case *IntLit:
		yT, ok := y.(*IntLit)
		return ok && xT.Val == yT.Val
	case *FloatLit:
		yT, ok := y.(*FloatLit)
		return ok && xT.Val == yT.Val
	case *Var:
		yT, ok := y.(*Var)
		return ok && xT.Name == yT.Name
	case *Sum:
		yT, ok := y.(*Sum)
		return ok && equalSlices(xT.Terms, yT.Terms)
	case *Product:
		yT, ok := y.(*Product)
		return ok && equalSlices(xT.Factors, yT.Factors)
	case *Quotient:
		yT, ok := y.(*Quotient)
		return ok && Equal(xT.Num, yT.Num) && Equal(xT.Den, yT.Den)
	case *Comparison:
		yT, ok := y.(*Comparison)
		return ok && xT.Op == yT.Op && Equal(xT.Left, yT.Left) && Equal(xT.Right, yT.Right)
	case *ArrayRef:
		yT, ok := y.(*ArrayRef)
		return ok && xT.Name == yT.Name && equalSlices(xT.Subscripts, yT.Subscripts)
	}
	return false
}

func equalSlices(xs, ys []Expr) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i, x := range xs {
		if !Equal(x, ys[i]) {
			return false
		}
	}
	return true
}
