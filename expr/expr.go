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

// Package expr normalizes symbolic arithmetic expressions.
//
// Simplify collects like terms and folds integer constants into a
// canonical sum of monomials. PolynomialTerms exposes the underlying
// monomial to coefficient map, which affine analyses use to check that
// an expression has degree at most one per variable and to read off
// exact integer coefficients.
package expr

import (
	"math"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/gx-org/loopnest/base/ordered"
	"github.com/gx-org/loopnest/ir"
)

// Term is a monomial: an integer coefficient times a product of atomic
// factors. Factors are variables or irreducible sub-expressions (e.g. a
// symbolic quotient), kept sorted by their canonical rendering. The
// constant term has no factors.
type Term struct {
	Coeff   int64
	Factors []ir.Expr
}

// Key is the canonical identity of the monomial, independent of the
// order in which factors appeared.
func (t *Term) Key() string {
	factors := make([]string, len(t.Factors))
	for i, f := range t.Factors {
		factors[i] = f.String()
	}
	return strings.Join(factors, "*")
}

// TermMap maps monomials to their accumulated integer coefficients,
// keyed by Term.Key, in first-occurrence order.
type TermMap struct {
	terms *ordered.Map[string, *Term]
}

func newTermMap() *TermMap {
	return &TermMap{terms: ordered.NewMap[string, *Term]()}
}

func (tm *TermMap) add(coeff int64, factors []ir.Expr) {
	t := &Term{Coeff: coeff, Factors: factors}
	key := t.Key()
	if prev, ok := tm.terms.Load(key); ok {
		prev.Coeff += coeff
		return
	}
	tm.terms.Store(key, t)
}

func (tm *TermMap) merge(other *TermMap) {
	for _, t := range other.terms.Values() {
		tm.add(t.Coeff, t.Factors)
	}
}

// Terms returns the non-constant monomials with non-zero coefficients,
// in first-occurrence order.
func (tm *TermMap) Terms() []*Term {
	var ts []*Term
	for _, t := range tm.terms.Values() {
		if len(t.Factors) == 0 || t.Coeff == 0 {
			continue
		}
		ts = append(ts, t)
	}
	return ts
}

// Constant returns the coefficient of the constant term.
func (tm *TermMap) Constant() int64 {
	if t, ok := tm.terms.Load(""); ok {
		return t.Coeff
	}
	return 0
}

// isConstant returns the constant value of the map if it holds no
// non-constant term.
func (tm *TermMap) isConstant() (int64, bool) {
	if len(tm.Terms()) > 0 {
		return 0, false
	}
	return tm.Constant(), true
}

// PolynomialTerms decomposes an expression into its monomial to
// coefficient map. All coefficients are exact integers; a fractional
// constant is an error, never a silent truncation.
func PolynomialTerms(e ir.Expr) (*TermMap, error) {
	return accumulate(e)
}

func accumulate(e ir.Expr) (*TermMap, error) {
	tm := newTermMap()
	switch eT := e.(type) {
	case *ir.IntLit:
		tm.add(eT.Val, nil)
	case *ir.FloatLit:
		if eT.Val != math.Trunc(eT.Val) {
			return nil, errors.Errorf("constant %s is not an exact integer", eT)
		}
		tm.add(int64(eT.Val), nil)
	case *ir.Var:
		tm.add(1, []ir.Expr{eT})
	case *ir.Sum:
		for _, term := range eT.Terms {
			sub, err := accumulate(term)
			if err != nil {
				return nil, err
			}
			tm.merge(sub)
		}
	case *ir.Product:
		tm.add(1, nil)
		for _, factor := range eT.Factors {
			sub, err := accumulate(factor)
			if err != nil {
				return nil, err
			}
			tm = convolve(tm, sub)
		}
	case *ir.Quotient:
		return quotientTerms(eT)
	case *ir.ArrayRef:
		return nil, &NonAffineError{Expr: eT}
	default:
		return nil, &UnsupportedError{Expr: e}
	}
	return tm, nil
}

// convolve multiplies two term maps: the product of two polynomials is
// the cross product of their monomials.
func convolve(x, y *TermMap) *TermMap {
	tm := newTermMap()
	for _, xt := range x.terms.Values() {
		for _, yt := range y.terms.Values() {
			factors := make([]ir.Expr, 0, len(xt.Factors)+len(yt.Factors))
			factors = append(factors, xt.Factors...)
			factors = append(factors, yt.Factors...)
			slices.SortFunc(factors, func(a, b ir.Expr) int {
				return strings.Compare(a.String(), b.String())
			})
			tm.add(xt.Coeff*yt.Coeff, factors)
		}
	}
	return tm
}

// quotientTerms folds a quotient when the denominator is a non-zero
// integer constant dividing every numerator coefficient evenly.
// Otherwise the simplified quotient is kept as a single atomic factor.
func quotientTerms(q *ir.Quotient) (*TermMap, error) {
	num, err := accumulate(q.Num)
	if err != nil {
		return nil, err
	}
	den, err := accumulate(q.Den)
	if err != nil {
		return nil, err
	}
	tm := newTermMap()
	if d, ok := den.isConstant(); ok && d != 0 && divides(num, d) {
		for _, t := range num.terms.Values() {
			tm.add(t.Coeff/d, t.Factors)
		}
		return tm, nil
	}
	atom := &ir.Quotient{Num: rebuild(num), Den: rebuild(den)}
	tm.add(1, []ir.Expr{atom})
	return tm, nil
}

func divides(tm *TermMap, d int64) bool {
	for _, t := range tm.terms.Values() {
		if t.Coeff%d != 0 {
			return false
		}
	}
	return true
}

// Simplify collects like terms and folds integer constants, returning a
// canonical sum of monomials. The result is a fresh expression; the
// input is never mutated.
func Simplify(e ir.Expr) (ir.Expr, error) {
	if cmp, ok := e.(*ir.Comparison); ok {
		left, err := Simplify(cmp.Left)
		if err != nil {
			return nil, err
		}
		right, err := Simplify(cmp.Right)
		if err != nil {
			return nil, err
		}
		return &ir.Comparison{Op: cmp.Op, Left: left, Right: right}, nil
	}
	tm, err := accumulate(e)
	if err != nil {
		return nil, err
	}
	return rebuild(tm), nil
}

// rebuild assembles the canonical expression of a term map, in
// first-occurrence order with zero terms dropped.
func rebuild(tm *TermMap) ir.Expr {
	var terms []ir.Expr
	for _, t := range tm.terms.Values() {
		if t.Coeff == 0 {
			continue
		}
		terms = append(terms, buildTerm(t))
	}
	if len(terms) == 0 {
		return ir.NewInt(0)
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return ir.Add(terms...)
}

func buildTerm(t *Term) ir.Expr {
	if len(t.Factors) == 0 {
		return ir.NewInt(t.Coeff)
	}
	if t.Coeff == 1 && len(t.Factors) == 1 {
		return t.Factors[0]
	}
	factors := t.Factors
	if t.Coeff != 1 {
		factors = append([]ir.Expr{ir.NewInt(t.Coeff)}, factors...)
	}
	return ir.Mul(factors...)
}
