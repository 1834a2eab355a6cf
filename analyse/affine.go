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

package analyse

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/gx-org/loopnest/analyse/linalg"
	"github.com/gx-org/loopnest/base/ordered"
	"github.com/gx-org/loopnest/expr"
	"github.com/gx-org/loopnest/ir"
)

// AccessFunction converts the subscript expressions of an array access
// into the affine representation F·x + f over an ordered variable
// basis: F[d][k] is the coefficient of variable k in dimension d and
// f[d] its constant offset.
//
// The basis is extra concatenated with the variables referenced by the
// subscripts, deduplicated in first-occurrence order. Names are
// expected to be lower-cased already; mixed case in extra is a caller
// contract violation and is not validated here.
//
// Every entry is an exact integer. A subscript with a product of
// variables, a variable power, or any other non-affine shape fails with
// a NonAffineError wrapped with its dimension; errors from all
// dimensions are combined.
func AccessFunction(dims []ir.Expr, extra []string) (linalg.Matrix, linalg.Vector, []string, error) {
	basis := ordered.NewSet(extra...)
	for _, d := range dims {
		for _, v := range ir.FindVariables(d) {
			basis.Add(v.Name)
		}
	}
	f := linalg.NewMatrix(len(dims), basis.Size())
	offset := make(linalg.Vector, len(dims))
	var errs error
	for i, d := range dims {
		row, c, err := affineRow(d, basis)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "dimension %d", i))
			continue
		}
		f[i] = row
		offset[i] = c
	}
	if errs != nil {
		return nil, nil, nil, errs
	}
	return f, offset, basis.Slice(), nil
}

// affineRow decomposes one expression into its coefficient row over the
// basis and its constant offset.
func affineRow(e ir.Expr, basis *ordered.Set[string]) (linalg.Vector, int64, error) {
	simplified, err := expr.Simplify(e)
	if err != nil {
		return nil, 0, err
	}
	terms, err := expr.PolynomialTerms(simplified)
	if err != nil {
		return nil, 0, err
	}
	row := make(linalg.Vector, basis.Size())
	for _, t := range terms.Terms() {
		if len(t.Factors) != 1 {
			return nil, 0, &expr.NonAffineError{Expr: ir.Mul(t.Factors...)}
		}
		v, ok := t.Factors[0].(*ir.Var)
		if !ok {
			return nil, 0, &expr.NonAffineError{Expr: t.Factors[0]}
		}
		k, ok := basis.Index(v.Name)
		if !ok {
			return nil, 0, errors.Errorf("variable %s is not part of the basis", v.Name)
		}
		row[k] = t.Coeff
	}
	return row, terms.Constant(), nil
}
