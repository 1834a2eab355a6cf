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
	"github.com/gx-org/loopnest/ir"
)

// Polyhedron is the iteration space of a loop nest as the set of
// integer tuples x with B·x + b >= 0. Columns of B follow Variables:
// the loop induction variables outer to inner, then the free symbolic
// variables of the bounds. Rows come in pairs per loop: the lower bound
// x >= lo then the upper bound x <= hi. The value is built once per
// query and immutable thereafter.
type Polyhedron struct {
	B         linalg.Matrix
	Offset    linalg.Vector
	Variables []string
}

// FromNestedLoops builds the iteration space polyhedron of a loop nest,
// conjoining the bound inequalities of every loop, outer to inner.
// Loops must have unit step (normalize first, see NormalizeBounds) and
// affine bounds; violations from all loops are combined into one error.
func FromNestedLoops(loops []*ir.Loop) (*Polyhedron, error) {
	basis := ordered.NewSet[string]()
	for _, l := range loops {
		basis.Add(l.Var.Name)
	}
	for _, l := range loops {
		for _, v := range ir.FindVariables(ir.Add(l.Bounds.Start, l.Bounds.Stop)) {
			basis.Add(v.Name)
		}
	}
	b := linalg.NewMatrix(2*len(loops), basis.Size())
	offset := make(linalg.Vector, 2*len(loops))
	var errs error
	for i, l := range loops {
		if !ir.Equal(l.Bounds.StepOrOne(), ir.NewInt(1)) {
			errs = multierr.Append(errs, errors.Errorf("loop over %s has step %s: normalize the nest first", l.Var, l.Bounds.StepOrOne()))
			continue
		}
		k, _ := basis.Index(l.Var.Name)
		lo, loConst, err := affineRow(l.Bounds.Start, basis)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "lower bound of loop over %s", l.Var))
			continue
		}
		hi, hiConst, err := affineRow(l.Bounds.Stop, basis)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "upper bound of loop over %s", l.Var))
			continue
		}
		// x - lo >= 0
		for j := range lo {
			b[2*i][j] = -lo[j]
		}
		b[2*i][k]++
		offset[2*i] = -loConst
		// hi - x >= 0
		copy(b[2*i+1], hi)
		b[2*i+1][k]--
		offset[2*i+1] = hiConst
	}
	if errs != nil {
		return nil, errs
	}
	return &Polyhedron{B: b, Offset: offset, Variables: basis.Slice()}, nil
}
