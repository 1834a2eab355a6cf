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

package expr

import (
	"fmt"

	"github.com/gx-org/loopnest/ir"
)

// NonAffineError reports an expression outside the affine subset: a
// product of two or more variables, a variable raised to a power, or a
// data-dependent subscript. It is fatal to the enclosing analysis; no
// approximation is attempted.
type NonAffineError struct {
	// Expr is the offending sub-expression.
	Expr ir.Expr
}

// Error returns a string description of the error.
func (e *NonAffineError) Error() string {
	return fmt.Sprintf("expression %s is not affine", e.Expr)
}

// UnsupportedError reports an expression variant the normalizer does not
// recognize: anything outside constants, variables, sums and products.
type UnsupportedError struct {
	Expr ir.Expr
}

// Error returns a string description of the error.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("expression %s of type %T is not supported by the normalizer", e.Expr, e.Expr)
}
