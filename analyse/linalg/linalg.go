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

// Package linalg provides exact integer linear algebra for iteration
// space analysis: row echelon reduction of linear Diophantine systems
// with an integer feasibility check, back substitution, and the
// decomposition of a constraint system into one-dimensional problems.
package linalg

import (
	"fmt"
	"slices"
)

// Matrix is a dense row-major integer matrix.
type Matrix [][]int64

// Vector is a dense integer vector.
type Vector []int64

// NewMatrix returns a zero matrix with the given shape.
func NewMatrix(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]int64, cols)
	}
	return m
}

// Dims returns the number of rows and columns.
func (m Matrix) Dims() (rows, cols int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	c := make(Matrix, len(m))
	for i, row := range m {
		c[i] = slices.Clone(row)
	}
	return c
}

// Column returns a copy of the k-th column.
func (m Matrix) Column(k int) Vector {
	col := make(Vector, len(m))
	for i, row := range m {
		col[i] = row[k]
	}
	return col
}

// NoIntegerSolutionError reports a row of a linear Diophantine system
// whose right-hand side is not divisible by the GCD of its coefficients,
// so the row has no integer solution. It is fatal to the whole
// elimination, not a per-row skip.
type NoIntegerSolutionError struct {
	// Row is the infeasible augmented row (coefficients then right-hand side).
	Row Vector
}

// Error returns a string description of the error.
func (e *NoIntegerSolutionError) Error() string {
	return fmt.Sprintf("row %v has no integer solution", []int64(e.Row))
}

// GCD returns the greatest common divisor of two integers, always
// non-negative.
func GCD(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// FloorDiv returns the floor of a/b, matching integer floor division
// semantics for negative operands.
func FloorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// CeilDiv returns the ceiling of a/b.
func CeilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

// RowEchelonUnderGCD computes the row echelon form of an augmented
// integer matrix (the last column is the right-hand side) by Gaussian
// elimination over integer floor division. At every pivot step the
// right-hand side of the pivot row must be divisible by the GCD of the
// row's coefficients; otherwise that linear Diophantine equation has no
// integer solution and the whole computation fails. This follows
// theorem 11.32 in Aho, Lam, Sethi, Ullman, "Compilers: Principles,
// Techniques, and Tools" (2015).
//
// A matrix without rows or columns is returned unchanged. The input is
// never mutated; the returned matrix is freshly allocated.
func RowEchelonUnderGCD(m Matrix) (Matrix, error) {
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return m, nil
	}
	a := m.Clone()
	if err := rowEchelon(a, 0, 0); err != nil {
		return nil, err
	}
	return a, nil
}

// rowEchelon eliminates in place on the submatrix starting at (row, col).
// Columns left of col are already reduced; an all-zero leading column is
// skipped and stays attached in place.
func rowEchelon(a Matrix, row, col int) error {
	if row >= len(a) || col >= len(a[0]) {
		return nil
	}
	pivot := -1
	for i := row; i < len(a); i++ {
		if a[i][col] != 0 {
			pivot = i
			break
		}
	}
	if pivot < 0 {
		return rowEchelon(a, row, col+1)
	}
	if pivot != row {
		a[pivot], a[row] = a[row], a[pivot]
	}
	last := len(a[row]) - 1
	if col >= last {
		// The pivot sits in the right-hand side column: the row reads
		// 0 = c with c non-zero.
		return &NoIntegerSolutionError{Row: slices.Clone(a[row][col:])}
	}
	var g int64
	for j := col; j < last; j++ {
		g = GCD(g, a[row][j])
	}
	if g != 0 && a[row][last]%g != 0 {
		return &NoIntegerSolutionError{Row: slices.Clone(a[row][col:])}
	}
	p := a[row][col]
	for j := col; j <= last; j++ {
		a[row][j] = FloorDiv(a[row][j], p)
	}
	for i := row + 1; i < len(a); i++ {
		f := a[i][col]
		if f == 0 {
			continue
		}
		for j := col; j <= last; j++ {
			a[i][j] -= a[row][j] * f
		}
	}
	return rowEchelon(a, row+1, col+1)
}

// BackSubstitution solves R·x = y for an upper triangular square R,
// iterating from the last row upward. div is the division used for each
// solved component; nil means plain integer division. A zero trailing
// pivot is a violated caller precondition and panics.
func BackSubstitution(r Matrix, y Vector, div func(a, b int64) int64) Vector {
	if div == nil {
		div = func(a, b int64) int64 { return a / b }
	}
	n := len(y)
	x := make(Vector, n)
	if r[n-1][n-1] == 0 {
		panic("linalg: zero trailing pivot in back substitution")
	}
	x[n-1] = div(y[n-1], r[n-1][n-1])
	for i := n - 2; i >= 0; i-- {
		s := y[i]
		for j := i + 1; j < n; j++ {
			s -= r[i][j] * x[j]
		}
		x[i] = div(s, r[i][i])
	}
	return x
}

// IsIndependentSystem returns true if every row of the coefficient
// matrix has exactly one non-zero entry, so the system decomposes into
// independent single-variable constraints.
func IsIndependentSystem(m Matrix) bool {
	for _, row := range m {
		nonZero := 0
		for _, v := range row {
			if v != 0 {
				nonZero++
			}
		}
		if nonZero != 1 {
			return false
		}
	}
	return true
}

// OneDSystem is the one-dimensional slice of a constraint system for a
// single variable: Coef·x compared against RHS row by row.
type OneDSystem struct {
	Coef Vector
	RHS  Vector
}

// OneDSystems splits a system m·x [op] rhs into one problem per
// variable (per matrix column). With dropZeroRows set, rows whose
// coefficient and right-hand side are both zero are removed.
// Independence of the problems is not checked here; see
// IsIndependentSystem.
func OneDSystems(m Matrix, rhs Vector, dropZeroRows bool) []OneDSystem {
	_, cols := m.Dims()
	systems := make([]OneDSystem, 0, cols)
	for k := 0; k < cols; k++ {
		var sys OneDSystem
		for i, row := range m {
			if dropZeroRows && row[k] == 0 && rhs[i] == 0 {
				continue
			}
			sys.Coef = append(sys.Coef, row[k])
			sys.RHS = append(sys.RHS, rhs[i])
		}
		systems = append(systems, sys)
	}
	return systems
}

// BoundsOfOneDSystem splits the one-dimensional inequality
// coef·x >= rhs into bounds on x. Rows with a positive coefficient
// yield lower bounds (rounded up to stay integer exact), rows with a
// zero coefficient contribute their right-hand side as a lower bound,
// and rows with a negative coefficient yield upper bounds (rounded
// down). Both bound sets come back deduplicated and sorted.
func BoundsOfOneDSystem(coef, rhs Vector) (lower, upper Vector) {
	for i, c := range coef {
		switch {
		case c > 0:
			lower = append(lower, CeilDiv(rhs[i], c))
		case c == 0:
			lower = append(lower, rhs[i])
		default:
			upper = append(upper, FloorDiv(rhs[i], c))
		}
	}
	slices.Sort(lower)
	slices.Sort(upper)
	return slices.Compact(lower), slices.Compact(upper)
}
