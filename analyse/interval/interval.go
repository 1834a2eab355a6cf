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

// Package interval provides conservative arithmetic over closed numeric
// intervals.
//
// A Range carries only its two bounds. There is deliberately no step:
// all operations are bounds-only and unsound for callers that rely on
// step constraints.
package interval

import (
	"golang.org/x/exp/constraints"
)

// Number is the set of operand types ranges are defined over.
type Number interface {
	constraints.Integer | constraints.Float
}

// Range is a closed interval [Start, Stop].
type Range[T Number] struct {
	Start T
	Stop  T
}

// New returns the range [start, stop].
func New[T Number](start, stop T) Range[T] {
	return Range[T]{Start: start, Stop: stop}
}

// Point returns the degenerate range [v, v]. It promotes a scalar to a
// range operand.
func Point[T Number](v T) Range[T] {
	return Range[T]{Start: v, Stop: v}
}

// Add returns the sum of two ranges: bounds combine directly since
// addition is monotone in both operands.
func Add[T Number](x, y Range[T]) Range[T] {
	return Range[T]{Start: x.Start + y.Start, Stop: x.Stop + y.Stop}
}

// Sub returns the difference of two ranges: the lower bound subtracts
// the other operand's upper bound and vice versa.
func Sub[T Number](x, y Range[T]) Range[T] {
	return Range[T]{Start: x.Start - y.Stop, Stop: x.Stop - y.Start}
}

// Mul returns the product of two ranges as the minimum and maximum of
// the four cross products, which covers sign-mixed bounds.
func Mul[T Number](x, y Range[T]) Range[T] {
	return corners(func(a, b T) T { return a * b }, x, y)
}

// BinaryOp applies an arbitrary binary operation to two ranges by
// sampling the four corner combinations of the operand bounds. The
// result is sound, though not necessarily tight, for operations that
// are monotone within each sign quadrant.
func BinaryOp[T Number](op func(T, T) T, x, y Range[T]) Range[T] {
	return corners(op, x, y)
}

// BinaryOpScalar applies op to a range and a scalar right operand,
// sampling the two bounds. Both scalar variants exist because op need
// not be symmetric.
func BinaryOpScalar[T Number](op func(T, T) T, x Range[T], y T) Range[T] {
	return sorted(op(x.Start, y), op(x.Stop, y))
}

// ScalarBinaryOp applies op to a scalar left operand and a range,
// sampling the two bounds.
func ScalarBinaryOp[T Number](op func(T, T) T, x T, y Range[T]) Range[T] {
	return sorted(op(x, y.Start), op(x, y.Stop))
}

// UnaryOp applies op to both bounds. The result is re-sorted so that an
// order-reversing op still yields a well-formed range.
func UnaryOp[T Number](op func(T) T, x Range[T]) Range[T] {
	return sorted(op(x.Start), op(x.Stop))
}

func corners[T Number](op func(T, T) T, x, y Range[T]) Range[T] {
	vals := [4]T{
		op(x.Start, y.Start),
		op(x.Start, y.Stop),
		op(x.Stop, y.Start),
		op(x.Stop, y.Stop),
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return Range[T]{Start: lo, Stop: hi}
}

func sorted[T Number](a, b T) Range[T] {
	if b < a {
		a, b = b, a
	}
	return Range[T]{Start: a, Stop: b}
}
