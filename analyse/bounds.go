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

// Package analyse derives affine representations of loop nests and
// rewrites loop bounds into canonical unit-stride form.
package analyse

import (
	"github.com/pkg/errors"

	"github.com/gx-org/loopnest/analyse/linalg"
	"github.com/gx-org/loopnest/base/iter"
	"github.com/gx-org/loopnest/expr"
	"github.com/gx-org/loopnest/ir"
)

// Options controls tree rewriting during normalization.
type Options struct {
	// InvalidateSource drops cached source text on rewritten statements.
	InvalidateSource bool
}

// DefaultOptions are the options used by NormalizeBounds.
func DefaultOptions() Options {
	return Options{InvalidateSource: true}
}

// IsNormalized returns true if the loop ranges from 1 with a step of 1.
func IsNormalized(l *ir.Loop) bool {
	return l.Bounds.IsNormalized()
}

// NormalizeBounds rewrites every loop under root so that its induction
// variable ranges over [1, N] with step 1, substituting the variable
// throughout the loop body with the remapping
//
//	i_old = (i_new - 1)*step + start
//
// and the trip count N = (stop-start)/step + 1. Every maximal loop nest
// under root is normalized independently, innermost loop first, so the
// outer substitution applies to the already rewritten inner loops. The
// result is a rewritten copy; root is never mutated, and siblings that
// did not change stay structurally shared.
func NormalizeBounds(root ir.Node) (ir.Node, error) {
	return NormalizeBoundsOpts(root, DefaultOptions())
}

// NormalizeBoundsOpts is NormalizeBounds with explicit options.
func NormalizeBoundsOpts(root ir.Node, opts Options) (ir.Node, error) {
	n := normalizer{opts: opts}
	repl := map[ir.Node]ir.Node{}
	for _, nest := range ir.FindLoops(root, true) {
		rewritten, err := n.loop(nest)
		if err != nil {
			return nil, err
		}
		if rewritten != nest {
			repl[nest] = rewritten
		}
	}
	if len(repl) == 0 {
		return root, nil
	}
	return ir.Transform(root, repl), nil
}

type normalizer struct {
	opts Options
}

// loop normalizes a single loop, innermost first: the loops contained
// in the body are rewritten before this loop's substitution is applied,
// so the substitution sees the rewritten inner loops, not the stale
// originals.
func (n normalizer) loop(l *ir.Loop) (*ir.Loop, error) {
	repl := map[ir.Node]ir.Node{}
	for _, stmt := range l.Body {
		for _, inner := range ir.FindLoops(stmt, true) {
			rewritten, err := n.loop(inner)
			if err != nil {
				return nil, err
			}
			if rewritten != inner {
				repl[inner] = rewritten
			}
		}
	}
	body := l.Body
	if len(repl) > 0 {
		body, _ = ir.TransformBody(body, repl)
	}
	if l.Bounds.IsNormalized() {
		// Already normalized by literal value: bounds and body stay
		// as-is, modulo the rewritten inner loops.
		if len(repl) == 0 {
			return l, nil
		}
		c := l.Clone()
		c.Body = body
		return c, nil
	}
	start, stop, step := l.Bounds.Start, l.Bounds.Stop, l.Bounds.StepOrOne()
	count, err := tripCount(start, stop, step)
	if err != nil {
		return nil, errors.Wrapf(err, "loop over %s", l.Var)
	}
	remap := ir.Add(ir.Mul(ir.Sub(l.Var, ir.NewInt(1)), step), start)
	sub := ir.NewExprMap()
	sub.Put(l.Var, remap)
	body, _ = ir.SubstituteExprsInBody(body, sub, n.opts.InvalidateSource)
	c := l.Clone()
	c.Bounds = &ir.LoopRange{Start: ir.NewInt(1), Stop: count, Step: ir.NewInt(1)}
	c.Body = body
	if n.opts.InvalidateSource {
		c.Src = ""
	}
	return c, nil
}

// tripCount computes the normalized upper bound (stop-start)/step + 1.
// All-literal bounds take the exact integer floor division route.
// Symbolic bounds fall back to plain division under simplification,
// which is not floor division: the two routes intentionally stay
// distinct, matching the established transformation pipelines that
// assume symbolic bounds divide evenly.
func tripCount(start, stop, step ir.Expr) (ir.Expr, error) {
	startLit, startOk := start.(*ir.IntLit)
	stopLit, stopOk := stop.(*ir.IntLit)
	stepLit, stepOk := step.(*ir.IntLit)
	if startOk && stopOk && stepOk {
		return ir.NewInt(linalg.FloorDiv(stopLit.Val-startLit.Val, stepLit.Val) + 1), nil
	}
	return expr.Simplify(ir.Add(ir.Div(ir.Sub(stop, start), step), ir.NewInt(1)))
}

// NestedLoops returns the maximal chain of directly nested loops
// starting at root, outer to inner. If root is not itself a loop, the
// chain starts at the first outermost loop found under it. The chain
// follows a loop whose body contains exactly one loop at its top level
// and stops at the first level with zero or several sibling loops.
func NestedLoops(root ir.Node) []*ir.Loop {
	l, ok := root.(*ir.Loop)
	if !ok {
		found := ir.FindLoops(root, true)
		if len(found) == 0 {
			return nil
		}
		l = found[0]
	}
	var loops []*ir.Loop
	for l != nil {
		loops = append(loops, l)
		l = soleChildLoop(l.Body)
	}
	return loops
}

// NestDepth returns the deepest loop nesting found under root.
func NestDepth(root ir.Node) int {
	depth := 0
	for _, l := range ir.FindLoops(root, true) {
		d := 1
		for _, stmt := range l.Body {
			if sub := 1 + NestDepth(stmt); sub > d {
				d = sub
			}
		}
		if d > depth {
			depth = d
		}
	}
	return depth
}

func soleChildLoop(body []ir.Node) *ir.Loop {
	isLoop := func(n ir.Node) bool {
		_, ok := n.(*ir.Loop)
		return ok
	}
	var child *ir.Loop
	for stmt := range iter.Filter(isLoop, body) {
		if child != nil {
			return nil
		}
		child = stmt.(*ir.Loop)
	}
	return child
}
