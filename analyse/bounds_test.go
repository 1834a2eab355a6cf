package analyse_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/gx-org/loopnest/analyse"
	"github.com/gx-org/loopnest/expr"
	"github.com/gx-org/loopnest/ir"
)

func loop(name string, bounds *ir.LoopRange, body ...ir.Node) *ir.Loop {
	return &ir.Loop{Var: ir.NewVar(name), Bounds: bounds, Body: body}
}

func bounds(start, stop, step int64) *ir.LoopRange {
	return &ir.LoopRange{Start: ir.NewInt(start), Stop: ir.NewInt(stop), Step: ir.NewInt(step)}
}

func store(array string, subscripts ...ir.Expr) *ir.Assignment {
	return &ir.Assignment{
		LHS: &ir.ArrayRef{Name: array, Subscripts: subscripts},
		RHS: ir.NewInt(1),
	}
}

// evalExpr executes a literal expression under an environment of
// variable values.
func evalExpr(t *testing.T, e ir.Expr, vars map[string]int64) int64 {
	t.Helper()
	switch eT := e.(type) {
	case *ir.IntLit:
		return eT.Val
	case *ir.Var:
		v, ok := vars[eT.Name]
		if !ok {
			t.Fatalf("unbound variable %s", eT.Name)
		}
		return v
	case *ir.Sum:
		var sum int64
		for _, term := range eT.Terms {
			sum += evalExpr(t, term, vars)
		}
		return sum
	case *ir.Product:
		prod := int64(1)
		for _, factor := range eT.Factors {
			prod *= evalExpr(t, factor, vars)
		}
		return prod
	case *ir.Quotient:
		num, den := evalExpr(t, eT.Num, vars), evalExpr(t, eT.Den, vars)
		if den == 0 || num%den != 0 {
			t.Fatalf("inexact division %d/%d while executing %s", num, den, e)
		}
		return num / den
	}
	t.Fatalf("cannot execute expression %s of type %T", e, e)
	return 0
}

func evalComparison(t *testing.T, cond ir.Expr, vars map[string]int64) bool {
	t.Helper()
	c, ok := cond.(*ir.Comparison)
	if !ok {
		t.Fatalf("cannot execute condition %s of type %T", cond, cond)
	}
	left, right := evalExpr(t, c.Left, vars), evalExpr(t, c.Right, vars)
	switch c.Op {
	case "<":
		return left < right
	case "<=":
		return left <= right
	case ">":
		return left > right
	case ">=":
		return left >= right
	case "==":
		return left == right
	case "/=":
		return left != right
	}
	t.Fatalf("cannot execute comparison operator %q", c.Op)
	return false
}

// run executes a body of loops and assignments, recording the subscript
// tuples of every array store in visit order. It is the test stand-in
// for compiling and running the Fortran routine.
func run(t *testing.T, body []ir.Node, vars map[string]int64, visits *[][]int64) {
	t.Helper()
	for _, stmt := range body {
		switch sT := stmt.(type) {
		case *ir.Assignment:
			ref, ok := sT.LHS.(*ir.ArrayRef)
			if !ok {
				continue
			}
			tuple := make([]int64, len(ref.Subscripts))
			for k, sub := range ref.Subscripts {
				tuple[k] = evalExpr(t, sub, vars)
			}
			*visits = append(*visits, tuple)
		case *ir.Conditional:
			if evalComparison(t, sT.Cond, vars) {
				run(t, sT.Body, vars, visits)
			} else {
				run(t, sT.Else, vars, visits)
			}
		case *ir.Loop:
			start := evalExpr(t, sT.Bounds.Start, vars)
			stop := evalExpr(t, sT.Bounds.Stop, vars)
			step := evalExpr(t, sT.Bounds.StepOrOne(), vars)
			for v := start; v <= stop; v += step {
				vars[sT.Var.Name] = v
				run(t, sT.Body, vars, visits)
			}
			delete(vars, sT.Var.Name)
		default:
			t.Fatalf("cannot execute statement %T", stmt)
		}
	}
}

func TestNormalizeBounds(t *testing.T) {
	// do i = 2, 20, 3 with a(i): 7 iterations over 2, 5, ..., 20.
	l := loop("i", bounds(2, 20, 3), store("a", ir.NewVar("i")))
	got, err := analyse.NormalizeBounds(l)
	if err != nil {
		t.Fatal(err)
	}
	gotLoop := got.(*ir.Loop)
	if !analyse.IsNormalized(gotLoop) {
		t.Errorf("loop bounds %s..%s are not normalized", gotLoop.Bounds.Start, gotLoop.Bounds.Stop)
	}
	stop, ok := gotLoop.Bounds.Stop.(*ir.IntLit)
	if !ok || stop.Val != 7 {
		t.Errorf("trip count = %s but want 7", gotLoop.Bounds.Stop)
	}
	sub := gotLoop.Body[0].(*ir.Assignment).LHS.(*ir.ArrayRef).Subscripts[0]
	if want := "(i - 1)*3 + 2"; sub.String() != want {
		t.Errorf("rewritten subscript = %s but want %s", sub, want)
	}
	// The input loop is untouched.
	if l.Bounds.Start.(*ir.IntLit).Val != 2 {
		t.Errorf("original loop was mutated")
	}
}

func TestNormalizeBoundsIdempotent(t *testing.T) {
	l := loop("i", bounds(1, 10, 1),
		loop("j", &ir.LoopRange{Start: ir.NewInt(1), Stop: ir.NewInt(5)},
			store("a", ir.NewVar("i"), ir.NewVar("j"))))
	got, err := analyse.NormalizeBounds(l)
	if err != nil {
		t.Fatal(err)
	}
	if got != ir.Node(l) {
		t.Errorf("normalizing an already normalized nest rebuilt the tree")
	}
}

func TestNormalizeBoundsRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		root ir.Node
	}{
		{
			name: "flat",
			root: loop("i", bounds(2, 20, 3), store("a", ir.NewVar("i"))),
		},
		{
			name: "nested",
			root: loop("i", bounds(1, 10, 2),
				loop("j", bounds(3, 9, 3),
					store("a", ir.NewVar("i"), ir.NewVar("j")))),
		},
		{
			name: "triangular",
			root: loop("i", bounds(2, 6, 2),
				loop("j", &ir.LoopRange{Start: ir.NewVar("i"), Stop: ir.NewInt(10)},
					store("a", ir.NewVar("i"), ir.NewVar("j")))),
		},
		{
			name: "subscript arithmetic",
			root: loop("i", bounds(1, 9, 4), store("a", ir.Sub(ir.NewInt(10), ir.NewVar("i")))),
		},
		{
			name: "conditional between loops",
			root: loop("i", bounds(2, 8, 2),
				&ir.Conditional{
					Cond: &ir.Comparison{Op: ">", Left: ir.NewVar("i"), Right: ir.NewInt(0)},
					Body: []ir.Node{loop("j", bounds(5, 15, 5),
						store("a", ir.NewVar("i"), ir.NewVar("j")))},
				}),
		},
	}
	for _, test := range tests {
		var want [][]int64
		runRoot(t, test.root, &want)

		got, err := analyse.NormalizeBounds(test.root)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		for _, l := range ir.FindLoops(got, false) {
			if !analyse.IsNormalized(l) {
				t.Errorf("%s: loop over %s is not normalized", test.name, l.Var)
			}
		}
		var visits [][]int64
		runRoot(t, got, &visits)
		if diff := cmp.Diff(visits, want); diff != "" {
			t.Errorf("%s: normalized nest visits different index tuples:\n%s", test.name, diff)
		}
	}
}

// runRoot executes a root that may itself be a loop or conditional.
func runRoot(t *testing.T, root ir.Node, visits *[][]int64) {
	run(t, []ir.Node{root}, map[string]int64{}, visits)
}

func TestNormalizeBoundsSymbolic(t *testing.T) {
	n := ir.NewVar("n")
	l := loop("i", &ir.LoopRange{Start: ir.NewInt(2), Stop: n, Step: ir.NewInt(2)},
		store("a", ir.NewVar("i")))
	got, err := analyse.NormalizeBounds(l)
	if err != nil {
		t.Fatal(err)
	}
	gotLoop := got.(*ir.Loop)
	// The symbolic route is plain division under simplification, not
	// floor division.
	if want := "(n - 2)/2 + 1"; gotLoop.Bounds.Stop.String() != want {
		t.Errorf("symbolic trip count = %s but want %s", gotLoop.Bounds.Stop, want)
	}
	if want := "(i - 1)*2 + 2"; gotLoop.Body[0].(*ir.Assignment).LHS.(*ir.ArrayRef).Subscripts[0].String() != want {
		t.Errorf("rewritten subscript = %s", gotLoop.Body[0].(*ir.Assignment).LHS)
	}
}

func TestNormalizeBoundsError(t *testing.T) {
	stop := &ir.ArrayRef{Name: "ub", Subscripts: []ir.Expr{ir.NewVar("k")}}
	l := loop("i", &ir.LoopRange{Start: ir.NewInt(2), Stop: stop, Step: ir.NewInt(2)},
		store("a", ir.NewVar("i")))
	_, err := analyse.NormalizeBounds(l)
	if err == nil {
		t.Fatal("no error returned for a data-dependent bound")
	}
	var nonAffine *expr.NonAffineError
	if !errors.As(err, &nonAffine) {
		t.Errorf("error %v is not a non-affine error", err)
	}
	if !strings.Contains(err.Error(), "loop over i") {
		t.Errorf("error %q does not name the offending loop", err)
	}
}

func TestNormalizeBoundsIndependentNests(t *testing.T) {
	first := loop("i", bounds(2, 10, 2), store("a", ir.NewVar("i")))
	second := loop("k", bounds(0, 6, 3), store("b", ir.NewVar("k")))
	routine := &ir.Subroutine{Name: "two_nests", Body: []ir.Node{first, second}}

	got, err := analyse.NormalizeBounds(routine)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range ir.FindLoops(got, false) {
		if !analyse.IsNormalized(l) {
			t.Errorf("loop over %s is not normalized", l.Var)
		}
	}
	stops := []int64{
		got.(*ir.Subroutine).Body[0].(*ir.Loop).Bounds.Stop.(*ir.IntLit).Val,
		got.(*ir.Subroutine).Body[1].(*ir.Loop).Bounds.Stop.(*ir.IntLit).Val,
	}
	if diff := cmp.Diff(stops, []int64{5, 3}); diff != "" {
		t.Errorf("incorrect trip counts:\n%s", diff)
	}
}

func TestNestedLoops(t *testing.T) {
	inner := loop("j", bounds(1, 5, 1), store("a", ir.NewVar("i"), ir.NewVar("j")))
	outer := loop("i", bounds(1, 10, 1), inner)

	var names []string
	for _, l := range analyse.NestedLoops(outer) {
		names = append(names, l.Var.Name)
	}
	if diff := cmp.Diff(names, []string{"i", "j"}); diff != "" {
		t.Errorf("incorrect nest chain:\n%s", diff)
	}

	// Two sibling loops end the chain.
	forked := loop("i", bounds(1, 10, 1),
		loop("j", bounds(1, 5, 1)),
		loop("k", bounds(1, 5, 1)))
	if got := analyse.NestedLoops(forked); len(got) != 1 {
		t.Errorf("forked nest chain has %d loops but want 1", len(got))
	}
}

func TestNestDepth(t *testing.T) {
	root := &ir.Subroutine{Name: "s", Body: []ir.Node{
		loop("i", bounds(1, 10, 1),
			loop("j", bounds(1, 5, 1),
				loop("k", bounds(1, 2, 1)))),
		loop("l", bounds(1, 3, 1)),
	}}
	if got := analyse.NestDepth(root); got != 3 {
		t.Errorf("NestDepth = %d but want 3", got)
	}
	if got := analyse.NestDepth(store("a", ir.NewVar("i"))); got != 0 {
		t.Errorf("NestDepth of a loop-free tree = %d but want 0", got)
	}
}
