package ir_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/loopnest/ir"
)

func literalLoop(name string, start, stop int64, body ...ir.Node) *ir.Loop {
	return &ir.Loop{
		Var:    ir.NewVar(name),
		Bounds: &ir.LoopRange{Start: ir.NewInt(start), Stop: ir.NewInt(stop)},
		Body:   body,
	}
}

func assign(lhs, rhs ir.Expr) *ir.Assignment {
	return &ir.Assignment{LHS: lhs, RHS: rhs}
}

func loopVarNames(loops []*ir.Loop) []string {
	names := make([]string, len(loops))
	for i, l := range loops {
		names[i] = l.Var.Name
	}
	return names
}

func TestFindLoops(t *testing.T) {
	inner := literalLoop("j", 1, 5, assign(ir.NewVar("x"), ir.NewVar("j")))
	outer := literalLoop("i", 1, 10, inner)
	sibling := literalLoop("k", 1, 3)
	root := &ir.Subroutine{Name: "nest", Body: []ir.Node{
		outer,
		&ir.Conditional{Cond: &ir.Comparison{Op: ">", Left: ir.NewVar("n"), Right: ir.NewInt(0)},
			Body: []ir.Node{sibling}},
	}}

	got := loopVarNames(ir.FindLoops(root, false))
	if diff := cmp.Diff(got, []string{"i", "j", "k"}); diff != "" {
		t.Errorf("incorrect loops:\n%s", diff)
	}

	// The greedy walk stops at the outermost loop of each nest.
	got = loopVarNames(ir.FindLoops(root, true))
	if diff := cmp.Diff(got, []string{"i", "k"}); diff != "" {
		t.Errorf("incorrect greedy loops:\n%s", diff)
	}
}

func TestFindVariables(t *testing.T) {
	i, j, n := ir.NewVar("i"), ir.NewVar("j"), ir.NewVar("n")
	tests := []struct {
		node ir.Node
		want []string
	}{
		{
			node: ir.Add(ir.Mul(ir.NewInt(2), i), j, i),
			want: []string{"i", "j"},
		},
		{
			node: &ir.ArrayRef{Name: "a", Subscripts: []ir.Expr{i, ir.Add(j, ir.NewInt(1))}},
			want: []string{"i", "j"},
		},
		{
			node: &ir.Loop{
				Var:    i,
				Bounds: &ir.LoopRange{Start: ir.NewInt(1), Stop: n},
				Body:   []ir.Node{assign(&ir.ArrayRef{Name: "a", Subscripts: []ir.Expr{i}}, j)},
			},
			want: []string{"i", "n", "j"},
		},
	}
	for _, test := range tests {
		var got []string
		for _, v := range ir.FindVariables(test.node) {
			got = append(got, v.Name)
		}
		if diff := cmp.Diff(got, test.want); diff != "" {
			t.Errorf("incorrect variables:\n%s", diff)
		}
	}
}
