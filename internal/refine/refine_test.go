package refine

import (
	"testing"

	"github.com/gitrdm/paraspace/internal/encoder"
	"github.com/gitrdm/paraspace/internal/expander"
	"github.com/gitrdm/paraspace/internal/graph"
	"github.com/gitrdm/paraspace/internal/index"
	"github.com/gitrdm/paraspace/internal/problem"
	"github.com/gitrdm/paraspace/internal/smt"
)

func newLoop(t *testing.T, p *problem.Problem) *Loop {
	t.Helper()
	idx := index.Build(p)
	g := graph.New()
	s := smt.NewSolver(smt.NewContext())
	if err := expander.Seed(idx, g, s, p); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	exp := expander.New(g, idx, s)
	enc := encoder.New(g, idx, s, exp)
	return New(g, enc, s)
}

func simpleGoalProblem() *problem.Problem {
	return &problem.Problem{
		Timelines: []problem.Timeline{
			{Name: "light", Values: []problem.Value{
				{Name: "off", Duration: problem.Duration{Min: 1}},
				{Name: "on", Duration: problem.Duration{Min: 1}, Conditions: []problem.Condition{
					{TemporalRelationship: problem.Meet, Object: problem.ObjectSet{Object: "light"}, Value: "off"},
				}},
			}},
		},
		Tokens: []problem.Token{
			{TimelineName: "light", Value: "on", ConstTime: problem.TokenTime{Kind: problem.KindGoal}},
		},
	}
}

func TestRunReturnsSatSolution(t *testing.T) {
	loop := newLoop(t, simpleGoalProblem())

	sol, err := loop.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, tok := range sol.Tokens {
		if tok.Value == "on" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the goal value in the solution, got %+v", sol.Tokens)
	}
}

func TestAssumptionsCollectsLiveExtensions(t *testing.T) {
	loop := newLoop(t, simpleGoalProblem())

	// Drive one round so the encoder mints its extension literals before
	// assumptions() is asked to collect them.
	for loop.Enc.Round() {
	}

	assumptions := loop.assumptions()
	if len(assumptions) == 0 {
		t.Fatal("expected at least one live extension literal (the goal extension)")
	}
}

func TestPushExtensionPanicsOnUnknownLiteral(t *testing.T) {
	loop := newLoop(t, simpleGoalProblem())

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected a panic for a literal naming no known extension")
		}
	}()
	loop.pushExtension(loop.S.Ctx().FreshBool("stray"))
}
