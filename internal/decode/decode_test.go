package decode

import (
	"math"
	"testing"

	"github.com/gitrdm/paraspace/internal/graph"
	"github.com/gitrdm/paraspace/internal/smt"
)

func TestDecodeSkipsInactiveTokens(t *testing.T) {
	ctx := smt.NewContext()
	s := smt.NewSolver(ctx)
	g := graph.New()

	tl := g.AddTimeline("robot", false)
	start := ctx.FixedReal("s", smt.FromInt(0))
	end := ctx.FixedReal("e", smt.FromInt(5))
	st := g.AddState(tl, start, end)

	active := ctx.FreshBool("active")
	inactive := ctx.FreshBool("inactive")
	g.AddToken(st, "moving", active, false)
	g.AddToken(st, "idle", inactive, false)

	s.Assert(active)
	s.Assert(inactive.Not())
	status, _ := s.Check(nil)
	if status != smt.Sat {
		t.Fatalf("expected Sat, got %v", status)
	}

	sol := Decode(g, s)
	if len(sol.Tokens) != 1 {
		t.Fatalf("expected exactly one active token decoded, got %d", len(sol.Tokens))
	}
	tok := sol.Tokens[0]
	if tok.Value != "moving" || tok.ObjectName != "robot" {
		t.Errorf("expected moving/robot, got %+v", tok)
	}
	if tok.StartTime != 0 || tok.EndTime != 5 {
		t.Errorf("expected start=0 end=5, got start=%v end=%v", tok.StartTime, tok.EndTime)
	}
}

func TestDecodeKeepsUnconditionalFactTokens(t *testing.T) {
	ctx := smt.NewContext()
	s := smt.NewSolver(ctx)
	g := graph.New()

	tl := g.AddTimeline("charger", false)
	start := ctx.FixedReal("s", smt.FromInt(0))
	end := ctx.FixedReal("e", smt.PosInf)
	st := g.AddState(tl, start, end)
	g.AddToken(st, "on", smt.Lit{}, true)

	status, _ := s.Check(nil)
	if status != smt.Sat {
		t.Fatalf("expected Sat, got %v", status)
	}

	sol := Decode(g, s)
	if len(sol.Tokens) != 1 || sol.Tokens[0].Value != "on" {
		t.Fatalf("expected the unconditional fact token to survive decoding, got %+v", sol.Tokens)
	}
	if !math.IsInf(sol.Tokens[0].EndTime, 1) {
		t.Errorf("expected an open end time (+Inf), got %v", sol.Tokens[0].EndTime)
	}
}

func TestDecodeOpenFactHasInfiniteEndpoints(t *testing.T) {
	ctx := smt.NewContext()
	s := smt.NewSolver(ctx)
	g := graph.New()

	tl := g.AddTimeline("power", false)
	start := ctx.FixedReal("s", smt.NegInf)
	end := ctx.FixedReal("e", smt.PosInf)
	st := g.AddState(tl, start, end)
	g.AddToken(st, "on", smt.Lit{}, true)

	status, _ := s.Check(nil)
	if status != smt.Sat {
		t.Fatalf("expected Sat, got %v", status)
	}

	sol := Decode(g, s)
	if len(sol.Tokens) != 1 || sol.Tokens[0].Value != "on" {
		t.Fatalf("expected the unconditional fact token to survive decoding, got %+v", sol.Tokens)
	}
	if !math.IsInf(sol.Tokens[0].StartTime, -1) {
		t.Errorf("expected an open start time (-Inf), got %v", sol.Tokens[0].StartTime)
	}
	if !math.IsInf(sol.Tokens[0].EndTime, 1) {
		t.Errorf("expected an open end time (+Inf), got %v", sol.Tokens[0].EndTime)
	}
}
