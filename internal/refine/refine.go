// Package refine implements the Refinement Loop (spec.md §4.4): drive
// expansion to a fixed point, solve under negated-extension assumptions,
// and on UNSAT map the core back to the condition or goal it names before
// expanding again.
package refine

import (
	"fmt"

	"github.com/gitrdm/paraspace/internal/decode"
	"github.com/gitrdm/paraspace/internal/encoder"
	"github.com/gitrdm/paraspace/internal/graph"
	"github.com/gitrdm/paraspace/internal/perr"
	"github.com/gitrdm/paraspace/internal/problem"
	"github.com/gitrdm/paraspace/internal/smt"
)

// Loop drives one solving session's expansion/encode/solve cycle.
type Loop struct {
	G   *graph.Graph
	Enc *encoder.Encoder
	S   *smt.Solver
}

// New builds a Loop over the given collaborators.
func New(g *graph.Graph, enc *encoder.Encoder, s *smt.Solver) *Loop {
	return &Loop{G: g, Enc: enc, S: s}
}

// Run repeats expand-to-fixed-point, assumption assembly, and solver.Check
// until SAT (returning the decoded Solution) or a terminal NoSolution
// error. A solver.Check call reporting UNKNOWN is a fatal condition
// (spec.md §7) and panics rather than returning an error, since it
// signals the SMT backend could not decide the encoding at all.
func (l *Loop) Run() (problem.Solution, error) {
	for {
		for l.Enc.Round() {
		}

		assumptions := l.assumptions()
		status, core := l.S.Check(assumptions)

		switch status {
		case smt.Sat:
			return decode.Decode(l.G, l.S), nil
		case smt.Unsat:
			if len(core) == 0 {
				return problem.Solution{}, perr.New(perr.NoSolution, "unsat with an empty core: no expansion can help")
			}
			for _, lit := range core {
				l.pushExtension(lit)
			}
		default:
			panic("refine: solver returned UNKNOWN")
		}
	}
}

// assumptions collects ¬ext for every currently live extension literal:
// one per causal-link condition and one per timeline with a pending goal,
// per spec.md §4.4 step 1.
func (l *Loop) assumptions() []smt.Lit {
	var out []smt.Lit
	for i := range l.G.Conditions {
		if ext := l.G.Conditions[i].AltExtension; ext.Valid() {
			out = append(out, ext.Not())
		}
	}
	for i := range l.G.Timelines {
		if ext := l.G.Timelines[i].GoalExtension; ext.Valid() {
			out = append(out, ext.Not())
		}
	}
	return out
}

// pushExtension maps one unsat-core literal back to the condition or goal
// timeline it guards and extends it: a causal-link condition is
// reprocessed (scanning for new candidates and, if still short, growing
// one eligible timeline), and a goal timeline is grown by one more
// initial-values state, per spec.md §4.4 step 5's literal description of
// expand(timeline, None).
func (l *Loop) pushExtension(lit smt.Lit) {
	v := lit.Var()
	if condIdx, ok := l.Enc.ExtToCondition[v]; ok {
		l.Enc.Reprocess(condIdx)
		return
	}
	if timelineIdx, ok := l.Enc.ExtToGoal[v]; ok {
		l.Enc.Exp.Expand(timelineIdx, nil)
		return
	}
	panic(fmt.Sprintf("refine: unsat core literal for var %d names no known extension", v))
}
