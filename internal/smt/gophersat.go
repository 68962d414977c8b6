package smt

import (
	"github.com/crillab/gophersat/solver"
)

// solveBoolean hands the current clause set plus a batch of forced unit
// literals to gophersat and returns the satisfying assignment, keyed by
// variable id (index 0 unused). This is rebuilt from scratch on every
// call — gophersat's public solver.Problem is a one-shot CNF input, not an
// incremental solver — which is acceptable for the problem sizes this
// planner targets (spec.md §9) and mirrors how
// other_examples/…rhansen-gomoddepgraph…resolvesat.go.go drives the same
// package: build a solver.Problem, call solver.New(prob).Solve().
func (s *Solver) solveBoolean(forced []Lit) ([]bool, bool) {
	clauses := make([]*solver.Clause, 0, len(s.clauses)+len(forced))
	for _, cl := range s.clauses {
		clauses = append(clauses, toGophersatClause(cl))
	}
	for _, lit := range forced {
		clauses = append(clauses, toGophersatClause(Clause{lit}))
	}

	pb := solver.Problem{Clauses: clauses, Vars: int(s.ctx.nextBool)}
	gs := solver.New(pb)
	if status := gs.Solve(); status != solver.Sat {
		return nil, false
	}

	model := gs.Model()
	bits := make([]bool, s.ctx.nextBool+1)
	for i, v := range model {
		bits[i+1] = v
	}
	return bits, true
}

// checkSatWithout reports whether the boolean skeleton (plus every forced
// literal in kept) is satisfiable, used by the unsat-core shrinking loop in
// solver.go. It never consults the real-arithmetic theory: once a clause
// has been permanently learned (via a theory conflict), any boolean model
// honoring it is theory-sound as far as the dropped-assumption question is
// concerned.
func (s *Solver) checkSatWithout(kept []Lit) bool {
	_, ok := s.solveBoolean(kept)
	return ok
}

func toGophersatClause(cl Clause) *solver.Clause {
	lits := make([]solver.Lit, len(cl))
	for i, l := range cl {
		n := l.v
		lits[i] = solver.IntToLit(n)
	}
	return solver.NewClause(lits)
}
