// Package planner is the top-level coordinator: seed the Graph Store from
// a Problem, run the Refinement Loop to a SAT model or a terminal error,
// and return the decoded Solution. It is the one package every other
// internal package sits underneath.
package planner

import (
	"log/slog"
	"time"

	"github.com/gitrdm/paraspace/internal/encoder"
	"github.com/gitrdm/paraspace/internal/expander"
	"github.com/gitrdm/paraspace/internal/graph"
	"github.com/gitrdm/paraspace/internal/index"
	"github.com/gitrdm/paraspace/internal/problem"
	"github.com/gitrdm/paraspace/internal/refine"
	"github.com/gitrdm/paraspace/internal/smt"
)

// Solve runs one planning session end to end. It returns a *perr.Error for
// any of the three terminal conditions spec.md §7 names; every other
// failure mode in this planner is a panic (solver indeterminate,
// unreachable expansion target, multiple facts on one timeline), which
// the caller is expected to recover at its own boundary (see
// cmd/paraspace's solve command).
func Solve(p *problem.Problem, logger *slog.Logger) (problem.Solution, error) {
	if logger == nil {
		logger = slog.Default()
	}

	idx := index.Build(p)
	g := graph.New()
	solver := smt.NewSolver(smt.NewContext())

	var seedErr error
	timed(logger, "seed", func() {
		seedErr = expander.Seed(idx, g, solver, p)
	})
	if seedErr != nil {
		return problem.Solution{}, seedErr
	}

	exp := expander.New(g, idx, solver)
	enc := encoder.New(g, idx, solver, exp)
	loop := refine.New(g, enc, solver)

	var sol problem.Solution
	var solveErr error
	timed(logger, "refine", func() {
		sol, solveErr = loop.Run()
	})
	return sol, solveErr
}

// timed logs one debug-level line per phase, in the manner of
// original_source/src/lib.rs's print_calc_time wrapper.
func timed(logger *slog.Logger, phase string, f func()) {
	start := time.Now()
	f()
	logger.Debug("phase finished", "phase", phase, "elapsed", time.Since(start))
}
