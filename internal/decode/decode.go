// Package decode implements the Model Decoder (spec.md §4.5): turning a
// SAT model into the Solution the caller asked for.
package decode

import (
	"github.com/gitrdm/paraspace/internal/graph"
	"github.com/gitrdm/paraspace/internal/problem"
	"github.com/gitrdm/paraspace/internal/smt"
)

// Decode emits one SolutionToken per token whose active literal is absent
// or true in the solver's most recent model, skipping every token whose
// active literal evaluates to false.
func Decode(g *graph.Graph, s *smt.Solver) problem.Solution {
	var tokens []problem.SolutionToken
	for _, t := range g.Tokens {
		if t.Active.Valid() && !s.ValueOf(t.Active) {
			continue
		}
		st := g.States[t.State]
		tl := g.Timelines[st.Timeline]
		tokens = append(tokens, problem.SolutionToken{
			ObjectName: tl.Name,
			Value:      t.Value,
			StartTime:  s.TimeOf(st.Start).ToFloat(),
			EndTime:    s.TimeOf(st.End).ToFloat(),
		})
	}
	return problem.Solution{Tokens: tokens}
}
