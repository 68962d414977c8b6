// Package expander implements the lazy graph expansion spec.md §4.2
// describes: growing a timeline's transition chain, one state at a time,
// until a required value becomes reachable. It also owns seeding (§4.1):
// turning a Problem's facts and goals into the Graph Store's initial
// states, and the goal-completion watchdog that keeps a timeline's chain
// growing until its pending goal value is realized.
package expander

import (
	"fmt"

	"github.com/gitrdm/paraspace/internal/graph"
	"github.com/gitrdm/paraspace/internal/index"
	"github.com/gitrdm/paraspace/internal/perr"
	"github.com/gitrdm/paraspace/internal/problem"
	"github.com/gitrdm/paraspace/internal/smt"
)

// Expander grows timelines against a shared Graph Store, Index, and
// Solver. It holds no state of its own beyond those three references.
type Expander struct {
	G   *graph.Graph
	Idx *index.Index
	S   *smt.Solver
}

// New builds an Expander over the given collaborators.
func New(g *graph.Graph, idx *index.Index, s *smt.Solver) *Expander {
	return &Expander{G: g, Idx: idx, S: s}
}

// Expand grows timeline by one state (target == nil: the timeline's
// initial values) or by as many states as the shortest transition path to
// target requires, each a full closed set of one-step successors (not
// pruned to just the path toward target). It reports false when target is
// unreachable from the timeline's current last state.
func (e *Expander) Expand(timelineIdx int, target *string) bool {
	spec, ok := e.Idx.TimelineSpec(e.G.Timelines[timelineIdx].Name)
	if !ok {
		return false // facts-only timeline: no ValueSpecs to expand from
	}

	if target == nil {
		values := initialValues(spec)
		if len(values) == 0 {
			return false
		}
		e.appendState(timelineIdx, values)
		return true
	}

	prev := e.lastStateValues(timelineIdx)
	dist, ok := distanceTo(spec, prev, *target)
	if !ok {
		return false
	}

	frontier := prev
	for step := 0; step < dist; step++ {
		next := nextValuesFrom(spec, frontier)
		e.appendState(timelineIdx, next)
		frontier = next
	}
	return true
}

// appendState materializes one new state on timeline with one token per
// value in values, each guarded by a fresh at-most-one-constrained active
// literal.
func (e *Expander) appendState(timelineIdx int, values []string) {
	var start *smt.RealVar
	if states := e.G.Timelines[timelineIdx].States; len(states) > 0 {
		start = e.G.States[states[len(states)-1]].End
	} else {
		start = e.S.Ctx().FreshReal("t0")
	}
	end := e.S.Ctx().FreshReal("t")

	stateIdx := e.G.AddState(timelineIdx, start, end)
	actives := make([]smt.Lit, 0, len(values))
	for _, v := range values {
		active := e.S.Ctx().FreshBool("active")
		e.G.AddToken(stateIdx, v, active, false)
		actives = append(actives, active)
	}
	e.S.AssertAtMostOne(actives)
}

// lastStateValues returns the value names of the tokens in timeline's
// current last state.
func (e *Expander) lastStateValues(timelineIdx int) []string {
	last := e.G.Timelines[timelineIdx].States
	if len(last) == 0 {
		return nil
	}
	state := e.G.States[last[len(last)-1]]
	values := make([]string, len(state.Tokens))
	for i, t := range state.Tokens {
		values[i] = e.G.Tokens[t].Value
	}
	return values
}

// initialValues returns the names of every ValueSpec on spec that carries
// no self-transition condition, i.e. every value legal as a timeline's
// first state.
func initialValues(spec *problem.Timeline) []string {
	var out []string
	for _, v := range spec.Values {
		transition := false
		for _, c := range v.Conditions {
			if c.IsTimelineTransition(spec.Name) {
				transition = true
				break
			}
		}
		if !transition {
			out = append(out, v.Name)
		}
	}
	return out
}

// nextValuesFrom returns the closed set of value names reachable in one
// transition step from any value in from, deduplicated and in spec.Values
// order for determinism.
func nextValuesFrom(spec *problem.Timeline, from []string) []string {
	fromSet := make(map[string]bool, len(from))
	for _, f := range from {
		fromSet[f] = true
	}
	var out []string
	for _, v := range spec.Values {
		for _, c := range v.Conditions {
			matched := false
			for f := range fromSet {
				if c.IsTimelineTransitionFrom(spec.Name, f) {
					matched = true
					break
				}
			}
			if matched {
				out = append(out, v.Name)
				break
			}
		}
	}
	return out
}

// distanceTo returns the length of the shortest directed path in spec's
// transition graph from any value in from to target, and whether target
// is reachable at all.
func distanceTo(spec *problem.Timeline, from []string, target string) (int, bool) {
	for _, f := range from {
		if f == target {
			return 0, true
		}
	}

	visited := make(map[string]bool, len(from))
	for _, f := range from {
		visited[f] = true
	}
	frontier := from
	dist := 0
	for len(frontier) > 0 {
		dist++
		next := nextValuesFrom(spec, frontier)
		var fresh []string
		for _, v := range next {
			if v == target {
				return dist, true
			}
			if !visited[v] {
				visited[v] = true
				fresh = append(fresh, v)
			}
		}
		if len(fresh) == 0 {
			return 0, false
		}
		frontier = fresh
	}
	return 0, false
}

// Seed builds the Graph Store's initial state from p: facts first (§4.1
// step 1), then initial expansion for every spec timeline without a fact
// (step 2), then validation and registration of every goal (step 3). Goal
// realization itself is left to Watchdog, called once per refinement
// round, matching the fact that a goal's required value may only become
// reachable after several rounds of chain growth.
func Seed(idx *index.Index, g *graph.Graph, s *smt.Solver, p *problem.Problem) error {
	timelineOf := make(map[string]int, len(p.Timelines))
	for _, t := range p.Timelines {
		timelineOf[t.Name] = g.AddTimeline(t.Name, false)
	}
	for _, tok := range p.Tokens {
		if _, ok := timelineOf[tok.TimelineName]; !ok {
			timelineOf[tok.TimelineName] = g.AddTimeline(tok.TimelineName, true)
		}
	}

	hasFact := make(map[string]bool, len(p.Tokens))
	for _, tok := range p.Tokens {
		if tok.ConstTime.IsGoal() {
			continue
		}
		if hasFact[tok.TimelineName] {
			panic(fmt.Sprintf("expander: timeline %q has more than one fact token", tok.TimelineName))
		}
		hasFact[tok.TimelineName] = true

		start := factTimeVar(s, tok.ConstTime.Start, true)
		end := factTimeVar(s, tok.ConstTime.End, false)
		stateIdx := g.AddState(timelineOf[tok.TimelineName], start, end)
		tokenIdx := g.AddToken(stateIdx, tok.Value, smt.Lit{}, true)
		g.Tokens[tokenIdx].Capacity = tok.Capacity
	}

	exp := New(g, idx, s)
	for _, t := range p.Timelines {
		if hasFact[t.Name] {
			continue
		}
		if !exp.Expand(timelineOf[t.Name], nil) {
			panic(fmt.Sprintf("expander: timeline %q has no legal initial value", t.Name))
		}
	}

	for _, tok := range p.Tokens {
		if !tok.ConstTime.IsGoal() {
			continue
		}
		valueSpec, ok := idx.ValueSpec(tok.TimelineName, tok.Value)
		if !ok {
			return perr.New(perr.GoalStateMissing, "timeline %q value %q", tok.TimelineName, tok.Value)
		}
		if valueSpec.Duration.Max != nil {
			return perr.New(perr.GoalValueDurationLimit, "timeline %q value %q", tok.TimelineName, tok.Value)
		}
		g.Goals = append(g.Goals, graph.Goal{Timeline: timelineOf[tok.TimelineName], Value: tok.Value})
	}

	return nil
}

// factTimeVar builds the RealVar for one endpoint of a fact: fixed to the
// given integer value when present, otherwise pinned to -Inf (start) or
// +Inf (end) representing an open endpoint, per spec.md §6's
// `start_time=-∞`/`end_time=+∞` convention. Both open endpoints are fixed
// the same way so the Model Decoder's `TimeOf` (which always reports a
// fixed var's own value) emits the right infinity without a special case,
// and so the real-arithmetic theory pins them into its consistency check
// instead of treating them as an ordinary free variable.
func factTimeVar(s *smt.Solver, v *uint64, isStart bool) *smt.RealVar {
	if v != nil {
		return s.Ctx().FixedReal("fact", smt.FromInt(int64(*v)))
	}
	if isStart {
		return s.Ctx().FixedReal("openStart", smt.NegInf)
	}
	return s.Ctx().FixedReal("openEnd", smt.PosInf)
}

// Watchdog grows every pending goal's timeline until its last state
// carries the goal value, per spec.md §4.3's goal-completion watchdog. It
// panics if a goal value is unreachable — expand() returning false here
// means the caller (the refinement loop, via the watchdog) expected
// reachability and was wrong, one of §7's fatal (not terminal-error)
// conditions.
func (e *Expander) Watchdog() {
	for _, goal := range e.G.Goals {
		for {
			values := e.lastStateValues(goal.Timeline)
			found := false
			for _, v := range values {
				if v == goal.Value {
					found = true
					break
				}
			}
			if found {
				break
			}
			if !e.Expand(goal.Timeline, &goal.Value) {
				panic(fmt.Sprintf("expander: goal value %q unreachable on timeline %d", goal.Value, goal.Timeline))
			}
		}
	}
}
