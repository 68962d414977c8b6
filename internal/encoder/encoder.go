// Package encoder implements spec.md §4.3: turning newly materialized
// graph records into SMT assertions. Encoder drains three growing
// cursors — state, token, condition — to a fixed point each round (a
// condition's processing can call back into the Expander, which appends
// more states and tokens, which themselves need processing), then emits
// the cumulative-resource refresh and finally the goal-completion
// watchdog.
package encoder

import (
	"fmt"

	"github.com/gitrdm/paraspace/internal/expander"
	"github.com/gitrdm/paraspace/internal/graph"
	"github.com/gitrdm/paraspace/internal/index"
	"github.com/gitrdm/paraspace/internal/problem"
	"github.com/gitrdm/paraspace/internal/smt"
)

// Encoder drives the graph-to-assertions translation over a shared Graph
// Store, Index, Solver, and Expander.
type Encoder struct {
	G   *graph.Graph
	Idx *index.Index
	S   *smt.Solver
	Exp *expander.Expander

	stateCursor int
	tokenCursor int
	condCursor  int

	timelineByName map[string]int

	// ExtToCondition and ExtToGoal map an extension literal's variable id
	// back to what it guards, for the refinement loop to turn a core
	// literal into more expansion work.
	ExtToCondition map[int32]int
	ExtToGoal      map[int32]int
}

// New builds an Encoder over the given collaborators.
func New(g *graph.Graph, idx *index.Index, s *smt.Solver, exp *expander.Expander) *Encoder {
	enc := &Encoder{
		G: g, Idx: idx, S: s, Exp: exp,
		timelineByName: make(map[string]int, len(g.Timelines)),
		ExtToCondition: make(map[int32]int),
		ExtToGoal:      make(map[int32]int),
	}
	for i, t := range g.Timelines {
		enc.timelineByName[t.Name] = i
	}
	return enc
}

// Round drains the state/token/condition cursors to a fixed point, then
// refreshes cumulative-resource constraints, then runs the goal watchdog —
// and if the watchdog grows any timeline, drains the new states/tokens and
// refreshes resources again within the same call, reporting growth.
// Callers (the refinement loop) should call Round repeatedly until it
// reports no further growth occurred.
func (enc *Encoder) Round() (grew bool) {
	for enc.drainOnce() {
		grew = true
	}
	enc.refreshResources()

	before := len(enc.G.States)
	enc.Exp.Watchdog()
	if len(enc.G.States) > before {
		grew = true
		for enc.drainOnce() {
		}
		enc.refreshResources()
	}
	return grew
}

func (enc *Encoder) drainOnce() bool {
	progressed := false
	for enc.stateCursor < len(enc.G.States) {
		enc.processState(enc.stateCursor)
		enc.stateCursor++
		progressed = true
	}
	for enc.tokenCursor < len(enc.G.Tokens) {
		enc.processToken(enc.tokenCursor)
		enc.tokenCursor++
		progressed = true
	}
	for enc.condCursor < len(enc.G.Conditions) {
		enc.processCondition(enc.condCursor)
		enc.condCursor++
		progressed = true
	}
	return progressed
}

// Reprocess re-runs processCondition for condIdx outside the normal
// cursor sweep, used by the refinement loop when condIdx's extension
// literal appears in an unsat core.
func (enc *Encoder) Reprocess(condIdx int) {
	enc.processCondition(condIdx)
}

func (enc *Encoder) timelineIndexByName(name string) int {
	idx, ok := enc.timelineByName[name]
	if !ok {
		panic(fmt.Sprintf("encoder: unknown timeline %q", name))
	}
	return idx
}

// processState emits the goal-candidate and goal-terminal assertions for
// one newly appended state.
func (enc *Encoder) processState(stateIdx int) {
	st := &enc.G.States[stateIdx]
	tl := &enc.G.Timelines[st.Timeline]
	if tl.FactsOnly {
		return
	}

	if st.StateSeq > 0 {
		prevIdx := tl.States[st.StateSeq-1]
		prev := &enc.G.States[prevIdx]
		for _, gl := range prev.GoalLits {
			for _, t := range st.Tokens {
				enc.S.Implies(gl, enc.G.Tokens[t].Active.Not())
			}
		}
	}

	for _, goal := range enc.G.Goals {
		if goal.Timeline != st.Timeline {
			continue
		}
		for _, t := range st.Tokens {
			if enc.G.Tokens[t].Value == goal.Value {
				lit := enc.attachGoalCandidate(st.Timeline, t)
				st.GoalLits = append(st.GoalLits, lit)
			}
		}
	}
}

// attachGoalCandidate mints a fresh goal literal for tokenIdx, asserts it
// implies the token's activity, and republishes the timeline's running
// "some goal candidate selected, or extend further" disjunction with the
// new literal folded in and a fresh extension literal replacing the old
// one — the assumption-literal lifecycle spec.md's design notes require.
func (enc *Encoder) attachGoalCandidate(timelineIdx, tokenIdx int) smt.Lit {
	goalLit := enc.S.Ctx().FreshBool("goalLit")
	enc.S.Implies(goalLit, enc.G.Tokens[tokenIdx].Active)

	tl := &enc.G.Timelines[timelineIdx]
	tl.GoalLits = append(tl.GoalLits, goalLit)
	newExt := enc.S.Ctx().FreshBool("goalExt")
	disj := append(append([]smt.Lit{}, tl.GoalLits...), newExt)
	enc.S.Assert(disj...)
	tl.GoalExtension = newExt
	enc.ExtToGoal[newExt.Var()] = timelineIdx
	return goalLit
}

// processToken emits the duration, transition, and causal-link obligations
// for one token (facts take the simpler path in processFactToken).
func (enc *Encoder) processToken(tokenIdx int) {
	tok := &enc.G.Tokens[tokenIdx]
	if tok.Fact {
		enc.processFactToken(tokenIdx)
		return
	}

	st := enc.G.States[tok.State]
	tlName := enc.G.Timelines[st.Timeline].Name
	valueSpec, ok := enc.Idx.ValueSpec(tlName, tok.Value)
	if !ok {
		if tok.Active.Valid() {
			enc.S.Assert(tok.Active.Not())
		}
		return
	}

	start := smt.VarTerm(st.Start)
	end := smt.VarTerm(st.End)
	enc.S.RealLe(start.Plus(smt.FromInt(int64(valueSpec.Duration.Min))), end, tok.Active)
	if valueSpec.Duration.Max != nil {
		enc.S.RealLe(end, start.Plus(smt.FromInt(int64(*valueSpec.Duration.Max))), tok.Active)
	}

	tok.Capacity = valueSpec.Capacity
	capacity := valueSpec.Capacity
	enc.G.ResourceFor(tokenIdx, &capacity)

	for _, cond := range valueSpec.Conditions {
		if cond.IsTimelineTransition(tlName) {
			enc.assertTransition(st, tok.Active, cond.Value)
			continue
		}
		enc.G.AddCondition(tokenIdx, cond)
	}
}

// assertTransition asserts guard -> (the OR of every st's predecessor
// state token active with value v), skipped entirely when st is the first
// state of its timeline (no predecessor to require).
func (enc *Encoder) assertTransition(st graph.State, guard smt.Lit, v string) {
	if st.StateSeq == 0 {
		return
	}
	prevIdx := enc.G.Timelines[st.Timeline].States[st.StateSeq-1]
	matches := enc.G.TokensWithValue(prevIdx, v)

	for _, m := range matches {
		if !enc.G.Tokens[m].Active.Valid() {
			return // an unconditionally active predecessor already satisfies this
		}
	}
	lits := make([]smt.Lit, len(matches))
	for i, m := range matches {
		lits[i] = enc.G.Tokens[m].Active
	}
	enc.S.AssertGuardedOr(guard, lits...)
}

// processFactToken asserts the one obligation a fact carries on its own:
// a non-degenerate interval.
func (enc *Encoder) processFactToken(tokenIdx int) {
	tok := enc.G.Tokens[tokenIdx]
	st := enc.G.States[tok.State]
	enc.S.RealLe(smt.VarTerm(st.Start).Plus(smt.FromInt(1)), smt.VarTerm(st.End), smt.Lit{})

	if tok.Capacity > 0 {
		capacity := tok.Capacity
		enc.G.ResourceFor(tokenIdx, &capacity)
	}
}

// processCondition resolves one causal-link obligation: find (or grow
// toward) eligible target tokens, wire a choose-link literal per
// candidate, and republish the alternatives disjunction with a fresh
// extension literal.
func (enc *Encoder) processCondition(condIdx int) {
	cond := &enc.G.Conditions[condIdx]
	members, err := enc.Idx.Members(cond.Spec.Object)
	if err != nil {
		panic(err)
	}

	// An empty candidate set always earns one attempt to grow toward the
	// needed value, by a deterministic rotation over the eligible
	// timelines — on first discovery (spec.md §4.3) and again any later
	// round the refinement loop pushes this condition back after seeing
	// its extension literal in an unsat core, since that signal means
	// "the alternatives considered so far aren't enough": the candidate
	// set can only grow, never shrink, so repeating the same attempt is
	// harmless when it was already satisfied by some other condition's
	// expansion in the meantime.
	candidates := enc.scanCandidates(members, cond.Spec.Value, cond.TokenQueue)
	if len(candidates) == 0 {
		pick := (len(enc.G.Tokens) + len(enc.G.Conditions)) % len(members)
		timelineName := members[pick]
		v := cond.Spec.Value
		if !enc.Exp.Expand(enc.timelineIndexByName(timelineName), &v) {
			if !cond.Visited {
				panic(fmt.Sprintf("encoder: causal-link target %q unreachable on timeline %q", v, timelineName))
			}
		} else {
			candidates = enc.scanCandidates(members, cond.Spec.Value, cond.TokenQueue)
		}
	}
	cond.Visited = true

	owner := enc.G.Tokens[cond.TokenIdx]
	chooseLits := make([]smt.Lit, 0, len(candidates))
	for _, tgt := range candidates {
		choose := enc.S.Ctx().FreshBool("choose")
		enc.assertLinkTemporal(cond.Spec.TemporalRelationship, tgt, cond.TokenIdx, choose)
		enc.S.Implies(choose, enc.G.Tokens[tgt].Active)
		chooseLits = append(chooseLits, choose)

		if cond.Spec.Amount > 0 {
			rc := enc.G.ResourceFor(tgt, nil)
			rc.Users = append(rc.Users, graph.ResourceUser{Link: choose, Consumer: cond.TokenIdx, Amount: cond.Spec.Amount})
		}
	}

	// need = old_extension ∨ owner.active (old extension supersedes active
	// when set; an unconditional owner makes need unconditionally true).
	// (A ∨ B) -> rest splits into two independent guarded assertions.
	oldExt := cond.AltExtension
	newExt := enc.S.Ctx().FreshBool("condExt")
	rest := append(append([]smt.Lit{}, chooseLits...), newExt)

	if oldExt.Valid() {
		enc.S.AssertGuardedOr(oldExt, rest...)
	}
	enc.S.AssertGuardedOr(owner.Active, rest...)

	cond.AltExtension = newExt
	enc.ExtToCondition[newExt.Var()] = condIdx
	cond.TokenQueue = len(enc.G.Tokens)
}

// assertLinkTemporal asserts the temporal constraint a causal link of the
// given relationship requires between target token tgt and owner token
// owner, guarded by choose.
func (enc *Encoder) assertLinkTemporal(rel problem.TemporalRelationship, tgt, owner int, choose smt.Lit) {
	tgtState := enc.G.States[enc.G.Tokens[tgt].State]
	ownerState := enc.G.States[enc.G.Tokens[owner].State]
	switch rel {
	case problem.Meet:
		enc.S.RealEq(smt.VarTerm(tgtState.End), smt.VarTerm(ownerState.Start), choose)
	case problem.Cover:
		enc.S.RealLe(smt.VarTerm(tgtState.Start), smt.VarTerm(ownerState.Start), choose)
		enc.S.RealLe(smt.VarTerm(ownerState.End), smt.VarTerm(tgtState.End), choose)
	}
}

// scanCandidates returns the indices of tokens on any of members whose
// value is v and whose index is at least from, grouped by member timeline
// in members order and in token-index order within each timeline.
func (enc *Encoder) scanCandidates(members []string, v string, from int) []int {
	var out []int
	for _, name := range members {
		tlIdx := enc.timelineIndexByName(name)
		for _, stIdx := range enc.G.Timelines[tlIdx].States {
			for _, tokIdx := range enc.G.States[stIdx].Tokens {
				if tokIdx >= from && enc.G.Tokens[tokIdx].Value == v {
					out = append(out, tokIdx)
				}
			}
		}
	}
	return out
}

// refreshResources emits the task-indexed cumulative clauses for every
// ResourceConstraint that gained users since its last refresh, per
// spec.md §4.3. Every user i gets its own pseudo-boolean inequality
// summing its own demand plus every other user j's demand weighted by
// whether j's interval overlaps i's — re-derived for every i on every
// refresh, matching the baseline (non-memoized) semantics the spec
// explicitly sanctions.
func (enc *Encoder) refreshResources() {
	for _, rc := range enc.G.Resources {
		if len(rc.Users) <= rc.Integrated {
			continue
		}
		if rc.Capacity == nil {
			rc.Integrated = len(rc.Users)
			continue
		}
		capacity := int(*rc.Capacity)
		for i, ui := range rc.Users {
			terms := make([]smt.PBTerm, 0, len(rc.Users))
			terms = append(terms, smt.PBTerm{Lit: ui.Link, Weight: int(ui.Amount)})
			for j, uj := range rc.Users {
				if i == j {
					continue
				}
				terms = append(terms, smt.PBTerm{Lit: enc.overlapLit(ui, uj), Weight: int(uj.Amount)})
			}
			enc.S.AssertPBLE(terms, capacity)
		}
		rc.Integrated = len(rc.Users)
	}
}

// overlapLit returns a literal equivalent to "a and b are both active and
// their owning intervals overlap", using the Solver's bidirectional
// StrictLess so the cumulative sum never under-counts a real overlap.
func (enc *Encoder) overlapLit(a, b graph.ResourceUser) smt.Lit {
	aState := enc.G.States[enc.G.Tokens[a.Consumer].State]
	bState := enc.G.States[enc.G.Tokens[b.Consumer].State]
	aBeforeBEnds := enc.S.StrictLess(smt.VarTerm(aState.Start), smt.VarTerm(bState.End))
	bBeforeAEnds := enc.S.StrictLess(smt.VarTerm(bState.Start), smt.VarTerm(aState.End))
	return enc.S.And(a.Link, b.Link, aBeforeBEnds, bBeforeAEnds)
}
