// Package graph is the mutable Graph Store: parallel, index-addressed,
// growth-only records for timelines, states, tokens, causal-link
// conditions, and cumulative-resource constraints. Nothing here is ever
// removed once appended — indices handed out by the Add* methods stay
// valid for the life of one solving session, which is what lets the
// Expander and Encoder hold onto them across refinement rounds instead of
// threading owned references through the graph.
package graph

import (
	"github.com/gitrdm/paraspace/internal/problem"
	"github.com/gitrdm/paraspace/internal/smt"
)

// Timeline is one runtime timeline: its states in order, and (for spec
// timelines) the extension literal currently guarding "no more goal
// candidates needed", if a goal has been attached to it.
type Timeline struct {
	Name          string
	States        []int
	GoalExtension smt.Lit
	GoalLits      []smt.Lit
	FactsOnly     bool
}

// State is one slot in a timeline's chain: its start/end time points, the
// timeline it belongs to, its 0-based position in that timeline, and the
// alternative tokens available at this slot.
type State struct {
	Start, End *smt.RealVar
	Timeline   int
	StateSeq   int
	Tokens     []int
	GoalLits   []smt.Lit
}

// Token is the selection of one value at one state: a fact, a goal, or one
// alternative competing via an at-most-one constraint with its siblings.
// Active is the zero Lit only for fact tokens, which are unconditionally
// active; every token the Expander appends, goal-value tokens included,
// carries its own fresh literal.
type Token struct {
	State    int
	Value    string
	Active   smt.Lit
	Fact     bool
	Capacity uint32
}

// Condition is the runtime record for one causal-link ConditionSpec
// attached to an active token: how many candidate targets have already
// been scanned (TokenQueue), and the extension literal currently guarding
// "no further alternative needed" for this link.
type Condition struct {
	TokenIdx     int
	Spec         problem.Condition
	TokenQueue   int
	AltExtension smt.Lit
	Visited      bool
}

// ResourceUser is one consumer registered against a ResourceConstraint: the
// choose-link literal that selects it, the owning token, and the amount it
// draws from the target's capacity while active.
type ResourceUser struct {
	Link     smt.Lit
	Consumer int
	Amount   uint32
}

// ResourceConstraint accumulates the consumers of one capacity-bearing
// token. Integrated records how many of Users were present at the last
// refresh; it only decides whether a refresh is due, and each refresh
// re-emits the pairwise-overlap constraints for every user.
type ResourceConstraint struct {
	Capacity   *uint32
	Users      []ResourceUser
	Integrated int
	Closed     bool
}

// Goal is a pending goal target: the watchdog grows Timeline's chain until
// its last state carries Value among its tokens.
type Goal struct {
	Timeline int
	Value    string
}

// Graph is the full mutable store for one solving session.
type Graph struct {
	Timelines  []Timeline
	States     []State
	Tokens     []Token
	Conditions []Condition
	Resources  map[int]*ResourceConstraint
	Goals      []Goal
}

// New creates an empty Graph Store.
func New() *Graph {
	return &Graph{Resources: make(map[int]*ResourceConstraint)}
}

// AddTimeline appends a new, empty timeline and returns its index.
func (g *Graph) AddTimeline(name string, factsOnly bool) int {
	g.Timelines = append(g.Timelines, Timeline{Name: name, FactsOnly: factsOnly})
	return len(g.Timelines) - 1
}

// AddState appends a new state to timeline and returns its index.
func (g *Graph) AddState(timeline int, start, end *smt.RealVar) int {
	seq := len(g.Timelines[timeline].States)
	idx := len(g.States)
	g.States = append(g.States, State{Start: start, End: end, Timeline: timeline, StateSeq: seq})
	g.Timelines[timeline].States = append(g.Timelines[timeline].States, idx)
	return idx
}

// AddToken appends a new token to state and returns its index.
func (g *Graph) AddToken(state int, value string, active smt.Lit, fact bool) int {
	idx := len(g.Tokens)
	g.Tokens = append(g.Tokens, Token{State: state, Value: value, Active: active, Fact: fact})
	g.States[state].Tokens = append(g.States[state].Tokens, idx)
	return idx
}

// AddCondition appends a new causal-link runtime record for tokenIdx and
// returns its index.
func (g *Graph) AddCondition(tokenIdx int, spec problem.Condition) int {
	idx := len(g.Conditions)
	g.Conditions = append(g.Conditions, Condition{TokenIdx: tokenIdx, Spec: spec})
	return idx
}

// ResourceFor returns the ResourceConstraint accumulating consumers of
// tokenIdx, creating an empty one (with the token's own capacity, if any)
// on first use.
func (g *Graph) ResourceFor(tokenIdx int, capacity *uint32) *ResourceConstraint {
	rc, ok := g.Resources[tokenIdx]
	if !ok {
		rc = &ResourceConstraint{Capacity: capacity}
		g.Resources[tokenIdx] = rc
	} else if rc.Capacity == nil {
		rc.Capacity = capacity
	}
	return rc
}

// LastState returns the index of timeline's most recently appended state.
func (g *Graph) LastState(timeline int) int {
	states := g.Timelines[timeline].States
	return states[len(states)-1]
}

// TokensWithValue returns the indices of tokens in state whose value is v.
func (g *Graph) TokensWithValue(state int, v string) []int {
	var out []int
	for _, t := range g.States[state].Tokens {
		if g.Tokens[t].Value == v {
			out = append(out, t)
		}
	}
	return out
}
