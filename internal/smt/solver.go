// Package smt implements the SMT solver contract spec.md §6 asks for: a
// context producing fresh boolean and real constants, assert/check-under-
// assumptions with an identifiable unsat core, and model extraction.
//
// No Go SMT binding (z3, cvc5, or similar) appears anywhere in the
// retrieval pack, so this package builds the contract out of two pieces
// that do: github.com/crillab/gophersat (a pure-Go CNF SAT engine, see
// gophersat.go) supplies the boolean skeleton, and stn.go supplies a
// hand-written theory of linear real arithmetic restricted to difference
// constraints — the only shape every temporal/causal/resource assertion in
// this domain ever takes. Solver.Check combines them in a small
// abstraction-refinement (CEGAR) loop: solve the boolean skeleton, check
// the real atoms it activates for consistency, and if the two disagree,
// learn a blocking clause and retry.
package smt

import "fmt"

// Status is the result of a Check call.
type Status int

const (
	Unknown Status = iota
	Sat
	Unsat
)

// Solver owns one growing set of clauses, real-arithmetic edges, and
// bidirectional ("overlap") atoms, shared by every component (Expander,
// Encoder) of one planning session — mirroring the single z3::Solver the
// Rust original threads through its whole run.
type Solver struct {
	ctx     *Context
	clauses []Clause
	edges   []edge
	biAtoms []biAtom

	lastModel []bool
	lastSol   solution
}

type biAtom struct {
	lit  Lit
	a, b *RealVar
	c    Rational
}

// NewSolver creates a solver sharing the given Context's variable space.
func NewSolver(ctx *Context) *Solver {
	return &Solver{ctx: ctx}
}

// Ctx returns the variable-allocating Context this solver was built with.
func (s *Solver) Ctx() *Context { return s.ctx }

func (s *Solver) addClause(c Clause) {
	cp := make(Clause, len(c))
	copy(cp, c)
	s.clauses = append(s.clauses, cp)
}

// Assert adds a hard clause: at least one of its literals must be true in
// every model.
func (s *Solver) Assert(lits ...Lit) {
	s.addClause(Clause(lits))
}

// Implies asserts a -> b. Either side may be the invalid zero Lit: an
// invalid a is treated as "unconditionally true" (the implication reduces
// to asserting b outright), and an invalid b is treated the same way (the
// implication is then trivially satisfied, so nothing is asserted).
func (s *Solver) Implies(a, b Lit) {
	if !b.Valid() {
		return
	}
	if !a.Valid() {
		s.addClause(Clause{b})
		return
	}
	s.addClause(Clause{a.Not(), b})
}

// AssertGuardedOr asserts guard -> (lits[0] ∨ lits[1] ∨ ...), tolerating an
// invalid (unconditional) guard by asserting the disjunction outright. An
// empty lits with a valid guard forces ¬guard; an empty lits with an
// invalid guard is a hard empty clause (immediately unsatisfiable) — the
// correct encoding of "no alternative exists for an unconditional fact",
// which should never occur for a well-formed problem.
func (s *Solver) AssertGuardedOr(guard Lit, lits ...Lit) {
	clause := make(Clause, 0, len(lits)+1)
	if guard.Valid() {
		clause = append(clause, guard.Not())
	}
	clause = append(clause, lits...)
	s.addClause(clause)
}

// AssertAtMostOne asserts that at most one of lits holds, via the
// pseudo-boolean encoding in pb.go with unit weights.
func (s *Solver) AssertAtMostOne(lits []Lit) {
	terms := make([]PBTerm, len(lits))
	for i, l := range lits {
		terms[i] = PBTerm{Lit: l, Weight: 1}
	}
	s.encodePBLE(terms, 1)
}

// AssertPBLE asserts sum(w_i * lit_i) <= k.
func (s *Solver) AssertPBLE(terms []PBTerm, k int) {
	s.encodePBLE(terms, k)
}

// RealLe asserts, guarded by guard (or unconditionally when guard is the
// invalid zero Lit), that lhs <= rhs.
func (s *Solver) RealLe(lhs, rhs RealTerm, guard Lit) {
	// lhs <= rhs  <=>  lhs.Var - rhs.Var <= rhs.Offset - lhs.Offset
	s.edges = append(s.edges, edge{a: lhs.Var, b: rhs.Var, c: rhs.Offset.Sub(lhs.Offset), guard: guard})
}

// RealGe asserts lhs >= rhs, guarded as RealLe.
func (s *Solver) RealGe(lhs, rhs RealTerm, guard Lit) {
	s.RealLe(rhs, lhs, guard)
}

// RealEq asserts lhs == rhs as two difference constraints, guarded as
// RealLe.
func (s *Solver) RealEq(lhs, rhs RealTerm, guard Lit) {
	s.RealLe(lhs, rhs, guard)
	s.RealGe(lhs, rhs, guard)
}

// StrictLess returns a fresh literal held fully equivalent (in both
// directions) to `lhs < rhs`. Every other real assertion in this package
// is one-directional (a guard forces a real fact true; the guard's
// falsity claims nothing), which is all spec.md's Encoder ever needs
// except for one case: the cumulative-resource overlap test combines two
// strict real comparisons inside a pseudo-boolean sum, and under-counting
// a real overlap because its surrogate literal was merely left unset
// would let the encoded capacity constraint pass unsound models. StrictLess
// is reserved for exactly that call site (see encoder's resource pass).
func (s *Solver) StrictLess(lhs, rhs RealTerm) Lit {
	lit := s.ctx.FreshBool("lt")
	c := rhs.Offset.Sub(lhs.Offset).Sub(epsilon)
	s.edges = append(s.edges, edge{a: lhs.Var, b: rhs.Var, c: c, guard: lit})
	s.biAtoms = append(s.biAtoms, biAtom{lit: lit, a: lhs.Var, b: rhs.Var, c: c})
	return lit
}

// And returns a fresh literal equivalent to the conjunction of lits.
func (s *Solver) And(lits ...Lit) Lit {
	if len(lits) == 0 {
		return Lit{}
	}
	acc := lits[0]
	for _, l := range lits[1:] {
		acc = s.andLit(acc, l)
	}
	return acc
}

// Check solves under the given assumptions (all of which are added as
// forced-true unit literals) and returns Sat, Unsat (with an unsat core
// drawn from assumptions), or Unknown.
func (s *Solver) Check(assumptions []Lit) (Status, []Lit) {
	for {
		model, ok := s.solveBoolean(assumptions)
		if !ok {
			return Unsat, s.shrinkCore(assumptions)
		}

		st := newSTN()
		for _, e := range s.edges {
			if e.active(model) {
				st.addEdge(e)
			}
		}
		sol, conf := st.check(model)
		if conf != nil {
			if conf.hard {
				return Unknown, nil
			}
			clause := make(Clause, len(conf.guards))
			for i, g := range conf.guards {
				clause[i] = g.Not()
			}
			s.addClause(clause)
			continue
		}

		if s.correctOverlapMismatches(model, sol) {
			continue
		}

		s.lastModel = model
		s.lastSol = sol
		return Sat, nil
	}
}

// correctOverlapMismatches bans the current boolean assignment if any
// StrictLess literal was left false by the SAT solver while the concrete
// times it solved for actually satisfy the comparison — the under-count
// direction that would make a cumulative-resource bound unsound. This is
// a coarse (whole-assignment) refinement rather than a minimal learned
// clause, since computing a minimal explanation would need a general
// theory-combination engine this package deliberately does not build
// (documented in DESIGN.md); it still terminates, since every correction
// permanently removes at least the one assignment that triggered it from
// a finite boolean space.
func (s *Solver) correctOverlapMismatches(model []bool, sol solution) bool {
	corrected := false
	for _, b := range s.biAtoms {
		assigned := model[b.lit.Var()] == b.lit.Sign()
		actual := sol.value(b.a).Compare(sol.value(b.b).Add(b.c)) <= 0
		// actual means a - b <= c i.e. a <= b + c, i.e. sol.value(a) <= sol.value(b)+c
		if actual && !assigned {
			corrected = true
		}
	}
	if corrected {
		s.banAssignment(model)
	}
	return corrected
}

func (s *Solver) banAssignment(model []bool) {
	clause := make(Clause, 0, len(model)-1)
	for v := 1; v < len(model); v++ {
		if model[v] {
			clause = append(clause, Lit{v: -int32(v)})
		} else {
			clause = append(clause, Lit{v: int32(v)})
		}
	}
	s.addClause(clause)
}

// shrinkCore computes a locally-minimal subset of assumptions that is
// still unsatisfiable, by the trim/re-solve technique in
// original_source/src/cores.rs (there applied to named clause groups;
// here applied at assumption-literal granularity, which is all
// spec.md's refinement loop ever needs from an unsat core).
func (s *Solver) shrinkCore(assumptions []Lit) []Lit {
	core := append([]Lit(nil), assumptions...)
	for {
		shrunk := false
		for i := range core {
			trial := make([]Lit, 0, len(core)-1)
			trial = append(trial, core[:i]...)
			trial = append(trial, core[i+1:]...)
			if !s.checkSatWithout(trial) {
				core = trial
				shrunk = true
				break
			}
		}
		if !shrunk {
			return core
		}
	}
}

// ValueOf reports whether lit is true in the most recent Sat model.
func (s *Solver) ValueOf(lit Lit) bool {
	if !lit.Valid() {
		return true
	}
	return s.lastModel[lit.Var()] == lit.Sign()
}

// TimeOf returns v's value in the most recent Sat model.
func (s *Solver) TimeOf(v *RealVar) Rational {
	if v == nil {
		return Zero
	}
	if v.fixed {
		return v.value
	}
	val, ok := s.lastSol.dist[v]
	if !ok {
		// v never appeared in any active edge, so it is unconstrained;
		// that only happens for variables the encoder created but never
		// wired into an assertion, which should not occur for a
		// well-formed graph.
		panic(fmt.Sprintf("smt: %s has no solved value", v))
	}
	return val
}
