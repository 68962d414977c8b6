package smt

// PBTerm is one weighted literal in a pseudo-boolean sum.
type PBTerm struct {
	Lit    Lit
	Weight int
}

// encodePBLE lowers `sum(w_i * lit_i) <= k` to plain CNF via the standard
// sequential weighted counter: register[i][j] means "the weighted sum of
// the first i terms is >= j", built incrementally and then forbidding
// register[n][k+1]. No native pseudo-boolean support exists in gophersat's
// public solver API (the one SAT engine found in the retrieval pack,
// other_examples/…rhansen-gomoddepgraph…resolvesat.go.go), so this theory
// lowering is hand-written rather than imported — the one pseudo-boolean
// piece not grounded on an ecosystem library, called out in DESIGN.md.
func (s *Solver) encodePBLE(terms []PBTerm, k int) {
	if k < 0 {
		// Sum of non-negative weights can never be negative: every term
		// with positive weight must be false.
		for _, t := range terms {
			if t.Weight > 0 {
				s.addClause(Clause{t.Lit.Not()})
			}
		}
		return
	}

	total := 0
	for _, t := range terms {
		total += t.Weight
	}
	if total <= k {
		return // trivially satisfied, no clauses needed
	}
	capV := k + 1

	// reg[i][j] for j in 1..capV represents "sum of first i terms >= j".
	// reg[0][*] is definitionally false (nil entries below treated as such).
	prev := make([]Lit, capV+1) // 1-indexed, prev[0] unused
	for i, t := range terms {
		next := make([]Lit, capV+1)
		for j := 1; j <= capV; j++ {
			// reg[i][j] <=> reg[i-1][j] OR (lit_i AND reg[i-1][j-w_i])
			var carryOver Lit
			if prev[j].Valid() {
				carryOver = prev[j]
			}

			var viaTerm Lit
			need := j - t.Weight
			switch {
			case t.Weight <= 0:
				// Zero/negative weight never advances the running sum.
			case need <= 0:
				viaTerm = t.Lit
			case need <= capV && prev[need].Valid():
				viaTerm = s.andLit(t.Lit, prev[need])
			}

			reg := s.orLitOptional(carryOver, viaTerm)
			next[j] = reg
		}
		prev = next
		_ = i
	}

	if prev[capV].Valid() {
		s.addClause(Clause{prev[capV].Not()})
	}
}

// andLit returns a fresh literal constrained to be the conjunction of a
// and b (full biconditional, so it can be reused safely inside larger
// sums or other conjunctions).
func (s *Solver) andLit(a, b Lit) Lit {
	r := s.ctx.FreshBool("and")
	s.addClause(Clause{a.Not(), b.Not(), r})
	s.addClause(Clause{a, r.Not()})
	s.addClause(Clause{b, r.Not()})
	return r
}

// orLitOptional returns the disjunction of a and b, tolerating either
// being the invalid zero Lit (treated as the constant false).
func (s *Solver) orLitOptional(a, b Lit) Lit {
	switch {
	case !a.Valid() && !b.Valid():
		return Lit{}
	case !a.Valid():
		return b
	case !b.Valid():
		return a
	}
	r := s.ctx.FreshBool("or")
	s.addClause(Clause{a.Not(), r})
	s.addClause(Clause{b.Not(), r})
	s.addClause(Clause{a, b, r.Not()})
	return r
}
