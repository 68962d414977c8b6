package smt

// Lit is a boolean literal: a variable id, or its negation. Zero is never
// a valid id — the first variable allocated by Context.FreshBool is 1 —
// so the zero Lit is reserved as "no literal" for callers that need an
// optional one (e.g. a token's active, which fact tokens leave unset).
type Lit struct {
	v int32
}

// Valid reports whether l names a real variable (as opposed to the zero
// value used for "unconditionally active").
func (l Lit) Valid() bool { return l.v != 0 }

// Not returns the negation of l.
func (l Lit) Not() Lit { return Lit{v: -l.v} }

// Var returns the underlying variable id (always positive), for use as a
// map key when literals of either polarity must collide on the same var.
func (l Lit) Var() int32 {
	if l.v < 0 {
		return -l.v
	}
	return l.v
}

// Sign reports whether l is a positive-polarity literal.
func (l Lit) Sign() bool { return l.v > 0 }

// Clause is a disjunction of literals, at least one of which must be true.
type Clause []Lit
