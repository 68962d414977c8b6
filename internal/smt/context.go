package smt

import "fmt"

// RealVar is a time-point: a real-valued unknown in the difference
// constraint network built up in stn.go. Facts pin a RealVar to a
// constant by giving it a fixed value at creation; every other RealVar is
// solved for by shortest-path propagation once the boolean skeleton is
// satisfied.
type RealVar struct {
	id     int
	name   string
	fixed  bool
	value  Rational
}

func (v *RealVar) String() string { return v.name }

// RealTerm is Var + Offset (or just Offset, a constant, when Var is nil).
// Every real expression the encoder needs — a token's start or end time,
// or that time plus/minus a duration constant — has exactly this shape, so
// RealTerm (rather than a general expression tree) is all the arithmetic
// theory needs to represent.
type RealTerm struct {
	Var    *RealVar
	Offset Rational
}

// Plus returns Var + (Offset + c).
func (t RealTerm) Plus(c Rational) RealTerm {
	return RealTerm{Var: t.Var, Offset: t.Offset.Add(c)}
}

// Const builds a pure constant RealTerm.
func Const(r Rational) RealTerm { return RealTerm{Offset: r} }

// VarTerm builds the RealTerm v+0.
func VarTerm(v *RealVar) RealTerm { return RealTerm{Var: v, Offset: Zero} }

// Context allocates fresh boolean and real variables for one solving
// session. It mirrors the role z3::Context plays in the Rust original: a
// single place new constants come from, so every component (Expander,
// Encoder) shares the same variable space.
type Context struct {
	nextReal int
	nextBool int32
	reals    []*RealVar
	boolName map[int32]string
}

// NewContext creates an empty variable space.
func NewContext() *Context {
	return &Context{boolName: make(map[int32]string)}
}

// FreshReal allocates a new unconstrained real-valued time point.
func (c *Context) FreshReal(label string) *RealVar {
	c.nextReal++
	v := &RealVar{id: c.nextReal, name: fmt.Sprintf("%s#%d", label, c.nextReal)}
	c.reals = append(c.reals, v)
	return v
}

// FixedReal allocates a real-valued time point whose value is pinned to a
// known constant — used for fact endpoints given in the problem.
func (c *Context) FixedReal(label string, value Rational) *RealVar {
	v := c.FreshReal(label)
	v.fixed = true
	v.value = value
	return v
}

// FreshBool allocates a new free boolean literal (positive polarity).
func (c *Context) FreshBool(label string) Lit {
	c.nextBool++
	c.boolName[c.nextBool] = label
	return Lit{v: c.nextBool}
}
