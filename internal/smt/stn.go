package smt

// edge is one difference constraint `a - b <= c`, read as "a is at most c
// after b". A nil a or b means the zero time-point (absolute time 0), so
// a plain lower/upper bound on a single variable is just the special case
// where one side is the zero point.
type edge struct {
	a, b    *RealVar
	c       Rational
	guard   Lit // zero value (Lit{}) means "always active"
	label   string
}

func (e edge) active(model []bool) bool {
	if !e.guard.Valid() {
		return true
	}
	idx := e.guard.Var()
	bit := model[idx]
	if !e.guard.Sign() {
		bit = !bit
	}
	return bit
}

// epsilon is the strictness margin used to turn `a < b` into the
// difference constraint `a - b <= -epsilon`. Every duration and time
// constant in this domain is an integer, so any value strictly smaller
// than 1 works; this mirrors the standard STN trick for encoding strict
// inequalities as non-strict ones.
var epsilon = NewRational(1, 1000)

// stn is the real-arithmetic theory: a difference-constraint graph over a
// Context's RealVars, plus a distinguished zero node for absolute bounds.
// Consistency is shortest-path feasibility (no negative cycle), checked
// with Bellman-Ford — the same propagation shape as gokando's interval
// arithmetic / bounds-consistency constraints (interval_arithmetic.go,
// propagation.go), generalized from finite integer domains to continuous
// time with a fixed point set (the edges) instead of incremental domain
// shrinking.
type stn struct {
	edges []edge
	nodes []*RealVar
	index map[*RealVar]int
}

func newSTN() *stn {
	return &stn{index: make(map[*RealVar]int)}
}

func (s *stn) nodeIndex(v *RealVar) int {
	if v == nil {
		return 0 // zero node always occupies slot 0
	}
	if i, ok := s.index[v]; ok {
		return i
	}
	i := len(s.nodes) + 1
	s.index[v] = i
	s.nodes = append(s.nodes, v)
	return i
}

func (s *stn) addEdge(e edge) {
	s.edges = append(s.edges, e)
	s.nodeIndex(e.a)
	s.nodeIndex(e.b)
}

// solution is a consistent assignment of RealVar -> Rational derived from
// shortest distances to the zero node.
type solution struct {
	dist map[*RealVar]Rational
}

func (sol solution) value(v *RealVar) Rational {
	if v == nil {
		return Zero
	}
	if v.fixed {
		return v.value
	}
	return sol.dist[v]
}

// conflict names the active, non-hard edges that participated in a
// detected negative cycle — the theory-level analogue of an unsat core,
// used by Solver.Check to synthesize a blocking clause.
type conflict struct {
	guards []Lit
	hard   bool // true if the cycle involves only unconditional edges
}

// check runs Bellman-Ford over the edges currently active under model and
// returns either a consistent solution or a conflict describing which
// guarded edges must not all hold simultaneously.
//
// Node 0 (the zero/absolute-time point) and every node backed by a fixed
// RealVar are seeded to their pinned value instead of Zero, so a fact
// endpoint actually participates in the consistency check rather than
// being silently treated as time zero. A fixed (or +-Inf) pin is not
// wired in as synthetic edges, since an edge weight of +-Inf would make
// Bellman-Ford relax the zero node itself on the very first round
// regardless of whether the system is consistent; seeding the distance
// vector directly sidesteps that and lets the ordinary relaxation loop
// decide the value is wrong only when some other active edge actually
// demands it.
func (s *stn) check(model []bool) (solution, *conflict) {
	n := len(s.nodes) + 1 // +1 for the zero node
	dist := make([]Rational, n)
	pred := make([]int, n)
	predEdge := make([]int, n)
	pinned := make([]bool, n)
	pinned[0] = true
	dist[0] = Zero
	pred[0] = -1
	predEdge[0] = -1
	for i := 1; i < n; i++ {
		v := s.nodes[i-1]
		if v.fixed {
			pinned[i] = true
			dist[i] = v.value
		} else {
			dist[i] = Zero
		}
		pred[i] = -1
		predEdge[i] = -1
	}

	active := make([]int, 0, len(s.edges))
	for i, e := range s.edges {
		if e.active(model) {
			active = append(active, i)
		}
	}

	// Bellman-Ford: n-1 relaxation rounds, then one more to detect a
	// negative cycle and recover which node it passes through. A pinned
	// node's distance can still be pulled away from its seed here if an
	// active edge genuinely demands a tighter bound — that is exactly the
	// signal (checked below) that the pin is infeasible against the rest
	// of the active constraints.
	lastChanged := -1
	for round := 0; round < n; round++ {
		lastChanged = -1
		for _, ei := range active {
			e := s.edges[ei]
			ai := s.nodeIndex(e.a)
			bi := s.nodeIndex(e.b)
			cand := dist[bi].Add(e.c)
			if cand.Less(dist[ai]) {
				dist[ai] = cand
				pred[ai] = bi
				predEdge[ai] = ei
				lastChanged = ai
			}
		}
		if lastChanged == -1 {
			break
		}
	}

	start := lastChanged
	if start == -1 {
		// Bellman-Ford converged with nothing still relaxing, but a pin
		// can be violated by a finite chain of edges that never closes
		// into a classic cycle (e.g. a fact endpoint tightened past its
		// own fixed value by a guarded causal link). Check every pinned
		// node's final distance against the value it was seeded with.
		for i := 0; i < n; i++ {
			if !pinned[i] {
				continue
			}
			var want Rational
			if i == 0 {
				want = Zero
			} else {
				want = s.nodes[i-1].value
			}
			if !dist[i].Equal(want) {
				start = i
				break
			}
		}
	}

	if start == -1 {
		sol := solution{dist: make(map[*RealVar]Rational, len(s.nodes))}
		for v, i := range s.index {
			sol.dist[v] = dist[i]
		}
		return sol, nil
	}

	// Walk predecessors from start, collecting the guards of every edge
	// along the way, until either re-entering an already-visited node (a
	// genuine negative cycle) or reaching a node whose distance was never
	// relaxed (a pinned source the chain runs back to, rather than a
	// cycle) — both terminations are a complete explanation of the
	// contradiction, just shaped differently.
	cur := start
	seen := map[int]bool{}
	var guards []Lit
	hard := true
	for !seen[cur] {
		seen[cur] = true
		ei := predEdge[cur]
		if ei == -1 {
			break
		}
		e := s.edges[ei]
		if e.guard.Valid() {
			hard = false
			guards = append(guards, e.guard)
		}
		cur = pred[cur]
	}
	return solution{}, &conflict{guards: guards, hard: hard}
}
