// Package index builds the name-resolution tables the rest of the planner
// consults repeatedly: timeline name to graph timeline index, value name
// to ValueSpec within a timeline, and group name to member timeline names.
// It never mutates the Problem it was built from and holds no solver or
// graph state of its own.
package index

import (
	"fmt"

	"github.com/gitrdm/paraspace/internal/problem"
)

// Index is the read-only lookup table built once from a Problem.
type Index struct {
	problem *problem.Problem

	timelineIdx map[string]int // timeline name -> index into problem.Timelines
	groups      map[string][]string
}

// Build constructs an Index over p. It does not validate reachability or
// seed any runtime graph state — that is the Expander's job.
func Build(p *problem.Problem) *Index {
	idx := &Index{
		problem:     p,
		timelineIdx: make(map[string]int, len(p.Timelines)),
		groups:      make(map[string][]string, len(p.Groups)),
	}
	for i, t := range p.Timelines {
		idx.timelineIdx[t.Name] = i
	}
	for _, gr := range p.Groups {
		idx.groups[gr.Name] = gr.Members
	}
	return idx
}

// TimelineSpec returns the ValueSpec-bearing TimelineSpec named name, and
// whether one exists (false for facts-only synthetic timelines).
func (idx *Index) TimelineSpec(name string) (*problem.Timeline, bool) {
	i, ok := idx.timelineIdx[name]
	if !ok {
		return nil, false
	}
	return &idx.problem.Timelines[i], true
}

// ValueSpec looks up value on timeline, returning (nil, false) if either
// the timeline has no spec (facts-only) or the value is not one of its
// ValueSpecs.
func (idx *Index) ValueSpec(timeline, value string) (*problem.Value, bool) {
	spec, ok := idx.TimelineSpec(timeline)
	if !ok {
		return nil, false
	}
	for i := range spec.Values {
		if spec.Values[i].Name == value {
			return &spec.Values[i], true
		}
	}
	return nil, false
}

// Members resolves an ObjectSet to the list of eligible timeline names: a
// single name for Object, the group's members for Group.
func (idx *Index) Members(o problem.ObjectSet) ([]string, error) {
	if !o.IsGroup() {
		return []string{o.Object}, nil
	}
	members, ok := idx.groups[o.Group]
	if !ok || len(members) == 0 {
		return nil, fmt.Errorf("index: group %q is undefined or empty", o.Group)
	}
	return members, nil
}

// Problem returns the underlying Problem this Index was built from.
func (idx *Index) Problem() *problem.Problem { return idx.problem }
