package index

import (
	"testing"

	"github.com/gitrdm/paraspace/internal/problem"
)

func sampleProblem() *problem.Problem {
	return &problem.Problem{
		Timelines: []problem.Timeline{
			{Name: "robot", Values: []problem.Value{
				{Name: "idle"},
				{Name: "moving"},
			}},
		},
		Groups: []problem.Group{
			{Name: "movers", Members: []string{"robot"}},
			{Name: "empty-group", Members: nil},
		},
	}
}

func TestTimelineSpecAndValueSpec(t *testing.T) {
	idx := Build(sampleProblem())

	spec, ok := idx.TimelineSpec("robot")
	if !ok || spec.Name != "robot" {
		t.Fatalf("expected to find timeline robot, got %v ok=%v", spec, ok)
	}

	val, ok := idx.ValueSpec("robot", "idle")
	if !ok || val.Name != "idle" {
		t.Fatalf("expected value idle on robot, got %v ok=%v", val, ok)
	}

	if _, ok := idx.ValueSpec("robot", "nonexistent"); ok {
		t.Error("expected no match for an undeclared value")
	}
	if _, ok := idx.TimelineSpec("ghost"); ok {
		t.Error("expected no match for an undeclared timeline")
	}
}

func TestMembersResolvesObjectAndGroup(t *testing.T) {
	idx := Build(sampleProblem())

	members, err := idx.Members(problem.ObjectSet{Object: "robot"})
	if err != nil || len(members) != 1 || members[0] != "robot" {
		t.Fatalf("expected [robot], got %v err=%v", members, err)
	}

	members, err = idx.Members(problem.ObjectSet{Group: "movers"})
	if err != nil || len(members) != 1 || members[0] != "robot" {
		t.Fatalf("expected group members [robot], got %v err=%v", members, err)
	}
}

func TestMembersRejectsUndefinedOrEmptyGroup(t *testing.T) {
	idx := Build(sampleProblem())

	if _, err := idx.Members(problem.ObjectSet{Group: "ghost-group"}); err == nil {
		t.Error("expected an error for an undefined group")
	}
	if _, err := idx.Members(problem.ObjectSet{Group: "empty-group"}); err == nil {
		t.Error("expected an error for an empty group")
	}
}
