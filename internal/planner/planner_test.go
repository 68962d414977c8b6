package planner

import (
	"math"
	"testing"

	"github.com/gitrdm/paraspace/internal/problem"
)

// lightProblem is the smallest timeline with a goal: off (initial) meets
// on (its only transition), and the goal asks for on to be reached.
func lightProblem() *problem.Problem {
	return &problem.Problem{
		Timelines: []problem.Timeline{
			{
				Name: "light",
				Values: []problem.Value{
					{Name: "off", Duration: problem.Duration{Min: 1}},
					{Name: "on", Duration: problem.Duration{Min: 1}, Conditions: []problem.Condition{
						{TemporalRelationship: problem.Meet, Object: problem.ObjectSet{Object: "light"}, Value: "off"},
					}},
				},
			},
		},
		Tokens: []problem.Token{
			{TimelineName: "light", Value: "on", ConstTime: problem.TokenTime{Kind: problem.KindGoal}},
		},
	}
}

func TestSolveReachesGoal(t *testing.T) {
	sol, err := Solve(lightProblem(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	foundGoal := false
	for _, tok := range sol.Tokens {
		if tok.ObjectName == "light" && tok.Value == "on" {
			foundGoal = true
		}
	}
	if !foundGoal {
		t.Fatalf("expected a solution token for light=on, got %+v", sol.Tokens)
	}
}

// causalLinkProblem requires a "worker" to be "busy" only while a
// "machine" is "running", wired as a Cover causal link with an amount so
// the cumulative-resource pass is also exercised.
func causalLinkProblem() *problem.Problem {
	return &problem.Problem{
		Timelines: []problem.Timeline{
			{
				Name: "worker",
				Values: []problem.Value{
					{Name: "idle", Duration: problem.Duration{Min: 1}},
					{Name: "busy", Duration: problem.Duration{Min: 1}, Conditions: []problem.Condition{
						{TemporalRelationship: problem.Meet, Object: problem.ObjectSet{Object: "worker"}, Value: "idle"},
						{TemporalRelationship: problem.Cover, Object: problem.ObjectSet{Object: "machine"}, Value: "running", Amount: 1},
					}},
				},
			},
			{
				Name: "machine",
				Values: []problem.Value{
					{Name: "stopped", Duration: problem.Duration{Min: 1}},
					{Name: "running", Duration: problem.Duration{Min: 1}, Capacity: 1, Conditions: []problem.Condition{
						{TemporalRelationship: problem.Meet, Object: problem.ObjectSet{Object: "machine"}, Value: "stopped"},
					}},
				},
			},
		},
		Tokens: []problem.Token{
			{TimelineName: "worker", Value: "busy", ConstTime: problem.TokenTime{Kind: problem.KindGoal}},
		},
	}
}

func TestSolveWithCausalLinkAndResource(t *testing.T) {
	sol, err := Solve(causalLinkProblem(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var worker, machine bool
	for _, tok := range sol.Tokens {
		if tok.ObjectName == "worker" && tok.Value == "busy" {
			worker = true
		}
		if tok.ObjectName == "machine" && tok.Value == "running" {
			machine = true
		}
	}
	if !worker || !machine {
		t.Fatalf("expected both worker=busy and machine=running in the solution, got %+v", sol.Tokens)
	}
}

// openFactCoverProblem covers a completely open fact (no start, no end)
// with a Cover condition from a goal value on another timeline, checking
// that an unbounded fact window never tightens the consumer's endpoints
// and that the fact itself decodes with infinite endpoints.
func openFactCoverProblem() *problem.Problem {
	return &problem.Problem{
		Timelines: []problem.Timeline{
			{
				Name: "device",
				Values: []problem.Value{
					{Name: "off", Duration: problem.Duration{Min: 1}},
					{Name: "running", Duration: problem.Duration{Min: 1}, Conditions: []problem.Condition{
						{TemporalRelationship: problem.Meet, Object: problem.ObjectSet{Object: "device"}, Value: "off"},
						{TemporalRelationship: problem.Cover, Object: problem.ObjectSet{Object: "power"}, Value: "on"},
					}},
				},
			},
		},
		Tokens: []problem.Token{
			{TimelineName: "power", Value: "on", ConstTime: problem.TokenTime{Kind: problem.KindFact}},
			{TimelineName: "device", Value: "running", ConstTime: problem.TokenTime{Kind: problem.KindGoal}},
		},
	}
}

func TestSolveOpenFactCoverDecodesInfiniteEndpoints(t *testing.T) {
	sol, err := Solve(openFactCoverProblem(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var foundGoal, foundFact bool
	for _, tok := range sol.Tokens {
		if tok.ObjectName == "device" && tok.Value == "running" {
			foundGoal = true
		}
		if tok.ObjectName == "power" && tok.Value == "on" {
			foundFact = true
			if !math.IsInf(tok.StartTime, -1) {
				t.Errorf("expected power=on's start time to decode as -Inf, got %v", tok.StartTime)
			}
			if !math.IsInf(tok.EndTime, 1) {
				t.Errorf("expected power=on's end time to decode as +Inf, got %v", tok.EndTime)
			}
		}
	}
	if !foundGoal {
		t.Fatalf("expected device=running in the solution, got %+v", sol.Tokens)
	}
	if !foundFact {
		t.Fatalf("expected the power=on fact token in the solution, got %+v", sol.Tokens)
	}
}

func TestSolveRejectsGoalWithDurationLimit(t *testing.T) {
	max := uint64(5)
	p := &problem.Problem{
		Timelines: []problem.Timeline{
			{Name: "light", Values: []problem.Value{
				{Name: "on", Duration: problem.Duration{Max: &max}},
			}},
		},
		Tokens: []problem.Token{
			{TimelineName: "light", Value: "on", ConstTime: problem.TokenTime{Kind: problem.KindGoal}},
		},
	}

	_, err := Solve(p, nil)
	if err == nil {
		t.Fatal("expected an error for a goal value with a bounded max duration")
	}
}
