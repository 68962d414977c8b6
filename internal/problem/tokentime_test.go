package problem

import (
	"encoding/json"
	"testing"
)

func TestTokenTimeGoalRoundTrip(t *testing.T) {
	want := TokenTime{Kind: KindGoal}

	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"Goal"` {
		t.Fatalf("expected bare string \"Goal\", got %s", raw)
	}

	var got TokenTime
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.IsGoal() {
		t.Error("expected round-tripped TokenTime to report IsGoal")
	}
}

func TestTokenTimeFactRoundTrip(t *testing.T) {
	start := uint64(3)
	want := TokenTime{Kind: KindFact, Start: &start}

	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got TokenTime
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.IsGoal() {
		t.Fatal("expected a Fact, not a Goal")
	}
	if got.Start == nil || *got.Start != 3 {
		t.Errorf("expected Start=3, got %v", got.Start)
	}
	if got.End != nil {
		t.Errorf("expected an open End, got %v", got.End)
	}
}

func TestTokenTimeFactOpenBothEnds(t *testing.T) {
	raw := []byte(`{"Fact":[null,null]}`)
	var got TokenTime
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Start != nil || got.End != nil {
		t.Errorf("expected both ends open, got start=%v end=%v", got.Start, got.End)
	}
}

func TestTokenTimeRejectsMalformed(t *testing.T) {
	var got TokenTime
	if err := got.UnmarshalJSON([]byte(`42`)); err == nil {
		t.Error("expected an error for a bare number")
	}
}

func TestObjectSetLessAndString(t *testing.T) {
	a := ObjectSet{Object: "robot"}
	b := ObjectSet{Group: "movers"}

	if !a.Less(b) {
		t.Error("expected an Object ObjectSet to sort before a Group one")
	}
	if a.String() == b.String() {
		t.Error("expected distinct String() for distinct ObjectSets")
	}
	if !b.IsGroup() || a.IsGroup() {
		t.Error("IsGroup should distinguish Group from Object")
	}
}
