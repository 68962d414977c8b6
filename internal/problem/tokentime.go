package problem

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// goalLiteral is the wire form of a Goal TokenTime: the bare JSON string
// "Goal", per spec.md §6's schema-level grammar
// `const_time: {Fact:[int?,int?]} | "Goal"`.
var goalLiteral = []byte(`"Goal"`)

// factWire is the wire form of a Fact TokenTime: {"Fact": [start?, end?]}.
type factWire struct {
	Fact [2]*uint64 `json:"Fact"`
}

// MarshalJSON renders a Goal as the bare string "Goal" and a Fact as
// {"Fact": [start, end]}, matching the external schema in spec.md §6.
func (t TokenTime) MarshalJSON() ([]byte, error) {
	if t.IsGoal() {
		return goalLiteral, nil
	}
	return json.Marshal(factWire{Fact: [2]*uint64{t.Start, t.End}})
}

// UnmarshalJSON accepts either the bare string "Goal" or {"Fact": [s, e]}.
func (t *TokenTime) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, goalLiteral) {
		*t = TokenTime{Kind: KindGoal}
		return nil
	}

	var w factWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("problem: const_time must be \"Goal\" or {\"Fact\": [start?, end?]}: %w", err)
	}
	*t = TokenTime{Kind: KindFact, Start: w.Fact[0], End: w.Fact[1]}
	return nil
}
