package workflow

import "fmt"

// State is one stage of the lesson-plan workflow.
type State string

const (
	StateParsing     State = "parsing"
	StateFetching    State = "fetching"
	StateGenerating  State = "generating"
	StateReviewing   State = "reviewing"
	StateAggregating State = "aggregating"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// allowedTransitions encodes the pipeline order. Every state may also move
// to failed; done and failed are terminal.
var allowedTransitions = map[State]map[State]struct{}{
	StateParsing: {
		StateFetching: {},
		StateFailed:   {},
	},
	StateFetching: {
		StateGenerating: {},
		StateFailed:     {},
	},
	StateGenerating: {
		StateReviewing: {},
		StateFailed:    {},
	},
	StateReviewing: {
		StateAggregating: {},
		StateFailed:      {},
	},
	StateAggregating: {
		StateDone:   {},
		StateFailed: {},
	},
	StateDone:   {},
	StateFailed: {},
}

// ValidateState reports whether state is a known workflow state.
func ValidateState(state State) error {
	if _, ok := allowedTransitions[state]; !ok {
		return fmt.Errorf("invalid workflow state: %q", state)
	}
	return nil
}

// ValidateTransition reports whether from -> to is an allowed move.
func ValidateTransition(from, to State) error {
	if err := ValidateState(from); err != nil {
		return err
	}
	if err := ValidateState(to); err != nil {
		return err
	}
	if _, ok := allowedTransitions[from][to]; !ok {
		return fmt.Errorf("invalid workflow transition: %s -> %s", from, to)
	}
	return nil
}

// Terminal reports whether no further transition leaves the state.
func Terminal(state State) bool {
	return len(allowedTransitions[state]) == 0
}
