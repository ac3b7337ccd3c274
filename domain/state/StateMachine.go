package state

import (
	"bidhub/domain"
	"errors"
)

var ErrTransitionNotAllowed = errors.New("transition not allowed")

type Category uint

const (
	InProcess Category = iota
	Done
)

type State struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

type Transition struct {
	Name string `json:"name"`
	From State  `json:"from"`
	To   State  `json:"to"`
}

// stateless object, just used for state computing
type StateMachine struct {
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
}

var (
	StatePending  = State{Name: string(domain.BidStatusPending), Category: InProcess}
	StateAccepted = State{Name: string(domain.BidStatusAccepted), Category: Done}
	StateRejected = State{Name: string(domain.BidStatusRejected), Category: Done}

	TransitionAccept = Transition{Name: "accept", From: StatePending, To: StateAccepted}
	TransitionReject = Transition{Name: "reject", From: StatePending, To: StateRejected}

	//            PENDING   ACCEPTED     REJECTED
	// PENDING    -         V (accept)   V (reject)
	// ACCEPTED   X         -            X
	// REJECTED   X         X            -
	BidStateMachine = NewStateMachine(
		[]State{StatePending, StateAccepted, StateRejected},
		[]Transition{TransitionAccept, TransitionReject})
)

func NewStateMachine(states []State, transitions []Transition) *StateMachine {
	return &StateMachine{States: states, Transitions: transitions}
}

func (sm *StateMachine) AvailableTransitions(fromState string, toState string) []Transition {
	r := []Transition{}
	for _, transition := range sm.Transitions {
		if (fromState == "" || fromState == transition.From.Name) && (toState == "" || toState == transition.To.Name) {
			r = append(r, transition)
		}
	}
	return r
}

func (sm *StateMachine) FindState(name string) (State, bool) {
	for _, s := range sm.States {
		if s.Name == name {
			return s, true
		}
	}
	return State{}, false
}

// Transit returns the single transition between the named states.
func (sm *StateMachine) Transit(fromState, toState string) (*Transition, error) {
	if fromState == "" || toState == "" {
		return nil, ErrTransitionNotAllowed
	}
	transitions := sm.AvailableTransitions(fromState, toState)
	if len(transitions) == 0 {
		return nil, ErrTransitionNotAllowed
	}
	return &transitions[0], nil
}

// Terminal reports whether no transition leaves the named state.
func (sm *StateMachine) Terminal(name string) bool {
	return len(sm.AvailableTransitions(name, "")) == 0
}
