package state

import (
	"errors"
	"fmt"
)

// Phase 回合阶段
type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhaseRolling Phase = "rolling"
	PhaseBuying  Phase = "buying"
	PhaseAuction Phase = "auction"
	PhaseEnded   Phase = "ended"
)

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// Machine is a guarded phase machine. Only transitions registered with
// AddTransition are legal; a nil condition always passes. Moving to the
// current phase is a no-op.
//
// Machine is not safe for concurrent use; its owner serializes access.
type Machine struct {
	current     Phase
	transitions map[Phase]map[Phase]func() bool // fromState -> toState -> condition
	onEnter     map[Phase]func(from Phase)
}

func NewMachine(initial Phase) *Machine {
	return &Machine{
		current:     initial,
		transitions: make(map[Phase]map[Phase]func() bool),
		onEnter:     make(map[Phase]func(Phase)),
	}
}

func (m *Machine) Current() Phase {
	return m.current
}

// Is reports whether the machine is in any of the given phases.
func (m *Machine) Is(phases ...Phase) bool {
	for _, p := range phases {
		if m.current == p {
			return true
		}
	}
	return false
}

func (m *Machine) AddTransition(from, to Phase, condition func() bool) {
	if _, exists := m.transitions[from]; !exists {
		m.transitions[from] = make(map[Phase]func() bool)
	}
	m.transitions[from][to] = condition
}

// OnEnter registers a hook that runs after the machine enters phase p.
func (m *Machine) OnEnter(p Phase, hook func(from Phase)) {
	m.onEnter[p] = hook
}

func (m *Machine) ChangeState(to Phase) error {
	from := m.current
	if from == to {
		return nil
	}

	conditions, exists := m.transitions[from]
	if !exists {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}
	condition, exists := conditions[to]
	if !exists || (condition != nil && !condition()) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}

	m.current = to
	if hook := m.onEnter[to]; hook != nil {
		hook(from)
	}
	return nil
}
