package executor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/command"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
)

// State is the lifecycle position of a proposal.
type State string

const (
	StateProposed  State = "proposed"
	StateConfirmed State = "confirmed"
	StateExecuting State = "executing"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

var (
	// ErrNotActionable is returned for commands outside the actionable set.
	ErrNotActionable = errors.New("command is not actionable")
	// ErrNotConfirmed is returned when executing a proposal that was not confirmed.
	ErrNotConfirmed = errors.New("proposal is not confirmed")
	// ErrBusy is returned while another command is executing.
	ErrBusy = errors.New("another command is executing")
	// ErrInvalidTransition is returned for a transition the table does not allow.
	ErrInvalidTransition = errors.New("invalid proposal transition")
)

var allowedTransitions = map[State]map[State]struct{}{
	StateProposed: {
		StateConfirmed: {},
		StateCancelled: {},
	},
	StateConfirmed: {
		StateExecuting: {},
	},
	StateExecuting: {
		StateSucceeded: {},
		StateFailed:    {},
	},
	StateSucceeded: {},
	StateFailed:     {},
	StateCancelled:  {},
}

// ValidateTransition checks from -> to against the transition table.
func ValidateTransition(from, to State) error {
	if _, ok := allowedTransitions[from]; !ok {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, from)
	}
	if _, ok := allowedTransitions[to]; !ok {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, to)
	}
	if _, ok := allowedTransitions[from][to]; !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

// Proposal is an actionable command awaiting the operator's decision.
type Proposal struct {
	ID        string
	MessageID string
	Command   *command.Command

	mu    sync.Mutex
	state State
}

// NewProposal creates a proposal for a message carrying an actionable command.
func NewProposal(msg conversation.Message) (*Proposal, error) {
	if !msg.HasCommand() {
		return nil, ErrNotActionable
	}
	return &Proposal{
		ID:        uuid.NewString(),
		MessageID: msg.ID,
		Command:   msg.Command,
		state:     StateProposed,
	}, nil
}

// State returns the current state.
func (p *Proposal) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Confirm records the operator's approval.
func (p *Proposal) Confirm() error {
	return p.transition(StateConfirmed)
}

// Cancel records the operator's refusal.
func (p *Proposal) Cancel() error {
	return p.transition(StateCancelled)
}

func (p *Proposal) transition(to State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ValidateTransition(p.state, to); err != nil {
		return err
	}
	p.state = to
	return nil
}
