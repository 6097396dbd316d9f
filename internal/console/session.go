// Package console wires the conversation log, the assistant and the executor
// into the operations a chat surface calls: send a prompt, then confirm or
// cancel the proposals it produced.
package console

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/assistant"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/command"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/executor"
)

var (
	// ErrEmptyPrompt is returned by Send for blank input.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrNoProposal is returned when a message carries no proposal.
	ErrNoProposal = errors.New("message has no proposal")
)

// Session is one operator conversation.
type Session struct {
	backend  assistant.Backend
	log      *conversation.Log
	executor *executor.Executor
	logger   logr.Logger

	// busy is held by Send and Confirm for their whole duration, so the
	// loading flag and the log order belong to one call at a time.
	busy atomic.Bool

	mu        sync.Mutex
	proposals map[string]*executor.Proposal
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	logger       logr.Logger
	executorOpts []executor.Option
}

// WithLogger sets the logger used by the session and its executor.
func WithLogger(l logr.Logger) Option {
	return func(c *sessionConfig) {
		c.logger = l
	}
}

// WithExecutorOptions passes options through to the executor.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(c *sessionConfig) {
		c.executorOpts = append(c.executorOpts, opts...)
	}
}

// New creates a session over log. The backend both answers prompts and runs
// confirmed commands.
func New(backend assistant.Backend, log *conversation.Log, opts ...Option) *Session {
	cfg := sessionConfig{logger: logr.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	execOpts := append([]executor.Option{executor.WithLogger(cfg.logger)}, cfg.executorOpts...)
	return &Session{
		backend:   backend,
		log:       log,
		executor:  executor.New(backend, log, execOpts...),
		logger:    cfg.logger,
		proposals: make(map[string]*executor.Proposal),
	}
}

// Log returns the conversation log.
func (s *Session) Log() *conversation.Log {
	return s.log
}

// Busy reports whether a prompt or a command is in flight.
func (s *Session) Busy() bool {
	return s.busy.Load() || s.executor.Busy()
}

// Send appends the operator's text, asks the assistant and appends its answer.
// Assistant failures become an apology message, so the only errors are
// ErrEmptyPrompt and executor.ErrBusy, in which case nothing is appended.
// A prompt is rejected while a command is executing.
func (s *Session) Send(ctx context.Context, text string) (conversation.Message, error) {
	if strings.TrimSpace(text) == "" {
		return conversation.Message{}, ErrEmptyPrompt
	}
	if !s.acquire() {
		return conversation.Message{}, executor.ErrBusy
	}
	defer s.release()

	s.log.Append(conversation.UserText(text))
	s.log.SetLoading(true)
	defer s.log.SetLoading(false)

	answer := s.log.Append(assistant.Answer(ctx, s.backend, text, s.logger))
	if answer.HasCommand() {
		p, err := executor.NewProposal(answer)
		if err != nil {
			return answer, err
		}
		s.mu.Lock()
		s.proposals[answer.ID] = p
		s.mu.Unlock()
		s.logger.V(1).Info("proposal created", "message", answer.ID, "kind", string(p.Command.Kind))
	}
	return answer, nil
}

// Proposal returns the proposal attached to message msgID.
func (s *Session) Proposal(msgID string) (*executor.Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[msgID]
	return p, ok
}

// Pending returns the proposals still awaiting a decision, in log order.
func (s *Session) Pending() []*executor.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*executor.Proposal
	for _, m := range s.log.Messages() {
		if p, ok := s.proposals[m.ID]; ok && p.State() == executor.StateProposed {
			out = append(out, p)
		}
	}
	return out
}

// Confirm approves the proposal on message msgID and executes it.
func (s *Session) Confirm(ctx context.Context, msgID string) (command.ExecutionResult, error) {
	p, ok := s.Proposal(msgID)
	if !ok {
		return command.ExecutionResult{}, ErrNoProposal
	}
	if !s.acquire() {
		return command.ExecutionResult{}, executor.ErrBusy
	}
	defer s.release()

	// A proposal left Confirmed by an earlier busy rejection can be retried.
	if p.State() != executor.StateConfirmed {
		if err := p.Confirm(); err != nil {
			return command.ExecutionResult{}, err
		}
	}
	return s.executor.Execute(ctx, p)
}

// acquire takes the session for one prompt or one execution.
func (s *Session) acquire() bool {
	if !s.busy.CompareAndSwap(false, true) {
		return false
	}
	if s.executor.Busy() {
		s.busy.Store(false)
		return false
	}
	return true
}

func (s *Session) release() {
	s.busy.Store(false)
}

// Cancel declines the proposal on message msgID. Nothing is appended.
func (s *Session) Cancel(msgID string) error {
	p, ok := s.Proposal(msgID)
	if !ok {
		return ErrNoProposal
	}
	return p.Cancel()
}
