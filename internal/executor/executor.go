// Package executor runs confirmed command proposals against the execution
// backend and reports the outcome into the conversation log.
//
// A proposal moves Proposed -> Confirmed -> Executing -> Succeeded|Failed, or
// Proposed -> Cancelled. Nothing leaves Proposed without an explicit call.
// Every execution appends one placeholder message before the backend call and
// one outcome message after it; backend failures are reported in the log and
// never returned as errors.
package executor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/command"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/events"
)

// Fixed texts shown to the operator.
const (
	PlaceholderText    = "⚙️ Executing operation..."
	SuccessPrefix      = "✅ "
	FailurePrefix      = "❌ Error: "
	DefaultSuccessText = "Operation completed successfully!"
	DefaultFailureText = "The operation could not be executed"
	RedirectText       = "Redirecting to the management view..."
)

// DefaultRedirectDelay is the pause before navigating after a cluster is created.
const DefaultRedirectDelay = 1500 * time.Millisecond

// ViewClusters is the management view shown after a cluster is created.
const ViewClusters = "clusters"

// Runner executes a command on the backend.
type Runner interface {
	Execute(ctx context.Context, cmd *command.Command) (command.ExecutionResult, error)
}

// Navigator switches the operator's view.
type Navigator interface {
	Navigate(view string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(view string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(view string) { f(view) }

// Executor runs one proposal at a time.
type Executor struct {
	runner        Runner
	log           *conversation.Log
	navigator     Navigator
	redirectDelay time.Duration
	schedule      func(time.Duration, func())
	sink          events.Sink
	logger        logr.Logger
	busy          atomic.Bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithNavigator sets where to navigate after a cluster is created.
func WithNavigator(n Navigator) Option {
	return func(e *Executor) {
		e.navigator = n
	}
}

// WithRedirectDelay overrides DefaultRedirectDelay.
func WithRedirectDelay(d time.Duration) Option {
	return func(e *Executor) {
		e.redirectDelay = d
	}
}

// WithScheduler replaces time.AfterFunc for delayed navigation.
func WithScheduler(fn func(time.Duration, func())) Option {
	return func(e *Executor) {
		e.schedule = fn
	}
}

// WithEventSink sets where execution events are published.
func WithEventSink(s events.Sink) Option {
	return func(e *Executor) {
		e.sink = s
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// New creates an Executor writing to log.
func New(runner Runner, log *conversation.Log, opts ...Option) *Executor {
	e := &Executor{
		runner:        runner,
		log:           log,
		redirectDelay: DefaultRedirectDelay,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		sink:   events.NopSink{},
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Busy reports whether a command is executing.
func (e *Executor) Busy() bool {
	return e.busy.Load()
}

// Execute runs a confirmed proposal. The returned error only reports a
// violated precondition, in which case nothing was appended to the log.
// Backend failures come back as an unsuccessful result.
func (e *Executor) Execute(ctx context.Context, p *Proposal) (command.ExecutionResult, error) {
	if p == nil || !p.Command.Actionable() {
		return command.ExecutionResult{}, ErrNotActionable
	}
	if p.State() != StateConfirmed {
		return command.ExecutionResult{}, ErrNotConfirmed
	}
	if !e.busy.CompareAndSwap(false, true) {
		return command.ExecutionResult{}, ErrBusy
	}
	defer e.busy.Store(false)

	if err := p.transition(StateExecuting); err != nil {
		return command.ExecutionResult{}, err
	}

	e.log.SetLoading(true)
	defer e.log.SetLoading(false)

	e.log.Append(conversation.Message{
		Role: conversation.RoleAssistant,
		Kind: conversation.KindPlaceholder,
		Text: PlaceholderText,
	})

	start := time.Now()
	res, err := e.runner.Execute(ctx, p.Command)
	elapsed := time.Since(start)

	var text string
	switch {
	case err != nil:
		e.logger.Error(err, "command execution failed", "kind", p.Command.Kind, "proposal", p.ID)
		res = command.ExecutionResult{Success: false, Error: err.Error()}
		text = FailurePrefix + err.Error()
	case res.Success:
		text = SuccessPrefix + orDefault(res.Explanation, DefaultSuccessText)
	default:
		text = FailurePrefix + orDefault(res.Error, DefaultFailureText)
	}

	final := StateFailed
	result := "failure"
	if res.Success {
		final = StateSucceeded
		result = "success"
	}
	_ = p.transition(final)

	outcome := res
	e.log.Append(conversation.Message{
		Role:   conversation.RoleAssistant,
		Kind:   conversation.KindOutcome,
		Text:   text,
		Result: &outcome,
	})

	if res.Success && p.Command.Kind == command.KindCreateCluster {
		e.log.Append(conversation.Message{
			Role: conversation.RoleAssistant,
			Kind: conversation.KindNotice,
			Text: RedirectText,
		})
		if e.navigator != nil {
			nav := e.navigator
			e.schedule(e.redirectDelay, func() { nav.Navigate(ViewClusters) })
		}
	}

	recordExecutionMetric(string(p.Command.Kind), result, elapsed.Seconds())
	e.publish(ctx, p, res, elapsed)

	return res, nil
}

func (e *Executor) publish(ctx context.Context, p *Proposal, res command.ExecutionResult, elapsed time.Duration) {
	ev := events.ExecutionEvent{
		ID:          p.ID,
		Kind:        string(p.Command.Kind),
		Success:     res.Success,
		Explanation: res.Explanation,
		Error:       res.Error,
		Duration:    elapsed,
		FinishedAt:  time.Now().UTC(),
	}
	if err := e.sink.Publish(ctx, ev); err != nil {
		e.logger.V(1).Info("failed to publish execution event", "error", err.Error())
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
