package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/executor"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/ui/tui"
)

// ErrExecutionFailed is returned when a confirmed command did not succeed.
// The reason has already been printed.
var ErrExecutionFailed = errors.New("execution failed")

// Ask sends one prompt to the assistant. An actionable answer is executed
// after confirmation; yes skips the question.
func Ask(ctx context.Context, g Globals, prompt string, yes bool) error {
	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	sink, closeSink := a.eventSink()
	defer closeSink()

	log := conversation.NewLog(conversation.OnAppend(func(m conversation.Message) {
		if m.Role == conversation.RoleAssistant {
			a.printf("%s\n", tui.RenderMessage(m))
		}
	}))
	// The redirect runs inline so the cluster list follows the outcome.
	session := a.newSession(log, sink,
		executor.WithNavigator(a.clustersNavigator(ctx, a.out)),
		executor.WithScheduler(func(_ time.Duration, fn func()) { fn() }),
	)

	msg, err := session.Send(ctx, prompt)
	if err != nil {
		return err
	}
	if !msg.HasCommand() {
		return nil
	}

	if !yes && !isInteractive() {
		a.printf("Re-run with --yes to execute it.\n")
		return nil
	}
	ok, err := a.confirm(ctx, yes, "Run this command?", msg.Command.Explanation)
	if err != nil {
		return err
	}
	if !ok {
		if err := session.Cancel(msg.ID); err != nil {
			return err
		}
		a.printf("Cancelled.\n")
		return nil
	}

	res, err := session.Confirm(ctx, msg.ID)
	if err != nil {
		return err
	}
	if !res.Success {
		return ErrExecutionFailed
	}
	return nil
}
