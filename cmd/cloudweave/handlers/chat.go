package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/executor"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/prefs"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/ui/tui"
)

// Factory function variables for chat - can be replaced in tests.
var (
	runChat     = tui.RunChat
	runLineChat = tui.RunLineChat
)

// ChatOptions configures the chat command.
type ChatOptions struct {
	// Line forces line mode even on a terminal.
	Line bool
	// Save writes the transcript to this file on exit.
	Save string
	// Archive uploads the transcript on exit.
	Archive bool
}

// Chat runs an interactive conversation with the assistant.
func Chat(ctx context.Context, g Globals, opts ChatOptions) error {
	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	p, closePrefs, err := a.openPreferences()
	if err != nil {
		return err
	}
	defer closePrefs()

	interactive := isInteractive()
	if interactive {
		if err := a.askConsent(ctx, p); err != nil {
			return err
		}
	}

	dismissed, err := p.WelcomeDismissed(ctx)
	if err != nil {
		return err
	}
	var logOpts []conversation.LogOption
	if !dismissed {
		logOpts = append(logOpts, conversation.WithGreeting())
	}
	log := conversation.NewLog(logOpts...)

	sink, closeSink := a.eventSink()
	defer closeSink()

	if interactive && !opts.Line {
		nav := &tui.ProgramNavigator{}
		session := a.newSession(log, sink, executor.WithNavigator(nav))
		err = runChat(ctx, session, a.clusterView(false), nav)
	} else {
		out := &syncWriter{w: a.out}
		session := a.newSession(log, sink, executor.WithNavigator(a.clustersNavigator(ctx, out)))
		err = runLineChat(ctx, session, a.in, out)
	}
	if err != nil {
		return err
	}

	if !dismissed {
		stored, err := p.DismissWelcome(ctx)
		if err != nil {
			a.logger.Error(err, "failed to store welcome dismissal")
		} else {
			a.logger.V(1).Info("welcome dismissal", "stored", stored)
		}
	}

	if opts.Save != "" {
		if err := log.Save(opts.Save); err != nil {
			return err
		}
		a.printf("Transcript saved to %s\n", opts.Save)
	}
	if opts.Archive {
		return a.archiveLog(ctx, log)
	}
	return nil
}

// askConsent asks once for permission to store preferences.
func (a *app) askConsent(ctx context.Context, p *prefs.Preferences) error {
	need, err := p.NeedsConsent(ctx)
	if err != nil || !need {
		return err
	}
	ok, err := confirmPrompt(ctx,
		"Remember your preferences on this machine?",
		"cloudweave stores your consent and dismissed notices locally.")
	if err != nil {
		return err
	}
	consent := prefs.ConsentRejected
	if ok {
		consent = prefs.ConsentAccepted
	}
	return p.SetConsent(ctx, consent)
}

func (a *app) archiveLog(ctx context.Context, log *conversation.Log) error {
	store, err := newArchive(a)
	if err != nil {
		return err
	}
	data, err := log.Export()
	if err != nil {
		return err
	}
	key, err := uploadTranscript(ctx, store, store.KeyFor(time.Now()), data)
	if err != nil {
		return fmt.Errorf("failed to archive transcript: %w", err)
	}
	a.printf("Transcript uploaded to %s\n", key)
	return nil
}
