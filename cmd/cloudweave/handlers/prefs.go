package handlers

import (
	"context"
	"fmt"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/prefs"
)

// openPreferences opens the configured preference store.
func (a *app) openPreferences() (*prefs.Preferences, func(), error) {
	var (
		store *prefs.BadgerStore
		err   error
	)
	if a.cfg.Preferences.InMemory {
		store, err = prefs.NewInMemoryBadgerStore()
	} else {
		store, err = prefs.NewBadgerStore(a.cfg.Preferences.Path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open preferences: %w", err)
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			a.logger.Error(err, "failed to close preferences")
		}
	}
	return prefs.New(store), closeFn, nil
}

// SetConsent records the operator's storage consent. answer is accept(ed) or
// reject(ed).
func SetConsent(ctx context.Context, g Globals, answer string) error {
	switch answer {
	case "accept":
		answer = string(prefs.ConsentAccepted)
	case "reject":
		answer = string(prefs.ConsentRejected)
	}
	consent, err := prefs.ParseConsent(answer)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	p, closeFn, err := a.openPreferences()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := p.SetConsent(ctx, consent); err != nil {
		return err
	}
	a.printf("Consent %s (valid for %d days)\n", consent, int(prefs.ConsentTTL.Hours()/24))
	return nil
}

// PrefsView is the printable state of the preferences.
type PrefsView struct {
	Consent          string `json:"consent"`
	WelcomeDismissed bool   `json:"welcome_dismissed"`
	Path             string `json:"path,omitempty"`
}

// ShowPrefs prints the stored preferences.
func ShowPrefs(ctx context.Context, g Globals) error {
	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	p, closeFn, err := a.openPreferences()
	if err != nil {
		return err
	}
	defer closeFn()

	consent, err := p.Consent(ctx)
	if err != nil {
		return err
	}
	dismissed, err := p.WelcomeDismissed(ctx)
	if err != nil {
		return err
	}

	view := PrefsView{Consent: string(consent), WelcomeDismissed: dismissed, Path: a.cfg.Preferences.Path}
	if view.Consent == "" {
		view.Consent = "unset"
	}
	return a.render(view, func() string {
		return fmt.Sprintf("Consent:           %s\nWelcome dismissed: %t\nStore:             %s",
			view.Consent, view.WelcomeDismissed, orDefault(view.Path, "in memory"))
	})
}
