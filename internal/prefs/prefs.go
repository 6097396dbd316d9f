package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Consent is the operator's answer to the local-storage notice.
type Consent string

const (
	ConsentUnset    Consent = ""
	ConsentAccepted Consent = "accepted"
	ConsentRejected Consent = "rejected"
)

// Keys and lifetimes of the stored preferences.
const (
	KeyConsent          = "consent"
	KeyWelcomeDismissed = "welcome_dismissed"

	ConsentTTL   = 365 * 24 * time.Hour
	DismissalTTL = 30 * 24 * time.Hour
)

// ParseConsent parses "accepted" or "rejected".
func ParseConsent(s string) (Consent, error) {
	switch c := Consent(s); c {
	case ConsentAccepted, ConsentRejected:
		return c, nil
	default:
		return ConsentUnset, fmt.Errorf("invalid consent %q: must be accepted or rejected", s)
	}
}

// Preferences reads and writes the console's preferences.
type Preferences struct {
	store Store
}

// New creates Preferences over store.
func New(store Store) *Preferences {
	return &Preferences{store: store}
}

// Consent returns the recorded consent, or ConsentUnset if none is recorded.
func (p *Preferences) Consent(ctx context.Context) (Consent, error) {
	v, err := p.store.Get(ctx, KeyConsent)
	if errors.Is(err, ErrNotFound) {
		return ConsentUnset, nil
	}
	if err != nil {
		return ConsentUnset, fmt.Errorf("failed to read consent: %w", err)
	}
	c, err := ParseConsent(v)
	if err != nil {
		return ConsentUnset, nil
	}
	return c, nil
}

// SetConsent records c for ConsentTTL.
func (p *Preferences) SetConsent(ctx context.Context, c Consent) error {
	if _, err := ParseConsent(string(c)); err != nil {
		return err
	}
	if err := p.store.Set(ctx, KeyConsent, string(c), ConsentTTL); err != nil {
		return fmt.Errorf("failed to save consent: %w", err)
	}
	return nil
}

// NeedsConsent reports whether the notice should be shown.
func (p *Preferences) NeedsConsent(ctx context.Context) (bool, error) {
	c, err := p.Consent(ctx)
	return c == ConsentUnset, err
}

// WelcomeDismissed reports whether the welcome hint was dismissed.
func (p *Preferences) WelcomeDismissed(ctx context.Context) (bool, error) {
	v, err := p.store.Get(ctx, KeyWelcomeDismissed)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read welcome state: %w", err)
	}
	return v == "true", nil
}

// DismissWelcome remembers the dismissal for DismissalTTL, but only once the
// operator has accepted consent. It reports whether anything was stored.
func (p *Preferences) DismissWelcome(ctx context.Context) (bool, error) {
	c, err := p.Consent(ctx)
	if err != nil {
		return false, err
	}
	if c != ConsentAccepted {
		return false, nil
	}
	if err := p.store.Set(ctx, KeyWelcomeDismissed, "true", DismissalTTL); err != nil {
		return false, fmt.Errorf("failed to save welcome state: %w", err)
	}
	return true, nil
}
