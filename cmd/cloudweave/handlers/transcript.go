package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/archive"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
)

// Archive is the transcript storage used by the transcript commands.
type Archive interface {
	KeyFor(t time.Time) string
	EnsureBucket(ctx context.Context) error
	PutTranscript(ctx context.Context, name string, data []byte) (string, error)
	ListTranscripts(ctx context.Context) ([]string, error)
}

// newArchive builds the archive client from the configuration. Replaced in tests.
var newArchive = func(a *app) (Archive, error) {
	cfg := a.cfg.Archive
	if !cfg.Enabled() {
		return nil, archive.ErrNoBucket
	}
	return archive.NewClient(cfg.Endpoint, cfg.Region, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, cfg.Prefix)
}

// PushTranscript uploads a transcript saved by the chat's /save command.
func PushTranscript(ctx context.Context, g Globals, path string) error {
	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := conversation.LoadTranscript(path); err != nil {
		return err
	}
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}

	store, err := newArchive(a)
	if err != nil {
		return err
	}
	key, err := uploadTranscript(ctx, store, filepath.Base(path), data)
	if err != nil {
		return err
	}
	a.printf("Transcript uploaded to %s\n", key)
	return nil
}

func uploadTranscript(ctx context.Context, store Archive, name string, data []byte) (string, error) {
	if err := store.EnsureBucket(ctx); err != nil {
		return "", err
	}
	return store.PutTranscript(ctx, name, data)
}

// ListTranscripts prints the keys of the archived transcripts.
func ListTranscripts(ctx context.Context, g Globals) error {
	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := newArchive(a)
	if err != nil {
		return err
	}
	keys, err := store.ListTranscripts(ctx)
	if err != nil {
		return err
	}
	return a.render(keys, func() string {
		if len(keys) == 0 {
			return "No transcripts archived."
		}
		return strings.Join(keys, "\n")
	})
}
