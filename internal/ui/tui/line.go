package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
)

const lineHelp = "Commands: /yes confirm, /no cancel, /save <file> export the transcript, /quit leave."

// LinePrinter writes log messages it has not printed yet.
type LinePrinter struct {
	log     *conversation.Log
	out     io.Writer
	printed int
}

// NewLinePrinter creates a printer that starts at the beginning of log.
func NewLinePrinter(log *conversation.Log, out io.Writer) *LinePrinter {
	return &LinePrinter{log: log, out: out}
}

// Flush prints every message appended since the last call.
func (lp *LinePrinter) Flush() {
	for _, m := range lp.log.Since(lp.printed) {
		lp.printed++
		_, _ = fmt.Fprintln(lp.out, RenderMessage(m))
		if m.Kind == conversation.KindProposal {
			_, _ = fmt.Fprintln(lp.out, dimStyle.Render("     Type /yes to run it or /no to cancel."))
		}
	}
}

// RunLineChat runs the chat in line mode, reading prompts from in until EOF
// or /quit.
func RunLineChat(ctx context.Context, session Session, in io.Reader, out io.Writer) error {
	lp := NewLinePrinter(session.Log(), out)
	lp.Flush()
	_, _ = fmt.Fprintln(out, dimStyle.Render(lineHelp))

	scanner := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		quit, err := handleLine(ctx, session, out, line)
		lp.Flush()
		if err != nil {
			_, _ = fmt.Fprintln(out, failedStyle.Render("Error: "+err.Error()))
		}
		if quit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

var errNothingPending = errors.New("no proposal is awaiting confirmation")

func handleLine(ctx context.Context, session Session, out io.Writer, line string) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false, nil
	}

	fields := strings.Fields(trimmed)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		_, _ = fmt.Fprintln(out, lineHelp)
		return false, nil
	case "/yes":
		pending := session.Pending()
		if len(pending) == 0 {
			return false, errNothingPending
		}
		_, err := session.Confirm(ctx, pending[len(pending)-1].MessageID)
		return false, err
	case "/no":
		pending := session.Pending()
		if len(pending) == 0 {
			return false, errNothingPending
		}
		return false, session.Cancel(pending[len(pending)-1].MessageID)
	case "/save":
		if len(fields) < 2 {
			return false, errors.New("usage: /save <file>")
		}
		if err := session.Log().Save(fields[1]); err != nil {
			return false, err
		}
		_, _ = fmt.Fprintln(out, dimStyle.Render("Transcript saved to "+fields[1]))
		return false, nil
	}

	_, err := session.Send(ctx, line)
	return false, err
}
