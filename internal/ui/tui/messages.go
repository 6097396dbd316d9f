// Package tui provides the Bubble Tea chat console and the lipgloss renderers
// shared with the plain-text commands.
package tui

import (
	"time"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/cluster"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/command"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
)

// AnswerMsg carries the assistant's answer to a prompt.
type AnswerMsg struct {
	Message conversation.Message
	Err     error
}

// OutcomeMsg carries the result of a confirmed proposal.
type OutcomeMsg struct {
	Result command.ExecutionResult
	Err    error
}

// NavigateMsg switches the visible view.
type NavigateMsg struct {
	View string
}

// ClustersMsg carries a refreshed cluster list.
type ClustersMsg struct {
	Clusters []cluster.Cluster
	At       time.Time
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }
