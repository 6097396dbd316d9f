// Package conversation holds the ordered message log shared by the assistant,
// the executor and the chat surface.
//
// The log is append-only. Messages are never rewritten once appended; an
// execution adds a placeholder and later a separate outcome message.
package conversation

import (
	"time"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/command"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind tells the chat surface how to present a message.
type Kind string

const (
	// KindText is plain conversation text.
	KindText Kind = "text"
	// KindProposal carries an actionable command awaiting confirmation.
	KindProposal Kind = "proposal"
	// KindPlaceholder marks an execution in progress.
	KindPlaceholder Kind = "placeholder"
	// KindOutcome reports how an execution ended.
	KindOutcome Kind = "outcome"
	// KindNotice is an informational follow-up such as a redirect notice.
	KindNotice Kind = "notice"
)

// Message is one entry of the conversation.
type Message struct {
	ID        string                   `json:"id"`
	Role      Role                     `json:"role"`
	Kind      Kind                     `json:"kind"`
	Text      string                   `json:"text"`
	Command   *command.Command         `json:"command,omitempty"`
	Result    *command.ExecutionResult `json:"result,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

// HasCommand reports whether the message carries an actionable command.
func (m Message) HasCommand() bool {
	return m.Command.Actionable()
}

// UserText builds a user message.
func UserText(text string) Message {
	return Message{Role: RoleUser, Kind: KindText, Text: text}
}

// AssistantText builds an informational assistant message.
func AssistantText(text string) Message {
	return Message{Role: RoleAssistant, Kind: KindText, Text: text}
}

// Greeting returns the messages a new conversation starts with.
func Greeting() []Message {
	return []Message{
		AssistantText("Hello! I am your cloud infrastructure assistant. How can I help you today?"),
		AssistantText(`You can ask me to create a cluster or a virtual machine. For example: "Create a cluster with 3 machines" or "Create a virtual machine with 2 vCPUs and 4 GB of RAM".`),
		AssistantText("I currently work with AWS and Google Cloud Platform."),
	}
}
