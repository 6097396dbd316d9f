package assistant

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/command"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
)

// Fixed texts shown to the operator.
const (
	ProposalPrefix      = "📋 "
	DefaultProposalText = "I prepared a proposal based on your request."
	FallbackText        = "Sorry, I could not understand the server response."
	ErrorText           = "Sorry, something went wrong while reaching the assistant."
)

// Classify turns a backend response into an assistant message.
// Only objects whose command is actionable get a Command attached.
func Classify(resp Response) conversation.Message {
	switch resp.Type {
	case ResponseText:
		data := []byte(resp.Text)
		if !isObject(data) {
			return conversation.AssistantText(resp.Text)
		}
		return classifyObject(data, resp.Text)
	case ResponseStructured:
		if !isObject(resp.Object) {
			return conversation.AssistantText(FallbackText)
		}
		return classifyObject(resp.Object, "")
	default:
		return conversation.AssistantText(FallbackText)
	}
}

func classifyObject(data []byte, rawText string) conversation.Message {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		if rawText != "" {
			return conversation.AssistantText(rawText)
		}
		return conversation.AssistantText(FallbackText)
	}

	var kind string
	if err := json.Unmarshal(fields["command"], &kind); err == nil && command.Kind(kind).Actionable() {
		cmd, err := command.Parse(data)
		if err == nil {
			text := DefaultProposalText
			if s, ok := display(fields["explanation"], false); ok {
				text = s
			}
			return conversation.Message{
				Role:    conversation.RoleAssistant,
				Kind:    conversation.KindProposal,
				Text:    ProposalPrefix + text,
				Command: cmd,
			}
		}
	}

	if s, ok := display(fields["explanation"], false); ok {
		return conversation.AssistantText(s)
	}
	if s, ok := display(fields["result"], true); ok {
		return conversation.AssistantText(s)
	}
	if rawText != "" {
		return conversation.AssistantText(rawText)
	}
	return conversation.AssistantText(FallbackText)
}

// display renders a JSON value for the operator and reports whether it is
// truthy: empty strings, zero, false and null are not. Strings are returned
// as-is; other values are compact, or indented with two spaces if indent is set.
func display(raw json.RawMessage, indent bool) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	case 'n', 'f':
		return "", false
	case 't':
		return "true", true
	case '{', '[':
		if indent {
			var buf bytes.Buffer
			if err := json.Indent(&buf, raw, "", "  "); err == nil {
				return buf.String(), true
			}
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw), true
		}
		return buf.String(), true
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || f == 0 {
			return "", false
		}
		return string(raw), true
	}
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{' && json.Valid(data)
}
