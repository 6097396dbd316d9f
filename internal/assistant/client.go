package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/command"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/platform/api"
)

// Backend is the language-model service: it answers prompts and executes
// confirmed commands.
type Backend interface {
	Ask(ctx context.Context, prompt string) (Response, error)
	Execute(ctx context.Context, cmd *command.Command) (command.ExecutionResult, error)
}

// Client implements Backend over the console REST interface.
type Client struct {
	api api.Caller
}

// NewClient creates a Client.
func NewClient(caller api.Caller) *Client {
	return &Client{api: caller}
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

type askResponse struct {
	Response Response `json:"response"`
}

// Ask sends prompt to POST /ai/ask.
func (c *Client) Ask(ctx context.Context, prompt string) (Response, error) {
	var out askResponse
	if err := c.api.Post(ctx, "ai_ask", "/ai/ask", askRequest{Prompt: prompt}, &out); err != nil {
		return Response{}, fmt.Errorf("failed to ask assistant: %w", err)
	}
	return out.Response, nil
}

// Execute sends the command payload verbatim to POST /ai/execute.
func (c *Client) Execute(ctx context.Context, cmd *command.Command) (command.ExecutionResult, error) {
	payload := cmd.Payload()
	if len(payload) == 0 {
		data, err := json.Marshal(cmd)
		if err != nil {
			return command.ExecutionResult{}, fmt.Errorf("failed to encode command: %w", err)
		}
		payload = data
	}

	var raw json.RawMessage
	if err := c.api.Post(ctx, "ai_execute", "/ai/execute", payload, &raw); err != nil {
		if res, ok := failureResult(err); ok {
			return res, nil
		}
		return command.ExecutionResult{}, fmt.Errorf("failed to execute %s: %w", cmd.Kind, err)
	}
	return command.ParseResult(raw)
}

// failureResult decodes a result envelope carried by an error status.
// Bodies without a success flag or an error field are not results.
func failureResult(err error) (command.ExecutionResult, bool) {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || len(apiErr.Body) == 0 {
		return command.ExecutionResult{}, false
	}
	res, perr := command.ParseResult(apiErr.Body)
	if perr != nil || (res.Error == "" && !res.Success) {
		return command.ExecutionResult{}, false
	}
	return res, true
}

// Answer asks the backend and classifies the answer. It never fails: any error
// becomes the fixed error message and is logged.
func Answer(ctx context.Context, backend Backend, prompt string, logger logr.Logger) conversation.Message {
	resp, err := backend.Ask(ctx, prompt)
	if err != nil {
		logger.Error(err, "assistant request failed")
		recordClassificationMetric("error")
		return conversation.AssistantText(ErrorText)
	}
	msg := Classify(resp)
	if msg.HasCommand() {
		recordClassificationMetric("actionable")
	} else {
		recordClassificationMetric("informational")
	}
	return msg
}
