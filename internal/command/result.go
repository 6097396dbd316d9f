package command

import (
	"encoding/json"
	"fmt"
)

// ExecutionResult is the backend's answer to an executed command.
type ExecutionResult struct {
	Success     bool            `json:"success"`
	Explanation string          `json:"explanation,omitempty"`
	Error       string          `json:"error,omitempty"`
	Raw         json.RawMessage `json:"-"`
}

// ParseResult decodes an execution answer and keeps data as Raw.
// The error field may be a string or any JSON value; non-strings are kept in compact form.
func ParseResult(data []byte) (ExecutionResult, error) {
	var w struct {
		Success     bool            `json:"success"`
		Explanation string          `json:"explanation"`
		Error       json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return ExecutionResult{Raw: data}, fmt.Errorf("failed to decode execution result: %w", err)
	}
	res := ExecutionResult{
		Success:     w.Success,
		Explanation: w.Explanation,
		Raw:         append(json.RawMessage(nil), data...),
	}
	if len(w.Error) > 0 && string(w.Error) != "null" {
		var s string
		if err := json.Unmarshal(w.Error, &s); err == nil {
			res.Error = s
		} else {
			res.Error = string(w.Error)
		}
	}
	return res, nil
}
