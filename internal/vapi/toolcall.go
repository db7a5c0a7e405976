package vapi

import (
	"bytes"
	"encoding/json"
)

// ToolCall is a mid-call function invocation requested by the assistant.
// Newer payloads nest name/arguments under Function; older ones are flat.
type ToolCall struct {
	ID        string          `json:"id"`
	Function  *ToolFunction   `json:"function,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type ToolFunction struct {
	Name string `json:"name"`
	// Arguments is either a JSON object or a string containing one.
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// FirstToolCall returns the first tool call of m, or nil.
func (m *Message) FirstToolCall() *ToolCall {
	if len(m.ToolCalls) > 0 {
		return &m.ToolCalls[0]
	}
	return m.ToolCall
}

// FunctionName returns the requested function name.
func (tc *ToolCall) FunctionName() string {
	if tc.Function != nil && tc.Function.Name != "" {
		return tc.Function.Name
	}
	return tc.Name
}

// Args decodes the call arguments into a string map. Non-string values are
// kept in their JSON text form. A missing or malformed payload yields an
// empty map.
func (tc *ToolCall) Args() map[string]string {
	raw := tc.Arguments
	if tc.Function != nil && len(bytes.TrimSpace(tc.Function.Arguments)) > 0 {
		raw = tc.Function.Arguments
	}
	raw = bytes.TrimSpace(raw)

	// Stringified object.
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return map[string]string{}
		}
		raw = []byte(s)
	}

	var obj map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &obj) != nil {
		return map[string]string{}
	}

	out := make(map[string]string, len(obj))
	for k, v := range obj {
		var s string
		if json.Unmarshal(v, &s) == nil {
			out[k] = s
			continue
		}
		if string(v) == "null" {
			continue
		}
		out[k] = string(v)
	}
	return out
}
