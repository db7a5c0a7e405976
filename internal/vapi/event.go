// Package vapi holds the wire types posted by the voice-AI platform.
//
// The platform payload is only partially structured: every field may be
// absent, the transcript arrives either as a flat string or as a list of
// turns, and structured analysis is a free-form object. Decoding never
// fails on a missing field; callers read through the accessor methods,
// which apply the documented fallbacks.
package vapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// MessageTypeEndOfCallReport is the only event type ingested.
const MessageTypeEndOfCallReport = "end-of-call-report"

// Envelope is the webhook request body.
type Envelope struct {
	Message *Message `json:"message"`
}

// Message is one platform event. End-of-call reports carry the full call.
type Message struct {
	Type string `json:"type"`

	ID          string     `json:"id,omitempty"`
	CallID      string     `json:"callId,omitempty"`
	AssistantID string     `json:"assistantId,omitempty"`
	Assistant   *Assistant `json:"assistant,omitempty"`
	Customer    *Customer  `json:"customer,omitempty"`

	// Call is the nested call object some platform versions send instead of
	// (or in addition to) the top-level identifiers.
	Call *Call `json:"call,omitempty"`

	PhoneNumberID string `json:"phoneNumberId,omitempty"`

	StartedAt string   `json:"startedAt,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
	EndedAt   string   `json:"endedAt,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`

	Cost          *float64        `json:"cost,omitempty"`
	CostBreakdown json.RawMessage `json:"costBreakdown,omitempty"`

	EndedReason string     `json:"endedReason,omitempty"`
	Transcript  Transcript `json:"transcript,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Analysis    *Analysis  `json:"analysis,omitempty"`

	// ToolCalls and ToolCall are set on tool-invocation messages.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	ToolCall  *ToolCall  `json:"toolCall,omitempty"`
}

type Call struct {
	ID          string    `json:"id,omitempty"`
	AssistantID string    `json:"assistantId,omitempty"`
	Customer    *Customer `json:"customer,omitempty"`
}

type Assistant struct {
	ID    string          `json:"id,omitempty"`
	Model *AssistantModel `json:"model,omitempty"`
	Voice *AssistantVoice `json:"voice,omitempty"`
}

type AssistantModel struct {
	Model string `json:"model,omitempty"`
}

type AssistantVoice struct {
	VoiceID string `json:"voiceId,omitempty"`
}

type Customer struct {
	Number string `json:"number,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Analysis is the platform's post-call AI analysis.
type Analysis struct {
	Summary           string          `json:"summary,omitempty"`
	StructuredData    map[string]any  `json:"structuredData,omitempty"`
	SuccessEvaluation json.RawMessage `json:"successEvaluation,omitempty"`
}

// Turn is one utterance in a transcript.
type Turn struct {
	Role    string `json:"role"`
	Message string `json:"message,omitempty"`
	Text    string `json:"text,omitempty"`
}

// Content returns the spoken text, whichever key carried it.
func (t Turn) Content() string {
	if t.Message != "" {
		return t.Message
	}
	return t.Text
}

// Transcript is either a flat string or an ordered list of turns.
type Transcript struct {
	Text  string
	Turns []Turn
	// Structured is true when the payload carried a list of turns.
	Structured bool
	present    bool
}

// UnmarshalJSON accepts a string, an array of turns or null.
// Any other shape is treated as absent rather than failing the whole event.
func (t *Transcript) UnmarshalJSON(b []byte) error {
	*t = Transcript{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		t.Text, t.present = s, s != ""
	case '[':
		var turns []Turn
		if err := json.Unmarshal(b, &turns); err != nil {
			return nil
		}
		t.Turns, t.Structured, t.present = turns, true, true
	}
	return nil
}

// MarshalJSON mirrors UnmarshalJSON so events round-trip through queues.
func (t Transcript) MarshalJSON() ([]byte, error) {
	switch {
	case t.Structured:
		return json.Marshal(t.Turns)
	case t.present:
		return json.Marshal(t.Text)
	default:
		return []byte("null"), nil
	}
}

// Present reports whether the event carried any transcript at all.
func (t Transcript) Present() bool { return t.present }

// Render flattens the transcript. Turns become "<role>: <text>" lines in order.
func (t Transcript) Render() (string, bool) {
	if !t.present {
		return "", false
	}
	if !t.Structured {
		return t.Text, true
	}
	lines := make([]string, 0, len(t.Turns))
	for _, turn := range t.Turns {
		lines = append(lines, turn.Role+": "+turn.Content())
	}
	return strings.Join(lines, "\n"), true
}

// NewTextTranscript builds a flat transcript.
func NewTextTranscript(s string) Transcript {
	return Transcript{Text: s, present: s != ""}
}

// NewTurnTranscript builds a structured transcript.
func NewTurnTranscript(turns ...Turn) Transcript {
	return Transcript{Turns: turns, Structured: true, present: true}
}

// ExternalAssistantID is the platform assistant id used to resolve the tenant.
func (m *Message) ExternalAssistantID() string {
	if m.Assistant != nil && m.Assistant.ID != "" {
		return m.Assistant.ID
	}
	if m.AssistantID != "" {
		return m.AssistantID
	}
	if m.Call != nil {
		return m.Call.AssistantID
	}
	return ""
}

// ExternalCallID is the platform's identifier for the call.
func (m *Message) ExternalCallID() string {
	switch {
	case m.CallID != "":
		return m.CallID
	case m.ID != "":
		return m.ID
	case m.Call != nil:
		return m.Call.ID
	}
	return ""
}

// CustomerInfo returns the caller as reported by the platform, if any.
func (m *Message) CustomerInfo() Customer {
	if m.Customer != nil {
		return *m.Customer
	}
	if m.Call != nil && m.Call.Customer != nil {
		return *m.Call.Customer
	}
	return Customer{}
}

// SummaryText prefers the top-level summary over the analysis summary.
func (m *Message) SummaryText() string {
	if m.Summary != "" {
		return m.Summary
	}
	if m.Analysis != nil {
		return m.Analysis.Summary
	}
	return ""
}

// StructuredData returns the analysis object or nil.
func (m *Message) StructuredData() map[string]any {
	if m.Analysis == nil {
		return nil
	}
	return m.Analysis.StructuredData
}

// SuccessEvaluation returns the raw evaluation as text. Quoted strings are
// unquoted; numbers are returned verbatim; anything else yields "".
func (m *Message) SuccessEvaluation() string {
	if m.Analysis == nil {
		return ""
	}
	raw := bytes.TrimSpace(m.Analysis.SuccessEvaluation)
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		s, err := strconv.Unquote(string(raw))
		if err != nil {
			var out string
			if json.Unmarshal(raw, &out) != nil {
				return ""
			}
			return out
		}
		return s
	}
	if (raw[0] >= '0' && raw[0] <= '9') || raw[0] == '-' || raw[0] == '.' {
		return string(raw)
	}
	return ""
}

// ParseTime parses a platform timestamp: RFC 3339 text, or a bare integer
// of Unix milliseconds. The zero value and false are returned for empty or
// unparseable input.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).UTC(), true
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z0700", "2006-01-02 15:04:05Z07:00"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
