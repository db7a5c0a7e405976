package vapi

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Platform payloads drift between versions: a field documented as a string
// may arrive as a number, an object may arrive as a placeholder string.
// Every wire type here decodes key by key and drops a value whose shape does
// not fit, so one odd field never costs the rest of the event. Only input
// that is not JSON at all fails to decode.

// fields maps JSON keys to setters.
type fields map[string]func(raw json.RawMessage)

// decodeObject applies fs to the keys of b. Anything but an object is ignored.
func decodeObject(b []byte, fs fields) {
	var obj map[string]json.RawMessage
	if json.Unmarshal(b, &obj) != nil {
		return
	}
	for k, raw := range obj {
		if set, ok := fs[k]; ok {
			set(raw)
		}
	}
}

// str accepts a JSON string, or a number kept in its literal form.
func str(dst *string) func(json.RawMessage) {
	return func(raw json.RawMessage) {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			return
		}
		if raw[0] == '"' {
			var s string
			if json.Unmarshal(raw, &s) == nil {
				*dst = s
			}
			return
		}
		var n json.Number
		if json.Unmarshal(raw, &n) == nil {
			*dst = n.String()
		}
	}
}

// num accepts a JSON number or a string holding one.
func num(dst **float64) func(json.RawMessage) {
	return func(raw json.RawMessage) {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			return
		}
		var f float64
		if json.Unmarshal(raw, &f) == nil {
			*dst = &f
			return
		}
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*dst = &f
		}
	}
}

// into decodes into dst and leaves it untouched on mismatch.
func into[T any](dst *T) func(json.RawMessage) {
	return func(raw json.RawMessage) {
		var v T
		if json.Unmarshal(raw, &v) == nil {
			*dst = v
		}
	}
}

// rawValue keeps the value verbatim for accessors that interpret it later.
func rawValue(dst *json.RawMessage) func(json.RawMessage) {
	return func(raw json.RawMessage) {
		*dst = append(json.RawMessage(nil), raw...)
	}
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	*e = Envelope{}
	decodeObject(b, fields{"message": into(&e.Message)})
	return nil
}

func (m *Message) UnmarshalJSON(b []byte) error {
	*m = Message{}
	decodeObject(b, fields{
		"type":          str(&m.Type),
		"id":            str(&m.ID),
		"callId":        str(&m.CallID),
		"assistantId":   str(&m.AssistantID),
		"assistant":     into(&m.Assistant),
		"customer":      into(&m.Customer),
		"call":          into(&m.Call),
		"phoneNumberId": str(&m.PhoneNumberID),
		"startedAt":     str(&m.StartedAt),
		"createdAt":     str(&m.CreatedAt),
		"endedAt":       str(&m.EndedAt),
		"duration":      num(&m.Duration),
		"cost":          num(&m.Cost),
		"costBreakdown": rawValue(&m.CostBreakdown),
		"endedReason":   str(&m.EndedReason),
		"transcript":    into(&m.Transcript),
		"summary":       str(&m.Summary),
		"analysis":      into(&m.Analysis),
		"toolCalls":     into(&m.ToolCalls),
		"toolCall":      into(&m.ToolCall),
	})
	return nil
}

func (c *Call) UnmarshalJSON(b []byte) error {
	*c = Call{}
	decodeObject(b, fields{
		"id":          str(&c.ID),
		"assistantId": str(&c.AssistantID),
		"customer":    into(&c.Customer),
	})
	return nil
}

func (a *Assistant) UnmarshalJSON(b []byte) error {
	*a = Assistant{}
	decodeObject(b, fields{
		"id":    str(&a.ID),
		"model": into(&a.Model),
		"voice": into(&a.Voice),
	})
	return nil
}

func (m *AssistantModel) UnmarshalJSON(b []byte) error {
	*m = AssistantModel{}
	decodeObject(b, fields{"model": str(&m.Model)})
	return nil
}

func (v *AssistantVoice) UnmarshalJSON(b []byte) error {
	*v = AssistantVoice{}
	decodeObject(b, fields{"voiceId": str(&v.VoiceID)})
	return nil
}

func (c *Customer) UnmarshalJSON(b []byte) error {
	*c = Customer{}
	decodeObject(b, fields{
		"number": str(&c.Number),
		"name":   str(&c.Name),
	})
	return nil
}

func (a *Analysis) UnmarshalJSON(b []byte) error {
	*a = Analysis{}
	decodeObject(b, fields{
		"summary":           str(&a.Summary),
		"structuredData":    into(&a.StructuredData),
		"successEvaluation": rawValue(&a.SuccessEvaluation),
	})
	return nil
}

func (t *Turn) UnmarshalJSON(b []byte) error {
	*t = Turn{}
	decodeObject(b, fields{
		"role":    str(&t.Role),
		"message": str(&t.Message),
		"text":    str(&t.Text),
	})
	return nil
}

func (tc *ToolCall) UnmarshalJSON(b []byte) error {
	*tc = ToolCall{}
	decodeObject(b, fields{
		"id":        str(&tc.ID),
		"function":  into(&tc.Function),
		"name":      str(&tc.Name),
		"arguments": rawValue(&tc.Arguments),
	})
	return nil
}

func (f *ToolFunction) UnmarshalJSON(b []byte) error {
	*f = ToolFunction{}
	decodeObject(b, fields{
		"name":      str(&f.Name),
		"arguments": rawValue(&f.Arguments),
	})
	return nil
}
