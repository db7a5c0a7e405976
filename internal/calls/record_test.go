package calls

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receptionist-dashboard/internal/vapi"
)

var fixedNow = time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func TestBuildRecord_FullReport(t *testing.T) {
	ev := &vapi.Message{
		Type:          vapi.MessageTypeEndOfCallReport,
		CallID:        "vc-1",
		Assistant:     &vapi.Assistant{ID: "va-1", Model: &vapi.AssistantModel{Model: "gpt-4o"}, Voice: &vapi.AssistantVoice{VoiceID: "jennifer"}},
		PhoneNumberID: "pn-1",
		StartedAt:     "2025-03-04T11:58:00Z",
		EndedAt:       "2025-03-04T11:59:30Z",
		Cost:          f64(0.237),
		CostBreakdown: json.RawMessage(`{"llm":0.1}`),
		EndedReason:   "customer-ended-call",
		Transcript:    vapi.NewTurnTranscript(vapi.Turn{Role: "assistant", Message: "Hello"}, vapi.Turn{Role: "user", Message: "Hi"}),
		Analysis:      &vapi.Analysis{Summary: "Asked about pricing", SuccessEvaluation: json.RawMessage(`"8"`)},
	}

	c := BuildRecord(ev, RecordInput{OrgID: "org-1", AssistantID: "as-1", CallerNumber: "+15551234567", CallerName: "Pat", Now: fixedNow})

	assert.Equal(t, "org-1", c.OrgID)
	assert.Equal(t, "as-1", c.AssistantID)
	require.NotNil(t, c.VapiCallID)
	assert.Equal(t, "vc-1", *c.VapiCallID)
	assert.Equal(t, "+15551234567", *c.CallerNumber)
	assert.Equal(t, "Pat", *c.CallerName)
	assert.Equal(t, 90, c.DurationSeconds)
	assert.Equal(t, int64(24), c.CostCents)
	assert.Equal(t, "customer-ended-call", c.EndReason)
	assert.Equal(t, "assistant: Hello\nuser: Hi", *c.Transcript)
	assert.Equal(t, "Asked about pricing", *c.Summary)
	require.NotNil(t, c.SuccessScore)
	assert.InDelta(t, 0.8, *c.SuccessScore, 1e-9)
	assert.Equal(t, fixedNow, c.CreatedAt)

	meta, err := json.Marshal(c.Metadata)
	require.NoError(t, err)
	assert.JSONEq(t, `{"costBreakdown":{"llm":0.1},"model":"gpt-4o","voice":"jennifer","phoneNumberId":"pn-1"}`, string(meta))
}

func TestBuildRecord_EmptyReportFallbacks(t *testing.T) {
	c := BuildRecord(&vapi.Message{Type: vapi.MessageTypeEndOfCallReport}, RecordInput{OrgID: "o", AssistantID: "a", Now: fixedNow})

	assert.Nil(t, c.VapiCallID)
	assert.Nil(t, c.CallerNumber)
	assert.Nil(t, c.CallerName)
	assert.Nil(t, c.Transcript)
	assert.Nil(t, c.Summary)
	assert.Nil(t, c.SuccessScore)
	assert.Equal(t, 0, c.DurationSeconds)
	assert.Equal(t, int64(0), c.CostCents)
	assert.Equal(t, DefaultEndReason, c.EndReason)
	assert.Equal(t, fixedNow, c.StartedAt)
	assert.Equal(t, fixedNow, c.EndedAt)

	meta, err := json.Marshal(c.Metadata)
	require.NoError(t, err)
	assert.JSONEq(t, `{"costBreakdown":null,"model":null,"voice":null,"phoneNumberId":null}`, string(meta))
}

func TestBuildRecord_Duration(t *testing.T) {
	tests := []struct {
		name string
		ev   vapi.Message
		want int
	}{
		{name: "explicit rounds", ev: vapi.Message{Duration: f64(41.6)}, want: 42},
		{name: "explicit zero falls back", ev: vapi.Message{Duration: f64(0), StartedAt: "2025-03-04T11:59:00Z"}, want: 60},
		{name: "createdAt when no startedAt", ev: vapi.Message{CreatedAt: "2025-03-04T11:59:50Z"}, want: 10},
		{name: "end before start clamps", ev: vapi.Message{StartedAt: "2025-03-04T12:00:10Z"}, want: 0},
		{name: "garbage timestamps", ev: vapi.Message{StartedAt: "soon", EndedAt: "later"}, want: 0},
		{name: "explicit end", ev: vapi.Message{StartedAt: "2025-03-04T11:00:00Z", EndedAt: "2025-03-04T11:00:07.400Z"}, want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := tt.ev
			c := BuildRecord(&ev, RecordInput{OrgID: "o", AssistantID: "a", Now: fixedNow})
			assert.Equal(t, tt.want, c.DurationSeconds)
		})
	}
}

func TestBuildRecord_FlatTranscriptAndTopLevelSummary(t *testing.T) {
	ev := &vapi.Message{
		Transcript: vapi.NewTextTranscript("AI: hi"),
		Summary:    "top",
		Analysis:   &vapi.Analysis{Summary: "nested"},
	}
	c := BuildRecord(ev, RecordInput{OrgID: "o", AssistantID: "a", Now: fixedNow})
	assert.Equal(t, "AI: hi", *c.Transcript)
	assert.Equal(t, "top", *c.Summary)
}

func TestSuccessScore(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{raw: "", want: nil},
		{raw: "true", want: nil},
		{raw: "7", want: f64(0.7)},
		{raw: "8/10", want: f64(0.8)},
		{raw: " 9.5 ", want: f64(0.95)},
		{raw: "15", want: f64(1)},
		{raw: "-3", want: f64(0)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := SuccessScore(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestListFilter_Normalize(t *testing.T) {
	assert.Equal(t, ListFilter{Limit: DefaultListLimit}, ListFilter{}.Normalize())
	assert.Equal(t, ListFilter{Limit: MaxListLimit}, ListFilter{Limit: 1000, Offset: -4}.Normalize())
}
