package calls

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"receptionist-dashboard/internal/vapi"
)

// DefaultEndReason is stored when the platform omits one.
const DefaultEndReason = "completed"

// RecordInput carries what the orchestrator resolved before the write.
type RecordInput struct {
	OrgID        string
	AssistantID  string
	CallerNumber string
	CallerName   string
	Now          time.Time
}

// BuildRecord derives a Call from an end-of-call report. It never fails:
// every missing field has a fallback.
func BuildRecord(ev *vapi.Message, in RecordInput) Call {
	now := in.Now.UTC()
	start, end := callWindow(ev, now)

	c := Call{
		OrgID:           in.OrgID,
		AssistantID:     in.AssistantID,
		VapiCallID:      strPtr(ev.ExternalCallID()),
		CallerNumber:    strPtr(in.CallerNumber),
		CallerName:      strPtr(in.CallerName),
		StartedAt:       start,
		EndedAt:         end,
		DurationSeconds: durationSeconds(ev.Duration, start, end),
		CostCents:       costCents(ev.Cost),
		EndReason:       ev.EndedReason,
		Summary:         strPtr(ev.SummaryText()),
		SuccessScore:    SuccessScore(ev.SuccessEvaluation()),
		Metadata:        buildMetadata(ev),
		CreatedAt:       now,
	}
	if c.EndReason == "" {
		c.EndReason = DefaultEndReason
	}
	if text, ok := ev.Transcript.Render(); ok {
		c.Transcript = &text
	}
	return c
}

// callWindow resolves start and end. Start falls back to createdAt, then to
// now; end falls back to now. Unparseable timestamps count as absent.
func callWindow(ev *vapi.Message, now time.Time) (time.Time, time.Time) {
	start := now
	if ts, ok := vapi.ParseTime(ev.StartedAt); ok {
		start = ts
	} else if ts, ok := vapi.ParseTime(ev.CreatedAt); ok {
		start = ts
	}
	end := now
	if ts, ok := vapi.ParseTime(ev.EndedAt); ok {
		end = ts
	}
	return start, end
}

func durationSeconds(explicit *float64, start, end time.Time) int {
	if explicit != nil && *explicit > 0 {
		return int(math.Round(*explicit))
	}
	d := int(math.Round(end.Sub(start).Seconds()))
	if d < 0 {
		return 0
	}
	return d
}

func costCents(cost *float64) int64 {
	if cost == nil {
		return 0
	}
	return int64(math.Round(*cost * 100))
}

var leadingFloat = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// SuccessScore scales a 0-10 evaluation to [0,1]. Only the leading numeric
// part of raw is read ("8/10" scores 0.8). Non-numeric input yields nil.
func SuccessScore(raw string) *float64 {
	num := leadingFloat.FindString(strings.TrimSpace(raw))
	if num == "" {
		return nil
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	// calls.success_score carries CHECK (success_score BETWEEN 0 AND 1).
	score := math.Min(math.Max(f/10, 0), 1)
	return &score
}

func buildMetadata(ev *vapi.Message) Metadata {
	m := Metadata{PhoneNumberID: strPtr(ev.PhoneNumberID)}
	if len(ev.CostBreakdown) > 0 && string(ev.CostBreakdown) != "null" {
		m.CostBreakdown = ev.CostBreakdown
	}
	if a := ev.Assistant; a != nil {
		if a.Model != nil {
			m.Model = strPtr(a.Model.Model)
		}
		if a.Voice != nil {
			m.Voice = strPtr(a.Voice.VoiceID)
		}
	}
	return m
}
