package identity

import (
	"regexp"
	"strings"
)

// MaxScannedTurns bounds the transcript scan to the opening of the call.
const MaxScannedTurns = 10

// introPattern matches self-introductions. The lead-in phrase is case
// insensitive; the name must be one or two capitalised words.
var introPattern = regexp.MustCompile(`(?:^|[^\p{L}])(?i:my name is|this is|i['’]m|i am|it['’]s)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)

var callerRoles = map[string]bool{"user": true, "customer": true}

// FromTranscript scans the caller's turns for "my name is X"-style phrasing.
// Flat string transcripts carry no roles and are not scanned.
func FromTranscript(in Input) string {
	if in.Event == nil || !in.Event.Transcript.Structured {
		return ""
	}
	turns := in.Event.Transcript.Turns
	if len(turns) > MaxScannedTurns {
		turns = turns[:MaxScannedTurns]
	}
	for _, t := range turns {
		if !callerRoles[t.Role] {
			continue
		}
		if name := ExtractIntroducedName(t.Content()); name != "" {
			return name
		}
	}
	return ""
}

// ExtractIntroducedName returns the name in the first self-introduction of text.
func ExtractIntroducedName(text string) string {
	m := introPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
