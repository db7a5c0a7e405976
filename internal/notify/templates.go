package notify

import "strings"

// Branding names the business and the voice agent in outbound texts.
type Branding struct {
	BusinessName string
	AgentName    string
}

func (b Branding) withDefaults() Branding {
	if b.BusinessName == "" {
		b.BusinessName = "our office"
	}
	if b.AgentName == "" {
		b.AgentName = "the receptionist"
	}
	return b
}

// ThankYouText is sent when the agent offers a follow-up without dictating one.
func (b Branding) ThankYouText() string {
	b = b.withDefaults()
	return "Thanks for calling " + b.BusinessName + "! We'll be in touch soon. Reply to this text anytime. - " + b.AgentName
}

// FollowUpText greets the caller by first name, or "there" when unknown.
func (b Branding) FollowUpText(callerName string) string {
	b = b.withDefaults()
	return "Hey " + FirstName(callerName) + ", this is " + b.AgentName + " from " + b.BusinessName + ". " +
		"Thanks for calling! Just wanted to follow up and see if you had any questions. " +
		"You can reply here or call back anytime. Talk soon!"
}

// FirstName returns the first word of name, or "there".
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}
