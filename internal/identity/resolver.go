// Package identity resolves a human-readable caller name for a call.
//
// Resolution is an ordered cascade of strategies. Each strategy is a pure
// function over Input; the first non-empty result wins. A previously
// confirmed lead name always outranks anything derived from the current
// call.
package identity

import (
	"strings"

	"receptionist-dashboard/internal/vapi"
)

// Source names which strategy produced a name.
type Source string

const (
	SourceNone       Source = ""
	SourceLead       Source = "lead"
	SourceStructured Source = "structured_data"
	SourceCustomer   Source = "customer"
	SourceTranscript Source = "transcript"
)

// Input is everything a strategy may look at.
type Input struct {
	Event *vapi.Message
	// Lead is the tenant's existing contact for the caller phone, if any.
	Lead *KnownLead
}

// KnownLead is the slice of a stored lead the resolver needs.
type KnownLead struct {
	ID   string
	Name string
}

type Result struct {
	Name      string
	Source    Source
	LeadFound bool
}

// Strategy returns a candidate name or "".
type Strategy struct {
	Source Source
	Find   func(Input) string
}

// DefaultStrategies is the production cascade order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Source: SourceLead, Find: FromLead},
		{Source: SourceStructured, Find: FromStructuredData},
		{Source: SourceCustomer, Find: FromCustomerName},
		{Source: SourceTranscript, Find: FromTranscript},
	}
}

type Resolver struct {
	strategies []Strategy
}

// NewResolver builds a resolver; with no strategies it uses DefaultStrategies.
func NewResolver(strategies ...Strategy) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Resolver{strategies: strategies}
}

func (r *Resolver) Resolve(in Input) Result {
	res := Result{LeadFound: in.Lead != nil}
	for _, s := range r.strategies {
		if name := strings.TrimSpace(s.Find(in)); name != "" {
			res.Name = name
			res.Source = s.Source
			return res
		}
	}
	return res
}

// FromLead returns the stored name of an existing lead.
func FromLead(in Input) string {
	if in.Lead == nil {
		return ""
	}
	return in.Lead.Name
}

// StructuredNameKeys are probed in order on the analysis object.
var StructuredNameKeys = []string{"callerName", "caller_name", "customerName", "customer_name", "name"}

// FromStructuredData reads the first non-empty string under StructuredNameKeys.
func FromStructuredData(in Input) string {
	if in.Event == nil {
		return ""
	}
	data := in.Event.StructuredData()
	if data == nil {
		return ""
	}
	for _, k := range StructuredNameKeys {
		s, ok := data[k].(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// FromCustomerName uses the name the platform attached to the customer.
func FromCustomerName(in Input) string {
	if in.Event == nil {
		return ""
	}
	return in.Event.CustomerInfo().Name
}
