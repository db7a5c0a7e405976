package reporting

import (
	"context"
	"errors"
	"time"

	"receptionist-dashboard/internal/calls"

	"github.com/rotisserie/eris"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// IMPORTANT:
// - Methods must enforce org filtering.
// - Ranges are half-open: From inclusive, To exclusive, on created_at.

type Repository interface {
	ListCallsBetween(ctx context.Context, orgID string, from, to time.Time) ([]calls.Call, error)
	CountLeadsBetween(ctx context.Context, orgID string, from, to time.Time) (total, named int, err error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	if req.OrgID == "" || !req.Range.Valid() {
		return CallsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return CallsSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListCallsBetween(ctx, req.OrgID, req.Range.From, req.Range.To)
	if err != nil {
		return CallsSummary{}, eris.Wrap(err, "reporting: list calls")
	}

	out := CallsSummary{OrgID: req.OrgID, Range: req.Range, EndReasons: map[string]int{}}
	callers := map[string]struct{}{}
	var scoreSum float64
	for _, c := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += c.DurationSeconds
		out.TotalCostCents += c.CostCents
		if c.CallerName != nil {
			out.IdentifiedCalls++
		}
		if c.CallerNumber != nil {
			callers[*c.CallerNumber] = struct{}{}
		}
		if c.EndReason != "" {
			out.EndReasons[c.EndReason]++
		}
		if c.SuccessScore != nil {
			out.ScoredCalls++
			scoreSum += *c.SuccessScore
		}
	}
	out.UniqueCallers = len(callers)
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	if out.ScoredCalls > 0 {
		avg := scoreSum / float64(out.ScoredCalls)
		out.AverageSuccessScore = &avg
	}
	return out, nil
}

func (s *Service) LeadsSummary(ctx context.Context, req LeadsSummaryRequest) (LeadsSummary, error) {
	if req.OrgID == "" || !req.Range.Valid() {
		return LeadsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return LeadsSummary{}, errors.New("reporting: repository not configured")
	}

	total, named, err := s.repo.CountLeadsBetween(ctx, req.OrgID, req.Range.From, req.Range.To)
	if err != nil {
		return LeadsSummary{}, eris.Wrap(err, "reporting: count leads")
	}
	out := LeadsSummary{OrgID: req.OrgID, Range: req.Range, NewLeads: total, NamedLeads: named}
	if total > 0 {
		out.NameRate = float64(named) / float64(total)
	}
	return out, nil
}
