// Package ingest turns end-of-call reports into stored calls and leads.
//
// Pipeline, strictly sequential within one request:
//
//	RECEIVED -> TYPE_FILTERED -> ASSISTANT_RESOLVED -> IDENTITY_RESOLVED ->
//	RECORD_PERSISTED -> LEDGER_UPDATED -> BACKFILLED -> RESPONDED
//
// Only the tenant lookup and the call insert can fail the request. Lead
// ledger, backfill, audit and event publishing are best effort: their
// failures are logged and the stored call stands.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"receptionist-dashboard/internal/assistants"
	"receptionist-dashboard/internal/audit"
	"receptionist-dashboard/internal/calls"
	"receptionist-dashboard/internal/events"
	"receptionist-dashboard/internal/identity"
	"receptionist-dashboard/internal/leads"
	"receptionist-dashboard/internal/phone"
	"receptionist-dashboard/internal/vapi"

	"github.com/rotisserie/eris"
)

var (
	ErrUnknownAssistant = errors.New("ingest: unknown assistant")
	ErrPersist          = errors.New("ingest: call insert failed")
	ErrLookup           = errors.New("ingest: assistant lookup failed")
)

// State names a pipeline stage. Terminal rejections are prefixed REJECTED_.
type State string

const (
	StateReceived          State = "RECEIVED"
	StateTypeFiltered      State = "TYPE_FILTERED"
	StateAssistantResolved State = "ASSISTANT_RESOLVED"
	StateIdentityResolved  State = "IDENTITY_RESOLVED"
	StateRecordPersisted   State = "RECORD_PERSISTED"
	StateLedgerUpdated     State = "LEDGER_UPDATED"
	StateBackfilled        State = "BACKFILLED"
	StateResponded         State = "RESPONDED"

	StateRejectedUnknownEventType State = "REJECTED_UNKNOWN_EVENT_TYPE"
	StateRejectedUnknownTenant    State = "REJECTED_UNKNOWN_TENANT"
	StateRejectedPersistFailure   State = "REJECTED_PERSIST_FAILURE"
)

// Result summarises one ingestion.
type Result struct {
	Processed bool
	CallID    string
	// Created is false when the report was a re-delivery of a stored call.
	Created bool

	OrgID          string
	CallerNumber   string
	CallerName     string
	IdentitySource identity.Source
	LeadOutcome    leads.Outcome
	Backfilled     int64

	State State
}

// Deps are the collaborators of Service. Audit and Events may be nil.
type Deps struct {
	Assistants assistants.Directory
	Calls      calls.Repository
	Leads      leads.Repository
	Resolver   *identity.Resolver
	Audit      *audit.Service
	Events     events.Publisher
	Logger     *slog.Logger
}

type Service struct {
	dir      assistants.Directory
	calls    calls.Repository
	leads    leads.Repository
	ledger   *leads.Ledger
	backfill *calls.Backfiller
	resolver *identity.Resolver
	audit    *audit.Service
	events   events.Publisher
	log      *slog.Logger
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	resolver := d.Resolver
	if resolver == nil {
		resolver = identity.NewResolver()
	}
	pub := d.Events
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Service{
		dir:      d.Assistants,
		calls:    d.Calls,
		leads:    d.Leads,
		ledger:   leads.NewLedger(d.Leads, log),
		backfill: calls.NewBackfiller(d.Calls, log),
		resolver: resolver,
		audit:    d.Audit,
		events:   pub,
		log:      log,
		clock:    time.Now,
	}
}

// Ingest runs the pipeline for one platform message. Messages other than
// end-of-call reports are acknowledged with Processed false and touch no
// state.
func (s *Service) Ingest(ctx context.Context, msg *vapi.Message) (Result, error) {
	res := Result{State: StateReceived}

	if msg == nil || msg.Type != vapi.MessageTypeEndOfCallReport {
		res.State = StateRejectedUnknownEventType
		return res, nil
	}
	s.advance(&res, StateTypeFiltered)

	externalID := msg.ExternalAssistantID()
	asst, err := s.dir.LookupAssistant(ctx, externalID)
	if err != nil {
		if errors.Is(err, assistants.ErrNotFound) {
			res.State = StateRejectedUnknownTenant
			s.log.Warn("no assistant for platform id", "vapi_assistant_id", externalID)
			return res, ErrUnknownAssistant
		}
		return res, eris.Wrapf(errors.Join(ErrLookup, err), "assistant %s", externalID)
	}
	res.OrgID = asst.OrgID
	s.advance(&res, StateAssistantResolved)

	log := s.log.With("org_id", asst.OrgID, "vapi_call_id", msg.ExternalCallID())

	res.CallerNumber = phone.Normalize(msg.CustomerInfo().Number)
	existing := s.findLead(ctx, log, asst.OrgID, res.CallerNumber)

	in := identity.Input{Event: msg}
	if existing != nil {
		in.Lead = &identity.KnownLead{ID: existing.ID, Name: existing.DisplayName()}
	}
	who := s.resolver.Resolve(in)
	res.CallerName, res.IdentitySource = who.Name, who.Source
	s.advance(&res, StateIdentityResolved)

	record := calls.BuildRecord(msg, calls.RecordInput{
		OrgID:        asst.OrgID,
		AssistantID:  asst.ID,
		CallerNumber: res.CallerNumber,
		CallerName:   res.CallerName,
		Now:          s.clock(),
	})
	stored, created, err := s.calls.InsertCall(ctx, record)
	if err != nil {
		res.State = StateRejectedPersistFailure
		log.Error("call insert failed", "err", err)
		return res, eris.Wrap(errors.Join(ErrPersist, err), "ingest")
	}
	res.Processed, res.CallID, res.Created = true, stored.ID, created
	s.advance(&res, StateRecordPersisted)
	log = log.With("call_id", stored.ID)

	if res.CallerNumber != "" {
		s.updateLedger(ctx, log, &res, existing, msg, record.StartedAt)
		s.advance(&res, StateLedgerUpdated)

		s.backfillNames(ctx, log, &res)
		s.advance(&res, StateBackfilled)
	}

	s.record(ctx, log, res, stored)
	s.advance(&res, StateResponded)
	return res, nil
}

func (s *Service) advance(res *Result, to State) {
	s.log.Debug("ingest stage", "from", res.State, "to", to, "org_id", res.OrgID, "call_id", res.CallID)
	res.State = to
}

func (s *Service) findLead(ctx context.Context, log *slog.Logger, orgID, number string) *leads.Lead {
	if number == "" {
		return nil
	}
	l, err := s.leads.FindByPhone(ctx, orgID, number)
	if err != nil {
		// Degrade to "no lead": the insert path merges into any existing row.
		log.Warn("lead lookup failed", "err", err)
		return nil
	}
	return l
}

func (s *Service) updateLedger(ctx context.Context, log *slog.Logger, res *Result, existing *leads.Lead, msg *vapi.Message, startedAt time.Time) {
	outcome, err := s.ledger.Apply(ctx, leads.Update{
		OrgID:     res.OrgID,
		Phone:     res.CallerNumber,
		Name:      res.CallerName,
		Existing:  existing,
		Summary:   msg.SummaryText(),
		StartedAt: startedAt,
	})
	if err != nil {
		log.Warn("lead ledger update failed", "err", err)
		return
	}
	res.LeadOutcome = outcome

	var typ audit.EventType
	switch outcome {
	case leads.OutcomeCreated:
		typ = audit.EventTypeLeadCreated
	case leads.OutcomeNamed:
		typ = audit.EventTypeLeadNamed
	default:
		return
	}
	s.auditBestEffort(ctx, log, func(ctx context.Context) error {
		return s.audit.LogLeadChange(ctx, res.OrgID, res.CallID, res.CallerNumber, typ)
	})
}

func (s *Service) backfillNames(ctx context.Context, log *slog.Logger, res *Result) {
	if res.CallerName == "" {
		return
	}
	n, err := s.backfill.Backfill(ctx, res.OrgID, res.CallerNumber, res.CallerName)
	if err != nil {
		log.Warn("caller name backfill failed", "err", err)
		return
	}
	res.Backfilled = n
	if n == 0 {
		return
	}
	s.auditBestEffort(ctx, log, func(ctx context.Context) error {
		return s.audit.LogBackfill(ctx, res.OrgID, res.CallID, res.CallerNumber, n)
	})
}

func (s *Service) record(ctx context.Context, log *slog.Logger, res Result, stored calls.Call) {
	s.auditBestEffort(ctx, log, func(ctx context.Context) error {
		return s.audit.LogCallIngested(ctx, res.OrgID, res.CallID, res.CallerNumber, res.Created)
	})

	if !res.Created {
		return
	}
	summary := ""
	if stored.Summary != nil {
		summary = *stored.Summary
	}
	err := s.events.PublishCallIngested(ctx, events.CallIngested{
		OrgID:           res.OrgID,
		CallID:          res.CallID,
		CallerNumber:    res.CallerNumber,
		CallerName:      res.CallerName,
		DurationSeconds: stored.DurationSeconds,
		Summary:         summary,
	})
	if err != nil {
		log.Warn("call event publish failed", "err", err)
	}
}

func (s *Service) auditBestEffort(ctx context.Context, log *slog.Logger, fn func(context.Context) error) {
	if s.audit == nil {
		return
	}
	if err := fn(ctx); err != nil {
		log.Warn("audit append failed", "err", err)
	}
}
