package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users by default.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.OrgID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogCallIngested records a stored end-of-call report. created is false for
// a re-delivered report that matched an existing call.
func (s *Service) LogCallIngested(ctx context.Context, orgID, callID, callerNumber string, created bool) error {
	msg := "call ingested"
	if !created {
		msg = "call re-delivered"
	}
	return s.Append(ctx, Event{
		OrgID:        orgID,
		Type:         EventTypeCallIngested,
		CallID:       callID,
		CallerNumber: callerNumber,
		Message:      msg,
	})
}

// LogLeadChange records a lead created or named by a call.
func (s *Service) LogLeadChange(ctx context.Context, orgID, callID, callerNumber string, typ EventType) error {
	return s.Append(ctx, Event{
		OrgID:        orgID,
		Type:         typ,
		CallID:       callID,
		CallerNumber: callerNumber,
		Message:      string(typ),
	})
}

// LogBackfill records how many earlier calls received a caller name.
func (s *Service) LogBackfill(ctx context.Context, orgID, callID, callerNumber string, rows int64) error {
	return s.Append(ctx, Event{
		OrgID:        orgID,
		Type:         EventTypeCallsBackfilled,
		CallID:       callID,
		CallerNumber: callerNumber,
		Message:      "caller name backfilled",
		Metadata:     fmt.Sprintf(`{"rows":%d}`, rows),
	})
}
