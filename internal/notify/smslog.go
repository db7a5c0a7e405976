package notify

import (
	"context"
	"sync"
	"time"

	"receptionist-dashboard/pkg/utils"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// LogEntry is one row of sms_log.
type LogEntry struct {
	ID          string      `json:"id"`
	OrgID       string      `json:"org_id"`
	SentBy      string      `json:"sent_by"`
	ToPhone     string      `json:"to_phone"`
	FromPhone   string      `json:"from_phone"`
	Type        MessageType `json:"message_type"`
	Body        string      `json:"message_body"`
	ProviderSID string      `json:"provider_sid"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

type LogRepository interface {
	AppendSMS(ctx context.Context, e LogEntry) error
}

type PostgresLogRepo struct {
	db utils.DB
}

func NewPostgresLogRepo(db utils.DB) *PostgresLogRepo {
	return &PostgresLogRepo{db: db}
}

func (r *PostgresLogRepo) AppendSMS(ctx context.Context, e LogEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	const q = `
INSERT INTO sms_log (id, org_id, sent_by, to_phone, from_phone, message_type, message_body, provider_sid, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err := r.db.Exec(ctx, q,
		e.ID, nullable(e.OrgID), nullable(e.SentBy), e.ToPhone, nullable(e.FromPhone),
		string(e.Type), e.Body, nullable(e.ProviderSID), nullable(e.Status), e.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "notify: insert sms_log")
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MemoryLogRepo keeps entries in order of append.
type MemoryLogRepo struct {
	mu      sync.Mutex
	entries []LogEntry

	// AppendErr, when set, fails every append.
	AppendErr error
}

func NewMemoryLogRepo() *MemoryLogRepo { return &MemoryLogRepo{} }

func (r *MemoryLogRepo) AppendSMS(ctx context.Context, e LogEntry) error {
	if r.AppendErr != nil {
		return r.AppendErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryLogRepo) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}
