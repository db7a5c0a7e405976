package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"receptionist-dashboard/internal/phone"

	"github.com/rotisserie/eris"
)

// MessageType names the template an outbound text was built from.
type MessageType string

const (
	MessageFollowUp MessageType = "follow_up"
	MessageCustom   MessageType = "custom"
)

var (
	ErrMissingRecipient = errors.New("notify: missing recipient phone number")
	ErrInvalidMessage   = errors.New("notify: invalid type or missing message")
)

// Outbound is a staff-initiated text to a caller.
type Outbound struct {
	OrgID  string
	SentBy string
	To     string
	Type   MessageType

	// CallerName personalises follow_up texts.
	CallerName string
	// CustomMessage is the body of a custom text.
	CustomMessage string
}

// Messenger builds, sends and records outbound texts.
// Recording is best effort: a delivered text is never reported as failed
// because the log write did not land.
type Messenger struct {
	sender   Sender
	log      LogRepository
	from     string
	branding Branding
	logger   *slog.Logger
	clock    func() time.Time
}

func NewMessenger(sender Sender, log LogRepository, from string, branding Branding, logger *slog.Logger) *Messenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Messenger{
		sender:   sender,
		log:      log,
		from:     from,
		branding: branding,
		logger:   logger,
		clock:    time.Now,
	}
}

// Body renders the text for o without sending it.
func (m *Messenger) Body(o Outbound) (string, error) {
	switch o.Type {
	case MessageFollowUp:
		return m.branding.FollowUpText(o.CallerName), nil
	case MessageCustom:
		if body := strings.TrimSpace(o.CustomMessage); body != "" {
			return body, nil
		}
	}
	return "", ErrInvalidMessage
}

// Send normalises the destination, renders the body and hands it to the
// provider. Validation errors are returned before any provider call.
func (m *Messenger) Send(ctx context.Context, o Outbound) (Receipt, error) {
	to := phone.Normalize(strings.TrimSpace(o.To))
	if to == "" {
		return Receipt{}, ErrMissingRecipient
	}
	body, err := m.Body(o)
	if err != nil {
		return Receipt{}, err
	}
	if m.sender == nil {
		return Receipt{}, ErrNotConfigured
	}

	receipt, err := m.sender.Send(ctx, to, body)
	if err != nil {
		return Receipt{}, eris.Wrapf(err, "notify: send %s text", o.Type)
	}

	if m.log != nil {
		entry := LogEntry{
			OrgID:       o.OrgID,
			SentBy:      o.SentBy,
			ToPhone:     to,
			FromPhone:   m.from,
			Type:        o.Type,
			Body:        body,
			ProviderSID: receipt.SID,
			Status:      receipt.Status,
			CreatedAt:   m.clock().UTC(),
		}
		if err := m.log.AppendSMS(ctx, entry); err != nil {
			m.logger.Warn("sms log append failed", "org_id", o.OrgID, "sid", receipt.SID, "err", err)
		}
	}
	return receipt, nil
}
