package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	to, body string
	calls    int
	err      error
}

func (s *recordingSender) Send(_ context.Context, to, body string) (Receipt, error) {
	s.calls++
	if s.err != nil {
		return Receipt{}, s.err
	}
	s.to, s.body = to, body
	return Receipt{SID: "SM9", Status: "queued", To: to}, nil
}

func newMessenger(s Sender, repo LogRepository) *Messenger {
	m := NewMessenger(s, repo, "+15550001111", Branding{BusinessName: "Acme Plumbing", AgentName: "Riley"}, nil)
	m.clock = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

func TestMessenger_FollowUp(t *testing.T) {
	s, repo := &recordingSender{}, NewMemoryLogRepo()

	rcpt, err := newMessenger(s, repo).Send(context.Background(), Outbound{
		OrgID: "org-1", SentBy: "user-1", To: "(555) 123-4567", Type: MessageFollowUp, CallerName: "Maria Lopez",
	})
	require.NoError(t, err)
	assert.Equal(t, "SM9", rcpt.SID)
	assert.Equal(t, "+15551234567", s.to)
	assert.Contains(t, s.body, "Hey Maria, this is Riley from Acme Plumbing.")

	entries := repo.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "org-1", e.OrgID)
	assert.Equal(t, "user-1", e.SentBy)
	assert.Equal(t, "+15551234567", e.ToPhone)
	assert.Equal(t, "+15550001111", e.FromPhone)
	assert.Equal(t, MessageFollowUp, e.Type)
	assert.Equal(t, s.body, e.Body)
	assert.Equal(t, "queued", e.Status)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), e.CreatedAt)
}

func TestMessenger_Custom(t *testing.T) {
	s := &recordingSender{}
	_, err := newMessenger(s, nil).Send(context.Background(), Outbound{To: "+15551234567", Type: MessageCustom, CustomMessage: "  See you at 3pm  "})
	require.NoError(t, err)
	assert.Equal(t, "See you at 3pm", s.body)
}

func TestMessenger_RejectsBeforeSending(t *testing.T) {
	s := &recordingSender{}
	m := newMessenger(s, nil)
	ctx := context.Background()

	_, err := m.Send(ctx, Outbound{To: "", Type: MessageFollowUp})
	assert.ErrorIs(t, err, ErrMissingRecipient)
	_, err = m.Send(ctx, Outbound{To: "n/a", Type: MessageFollowUp})
	assert.ErrorIs(t, err, ErrMissingRecipient)
	_, err = m.Send(ctx, Outbound{To: "5551234567", Type: MessageCustom, CustomMessage: "   "})
	assert.ErrorIs(t, err, ErrInvalidMessage)
	_, err = m.Send(ctx, Outbound{To: "5551234567", Type: "payment_link"})
	assert.ErrorIs(t, err, ErrInvalidMessage)

	assert.Zero(t, s.calls)
}

func TestMessenger_NoSender(t *testing.T) {
	_, err := newMessenger(nil, nil).Send(context.Background(), Outbound{To: "5551234567", Type: MessageFollowUp})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMessenger_SenderFailureIsNotLogged(t *testing.T) {
	boom := errors.New("twilio 400: invalid To")
	repo := NewMemoryLogRepo()

	_, err := newMessenger(&recordingSender{err: boom}, repo).Send(context.Background(), Outbound{To: "5551234567", Type: MessageFollowUp})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, repo.Entries())
}

func TestMessenger_LogFailureDoesNotFailSend(t *testing.T) {
	repo := NewMemoryLogRepo()
	repo.AppendErr = errors.New("relation \"sms_log\" does not exist")

	rcpt, err := newMessenger(&recordingSender{}, repo).Send(context.Background(), Outbound{To: "5551234567", Type: MessageFollowUp})
	require.NoError(t, err)
	assert.Equal(t, "SM9", rcpt.SID)
}

func TestPostgresLogRepo_AppendSMS(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	org := "org-1"
	from := "+15550001111"
	sid, status := "SM9", "queued"
	mock.ExpectExec(`INSERT INTO sms_log`).
		WithArgs("sms-1", &org, (*string)(nil), "+15551234567", &from, "custom", "hi", &sid, &status, ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = NewPostgresLogRepo(mock).AppendSMS(context.Background(), LogEntry{
		ID: "sms-1", OrgID: org, ToPhone: "+15551234567", FromPhone: from,
		Type: MessageCustom, Body: "hi", ProviderSID: sid, Status: status, CreatedAt: ts,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLogRepo_AppendSMSError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO sms_log`).WillReturnError(errors.New("boom"))

	err = NewPostgresLogRepo(mock).AppendSMS(context.Background(), LogEntry{ToPhone: "+15551234567", Type: MessageFollowUp, Body: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert sms_log")
}
