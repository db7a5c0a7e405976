// Package notify sends outbound SMS to callers.
package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
)

// DefaultTwilioBaseURL is the Twilio REST API root.
const DefaultTwilioBaseURL = "https://api.twilio.com"

var ErrNotConfigured = errors.New("notify: sms sender not configured")

// Receipt is the provider's acknowledgement of a queued message.
type Receipt struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
	To     string `json:"to"`
}

// Sender delivers a text message to one destination.
type Sender interface {
	Send(ctx context.Context, to, body string) (Receipt, error)
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	// BaseURL overrides DefaultTwilioBaseURL (tests, regional edges).
	BaseURL string
	Timeout time.Duration
}

func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// TwilioSender posts to the Messages resource with basic auth.
type TwilioSender struct {
	client *resty.Client
	cfg    TwilioConfig
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func NewTwilioSender(cfg TwilioConfig) *TwilioSender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTwilioBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &TwilioSender{client: client, cfg: cfg}
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) (Receipt, error) {
	if !s.cfg.Enabled() {
		return Receipt{}, ErrNotConfigured
	}
	if to == "" || body == "" {
		return Receipt{}, eris.New("notify: destination and body are required")
	}

	var (
		out     Receipt
		failure twilioError
	)
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("sid", s.cfg.AccountSID).
		SetFormData(map[string]string{
			"To":   to,
			"From": s.cfg.FromNumber,
			"Body": body,
		}).
		SetResult(&out).
		SetError(&failure).
		Post("/2010-04-01/Accounts/{sid}/Messages.json")
	if err != nil {
		return Receipt{}, eris.Wrap(err, "notify: twilio request")
	}
	if resp.IsError() {
		msg := failure.Message
		if msg == "" {
			msg = resp.String()
		}
		return Receipt{}, eris.Errorf("notify: twilio %d: %s", resp.StatusCode(), msg)
	}
	return out, nil
}
