// Package tools answers the voice platform's mid-call function invocations.
//
// The platform speaks each result back to the caller, so result strings are
// phrased as spoken sentences. Only a sender failure turns into an HTTP error.
package tools

import (
	"context"
	"net/http"
	"strings"

	"receptionist-dashboard/internal/notify"
	"receptionist-dashboard/internal/phone"
	"receptionist-dashboard/internal/vapi"
	"receptionist-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
)

const (
	FunctionSendFollowUpText = "send_follow_up_text"

	argPhoneNumber = "phone_number"
	argMessage     = "message"

	resultNeedPhone = "I need the caller's phone number to send a text."
)

// Result is one entry of the response's results list.
type Result struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"`
}

// Handler dispatches tool calls by function name.
type Handler struct {
	Sender   notify.Sender
	Branding notify.Branding
}

// HandleToolCall answers the first tool call of the posted message.
func (h Handler) HandleToolCall(c *gin.Context) {
	log := logger.FromGin(c)

	var env vapi.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if env.Message == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No message"})
		return
	}
	tc := env.Message.FirstToolCall()
	if tc == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No tool call found"})
		return
	}

	name := tc.FunctionName()
	out, err := h.dispatch(c.Request.Context(), name, tc.Args())
	if err != nil {
		log.Error("tool call failed", "function", name, "tool_call_id", tc.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": eris.Cause(err).Error()})
		return
	}
	log.Info("tool call answered", "function", name, "tool_call_id", tc.ID)
	c.JSON(http.StatusOK, gin.H{"results": []Result{{ToolCallID: tc.ID, Result: out}}})
}

func (h Handler) dispatch(ctx context.Context, name string, args map[string]string) (string, error) {
	switch name {
	case FunctionSendFollowUpText:
		return h.sendFollowUpText(ctx, args)
	default:
		return "Unknown function: " + name, nil
	}
}

func (h Handler) sendFollowUpText(ctx context.Context, args map[string]string) (string, error) {
	to := phone.Normalize(strings.TrimSpace(args[argPhoneNumber]))
	if to == "" {
		return resultNeedPhone, nil
	}
	if h.Sender == nil {
		return "", notify.ErrNotConfigured
	}
	body := strings.TrimSpace(args[argMessage])
	if body == "" {
		body = h.Branding.ThankYouText()
	}
	if _, err := h.Sender.Send(ctx, to, body); err != nil {
		return "", eris.Wrapf(err, "send follow-up to %s", to)
	}
	return "I've sent a follow-up text to " + to + ".", nil
}
