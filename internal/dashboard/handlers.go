// Package dashboard is the read-only JSON API the receptionist dashboard
// uses to list an org's calls and leads.
package dashboard

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"receptionist-dashboard/internal/auth"
	"receptionist-dashboard/internal/calls"
	"receptionist-dashboard/internal/leads"
	"receptionist-dashboard/internal/notify"
	"receptionist-dashboard/internal/phone"
	"receptionist-dashboard/internal/reporting"
	"receptionist-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call repositories, return JSON.
// Every read is scoped to the org on the access token.

type Handlers struct {
	Calls   calls.Repository
	Leads   leads.Repository
	Reports *reporting.Service
	SMS     *notify.Messenger

	// Now defaults to time.Now; report ranges end here when "to" is omitted.
	Now func() time.Time
}

// DefaultReportWindow is the range reported when "from" is omitted.
const DefaultReportWindow = 30 * 24 * time.Hour

type page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func parsePage(c *gin.Context) (page, bool) {
	p := page{}
	var err error
	if s := c.Query("limit"); s != "" {
		if p.Limit, err = strconv.Atoi(s); err != nil || p.Limit < 0 {
			return page{}, false
		}
	}
	if s := c.Query("offset"); s != "" {
		if p.Offset, err = strconv.Atoi(s); err != nil || p.Offset < 0 {
			return page{}, false
		}
	}
	return p, true
}

func orgOrAbort(c *gin.Context) (string, bool) {
	orgID, err := auth.OrgID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "org_id required"})
		return "", false
	}
	return orgID, true
}

// --- Calls ---

func (h Handlers) ListCalls(c *gin.Context) {
	orgID, ok := orgOrAbort(c)
	if !ok {
		return
	}
	p, ok := parsePage(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit and offset must be non-negative integers"})
		return
	}
	f := calls.ListFilter{
		Limit:        p.Limit,
		Offset:       p.Offset,
		CallerNumber: phone.Normalize(c.Query("caller_number")),
	}.Normalize()

	out, err := h.Calls.ListCalls(c.Request.Context(), orgID, f)
	if err != nil {
		logger.FromGin(c).Error("list calls failed", "org_id", orgID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": out, "page": page{Limit: f.Limit, Offset: f.Offset}})
}

func (h Handlers) GetCall(c *gin.Context) {
	orgID, ok := orgOrAbort(c)
	if !ok {
		return
	}
	call, err := h.Calls.GetCall(c.Request.Context(), orgID, c.Param("id"))
	switch {
	case errors.Is(err, calls.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	case err != nil:
		logger.FromGin(c).Error("get call failed", "org_id", orgID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call lookup failed"})
		return
	}
	c.JSON(http.StatusOK, call)
}

// --- Leads ---

func (h Handlers) ListLeads(c *gin.Context) {
	orgID, ok := orgOrAbort(c)
	if !ok {
		return
	}
	p, ok := parsePage(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit and offset must be non-negative integers"})
		return
	}
	f := calls.ListFilter{Limit: p.Limit, Offset: p.Offset}.Normalize()

	out, err := h.Leads.ListLeads(c.Request.Context(), orgID, f.Limit, f.Offset)
	if err != nil {
		logger.FromGin(c).Error("list leads failed", "org_id", orgID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "leads lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": out, "page": page{Limit: f.Limit, Offset: f.Offset}})
}

// --- Reports ---

func (h Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

// parseRange reads RFC3339 "from"/"to" query params.
func (h Handlers) parseRange(c *gin.Context) (reporting.TimeRange, bool) {
	r := reporting.TimeRange{To: h.now()}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return reporting.TimeRange{}, false
		}
		r.To = t.UTC()
	}
	r.From = r.To.Add(-DefaultReportWindow)
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return reporting.TimeRange{}, false
		}
		r.From = t.UTC()
	}
	return r, r.Valid()
}

func (h Handlers) CallsReport(c *gin.Context) {
	orgID, ok := orgOrAbort(c)
	if !ok {
		return
	}
	r, ok := h.parseRange(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from and to must be RFC3339 with from before to"})
		return
	}
	out, err := h.Reports.CallsSummary(c.Request.Context(), reporting.CallsSummaryRequest{OrgID: orgID, Range: r})
	if err != nil {
		logger.FromGin(c).Error("calls report failed", "org_id", orgID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) LeadsReport(c *gin.Context) {
	orgID, ok := orgOrAbort(c)
	if !ok {
		return
	}
	r, ok := h.parseRange(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from and to must be RFC3339 with from before to"})
		return
	}
	out, err := h.Reports.LeadsSummary(c.Request.Context(), reporting.LeadsSummaryRequest{OrgID: orgID, Range: r})
	if err != nil {
		logger.FromGin(c).Error("leads report failed", "org_id", orgID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- SMS ---

type sendSMSRequest struct {
	To            string `json:"to"`
	Type          string `json:"type"`
	CallerName    string `json:"caller_name"`
	CustomMessage string `json:"custom_message"`
}

// SendSMS texts a caller on behalf of the org, either the templated
// follow-up or a custom message.
func (h Handlers) SendSMS(c *gin.Context) {
	orgID, ok := orgOrAbort(c)
	if !ok {
		return
	}
	var req sendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if h.SMS == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "sms not configured"})
		return
	}

	userID, _ := auth.UserID(c.Request.Context())
	receipt, err := h.SMS.Send(c.Request.Context(), notify.Outbound{
		OrgID:         orgID,
		SentBy:        userID,
		To:            req.To,
		Type:          notify.MessageType(req.Type),
		CallerName:    req.CallerName,
		CustomMessage: req.CustomMessage,
	})
	switch {
	case errors.Is(err, notify.ErrMissingRecipient):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing 'to' phone number"})
		return
	case errors.Is(err, notify.ErrInvalidMessage):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid type or missing message"})
		return
	case errors.Is(err, notify.ErrNotConfigured):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "sms not configured"})
		return
	case err != nil:
		logger.FromGin(c).Error("sms send failed", "org_id", orgID, "type", req.Type, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to send SMS"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sid": receipt.SID, "status": receipt.Status})
}

// --- Identity ---

// Me echoes the identity on the access token.
func (h Handlers) Me(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _ := auth.UserID(ctx)
	orgID, _ := auth.OrgID(ctx)
	role, _ := auth.Role(ctx)
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "org_id": orgID, "role": role})
}
