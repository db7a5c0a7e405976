package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"receptionist-dashboard/internal/auth"
	"receptionist-dashboard/internal/calls"
	"receptionist-dashboard/internal/leads"
	"receptionist-dashboard/internal/notify"
	"receptionist-dashboard/internal/reporting"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listCallsBody struct {
	Calls []calls.Call `json:"calls"`
	Page  page         `json:"page"`
}

func seed(t *testing.T) (*calls.MemoryRepo, *leads.MemoryRepo) {
	t.Helper()
	ctx := context.Background()
	cr, lr := calls.NewMemoryRepo(), leads.NewMemoryRepo()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, n := range []string{"+15550000001", "+15550000002", "+15550000001"} {
		num := n
		_, _, err := cr.InsertCall(ctx, calls.Call{
			ID: []string{"c-1", "c-2", "c-3"}[i], OrgID: "org-1", AssistantID: "as-1",
			CallerNumber: &num, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, _, err := cr.InsertCall(ctx, calls.Call{ID: "c-other", OrgID: "org-2", AssistantID: "as-2", CreatedAt: base})
	require.NoError(t, err)

	p := "+15550000001"
	_, _, err = lr.InsertLead(ctx, leads.Lead{OrgID: "org-1", Phone: &p, Source: leads.SourceCall})
	require.NoError(t, err)
	return cr, lr
}

func newRouter(h Handlers, orgID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/v1", func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), "user-1", orgID, "member"))
		c.Next()
	})
	v1.GET("/calls", h.ListCalls)
	v1.GET("/calls/:id", h.GetCall)
	v1.GET("/leads", h.ListLeads)
	v1.GET("/me", h.Me)
	v1.GET("/reports/calls", h.CallsReport)
	v1.GET("/reports/leads", h.LeadsReport)
	v1.POST("/sms", h.SendSMS)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListCalls_NewestFirstAndScoped(t *testing.T) {
	cr, lr := seed(t)
	r := newRouter(Handlers{Calls: cr, Leads: lr}, "org-1")

	w := get(r, "/v1/calls")
	require.Equal(t, http.StatusOK, w.Code)

	var body listCallsBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Calls, 3)
	assert.Equal(t, "c-3", body.Calls[0].ID)
	assert.Equal(t, "c-1", body.Calls[2].ID)
	assert.Equal(t, page{Limit: calls.DefaultListLimit}, body.Page)
}

func TestListCalls_FiltersAndPages(t *testing.T) {
	cr, lr := seed(t)
	r := newRouter(Handlers{Calls: cr, Leads: lr}, "org-1")

	var body listCallsBody
	w := get(r, "/v1/calls?caller_number=5550000001")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Calls, 2)

	w = get(r, "/v1/calls?limit=1&offset=1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Calls, 1)
	assert.Equal(t, "c-2", body.Calls[0].ID)

	w = get(r, "/v1/calls?limit=9999")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, calls.MaxListLimit, body.Page.Limit)

	assert.Equal(t, http.StatusBadRequest, get(r, "/v1/calls?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/v1/calls?offset=-1").Code)
}

func TestGetCall(t *testing.T) {
	cr, lr := seed(t)
	r := newRouter(Handlers{Calls: cr, Leads: lr}, "org-1")

	w := get(r, "/v1/calls/c-2")
	require.Equal(t, http.StatusOK, w.Code)
	var c calls.Call
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	assert.Equal(t, "+15550000002", *c.CallerNumber)

	assert.Equal(t, http.StatusNotFound, get(r, "/v1/calls/c-other").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/v1/calls/missing").Code)
}

func TestListLeads(t *testing.T) {
	cr, lr := seed(t)

	w := get(newRouter(Handlers{Calls: cr, Leads: lr}, "org-1"), "/v1/leads")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Leads []leads.Lead `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Leads, 1)
	assert.Equal(t, "+15550000001", *body.Leads[0].Phone)

	w = get(newRouter(Handlers{Calls: cr, Leads: lr}, "org-2"), "/v1/leads")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Leads)
}

func TestMe(t *testing.T) {
	w := get(newRouter(Handlers{}, "org-1"), "/v1/me")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"user-1","org_id":"org-1","role":"member"}`, w.Body.String())
}

func TestMissingOrg(t *testing.T) {
	cr, lr := seed(t)
	w := get(newRouter(Handlers{Calls: cr, Leads: lr}, ""), "/v1/calls")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func reportHandlers() Handlers {
	now := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	num, name := "+15550000001", "Sam"
	score := 0.5
	repo := reporting.NewMemoryRepo()
	repo.Calls = []calls.Call{
		{ID: "c-1", OrgID: "org-1", CallerNumber: &num, CallerName: &name, DurationSeconds: 60, CostCents: 10, EndReason: "completed", SuccessScore: &score, CreatedAt: now.Add(-24 * time.Hour)},
		{ID: "c-2", OrgID: "org-1", CallerNumber: &num, DurationSeconds: 120, CostCents: 20, EndReason: "completed", CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "c-old", OrgID: "org-1", DurationSeconds: 999, CreatedAt: now.Add(-60 * 24 * time.Hour)},
	}
	repo.Leads = []leads.Lead{
		{ID: "l-1", OrgID: "org-1", Phone: &num, Name: &name, CreatedAt: now.Add(-time.Hour)},
		{ID: "l-2", OrgID: "org-1", CreatedAt: now.Add(-2 * time.Hour)},
	}
	return Handlers{Reports: reporting.NewService(repo), Now: func() time.Time { return now }}
}

func TestCallsReport_DefaultWindow(t *testing.T) {
	w := get(newRouter(reportHandlers(), "org-1"), "/v1/reports/calls")
	require.Equal(t, http.StatusOK, w.Code)

	var out reporting.CallsSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 2, out.TotalCalls)
	assert.Equal(t, 1, out.IdentifiedCalls)
	assert.Equal(t, 1, out.UniqueCallers)
	assert.Equal(t, 90, out.AverageDurationSeconds)
	assert.Equal(t, int64(30), out.TotalCostCents)
	assert.Equal(t, map[string]int{"completed": 2}, out.EndReasons)
	require.NotNil(t, out.AverageSuccessScore)
	assert.InDelta(t, 0.5, *out.AverageSuccessScore, 1e-9)
}

func TestCallsReport_ExplicitRange(t *testing.T) {
	w := get(newRouter(reportHandlers(), "org-1"), "/v1/reports/calls?from=2024-03-01T00:00:00Z&to=2024-05-31T00:00:00Z")
	require.Equal(t, http.StatusOK, w.Code)

	var out reporting.CallsSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 3, out.TotalCalls)
}

func TestReports_BadRange(t *testing.T) {
	r := newRouter(reportHandlers(), "org-1")
	assert.Equal(t, http.StatusBadRequest, get(r, "/v1/reports/calls?from=yesterday").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/v1/reports/leads?from=2024-06-01T00:00:00Z&to=2024-05-01T00:00:00Z").Code)
}

func TestLeadsReport(t *testing.T) {
	w := get(newRouter(reportHandlers(), "org-1"), "/v1/reports/leads")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"new_leads":2`)
	assert.Contains(t, w.Body.String(), `"named_leads":1`)
	assert.Contains(t, w.Body.String(), `"name_rate":0.5`)

	w = get(newRouter(reportHandlers(), "org-2"), "/v1/reports/leads")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"new_leads":0`)
}

type stubSender struct {
	to, body string
	err      error
}

func (s *stubSender) Send(_ context.Context, to, body string) (notify.Receipt, error) {
	if s.err != nil {
		return notify.Receipt{}, s.err
	}
	s.to, s.body = to, body
	return notify.Receipt{SID: "SM1", Status: "queued", To: to}, nil
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func smsHandlers(s notify.Sender, repo notify.LogRepository) Handlers {
	return Handlers{SMS: notify.NewMessenger(s, repo, "+15550001111", notify.Branding{BusinessName: "Acme Plumbing", AgentName: "Riley"}, nil)}
}

func TestSendSMS_FollowUp(t *testing.T) {
	s, repo := &stubSender{}, notify.NewMemoryLogRepo()
	r := newRouter(smsHandlers(s, repo), "org-1")

	w := postJSON(r, "/v1/sms", `{"to":"555-123-4567","type":"follow_up","caller_name":"Jordan Smith"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"sid":"SM1","status":"queued"}`, w.Body.String())
	assert.Equal(t, "+15551234567", s.to)
	assert.True(t, strings.HasPrefix(s.body, "Hey Jordan, this is Riley from Acme Plumbing."))

	entries := repo.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "org-1", entries[0].OrgID)
	assert.Equal(t, "user-1", entries[0].SentBy)
	assert.Equal(t, notify.MessageFollowUp, entries[0].Type)
}

func TestSendSMS_Custom(t *testing.T) {
	s := &stubSender{}
	w := postJSON(newRouter(smsHandlers(s, nil), "org-1"), "/v1/sms", `{"to":"+15551234567","type":"custom","custom_message":"Your quote is ready"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Your quote is ready", s.body)
}

func TestSendSMS_BadRequests(t *testing.T) {
	s := &stubSender{}
	r := newRouter(smsHandlers(s, nil), "org-1")

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "missing to", body: `{"type":"follow_up"}`, want: "Missing 'to' phone number"},
		{name: "to without digits", body: `{"to":"unknown","type":"follow_up"}`, want: "Missing 'to' phone number"},
		{name: "custom without message", body: `{"to":"5551234567","type":"custom"}`, want: "Invalid type or missing message"},
		{name: "unsupported type", body: `{"to":"5551234567","type":"payment_link"}`, want: "Invalid type or missing message"},
		{name: "not json", body: `{"to":`, want: "invalid json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/v1/sms", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var out map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
			assert.Equal(t, tt.want, out["error"])
		})
	}
	assert.Empty(t, s.to)
}

func TestSendSMS_ProviderFailure(t *testing.T) {
	repo := notify.NewMemoryLogRepo()
	r := newRouter(smsHandlers(&stubSender{err: errors.New("twilio 400: invalid To")}, repo), "org-1")

	w := postJSON(r, "/v1/sms", `{"to":"5551234567","type":"follow_up"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to send SMS"}`, w.Body.String())
	assert.Empty(t, repo.Entries())
}

func TestSendSMS_NotConfigured(t *testing.T) {
	w := postJSON(newRouter(smsHandlers(nil, nil), "org-1"), "/v1/sms", `{"to":"5551234567","type":"follow_up"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = postJSON(newRouter(Handlers{}, "org-1"), "/v1/sms", `{"to":"5551234567","type":"follow_up"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
