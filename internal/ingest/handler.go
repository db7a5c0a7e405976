package ingest

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"receptionist-dashboard/internal/vapi"
	"receptionist-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// DefaultServiceName is reported by the probe endpoint.
const DefaultServiceName = "vapi-webhook"

// SecretHeader carries the shared secret configured on the platform side.
const SecretHeader = "X-Vapi-Secret"

// Handler is the HTTP surface of the ingestion webhook.
// The platform only sees coarse status codes; enrichment failures are
// never reported back.

type Handler struct {
	Service     *Service
	ServiceName string
}

// HandleEvent accepts one platform event.
func (h Handler) HandleEvent(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Service == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "ingest not configured"})
		return
	}

	var env vapi.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		log.Warn("webhook body rejected", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	res, err := h.Service.Ingest(c.Request.Context(), env.Message)
	switch {
	case errors.Is(err, ErrUnknownAssistant):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Unknown assistant"})
		return
	case errors.Is(err, ErrPersist):
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Insert failed"})
		return
	case err != nil:
		log.Error("webhook ingest failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	if !res.Processed {
		c.JSON(http.StatusOK, gin.H{"received": true, "processed": false})
		return
	}
	log.Info("call ingested",
		"org_id", res.OrgID,
		"call_id", res.CallID,
		"created", res.Created,
		"identity_source", res.IdentitySource,
		"lead", res.LeadOutcome,
		"backfilled", res.Backfilled,
	)
	c.JSON(http.StatusOK, gin.H{"received": true, "processed": true, "callId": res.CallID})
}

// HandleProbe answers the platform's URL validation GET. It touches no state.
func (h Handler) HandleProbe(c *gin.Context) {
	name := h.ServiceName
	if name == "" {
		name = DefaultServiceName
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": name})
}

// RequireSharedSecret rejects requests whose SecretHeader does not match
// secret. An empty secret disables the check.
func RequireSharedSecret(secret string) gin.HandlerFunc {
	want := []byte(secret)
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		got := []byte(c.GetHeader(SecretHeader))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			logger.FromGin(c).Warn("webhook secret mismatch", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid secret"})
			return
		}
		c.Next()
	}
}
