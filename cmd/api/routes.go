package main

import (
	"context"
	"net/http"
	"time"

	"receptionist-dashboard/internal/auth"
	"receptionist-dashboard/internal/dashboard"
	"receptionist-dashboard/internal/ingest"
	"receptionist-dashboard/internal/rbac"
	"receptionist-dashboard/internal/tools"

	"github.com/gin-gonic/gin"
)

// routeDeps are the handlers registerRoutes mounts.
type routeDeps struct {
	Auth          *auth.Manager
	Ingest        ingest.Handler
	Tools         tools.Handler
	Dashboard     dashboard.Handlers
	WebhookSecret string
	// Ping checks backing stores for /healthz. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Voice platform webhooks. The probe is never gated; POSTs require the
	// shared secret when one is configured.
	hooks := r.Group("/api/webhooks/vapi")
	{
		hooks.GET("", d.Ingest.HandleProbe)
		hooks.POST("", ingest.RequireSharedSecret(d.WebhookSecret), d.Ingest.HandleEvent)
		hooks.POST("/tools", ingest.RequireSharedSecret(d.WebhookSecret), d.Tools.HandleToolCall)
	}

	// Dashboard API: any org role may read and text callers; super_admin bypasses.
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(d.Auth))
	v1.Use(rbac.OrgReader()...)
	{
		v1.GET("/me", d.Dashboard.Me)
		v1.GET("/calls", d.Dashboard.ListCalls)
		v1.GET("/calls/:id", d.Dashboard.GetCall)
		v1.GET("/leads", d.Dashboard.ListLeads)
		v1.GET("/reports/calls", d.Dashboard.CallsReport)
		v1.GET("/reports/leads", d.Dashboard.LeadsReport)
		v1.POST("/sms", d.Dashboard.SendSMS)
	}
}
