package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"receptionist-dashboard/internal/assistants"
	"receptionist-dashboard/internal/audit"
	"receptionist-dashboard/internal/auth"
	"receptionist-dashboard/internal/calls"
	"receptionist-dashboard/internal/config"
	"receptionist-dashboard/internal/dashboard"
	"receptionist-dashboard/internal/events"
	"receptionist-dashboard/internal/ingest"
	"receptionist-dashboard/internal/leads"
	"receptionist-dashboard/internal/notify"
	"receptionist-dashboard/internal/reporting"
	"receptionist-dashboard/internal/tools"
	"receptionist-dashboard/pkg/logger"
	"receptionist-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env, cfg.Vapi.ServiceName)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxConns: cfg.DB.MaxConns})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	callRepo := calls.NewPostgresRepo(db)
	leadRepo := leads.NewPostgresRepo(db)
	directory := assistants.NewCachedDirectory(assistants.NewPostgresRepo(db), rdb, cfg.Assistants.CacheTTL, log)

	svc := ingest.NewService(ingest.Deps{
		Assistants: directory,
		Calls:      callRepo,
		Leads:      leadRepo,
		Audit:      audit.NewService(audit.NewPostgresRepo(db)),
		Events:     events.NewRedisPublisher(rdb, cfg.Events.Queue),
		Logger:     log,
	})

	reports := reporting.NewService(reporting.NewPostgresRepo(db))
	branding := notify.Branding{BusinessName: cfg.Branding.BusinessName, AgentName: cfg.Branding.AgentName}

	var sender notify.Sender
	if cfg.Twilio.Enabled() {
		sender = notify.NewTwilioSender(notify.TwilioConfig{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			FromNumber: cfg.Twilio.FromNumber,
			BaseURL:    cfg.Twilio.BaseURL,
		})
	} else {
		log.Warn("twilio not configured; follow-up texts disabled")
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, routeDeps{
		Auth:   authManager,
		Ingest: ingest.Handler{Service: svc, ServiceName: cfg.Vapi.ServiceName},
		Tools: tools.Handler{
			Sender:   sender,
			Branding: branding,
		},
		Dashboard: dashboard.Handlers{
			Calls:   callRepo,
			Leads:   leadRepo,
			Reports: reports,
			SMS:     notify.NewMessenger(sender, notify.NewPostgresLogRepo(db), cfg.Twilio.FromNumber, branding, log),
		},
		WebhookSecret: cfg.Vapi.WebhookSecret,
		Ping: func(ctx context.Context) error {
			if err := utils.HealthCheck(ctx, db, 2*time.Second); err != nil {
				return err
			}
			return rdb.Ping(ctx).Err()
		},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
