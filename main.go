package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"streetkitchen/api"
	"streetkitchen/bot"
	"streetkitchen/config"
	"streetkitchen/db"
	"streetkitchen/notify"
	"streetkitchen/services"

	log "github.com/sirupsen/logrus"
)

func setupLogging(cfg config.LogConfig) {
	if strings.EqualFold(cfg.Format, "text") {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}
	setupLogging(cfg.Log)

	if err := db.Init(cfg.DB); err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := applyMigrations(context.Background()); err != nil {
			log.WithError(err).Fatal("Migration failed")
		}
		return
	}

	// AUTO_MIGRATE=1 (or "true") applies migrations on start.
	if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
		if err := applyMigrations(context.Background()); err != nil {
			log.WithError(err).Fatal("Migration failed")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fanout := notify.NewFanout()

	var tg *bot.Bot
	if cfg.Telegram.NotifyToken != "" {
		tg, err = bot.New(cfg.Telegram)
		if err != nil {
			log.WithError(err).Fatal("Failed to start Telegram bot")
		}
		fanout.Add("telegram", tg)
		go tg.Start(ctx)
	}

	// Always registered: vendors may carry their own webhook URL even when
	// no default is configured.
	fanout.Add("webhook", notify.NewWebhookNotifier(cfg.Webhook.URL, time.Duration(cfg.Webhook.TimeoutSeconds)*time.Second))

	log.WithField("channels", fanout.Names()).Info("Notification channels ready")

	policy := services.PolicyFromConfig(cfg.Pricing)
	checkout := services.NewCheckout(services.PgCatalog{}, services.PgOrderStore{}, fanout, policy)
	allocator := services.NewVendorCodeAllocator(services.PgVendorStore{}, cfg.VendorCode.Prefix, cfg.VendorCode.Attempts)

	h := api.NewHandler(api.PgStore{Allocator: allocator}, checkout, policy)
	h.Circuits = fanout.States
	if tg != nil {
		h.OnStatusChange = tg.RefreshOrderCards
	}

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: api.NewRouter(h, cfg.HTTP.CORSOrigins),
	}

	go func() {
		log.WithField("addr", cfg.HTTP.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	checkout.Wait()
}
