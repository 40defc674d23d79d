package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	account "auction-manager/internal/accountService"
	auction "auction-manager/internal/auctionService"
	bidding "auction-manager/internal/biddingService"
	"auction-manager/internal/config"
	"auction-manager/internal/events"
	item "auction-manager/internal/itemService"
	"auction-manager/internal/metrics"
	notification "auction-manager/internal/notificationService"
	"auction-manager/internal/repository"
	"auction-manager/internal/security"
	"auction-manager/internal/server"
	"auction-manager/internal/storage"
	"auction-manager/utils"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		utils.Fatal("Failed to load configuration", map[string]any{"error": err.Error()})
	}
	if err := cfg.Validate(); err != nil {
		utils.Fatal("Invalid configuration", map[string]any{"error": err.Error()})
	}
	utils.SetLevel(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(cfg.DB)
	if err != nil {
		utils.Fatal("Failed to open database", map[string]any{"driver": cfg.DB.Driver, "error": err.Error()})
	}
	repo := repository.NewGormRepo(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		utils.Fatal("Failed to register metrics", map[string]any{"error": err.Error()})
	}

	images, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		utils.Fatal("Failed to set up image storage", map[string]any{"backend": cfg.Storage.Backend, "error": err.Error()})
	}

	publisher := newPublisher(cfg.AMQP)
	defer publisher.Close()

	hub := notification.NewHub()
	notifications := notification.NewNotificationService(repo, hub, publisher, m)
	items := item.NewItemService(repo, notifications, images, m, cfg.Storage.MaxImageBytes)
	auctions := auction.NewAuctionService(repo, notifications, items, images, cfg.Storage.MaxImageBytes)
	biddingSvc := bidding.NewBiddingService(repo, notifications, m)
	tokens := security.NewTokenIssuer(cfg.Auth)
	accounts := account.NewAccountService(repo, tokens)

	router := server.SetupRouter(server.Dependencies{
		Accounts:      accounts,
		Auctions:      auctions,
		Items:         items,
		Bidding:       biddingSvc,
		Notifications: notifications,
		Tokens:        tokens,
		Metrics:       m,
		Gatherer:      reg,
		Ping:          pinger(db),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Info("Starting auction server", map[string]any{"addr": cfg.Server.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("Failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	utils.Info("Shutting down auction server", nil)

	// open notification streams end once the hub closes
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("Graceful shutdown failed", map[string]any{"error": err.Error()})
	}
}

// newPublisher connects to the broker when one is configured and falls back
// to logging events otherwise
func newPublisher(cfg config.AMQPConfig) events.Publisher {
	if cfg.URL == "" {
		return events.LogPublisher{}
	}
	p, err := events.NewAMQPPublisher(cfg.URL, cfg.Exchange)
	if err != nil {
		utils.Warn("Failed to connect to broker, events will only be logged", map[string]any{
			"exchange": cfg.Exchange,
			"error":    err.Error(),
		})
		return events.LogPublisher{}
	}
	return p
}

func pinger(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
