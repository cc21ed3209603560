package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zapflow/zapflow-backend/internal/config"
	"github.com/zapflow/zapflow-backend/internal/connection"
	"github.com/zapflow/zapflow-backend/internal/db"
	"github.com/zapflow/zapflow-backend/internal/dispatch"
	"github.com/zapflow/zapflow-backend/internal/gateway"
	"github.com/zapflow/zapflow-backend/internal/metrics"
	"github.com/zapflow/zapflow-backend/internal/repository"
	"github.com/zapflow/zapflow-backend/internal/retention"
	"github.com/zapflow/zapflow-backend/internal/scheduler"
	"github.com/zapflow/zapflow-backend/internal/webhook"
)

// The scheduler process owns the three background job families: campaign
// dispatch, connection tracking and retention. One instance per deployment.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}
	cfg := config.Load()

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("failed to connect to database", "error", err)
	}
	defer conn.Close()

	campaignRepo := &repository.CampaignRepository{DB: conn}
	contactRepo := &repository.ContactRepository{DB: conn}
	tenantRepo := &repository.TenantRepository{DB: conn}
	messageRepo := &repository.MessageRepository{DB: conn}

	m := metrics.New()
	deviceClient := gateway.NewDeviceGatewayClient(cfg.DeviceGatewayURL)
	notifier := webhook.NewNotifier(cfg.WebhookTimeout, logger)

	executor := &dispatch.Executor{
		Campaigns: campaignRepo,
		Contacts:  contactRepo,
		Tenants:   tenantRepo,
		Gateways: &gateway.Registry{
			Cloud:  gateway.NewCloudAPIClient(cfg.CloudAPIBaseURL),
			Device: deviceClient,
		},
		Logger:    logger,
		Metrics:   m,
		SendDelay: cfg.SendDelay,
	}

	tracker := &connection.Tracker{
		Tenants:  tenantRepo,
		Gateway:  deviceClient,
		States:   connection.NewMemoryStateStore(),
		Notifier: notifier,
		Logger:   logger,
		Metrics:  m,
	}

	sweeper := &retention.Sweeper{
		Messages: messageRepo,
		Logger:   logger,
		Metrics:  m,
	}

	dispatchTask := scheduler.NewRecurringTask("campaign-dispatch", cfg.DispatchInterval,
		executor.CheckAndExecuteDue, logger)
	connectionTask := scheduler.NewRecurringTask("connection-check", cfg.ConnectionInterval,
		tracker.CheckAllTenantConnections, logger)
	cleanupTask := scheduler.NewRecurringTask("retention-sweep", cfg.CleanupInterval,
		func(ctx context.Context) { sweeper.Sweep() }, logger)

	dispatchTask.Start()
	connectionTask.Start()
	cleanupTask.Start()

	r := chi.NewRouter()
	r.Handle("/metrics", m.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{
			"campaign_dispatch": dispatchTask.Running(),
			"connection_check":  connectionTask.Running(),
			"retention_sweep":   cleanupTask.Running(),
		})
	})
	go func() {
		logger.Infow("metrics listener started", "addr", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, r); err != nil {
			logger.Errorw("metrics listener stopped", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Infow("shutting down scheduler")
	dispatchTask.Stop()
	connectionTask.Stop()
	cleanupTask.Stop()
}
