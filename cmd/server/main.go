package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zapflow/zapflow-backend/internal/config"
	"github.com/zapflow/zapflow-backend/internal/controller"
	"github.com/zapflow/zapflow-backend/internal/db"
	"github.com/zapflow/zapflow-backend/internal/handler"
	"github.com/zapflow/zapflow-backend/internal/repository"
	"github.com/zapflow/zapflow-backend/internal/service"
	"github.com/zapflow/zapflow-backend/internal/webhook"
)

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

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		ContactRepo:  contactRepo,
		TenantRepo:   tenantRepo,
	}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
	}

	tenantHandler := &handler.TenantHandler{
		Tenants:          tenantRepo,
		Notifier:         webhook.NewNotifier(cfg.WebhookTimeout, logger),
		Logger:           logger,
		DeviceGatewayURL: cfg.DeviceGatewayURL,
	}

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaignDetails)

	// Tenant routes
	r.Post("/tenants", tenantHandler.CreateTenant)
	r.Get("/tenants/{id}", tenantHandler.GetTenant)
	r.Put("/tenants/{id}/webhook", tenantHandler.UpdateWebhook)

	logger.Infow("api server listening", "addr", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
