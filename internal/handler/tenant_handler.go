package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appErrors "github.com/zapflow/zapflow-backend/internal/errors"
	"github.com/zapflow/zapflow-backend/internal/model"
	"github.com/zapflow/zapflow-backend/internal/repository"
	"github.com/zapflow/zapflow-backend/internal/webhook"
)

// TenantHandler serves tenant CRUD and the webhook configuration flow.
type TenantHandler struct {
	Tenants  repository.TenantRepositoryInterface
	Notifier *webhook.Notifier
	Logger   *zap.SugaredLogger

	// DeviceGatewayURL is the base URL webhook registration candidates are
	// built against.
	DeviceGatewayURL string
}

func (h *TenantHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name            string `json:"name"`
		WAToken         string `json:"wa_token"`
		WAPhoneNumberID string `json:"wa_phone_number_id"`
		WAAPIVersion    string `json:"wa_api_version"`
		InstanceName    string `json:"instance_name"`
		InstanceAPIKey  string `json:"instance_apikey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Name == "" {
		http.Error(w, "tenant name cannot be empty", http.StatusBadRequest)
		return
	}

	t := &model.Tenant{
		Name:            body.Name,
		Active:          true,
		WAToken:         body.WAToken,
		WAPhoneNumberID: body.WAPhoneNumberID,
		WAAPIVersion:    body.WAAPIVersion,
		InstanceName:    body.InstanceName,
		InstanceAPIKey:  body.InstanceAPIKey,
	}
	if err := h.Tenants.Create(t); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(t)
}

func (h *TenantHandler) GetTenant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.Tenants.GetByID(id)
	if err != nil {
		var notFound *appErrors.ErrTenantNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(t)
}

// UpdateWebhook persists the tenant's webhook URL and registers it on the
// device gateway. Gateway versions expose webhook registration under
// different paths, so the candidates are tried in order and the first 2xx
// wins; when all of them fail the error is surfaced to the caller.
func (h *TenantHandler) UpdateWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if _, err := url.ParseRequestURI(body.URL); err != nil {
		http.Error(w, "invalid webhook url", http.StatusBadRequest)
		return
	}

	t, err := h.Tenants.GetByID(id)
	if err != nil {
		var notFound *appErrors.ErrTenantNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.Tenants.UpdateWebhookURL(id, body.URL); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	applied := ""
	if t.InstanceName != "" {
		winner, err := h.Notifier.FirstSuccess(r.Context(), h.registrationCandidates(t, body.URL))
		if err != nil {
			h.Logger.Warnw("webhook registration failed on gateway", "tenant", id, "error", err)
			http.Error(w, fmt.Sprintf("webhook saved but gateway registration failed: %v", err), http.StatusBadGateway)
			return
		}
		applied = winner.URL
	}

	json.NewEncoder(w).Encode(map[string]string{
		"tenant_id":          id,
		"webhook_url":        body.URL,
		"gateway_registered": applied,
	})
}

// registrationCandidates lists the known endpoint variants for setting an
// instance webhook, newest first.
func (h *TenantHandler) registrationCandidates(t *model.Tenant, webhookURL string) []webhook.Attempt {
	payload := map[string]any{
		"url":     webhookURL,
		"enabled": true,
		"events":  []string{"connection.update", "messages.upsert"},
	}
	headers := map[string]string{"apikey": t.InstanceAPIKey}
	return []webhook.Attempt{
		{Method: http.MethodPost, URL: fmt.Sprintf("%s/webhook/set/%s", h.DeviceGatewayURL, t.InstanceName), Headers: headers, Payload: payload},
		{Method: http.MethodPost, URL: fmt.Sprintf("%s/webhook/instance/%s", h.DeviceGatewayURL, t.InstanceName), Headers: headers, Payload: payload},
		{Method: http.MethodPut, URL: fmt.Sprintf("%s/instance/webhook/%s", h.DeviceGatewayURL, t.InstanceName), Headers: headers, Payload: payload},
		{Method: http.MethodGet, URL: fmt.Sprintf("%s/webhook/set/%s?url=%s", h.DeviceGatewayURL, t.InstanceName, url.QueryEscape(webhookURL)), Headers: headers},
	}
}
