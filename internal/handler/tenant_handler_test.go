package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/zapflow/zapflow-backend/internal/errors"
	"github.com/zapflow/zapflow-backend/internal/model"
	"github.com/zapflow/zapflow-backend/internal/webhook"
)

type stubTenants struct {
	tenants     map[string]*model.Tenant
	webhookURLs map[string]string
}

func (s *stubTenants) Create(t *model.Tenant) error {
	t.ID = "generated"
	s.tenants[t.ID] = t
	return nil
}

func (s *stubTenants) GetByID(id string) (*model.Tenant, error) {
	if t, ok := s.tenants[id]; ok {
		return t, nil
	}
	return nil, appErrors.NewTenantNotFound(id)
}

func (s *stubTenants) ListActive() ([]model.Tenant, error) { return nil, nil }

func (s *stubTenants) UpdateWebhookURL(id, url string) error {
	s.webhookURLs[id] = url
	return nil
}

func newHandler(gatewayURL string, tenants *stubTenants) *TenantHandler {
	return &TenantHandler{
		Tenants:          tenants,
		Notifier:         webhook.NewNotifier(2*time.Second, zap.NewNop().Sugar()),
		Logger:           zap.NewNop().Sugar(),
		DeviceGatewayURL: gatewayURL,
	}
}

func serveWebhookUpdate(h *TenantHandler, tenantID, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Put("/tenants/{id}/webhook", h.UpdateWebhook)
	req := httptest.NewRequest(http.MethodPut, "/tenants/"+tenantID+"/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUpdateWebhookRegistersOnFirstWorkingVariant(t *testing.T) {
	// The gateway only knows the second endpoint variant.
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/webhook/instance/") {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer gw.Close()

	tenants := &stubTenants{
		tenants: map[string]*model.Tenant{
			"t1": {ID: "t1", Name: "Loja", InstanceName: "main", InstanceAPIKey: "key"},
		},
		webhookURLs: map[string]string{},
	}
	h := newHandler(gw.URL, tenants)

	rec := serveWebhookUpdate(h, "t1", `{"url":"https://example.com/hook"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "https://example.com/hook", tenants.webhookURLs["t1"])

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp["gateway_registered"], "/webhook/instance/main")
}

func TestUpdateWebhookSurfacesAllCandidatesFailing(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer gw.Close()

	tenants := &stubTenants{
		tenants: map[string]*model.Tenant{
			"t1": {ID: "t1", InstanceName: "main", InstanceAPIKey: "key"},
		},
		webhookURLs: map[string]string{},
	}
	h := newHandler(gw.URL, tenants)

	rec := serveWebhookUpdate(h, "t1", `{"url":"https://example.com/hook"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUpdateWebhookSkipsGatewayWithoutInstance(t *testing.T) {
	tenants := &stubTenants{
		tenants:     map[string]*model.Tenant{"t1": {ID: "t1"}},
		webhookURLs: map[string]string{},
	}
	h := newHandler("http://gateway.invalid", tenants)

	rec := serveWebhookUpdate(h, "t1", `{"url":"https://example.com/hook"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com/hook", tenants.webhookURLs["t1"])
}

func TestUpdateWebhookValidation(t *testing.T) {
	tenants := &stubTenants{
		tenants:     map[string]*model.Tenant{"t1": {ID: "t1"}},
		webhookURLs: map[string]string{},
	}
	h := newHandler("http://gateway.invalid", tenants)

	assert.Equal(t, http.StatusBadRequest, serveWebhookUpdate(h, "t1", `{"url":"not a url"}`).Code)
	assert.Equal(t, http.StatusNotFound, serveWebhookUpdate(h, "ghost", `{"url":"https://ok.example.com"}`).Code)
}
