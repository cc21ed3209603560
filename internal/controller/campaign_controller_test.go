package controller

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

	appErrors "github.com/zapflow/zapflow-backend/internal/errors"
	"github.com/zapflow/zapflow-backend/internal/model"
	"github.com/zapflow/zapflow-backend/internal/service"
)

type stubCampaignRepo struct {
	byID map[int]*model.Campaign
}

func (s *stubCampaignRepo) Create(c *model.Campaign) error {
	c.ID = 1
	return nil
}

func (s *stubCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, appErrors.NewCampaignNotFound(id)
}

func (s *stubCampaignRepo) ListCampaigns(offset, limit int, tenantID, status string) ([]*model.Campaign, int, error) {
	out := []*model.Campaign{}
	for _, c := range s.byID {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (s *stubCampaignRepo) ListDue(now time.Time) ([]*model.Campaign, error) { return nil, nil }
func (s *stubCampaignRepo) Claim(id int, startedAt time.Time) (bool, error)  { return false, nil }
func (s *stubCampaignRepo) Finalize(id int, status string, completedAt time.Time, successCount, errorCount int, errorMessage string) error {
	return nil
}
func (s *stubCampaignRepo) MarkFailed(id int, completedAt time.Time, errorMessage string) error {
	return nil
}

type stubContactRepo struct{}

func (s *stubContactRepo) ListByGroup(groupID int) ([]model.Contact, error) { return nil, nil }
func (s *stubContactRepo) CountByGroup(groupID int) (int, error)            { return 2, nil }

type stubTenantRepo struct{}

func (s *stubTenantRepo) Create(t *model.Tenant) error { return nil }
func (s *stubTenantRepo) GetByID(id string) (*model.Tenant, error) {
	if id == "t1" {
		return &model.Tenant{ID: "t1", Name: "Loja"}, nil
	}
	return nil, appErrors.NewTenantNotFound(id)
}
func (s *stubTenantRepo) ListActive() ([]model.Tenant, error)   { return nil, nil }
func (s *stubTenantRepo) UpdateWebhookURL(id, url string) error { return nil }

func newRouter(repo *stubCampaignRepo) *chi.Mux {
	svc := &service.CampaignService{
		CampaignRepo: repo,
		ContactRepo:  &stubContactRepo{},
		TenantRepo:   &stubTenantRepo{},
	}
	c := &CampaignController{CampaignService: svc}

	r := chi.NewRouter()
	r.Post("/campaigns", c.CreateCampaign)
	r.Get("/campaigns", c.ListCampaigns)
	r.Get("/campaigns/{id}", c.GetCampaignDetails)
	return r
}

func TestCreateCampaignEndpoint(t *testing.T) {
	r := newRouter(&stubCampaignRepo{byID: map[int]*model.Campaign{}})

	body := `{"tenant_id":"t1","name":"Promo","channel":"cloud_api","group_id":1,"template_name":"promo_tpl"}`
	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Campaign
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, model.CampaignStatusScheduled, created.Status)
	assert.Equal(t, 2, created.TotalRecipients)
}

func TestCreateCampaignEndpointRejectsBadChannel(t *testing.T) {
	r := newRouter(&stubCampaignRepo{byID: map[int]*model.Campaign{}})

	body := `{"tenant_id":"t1","name":"Promo","channel":"carrier-pigeon","group_id":1,"template_name":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCampaignEndpointUnknownTenantIs404(t *testing.T) {
	r := newRouter(&stubCampaignRepo{byID: map[int]*model.Campaign{}})

	body := `{"tenant_id":"ghost","name":"Promo","channel":"cloud_api","group_id":1,"template_name":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCampaignDetailsEndpoint(t *testing.T) {
	repo := &stubCampaignRepo{byID: map[int]*model.Campaign{
		5: {ID: 5, TenantID: "t1", Name: "Promo", Status: model.CampaignStatusCompleted, SuccessCount: 9, ErrorCount: 1},
	}}
	r := newRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/campaigns/5", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Campaign
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 9, got.SuccessCount)
	assert.Equal(t, 1, got.ErrorCount)
}

func TestGetCampaignDetailsNotFound(t *testing.T) {
	r := newRouter(&stubCampaignRepo{byID: map[int]*model.Campaign{}})

	req := httptest.NewRequest(http.MethodGet, "/campaigns/99", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCampaignDetailsBadID(t *testing.T) {
	r := newRouter(&stubCampaignRepo{byID: map[int]*model.Campaign{}})

	req := httptest.NewRequest(http.MethodGet, "/campaigns/abc", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
