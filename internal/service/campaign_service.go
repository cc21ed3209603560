package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/zapflow/zapflow-backend/internal/model"
	"github.com/zapflow/zapflow-backend/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	TenantRepo   repository.TenantRepositoryInterface
}

// CreateCampaignInput is the request shape accepted by CreateCampaign.
type CreateCampaignInput struct {
	TenantID     string
	Name         string
	Channel      string
	GroupID      int
	TemplateID   string
	TemplateName string
	Language     string
	ScheduledAt  *string // RFC3339; nil means run on the next dispatch tick
}

// CreateCampaign validates the input, counts the recipient group and persists
// the campaign in scheduled state. The dispatcher picks it up from there.
func (s *CampaignService) CreateCampaign(in CreateCampaignInput) (*model.Campaign, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("campaign name cannot be empty")
	}
	if !model.ValidChannel(in.Channel) {
		return nil, fmt.Errorf("unknown channel: %s", in.Channel)
	}
	if strings.TrimSpace(in.TemplateName) == "" {
		return nil, fmt.Errorf("template name cannot be empty")
	}

	if _, err := s.TenantRepo.GetByID(in.TenantID); err != nil {
		return nil, err
	}

	total, err := s.ContactRepo.CountByGroup(in.GroupID)
	if err != nil {
		return nil, err
	}

	c := &model.Campaign{
		TenantID:        in.TenantID,
		Name:            in.Name,
		Channel:         in.Channel,
		GroupID:         in.GroupID,
		TemplateID:      in.TemplateID,
		TemplateName:    in.TemplateName,
		Language:        in.Language,
		TotalRecipients: total,
		Status:          model.CampaignStatusScheduled,
	}

	if in.ScheduledAt != nil && strings.TrimSpace(*in.ScheduledAt) != "" {
		t, err := time.Parse(time.RFC3339, *in.ScheduledAt)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduled_at: %w", err)
		}
		c.ScheduledAt = &t
	}

	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(page, pageSize int, tenantID, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, tenantID, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

// GetCampaignDetails fetches a campaign by ID
func (s *CampaignService) GetCampaignDetails(id int) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(id)
}
