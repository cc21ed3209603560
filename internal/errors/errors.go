package appErrors

import (
	"errors"
	"fmt"
)

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrTenantNotFound is returned when a tenant id does not exist
type ErrTenantNotFound struct {
	TenantID string
}

func (e *ErrTenantNotFound) Error() string {
	return fmt.Sprintf("tenant %s not found", e.TenantID)
}

func NewTenantNotFound(id string) error {
	return &ErrTenantNotFound{TenantID: id}
}

// ErrMissingCredentials is returned when a tenant has no usable gateway
// credentials for the requested channel.
type ErrMissingCredentials struct {
	TenantID string
	Channel  string
}

func (e *ErrMissingCredentials) Error() string {
	return fmt.Sprintf("tenant %s has no credentials configured for channel %s", e.TenantID, e.Channel)
}

func NewMissingCredentials(tenantID, channel string) error {
	return &ErrMissingCredentials{TenantID: tenantID, Channel: channel}
}

// ErrNoRecipients is returned when a claimed campaign resolves to an empty recipient set.
var ErrNoRecipients = errors.New("campaign has no recipients")
