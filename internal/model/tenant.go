package model

import "time"

// Tenant owns its own channel credentials, webhook configuration and campaigns.
type Tenant struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Active bool   `db:"active" json:"active"`

	// Cloud API credentials
	WAToken         string `db:"wa_token" json:"-"`
	WAPhoneNumberID string `db:"wa_phone_number_id" json:"wa_phone_number_id,omitempty"`
	WAAPIVersion    string `db:"wa_api_version" json:"wa_api_version,omitempty"`

	// Device-paired gateway credentials
	InstanceName   string `db:"instance_name" json:"instance_name,omitempty"`
	InstanceAPIKey string `db:"instance_apikey" json:"-"`

	WebhookURL string    `db:"webhook_url" json:"webhook_url,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
