package model

import "time"

// Campaign statuses. Transitions only move forward:
// scheduled -> running -> completed | failed.
const (
	CampaignStatusScheduled = "scheduled"
	CampaignStatusRunning   = "running"
	CampaignStatusCompleted = "completed"
	CampaignStatusFailed    = "failed"
)

// Channel kinds a campaign can be sent through.
const (
	ChannelCloudAPI = "cloud_api" // official WhatsApp Cloud API
	ChannelDevice   = "device"    // device-paired gateway instance
)

type Campaign struct {
	ID              int        `db:"id" json:"id"`
	TenantID        string     `db:"tenant_id" json:"tenant_id"`
	Name            string     `db:"name" json:"name"`
	Channel         string     `db:"channel" json:"channel"`
	GroupID         int        `db:"group_id" json:"group_id"`
	TemplateID      string     `db:"template_id" json:"template_id"`
	TemplateName    string     `db:"template_name" json:"template_name"`
	Language        string     `db:"language" json:"language"`
	TotalRecipients int        `db:"total_recipients" json:"total_recipients"`
	Status          string     `db:"status" json:"status"`
	ScheduledAt     *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	StartedAt       *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	SuccessCount    int        `db:"success_count" json:"success_count"`
	ErrorCount      int        `db:"error_count" json:"error_count"`
	ErrorMessage    *string    `db:"error_message" json:"error_message,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// ValidChannel reports whether ch is one of the supported channel kinds.
func ValidChannel(ch string) bool {
	return ch == ChannelCloudAPI || ch == ChannelDevice
}
