package model

import "time"

// Message is a row of chat history. Written by the inbound/outbound chat flows;
// the retention sweeper deletes rows older than the retention window.
type Message struct {
	ID         int       `db:"id" json:"id"`
	TenantID   string    `db:"tenant_id" json:"tenant_id"`
	CampaignID *int      `db:"campaign_id" json:"campaign_id,omitempty"`
	Phone      string    `db:"phone" json:"phone"`
	Direction  string    `db:"direction" json:"direction"` // inbound, outbound
	Content    string    `db:"content" json:"content"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
