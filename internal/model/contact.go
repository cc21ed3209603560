package model

type Contact struct {
	ID       int    `db:"id" json:"id"`
	TenantID string `db:"tenant_id" json:"tenant_id"`
	GroupID  int    `db:"group_id" json:"group_id"`
	Phone    string `db:"phone" json:"phone"`
	Name     string `db:"name" json:"name"`
}
