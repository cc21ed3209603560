package repository

import (
	"database/sql"

	"github.com/google/uuid"

	appErrors "github.com/zapflow/zapflow-backend/internal/errors"
	"github.com/zapflow/zapflow-backend/internal/model"
)

type TenantRepositoryInterface interface {
	Create(t *model.Tenant) error
	GetByID(id string) (*model.Tenant, error)
	ListActive() ([]model.Tenant, error)
	UpdateWebhookURL(id, url string) error
}

type TenantRepository struct {
	DB *sql.DB
}

const tenantColumns = `id, name, active, wa_token, wa_phone_number_id, wa_api_version,
       instance_name, instance_apikey, webhook_url, created_at`

func scanTenant(row interface{ Scan(...any) error }) (*model.Tenant, error) {
	var t model.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.Active, &t.WAToken, &t.WAPhoneNumberID, &t.WAAPIVersion,
		&t.InstanceName, &t.InstanceAPIKey, &t.WebhookURL, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) Create(t *model.Tenant) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	query := `
        INSERT INTO tenants (id, name, active, wa_token, wa_phone_number_id, wa_api_version,
                             instance_name, instance_apikey, webhook_url, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
        RETURNING created_at
    `
	return r.DB.QueryRow(query,
		t.ID, t.Name, t.Active, t.WAToken, t.WAPhoneNumberID, t.WAAPIVersion,
		t.InstanceName, t.InstanceAPIKey, t.WebhookURL,
	).Scan(&t.CreatedAt)
}

func (r *TenantRepository) GetByID(id string) (*model.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id=$1`
	t, err := scanTenant(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewTenantNotFound(id)
		}
		return nil, err
	}
	return t, nil
}

// ListActive fetches all tenants eligible for background polling
func (r *TenantRepository) ListActive() ([]model.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE active = TRUE ORDER BY created_at`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := []model.Tenant{}
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

func (r *TenantRepository) UpdateWebhookURL(id, url string) error {
	_, err := r.DB.Exec(`UPDATE tenants SET webhook_url=$1 WHERE id=$2`, url, id)
	return err
}

var _ TenantRepositoryInterface = (*TenantRepository)(nil)
