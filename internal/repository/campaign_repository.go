package repository

import (
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/zapflow/zapflow-backend/internal/errors"
	"github.com/zapflow/zapflow-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	Create(c *model.Campaign) error
	GetByID(id int) (*model.Campaign, error)
	ListCampaigns(offset, limit int, tenantID, status string) ([]*model.Campaign, int, error)

	// Dispatch lifecycle
	ListDue(now time.Time) ([]*model.Campaign, error)
	Claim(id int, startedAt time.Time) (bool, error)
	Finalize(id int, status string, completedAt time.Time, successCount, errorCount int, errorMessage string) error
	MarkFailed(id int, completedAt time.Time, errorMessage string) error
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, tenant_id, name, channel, group_id, template_id, template_name, language,
       total_recipients, status, scheduled_at, started_at, completed_at,
       success_count, error_count, error_message, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Channel, &c.GroupID, &c.TemplateID, &c.TemplateName, &c.Language,
		&c.TotalRecipients, &c.Status, &c.ScheduledAt, &c.StartedAt, &c.CompletedAt,
		&c.SuccessCount, &c.ErrorCount, &c.ErrorMessage, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignStatusScheduled
	}
	query := `
        INSERT INTO campaigns (tenant_id, name, channel, group_id, template_id, template_name, language,
                               total_recipients, status, scheduled_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		c.TenantID, c.Name, c.Channel, c.GroupID, c.TemplateID, c.TemplateName, c.Language,
		c.TotalRecipients, c.Status, c.ScheduledAt, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, tenantID, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if tenantID != "" {
		query += fmt.Sprintf(" AND tenant_id=$%d", argPos)
		args = append(args, tenantID)
		argPos++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	// Count total
	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	argsCount := []interface{}{}
	argPosCount := 1
	if tenantID != "" {
		countQuery += fmt.Sprintf(" AND tenant_id=$%d", argPosCount)
		argsCount = append(argsCount, tenantID)
		argPosCount++
	}
	if status != "" {
		countQuery += fmt.Sprintf(" AND status=$%d", argPosCount)
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// ====================== Dispatch lifecycle ======================

// ListDue returns campaigns still in scheduled state whose due time has been
// reached (a null scheduled_at means "run now").
func (r *CampaignRepository) ListDue(now time.Time) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + `
        FROM campaigns
        WHERE status=$1 AND (scheduled_at IS NULL OR scheduled_at <= $2)
        ORDER BY id`
	rows, err := r.DB.Query(query, model.CampaignStatusScheduled, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// Claim transitions a campaign scheduled -> running with a single conditional
// update. The WHERE clause on the previous status makes the claim atomic: when
// two ticks race on the same campaign, only one update reports an affected row.
func (r *CampaignRepository) Claim(id int, startedAt time.Time) (bool, error) {
	query := `UPDATE campaigns SET status=$1, started_at=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	res, err := r.DB.Exec(query, model.CampaignStatusRunning, startedAt, id, model.CampaignStatusScheduled)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// Finalize stamps the terminal state and aggregate counters of a running campaign.
func (r *CampaignRepository) Finalize(id int, status string, completedAt time.Time, successCount, errorCount int, errorMessage string) error {
	query := `UPDATE campaigns
        SET status=$1, completed_at=$2, success_count=$3, error_count=$4, error_message=$5, updated_at=NOW()
        WHERE id=$6 AND status=$7`
	_, err := r.DB.Exec(query, status, completedAt, successCount, errorCount,
		nullIfEmpty(errorMessage), id, model.CampaignStatusRunning)
	return err
}

// MarkFailed finalizes a running campaign as failed after a structural error.
func (r *CampaignRepository) MarkFailed(id int, completedAt time.Time, errorMessage string) error {
	query := `UPDATE campaigns SET status=$1, completed_at=$2, error_message=$3, updated_at=NOW()
        WHERE id=$4 AND status=$5`
	_, err := r.DB.Exec(query, model.CampaignStatusFailed, completedAt,
		nullIfEmpty(errorMessage), id, model.CampaignStatusRunning)
	return err
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
