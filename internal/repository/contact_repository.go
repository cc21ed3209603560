package repository

import (
	"database/sql"

	"github.com/zapflow/zapflow-backend/internal/model"
)

// ContactRepositoryInterface defines methods used by the service and dispatcher
type ContactRepositoryInterface interface {
	ListByGroup(groupID int) ([]model.Contact, error)
	CountByGroup(groupID int) (int, error)
}

// ContactRepository is the concrete implementation
type ContactRepository struct {
	DB *sql.DB
}

// ListByGroup fetches the recipient set of a contact group
func (r *ContactRepository) ListByGroup(groupID int) ([]model.Contact, error) {
	query := `
        SELECT id, tenant_id, group_id, phone, name
        FROM contacts
        WHERE group_id = $1
        ORDER BY id
    `
	rows, err := r.DB.Query(query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.TenantID, &c.GroupID, &c.Phone, &c.Name); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// CountByGroup returns the size of a contact group
func (r *ContactRepository) CountByGroup(groupID int) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM contacts WHERE group_id = $1`, groupID).Scan(&count)
	return count, err
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
