package repository

import (
	"database/sql"
	"time"
)

type MessageRepositoryInterface interface {
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

type MessageRepository struct {
	DB *sql.DB
}

// DeleteOlderThan removes message history rows created strictly before cutoff
// and returns how many were deleted. Safe to run repeatedly.
func (r *MessageRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.DB.Exec(`DELETE FROM messages WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
