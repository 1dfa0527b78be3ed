package database

import "github.com/google/uuid"

// CreateRequestLog inserts one request log entry. Entries are never updated
// or deleted afterwards.
func (d *DB) CreateRequestLog(entry *RequestLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return d.gorm.Create(entry).Error
}

// RecentRequests returns the most recent entries ordered by creation time
// descending, optionally filtered to one user.
func (d *DB) RecentRequests(limit int, userID string) ([]RequestLog, error) {
	if limit <= 0 {
		limit = 10
	}

	query := d.gorm.Order("created_at DESC, id DESC").Limit(limit)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var entries []RequestLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
