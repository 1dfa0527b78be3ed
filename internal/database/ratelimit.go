package database

import "time"

// CountWindow returns how many consumption rows exist for the user/provider
// pair with a window start at or after since.
func (d *DB) CountWindow(userID, provider string, since time.Time) (int64, error) {
	var count int64
	err := d.gorm.Model(&RateLimitWindow{}).
		Where("user_id = ? AND provider = ? AND window_start >= ?", userID, provider, since).
		Count(&count).Error
	return count, err
}

// AddWindowEntry records one consumed call at now.
func (d *DB) AddWindowEntry(userID, provider string) error {
	return d.gorm.Create(&RateLimitWindow{
		UserID:       userID,
		Provider:     provider,
		WindowStart:  time.Now(),
		RequestCount: 1,
	}).Error
}
