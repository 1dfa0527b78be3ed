package database

import "time"

func (d *DB) GetProviderConfig(provider string) (*ProviderConfig, error) {
	var cfg ProviderConfig
	if err := d.gorm.Where("provider = ?", provider).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (d *DB) ProviderConfigs() ([]ProviderConfig, error) {
	var configs []ProviderConfig
	if err := d.gorm.Order("provider").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// UpdateProviderConfig applies the given column updates to one provider row.
func (d *DB) UpdateProviderConfig(provider string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return d.gorm.Model(&ProviderConfig{}).
		Where("provider = ?", provider).
		Updates(updates).Error
}
