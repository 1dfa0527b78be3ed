package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the gorm handle. All persistence goes through methods on DB so the
// rest of the service can be constructed against a single injected value.
type DB struct {
	gorm *gorm.DB
}

// Open creates (or opens) the sqlite database at path, runs migrations and
// seeds the provider configuration table on first boot.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	g, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := g.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := g.AutoMigrate(
		&User{},
		&RequestLog{},
		&ProviderConfig{},
		&RateLimitWindow{},
	); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	db := &DB{gorm: g}
	if err := db.seedProviderConfigs(); err != nil {
		return nil, fmt.Errorf("seed provider configs: %w", err)
	}
	return db, nil
}

func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *DB) seedProviderConfigs() error {
	var count int64
	d.gorm.Model(&ProviderConfig{}).Count(&count)
	if count > 0 {
		return nil
	}

	configs := []ProviderConfig{
		{Provider: "openai", IsEnabled: true, CostPerToken: decimal.RequireFromString("0.00003")},
		{Provider: "gemini", IsEnabled: true, CostPerToken: decimal.RequireFromString("0.00001")},
		{Provider: "deepseek", IsEnabled: true, CostPerToken: decimal.RequireFromString("0.000002")},
		{Provider: "anthropic", IsEnabled: true, CostPerToken: decimal.RequireFromString("0.000045")},
		{Provider: "perplexity", IsEnabled: true, CostPerToken: decimal.RequireFromString("0.000005")},
		{Provider: "elevenlabs", IsEnabled: true, CostPerToken: decimal.RequireFromString("0.00005")},
	}

	for i := range configs {
		configs[i].RateLimitPerMinute = 60
		configs[i].RateLimitPerHour = 1000
		configs[i].FreeTierLimit = 10
		configs[i].PremiumTierLimit = 1000
		if err := d.gorm.Create(&configs[i]).Error; err != nil {
			return fmt.Errorf("seed config %s: %w", configs[i].Provider, err)
		}
	}
	return nil
}
