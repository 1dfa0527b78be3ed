package database

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// StatsData is the dashboard-level rollup over the whole request log.
type StatsData struct {
	TotalCalls        int64           `json:"totalCalls"`
	SuccessRate       float64         `json:"successRate"`
	AvgResponseTimeMs int64           `json:"avgResponseTimeMs"`
	ActiveProviders   int64           `json:"activeProviders"`
	TotalCost         decimal.Decimal `json:"totalCost"`
}

// Stats computes the aggregate statistics from the request log and the
// provider configuration. An empty log yields zero values, not placeholders.
func (d *DB) Stats() (*StatsData, error) {
	var total int64
	if err := d.gorm.Model(&RequestLog{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var successes int64
	if err := d.gorm.Model(&RequestLog{}).
		Where("status = ?", StatusSuccess).
		Count(&successes).Error; err != nil {
		return nil, err
	}

	var avgMs float64
	if err := d.gorm.Model(&RequestLog{}).
		Select("COALESCE(AVG(response_time_ms), 0)").
		Scan(&avgMs).Error; err != nil {
		return nil, err
	}

	// The sum is scanned as text so it never round-trips through a float.
	var rawCost string
	if err := d.gorm.Model(&RequestLog{}).
		Select("COALESCE(SUM(cost), 0)").
		Scan(&rawCost).Error; err != nil {
		return nil, err
	}
	totalCost, err := decimal.NewFromString(rawCost)
	if err != nil {
		return nil, fmt.Errorf("parse total cost %q: %w", rawCost, err)
	}

	var active int64
	if err := d.gorm.Model(&ProviderConfig{}).
		Where("is_enabled = ?", true).
		Count(&active).Error; err != nil {
		return nil, err
	}

	successRate := 0.0
	if total > 0 {
		successRate = float64(successes) / float64(total) * 100
	}

	return &StatsData{
		TotalCalls:        total,
		SuccessRate:       successRate,
		AvgResponseTimeMs: int64(math.Round(avgMs)),
		ActiveProviders:   active,
		TotalCost:         totalCost.Round(6),
	}, nil
}
