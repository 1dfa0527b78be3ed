package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserStats is the per-user rollup served by the dashboard.
type UserStats struct {
	RequestsUsed       int             `json:"requestsUsed"`
	RequestsLimit      int             `json:"requestsLimit"`
	PlanType           string          `json:"planType"`
	SubscriptionEndsAt *time.Time      `json:"subscriptionEndsAt,omitempty"`
	TotalCost          decimal.Decimal `json:"totalCost"`
}

func (d *DB) GetUser(id string) (*User, error) {
	var user User
	if err := d.gorm.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertUser creates the user or updates its mutable fields if it exists.
func (d *DB) UpsertUser(user *User) error {
	return d.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_type", "requests_used", "requests_limit", "subscription_ends_at", "updated_at",
		}),
	}).Create(user).Error
}

// UpgradeUser switches a user to the premium plan with a one month
// subscription.
func (d *DB) UpgradeUser(id string) (*User, error) {
	user, err := d.GetUser(id)
	if err != nil {
		return nil, err
	}

	ends := time.Now().AddDate(0, 1, 0)
	user.PlanType = PlanPremium
	user.RequestsLimit = 10000
	user.SubscriptionEndsAt = &ends

	if err := d.gorm.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// UserStatsFor aggregates a user's request count and spend from the log.
func (d *DB) UserStatsFor(id string) (*UserStats, error) {
	user, err := d.GetUser(id)
	if err != nil {
		return nil, err
	}

	var used int64
	if err := d.gorm.Model(&RequestLog{}).Where("user_id = ?", id).Count(&used).Error; err != nil {
		return nil, err
	}

	var rawCost string
	if err := d.gorm.Model(&RequestLog{}).
		Where("user_id = ?", id).
		Select("COALESCE(SUM(cost), 0)").
		Scan(&rawCost).Error; err != nil {
		return nil, err
	}
	totalCost, err := decimal.NewFromString(rawCost)
	if err != nil {
		return nil, fmt.Errorf("parse total cost %q: %w", rawCost, err)
	}

	return &UserStats{
		RequestsUsed:       int(used),
		RequestsLimit:      user.RequestsLimit,
		PlanType:           user.PlanType,
		SubscriptionEndsAt: user.SubscriptionEndsAt,
		TotalCost:          totalCost.Round(6),
	}, nil
}

// IsNotFound reports whether err is the record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
