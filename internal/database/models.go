package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan types for User.PlanType.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// Request log statuses. Entries are written once and never updated.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type User struct {
	ID                 string     `gorm:"primaryKey" json:"id"`
	PlanType           string     `gorm:"not null;default:free" json:"planType"`
	RequestsUsed       int        `gorm:"not null;default:0" json:"requestsUsed"`
	RequestsLimit      int        `gorm:"not null;default:100" json:"requestsLimit"`
	SubscriptionEndsAt *time.Time `json:"subscriptionEndsAt,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// RequestLog is the append-only record of every dispatch attempt.
type RequestLog struct {
	ID             string          `gorm:"primaryKey" json:"id"`
	UserID         *string         `gorm:"index" json:"userId,omitempty"`
	Provider       string          `gorm:"not null;index" json:"provider"`
	Model          string          `gorm:"not null" json:"model"`
	Prompt         string          `gorm:"not null" json:"prompt"`
	Response       *string         `json:"response"`
	Tokens         int             `gorm:"not null;default:0" json:"tokens"`
	Cost           decimal.Decimal `gorm:"type:decimal(12,6)" json:"cost"`
	ResponseTimeMs int64           `gorm:"not null;default:0" json:"responseTimeMs"`
	Status         string          `gorm:"not null;index" json:"status"`
	ErrorMessage   *string         `json:"errorMessage,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
}

// ProviderConfig holds per-provider limits and pricing. One row per provider,
// mutated by administrative action only.
type ProviderConfig struct {
	ID                 uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	Provider           string          `gorm:"uniqueIndex;not null" json:"provider"`
	IsEnabled          bool            `gorm:"not null;default:true" json:"isEnabled"`
	RateLimitPerMinute int             `gorm:"not null;default:60" json:"rateLimitPerMinute"`
	RateLimitPerHour   int             `gorm:"not null;default:1000" json:"rateLimitPerHour"`
	CostPerToken       decimal.Decimal `gorm:"type:decimal(12,8)" json:"costPerToken"`
	FreeTierLimit      int             `gorm:"not null;default:10" json:"freeTierLimit"`
	PremiumTierLimit   int             `gorm:"not null;default:1000" json:"premiumTierLimit"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

// RateLimitWindow is one consumption record in the rolling rate-limit window.
// Rows accumulate one per gated request; the limiter counts rows newer than
// the window cutoff instead of keeping a bucket counter.
type RateLimitWindow struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	UserID       string    `gorm:"not null;index:idx_window_user_provider"`
	Provider     string    `gorm:"not null;index:idx_window_user_provider"`
	WindowStart  time.Time `gorm:"not null;index"`
	RequestCount int       `gorm:"not null;default:1"`
}
