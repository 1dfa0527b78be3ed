package dispatch

import (
	"time"

	"github.com/omniprompt/gateway/internal/database"
)

// Limiter answers whether a user may issue one more call to a provider, based
// on a rolling count of consumption rows over the trailing window. The tier
// limit comes from the provider's configuration and the user's plan.
type Limiter struct {
	db     *database.DB
	window time.Duration
}

func NewLimiter(db *database.DB) *Limiter {
	return &Limiter{db: db, window: time.Hour}
}

// Allow reports whether the user is under their tier limit for the provider.
// Missing users or provider configs fail closed. The check and the later
// Consume insert are separate statements, so two concurrent calls can both
// pass before either consumes; the limit is soft under concurrency.
func (l *Limiter) Allow(userID, provider string) (bool, error) {
	since := time.Now().Add(-l.window)
	count, err := l.db.CountWindow(userID, provider, since)
	if err != nil {
		return false, err
	}

	user, err := l.db.GetUser(userID)
	if err != nil {
		if database.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	cfg, err := l.db.GetProviderConfig(provider)
	if err != nil {
		if database.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	limit := cfg.FreeTierLimit
	if user.PlanType == database.PlanPremium {
		limit = cfg.PremiumTierLimit
	}
	return count < int64(limit), nil
}

// Consume records one consumed call.
func (l *Limiter) Consume(userID, provider string) error {
	return l.db.AddWindowEntry(userID, provider)
}
