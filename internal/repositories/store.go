package repositories

import (
	"context"

	"github.com/787516/Matrimonial/internal/resilience"
	"gorm.io/gorm"
)

// store is embedded by every repository. Reads and idempotent writes go
// through run so transient storage failures get a bounded retry; business
// outcomes are decided by the caller after run returns.
type store struct {
	db     *gorm.DB
	policy resilience.RetryPolicy
}

func newStore(db *gorm.DB) store {
	return store{db: db, policy: resilience.DefaultPolicy()}
}

// SetRetryPolicy replaces the retry policy used for storage calls.
func (s *store) SetRetryPolicy(policy resilience.RetryPolicy) {
	s.policy = policy
}

func (s *store) run(ctx context.Context, fn func(db *gorm.DB) error) error {
	return resilience.Retry(ctx, s.policy, func() error {
		return fn(s.db.WithContext(ctx))
	})
}
