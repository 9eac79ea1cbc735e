package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/aidocpro/internal/client/client"
	"github.com/dmitrijs2005/aidocpro/internal/client/models"
	"github.com/dmitrijs2005/aidocpro/internal/logging"
)

// LimitChecker fetches the allowance for the caller's identity.
type LimitChecker interface {
	CheckLimit(ctx context.Context) (models.UsageQuota, error)
}

// SessionSource is the read side of the identity service.
type SessionSource interface {
	Current() *models.Session
	Subscribe(fn func(*models.Session)) (unsubscribe func())
}

// QuotaCoordinator keeps the last known allowance and decides whether a
// quota-consuming action may start. The server is authoritative; the local
// view is refreshed on identity changes and after every attempt, and no
// reset schedule is assumed.
type QuotaCoordinator struct {
	api         LimitChecker
	sessions    SessionSource
	anonDefault int
	logger      logging.Logger

	mu          sync.RWMutex
	quota       models.UsageQuota
	onLimit     []func()
	unsubscribe func()
}

func NewQuotaCoordinator(api LimitChecker, sessions SessionSource, anonDefault int, logger logging.Logger) *QuotaCoordinator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &QuotaCoordinator{
		api:         api,
		sessions:    sessions,
		anonDefault: anonDefault,
		logger:      logger,
		quota:       models.UsageQuota{Remaining: anonDefault},
	}
}

// Start subscribes to identity changes and performs the initial fetch.
// A failed fetch leaves the anonymous default in place.
func (q *QuotaCoordinator) Start(ctx context.Context) {
	unsub := q.sessions.Subscribe(func(s *models.Session) {
		if s == nil {
			q.set(models.UsageQuota{Remaining: q.anonDefault})
		}
		_, _ = q.Refresh(ctx)
	})

	q.mu.Lock()
	if q.unsubscribe != nil {
		q.unsubscribe()
	}
	q.unsubscribe = unsub
	q.mu.Unlock()

	_, _ = q.Refresh(ctx)
}

// Stop detaches from identity changes.
func (q *QuotaCoordinator) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.unsubscribe != nil {
		q.unsubscribe()
		q.unsubscribe = nil
	}
}

// Refresh re-fetches the allowance. On error the previous view is kept.
func (q *QuotaCoordinator) Refresh(ctx context.Context) (models.UsageQuota, error) {
	fresh, err := q.api.CheckLimit(ctx)
	if err != nil {
		q.logger.Warn(ctx, "quota refresh failed", "error", err)
		return q.Quota(), err
	}
	if fresh.Remaining < 0 {
		fresh.Remaining = 0
	}
	q.set(fresh)
	q.logger.Debug(ctx, "quota refreshed", "remaining", fresh.Remaining, "premium", fresh.IsPremium)
	return fresh, nil
}

func (q *QuotaCoordinator) set(v models.UsageQuota) {
	q.mu.Lock()
	q.quota = v
	q.mu.Unlock()
}

func (q *QuotaCoordinator) Quota() models.UsageQuota {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.quota
}

// Guard refuses to start quota-consuming work when the allowance is spent.
// It fires the limit interrupt and returns client.ErrLimitReached.
func (q *QuotaCoordinator) Guard(ctx context.Context) error {
	if !q.Quota().Exhausted() {
		return nil
	}
	q.logger.Info(ctx, "quota exhausted, action refused")
	q.fireLimit()
	return client.ErrLimitReached
}

// AfterAttempt re-fetches the allowance after a success or a 429. A 429
// also fires the limit interrupt. Other failures leave the view alone.
func (q *QuotaCoordinator) AfterAttempt(ctx context.Context, err error) {
	limited := errors.Is(err, client.ErrLimitReached)
	if err != nil && !limited {
		return
	}
	if limited {
		q.set(models.UsageQuota{Remaining: 0, IsPremium: q.Quota().IsPremium})
		q.fireLimit()
	}
	_, _ = q.Refresh(ctx)
}

// OnLimitReached registers fn to run whenever the limit interrupt fires.
func (q *QuotaCoordinator) OnLimitReached(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onLimit = append(q.onLimit, fn)
}

func (q *QuotaCoordinator) fireLimit() {
	q.mu.RLock()
	fns := append([]func(){}, q.onLimit...)
	q.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}
