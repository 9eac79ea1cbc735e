package cli

import (
	"context"

	"github.com/dmitrijs2005/aidocpro/internal/common"
)

// Status probes the API and prints connectivity, identity and quota.
func (a *App) Status(ctx context.Context) error {
	h, err := a.api.Health(ctx)
	if err != nil {
		a.setMode(ctx, ModeOffline)
		a.println(common.MsgServerUnavailable)
	} else {
		a.setMode(ctx, ModeOnline)
		a.printf("Server: %s (%s)\n", h.Status, h.Timestamp)
	}

	if err := a.WhoAmI(ctx); err != nil {
		return err
	}

	q := a.quota.Quota()
	a.println(common.QuotaLine(q.Remaining, q.IsPremium))
	return nil
}

// Quota re-fetches and prints the allowance.
func (a *App) Quota(ctx context.Context) error {
	q, err := a.quota.Refresh(ctx)
	if err != nil {
		return err
	}
	a.println(common.QuotaLine(q.Remaining, q.IsPremium))
	return nil
}
