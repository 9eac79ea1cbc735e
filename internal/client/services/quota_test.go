package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/aidocpro/internal/client/client"
	"github.com/dmitrijs2005/aidocpro/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuota_StartsWithAnonymousDefault(t *testing.T) {
	api := &fakeAPI{limitErr: errors.New("offline")}
	q := NewQuotaCoordinator(api, newFakeSessions(nil), 5, nil)

	q.Start(context.Background())

	assert.Equal(t, models.UsageQuota{Remaining: 5}, q.Quota())
	assert.Equal(t, 1, api.limitCalls(), "initial resolution fetches once")
}

func TestQuota_RefetchesOnIdentityChange(t *testing.T) {
	api := &fakeAPI{limits: []models.UsageQuota{{Remaining: 2}, {Remaining: 0, IsPremium: true}, {Remaining: 4}}}
	sessions := newFakeSessions(nil)
	q := NewQuotaCoordinator(api, sessions, 5, nil)

	q.Start(context.Background())
	assert.Equal(t, 2, q.Quota().Remaining)

	sessions.emit(&models.Session{UserID: "u1", IsPremium: true})
	assert.True(t, q.Quota().IsPremium)
	assert.False(t, q.Quota().Exhausted())

	sessions.emit(nil)
	assert.Equal(t, 4, q.Quota().Remaining)
	assert.Equal(t, 3, api.limitCalls())

	q.Stop()
	sessions.emit(nil)
	assert.Equal(t, 3, api.limitCalls(), "no fetch after Stop")
}

func TestQuota_AnonymousResetsToDefaultWhenFetchFails(t *testing.T) {
	api := &fakeAPI{limits: []models.UsageQuota{{Remaining: 0}}}
	sessions := newFakeSessions(&models.Session{UserID: "u1"})
	q := NewQuotaCoordinator(api, sessions, 5, nil)
	q.Start(context.Background())
	require.True(t, q.Quota().Exhausted())

	api.limitErr = errors.New("down")
	sessions.emit(nil)

	assert.Equal(t, 5, q.Quota().Remaining)
}

func TestQuota_RefreshClampsNegative(t *testing.T) {
	api := &fakeAPI{limits: []models.UsageQuota{{Remaining: -3}}}
	q := NewQuotaCoordinator(api, newFakeSessions(nil), 5, nil)

	got, err := q.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Remaining)
}

func TestQuota_GuardFiresInterrupt(t *testing.T) {
	api := &fakeAPI{limits: []models.UsageQuota{{Remaining: 0}}}
	q := NewQuotaCoordinator(api, newFakeSessions(nil), 5, nil)

	fired := 0
	q.OnLimitReached(func() { fired++ })

	require.NoError(t, q.Guard(context.Background()), "default allowance lets work start")

	_, err := q.Refresh(context.Background())
	require.NoError(t, err)

	err = q.Guard(context.Background())
	assert.ErrorIs(t, err, client.ErrLimitReached)
	assert.Equal(t, 1, fired)
}

func TestQuota_GuardIgnoresPremium(t *testing.T) {
	api := &fakeAPI{limits: []models.UsageQuota{{Remaining: 0, IsPremium: true}}}
	q := NewQuotaCoordinator(api, newFakeSessions(nil), 5, nil)
	_, _ = q.Refresh(context.Background())

	assert.NoError(t, q.Guard(context.Background()))
}

func TestQuota_AfterAttempt(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantFetch int
		wantFired int
	}{
		{name: "success refetches", err: nil, wantFetch: 1},
		{name: "429 refetches and interrupts", err: &client.APIError{StatusCode: 429}, wantFetch: 1, wantFired: 1},
		{name: "other failure leaves view", err: &client.APIError{StatusCode: 500, Detail: "boom"}, wantFetch: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{limits: []models.UsageQuota{{Remaining: 1}}}
			q := NewQuotaCoordinator(api, newFakeSessions(nil), 5, nil)
			fired := 0
			q.OnLimitReached(func() { fired++ })

			q.AfterAttempt(context.Background(), tt.err)

			assert.Equal(t, tt.wantFetch, api.limitCalls())
			assert.Equal(t, tt.wantFired, fired)
		})
	}
}

func TestQuota_429WithFailedRefetchStaysExhausted(t *testing.T) {
	api := &fakeAPI{limitErr: errors.New("down")}
	q := NewQuotaCoordinator(api, newFakeSessions(nil), 5, nil)

	q.AfterAttempt(context.Background(), &client.APIError{StatusCode: 429})

	assert.True(t, q.Quota().Exhausted())
}
