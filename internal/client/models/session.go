// Package models contains the client-side data types exchanged with the
// document API and the identity service.
package models

import "time"

// Session is the signed-in identity. A nil *Session means anonymous.
type Session struct {
	UserID       string
	Email        string
	IsPremium    bool
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the access token is past its expiry, with leeway
// so a token is refreshed slightly before the server would reject it.
func (s *Session) Expired(now time.Time, leeway time.Duration) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(leeway).Before(s.ExpiresAt)
}

// UsageQuota is the daily allowance reported by /api/check-limit.
type UsageQuota struct {
	Remaining int  `json:"remaining"`
	IsPremium bool `json:"is_premium"`
}

// Exhausted is true when a non-premium identity has nothing left.
func (q UsageQuota) Exhausted() bool {
	return !q.IsPremium && q.Remaining <= 0
}

// Health is the /api/health payload.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
