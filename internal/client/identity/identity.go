// Package identity is the client for the Supabase-compatible auth service.
//
// It signs users in and out, persists the refresh token in the local store
// so a restarted CLI resolves the existing session, refreshes access tokens
// shortly before they expire, and notifies subscribers on every session
// change.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aidocpro/internal/client/models"
)

var (
	ErrNoSession   = errors.New("no active session")
	ErrUnavailable = errors.New("identity service unavailable")
)

// Service is what the rest of the client needs from the identity provider.
type Service interface {
	SignIn(ctx context.Context, email string, password []byte) (*models.Session, error)
	// SignUp returns a nil session when the provider requires email
	// confirmation before the first sign-in.
	SignUp(ctx context.Context, email string, password []byte) (*models.Session, error)
	ResetPassword(ctx context.Context, email string) error
	SignOut(ctx context.Context) error

	// Restore resolves a persisted session and notifies subscribers with the
	// outcome, nil included.
	Restore(ctx context.Context) (*models.Session, error)
	Current() *models.Session
	Subscribe(fn func(*models.Session)) (unsubscribe func())

	Credentials(ctx context.Context) (userID, accessToken string)
}

// ProviderError is a failed call to the identity service. Error returns the
// provider's own message so it can be shown verbatim.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("identity error: status %d", e.StatusCode)
}
