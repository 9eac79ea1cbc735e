package identity

import (
	"fmt"

	"github.com/dmitrijs2005/aidocpro/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the provider's access token the client reads.
type Claims struct {
	jwt.RegisteredClaims
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// IsPremium reads the premium flag the backend stores in user metadata.
func (c *Claims) IsPremium() bool {
	v, _ := c.UserMetadata["is_premium"].(bool)
	return v
}

// ParseAccessToken decodes the token's claims without verifying the
// signature. The client holds no signing key; the API verifies the token.
func ParseAccessToken(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}
	return claims, nil
}
