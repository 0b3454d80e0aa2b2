package graphauth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents relevant claims from Microsoft Entra ID JWT tokens.
// Delegated tokens carry upn and scp; app-only tokens carry app_displayname
// and roles.
type TokenClaims struct {
	AppDisplayName string   `json:"app_displayname"` // Application display name from Entra ID
	Upn            string   `json:"upn"`             // Signed-in user principal name (delegated only)
	Scp            string   `json:"scp"`             // Space-separated delegated scopes
	Roles          []string `json:"roles"`           // Assigned application roles (e.g., Calendars.ReadWrite)
	jwt.RegisteredClaims
}

// parseTokenClaims extracts identity and permission claims from a JWT access token.
func parseTokenClaims(tokenString string) (*TokenClaims, error) {
	// Parse without verification (token already validated by Azure SDK)
	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, &TokenClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok {
		return nil, fmt.Errorf("failed to extract claims from token")
	}
	return claims, nil
}

// grantedPermissions flattens roles (app-only) and scp (delegated) into a
// single permission list.
func (c *TokenClaims) grantedPermissions() []string {
	if len(c.Roles) > 0 {
		return c.Roles
	}
	if c.Scp != "" {
		return strings.Fields(c.Scp)
	}
	return nil
}
