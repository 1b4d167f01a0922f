// internal/pkg/jwt/claims.go
package jwt

import (
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity provider's access token claims the CRM reads.
type Claims struct {
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Actor is the display name recorded on timeline events.
func (c *Claims) Actor() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}
	return slices.Contains(c.Audience, audience)
}
