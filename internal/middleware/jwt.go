package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// BearerAuth rejects requests without a valid bearer token and stores the
// token subject in c.Locals(localKey).
func BearerAuth(verifier TokenVerifier, localKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authz == "" {
			return fiber.NewError(http.StatusUnauthorized, "No token")
		}
		scheme, token, found := strings.Cut(authz, " ")
		if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			return fiber.NewError(http.StatusUnauthorized, "Invalid token")
		}
		userID, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "Invalid token")
		}
		c.Locals(localKey, userID)
		return c.Next()
	}
}
