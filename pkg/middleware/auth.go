// Package middleware holds the fiber authentication middleware.
package middleware

import (
	"errors"
	"slices"
	"strings"

	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain/user"
	authsvc "github.com/demonyhq/demony/pkg/service/auth"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const claimsKey = "claims"

// ErrMissingUserContext is returned when no verified token is on the request.
var ErrMissingUserContext = errors.New("missing user context")

// JwtProtected verifies the bearer token and stores it under "user".
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	secret := ""
	if cfg != nil {
		secret = cfg.Secret
	}
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwt.SigningMethodHS256.Name, Key: []byte(secret)},
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	status, title := fiber.StatusUnauthorized, "Invalid or expired JWT"
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) ||
		strings.EqualFold(err.Error(), jwtware.ErrJWTMissingOrMalformed.Error()) {
		status, title = fiber.StatusBadRequest, "Missing or malformed JWT"
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(fiber.Map{
		"type":     "about:blank",
		"title":    title,
		"status":   status,
		"detail":   err.Error(),
		"instance": c.OriginalURL(),
	})
}

// Claims returns the caller's claims. They are resolved from the verified
// token once per request.
func Claims(c *fiber.Ctx, authSvc *authsvc.Service) (*authsvc.Claims, error) {
	if claims, ok := c.Locals(claimsKey).(*authsvc.Claims); ok {
		return claims, nil
	}
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, ErrMissingUserContext
	}
	claims, err := authSvc.Claims(token)
	if err != nil {
		return nil, err
	}
	c.Locals(claimsKey, claims)
	return claims, nil
}

// RequireRole rejects callers whose token carries none of roles.
// It must run after JwtProtected.
func RequireRole(authSvc *authsvc.Service, roles ...user.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := Claims(c, authSvc)
		if err != nil {
			return jwtError(c, err)
		}
		if !slices.Contains(roles, claims.Role) {
			c.Set(fiber.HeaderContentType, "application/problem+json")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"type":     "about:blank",
				"title":    "Forbidden",
				"status":   fiber.StatusForbidden,
				"detail":   "insufficient role",
				"instance": c.OriginalURL(),
			})
		}
		return c.Next()
	}
}
