package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain/user"
	authsvc "github.com/demonyhq/demony/pkg/service/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJwt = &config.Jwt{Secret: "test-secret", Expiry: time.Hour}

func token(t *testing.T, role user.Role) string {
	t.Helper()
	u := &user.User{ID: uuid.New(), Email: "a@example.com", Role: role}
	tok, err := authsvc.NewJWTStrategy(nil, testJwt).GenerateToken(context.Background(), u)
	require.NoError(t, err)
	return tok
}

func protectedApp(roles ...user.Role) *fiber.App {
	authSvc := authsvc.New(authsvc.NewJWTStrategy(nil, testJwt), nil)
	app := fiber.New()
	handlers := []fiber.Handler{JwtProtected(testJwt)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(authSvc, roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		claims, err := Claims(c, authSvc)
		if err != nil {
			return err
		}
		return c.SendString(string(claims.Role))
	})
	app.Get("/", handlers...)
	return app
}

func get(t *testing.T, app *fiber.App, bearer string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck
	return resp.StatusCode
}

func TestJwtProtected(t *testing.T) {
	app := protectedApp()
	assert.Equal(t, fiber.StatusBadRequest, get(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "not-a-token"))
	assert.Equal(t, fiber.StatusOK, get(t, app, token(t, user.RoleInvestor)))

	other := &config.Jwt{Secret: "other", Expiry: time.Hour}
	forged, err := authsvc.NewJWTStrategy(nil, other).GenerateToken(context.Background(), &user.User{ID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, forged))
}

func TestRequireRole(t *testing.T) {
	app := protectedApp(user.RoleAdmin)
	assert.Equal(t, fiber.StatusForbidden, get(t, app, token(t, user.RoleInvestor)))
	assert.Equal(t, fiber.StatusOK, get(t, app, token(t, user.RoleAdmin)))
}

func TestJwtError_Malformed(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return jwtError(c, errors.New("Missing or malformed JWT"))
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected %d, got %d", fiber.StatusBadRequest, resp.StatusCode)
	}
}

func TestJwtError_Invalid(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return jwtError(c, errors.New("any other error"))
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected %d, got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}
}
