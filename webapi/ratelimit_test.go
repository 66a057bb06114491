package webapi_test

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/demonyhq/demony/infra/provider/mockpayment"
	"github.com/demonyhq/demony/pkg/app"
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/service/ledger"
	"github.com/demonyhq/demony/webapi"
	"github.com/demonyhq/demony/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedApp(max int, window time.Duration) *fiber.App {
	cfg := testutils.TestConfig()
	cfg.RateLimit = &config.RateLimit{MaxRequests: max, Window: window}
	return webapi.SetupApp(app.New(&app.Deps{
		Gateway: mockpayment.NewMockPaymentProvider(),
		Policy:  ledger.DefaultPolicy(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, cfg))
}

func TestRateLimit(t *testing.T) {
	app := newLimitedApp(5, time.Second)

	get := func(ip string) int {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		if ip != "" {
			req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close() //nolint: errcheck
		return resp.StatusCode
	}

	for i := 0; i < 6; i++ {
		if i < 5 {
			assert.Equal(t, fiber.StatusOK, get("203.0.113.7"), "request %d", i+1)
		} else {
			assert.Equal(t, fiber.StatusTooManyRequests, get("203.0.113.7"), "request %d", i+1)
		}
	}
	// Keyed by the first forwarded address.
	assert.Equal(t, fiber.StatusOK, get("198.51.100.2"))

	time.Sleep(1100 * time.Millisecond)
	assert.Equal(t, fiber.StatusOK, get("203.0.113.7"))
}
