// Package webapi exposes the ledger over HTTP. Routes live in sub-packages:
//   - auth: signup and login
//   - user: the signed-in user and KYC submission
//   - project: the public catalogue and owner submissions
//   - wallet: balance, journal, gateway top-ups and webhooks
//   - investment: direct and gateway-backed investments
//   - withdrawal: payout requests
//   - portfolio: holdings and profit history
//   - admin: back-office operations
package webapi

import (
	"errors"
	"strings"

	"github.com/demonyhq/demony/pkg/app"
	adminweb "github.com/demonyhq/demony/webapi/admin"
	authweb "github.com/demonyhq/demony/webapi/auth"
	"github.com/demonyhq/demony/webapi/common"
	investmentweb "github.com/demonyhq/demony/webapi/investment"
	portfolioweb "github.com/demonyhq/demony/webapi/portfolio"
	projectweb "github.com/demonyhq/demony/webapi/project"
	userweb "github.com/demonyhq/demony/webapi/user"
	walletweb "github.com/demonyhq/demony/webapi/wallet"
	withdrawalweb "github.com/demonyhq/demony/webapi/withdrawal"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(app *app.App) *fiber.App {
	code := app.Deps.Policy.Currency

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return common.ProblemDetailsJSON(c, fe.Message, err, fe.Code)
			}
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		WithCredentials:      true,
		PersistAuthorization: true,
		OAuth2RedirectUrl:    "/auth/login",
	}))

	// Uses X-Forwarded-For when behind a proxy, then X-Real-IP, then the peer.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        app.Config.RateLimit.MaxRequests,
		Expiration: app.Config.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				// Take the first IP in the chain
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get(
		"/",
		func(c *fiber.Ctx) error {
			return c.SendString("Demony API is running! 🚀")
		},
	)
	fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Debug endpoint to list all routes
	fiberApp.Get("/debug/routes", func(c *fiber.Ctx) error {
		routes := fiberApp.GetRoutes()
		var routeList []map[string]any
		for _, route := range routes {
			if route.Path != "" {
				routeList = append(routeList, map[string]any{
					"method": route.Method,
					"path":   route.Path,
				})
			}
		}
		return c.JSON(routeList)
	})

	authweb.Routes(fiberApp, app.UserService, app.AuthService, code)
	userweb.Routes(fiberApp, app.UserService, app.AuthService, app.Config, code)
	projectweb.Routes(fiberApp, app.ProjectService, app.AuthService, app.Config, code)
	walletweb.Routes(fiberApp, app.WalletService, app.AuthService, app.Config, code)
	investmentweb.Routes(fiberApp, app.InvestmentService, app.AuthService, app.Config, code)
	withdrawalweb.Routes(fiberApp, app.WithdrawalService, app.AuthService, app.Config, code)
	portfolioweb.Routes(fiberApp, app.PortfolioService, app.ProfitService, app.AuthService, app.Config, code)
	adminweb.Routes(fiberApp, adminweb.Services{
		Auth:       app.AuthService,
		User:       app.UserService,
		Project:    app.ProjectService,
		Withdrawal: app.WithdrawalService,
		Profit:     app.ProfitService,
		Investment: app.InvestmentService,
		Report:     app.ReportService,
	}, app.Config, code)
	return fiberApp
}
