package portfolio

import (
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/mapper"
	"github.com/demonyhq/demony/pkg/middleware"
	authsvc "github.com/demonyhq/demony/pkg/service/auth"
	portfoliosvc "github.com/demonyhq/demony/pkg/service/portfolio"
	profitsvc "github.com/demonyhq/demony/pkg/service/profit"
	"github.com/demonyhq/demony/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(
	app *fiber.App,
	portfolioSvc *portfoliosvc.Service,
	profitSvc *profitsvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
	code money.Code,
) {
	app.Get("/portfolio", middleware.JwtProtected(cfg.Auth.Jwt), GetPortfolio(portfolioSvc, authSvc, code))
	app.Get("/portfolio/earnings", middleware.JwtProtected(cfg.Auth.Jwt), GetEarnings(profitSvc, authSvc, code))
}

// GetPortfolio returns the caller's holdings and allocation by category.
// @Summary Portfolio
// @Tags portfolio
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /portfolio [get]
// @Security Bearer
func GetPortfolio(portfolioSvc *portfoliosvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		sum, err := portfolioSvc.Summary(c.Context(), claims.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to build portfolio", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Portfolio fetched", mapper.MapPortfolioToRead(sum, code))
	}
}

// GetEarnings lists the profit credits the caller received.
// @Summary Profit history
// @Tags portfolio
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /portfolio/earnings [get]
// @Security Bearer
func GetEarnings(profitSvc *profitsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		ds, err := profitSvc.History(c.Context(), claims.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list earnings", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Earnings fetched",
			mapper.MapSlice(ds, code, mapper.MapDistributionToRead))
	}
}
