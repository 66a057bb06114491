package user

import (
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/mapper"
	"github.com/demonyhq/demony/pkg/middleware"
	authsvc "github.com/demonyhq/demony/pkg/service/auth"
	usersvc "github.com/demonyhq/demony/pkg/service/user"
	"github.com/demonyhq/demony/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the signed-in user's profile endpoints.
func Routes(app *fiber.App, userSvc *usersvc.Service, authSvc *authsvc.Service, cfg *config.App, code money.Code) {
	app.Get("/me", middleware.JwtProtected(cfg.Auth.Jwt), Me(userSvc, authSvc, code))
	app.Post("/me/kyc", middleware.JwtProtected(cfg.Auth.Jwt), SubmitKYC(userSvc, authSvc))
}

// Me returns the signed-in user.
// @Summary Current user
// @Description Return the profile and wallet totals of the signed-in user
// @Tags users
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /me [get]
// @Security Bearer
func Me(userSvc *usersvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		u, err := userSvc.Get(c.Context(), claims.UserID)
		if err != nil {
			log.Errorf("Failed to load user %s: %v", claims.UserID, err)
			return common.ProblemDetailsJSON(c, "User not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User found", mapper.MapUserToRead(u, code))
	}
}

// SubmitKYC queues the signed-in user for identity review.
// @Summary Submit KYC
// @Description Submit the signed-in user's identity documents for admin review
// @Tags users
// @Produce json
// @Success 202 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Router /me/kyc [post]
// @Security Bearer
func SubmitKYC(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		if err := userSvc.SubmitKYC(c.Context(), claims.UserID); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't submit KYC", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusAccepted, "KYC submitted for review", nil)
	}
}
