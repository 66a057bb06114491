package withdrawal

import (
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/withdrawal"
	"github.com/demonyhq/demony/pkg/mapper"
	"github.com/demonyhq/demony/pkg/middleware"
	authsvc "github.com/demonyhq/demony/pkg/service/auth"
	withdrawalsvc "github.com/demonyhq/demony/pkg/service/withdrawal"
	"github.com/demonyhq/demony/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the investor withdrawal endpoints.
//
// Routes:
//   - POST   /withdrawals     : Reserve funds and file a payout request.
//   - GET    /withdrawals/my  : The caller's requests.
//   - DELETE /withdrawals/:id : Cancel a pending request and refund it.
func Routes(
	app *fiber.App,
	withdrawalSvc *withdrawalsvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
	code money.Code,
) {
	app.Post("/withdrawals", middleware.JwtProtected(cfg.Auth.Jwt), RequestWithdrawal(withdrawalSvc, authSvc, code))
	app.Get("/withdrawals/my", middleware.JwtProtected(cfg.Auth.Jwt), MyWithdrawals(withdrawalSvc, authSvc, code))
	app.Delete("/withdrawals/:id", middleware.JwtProtected(cfg.Auth.Jwt), CancelWithdrawal(withdrawalSvc, authSvc, code))
}

// RequestWithdrawal reserves the amount and files a pending payout.
// @Summary Request withdrawal
// @Description Debit the wallet and queue a payout for admin processing. Requires verified KYC.
// @Tags withdrawals
// @Accept json
// @Produce json
// @Param request body WithdrawalInput true "Amount in major units, method and account details"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails "KYC required"
// @Failure 422 {object} common.ProblemDetails "Insufficient funds"
// @Router /withdrawals [post]
// @Security Bearer
func RequestWithdrawal(withdrawalSvc *withdrawalsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		input, err := common.BindAndValidate[WithdrawalInput](c)
		if input == nil {
			return err // error response already written
		}
		amount, err := common.AmountInput(input.Amount, code)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err)
		}
		w, err := withdrawalSvc.Request(c.Context(), claims.UserID, amount, withdrawal.Method(input.Method), input.AccountDetails)
		if err != nil {
			log.Infof("Withdrawal rejected: %v", err)
			return common.ProblemDetailsJSON(c, "Withdrawal failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Withdrawal requested", mapper.MapWithdrawalToRead(w, code))
	}
}

// MyWithdrawals lists the caller's withdrawal requests.
// @Summary My withdrawals
// @Tags withdrawals
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /withdrawals/my [get]
// @Security Bearer
func MyWithdrawals(withdrawalSvc *withdrawalsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		ws, err := withdrawalSvc.ListByUser(c.Context(), claims.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list withdrawals", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawals fetched",
			mapper.MapSlice(ws, code, mapper.MapWithdrawalToRead))
	}
}

// CancelWithdrawal cancels a pending request and refunds the reserved amount.
// @Summary Cancel withdrawal
// @Tags withdrawals
// @Produce json
// @Param id path string true "Withdrawal ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails "Not pending"
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /withdrawals/{id} [delete]
// @Security Bearer
func CancelWithdrawal(withdrawalSvc *withdrawalsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		w, err := withdrawalSvc.Cancel(c.Context(), claims.UserID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't cancel withdrawal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal cancelled", mapper.MapWithdrawalToRead(w, code))
	}
}
