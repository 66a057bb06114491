package investment

import (
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/dto"
	"github.com/demonyhq/demony/pkg/mapper"
	"github.com/demonyhq/demony/pkg/middleware"
	authsvc "github.com/demonyhq/demony/pkg/service/auth"
	investmentsvc "github.com/demonyhq/demony/pkg/service/investment"
	"github.com/demonyhq/demony/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Routes registers the investment endpoints. All of them require a token.
//
// Routes:
//   - POST /investments                     : Invest from the wallet.
//   - POST /investments/checkout            : Invest through a gateway checkout.
//   - GET  /investments/verify/:reference   : Settle a gateway-backed investment.
//   - GET  /investments/my                  : The caller's investments.
//   - GET  /investments/:id                 : One of the caller's investments.
func Routes(
	app *fiber.App,
	investmentSvc *investmentsvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
	code money.Code,
) {
	app.Post("/investments", middleware.JwtProtected(cfg.Auth.Jwt), CreateInvestment(investmentSvc, authSvc, code))
	app.Post("/investments/checkout", middleware.JwtProtected(cfg.Auth.Jwt), InitiateInvestment(investmentSvc, authSvc, code))
	app.Get("/investments/verify/:reference", middleware.JwtProtected(cfg.Auth.Jwt), VerifyInvestment(investmentSvc, authSvc, code))
	app.Get("/investments/my", middleware.JwtProtected(cfg.Auth.Jwt), MyInvestments(investmentSvc, authSvc, code))
	app.Get("/investments/:id", middleware.JwtProtected(cfg.Auth.Jwt), GetInvestment(investmentSvc, authSvc, code))
}

func bind(c *fiber.Ctx, code money.Code) (projectID uuid.UUID, amount money.Amount, ok bool, err error) {
	input, err := common.BindAndValidate[InvestInput](c)
	if input == nil {
		return uuid.Nil, 0, false, err
	}
	projectID, err = uuid.Parse(input.ProjectID)
	if err != nil {
		return uuid.Nil, 0, false, common.ProblemDetailsJSON(c, "Invalid project_id", err, fiber.StatusBadRequest)
	}
	amount, err = common.AmountInput(input.Amount, code)
	if err != nil {
		return uuid.Nil, 0, false, common.ProblemDetailsJSON(c, "Invalid amount", err)
	}
	return projectID, amount, true, nil
}

// CreateInvestment invests from the caller's wallet.
// @Summary Invest from wallet
// @Description Debit the wallet and record an active investment in one step
// @Tags investments
// @Accept json
// @Produce json
// @Param request body InvestInput true "Project and amount in major units"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails "Insufficient funds"
// @Router /investments [post]
// @Security Bearer
func CreateInvestment(investmentSvc *investmentsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		projectID, amount, ok, err := bind(c, code)
		if !ok {
			return err
		}
		inv, err := investmentSvc.CreateInvestment(c.Context(), claims.UserID, projectID, amount)
		if err != nil {
			log.Infof("Investment rejected: %v", err)
			return common.ProblemDetailsJSON(c, "Investment failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Investment created", mapper.MapInvestmentToRead(inv, code))
	}
}

// InitiateInvestment opens a gateway checkout for an investment.
// @Summary Invest through checkout
// @Description Create a pending investment and a gateway checkout to pay for it
// @Tags investments
// @Accept json
// @Produce json
// @Param request body InvestInput true "Project and amount in major units"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 502 {object} common.ProblemDetails
// @Router /investments/checkout [post]
// @Security Bearer
func InitiateInvestment(investmentSvc *investmentsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		projectID, amount, ok, err := bind(c, code)
		if !ok {
			return err
		}
		co, err := investmentSvc.InitiateInvestment(c.Context(), claims.UserID, projectID, amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't start checkout", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Checkout started", CheckoutResponse{
			Investment:   mapper.MapInvestmentToRead(co.Investment, code),
			CheckoutRead: dto.CheckoutRead{AuthorizationURL: co.AuthorizationURL, Reference: co.Reference},
		})
	}
}

// VerifyInvestment settles a gateway-backed investment. Safe to call repeatedly.
// @Summary Verify investment payment
// @Description Confirm the payment with the gateway and activate the investment once
// @Tags investments
// @Produce json
// @Param reference path string true "Payment reference"
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 502 {object} common.ProblemDetails
// @Router /investments/verify/{reference} [get]
// @Security Bearer
func VerifyInvestment(investmentSvc *investmentsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		inv, err := investmentSvc.VerifyInvestment(c.Context(), c.Params("reference"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't verify payment", err)
		}
		if inv.UserID != claims.UserID {
			return common.ProblemDetailsJSON(c, "Investment not found", domain.ErrNotFound)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Investment "+string(inv.Status), mapper.MapInvestmentToRead(inv, code))
	}
}

// MyInvestments lists the caller's investments.
// @Summary My investments
// @Description List the signed-in user's investments, oldest first
// @Tags investments
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /investments/my [get]
// @Security Bearer
func MyInvestments(investmentSvc *investmentsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		invs, err := investmentSvc.ListByUser(c.Context(), claims.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list investments", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Investments fetched",
			mapper.MapSlice(invs, code, mapper.MapInvestmentToRead))
	}
}

// GetInvestment returns one of the caller's investments.
// @Summary Get investment
// @Tags investments
// @Produce json
// @Param id path string true "Investment ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /investments/{id} [get]
// @Security Bearer
func GetInvestment(investmentSvc *investmentsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		inv, err := investmentSvc.Get(c.Context(), claims.UserID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Investment not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Investment found", mapper.MapInvestmentToRead(inv, code))
	}
}
