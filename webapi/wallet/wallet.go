package wallet

import (
	"github.com/demonyhq/demony/infra/provider/mockpayment"
	"github.com/demonyhq/demony/infra/provider/paystack"
	"github.com/demonyhq/demony/infra/provider/stripepayment"
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/dto"
	"github.com/demonyhq/demony/pkg/mapper"
	"github.com/demonyhq/demony/pkg/middleware"
	authsvc "github.com/demonyhq/demony/pkg/service/auth"
	walletsvc "github.com/demonyhq/demony/pkg/service/wallet"
	"github.com/demonyhq/demony/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the wallet endpoints.
//
// Routes:
//   - GET  /wallet/balance                     : Balance and running totals.
//   - GET  /wallet/transactions                : The caller's journal, newest first.
//   - POST /wallet/deposit/initialize          : Start a gateway top-up.
//   - GET  /wallet/deposit/verify/:reference   : Settle a top-up after checkout.
//   - POST /wallet/webhook                     : Gateway notifications (signature, no JWT).
func Routes(
	app *fiber.App,
	walletSvc *walletsvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
	code money.Code,
) {
	app.Get("/wallet/balance", middleware.JwtProtected(cfg.Auth.Jwt), GetBalance(walletSvc, authSvc))
	app.Get("/wallet/transactions", middleware.JwtProtected(cfg.Auth.Jwt), GetTransactions(walletSvc, authSvc, code))
	app.Post("/wallet/deposit/initialize", middleware.JwtProtected(cfg.Auth.Jwt), InitializeDeposit(walletSvc, authSvc, code))
	app.Get("/wallet/deposit/verify/:reference", middleware.JwtProtected(cfg.Auth.Jwt), VerifyDeposit(walletSvc, authSvc, code))
	app.Post("/wallet/webhook", Webhook(walletSvc, SignatureHeader(cfg.PaymentProviders.Provider)))
}

// SignatureHeader names the header the configured gateway signs webhooks in.
func SignatureHeader(provider string) string {
	switch provider {
	case "paystack":
		return paystack.SignatureHeader
	case "stripe":
		return stripepayment.SignatureHeader
	default:
		return mockpayment.SignatureHeader
	}
}

// GetBalance returns the caller's wallet.
// @Summary Wallet balance
// @Description Return the wallet balance, total invested and total earnings
// @Tags wallet
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /wallet/balance [get]
// @Security Bearer
func GetBalance(walletSvc *walletsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		b, err := walletSvc.Balance(c.Context(), claims.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", dto.BalanceRead{
			Balance:       mapper.Major(b.Balance, b.Currency),
			TotalInvested: mapper.Major(b.TotalInvested, b.Currency),
			TotalEarnings: mapper.Major(b.TotalEarnings, b.Currency),
			Currency:      b.Currency.String(),
		})
	}
}

// GetTransactions returns a page of the caller's journal.
// @Summary Wallet transactions
// @Description List journal entries, newest first
// @Tags wallet
// @Produce json
// @Param type query string false "investment, withdrawal, deposit, profit or refund"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Router /wallet/transactions [get]
// @Security Bearer
func GetTransactions(walletSvc *walletsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		page := common.PageQuery(c)
		txs, total, err := walletSvc.Transactions(c.Context(), claims.UserID, journal.Filter{
			Type:  journal.Type(c.Query("type")),
			Page:  page.Page,
			Limit: page.Limit,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", common.NewPaged(
			mapper.MapSlice(txs, code, mapper.MapTransactionToRead), total, page,
		))
	}
}

// InitializeDeposit starts a gateway checkout that tops up the wallet.
// @Summary Start deposit
// @Description Open a gateway checkout. The wallet is credited once the payment is verified.
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body DepositInput true "Deposit amount in major units"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 502 {object} common.ProblemDetails
// @Router /wallet/deposit/initialize [post]
// @Security Bearer
func InitializeDeposit(walletSvc *walletsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		input, err := common.BindAndValidate[DepositInput](c)
		if input == nil {
			return err // error response already written
		}
		amount, err := common.AmountInput(input.Amount, code)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err)
		}
		d, err := walletSvc.InitializeDeposit(c.Context(), claims.UserID, amount)
		if err != nil {
			log.Errorf("Failed to initialize deposit: %v", err)
			return common.ProblemDetailsJSON(c, "Couldn't start deposit", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Deposit initialized", mapper.MapDepositToRead(d, code))
	}
}

// VerifyDeposit settles a top-up with the gateway. Safe to call repeatedly.
// @Summary Verify deposit
// @Description Confirm a top-up with the gateway and credit the wallet once
// @Tags wallet
// @Produce json
// @Param reference path string true "Deposit reference"
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 502 {object} common.ProblemDetails
// @Router /wallet/deposit/verify/{reference} [get]
// @Security Bearer
func VerifyDeposit(walletSvc *walletsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		d, err := walletSvc.VerifyDeposit(c.Context(), c.Params("reference"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't verify deposit", err)
		}
		if d.UserID != claims.UserID {
			return common.ProblemDetailsJSON(c, "Deposit not found", domain.ErrNotFound)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Deposit "+string(d.Status), mapper.MapDepositToRead(d, code))
	}
}

// Webhook receives gateway notifications. The body is authenticated by the
// gateway's signature header, not a JWT.
// @Summary Payment webhook
// @Description Settle the deposit or investment a gateway notification refers to
// @Tags wallet
// @Accept json
// @Produce json
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /wallet/webhook [post]
func Webhook(walletSvc *walletsvc.Service, signatureHeader string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := walletSvc.HandleWebhook(c.Context(), c.Body(), c.Get(signatureHeader))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Webhook rejected", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Webhook processed", WebhookResponse{
			Kind:      string(res.Kind),
			Reference: res.Reference,
			Status:    res.Status,
		})
	}
}
