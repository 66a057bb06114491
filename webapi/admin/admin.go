// Package admin exposes the back-office endpoints. Every route requires the
// admin role.
package admin

import (
	"fmt"
	"strings"
	"time"

	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/domain/withdrawal"
	"github.com/demonyhq/demony/pkg/dto"
	"github.com/demonyhq/demony/pkg/mapper"
	"github.com/demonyhq/demony/pkg/middleware"
	"github.com/demonyhq/demony/pkg/repository"
	authsvc "github.com/demonyhq/demony/pkg/service/auth"
	investmentsvc "github.com/demonyhq/demony/pkg/service/investment"
	profitsvc "github.com/demonyhq/demony/pkg/service/profit"
	projectsvc "github.com/demonyhq/demony/pkg/service/project"
	reportsvc "github.com/demonyhq/demony/pkg/service/report"
	usersvc "github.com/demonyhq/demony/pkg/service/user"
	withdrawalsvc "github.com/demonyhq/demony/pkg/service/withdrawal"
	"github.com/demonyhq/demony/webapi/common"
	projectweb "github.com/demonyhq/demony/webapi/project"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Services groups what the admin endpoints act on.
type Services struct {
	Auth       *authsvc.Service
	User       *usersvc.Service
	Project    *projectsvc.Service
	Withdrawal *withdrawalsvc.Service
	Profit     *profitsvc.Service
	Investment *investmentsvc.Service
	Report     *reportsvc.Service
}

// Routes registers the /admin group.
func Routes(app *fiber.App, svc Services, cfg *config.App, code money.Code) {
	g := app.Group("/admin",
		middleware.JwtProtected(cfg.Auth.Jwt),
		middleware.RequireRole(svc.Auth, user.RoleAdmin),
	)
	g.Get("/stats", Stats(svc.Report, code))
	g.Get("/users", ListUsers(svc.User, code))
	g.Get("/users/:id", GetUser(svc.Report, code))
	g.Post("/users/:id/kyc", ReviewKYC(svc.User, code))
	g.Post("/users/:id/status", SetUserStatus(svc.User))

	g.Get("/projects", ListProjects(svc.Project, code))
	g.Post("/projects", CreateProject(svc.Project, code))
	g.Put("/projects/:id", UpdateProject(svc.Project, code))
	g.Post("/projects/:id/review", ReviewProject(svc.Project, code))
	g.Put("/projects/:id/status", SetProjectStatus(svc.Project))
	g.Delete("/projects/:id", RemoveProject(svc.Project))
	g.Get("/projects/:id/investments", ProjectInvestments(svc.Investment, code))
	g.Post("/projects/:id/distribute-profits", DistributeProfits(svc.Profit, code))

	g.Get("/withdrawals", ListWithdrawals(svc.Withdrawal, code))
	g.Post("/withdrawals/:id/process", ProcessWithdrawal(svc.Withdrawal, svc.Auth, code))

	g.Get("/profit-runs/:runID", GetRun(svc.Profit, code))
	g.Get("/reports/profit-splits", ProfitSplits(svc.Profit, code))
	g.Get("/reports/financial", FinancialReport(svc.Report, code))
}

// Stats returns platform counters and totals.
// @Summary Platform stats
// @Tags admin
// @Produce json
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Router /admin/stats [get]
// @Security Bearer
func Stats(reportSvc *reportsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := reportSvc.Stats(c.Context())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load stats", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Stats fetched", mapper.MapStatsToRead(s, code))
	}
}

// FinancialReport sums the money that moved in a period.
// @Summary Financial report
// @Description Investments, completed withdrawals and profit distributions in [from, to), with a daily investment breakdown. Dates are UTC, YYYY-MM-DD or RFC 3339. Defaults to the last 30 days.
// @Tags admin
// @Produce json
// @Param from query string false "Period start"
// @Param to query string false "Period end, exclusive"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /admin/reports/financial [get]
// @Security Bearer
func FinancialReport(reportSvc *reportsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := dateQuery(c, "from")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid period", err)
		}
		to, err := dateQuery(c, "to")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid period", err)
		}
		f, err := reportSvc.Financial(c.Context(), from, to)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't build report", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Financial report", mapper.MapFinancialToRead(f, code))
	}
}

func dateQuery(c *fiber.Ctx, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD or RFC 3339", domain.ErrValidation, key)
	}
	return t, nil
}

// GetUser returns one user with their investments and recent transactions.
// @Summary User detail
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Param page query int false "Transaction page" default(1)
// @Param limit query int false "Transactions per page" default(20)
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/users/{id} [get]
// @Security Bearer
func GetUser(reportSvc *reportsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		page := common.PageQuery(c)
		d, err := reportSvc.UserDetail(c.Context(), id, journal.Filter{Page: page.Page, Limit: page.Limit})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User fetched", mapper.MapUserDetailToRead(d, code))
	}
}

// ProjectInvestments lists a project's investments.
// @Summary Project investments
// @Tags admin
// @Produce json
// @Param id path string true "Project ID"
// @Param status query string false "pending_payment, active or payment_failed"
// @Success 200 {object} common.Response
// @Router /admin/projects/{id}/investments [get]
// @Security Bearer
func ProjectInvestments(investmentSvc *investmentsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		status := investment.Status(c.Query("status"))
		invs, err := investmentSvc.ListByProject(c.Context(), id, status)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list investments", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Investments fetched",
			mapper.MapProjectInvestmentsToRead(id, status, invs, code))
	}
}

// ListUsers pages through users.
// @Summary List users
// @Tags admin
// @Produce json
// @Param role query string false "investor, business_owner or admin"
// @Param kyc_status query string false "none, pending, verified or rejected"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /admin/users [get]
// @Security Bearer
func ListUsers(userSvc *usersvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := common.PageQuery(c)
		users, total, err := userSvc.List(c.Context(), repository.UserFilter{
			Role:      user.Role(c.Query("role")),
			KYCStatus: user.KYCStatus(c.Query("kyc_status")),
			Page:      page,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list users", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Users fetched", common.NewPaged(
			mapper.MapSlice(users, code, mapper.MapUserToRead), total, page,
		))
	}
}

// ReviewKYC approves or rejects a user's identity documents.
// @Summary Review KYC
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body KYCInput true "Decision"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/users/{id}/kyc [post]
// @Security Bearer
func ReviewKYC(userSvc *usersvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[KYCInput](c)
		if input == nil {
			return err // error response already written
		}
		u, err := userSvc.ReviewKYC(c.Context(), id, user.KYCDecision(input.Decision), input.Reason)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't review KYC", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "KYC reviewed", mapper.MapUserToRead(u, code))
	}
}

// SetUserStatus suspends or reinstates a user.
// @Summary Set user status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body StatusInput true "Active flag"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/users/{id}/status [post]
// @Security Bearer
func SetUserStatus(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[StatusInput](c)
		if input == nil {
			return err // error response already written
		}
		if err := userSvc.SetActive(c.Context(), id, *input.Active); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't change user status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User status updated", fiber.Map{"active": *input.Active})
	}
}

// ListProjects pages through projects in any status.
// @Summary List all projects
// @Tags admin
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param category query string false "Category"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} common.Response
// @Router /admin/projects [get]
// @Security Bearer
func ListProjects(projectSvc *projectsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := repository.ProjectFilter{Category: c.Query("category"), Page: common.PageQuery(c)}
		if raw := c.Query("status"); raw != "" {
			for _, s := range strings.Split(raw, ",") {
				f.Statuses = append(f.Statuses, project.Status(strings.TrimSpace(s)))
			}
		}
		projects, total, err := projectSvc.AdminList(c.Context(), f)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list projects", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Projects fetched", common.NewPaged(
			mapper.MapSlice(projects, code, mapper.MapProjectToRead), total, f.Page,
		))
	}
}

// CreateProject publishes a project directly.
// @Summary Create project
// @Tags admin
// @Accept json
// @Produce json
// @Param request body project.ProjectInput true "Project data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /admin/projects [post]
// @Security Bearer
func CreateProject(projectSvc *projectsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[projectweb.ProjectInput](c)
		if input == nil {
			return err // error response already written
		}
		params, err := input.Params(code)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err)
		}
		p, err := projectSvc.Create(c.Context(), params)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create project", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Project created", mapper.MapProjectToRead(p, code))
	}
}

// UpdateProject replaces a project's editable fields.
// @Summary Update project
// @Description Changing the goal does not change the ownership of existing investments
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body project.ProjectInput true "Project data"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/projects/{id} [put]
// @Security Bearer
func UpdateProject(projectSvc *projectsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[projectweb.ProjectInput](c)
		if input == nil {
			return err // error response already written
		}
		params, err := input.Params(code)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err)
		}
		p, err := projectSvc.Update(c.Context(), id, params)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update project", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Project updated", mapper.MapProjectToRead(p, code))
	}
}

// ReviewProject approves, rejects or sends back a submitted project.
// @Summary Review project
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body ReviewInput true "Decision"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/projects/{id}/review [post]
// @Security Bearer
func ReviewProject(projectSvc *projectsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[ReviewInput](c)
		if input == nil {
			return err // error response already written
		}
		p, err := projectSvc.Review(c.Context(), id, project.ReviewDecision(input.Decision))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't review project", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Project reviewed", mapper.MapProjectToRead(p, code))
	}
}

// SetProjectStatus forces a project status, e.g. to close funding.
// @Summary Set project status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body ProjectStatusInput true "Status"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/projects/{id}/status [put]
// @Security Bearer
func SetProjectStatus(projectSvc *projectsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[ProjectStatusInput](c)
		if input == nil {
			return err // error response already written
		}
		if err := projectSvc.SetStatus(c.Context(), id, project.Status(input.Status)); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't change project status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Project status updated", fiber.Map{"status": input.Status})
	}
}

// RemoveProject hides a project. Investments and history are kept.
// @Summary Remove project
// @Tags admin
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/projects/{id} [delete]
// @Security Bearer
func RemoveProject(projectSvc *projectsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		if err := projectSvc.Remove(c.Context(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't remove project", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Project removed", nil)
	}
}

// DistributeProfits credits a project's investors with their share of a gross profit.
// @Summary Distribute profits
// @Description Split the investor share of gross_profit by ownership. Retrying with the same run_id never pays twice.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body DistributeInput true "Gross profit in major units"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails "Partially credited; retry with the same run_id"
// @Router /admin/projects/{id}/distribute-profits [post]
// @Security Bearer
func DistributeProfits(profitSvc *profitsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[DistributeInput](c)
		if input == nil {
			return err // error response already written
		}
		gross, err := common.AmountInput(input.GrossProfit, code)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err)
		}
		sum, err := profitSvc.Distribute(c.Context(), id, gross, input.RunID, input.Description)
		if err != nil {
			if sum != nil {
				log.Errorf("Distribution %s incomplete: %v", sum.RunID, err)
				return common.ProblemDetailsJSON(c, "Distribution incomplete", err, mapper.MapSummaryToRead(sum, code))
			}
			return common.ProblemDetailsJSON(c, "Couldn't distribute profits", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Profits distributed", mapper.MapSummaryToRead(sum, code))
	}
}

// GetRun lists the credits of one distribution run.
// @Summary Profit run
// @Tags admin
// @Produce json
// @Param runID path string true "Run ID"
// @Success 200 {object} common.Response
// @Router /admin/profit-runs/{runID} [get]
// @Security Bearer
func GetRun(profitSvc *profitsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ds, err := profitSvc.Run(c.Context(), c.Params("runID"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load run", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Run fetched",
			mapper.MapSlice(ds, code, mapper.MapDistributionToRead))
	}
}

// ProfitSplits reports past distributions grouped by investor share.
// @Summary Profit split audit
// @Description Flag distributions made at a share other than the configured default. Read only.
// @Tags admin
// @Produce json
// @Success 200 {object} common.Response
// @Router /admin/reports/profit-splits [get]
// @Security Bearer
func ProfitSplits(profitSvc *profitsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		audit, err := profitSvc.AuditSplits(c.Context())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to audit splits", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Profit splits", dto.AuditRead{
			DefaultShare: audit.DefaultShare,
			Splits:       mapper.MapSplitsToRead(audit.Splits, code),
			Divergent:    mapper.MapSplitsToRead(audit.Divergent, code),
		})
	}
}

// ListWithdrawals pages through withdrawal requests.
// @Summary List withdrawals
// @Tags admin
// @Produce json
// @Param status query string false "pending, completed, rejected or cancelled"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} common.Response
// @Router /admin/withdrawals [get]
// @Security Bearer
func ListWithdrawals(withdrawalSvc *withdrawalsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := common.PageQuery(c)
		ws, total, err := withdrawalSvc.List(c.Context(), withdrawal.Status(c.Query("status")), page)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list withdrawals", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawals fetched", common.NewPaged(
			mapper.MapSlice(ws, code, mapper.MapWithdrawalToRead), total, page,
		))
	}
}

// ProcessWithdrawal approves or rejects a pending withdrawal. Rejection refunds it.
// @Summary Process withdrawal
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Withdrawal ID"
// @Param request body ProcessWithdrawalInput true "Action"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails "Not pending"
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/withdrawals/{id}/process [post]
// @Security Bearer
func ProcessWithdrawal(withdrawalSvc *withdrawalsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[ProcessWithdrawalInput](c)
		if input == nil {
			return err // error response already written
		}
		var w *withdrawal.Withdrawal
		if input.Action == "approve" {
			w, err = withdrawalSvc.Approve(c.Context(), id, claims.UserID, input.PayoutReference)
		} else {
			w, err = withdrawalSvc.Reject(c.Context(), id, claims.UserID, input.Reason)
		}
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't process withdrawal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal "+string(w.Status), mapper.MapWithdrawalToRead(w, code))
	}
}
