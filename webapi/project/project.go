package project

import (
	"strconv"

	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/mapper"
	"github.com/demonyhq/demony/pkg/middleware"
	authsvc "github.com/demonyhq/demony/pkg/service/auth"
	projectsvc "github.com/demonyhq/demony/pkg/service/project"
	"github.com/demonyhq/demony/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the project catalogue and the business owner submission endpoints.
//
// Routes:
//   - GET  /projects              : Active projects, featured first.
//   - GET  /projects/mine         : The caller's submissions.
//   - GET  /projects/:id          : One project.
//   - POST /projects              : Submit a project for review.
//   - PUT  /projects/:id/resubmit : Revise a project sent back for changes.
func Routes(app *fiber.App, projectSvc *projectsvc.Service, authSvc *authsvc.Service, cfg *config.App, code money.Code) {
	owner := []fiber.Handler{
		middleware.JwtProtected(cfg.Auth.Jwt),
		middleware.RequireRole(authSvc, user.RoleBusinessOwner, user.RoleAdmin),
	}
	app.Get("/projects", ListProjects(projectSvc, code))
	app.Get("/projects/mine", append(owner, MyProjects(projectSvc, authSvc, code))...)
	app.Get("/projects/:id", GetProject(projectSvc, code))
	app.Post("/projects", append(owner, SubmitProject(projectSvc, authSvc, code))...)
	app.Put("/projects/:id/resubmit", append(owner, ResubmitProject(projectSvc, authSvc, code))...)
}

// ListProjects returns the public catalogue.
// @Summary List projects
// @Description List active projects, featured and high priority first
// @Tags projects
// @Produce json
// @Param category query string false "Category"
// @Param featured query bool false "Only featured projects"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /projects [get]
func ListProjects(projectSvc *projectsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := projectsvc.Filter{Category: c.Query("category"), Page: common.PageQuery(c)}
		if raw := c.Query("featured"); raw != "" {
			featured, err := strconv.ParseBool(raw)
			if err != nil {
				return common.ProblemDetailsJSON(c, "Invalid query", err, "featured must be a boolean", fiber.StatusBadRequest)
			}
			f.Featured = &featured
		}
		projects, total, err := projectSvc.List(c.Context(), f)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list projects", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Projects fetched", common.NewPaged(
			mapper.MapSlice(projects, code, mapper.MapProjectToRead), total, f.Page,
		))
	}
}

// GetProject returns one project.
// @Summary Get project
// @Description Retrieve a project by ID
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /projects/{id} [get]
func GetProject(projectSvc *projectsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		p, err := projectSvc.Get(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Project not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Project found", mapper.MapProjectToRead(p, code))
	}
}

// MyProjects lists the caller's submissions in every status.
// @Summary My projects
// @Description List the projects the signed-in business owner submitted
// @Tags projects
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /projects/mine [get]
// @Security Bearer
func MyProjects(projectSvc *projectsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		page := common.PageQuery(c)
		projects, total, err := projectSvc.ListByOwner(c.Context(), claims.UserID, page)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list projects", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Projects fetched", common.NewPaged(
			mapper.MapSlice(projects, code, mapper.MapProjectToRead), total, page,
		))
	}
}

// SubmitProject files a project for admin review.
// @Summary Submit project
// @Description Submit a project for admin review. It is listed once approved.
// @Tags projects
// @Accept json
// @Produce json
// @Param request body ProjectInput true "Project data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /projects [post]
// @Security Bearer
func SubmitProject(projectSvc *projectsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		input, err := common.BindAndValidate[ProjectInput](c)
		if input == nil {
			return err // error response already written
		}
		params, err := input.OwnerParams(code)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err)
		}
		p, err := projectSvc.Submit(c.Context(), claims.UserID, params)
		if err != nil {
			log.Errorf("Failed to submit project: %v", err)
			return common.ProblemDetailsJSON(c, "Couldn't submit project", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Project submitted for review", mapper.MapProjectToRead(p, code))
	}
}

// ResubmitProject revises a project an admin sent back for changes.
// @Summary Resubmit project
// @Description Revise a project in changes_requested and queue it for review again
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body ProjectInput true "Project data"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /projects/{id}/resubmit [put]
// @Security Bearer
func ResubmitProject(projectSvc *projectsvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.Claims(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, ok, err := common.ParseID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[ProjectInput](c)
		if input == nil {
			return err // error response already written
		}
		params, err := input.OwnerParams(code)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err)
		}
		p, err := projectSvc.Resubmit(c.Context(), claims.UserID, id, params)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't resubmit project", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Project resubmitted", mapper.MapProjectToRead(p, code))
	}
}
