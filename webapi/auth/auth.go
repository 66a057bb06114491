package auth

import (
	"errors"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/mapper"
	authsvc "github.com/demonyhq/demony/pkg/service/auth"
	usersvc "github.com/demonyhq/demony/pkg/service/user"
	"github.com/demonyhq/demony/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the public authentication endpoints.
func Routes(app *fiber.App, userSvc *usersvc.Service, authSvc *authsvc.Service, code money.Code) {
	app.Post("/auth/signup", Signup(userSvc, authSvc, code))
	app.Post("/auth/login", Login(authSvc, code))
}

// Signup creates an account and signs it in.
// @Summary Sign up
// @Description Create an investor or business owner account and receive a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupInput true "Account data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /auth/signup [post]
func Signup(userSvc *usersvc.Service, authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[SignupInput](c)
		if input == nil {
			return err // error response already written
		}
		u, err := userSvc.Signup(c.Context(), input.Name, input.Email, input.Password, user.Role(input.Role))
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return common.ProblemDetailsJSON(c, "Email already registered", err, "An account with this email already exists")
			}
			return common.ProblemDetailsJSON(c, "Couldn't create account", err)
		}
		token, err := authSvc.GenerateToken(c.Context(), u)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created",
			TokenResponse{Token: token, User: mapper.MapUserToRead(u, code)})
	}
}

// Login handles user authentication and returns a JWT token.
// @Summary User login
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /auth/login [post]
func Login(authSvc *authsvc.Service, code money.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginInput](c)
		if input == nil {
			return err // Error already written by BindAndValidate
		}
		u, err := authSvc.Login(c.Context(), input.Email, input.Password)
		switch {
		case errors.Is(err, domain.ErrUserSuspended):
			return common.ProblemDetailsJSON(c, "Account suspended", err, "This account has been suspended")
		case errors.Is(err, domain.ErrUnauthorized):
			return common.ProblemDetailsJSON(c, "Invalid email or password", nil, "Email or password is incorrect", fiber.StatusUnauthorized)
		case err != nil:
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		token, err := authSvc.GenerateToken(c.Context(), u)
		if err != nil {
			log.Errorf("Failed to issue token: %v", err)
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Success login",
			TokenResponse{Token: token, User: mapper.MapUserToRead(u, code)})
	}
}
