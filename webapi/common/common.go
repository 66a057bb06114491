// Package common holds the response envelope, RFC 9457 problem details and
// request binding shared by every route package.
package common

import (
	"errors"
	"strconv"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
}

// Paged wraps a list response with its total count.
type Paged[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// NewPaged builds a Paged response.
func NewPaged[T any](items []T, total int64, page repository.Page) Paged[T] {
	return Paged[T]{Items: items, Total: total, Page: page.Page, Limit: page.Limit}
}

const internalDetail = "An unexpected error occurred"

var validate = validator.New()

// SuccessResponseJSON writes the standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ProblemDetailsJSON writes an application/problem+json response.
//
// args may hold a string detail and an int status, in any order. Without an
// explicit status it is derived from err. Server errors never leak err to the
// client; they are logged instead.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, args ...any) error {
	status := 0
	detail := ""
	var extra any
	for _, a := range args {
		switch v := a.(type) {
		case int:
			status = v
		case string:
			detail = v
		default:
			extra = v
		}
	}
	if status == 0 {
		status = fiber.StatusBadRequest
		if err != nil {
			status = ErrorToStatusCode(err)
		}
	}
	if detail == "" && err != nil {
		detail = err.Error()
	}
	if status >= fiber.StatusInternalServerError {
		if err != nil {
			log.Errorw("request failed", "path", c.OriginalURL(), "status", status, "error", err)
		}
		if status == fiber.StatusInternalServerError {
			detail = internalDetail
		}
	}

	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.OriginalURL(),
		Errors:   extra,
	})
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrBelowMinimum),
		errors.Is(err, domain.ErrNotPending),
		errors.Is(err, domain.ErrProjectNotActive),
		errors.Is(err, domain.ErrGoalExceeded),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, money.ErrTooPrecise),
		errors.Is(err, money.ErrInvalidAmountFormat),
		errors.Is(err, money.ErrInvalidCurrencyCode):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrKYCRequired),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrUserSuspended):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrGatewayUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it using go-playground/validator.
// Returns a pointer to the struct (populated), or writes an error response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", err, fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return nil, ProblemDetailsJSON(c, "Validation failed", err, fields, fiber.StatusBadRequest)
		}
		return nil, ProblemDetailsJSON(c, "Validation failed", err, fiber.StatusBadRequest)
	}
	return &input, nil
}

// ParseID reads a UUID path parameter. On failure the problem response is
// already written and ok is false.
func ParseID(c *fiber.Ctx, name string) (id uuid.UUID, ok bool, err error) {
	id, perr := uuid.Parse(c.Params(name))
	if perr != nil {
		log.Errorf("Invalid %s: %v", name, perr)
		return uuid.Nil, false, ProblemDetailsJSON(c, "Invalid "+name, perr, name+" must be a valid UUID", fiber.StatusBadRequest)
	}
	return id, true, nil
}

// PageQuery reads ?page= and ?limit=.
func PageQuery(c *fiber.Ctx) repository.Page {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	return repository.Page{Page: page, Limit: limit}.Normalize()
}

// AmountInput parses a major-unit amount into minor units of code.
func AmountInput(amount float64, code money.Code) (money.Amount, error) {
	m, err := money.FromFloat(amount, code)
	if err != nil {
		return 0, err
	}
	return m.Amount(), nil
}
