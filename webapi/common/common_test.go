package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorToStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInsufficientFunds, fiber.StatusUnprocessableEntity},
		{fmt.Errorf("wrap: %w", domain.ErrBelowMinimum), fiber.StatusBadRequest},
		{domain.ErrProjectNotActive, fiber.StatusBadRequest},
		{domain.ErrNotPending, fiber.StatusBadRequest},
		{domain.ErrInvalidSignature, fiber.StatusBadRequest},
		{money.ErrTooPrecise, fiber.StatusBadRequest},
		{user.ErrInvalidRole, fiber.StatusBadRequest},
		{domain.ErrUnauthorized, fiber.StatusUnauthorized},
		{domain.ErrKYCRequired, fiber.StatusForbidden},
		{domain.ErrNotOwner, fiber.StatusForbidden},
		{domain.ErrUserSuspended, fiber.StatusForbidden},
		{domain.ErrProjectNotFound, fiber.StatusNotFound},
		{domain.ErrUserNotFound, fiber.StatusNotFound},
		{domain.ErrAlreadyExists, fiber.StatusConflict},
		{domain.ErrGatewayUnavailable, fiber.StatusBadGateway},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorToStatusCode(tc.err))
		})
	}
}

func problem(t *testing.T, h fiber.Handler) (int, ProblemDetails) {
	t.Helper()
	app := fiber.New()
	app.Post("/", h)
	req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(`{"amount":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	var p ProblemDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	return resp.StatusCode, p
}

func TestProblemDetailsJSON_HidesInternalErrors(t *testing.T) {
	status, p := problem(t, func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Failed", errors.New("pq: connection refused"))
	})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, internalDetail, p.Detail)
}

func TestProblemDetailsJSON_DomainError(t *testing.T) {
	status, p := problem(t, func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Investment failed", domain.ErrInsufficientFunds)
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "Investment failed", p.Title)
	assert.Equal(t, domain.ErrInsufficientFunds.Error(), p.Detail)
}

func TestBindAndValidate(t *testing.T) {
	type input struct {
		Amount float64 `json:"amount" validate:"required,gt=0"`
	}
	status, p := problem(t, func(c *fiber.Ctx) error {
		in, err := BindAndValidate[input](c)
		if in == nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", p.Title)
}

func TestAmountInput(t *testing.T) {
	got, err := AmountInput(200.5, "GHS")
	require.NoError(t, err)
	assert.Equal(t, money.Amount(20050), got)

	_, err = AmountInput(1.005, "GHS")
	assert.ErrorIs(t, err, money.ErrTooPrecise)
}
