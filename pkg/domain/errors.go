package domain

import "errors"

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when a user is not authorized to perform an action
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a user is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")
)

// Ledger errors
var (
	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds is returned when a wallet cannot cover a debit.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBelowMinimum is returned when an amount is below the configured minimum.
	ErrBelowMinimum = errors.New("amount below minimum")
	// ErrUserNotFound is returned when the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserSuspended is returned for deactivated accounts.
	ErrUserSuspended = errors.New("user suspended")
	// ErrProjectNotFound is returned when the project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectNotActive is returned when a project does not accept funding.
	ErrProjectNotActive = errors.New("project not active")
	// ErrGoalExceeded is returned when overfunding is disabled and the goal would be passed.
	ErrGoalExceeded = errors.New("funding goal exceeded")
	// ErrKYCRequired is returned when an operation needs a verified user.
	ErrKYCRequired = errors.New("kyc verification required")
	// ErrNotPending is returned when a status transition finds the record already settled.
	ErrNotPending = errors.New("not pending")
	// ErrNotOwner is returned when a user acts on a record they do not own.
	ErrNotOwner = errors.New("not owner")
	// ErrGatewayUnavailable is returned when the payment gateway fails or times out.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrInvalidSignature is returned when a webhook signature does not verify.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)
