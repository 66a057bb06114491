package dto

import (
	"time"

	"github.com/google/uuid"
)

// UserRead is the API view of a user. The password hash is never exposed.
type UserRead struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Role               string    `json:"role"`
	WalletBalance      float64   `json:"wallet_balance"`
	TotalInvested      float64   `json:"total_invested"`
	TotalEarnings      float64   `json:"total_earnings"`
	Currency           string    `json:"currency"`
	IsVerified         bool      `json:"is_verified"`
	KYCStatus          string    `json:"kyc_status"`
	KYCRejectionReason string    `json:"kyc_rejection_reason,omitempty"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}

// BalanceRead is the wallet summary.
type BalanceRead struct {
	Balance       float64 `json:"balance"`
	TotalInvested float64 `json:"total_invested"`
	TotalEarnings float64 `json:"total_earnings"`
	Currency      string  `json:"currency"`
}
