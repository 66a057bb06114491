package auth

import "github.com/demonyhq/demony/pkg/dto"

// SignupInput represents the request body for creating an account.
type SignupInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=investor business_owner"`
}

// LoginInput represents the request body for user login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// TokenResponse carries an issued token with the account it belongs to.
type TokenResponse struct {
	Token string       `json:"token"`
	User  dto.UserRead `json:"user"`
}
