// Package types provides type definitions for structured data used throughout the discovery pipeline.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// TokenRequest represents a request to exchange the API password for a token.
type TokenRequest struct {
	Password string `json:"password" validate:"required"`
}

// TokenResponse represents an issued API token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Validate validates the TokenRequest using the validator.
func (r *TokenRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
