// services/errors.go
package services

import "errors"

// Player-facing operation failures.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientScore = errors.New("insufficient score for this action")
	ErrMathOverflow      = errors.New("math overflow")
)

// Bootstrap and gateway failures.
var (
	ErrNotInitialized           = errors.New("game config not initialized")
	ErrAlreadyInitialized       = errors.New("game config already initialized")
	ErrInvalidConfig            = errors.New("invalid game config")
	ErrInvalidBatch             = errors.New("invalid batch size")
	ErrVaultMismatch            = errors.New("reward vault does not match game config")
	ErrInsufficientVaultBalance = errors.New("reward vault balance too low")
	ErrRewardAccountMissing     = errors.New("reward token account not found for player")
	ErrTransferRejected         = errors.New("transfer rejected by gateway")
)
