package models

import "errors"

var (
	// Lifecycle errors
	ErrInvalidStateTransition    = errors.New("invalid state transition")
	ErrMarketNotActive           = errors.New("market is not active for trading")
	ErrMarketNotFinalized        = errors.New("market is not finalized")
	ErrInsufficientApprovalVotes = errors.New("insufficient approval votes")
	ErrResolutionTooEarly        = errors.New("resolution proposed before minimum delay")
	ErrDisputePeriodExpired      = errors.New("dispute period has expired")
	ErrDisputePeriodNotExpired   = errors.New("dispute period has not expired")
	ErrProtocolPaused            = errors.New("protocol is paused")

	// Trading errors
	ErrSlippageExceeded      = errors.New("slippage tolerance exceeded")
	ErrInsufficientShares    = errors.New("insufficient shares to sell")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrZeroAmount            = errors.New("amount must be greater than zero")

	// Engine errors
	ErrInvalidBParameter = errors.New("invalid b parameter")

	// Validation and authorization errors
	ErrInvalidMarketID   = errors.New("invalid market ID")
	ErrInvalidOutcome    = errors.New("invalid outcome")
	ErrMarketNotFound    = errors.New("unknown market")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidThreshold  = errors.New("threshold must be at most 10000 basis points")
	ErrInvalidTimeLimit  = errors.New("time limit must be positive")
	ErrInvalidFeeConfig  = errors.New("total fees exceed 100%")
	ErrInvalidMinVotes   = errors.New("minimum vote count must be positive")
	ErrInvalidLiquidity  = errors.New("minimum liquidity must be positive")
	ErrInvalidTolerance  = errors.New("search tolerance must be positive")
	ErrInvalidIterations = errors.New("search iteration limit must be positive")
)
