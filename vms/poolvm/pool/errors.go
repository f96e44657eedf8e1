// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"errors"

	safemath "github.com/luxfi/lending/utils/math"
)

var (
	ErrNegativeAmount         = errors.New("negative amount")
	ErrBadRequest             = errors.New("bad request")
	ErrInvalidPoolStatus      = errors.New("action not allowed in current pool status")
	ErrInvalidUtilRate        = errors.New("utilization above maximum")
	ErrInvalidHf              = errors.New("health factor below minimum")
	ErrStalePrice             = errors.New("stale oracle price")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrOverflow               = safemath.ErrOverflow
	ErrUnauthorized           = errors.New("unauthorized")
	ErrAlreadyInitialized     = errors.New("pool already initialized")
	ErrNotInitialized         = errors.New("pool not initialized")
	ErrInvalidPoolInitArgs    = errors.New("invalid pool arguments")
	ErrInvalidReserveMetadata = errors.New("invalid reserve metadata")
	ErrInitNotUnlocked        = errors.New("reserve update still time locked")
	ErrReserveNotFound        = errors.New("reserve not found")
	ErrQueuedReserveNotFound  = errors.New("queued reserve not found")
	ErrPriceNotFound          = errors.New("price not found")
	ErrMaxPositionsExceeded   = errors.New("max positions exceeded")
	ErrAuctionNotFound        = errors.New("auction not found")
	ErrAuctionInProgress      = errors.New("auction already in progress")
	ErrInvalidLiquidation     = errors.New("invalid liquidation")
	ErrInvalidLiqTooLarge     = errors.New("liquidation too large")
	ErrInvalidLiqTooSmall     = errors.New("liquidation too small")
	ErrInterestTooSmall       = errors.New("interest too small to auction")
)
