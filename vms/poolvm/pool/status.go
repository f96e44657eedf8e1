// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/log"

	safemath "github.com/luxfi/lending/utils/math"
)

const (
	// onIceQ4W and frozenQ4W are queued-for-withdrawal share fractions with
	// 7 decimals.
	onIceQ4W  = 2_500_000
	frozenQ4W = 5_000_000
)

// RequireActionAllowed returns ErrInvalidPoolStatus if requestType may not
// be executed in the current status. Exits are always allowed.
func (c *PoolConfig) RequireActionAllowed(requestType RequestType) error {
	switch requestType {
	case Supply, SupplyCollateral:
		if c.Status >= StatusFrozen {
			return fmt.Errorf("%w: %s while %s", ErrInvalidPoolStatus, requestType, c.Status)
		}
	case Borrow, DeleteLiquidationAuction:
		if c.Status != StatusActive {
			return fmt.Errorf("%w: %s while %s", ErrInvalidPoolStatus, requestType, c.Status)
		}
	}
	return nil
}

// UpdateStatus derives the pool status from the backstop's deposit and
// withdrawal queue. It refuses to run while the pool is admin frozen.
func UpdateStatus(env *Env) (Status, error) {
	config, err := env.Storage.GetPoolConfig()
	if err != nil {
		return 0, err
	}
	if config.Status == StatusAdminFrozen {
		return 0, fmt.Errorf("%w: pool is admin frozen", ErrInvalidPoolStatus)
	}

	balance, err := env.Backstop.PoolBalance(env.Address)
	if err != nil {
		return 0, err
	}
	q4wPct := new(uint256.Int)
	if !balance.Shares.IsZero() {
		q4wPct, err = safemath.DivFloor(balance.Q4W, balance.Shares, Scalar7)
		if err != nil {
			return 0, err
		}
	}

	switch {
	case q4wPct.CmpUint64(frozenQ4W) >= 0:
		config.Status = StatusFrozen
	case q4wPct.CmpUint64(onIceQ4W) >= 0 || balance.Tokens.Lt(minBackstopTokens(config)):
		config.Status = StatusOnIce
	default:
		config.Status = StatusActive
	}
	if err := env.Storage.SetPoolConfig(config); err != nil {
		return 0, err
	}
	env.Log.Debug("pool status updated",
		log.Stringer("status", config.Status),
		log.String("q4wPct", q4wPct.Dec()),
	)
	return config.Status, nil
}

// SetStatus sets the pool status on behalf of the admin. Activating the
// pool requires the backstop deposit to reach the minimum.
func SetStatus(env *Env, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status %d", ErrBadRequest, uint32(status))
	}
	config, err := env.Storage.GetPoolConfig()
	if err != nil {
		return err
	}
	if status == StatusActive {
		balance, err := env.Backstop.PoolBalance(env.Address)
		if err != nil {
			return err
		}
		if balance.Tokens.Lt(minBackstopTokens(config)) {
			return fmt.Errorf("%w: backstop deposit %d below minimum", ErrInvalidPoolStatus, balance.Tokens)
		}
	}
	config.Status = status
	return env.Storage.SetPoolConfig(config)
}

func minBackstopTokens(config *PoolConfig) *uint256.Int {
	if config.MinBackstopTokens == nil {
		return new(uint256.Int)
	}
	return config.MinBackstopTokens
}
