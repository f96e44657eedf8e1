// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/lending/vms/poolvm/auctions"
	"github.com/luxfi/lending/vms/poolvm/pool"
)

// Submit executes requests for from. Tokens owed to the pool are taken from
// spender and tokens owed by the pool are paid to to. It returns from's
// resulting positions.
//
// An error leaves env.Storage partially written; callers run Submit on a
// staging layer they discard on failure.
func Submit(
	env *pool.Env,
	params auctions.Params,
	from ids.ShortID,
	spender ids.ShortID,
	to ids.ShortID,
	requests []pool.Request,
) (*pool.Positions, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("%w: no requests", pool.ErrBadRequest)
	}
	p, err := pool.Load(env)
	if err != nil {
		return nil, err
	}

	result, err := BuildActions(env, p, params, from, requests)
	if err != nil {
		return nil, err
	}

	if result.CheckHealth {
		data, err := pool.CalculatePositionData(env, p, result.User.Positions)
		if err != nil {
			return nil, err
		}
		if err := data.RequireHealthy(); err != nil {
			return nil, err
		}
	}

	for _, asset := range pool.SortedAssets(result.Actions.SpenderTransfer) {
		if err := env.Tokens.Transfer(asset, spender, env.Address, result.Actions.SpenderTransfer[asset]); err != nil {
			return nil, fmt.Errorf("failed to collect %s from %s: %w", asset, spender, err)
		}
	}

	if err := p.StoreCachedReserves(env); err != nil {
		return nil, err
	}
	if err := result.User.Store(env); err != nil {
		return nil, err
	}

	for _, asset := range pool.SortedAssets(result.Actions.PoolTransfer) {
		if err := env.Tokens.Transfer(asset, env.Address, to, result.Actions.PoolTransfer[asset]); err != nil {
			return nil, fmt.Errorf("failed to pay %s to %s: %w", asset, to, err)
		}
	}

	env.Log.Debug("requests submitted",
		log.Stringer("from", from),
		log.Int("requests", len(requests)),
	)
	return result.User.Positions, nil
}
