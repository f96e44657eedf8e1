// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
)

// TransferBadDebtToBackstop moves every liability of a user without
// collateral onto the backstop's position.
func TransferBadDebtToBackstop(env *Env, user ids.ShortID) error {
	pool, err := Load(env)
	if err != nil {
		return err
	}
	backstop := pool.Config.Backstop
	if user == backstop {
		return fmt.Errorf("%w: backstop cannot transfer bad debt to itself", ErrBadRequest)
	}

	userState, err := LoadUser(env, user)
	if err != nil {
		return err
	}
	if len(userState.Positions.Collateral) != 0 || len(userState.Positions.Liabilities) == 0 {
		return fmt.Errorf("%w: %s has no bad debt", ErrBadRequest, user)
	}
	backstopState, err := LoadUser(env, backstop)
	if err != nil {
		return err
	}

	for _, index := range SortedIndices(userState.Positions.Liabilities) {
		asset, err := pool.ReserveAsset(env, index)
		if err != nil {
			return err
		}
		reserve, err := pool.LoadReserve(env, asset, true)
		if err != nil {
			return err
		}
		balance := userState.GetLiabilities(index)
		if err := backstopState.AddLiabilities(env, reserve, balance); err != nil {
			return err
		}
		if err := userState.RemoveLiabilities(env, reserve, balance); err != nil {
			return err
		}
		pool.CacheReserve(reserve)

		env.Log.Debug("bad debt transferred",
			log.Stringer("user", user),
			log.Stringer("asset", asset),
			log.String("dTokens", balance.Dec()),
		)
	}

	if err := pool.StoreCachedReserves(env); err != nil {
		return err
	}
	if err := backstopState.Store(env); err != nil {
		return err
	}
	return userState.Store(env)
}

// BurnBackstopBadDebt writes off every liability of the backstop, spreading
// the loss over the reserve's suppliers.
func BurnBackstopBadDebt(env *Env, backstop *User, pool *Pool) error {
	liabilities := make(map[ids.ShortID]*uint256.Int, len(backstop.Positions.Liabilities))
	for index, balance := range backstop.Positions.Liabilities {
		asset, err := pool.ReserveAsset(env, index)
		if err != nil {
			return err
		}
		liabilities[asset] = balance
		env.Log.Debug("bad debt burned",
			log.Stringer("asset", asset),
			log.String("dTokens", balance.Dec()),
		)
	}
	return backstop.RemovePositions(env, pool, nil, liabilities)
}
