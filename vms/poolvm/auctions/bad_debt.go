// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auctions

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/log"

	"github.com/luxfi/lending/vms/poolvm/pool"

	safemath "github.com/luxfi/lending/utils/math"
)

// createBadDebtAuction offers backstop tokens for the liabilities held by
// the backstop.
func createBadDebtAuction(env *pool.Env, p *pool.Pool) (*pool.AuctionData, error) {
	backstop := p.Config.Backstop
	exists, err := env.Storage.HasAuction(pool.BadDebtAuction, backstop)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: bad debt", pool.ErrAuctionInProgress)
	}

	scalar, err := oracleScalar(env, p)
	if err != nil {
		return nil, err
	}
	positions, err := env.Storage.GetPositions(backstop)
	if err != nil {
		return nil, err
	}

	auction := pool.NewAuctionData(env.Ledger.Sequence + 1)
	debtValue := new(uint256.Int)
	for _, index := range pool.SortedIndices(positions.Liabilities) {
		dTokens := positions.Liabilities[index]
		asset, err := p.ReserveAsset(env, index)
		if err != nil {
			return nil, err
		}
		reserve, err := p.LoadReserve(env, asset, false)
		if err != nil {
			return nil, err
		}
		price, err := p.LoadPrice(env, asset)
		if err != nil {
			return nil, err
		}
		amount, err := reserve.ToAssetFromDToken(dTokens)
		if err != nil {
			return nil, err
		}
		value, err := safemath.MulFloor(price, amount, reserve.Scalar)
		if err != nil {
			return nil, err
		}
		if debtValue, err = safemath.Sum(debtValue, value); err != nil {
			return nil, err
		}
		auction.Bid[asset] = dTokens
	}
	if len(auction.Bid) == 0 || debtValue.IsZero() {
		return nil, fmt.Errorf("%w: backstop holds no bad debt", pool.ErrBadRequest)
	}

	token, lot, err := backstopTokensFor(env, p, debtValue, scalar)
	if err != nil {
		return nil, err
	}
	balance, err := env.Backstop.PoolBalance(env.Address)
	if err != nil {
		return nil, err
	}
	auction.Lot[token] = safemath.Min(lot, balance.Tokens)
	return auction, nil
}

// fillBadDebtAuction moves the backstop's liabilities onto the filler and
// pays the filler from the backstop deposit. Debt left on an exhausted
// backstop is written off.
func fillBadDebtAuction(env *pool.Env, p *pool.Pool, params Params, auction *pool.AuctionData, filler *pool.User) error {
	backstop := p.Config.Backstop
	if filler.Address == backstop {
		return fmt.Errorf("%w: backstop cannot fill its own auction", pool.ErrBadRequest)
	}

	backstopState, err := pool.LoadUser(env, backstop)
	if err != nil {
		return err
	}
	if err := backstopState.RemovePositions(env, p, nil, auction.Bid); err != nil {
		return err
	}
	if err := filler.AddPositions(env, p, nil, auction.Bid); err != nil {
		return err
	}

	token, err := env.Backstop.Token()
	if err != nil {
		return err
	}
	if lot, ok := auction.Lot[token]; ok && !lot.IsZero() {
		if err := env.Backstop.Draw(env.Address, lot, filler.Address); err != nil {
			return err
		}
	}

	if len(backstopState.Positions.Liabilities) != 0 {
		balance, err := env.Backstop.PoolBalance(env.Address)
		if err != nil {
			return err
		}
		if balance.Tokens.Lt(params.BurnThreshold) {
			env.Log.Info("writing off remaining bad debt",
				log.String("backstopTokens", balance.Tokens.Dec()),
			)
			if err := pool.BurnBackstopBadDebt(env, backstopState, p); err != nil {
				return err
			}
		}
	}
	return backstopState.Store(env)
}
