// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auctions

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/lending/vms/poolvm/pool"

	safemath "github.com/luxfi/lending/utils/math"
)

// createInterestAuction offers the interest credited to the backstop in
// exchange for backstop tokens.
func createInterestAuction(env *pool.Env, p *pool.Pool, params Params) (*pool.AuctionData, error) {
	exists, err := env.Storage.HasAuction(pool.InterestAuction, p.Config.Backstop)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: interest", pool.ErrAuctionInProgress)
	}

	scalar, err := oracleScalar(env, p)
	if err != nil {
		return nil, err
	}
	reserveList, err := p.ReserveList(env)
	if err != nil {
		return nil, err
	}

	auction := pool.NewAuctionData(env.Ledger.Sequence + 1)
	interestValue := new(uint256.Int)
	for _, asset := range reserveList {
		// Accrued state is only persisted when the auction is filled.
		reserve, err := p.LoadReserve(env, asset, false)
		if err != nil {
			return nil, err
		}
		if reserve.BackstopCredit.IsZero() {
			continue
		}
		price, err := p.LoadPrice(env, asset)
		if err != nil {
			return nil, err
		}
		value, err := safemath.MulFloor(price, reserve.BackstopCredit, reserve.Scalar)
		if err != nil {
			return nil, err
		}
		if interestValue, err = safemath.Sum(interestValue, value); err != nil {
			return nil, err
		}
		auction.Lot[asset] = reserve.BackstopCredit
	}

	minValue := new(uint256.Int).Mul(uint256.NewInt(params.MinInterestValue), scalar)
	if !interestValue.Gt(minValue) {
		return nil, fmt.Errorf("%w: %d <= %d", pool.ErrInterestTooSmall, interestValue, minValue)
	}
	if len(auction.Lot) == 0 {
		return nil, fmt.Errorf("%w: no interest to auction", pool.ErrBadRequest)
	}

	token, bid, err := backstopTokensFor(env, p, interestValue, scalar)
	if err != nil {
		return nil, err
	}
	auction.Bid[token] = bid
	return auction, nil
}

// fillInterestAuction donates the filler's backstop tokens to the backstop
// and pays out the auctioned interest.
func fillInterestAuction(env *pool.Env, p *pool.Pool, auction *pool.AuctionData, filler ids.ShortID) error {
	if filler == p.Config.Backstop {
		return fmt.Errorf("%w: backstop cannot fill its own auction", pool.ErrBadRequest)
	}

	token, err := env.Backstop.Token()
	if err != nil {
		return err
	}
	if bid, ok := auction.Bid[token]; ok && !bid.IsZero() {
		if err := env.Backstop.Donate(env.Address, filler, bid); err != nil {
			return err
		}
	}

	for _, asset := range pool.SortedAssets(auction.Lot) {
		amount := auction.Lot[asset]
		reserve, err := p.LoadReserve(env, asset, true)
		if err != nil {
			return err
		}
		credit, err := safemath.Diff(reserve.BackstopCredit, amount)
		if err != nil {
			return fmt.Errorf("%w: backstop credit of %s", pool.ErrNegativeAmount, asset)
		}
		reserve.BackstopCredit = credit
		p.CacheReserve(reserve)
		if err := env.Tokens.Transfer(asset, env.Address, filler, amount); err != nil {
			return err
		}
	}
	return nil
}
