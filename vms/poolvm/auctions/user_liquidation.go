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

const (
	// percentScale converts a whole percent to 7 decimals.
	percentScale = 100_000

	maxLiquidatedHealthFactor = 11_500_000
	minLiquidatedHealthFactor = 10_300_000
)

func createUserLiquidation(env *pool.Env, user ids.ShortID, percent uint64) (*pool.AuctionData, error) {
	exists, err := env.Storage.HasAuction(pool.UserLiquidation, user)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", pool.ErrAuctionInProgress, user)
	}
	if percent == 0 || percent > 100 {
		return nil, fmt.Errorf("%w: percent %d", pool.ErrInvalidLiquidation, percent)
	}
	pct := uint256.NewInt(percent * percentScale)

	p, err := pool.Load(env)
	if err != nil {
		return nil, err
	}
	target, err := pool.LoadUser(env, user)
	if err != nil {
		return nil, err
	}
	reserveList, err := p.ReserveList(env)
	if err != nil {
		return nil, err
	}
	data, err := pool.CalculatePositionData(env, p, target.Positions)
	if err != nil {
		return nil, err
	}
	if data.LiabilityRaw.IsZero() || data.LiabilityBase.Lt(data.CollateralBase) {
		return nil, fmt.Errorf("%w: %s is healthy", pool.ErrInvalidLiquidation, user)
	}
	if data.CollateralRaw.IsZero() {
		return nil, fmt.Errorf("%w: %s has no collateral", pool.ErrInvalidLiquidation, user)
	}

	estimated, err := estimateWithdrawnCollateral(data, pct)
	if err != nil {
		return nil, err
	}
	collateralPct, err := safemath.DivCeil(estimated, data.CollateralRaw, data.Scalar)
	if err != nil {
		return nil, err
	}
	collateralPct = safemath.Min(collateralPct, pool.Scalar7)

	auction := pool.NewAuctionData(env.Ledger.Sequence + 1)
	for _, index := range pool.SortedIndices(target.Positions.Collateral) {
		asset, err := assetAt(reserveList, index)
		if err != nil {
			return nil, err
		}
		bTokens, err := safemath.MulCeil(target.Positions.Collateral[index], collateralPct, pool.Scalar7)
		if err != nil {
			return nil, err
		}
		auction.Lot[asset] = bTokens
	}
	for _, index := range pool.SortedIndices(target.Positions.Liabilities) {
		asset, err := assetAt(reserveList, index)
		if err != nil {
			return nil, err
		}
		dTokens, err := safemath.MulCeil(target.Positions.Liabilities[index], pct, pool.Scalar7)
		if err != nil {
			return nil, err
		}
		auction.Bid[asset] = dTokens
	}

	if percent == 100 {
		// A full liquidation is only allowed when partial ones cannot be
		// priced.
		if estimated.Lt(data.CollateralRaw) {
			return nil, fmt.Errorf("%w: collateral covers a partial liquidation", pool.ErrInvalidLiqTooLarge)
		}
		return auction, nil
	}

	if err := checkLiquidatedHealth(env, p, target, auction); err != nil {
		return nil, err
	}
	return auction, nil
}

// estimateWithdrawnCollateral returns the raw collateral value a filler is
// expected to take for liquidating pct of the liabilities in data.
func estimateWithdrawnCollateral(data *pool.PositionData, pct *uint256.Int) (*uint256.Int, error) {
	avgCF, err := safemath.DivFloor(data.CollateralBase, data.CollateralRaw, data.Scalar)
	if err != nil {
		return nil, err
	}
	// avgLF is the inverse of the average liability factor.
	avgLF, err := safemath.DivFloor(data.LiabilityBase, data.LiabilityRaw, data.Scalar)
	if err != nil {
		return nil, err
	}
	ratio, err := safemath.DivCeil(avgCF, avgLF, pool.Scalar7)
	if err != nil {
		return nil, err
	}
	discount, err := safemath.Diff(pool.Scalar7, safemath.Min(ratio, pool.Scalar7))
	if err != nil {
		return nil, err
	}
	halfDiscount, err := safemath.DivCeil(discount, uint256.NewInt(2*pool.Scalar7Int), pool.Scalar7)
	if err != nil {
		return nil, err
	}
	incentive, err := safemath.Sum(halfDiscount, pool.Scalar7)
	if err != nil {
		return nil, err
	}

	liquidated, err := safemath.MulFloor(data.LiabilityRaw, pct, data.Scalar)
	if err != nil {
		return nil, err
	}
	return safemath.MulFloor(liquidated, incentive, pool.Scalar7)
}

// checkLiquidatedHealth returns an error unless the health factor of target
// after the liquidation lands between 1.03 and 1.15. Nothing is persisted.
func checkLiquidatedHealth(env *pool.Env, p *pool.Pool, target *pool.User, auction *pool.AuctionData) error {
	simEnv := *env
	simEnv.Emissions = pool.NoEmissions{}
	simulated := &pool.User{
		Address:   target.Address,
		Positions: target.Positions.Copy(),
	}
	if err := simulated.RemovePositions(&simEnv, p, auction.Lot, auction.Bid); err != nil {
		return err
	}
	data, err := pool.CalculatePositionData(&simEnv, p, simulated.Positions)
	if err != nil {
		return err
	}
	if data.LiabilityBase.IsZero() {
		return fmt.Errorf("%w: removes every liability", pool.ErrInvalidLiqTooLarge)
	}
	hf, err := data.AsHealthFactor()
	if err != nil {
		return err
	}

	maxHF, err := safemath.MulFloor(data.Scalar, uint256.NewInt(maxLiquidatedHealthFactor), pool.Scalar7)
	if err != nil {
		return err
	}
	if hf.Gt(maxHF) {
		return fmt.Errorf("%w: health factor would be %d", pool.ErrInvalidLiqTooLarge, hf)
	}
	minHF, err := safemath.MulFloor(data.Scalar, uint256.NewInt(minLiquidatedHealthFactor), pool.Scalar7)
	if err != nil {
		return err
	}
	if hf.Lt(minHF) {
		return fmt.Errorf("%w: health factor would be %d", pool.ErrInvalidLiqTooSmall, hf)
	}
	return nil
}

func fillUserLiquidation(env *pool.Env, p *pool.Pool, auction *pool.AuctionData, user ids.ShortID, filler *pool.User) error {
	if filler.Address == user {
		return fmt.Errorf("%w: cannot fill own liquidation", pool.ErrBadRequest)
	}
	liquidated, err := pool.LoadUser(env, user)
	if err != nil {
		return err
	}
	if err := liquidated.RemovePositions(env, p, auction.Lot, auction.Bid); err != nil {
		return err
	}
	if err := filler.AddPositions(env, p, auction.Lot, auction.Bid); err != nil {
		return err
	}
	return liquidated.Store(env)
}

func assetAt(reserveList []ids.ShortID, index uint32) (ids.ShortID, error) {
	if int(index) >= len(reserveList) {
		return ids.ShortEmpty, fmt.Errorf("%w: index %d", pool.ErrReserveNotFound, index)
	}
	return reserveList[index], nil
}
