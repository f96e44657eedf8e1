// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"fmt"

	"github.com/holiman/uint256"

	safemath "github.com/luxfi/lending/utils/math"
)

// PositionData is a priced summary of a set of positions, denominated in
// the oracle's base asset with Scalar = 10^oracle decimals.
type PositionData struct {
	// CollateralBase and LiabilityBase are risk adjusted.
	CollateralBase *uint256.Int `json:"collateralBase"`
	LiabilityBase  *uint256.Int `json:"liabilityBase"`
	CollateralRaw  *uint256.Int `json:"collateralRaw"`
	LiabilityRaw   *uint256.Int `json:"liabilityRaw"`
	Scalar         *uint256.Int `json:"scalar"`
}

// CalculatePositionData prices every collateral and liability position.
// Reserves and prices go through the pool's cache.
func CalculatePositionData(env *Env, pool *Pool, positions *Positions) (*PositionData, error) {
	decimals, err := pool.LoadPriceDecimals(env)
	if err != nil {
		return nil, err
	}
	oracleScalar, err := safemath.Pow10(decimals)
	if err != nil {
		return nil, err
	}
	reserveList, err := pool.ReserveList(env)
	if err != nil {
		return nil, err
	}

	data := &PositionData{
		CollateralBase: new(uint256.Int),
		LiabilityBase:  new(uint256.Int),
		CollateralRaw:  new(uint256.Int),
		LiabilityRaw:   new(uint256.Int),
		Scalar:         oracleScalar,
	}
	for i, asset := range reserveList {
		index := uint32(i)
		bTokens := balanceOf(positions.Collateral, index)
		dTokens := balanceOf(positions.Liabilities, index)
		if bTokens.IsZero() && dTokens.IsZero() {
			continue
		}

		reserve, err := pool.LoadReserve(env, asset, false)
		if err != nil {
			return nil, err
		}
		price, err := pool.LoadPrice(env, asset)
		if err != nil {
			return nil, err
		}

		if !bTokens.IsZero() {
			effective, err := reserve.ToEffectiveAssetFromBToken(bTokens)
			if err != nil {
				return nil, err
			}
			raw, err := reserve.ToAssetFromBToken(bTokens)
			if err != nil {
				return nil, err
			}
			if data.CollateralBase, err = addValue(data.CollateralBase, price, effective, reserve.Scalar); err != nil {
				return nil, err
			}
			if data.CollateralRaw, err = addValue(data.CollateralRaw, price, raw, reserve.Scalar); err != nil {
				return nil, err
			}
		}

		if !dTokens.IsZero() {
			effective, err := reserve.ToEffectiveAssetFromDToken(dTokens)
			if err != nil {
				return nil, err
			}
			raw, err := reserve.ToAssetFromDToken(dTokens)
			if err != nil {
				return nil, err
			}
			if data.LiabilityBase, err = addValue(data.LiabilityBase, price, effective, reserve.Scalar); err != nil {
				return nil, err
			}
			if data.LiabilityRaw, err = addValue(data.LiabilityRaw, price, raw, reserve.Scalar); err != nil {
				return nil, err
			}
		}

		pool.CacheReserve(reserve)
	}
	return data, nil
}

// addValue returns total + floor(price * amount / scalar).
func addValue(total, price, amount, scalar *uint256.Int) (*uint256.Int, error) {
	value, err := safemath.MulFloor(price, amount, scalar)
	if err != nil {
		return nil, err
	}
	return safemath.Sum(total, value)
}

// AsHealthFactor returns collateral over liabilities with Scalar precision,
// rounded up. The caller must ensure LiabilityBase is not zero.
func (d *PositionData) AsHealthFactor() (*uint256.Int, error) {
	return safemath.DivCeil(d.CollateralBase, d.LiabilityBase, d.Scalar)
}

// RequireHealthy returns ErrInvalidHf if the health factor is below
// MinHealthFactor. Positions without liabilities are always healthy.
func (d *PositionData) RequireHealthy() error {
	if d.LiabilityBase.IsZero() {
		return nil
	}
	minHF, err := safemath.MulFloor(d.Scalar, uint256.NewInt(MinHealthFactor), Scalar7)
	if err != nil {
		return err
	}
	hf, err := d.AsHealthFactor()
	if err != nil {
		return err
	}
	if hf.Lt(minHF) {
		return fmt.Errorf("%w: %d < %d", ErrInvalidHf, hf, minHF)
	}
	return nil
}
