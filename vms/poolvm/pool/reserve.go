// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	safemath "github.com/luxfi/lending/utils/math"
)

// Reserve is the in-memory view of one asset of the pool. Values are copied
// on load; changes are only persisted through Store.
type Reserve struct {
	Asset ids.ShortID
	// Scalar is 10^Decimals.
	Scalar *uint256.Int

	ReserveConfig
	ReserveData
}

// LoadReserve reads the reserve of asset and accrues interest up to the
// current ledger timestamp.
func LoadReserve(env *Env, poolConfig *PoolConfig, asset ids.ShortID) (*Reserve, error) {
	config, err := env.Storage.GetReserveConfig(asset)
	if err != nil {
		return nil, fmt.Errorf("failed to load reserve config of %s: %w", asset, err)
	}
	data, err := env.Storage.GetReserveData(asset)
	if err != nil {
		return nil, fmt.Errorf("failed to load reserve data of %s: %w", asset, err)
	}
	scalar, err := safemath.Pow10(config.Decimals)
	if err != nil {
		return nil, err
	}
	reserve := &Reserve{
		Asset:         asset,
		Scalar:        scalar,
		ReserveConfig: *config,
		ReserveData:   *data,
	}
	if err := reserve.accrue(env, poolConfig); err != nil {
		return nil, fmt.Errorf("failed to accrue reserve %s: %w", asset, err)
	}
	return reserve, nil
}

func (r *Reserve) accrue(env *Env, poolConfig *PoolConfig) error {
	now := env.Ledger.Timestamp
	if now == r.LastTime {
		return nil
	}
	if r.BSupply.IsZero() {
		r.LastTime = now
		return nil
	}

	curUtil, err := r.Utilization()
	if err != nil {
		return err
	}
	accrual, newIRMod, err := CalcAccrual(&r.ReserveConfig, curUtil, r.IRMod, r.LastTime, now)
	if err != nil {
		return err
	}
	r.IRMod = newIRMod

	r.DRate, err = safemath.MulCeil(accrual, r.DRate, Scalar9)
	if err != nil {
		return err
	}

	preUpdateSupply, err := r.TotalSupply()
	if err != nil {
		return err
	}
	tokenBalance, err := env.Tokens.Balance(r.Asset, env.Address)
	if err != nil {
		return err
	}
	liabilities, err := r.TotalLiabilities()
	if err != nil {
		return err
	}
	held, err := safemath.Sum(liabilities, tokenBalance)
	if err != nil {
		return err
	}

	// Only a positive change of the supplied value is credited to the
	// backstop.
	if poolConfig.BackstopTakeRate > 0 {
		owed, err := safemath.Sum(r.BackstopCredit, preUpdateSupply)
		if err != nil {
			return err
		}
		if held.Gt(owed) {
			accrued := new(uint256.Int).Sub(held, owed)
			credit, err := safemath.MulFloor(accrued, uint256.NewInt(uint64(poolConfig.BackstopTakeRate)), Scalar7)
			if err != nil {
				return err
			}
			r.BackstopCredit, err = safemath.Sum(r.BackstopCredit, credit)
			if err != nil {
				return err
			}
		}
	}

	supplied, err := safemath.Diff(held, r.BackstopCredit)
	if err != nil {
		return fmt.Errorf("backstop credit exceeds reserve value: %w", err)
	}
	r.BRate, err = safemath.DivFloor(supplied, r.BSupply, Scalar9)
	if err != nil {
		return err
	}
	r.LastTime = now
	return nil
}

// Store persists the mutable reserve data.
func (r *Reserve) Store(env *Env) error {
	data := r.ReserveData
	return env.Storage.SetReserveData(r.Asset, &data)
}

// Utilization returns total liabilities over total supply with 7 decimals.
// An empty reserve has zero utilization.
func (r *Reserve) Utilization() (*uint256.Int, error) {
	supply, err := r.TotalSupply()
	if err != nil {
		return nil, err
	}
	if supply.IsZero() {
		return new(uint256.Int), nil
	}
	liabilities, err := r.TotalLiabilities()
	if err != nil {
		return nil, err
	}
	return safemath.DivFloor(liabilities, supply, Scalar7)
}

// RequireUtilizationBelowMax returns ErrInvalidUtilRate if the reserve is
// utilized above its configured maximum.
func (r *Reserve) RequireUtilizationBelowMax() error {
	util, err := r.Utilization()
	if err != nil {
		return err
	}
	if util.GtUint64(uint64(r.MaxUtil)) {
		return ErrInvalidUtilRate
	}
	return nil
}

// TotalLiabilities returns the outstanding debt in underlying units.
func (r *Reserve) TotalLiabilities() (*uint256.Int, error) {
	return r.ToAssetFromDToken(r.DSupply)
}

// TotalSupply returns the supplied value in underlying units.
func (r *Reserve) TotalSupply() (*uint256.Int, error) {
	return r.ToAssetFromBToken(r.BSupply)
}

// ToAssetFromDToken converts dTokens to underlying, rounding up.
func (r *Reserve) ToAssetFromDToken(dTokens *uint256.Int) (*uint256.Int, error) {
	return safemath.MulCeil(dTokens, r.DRate, Scalar9)
}

// ToAssetFromBToken converts bTokens to underlying, rounding down.
func (r *Reserve) ToAssetFromBToken(bTokens *uint256.Int) (*uint256.Int, error) {
	return safemath.MulFloor(bTokens, r.BRate, Scalar9)
}

// ToEffectiveAssetFromDToken returns the risk adjusted liability of dTokens.
func (r *Reserve) ToEffectiveAssetFromDToken(dTokens *uint256.Int) (*uint256.Int, error) {
	assets, err := r.ToAssetFromDToken(dTokens)
	if err != nil {
		return nil, err
	}
	return safemath.DivCeil(assets, uint256.NewInt(uint64(r.LFactor)), Scalar7)
}

// ToEffectiveAssetFromBToken returns the risk adjusted collateral value of
// bTokens.
func (r *Reserve) ToEffectiveAssetFromBToken(bTokens *uint256.Int) (*uint256.Int, error) {
	assets, err := r.ToAssetFromBToken(bTokens)
	if err != nil {
		return nil, err
	}
	return safemath.MulFloor(assets, uint256.NewInt(uint64(r.CFactor)), Scalar7)
}

func (r *Reserve) ToDTokenUp(amount *uint256.Int) (*uint256.Int, error) {
	return safemath.DivCeil(amount, r.DRate, Scalar9)
}

func (r *Reserve) ToDTokenDown(amount *uint256.Int) (*uint256.Int, error) {
	return safemath.DivFloor(amount, r.DRate, Scalar9)
}

func (r *Reserve) ToBTokenUp(amount *uint256.Int) (*uint256.Int, error) {
	return safemath.DivCeil(amount, r.BRate, Scalar9)
}

func (r *Reserve) ToBTokenDown(amount *uint256.Int) (*uint256.Int, error) {
	return safemath.DivFloor(amount, r.BRate, Scalar9)
}
