// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"github.com/holiman/uint256"

	safemath "github.com/luxfi/lending/utils/math"
)

const (
	// baseRate is the rate floor of every reserve, 1% with 7 decimals.
	baseRate = 100_000
	// excessUtil is the utilization where the third rate segment starts.
	excessUtil = 9_500_000
	// excessUtilSpan is 1 - excessUtil.
	excessUtilSpan = 500_000

	minIRMod = 100_000_000
	maxIRMod = 10_000_000_000
)

// CalcAccrual returns the loan accrual multiplier (9 decimals) for the time
// between lastTime and now, and the updated interest rate modifier.
//
// curUtil carries 7 decimals, irMod 9 decimals.
func CalcAccrual(
	config *ReserveConfig,
	curUtil *uint256.Int,
	irMod *uint256.Int,
	lastTime uint64,
	now uint64,
) (*uint256.Int, *uint256.Int, error) {
	curIR, err := currentRate(config, curUtil, irMod)
	if err != nil {
		return nil, nil, err
	}

	elapsed, err := safemath.Sub(now, lastTime)
	if err != nil {
		return nil, nil, err
	}
	deltaTimeScaled, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(elapsed), Scalar9)
	if overflow {
		return nil, nil, ErrOverflow
	}

	newIRMod, err := driftRateModifier(config, curUtil, irMod, deltaTimeScaled)
	if err != nil {
		return nil, nil, err
	}

	timeWeight := new(uint256.Int).Div(deltaTimeScaled, uint256.NewInt(SecondsPerYear))
	curIRPct, overflow := new(uint256.Int).MulOverflow(curIR, uint256.NewInt(100))
	if overflow {
		return nil, nil, ErrOverflow
	}
	interest, err := safemath.MulCeil(timeWeight, curIRPct, Scalar9)
	if err != nil {
		return nil, nil, err
	}
	accrual, err := safemath.Sum(Scalar9, interest)
	if err != nil {
		return nil, nil, err
	}
	return accrual, newIRMod, nil
}

// currentRate returns the annual borrow rate (7 decimals) at curUtil.
func currentRate(config *ReserveConfig, curUtil, irMod *uint256.Int) (*uint256.Int, error) {
	target := uint256.NewInt(uint64(config.Util))
	rOne := uint256.NewInt(uint64(config.ROne))
	rTwo := uint256.NewInt(uint64(config.RTwo))

	switch {
	case !curUtil.Gt(target):
		utilScalar, err := safemath.DivCeil(curUtil, target, Scalar7)
		if err != nil {
			return nil, err
		}
		rate, err := safemath.MulCeil(utilScalar, rOne, Scalar7)
		if err != nil {
			return nil, err
		}
		rate = new(uint256.Int).AddUint64(rate, baseRate)
		return safemath.MulCeil(rate, irMod, Scalar9)

	case !curUtil.Gt(uint256.NewInt(excessUtil)):
		overTarget := new(uint256.Int).Sub(curUtil, target)
		span := uint256.NewInt(excessUtil - uint64(config.Util))
		utilScalar, err := safemath.DivCeil(overTarget, span, Scalar7)
		if err != nil {
			return nil, err
		}
		rate, err := safemath.MulCeil(utilScalar, rTwo, Scalar7)
		if err != nil {
			return nil, err
		}
		rate = new(uint256.Int).AddUint64(rate, uint64(config.ROne)+baseRate)
		return safemath.MulCeil(rate, irMod, Scalar9)

	default:
		overExcess := new(uint256.Int).SubUint64(curUtil, excessUtil)
		utilScalar, err := safemath.DivCeil(overExcess, uint256.NewInt(excessUtilSpan), Scalar7)
		if err != nil {
			return nil, err
		}
		extraRate, err := safemath.MulCeil(utilScalar, uint256.NewInt(uint64(config.RThree)), Scalar7)
		if err != nil {
			return nil, err
		}
		intersection := uint256.NewInt(uint64(config.ROne) + uint64(config.RTwo) + baseRate)
		intersection, err = safemath.MulCeil(irMod, intersection, Scalar9)
		if err != nil {
			return nil, err
		}
		return safemath.Sum(extraRate, intersection)
	}
}

// driftRateModifier moves irMod towards the utilization target. The step is
// rounded towards zero in both directions.
func driftRateModifier(config *ReserveConfig, curUtil, irMod, deltaTimeScaled *uint256.Int) (*uint256.Int, error) {
	target := uint256.NewInt(uint64(config.Util))
	increasing := !curUtil.Lt(target)

	var utilDif uint256.Int
	if increasing {
		utilDif.Sub(curUtil, target)
	} else {
		utilDif.Sub(target, curUtil)
	}
	utilDif.Mul(&utilDif, uint256.NewInt(100))

	utilError, err := safemath.MulFloor(deltaTimeScaled, &utilDif, Scalar9)
	if err != nil {
		return nil, err
	}
	rateDif, err := safemath.MulFloor(utilError, uint256.NewInt(uint64(config.Reactivity)), Scalar9)
	if err != nil {
		return nil, err
	}

	if increasing {
		next, err := safemath.Sum(irMod, rateDif)
		if err != nil {
			return nil, err
		}
		return safemath.Min(next, uint256.NewInt(maxIRMod)), nil
	}

	next, underflow := new(uint256.Int).SubOverflow(irMod, rateDif)
	if underflow || next.Lt(uint256.NewInt(minIRMod)) {
		return uint256.NewInt(minIRMod), nil
	}
	return next, nil
}
