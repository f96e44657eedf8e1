// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lending/vms/poolvm/pool"
	"github.com/luxfi/lending/vms/poolvm/pooltest"
)

func newReserveData(h *pooltest.Harness) *pool.ReserveData {
	return &pool.ReserveData{
		DRate:          uint256.NewInt(1_345_678_123),
		BRate:          uint256.NewInt(1_123_456_789),
		IRMod:          uint256.NewInt(1_000_000_000),
		BSupply:        uint256.NewInt(990_000_000),
		DSupply:        uint256.NewInt(650_000_000),
		BackstopCredit: new(uint256.Int),
		LastTime:       h.Env.Ledger.Timestamp,
	}
}

func TestLoadReserveAccrues(t *testing.T) {
	require := require.New(t)
	h := pooltest.New(t, pooltest.Config{})
	asset := ids.GenerateTestShortID()
	h.AddReserve(t, asset, pooltest.DefaultReserveConfig())
	h.SetReserveData(t, asset, newReserveData(h))
	require.Equal(uint256.NewInt(237_531_441), h.Balance(t, asset, pooltest.PoolAddress))

	h.Advance(617_280, 1)
	config, err := h.State.GetPoolConfig()
	require.NoError(err)
	reserve, err := pool.LoadReserve(h.Env, config, asset)
	require.NoError(err)

	require.Equal(uint256.NewInt(1_349_657_792), reserve.DRate)
	require.Equal(uint256.NewInt(1_125_808_412), reserve.BRate)
	require.Equal(uint256.NewInt(1_044_981_440), reserve.IRMod)
	require.Equal(uint256.NewInt(258_678), reserve.BackstopCredit)
	require.Equal(h.Env.Ledger.Timestamp, reserve.LastTime)

	// Loading does not persist.
	stored, err := h.State.GetReserveData(asset)
	require.NoError(err)
	require.Equal(uint256.NewInt(1_345_678_123), stored.DRate)
}

func TestLoadReserveSameTimestamp(t *testing.T) {
	require := require.New(t)
	h := pooltest.New(t, pooltest.Config{})
	asset := ids.GenerateTestShortID()
	h.AddReserve(t, asset, pooltest.DefaultReserveConfig())
	data := newReserveData(h)
	h.SetReserveData(t, asset, data)

	config, err := h.State.GetPoolConfig()
	require.NoError(err)
	reserve, err := pool.LoadReserve(h.Env, config, asset)
	require.NoError(err)
	require.Equal(*data, reserve.ReserveData)
	require.Equal(uint256.NewInt(10_000_000), reserve.Scalar)
}

func TestLoadReserveEmptySupply(t *testing.T) {
	require := require.New(t)
	h := pooltest.New(t, pooltest.Config{})
	asset := ids.GenerateTestShortID()
	h.AddReserve(t, asset, pooltest.DefaultReserveConfig())

	h.Advance(1_000, 1)
	config, err := h.State.GetPoolConfig()
	require.NoError(err)
	reserve, err := pool.LoadReserve(h.Env, config, asset)
	require.NoError(err)
	require.Equal(pool.Scalar9, reserve.DRate)
	require.Equal(pool.Scalar9, reserve.BRate)
	require.Equal(h.Env.Ledger.Timestamp, reserve.LastTime)

	util, err := reserve.Utilization()
	require.NoError(err)
	require.True(util.IsZero())
}

func TestReserveConversionsRounding(t *testing.T) {
	require := require.New(t)
	reserve := &pool.Reserve{
		ReserveConfig: pooltest.DefaultReserveConfig(),
		ReserveData: pool.ReserveData{
			DRate: uint256.NewInt(1_321_834_961),
			BRate: uint256.NewInt(1_123_456_789),
		},
	}
	amount := uint256.NewInt(101_234_567)

	// Conversions into shares round in the pool's favor.
	up, err := reserve.ToDTokenUp(amount)
	require.NoError(err)
	down, err := reserve.ToDTokenDown(amount)
	require.NoError(err)
	require.Equal(uint256.NewInt(76_586_390), up)
	require.Equal(uint256.NewInt(76_586_389), down)

	up, err = reserve.ToBTokenUp(amount)
	require.NoError(err)
	down, err = reserve.ToBTokenDown(amount)
	require.NoError(err)
	require.Equal(uint256.NewInt(90_109_890), up)
	require.Equal(uint256.NewInt(90_109_889), down)

	assets, err := reserve.ToAssetFromDToken(uint256.NewInt(76_586_389))
	require.NoError(err)
	require.Equal(uint256.NewInt(101_234_567), assets)

	assets, err = reserve.ToAssetFromBToken(uint256.NewInt(90_109_890))
	require.NoError(err)
	require.Equal(uint256.NewInt(101_234_567), assets)

	effective, err := reserve.ToEffectiveAssetFromBToken(uint256.NewInt(90_109_890))
	require.NoError(err)
	require.Equal(uint256.NewInt(75_925_925), effective)

	effective, err = reserve.ToEffectiveAssetFromDToken(uint256.NewInt(76_586_389))
	require.NoError(err)
	require.Equal(uint256.NewInt(134_979_423), effective)
}

func TestRequireUtilizationBelowMax(t *testing.T) {
	reserve := &pool.Reserve{
		ReserveConfig: pooltest.DefaultReserveConfig(),
		ReserveData: pool.ReserveData{
			DRate:   pool.Scalar9,
			BRate:   pool.Scalar9,
			BSupply: uint256.NewInt(100),
			DSupply: uint256.NewInt(95),
		},
	}
	require.NoError(t, reserve.RequireUtilizationBelowMax())

	reserve.DSupply = uint256.NewInt(96)
	require.ErrorIs(t, reserve.RequireUtilizationBelowMax(), pool.ErrInvalidUtilRate)
}
