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

func TestTransferBadDebtToBackstop(t *testing.T) {
	require := require.New(t)
	h, a, b := newPricedPool(t)
	for _, asset := range []ids.ShortID{a, b} {
		data := pool.NewReserveData(h.Env.Ledger.Timestamp)
		data.BSupply = uint256.NewInt(1_000_000)
		data.DSupply = uint256.NewInt(500_000)
		h.SetReserveData(t, asset, data)
	}

	user := ids.GenerateTestShortID()
	positions := pool.NewPositions()
	positions.Liabilities[0] = uint256.NewInt(24)
	positions.Liabilities[1] = uint256.NewInt(25)
	h.SetPositions(t, user, positions)

	require.NoError(pool.TransferBadDebtToBackstop(h.Env, user))

	require.Empty(h.Positions(t, user).Liabilities)
	backstop := h.Positions(t, pooltest.BackstopAddress)
	require.Equal(uint256.NewInt(24), backstop.Liabilities[0])
	require.Equal(uint256.NewInt(25), backstop.Liabilities[1])

	// Supply is only moved between accounts.
	data, err := h.State.GetReserveData(b)
	require.NoError(err)
	require.Equal(uint256.NewInt(500_000), data.DSupply)
}

func TestTransferBadDebtRequiresNoCollateral(t *testing.T) {
	h, _, _ := newPricedPool(t)

	user := ids.GenerateTestShortID()
	positions := pool.NewPositions()
	positions.Liabilities[0] = uint256.NewInt(24)
	positions.Collateral[1] = uint256.NewInt(1)
	h.SetPositions(t, user, positions)

	err := pool.TransferBadDebtToBackstop(h.Env, user)
	require.ErrorIs(t, err, pool.ErrBadRequest)

	err = pool.TransferBadDebtToBackstop(h.Env, ids.GenerateTestShortID())
	require.ErrorIs(t, err, pool.ErrBadRequest)

	err = pool.TransferBadDebtToBackstop(h.Env, pooltest.BackstopAddress)
	require.ErrorIs(t, err, pool.ErrBadRequest)
}

func TestBurnBackstopBadDebt(t *testing.T) {
	require := require.New(t)
	h, a, _ := newPricedPool(t)
	data := pool.NewReserveData(h.Env.Ledger.Timestamp)
	data.BSupply = uint256.NewInt(1_000_000)
	data.DSupply = uint256.NewInt(500_000)
	h.SetReserveData(t, a, data)

	positions := pool.NewPositions()
	positions.Liabilities[0] = uint256.NewInt(100_000)
	h.SetPositions(t, pooltest.BackstopAddress, positions)

	p, err := pool.Load(h.Env)
	require.NoError(err)
	backstop, err := pool.LoadUser(h.Env, pooltest.BackstopAddress)
	require.NoError(err)
	require.NoError(pool.BurnBackstopBadDebt(h.Env, backstop, p))
	require.NoError(p.StoreCachedReserves(h.Env))
	require.NoError(backstop.Store(h.Env))

	require.Empty(h.Positions(t, pooltest.BackstopAddress).Liabilities)
	stored, err := h.State.GetReserveData(a)
	require.NoError(err)
	require.Equal(uint256.NewInt(400_000), stored.DSupply)

	// Written off debt is no longer owed to suppliers.
	h.Advance(1, 1)
	reserve, err := pool.LoadReserve(h.Env, p.Config, a)
	require.NoError(err)
	require.Equal(uint256.NewInt(1_000_000), reserve.BSupply)
	require.True(reserve.BRate.Lt(pool.Scalar9))
}
