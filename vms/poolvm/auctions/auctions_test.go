// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auctions_test

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lending/vms/poolvm/auctions"
	"github.com/luxfi/lending/vms/poolvm/executor"
	"github.com/luxfi/lending/vms/poolvm/pool"
	"github.com/luxfi/lending/vms/poolvm/pooltest"
)

// liquidationFixture lists three reserves priced at 2, 4 and 50 and a user
// whose liabilities exceed its risk adjusted collateral.
type liquidationFixture struct {
	h      *pooltest.Harness
	assets [3]ids.ShortID
	user   ids.ShortID
}

func newLiquidationFixture(t *testing.T) *liquidationFixture {
	h := pooltest.New(t, pooltest.Config{})
	f := &liquidationFixture{
		h:    h,
		user: ids.GenerateTestShortID(),
	}
	configs := [3]pool.ReserveConfig{
		pooltest.DefaultReserveConfig(),
		pooltest.DefaultReserveConfig(),
		pooltest.DefaultReserveConfig(),
	}
	configs[0].CFactor = 8_500_000
	configs[0].LFactor = 9_000_000
	configs[2].CFactor = 0
	configs[2].LFactor = 7_000_000
	bRates := [3]uint64{1_100_000_000, 1_200_000_000, 1_000_000_000}
	prices := [3]uint64{20_000_000, 40_000_000, 500_000_000}

	for i := range f.assets {
		f.assets[i] = ids.GenerateTestShortID()
		h.AddReserve(t, f.assets[i], configs[i])
		data := pool.NewReserveData(h.Env.Ledger.Timestamp)
		data.BRate = uint256.NewInt(bRates[i])
		data.BSupply = uint256.NewInt(10_000_000_000)
		data.DSupply = uint256.NewInt(5_000_000_000)
		h.SetReserveData(t, f.assets[i], data)
		h.SetPrice(t, f.assets[i], prices[i])
	}

	positions := pool.NewPositions()
	positions.Collateral[0] = uint256.NewInt(909_100_000)
	positions.Collateral[1] = uint256.NewInt(45_800_000)
	positions.Liabilities[2] = uint256.NewInt(27_500_000)
	h.SetPositions(t, f.user, positions)
	return f
}

func TestCreateLiquidation(t *testing.T) {
	require := require.New(t)
	f := newLiquidationFixture(t)

	auction, err := auctions.CreateLiquidation(f.h.Env, f.user, 45)
	require.NoError(err)
	require.Equal(pooltest.DefaultSequence+1, auction.Block)
	require.Equal(map[ids.ShortID]*uint256.Int{
		f.assets[0]: uint256.NewInt(305_588_147),
		f.assets[1]: uint256.NewInt(15_395_377),
	}, auction.Lot)
	require.Equal(map[ids.ShortID]*uint256.Int{
		f.assets[2]: uint256.NewInt(12_375_000),
	}, auction.Bid)

	stored, err := f.h.State.GetAuction(pool.UserLiquidation, f.user)
	require.NoError(err)
	require.Equal(auction, stored)

	// Creating the quote changes nothing else.
	require.Equal(uint256.NewInt(27_500_000), f.h.Positions(t, f.user).Liabilities[2])
	require.Empty(f.h.Emissions.Updates)

	_, err = auctions.CreateLiquidation(f.h.Env, f.user, 45)
	require.ErrorIs(err, pool.ErrAuctionInProgress)
}

func TestCreateLiquidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		percent uint64
		healthy bool
		wantErr error
	}{
		{
			name:    "zero percent",
			percent: 0,
			wantErr: pool.ErrInvalidLiquidation,
		},
		{
			name:    "above 100 percent",
			percent: 101,
			wantErr: pool.ErrInvalidLiquidation,
		},
		{
			name:    "full liquidation with enough collateral",
			percent: 100,
			wantErr: pool.ErrInvalidLiqTooLarge,
		},
		{
			name:    "leaves the user too healthy",
			percent: 70,
			wantErr: pool.ErrInvalidLiqTooLarge,
		},
		{
			name:    "leaves the user unhealthy",
			percent: 10,
			wantErr: pool.ErrInvalidLiqTooSmall,
		},
		{
			name:    "healthy user",
			percent: 45,
			healthy: true,
			wantErr: pool.ErrInvalidLiquidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLiquidationFixture(t)
			if tt.healthy {
				positions := pool.NewPositions()
				positions.Collateral[0] = uint256.NewInt(909_100_000)
				positions.Liabilities[2] = uint256.NewInt(1_000_000)
				f.h.SetPositions(t, f.user, positions)
			}
			_, err := auctions.CreateLiquidation(f.h.Env, f.user, tt.percent)
			require.ErrorIs(t, err, tt.wantErr)

			exists, err := f.h.State.HasAuction(pool.UserLiquidation, f.user)
			require.NoError(t, err)
			require.False(t, exists)
		})
	}
}

func TestFillLiquidation(t *testing.T) {
	require := require.New(t)
	f := newLiquidationFixture(t)
	_, err := auctions.CreateLiquidation(f.h.Env, f.user, 45)
	require.NoError(err)

	p, err := pool.Load(f.h.Env)
	require.NoError(err)
	filler, err := pool.LoadUser(f.h.Env, ids.GenerateTestShortID())
	require.NoError(err)

	// Quotes cannot be filled in the block they were created in.
	_, err = auctions.Fill(f.h.Env, p, auctions.DefaultParams(), pool.UserLiquidation, f.user, filler)
	require.ErrorIs(err, pool.ErrBadRequest)

	f.h.Advance(0, 101)
	self, err := pool.LoadUser(f.h.Env, f.user)
	require.NoError(err)
	_, err = auctions.Fill(f.h.Env, p, auctions.DefaultParams(), pool.UserLiquidation, f.user, self)
	require.ErrorIs(err, pool.ErrBadRequest)

	p, err = pool.Load(f.h.Env)
	require.NoError(err)
	filled, err := auctions.Fill(f.h.Env, p, auctions.DefaultParams(), pool.UserLiquidation, f.user, filler)
	require.NoError(err)
	require.NoError(p.StoreCachedReserves(f.h.Env))
	require.NoError(filler.Store(f.h.Env))

	require.Equal(uint256.NewInt(152_794_073), filled.Lot[f.assets[0]])
	require.Equal(uint256.NewInt(7_697_688), filled.Lot[f.assets[1]])
	require.Equal(uint256.NewInt(12_375_000), filled.Bid[f.assets[2]])

	liquidated := f.h.Positions(t, f.user)
	require.Equal(uint256.NewInt(756_305_927), liquidated.Collateral[0])
	require.Equal(uint256.NewInt(38_102_312), liquidated.Collateral[1])
	require.Equal(uint256.NewInt(15_125_000), liquidated.Liabilities[2])

	fillerPositions := f.h.Positions(t, filler.Address)
	require.Equal(uint256.NewInt(152_794_073), fillerPositions.Collateral[0])
	require.Equal(uint256.NewInt(7_697_688), fillerPositions.Collateral[1])
	require.Equal(uint256.NewInt(12_375_000), fillerPositions.Liabilities[2])

	// Share supplies only moved between the two users.
	data, err := f.h.State.GetReserveData(f.assets[2])
	require.NoError(err)
	require.Equal(uint256.NewInt(5_000_000_000), data.DSupply)

	_, err = f.h.State.GetAuction(pool.UserLiquidation, f.user)
	require.ErrorIs(err, pool.ErrAuctionNotFound)
}

func TestDeleteLiquidation(t *testing.T) {
	require := require.New(t)
	f := newLiquidationFixture(t)

	require.ErrorIs(auctions.DeleteLiquidation(f.h.Env, f.user), pool.ErrBadRequest)

	_, err := auctions.CreateLiquidation(f.h.Env, f.user, 45)
	require.NoError(err)
	require.NoError(auctions.DeleteLiquidation(f.h.Env, f.user))

	exists, err := f.h.State.HasAuction(pool.UserLiquidation, f.user)
	require.NoError(err)
	require.False(exists)
}

func TestSubmitDeleteLiquidation(t *testing.T) {
	tests := []struct {
		name        string
		repay       int64
		expectedErr error
	}{
		{
			name:        "still unhealthy",
			expectedErr: pool.ErrInvalidHf,
		},
		{
			name:  "repaid in the same batch",
			repay: 30_000_000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			f := newLiquidationFixture(t)
			_, err := auctions.CreateLiquidation(f.h.Env, f.user, 45)
			require.NoError(err)

			var requests []pool.Request
			if tt.repay != 0 {
				f.h.Mint(t, f.assets[2], f.user, uint64(tt.repay))
				requests = append(requests, pool.Request{
					RequestType: pool.Repay,
					Address:     f.assets[2],
					Amount:      big.NewInt(tt.repay),
				})
			}
			requests = append(requests, pool.Request{
				RequestType: pool.DeleteLiquidationAuction,
				Address:     f.user,
			})

			positions, err := executor.Submit(f.h.Env, auctions.DefaultParams(), f.user, f.user, f.user, requests)
			require.ErrorIs(err, tt.expectedErr)
			if tt.expectedErr != nil {
				return
			}
			require.Empty(positions.Liabilities)
			require.Len(positions.Collateral, 2)
			require.Equal(positions, f.h.Positions(t, f.user))

			exists, err := f.h.State.HasAuction(pool.UserLiquidation, f.user)
			require.NoError(err)
			require.False(exists)

			// 27.5 owed, the rest is refunded.
			require.Equal(uint256.NewInt(2_500_000), f.h.Balance(t, f.assets[2], f.user))
		})
	}
}

// newBackstopPool lists two reserves priced at 1 and 5 and quotes the
// backstop token at 0.5.
func newBackstopPool(t *testing.T) (*pooltest.Harness, ids.ShortID, ids.ShortID) {
	h := pooltest.New(t, pooltest.Config{})
	a, b := ids.GenerateTestShortID(), ids.GenerateTestShortID()
	for _, asset := range []ids.ShortID{a, b} {
		h.AddReserve(t, asset, pooltest.DefaultReserveConfig())
		data := pool.NewReserveData(h.Env.Ledger.Timestamp)
		data.BSupply = uint256.NewInt(1_000_000_000)
		data.DSupply = uint256.NewInt(500_000_000)
		h.SetReserveData(t, asset, data)
	}
	h.SetPrice(t, a, 10_000_000)
	h.SetPrice(t, b, 50_000_000)
	h.SetPrice(t, pooltest.BackstopToken, 5_000_000)
	return h, a, b
}

func setBackstopDebt(t *testing.T, h *pooltest.Harness) {
	positions := pool.NewPositions()
	positions.Liabilities[0] = uint256.NewInt(10_000_000)
	positions.Liabilities[1] = uint256.NewInt(20_000_000)
	h.SetPositions(t, pooltest.BackstopAddress, positions)
}

func TestCreateBadDebtAuction(t *testing.T) {
	require := require.New(t)
	h, a, b := newBackstopPool(t)
	h.FundBackstop(t, 1_000_000_000)

	_, err := auctions.Create(h.Env, auctions.DefaultParams(), pool.BadDebtAuction)
	require.ErrorIs(err, pool.ErrBadRequest)

	setBackstopDebt(t, h)
	auction, err := auctions.Create(h.Env, auctions.DefaultParams(), pool.BadDebtAuction)
	require.NoError(err)
	require.Equal(pooltest.DefaultSequence+1, auction.Block)
	require.Equal(map[ids.ShortID]*uint256.Int{
		a: uint256.NewInt(10_000_000),
		b: uint256.NewInt(20_000_000),
	}, auction.Bid)
	// 1.4 times the debt value of 11.
	require.Equal(map[ids.ShortID]*uint256.Int{
		pooltest.BackstopToken: uint256.NewInt(308_000_000),
	}, auction.Lot)

	_, err = auctions.Create(h.Env, auctions.DefaultParams(), pool.BadDebtAuction)
	require.ErrorIs(err, pool.ErrAuctionInProgress)
	_, err = auctions.Create(h.Env, auctions.DefaultParams(), pool.UserLiquidation)
	require.ErrorIs(err, pool.ErrBadRequest)
}

func TestCreateBadDebtAuctionCappedByBackstop(t *testing.T) {
	h, _, _ := newBackstopPool(t)
	h.FundBackstop(t, 100_000_000)
	setBackstopDebt(t, h)

	auction, err := auctions.Create(h.Env, auctions.DefaultParams(), pool.BadDebtAuction)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(100_000_000), auction.Lot[pooltest.BackstopToken])
}

func TestFillBadDebtAuction(t *testing.T) {
	require := require.New(t)
	h, _, _ := newBackstopPool(t)
	h.FundBackstop(t, 1_000_000_000)
	setBackstopDebt(t, h)
	_, err := auctions.Create(h.Env, auctions.DefaultParams(), pool.BadDebtAuction)
	require.NoError(err)

	h.Advance(0, 101)
	p, err := pool.Load(h.Env)
	require.NoError(err)
	backstop, err := pool.LoadUser(h.Env, pooltest.BackstopAddress)
	require.NoError(err)
	_, err = auctions.Fill(h.Env, p, auctions.DefaultParams(), pool.BadDebtAuction, pooltest.BackstopAddress, backstop)
	require.ErrorIs(err, pool.ErrBadRequest)

	p, err = pool.Load(h.Env)
	require.NoError(err)
	filler, err := pool.LoadUser(h.Env, ids.GenerateTestShortID())
	require.NoError(err)
	_, err = auctions.Fill(h.Env, p, auctions.DefaultParams(), pool.BadDebtAuction, pooltest.BackstopAddress, filler)
	require.NoError(err)
	require.NoError(p.StoreCachedReserves(h.Env))
	require.NoError(filler.Store(h.Env))

	require.Empty(h.Positions(t, pooltest.BackstopAddress).Liabilities)
	fillerPositions := h.Positions(t, filler.Address)
	require.Equal(uint256.NewInt(10_000_000), fillerPositions.Liabilities[0])
	require.Equal(uint256.NewInt(20_000_000), fillerPositions.Liabilities[1])

	// Half the lot after 100 blocks.
	require.Equal(uint256.NewInt(154_000_000), h.Balance(t, pooltest.BackstopToken, filler.Address))
	balance, err := h.State.PoolBalance(pooltest.PoolAddress)
	require.NoError(err)
	require.Equal(uint256.NewInt(846_000_000), balance.Tokens)
}

func TestFillBadDebtAuctionBurnsRemainingDebt(t *testing.T) {
	require := require.New(t)
	h, a, _ := newBackstopPool(t)
	h.FundBackstop(t, 5_000_000)
	setBackstopDebt(t, h)
	_, err := auctions.Create(h.Env, auctions.DefaultParams(), pool.BadDebtAuction)
	require.NoError(err)

	h.Advance(0, 301)
	p, err := pool.Load(h.Env)
	require.NoError(err)
	filler, err := pool.LoadUser(h.Env, ids.GenerateTestShortID())
	require.NoError(err)
	filled, err := auctions.Fill(h.Env, p, auctions.DefaultParams(), pool.BadDebtAuction, pooltest.BackstopAddress, filler)
	require.NoError(err)
	require.NoError(p.StoreCachedReserves(h.Env))
	require.NoError(filler.Store(h.Env))

	// Half the bid after 300 blocks.
	require.Equal(uint256.NewInt(5_000_000), filled.Bid[a])
	require.Equal(uint256.NewInt(5_000_000), h.Balance(t, pooltest.BackstopToken, filler.Address))

	// The exhausted backstop writes off what the filler did not take.
	require.Empty(h.Positions(t, pooltest.BackstopAddress).Liabilities)
	data, err := h.State.GetReserveData(a)
	require.NoError(err)
	require.Equal(uint256.NewInt(495_000_000), data.DSupply)
}

func setBackstopCredit(t *testing.T, h *pooltest.Harness, asset ids.ShortID, credit uint64) {
	data, err := h.State.GetReserveData(asset)
	require.NoError(t, err)
	data.BackstopCredit = uint256.NewInt(credit)
	h.SetReserveData(t, asset, data)
}

func TestCreateInterestAuction(t *testing.T) {
	require := require.New(t)
	h, a, b := newBackstopPool(t)
	setBackstopCredit(t, h, a, 1_500_000_000)
	setBackstopCredit(t, h, b, 200_000_000)

	auction, err := auctions.Create(h.Env, auctions.DefaultParams(), pool.InterestAuction)
	require.NoError(err)
	require.Equal(map[ids.ShortID]*uint256.Int{
		a: uint256.NewInt(1_500_000_000),
		b: uint256.NewInt(200_000_000),
	}, auction.Lot)
	// 1.4 times the interest value of 250.
	require.Equal(map[ids.ShortID]*uint256.Int{
		pooltest.BackstopToken: uint256.NewInt(7_000_000_000),
	}, auction.Bid)

	_, err = auctions.Create(h.Env, auctions.DefaultParams(), pool.InterestAuction)
	require.ErrorIs(err, pool.ErrAuctionInProgress)
}

func TestCreateInterestAuctionTooSmall(t *testing.T) {
	require := require.New(t)
	h, a, b := newBackstopPool(t)
	setBackstopCredit(t, h, a, 1_000_000_000)
	setBackstopCredit(t, h, b, 200_000_000)

	_, err := auctions.Create(h.Env, auctions.DefaultParams(), pool.InterestAuction)
	require.ErrorIs(err, pool.ErrInterestTooSmall)

	params := auctions.DefaultParams()
	params.MinInterestValue = 100
	_, err = auctions.Create(h.Env, params, pool.InterestAuction)
	require.NoError(err)
}

func TestFillInterestAuction(t *testing.T) {
	require := require.New(t)
	h, a, b := newBackstopPool(t)
	setBackstopCredit(t, h, a, 1_500_000_000)
	setBackstopCredit(t, h, b, 200_000_000)
	_, err := auctions.Create(h.Env, auctions.DefaultParams(), pool.InterestAuction)
	require.NoError(err)

	filler := ids.GenerateTestShortID()
	h.Mint(t, pooltest.BackstopToken, filler, 7_000_000_000)
	poolA := h.Balance(t, a, pooltest.PoolAddress)

	h.Advance(0, 201)
	p, err := pool.Load(h.Env)
	require.NoError(err)
	fillerState, err := pool.LoadUser(h.Env, filler)
	require.NoError(err)
	_, err = auctions.Fill(h.Env, p, auctions.DefaultParams(), pool.InterestAuction, pooltest.BackstopAddress, fillerState)
	require.NoError(err)
	require.NoError(p.StoreCachedReserves(h.Env))

	require.True(h.Balance(t, pooltest.BackstopToken, filler).IsZero())
	balance, err := h.State.PoolBalance(pooltest.PoolAddress)
	require.NoError(err)
	require.Equal(uint256.NewInt(7_000_000_000), balance.Tokens)

	require.Equal(uint256.NewInt(1_500_000_000), h.Balance(t, a, filler))
	require.Equal(uint256.NewInt(200_000_000), h.Balance(t, b, filler))
	require.Equal(new(uint256.Int).Sub(poolA, uint256.NewInt(1_500_000_000)), h.Balance(t, a, pooltest.PoolAddress))

	for _, asset := range []ids.ShortID{a, b} {
		data, err := h.State.GetReserveData(asset)
		require.NoError(err)
		require.True(data.BackstopCredit.IsZero())
	}
}
