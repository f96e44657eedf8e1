// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor_test

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

// newSubmitPool lists two reserves priced at 1 and 5. A lender supplies 10
// of the second one.
func newSubmitPool(t *testing.T, config *pool.PoolConfig) (*pooltest.Harness, ids.ShortID, ids.ShortID) {
	h := pooltest.New(t, pooltest.Config{Pool: config})
	a, b := ids.GenerateTestShortID(), ids.GenerateTestShortID()
	h.AddReserve(t, a, pooltest.DefaultReserveConfig())
	h.AddReserve(t, b, pooltest.DefaultReserveConfig())
	h.SetPrice(t, a, 10_000_000)
	h.SetPrice(t, b, 50_000_000)

	lender := ids.GenerateTestShortID()
	h.Mint(t, b, lender, 100_000_000)
	_, err := submit(h, lender, request(pool.Supply, b, 100_000_000))
	require.NoError(t, err)
	return h, a, b
}

func request(requestType pool.RequestType, address ids.ShortID, amount int64) pool.Request {
	return pool.Request{
		RequestType: requestType,
		Address:     address,
		Amount:      big.NewInt(amount),
	}
}

func submit(h *pooltest.Harness, from ids.ShortID, requests ...pool.Request) (*pool.Positions, error) {
	return executor.Submit(h.Env, auctions.DefaultParams(), from, from, from, requests)
}

func TestSubmitSupplyAndBorrow(t *testing.T) {
	require := require.New(t)
	h, a, b := newSubmitPool(t, nil)
	user := ids.GenerateTestShortID()
	h.Mint(t, a, user, 160_000_000)

	positions, err := submit(h, user,
		request(pool.SupplyCollateral, a, 150_000_000),
		request(pool.Borrow, b, 15_000_000),
	)
	require.NoError(err)
	require.Equal(map[uint32]*uint256.Int{0: uint256.NewInt(150_000_000)}, positions.Collateral)
	require.Equal(map[uint32]*uint256.Int{1: uint256.NewInt(15_000_000)}, positions.Liabilities)
	require.Empty(positions.Supply)
	require.Equal(positions, h.Positions(t, user))

	require.Equal(uint256.NewInt(10_000_000), h.Balance(t, a, user))
	require.Equal(uint256.NewInt(15_000_000), h.Balance(t, b, user))
	require.Equal(uint256.NewInt(150_000_000), h.Balance(t, a, pooltest.PoolAddress))
	require.Equal(uint256.NewInt(85_000_000), h.Balance(t, b, pooltest.PoolAddress))

	reserveA, err := h.State.GetReserveData(a)
	require.NoError(err)
	require.Equal(uint256.NewInt(150_000_000), reserveA.BSupply)
	reserveB, err := h.State.GetReserveData(b)
	require.NoError(err)
	require.Equal(uint256.NewInt(100_000_000), reserveB.BSupply)
	require.Equal(uint256.NewInt(15_000_000), reserveB.DSupply)

	// Every share change was announced with the balance before it.
	require.NotEmpty(h.Emissions.Updates)
	last := h.Emissions.Updates[len(h.Emissions.Updates)-1]
	require.Equal(uint32(2), last.ReserveTokenID)
	require.Equal(user, last.User)
	require.True(last.Balance.IsZero())
	require.True(last.IsLiability)
}

func TestSubmitRepayRefundsOverpayment(t *testing.T) {
	require := require.New(t)
	h, a, b := newSubmitPool(t, nil)
	user := ids.GenerateTestShortID()
	h.Mint(t, a, user, 160_000_000)
	_, err := submit(h, user,
		request(pool.SupplyCollateral, a, 150_000_000),
		request(pool.Borrow, b, 15_000_000),
	)
	require.NoError(err)

	h.Mint(t, b, user, 5_000_000)
	positions, err := submit(h, user,
		request(pool.Repay, b, 20_000_000),
		request(pool.WithdrawCollateral, a, 1_000_000_000),
	)
	require.NoError(err)
	require.Empty(positions.Liabilities)
	require.Empty(positions.Collateral)

	require.Equal(uint256.NewInt(5_000_000), h.Balance(t, b, user))
	require.Equal(uint256.NewInt(160_000_000), h.Balance(t, a, user))
	require.Equal(uint256.NewInt(100_000_000), h.Balance(t, b, pooltest.PoolAddress))
	require.True(h.Balance(t, a, pooltest.PoolAddress).IsZero())
}

func TestSubmitWithdrawIsCapped(t *testing.T) {
	require := require.New(t)
	h, _, b := newSubmitPool(t, nil)
	user := ids.GenerateTestShortID()
	h.Mint(t, b, user, 30_000_000)

	_, err := submit(h, user, request(pool.Supply, b, 30_000_000))
	require.NoError(err)
	positions, err := submit(h, user, request(pool.Withdraw, b, 50_000_000))
	require.NoError(err)
	require.Empty(positions.Supply)
	require.Equal(uint256.NewInt(30_000_000), h.Balance(t, b, user))
}

func TestSubmitIsAllOrNothing(t *testing.T) {
	require := require.New(t)
	h, a, b := newSubmitPool(t, nil)
	user := ids.GenerateTestShortID()
	h.Mint(t, a, user, 160_000_000)

	_, err := submit(h, user,
		request(pool.SupplyCollateral, a, 150_000_000),
		request(pool.Borrow, b, 30_000_000),
	)
	require.ErrorIs(err, pool.ErrInvalidHf)

	require.Empty(h.Positions(t, user).Collateral)
	require.Equal(uint256.NewInt(160_000_000), h.Balance(t, a, user))
	require.True(h.Balance(t, b, user).IsZero())
	reserveA, err := h.State.GetReserveData(a)
	require.NoError(err)
	require.True(reserveA.BSupply.IsZero())
}

func TestSubmitErrors(t *testing.T) {
	tests := []struct {
		name     string
		config   func(*pool.PoolConfig)
		requests func(a, b ids.ShortID) []pool.Request
		wantErr  error
	}{
		{
			name: "no requests",
			requests: func(ids.ShortID, ids.ShortID) []pool.Request {
				return nil
			},
			wantErr: pool.ErrBadRequest,
		},
		{
			name: "negative amount",
			requests: func(a, _ ids.ShortID) []pool.Request {
				return []pool.Request{request(pool.Supply, a, -1)}
			},
			wantErr: pool.ErrNegativeAmount,
		},
		{
			name: "unknown request type",
			requests: func(a, _ ids.ShortID) []pool.Request {
				return []pool.Request{request(pool.RequestType(10), a, 1)}
			},
			wantErr: pool.ErrBadRequest,
		},
		{
			name: "unknown reserve",
			requests: func(ids.ShortID, ids.ShortID) []pool.Request {
				return []pool.Request{request(pool.Supply, ids.GenerateTestShortID(), 1)}
			},
			wantErr: pool.ErrReserveNotFound,
		},
		{
			name: "borrow while on ice",
			config: func(c *pool.PoolConfig) {
				c.Status = pool.StatusOnIce
			},
			requests: func(a, b ids.ShortID) []pool.Request {
				return []pool.Request{
					request(pool.SupplyCollateral, a, 150_000_000),
					request(pool.Borrow, b, 1),
				}
			},
			wantErr: pool.ErrInvalidPoolStatus,
		},
		{
			name: "utilization above max",
			requests: func(a, b ids.ShortID) []pool.Request {
				return []pool.Request{
					request(pool.SupplyCollateral, a, 150_000_000),
					request(pool.Borrow, b, 96_000_000),
				}
			},
			wantErr: pool.ErrInvalidUtilRate,
		},
		{
			name: "too many positions",
			config: func(c *pool.PoolConfig) {
				c.MaxPositions = 2
			},
			requests: func(a, b ids.ShortID) []pool.Request {
				return []pool.Request{
					request(pool.SupplyCollateral, a, 100_000_000),
					request(pool.SupplyCollateral, b, 1_000_000),
					request(pool.Borrow, b, 1_000_000),
				}
			},
			wantErr: pool.ErrMaxPositionsExceeded,
		},
		{
			name: "spender cannot pay",
			requests: func(a, _ ids.ShortID) []pool.Request {
				return []pool.Request{request(pool.Supply, a, 200_000_000)}
			},
			wantErr: pool.ErrInsufficientFunds,
		},
		{
			name: "fill of a missing auction",
			requests: func(a, _ ids.ShortID) []pool.Request {
				return []pool.Request{request(pool.FillUserLiquidationAuction, ids.GenerateTestShortID(), 100)}
			},
			wantErr: pool.ErrAuctionNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := pooltest.DefaultPoolConfig()
			if tt.config != nil {
				tt.config(&config)
			}
			h, a, b := newSubmitPool(t, &config)
			user := ids.GenerateTestShortID()
			h.Mint(t, a, user, 160_000_000)
			h.Mint(t, b, user, 1_000_000)

			_, err := submit(h, user, tt.requests(a, b)...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSubmitFillsLiquidation(t *testing.T) {
	require := require.New(t)
	h, a, b := newSubmitPool(t, nil)
	borrower := ids.GenerateTestShortID()
	h.Mint(t, a, borrower, 150_000_000)
	_, err := submit(h, borrower,
		request(pool.SupplyCollateral, a, 150_000_000),
		request(pool.Borrow, b, 15_000_000),
	)
	require.NoError(err)

	// The collateral loses a third of its value.
	h.Advance(5, 1)
	h.SetPrice(t, a, 6_666_667)
	h.SetPrice(t, b, 50_000_000)
	_, err = auctions.CreateLiquidation(h.Env, borrower, 85)
	require.NoError(err)

	liquidator := ids.GenerateTestShortID()
	h.Mint(t, a, liquidator, 1_000_000_000)
	h.Advance(5, 200)
	h.SetPrice(t, a, 6_666_667)
	h.SetPrice(t, b, 50_000_000)
	positions, err := submit(h, liquidator,
		request(pool.SupplyCollateral, a, 1_000_000_000),
		request(pool.FillUserLiquidationAuction, borrower, 100),
	)
	require.NoError(err)
	require.NotEmpty(positions.Liabilities)
	require.NotEmpty(h.Positions(t, borrower).Liabilities)

	exists, err := h.State.HasAuction(pool.UserLiquidation, borrower)
	require.NoError(err)
	require.False(exists)
}
