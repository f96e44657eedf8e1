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

// newPricedPool lists two default reserves priced at 1 and 5.
func newPricedPool(t *testing.T) (*pooltest.Harness, ids.ShortID, ids.ShortID) {
	h := pooltest.New(t, pooltest.Config{})
	a, b := ids.GenerateTestShortID(), ids.GenerateTestShortID()
	h.AddReserve(t, a, pooltest.DefaultReserveConfig())
	h.AddReserve(t, b, pooltest.DefaultReserveConfig())
	h.SetPrice(t, a, 10_000_000)
	h.SetPrice(t, b, 50_000_000)
	return h, a, b
}

func TestCalculatePositionData(t *testing.T) {
	require := require.New(t)
	h, _, _ := newPricedPool(t)
	p, err := pool.Load(h.Env)
	require.NoError(err)

	positions := pool.NewPositions()
	positions.Collateral[0] = uint256.NewInt(1_000_000_000)
	positions.Liabilities[1] = uint256.NewInt(100_000_000)
	// Supply positions carry no weight.
	positions.Supply[1] = uint256.NewInt(5_000_000_000)

	data, err := pool.CalculatePositionData(h.Env, p, positions)
	require.NoError(err)
	require.Equal(uint256.NewInt(750_000_000), data.CollateralBase)
	require.Equal(uint256.NewInt(1_000_000_000), data.CollateralRaw)
	require.Equal(uint256.NewInt(666_666_670), data.LiabilityBase)
	require.Equal(uint256.NewInt(500_000_000), data.LiabilityRaw)
	require.Equal(uint256.NewInt(10_000_000), data.Scalar)

	hf, err := data.AsHealthFactor()
	require.NoError(err)
	require.Equal(uint256.NewInt(11_250_000), hf)
	require.NoError(data.RequireHealthy())
}

func TestRequireHealthy(t *testing.T) {
	scalar := uint256.NewInt(10_000_000)
	tests := []struct {
		name        string
		collateral  uint64
		liabilities uint64
		wantErr     error
	}{
		{
			name:       "no liabilities",
			collateral: 0,
		},
		{
			name:        "at minimum",
			collateral:  10_000_100,
			liabilities: 10_000_000,
		},
		{
			name:        "below minimum",
			collateral:  10_000_099,
			liabilities: 10_000_000,
			wantErr:     pool.ErrInvalidHf,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := &pool.PositionData{
				CollateralBase: uint256.NewInt(tt.collateral),
				LiabilityBase:  uint256.NewInt(tt.liabilities),
				CollateralRaw:  uint256.NewInt(tt.collateral),
				LiabilityRaw:   uint256.NewInt(tt.liabilities),
				Scalar:         scalar,
			}
			err := data.RequireHealthy()
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCalculatePositionDataStalePrice(t *testing.T) {
	h, _, _ := newPricedPool(t)
	h.Advance(pool.PriceMaxAge+1, 1)
	p, err := pool.Load(h.Env)
	require.NoError(t, err)

	positions := pool.NewPositions()
	positions.Collateral[0] = uint256.NewInt(1)
	_, err = pool.CalculatePositionData(h.Env, p, positions)
	require.ErrorIs(t, err, pool.ErrStalePrice)
}
