// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lending/vms/poolvm/pool"
	"github.com/luxfi/lending/vms/poolvm/pooltest"
)

func TestCalcAccrual(t *testing.T) {
	tests := []struct {
		name          string
		util          uint64
		irMod         uint64
		lastTime      uint64
		now           uint64
		wantAccrual   uint64
		wantIRModNext uint64
	}{
		{
			name:          "below target",
			util:          6_565_656,
			irMod:         1_000_000_000,
			now:           500,
			wantAccrual:   1_000_000_853,
			wantIRModNext: 999_906_566,
		},
		{
			name:          "above target",
			util:          7_979_797,
			irMod:         1_000_000_000,
			now:           500,
			wantAccrual:   1_000_002_853,
			wantIRModNext: 1_000_047_979,
		},
		{
			name:          "above excess utilization",
			util:          9_696_969,
			irMod:         1_000_000_000,
			now:           500,
			wantAccrual:   1_000_018_247,
			wantIRModNext: 1_000_219_696,
		},
		{
			name:          "rate modifier capped",
			util:          9_696_969,
			irMod:         9_997_000_000,
			now:           12_345,
			wantAccrual:   1_002_422_817,
			wantIRModNext: 10_000_000_000,
		},
		{
			name:          "rate modifier floored",
			util:          2_020_202,
			irMod:         150_000_000,
			now:           50_000,
			wantAccrual:   1_000_005_582,
			wantIRModNext: 100_000_000,
		},
		{
			name:          "interest rounds up",
			util:          500_000,
			irMod:         100_000_000,
			lastTime:      500,
			now:           501,
			wantAccrual:   1_000_000_001,
			wantIRModNext: 100_000_000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			config := pooltest.DefaultReserveConfig()
			accrual, irMod, err := pool.CalcAccrual(
				&config,
				uint256.NewInt(tt.util),
				uint256.NewInt(tt.irMod),
				tt.lastTime,
				tt.now,
			)
			require.NoError(err)
			require.Equal(uint256.NewInt(tt.wantAccrual), accrual)
			require.Equal(uint256.NewInt(tt.wantIRModNext), irMod)
		})
	}
}

func TestCalcAccrualTimeTravel(t *testing.T) {
	config := pooltest.DefaultReserveConfig()
	_, _, err := pool.CalcAccrual(&config, uint256.NewInt(1), pool.Scalar9, 10, 9)
	require.Error(t, err)
}
