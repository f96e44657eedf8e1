// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lending/vms/poolvm/pool"
)

func newGenesis() *Genesis {
	asset := ids.ShortID{1}
	return &Genesis{
		Timestamp:      1_700_000_000,
		PoolAddress:    ids.ShortID{2},
		OracleDecimals: 7,
		BackstopToken:  ids.ShortID{3},
		Pool: pool.PoolConfig{
			Admin:            ids.ShortID{4},
			Oracle:           ids.ShortID{5},
			Backstop:         ids.ShortID{6},
			BackstopTakeRate: 1_000_000,
			MaxPositions:     4,
		},
		Reserves: []Reserve{{
			Asset: asset,
			Config: pool.ReserveConfig{
				Decimals: 7,
				CFactor:  7_500_000,
				LFactor:  7_500_000,
				Util:     7_500_000,
				MaxUtil:  9_500_000,
			},
		}},
		Prices: []Price{{
			Asset: asset,
			Price: uint256.NewInt(10_000_000),
		}},
		Balances: []Balance{{
			Asset:  asset,
			Holder: ids.ShortID{7},
			Amount: uint256.NewInt(1_000),
		}},
	}
}

func TestParse(t *testing.T) {
	require := require.New(t)
	g := newGenesis()
	bytes, err := g.Bytes()
	require.NoError(err)

	parsed, err := Parse(bytes)
	require.NoError(err)
	require.Equal(g, parsed)

	_, err = Parse([]byte("{"))
	require.Error(err)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Genesis)
	}{
		{
			name: "missing timestamp",
			modify: func(g *Genesis) {
				g.Timestamp = 0
			},
		},
		{
			name: "missing pool address",
			modify: func(g *Genesis) {
				g.PoolAddress = ids.ShortEmpty
			},
		},
		{
			name: "missing backstop",
			modify: func(g *Genesis) {
				g.Pool.Backstop = ids.ShortEmpty
			},
		},
		{
			name: "duplicate reserve",
			modify: func(g *Genesis) {
				g.Reserves = append(g.Reserves, g.Reserves[0])
			},
		},
		{
			name: "zero price",
			modify: func(g *Genesis) {
				g.Prices[0].Price = new(uint256.Int)
			},
		},
		{
			name: "zero backstop deposit",
			modify: func(g *Genesis) {
				g.BackstopDeposits = []Deposit{{Depositor: ids.ShortID{7}}}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGenesis()
			tt.modify(g)
			require.ErrorIs(t, g.Verify(), ErrInvalidGenesis)
		})
	}
}
