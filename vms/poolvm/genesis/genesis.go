// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package genesis describes the initial state of a pool chain.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/lending/vms/poolvm/pool"
)

var (
	ErrInvalidGenesis = errors.New("invalid genesis")
)

// Reserve is a reserve listed at genesis.
type Reserve struct {
	Asset  ids.ShortID        `json:"asset"`
	Config pool.ReserveConfig `json:"config"`
}

// Price is an oracle quote published at genesis.
type Price struct {
	Asset ids.ShortID  `json:"asset"`
	Price *uint256.Int `json:"price"`
}

// Balance is a token balance minted at genesis.
type Balance struct {
	Asset  ids.ShortID  `json:"asset"`
	Holder ids.ShortID  `json:"holder"`
	Amount *uint256.Int `json:"amount"`
}

// Deposit is a backstop deposit made at genesis. The depositor must hold
// the backstop tokens through Balances.
type Deposit struct {
	Depositor ids.ShortID  `json:"depositor"`
	Amount    *uint256.Int `json:"amount"`
}

// Genesis is the JSON document a pool chain starts from.
type Genesis struct {
	// Timestamp is the time of the genesis block in unix seconds.
	Timestamp uint64 `json:"timestamp"`

	// PoolAddress holds the pool's underlying tokens.
	PoolAddress    ids.ShortID `json:"poolAddress"`
	OracleDecimals uint32      `json:"oracleDecimals"`
	// BackstopToken is the asset backstop deposits are made in.
	BackstopToken ids.ShortID     `json:"backstopToken"`
	Pool          pool.PoolConfig `json:"pool"`

	Reserves         []Reserve `json:"reserves"`
	Prices           []Price   `json:"prices"`
	Balances         []Balance `json:"balances"`
	BackstopDeposits []Deposit `json:"backstopDeposits"`
}

// Parse decodes and verifies genesis bytes.
func Parse(genesisBytes []byte) (*Genesis, error) {
	g := &Genesis{}
	if err := json.Unmarshal(genesisBytes, g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal genesis: %w", err)
	}
	if err := g.Verify(); err != nil {
		return nil, err
	}
	return g, nil
}

// Bytes encodes the genesis.
func (g *Genesis) Bytes() ([]byte, error) {
	return json.Marshal(g)
}

func (g *Genesis) Verify() error {
	switch {
	case g.Timestamp == 0:
		return fmt.Errorf("%w: missing timestamp", ErrInvalidGenesis)
	case g.PoolAddress == ids.ShortEmpty:
		return fmt.Errorf("%w: missing pool address", ErrInvalidGenesis)
	case g.Pool.Backstop == ids.ShortEmpty:
		return fmt.Errorf("%w: missing backstop address", ErrInvalidGenesis)
	case g.BackstopToken == ids.ShortEmpty:
		return fmt.Errorf("%w: missing backstop token", ErrInvalidGenesis)
	}

	listed := make(map[ids.ShortID]struct{}, len(g.Reserves))
	for i, reserve := range g.Reserves {
		if _, ok := listed[reserve.Asset]; ok {
			return fmt.Errorf("%w: reserve %d lists %s twice", ErrInvalidGenesis, i, reserve.Asset)
		}
		listed[reserve.Asset] = struct{}{}
	}
	for i, price := range g.Prices {
		if price.Price == nil || price.Price.IsZero() {
			return fmt.Errorf("%w: price %d of %s is zero", ErrInvalidGenesis, i, price.Asset)
		}
	}
	for i, balance := range g.Balances {
		if balance.Amount == nil {
			return fmt.Errorf("%w: balance %d has no amount", ErrInvalidGenesis, i)
		}
	}
	for i, deposit := range g.BackstopDeposits {
		if deposit.Amount == nil || deposit.Amount.IsZero() {
			return fmt.Errorf("%w: backstop deposit %d is zero", ErrInvalidGenesis, i)
		}
	}
	return nil
}
