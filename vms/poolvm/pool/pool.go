// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
)

// Pool caches the reserves, prices and oracle decimals read during one
// invocation so that every step of the invocation sees the same values.
type Pool struct {
	Config *PoolConfig

	reserveList     []ids.ShortID
	reserves        map[ids.ShortID]*Reserve
	reservesToStore []ids.ShortID
	storeSet        map[ids.ShortID]struct{}
	priceDecimals   *uint32
	prices          map[ids.ShortID]*uint256.Int
}

// Load reads the pool config. Reserves and prices are loaded lazily.
func Load(env *Env) (*Pool, error) {
	config, err := env.Storage.GetPoolConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load pool config: %w", err)
	}
	return &Pool{
		Config:   config,
		reserves: make(map[ids.ShortID]*Reserve),
		storeSet: make(map[ids.ShortID]struct{}),
		prices:   make(map[ids.ShortID]*uint256.Int),
	}, nil
}

// LoadReserve returns a copy of the reserve of asset, accrued to the current
// timestamp. If store is set the reserve is persisted by
// StoreCachedReserves; the caller must hand its changes back through
// CacheReserve.
func (p *Pool) LoadReserve(env *Env, asset ids.ShortID, store bool) (*Reserve, error) {
	if store {
		if _, ok := p.storeSet[asset]; !ok {
			p.storeSet[asset] = struct{}{}
			p.reservesToStore = append(p.reservesToStore, asset)
		}
	}
	if reserve, ok := p.reserves[asset]; ok {
		cpy := *reserve
		return &cpy, nil
	}
	return LoadReserve(env, p.Config, asset)
}

// CacheReserve records the latest state of reserve for this invocation.
func (p *Pool) CacheReserve(reserve *Reserve) {
	cpy := *reserve
	p.reserves[reserve.Asset] = &cpy
}

// StoreCachedReserves persists every reserve loaded with store set.
func (p *Pool) StoreCachedReserves(env *Env) error {
	for _, asset := range p.reservesToStore {
		reserve, ok := p.reserves[asset]
		if !ok {
			return fmt.Errorf("%w: %s was never cached", ErrReserveNotFound, asset)
		}
		if err := reserve.Store(env); err != nil {
			return err
		}
	}
	return nil
}

// ReserveList returns the assets of the pool ordered by reserve index.
func (p *Pool) ReserveList(env *Env) ([]ids.ShortID, error) {
	if p.reserveList != nil {
		return p.reserveList, nil
	}
	list, err := env.Storage.GetReserveList()
	if err != nil {
		return nil, err
	}
	p.reserveList = list
	return list, nil
}

// ReserveAsset returns the asset at reserve index.
func (p *Pool) ReserveAsset(env *Env, index uint32) (ids.ShortID, error) {
	list, err := p.ReserveList(env)
	if err != nil {
		return ids.ShortEmpty, err
	}
	if int(index) >= len(list) {
		return ids.ShortEmpty, fmt.Errorf("%w: index %d", ErrReserveNotFound, index)
	}
	return list[index], nil
}

// LoadPriceDecimals returns the oracle's price decimals.
func (p *Pool) LoadPriceDecimals(env *Env) (uint32, error) {
	if p.priceDecimals != nil {
		return *p.priceDecimals, nil
	}
	decimals, err := env.Oracle.Decimals()
	if err != nil {
		return 0, err
	}
	p.priceDecimals = &decimals
	return decimals, nil
}

// LoadPrice returns the oracle price of asset. It returns ErrStalePrice if
// the price is older than PriceMaxAge.
func (p *Pool) LoadPrice(env *Env, asset ids.ShortID) (*uint256.Int, error) {
	if price, ok := p.prices[asset]; ok {
		return price, nil
	}
	data, err := env.Oracle.LastPrice(asset)
	if err != nil {
		return nil, fmt.Errorf("failed to load price of %s: %w", asset, err)
	}
	if data.Timestamp+PriceMaxAge < env.Ledger.Timestamp {
		return nil, fmt.Errorf("%w: %s last updated at %d", ErrStalePrice, asset, data.Timestamp)
	}
	p.prices[asset] = data.Price
	return data.Price, nil
}

// RequireActionAllowed returns ErrInvalidPoolStatus if requestType may not
// be executed in the current pool status.
func (p *Pool) RequireActionAllowed(requestType RequestType) error {
	return p.Config.RequireActionAllowed(requestType)
}

// RequireUnderMax returns ErrMaxPositionsExceeded if positions grew beyond
// the pool's limit. Shrinking position sets are always accepted.
func (p *Pool) RequireUnderMax(positions *Positions, previous int) error {
	count := positions.EffectiveCount()
	if count > previous && count > int(p.Config.MaxPositions) {
		return fmt.Errorf("%w: %d > %d", ErrMaxPositionsExceeded, count, p.Config.MaxPositions)
	}
	return nil
}
