// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pooltest builds ready to use pool environments for tests.
package pooltest

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lending/vms/poolvm/pool"
	"github.com/luxfi/lending/vms/poolvm/state"
)

const (
	DefaultTimestamp uint64 = 1_700_000_000
	DefaultSequence  uint32 = 100
	OracleDecimals   uint32 = 7
)

var (
	PoolAddress     = ids.GenerateTestShortID()
	Admin           = ids.GenerateTestShortID()
	Oracle          = ids.GenerateTestShortID()
	BackstopAddress = ids.GenerateTestShortID()
	BackstopToken   = ids.GenerateTestShortID()
)

// DefaultReserveConfig is a 7 decimal reserve with 0.75 collateral and
// liability factors.
func DefaultReserveConfig() pool.ReserveConfig {
	return pool.ReserveConfig{
		Decimals:   7,
		CFactor:    7_500_000,
		LFactor:    7_500_000,
		Util:       7_500_000,
		MaxUtil:    9_500_000,
		ROne:       500_000,
		RTwo:       5_000_000,
		RThree:     15_000_000,
		Reactivity: 2_000,
	}
}

// DefaultPoolConfig is an active pool with a 10% backstop take rate.
func DefaultPoolConfig() pool.PoolConfig {
	return pool.PoolConfig{
		Admin:             Admin,
		Oracle:            Oracle,
		Backstop:          BackstopAddress,
		BackstopTakeRate:  1_000_000,
		Status:            pool.StatusActive,
		MaxPositions:      4,
		MinBackstopTokens: new(uint256.Int),
	}
}

type Config struct {
	DB        database.Database
	Timestamp uint64
	Sequence  uint32
	// Pool defaults to DefaultPoolConfig when nil.
	Pool *pool.PoolConfig
}

// Harness is an initialized pool on an in-memory state.
type Harness struct {
	Env       *pool.Env
	State     *state.State
	Emissions *Emissions
}

func New(t testing.TB, c Config) *Harness {
	if c.DB == nil {
		c.DB = memdb.New()
	}
	if c.Timestamp == 0 {
		c.Timestamp = DefaultTimestamp
	}
	if c.Sequence == 0 {
		c.Sequence = DefaultSequence
	}
	if c.Pool == nil {
		config := DefaultPoolConfig()
		c.Pool = &config
	}

	s := state.New(c.DB)
	require.NoError(t, s.SetMetadata(&state.Metadata{
		PoolAddress:     PoolAddress,
		OracleDecimals:  OracleDecimals,
		BackstopAddress: c.Pool.Backstop,
		BackstopToken:   BackstopToken,
	}))

	emissions := &Emissions{}
	env := &pool.Env{
		Storage: s,
		Ledger: pool.Ledger{
			Timestamp: c.Timestamp,
			Sequence:  c.Sequence,
		},
		Address:   PoolAddress,
		Oracle:    s,
		Tokens:    s,
		Backstop:  s,
		Emissions: emissions,
		Log:       log.NewNoOpLogger(),
	}
	require.NoError(t, pool.InitializePool(env, c.Pool))
	return &Harness{
		Env:       env,
		State:     s,
		Emissions: emissions,
	}
}

// AddReserve lists asset with config and returns its reserve index.
func (h *Harness) AddReserve(t testing.TB, asset ids.ShortID, config pool.ReserveConfig) uint32 {
	index, err := pool.InitializeReserve(h.Env, asset, &config)
	require.NoError(t, err)
	return index
}

// SetReserveData overwrites the accounting state of asset and mints the
// pool the underlying it must hold for data to be consistent.
func (h *Harness) SetReserveData(t testing.TB, asset ids.ShortID, data *pool.ReserveData) {
	require.NoError(t, h.State.SetReserveData(asset, data))
	reserve := &pool.Reserve{ReserveData: *data}
	supplied, err := reserve.TotalSupply()
	require.NoError(t, err)
	borrowed, err := reserve.TotalLiabilities()
	require.NoError(t, err)
	owed := new(uint256.Int).Add(supplied, data.BackstopCredit)
	if !owed.Gt(borrowed) {
		return
	}
	required := new(uint256.Int).Sub(owed, borrowed)
	held, err := h.State.Balance(asset, PoolAddress)
	require.NoError(t, err)
	if required.Gt(held) {
		require.NoError(t, h.State.Mint(asset, PoolAddress, new(uint256.Int).Sub(required, held)))
	}
}

// SetPrice quotes asset at the current timestamp.
func (h *Harness) SetPrice(t testing.TB, asset ids.ShortID, price uint64) {
	require.NoError(t, h.State.SetPrice(asset, &pool.PriceData{
		Price:     uint256.NewInt(price),
		Timestamp: h.Env.Ledger.Timestamp,
	}))
}

func (h *Harness) Mint(t testing.TB, asset, holder ids.ShortID, amount uint64) {
	require.NoError(t, h.State.Mint(asset, holder, uint256.NewInt(amount)))
}

func (h *Harness) Balance(t testing.TB, asset, holder ids.ShortID) *uint256.Int {
	balance, err := h.State.Balance(asset, holder)
	require.NoError(t, err)
	return balance
}

// FundBackstop deposits amount of backstop tokens for the pool from a fresh
// depositor and returns the depositor.
func (h *Harness) FundBackstop(t testing.TB, amount uint64) ids.ShortID {
	depositor := ids.GenerateTestShortID()
	h.Mint(t, BackstopToken, depositor, amount)
	_, err := h.State.Deposit(PoolAddress, depositor, uint256.NewInt(amount))
	require.NoError(t, err)
	return depositor
}

func (h *Harness) SetPositions(t testing.TB, user ids.ShortID, positions *pool.Positions) {
	require.NoError(t, h.State.SetPositions(user, positions))
}

func (h *Harness) Positions(t testing.TB, user ids.ShortID) *pool.Positions {
	positions, err := h.State.GetPositions(user)
	require.NoError(t, err)
	return positions
}

// Advance moves the ledger forward.
func (h *Harness) Advance(seconds uint64, blocks uint32) {
	h.Env.Ledger.Timestamp += seconds
	h.Env.Ledger.Sequence += blocks
}

// EmissionsUpdate is one recorded balance change notification.
type EmissionsUpdate struct {
	ReserveTokenID uint32
	Supply         *uint256.Int
	Scalar         *uint256.Int
	User           ids.ShortID
	Balance        *uint256.Int
	IsLiability    bool
}

// Emissions records every notification it receives.
type Emissions struct {
	Updates []EmissionsUpdate
}

func (e *Emissions) UpdateEmissions(
	reserveTokenID uint32,
	supply *uint256.Int,
	scalar *uint256.Int,
	user ids.ShortID,
	balance *uint256.Int,
	isLiability bool,
) error {
	e.Updates = append(e.Updates, EmissionsUpdate{
		ReserveTokenID: reserveTokenID,
		Supply:         supply,
		Scalar:         scalar,
		User:           user,
		Balance:        balance,
		IsLiability:    isLiability,
	})
	return nil
}
