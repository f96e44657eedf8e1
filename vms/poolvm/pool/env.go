// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
)

// Oracle provides asset prices denominated in the pool's base asset.
type Oracle interface {
	// Decimals returns the number of decimals of every price.
	Decimals() (uint32, error)
	// LastPrice returns the most recent price of asset, or ErrPriceNotFound.
	LastPrice(asset ids.ShortID) (*PriceData, error)
}

// Tokens is a multi-asset token ledger.
type Tokens interface {
	// Transfer moves amount of asset from one holder to another. It returns
	// ErrInsufficientFunds if from does not hold enough.
	Transfer(asset, from, to ids.ShortID, amount *uint256.Int) error
	Balance(asset, holder ids.ShortID) (*uint256.Int, error)
}

// Backstop is the insurance module that absorbs the pool's bad debt.
type Backstop interface {
	// Token returns the asset of the backstop deposits.
	Token() (ids.ShortID, error)
	PoolBalance(pool ids.ShortID) (*PoolBalance, error)
	// Draw pays amount of backstop tokens deposited for pool to to.
	Draw(pool ids.ShortID, amount *uint256.Int, to ids.ShortID) error
	// Donate adds amount of backstop tokens from from to pool's deposit.
	Donate(pool, from ids.ShortID, amount *uint256.Int) error
}

// Emissions is notified before every change of a user's reserve token
// balance. Supply and balance are the values before the change.
//
// Reserve token ids are reserveIndex*2 for dTokens and reserveIndex*2+1 for
// bTokens.
type Emissions interface {
	UpdateEmissions(
		reserveTokenID uint32,
		supply *uint256.Int,
		scalar *uint256.Int,
		user ids.ShortID,
		balance *uint256.Int,
		isLiability bool,
	) error
}

// Storage persists the pool's records.
type Storage interface {
	GetPoolConfig() (*PoolConfig, error)
	SetPoolConfig(config *PoolConfig) error

	GetReserveList() ([]ids.ShortID, error)
	// PushReserveList appends asset and returns its reserve index.
	PushReserveList(asset ids.ShortID) (uint32, error)

	HasReserve(asset ids.ShortID) (bool, error)
	GetReserveConfig(asset ids.ShortID) (*ReserveConfig, error)
	SetReserveConfig(asset ids.ShortID, config *ReserveConfig) error
	GetReserveData(asset ids.ShortID) (*ReserveData, error)
	SetReserveData(asset ids.ShortID, data *ReserveData) error

	HasQueuedReserve(asset ids.ShortID) (bool, error)
	GetQueuedReserve(asset ids.ShortID) (*QueuedReserveInit, error)
	SetQueuedReserve(asset ids.ShortID, init *QueuedReserveInit) error
	DeleteQueuedReserve(asset ids.ShortID) error

	// GetPositions returns empty positions for unknown users.
	GetPositions(user ids.ShortID) (*Positions, error)
	SetPositions(user ids.ShortID, positions *Positions) error

	HasAuction(auctionType AuctionType, user ids.ShortID) (bool, error)
	GetAuction(auctionType AuctionType, user ids.ShortID) (*AuctionData, error)
	SetAuction(auctionType AuctionType, user ids.ShortID, auction *AuctionData) error
	DeleteAuction(auctionType AuctionType, user ids.ShortID) error
}

// Ledger is the chain position an invocation executes at.
type Ledger struct {
	Timestamp uint64
	Sequence  uint32
}

// Env is the handle threaded through every pool operation. It bundles the
// pool's storage, the current ledger position and the collaborators.
type Env struct {
	Storage Storage
	Ledger  Ledger
	// Address is the account that holds the pool's underlying tokens.
	Address   ids.ShortID
	Oracle    Oracle
	Tokens    Tokens
	Backstop  Backstop
	Emissions Emissions
	Log       log.Logger
}

// NoEmissions is an Emissions tracker that records nothing.
type NoEmissions struct{}

func (NoEmissions) UpdateEmissions(uint32, *uint256.Int, *uint256.Int, ids.ShortID, *uint256.Int, bool) error {
	return nil
}
