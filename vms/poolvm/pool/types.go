// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/utils"
)

// Fixed point constants.
//
// Factors, utilization, take rates and percentages carry 7 decimals. Rates
// and the rate modifier carry 9 decimals.
const (
	SecondsPerYear = 31_536_000
	SecondsPerWeek = 604_800

	// PriceMaxAge is the age in seconds after which an oracle price is stale.
	PriceMaxAge = 24 * 60 * 60

	Scalar7Int = 10_000_000
	Scalar9Int = 1_000_000_000

	// MinHealthFactor is 1.00001 with 7 decimals.
	MinHealthFactor = 10_000_100

	// MinPositions is the smallest allowed max positions value of a pool.
	MinPositions = 2
)

var (
	Scalar7 = uint256.NewInt(Scalar7Int)
	Scalar9 = uint256.NewInt(Scalar9Int)
)

// Status is the operational status of a pool.
type Status uint32

const (
	StatusActive Status = iota
	StatusOnIce
	StatusFrozen
	StatusAdminFrozen
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusOnIce:
		return "on_ice"
	case StatusFrozen:
		return "frozen"
	case StatusAdminFrozen:
		return "admin_frozen"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(s))
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s <= StatusAdminFrozen
}

// PoolConfig is the pool wide configuration.
type PoolConfig struct {
	Admin    ids.ShortID `json:"admin"`
	Oracle   ids.ShortID `json:"oracle"`
	Backstop ids.ShortID `json:"backstop"`
	// BackstopTakeRate is the share of accrued interest credited to the
	// backstop (7 decimals).
	BackstopTakeRate uint32 `json:"backstopTakeRate"`
	Status           Status `json:"status"`
	MaxPositions     uint32 `json:"maxPositions"`
	// MinBackstopTokens is the backstop deposit below which the pool cannot
	// be active.
	MinBackstopTokens *uint256.Int `json:"minBackstopTokens"`
}

// ReserveConfig holds the risk and rate parameters of a reserve.
type ReserveConfig struct {
	Index      uint32 `serialize:"true" json:"index"`
	Decimals   uint32 `serialize:"true" json:"decimals"`
	CFactor    uint32 `serialize:"true" json:"cFactor"`
	LFactor    uint32 `serialize:"true" json:"lFactor"`
	Util       uint32 `serialize:"true" json:"util"`
	MaxUtil    uint32 `serialize:"true" json:"maxUtil"`
	ROne       uint32 `serialize:"true" json:"rOne"`
	RTwo       uint32 `serialize:"true" json:"rTwo"`
	RThree     uint32 `serialize:"true" json:"rThree"`
	Reactivity uint32 `serialize:"true" json:"reactivity"`
}

// ReserveData is the mutable accounting state of a reserve.
type ReserveData struct {
	DRate          *uint256.Int `json:"dRate"`
	BRate          *uint256.Int `json:"bRate"`
	IRMod          *uint256.Int `json:"irMod"`
	BSupply        *uint256.Int `json:"bSupply"`
	DSupply        *uint256.Int `json:"dSupply"`
	BackstopCredit *uint256.Int `json:"backstopCredit"`
	LastTime       uint64       `json:"lastTime"`
}

// NewReserveData returns the state of a freshly initialized reserve.
func NewReserveData(now uint64) *ReserveData {
	return &ReserveData{
		DRate:          uint256.NewInt(Scalar9Int),
		BRate:          uint256.NewInt(Scalar9Int),
		IRMod:          uint256.NewInt(Scalar9Int),
		BSupply:        new(uint256.Int),
		DSupply:        new(uint256.Int),
		BackstopCredit: new(uint256.Int),
		LastTime:       now,
	}
}

// QueuedReserveInit is a pending reserve configuration change.
type QueuedReserveInit struct {
	Config     ReserveConfig `json:"config"`
	UnlockTime uint64        `json:"unlockTime"`
}

// PriceData is an oracle price quote.
type PriceData struct {
	Price     *uint256.Int `json:"price"`
	Timestamp uint64       `json:"timestamp"`
}

// PoolBalance is the backstop deposit backing a pool.
type PoolBalance struct {
	Tokens *uint256.Int `json:"tokens"`
	Shares *uint256.Int `json:"shares"`
	Q4W    *uint256.Int `json:"q4w"`
}

// AuctionType identifies the kind of an auction.
type AuctionType uint32

const (
	UserLiquidation AuctionType = iota
	BadDebtAuction
	InterestAuction
)

func (t AuctionType) String() string {
	switch t {
	case UserLiquidation:
		return "user_liquidation"
	case BadDebtAuction:
		return "bad_debt"
	case InterestAuction:
		return "interest"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// Valid reports whether t is a known auction type.
func (t AuctionType) Valid() bool {
	return t <= InterestAuction
}

// AuctionData is an auction quote. Bid is what the filler pays and Lot is
// what the filler receives, both keyed by asset. Block is the first block
// the auction can be filled in.
type AuctionData struct {
	Bid   map[ids.ShortID]*uint256.Int `json:"bid"`
	Lot   map[ids.ShortID]*uint256.Int `json:"lot"`
	Block uint32                       `json:"block"`
}

// NewAuctionData returns an empty auction starting at block.
func NewAuctionData(block uint32) *AuctionData {
	return &AuctionData{
		Bid:   make(map[ids.ShortID]*uint256.Int),
		Lot:   make(map[ids.ShortID]*uint256.Int),
		Block: block,
	}
}

// SortedAssets returns the keys of m in ascending byte order.
func SortedAssets(m map[ids.ShortID]*uint256.Int) []ids.ShortID {
	assets := make([]ids.ShortID, 0, len(m))
	for asset := range m {
		assets = append(assets, asset)
	}
	utils.Sort(assets)
	return assets
}
