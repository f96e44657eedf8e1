// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package auctions prices and settles the pool's dutch auctions.
//
// An auction quote is created one block ahead of the current sequence. While
// it waits, the lot grows from nothing to the full quote over the first 200
// blocks, then the bid shrinks from the full quote to nothing over the next
// 200 blocks.
package auctions

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/lending/vms/poolvm/pool"

	safemath "github.com/luxfi/lending/utils/math"
)

const (
	// lotRampBlocks is the number of blocks until the full lot is offered.
	lotRampBlocks = 200
	// bidDecayEndBlocks is the number of blocks until the bid reaches zero.
	bidDecayEndBlocks = 400
	// perBlockModifier is the modifier step per block, 0.005 with 7 decimals.
	perBlockModifier = 50_000

	// DefaultMinInterestValue is in whole units of the oracle base asset.
	DefaultMinInterestValue = 200
	// DefaultBurnThreshold is one backstop token with 7 decimals.
	DefaultBurnThreshold = 10_000_000

	// premium is paid over the debt or interest value, 1.4 with 7 decimals.
	premium = 14_000_000
)

// Params tunes auction creation and settlement.
type Params struct {
	// MinInterestValue is the value, in whole units of the oracle base asset,
	// an interest auction must exceed.
	MinInterestValue uint64 `json:"minInterestValue"`
	// BurnThreshold is the backstop deposit below which bad debt still held
	// by the backstop after a bad debt auction is written off.
	BurnThreshold *uint256.Int `json:"burnThreshold"`
}

func DefaultParams() Params {
	return Params{
		MinInterestValue: DefaultMinInterestValue,
		BurnThreshold:    uint256.NewInt(DefaultBurnThreshold),
	}
}

// Create starts a bad debt or interest auction against the backstop.
func Create(env *pool.Env, params Params, auctionType pool.AuctionType) (*pool.AuctionData, error) {
	p, err := pool.Load(env)
	if err != nil {
		return nil, err
	}
	backstop := p.Config.Backstop

	var auction *pool.AuctionData
	switch auctionType {
	case pool.BadDebtAuction:
		auction, err = createBadDebtAuction(env, p)
	case pool.InterestAuction:
		auction, err = createInterestAuction(env, p, params)
	default:
		return nil, fmt.Errorf("%w: cannot create %s auction", pool.ErrBadRequest, auctionType)
	}
	if err != nil {
		return nil, err
	}
	if err := env.Storage.SetAuction(auctionType, backstop, auction); err != nil {
		return nil, err
	}
	env.Log.Info("auction created",
		log.Stringer("type", auctionType),
		log.Stringer("user", backstop),
		log.Uint32("block", auction.Block),
	)
	return auction, nil
}

// CreateLiquidation starts a liquidation of percent (1 to 100) of user's
// liabilities.
func CreateLiquidation(env *pool.Env, user ids.ShortID, percent uint64) (*pool.AuctionData, error) {
	auction, err := createUserLiquidation(env, user, percent)
	if err != nil {
		return nil, err
	}
	if err := env.Storage.SetAuction(pool.UserLiquidation, user, auction); err != nil {
		return nil, err
	}
	env.Log.Info("auction created",
		log.Stringer("type", pool.UserLiquidation),
		log.Stringer("user", user),
		log.Uint64("percent", percent),
		log.Uint32("block", auction.Block),
	)
	return auction, nil
}

// DeleteLiquidation cancels the liquidation auction of user. The caller
// checks the health of user's final positions.
func DeleteLiquidation(env *pool.Env, user ids.ShortID) error {
	exists, err := env.Storage.HasAuction(pool.UserLiquidation, user)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s is not being liquidated", pool.ErrBadRequest, user)
	}
	return env.Storage.DeleteAuction(pool.UserLiquidation, user)
}

// Fill settles the whole auction of auctionType against user at the current
// block and deletes it. A rejected fill leaves the auction in place. The
// filler's positions are updated in place and must be stored by the caller.
// The returned auction is the settled quote.
func Fill(
	env *pool.Env,
	p *pool.Pool,
	params Params,
	auctionType pool.AuctionType,
	user ids.ShortID,
	filler *pool.User,
) (*pool.AuctionData, error) {
	auction, err := env.Storage.GetAuction(auctionType, user)
	if err != nil {
		return nil, err
	}
	filled, err := ScaleAuction(auction, env.Ledger.Sequence)
	if err != nil {
		return nil, err
	}
	switch auctionType {
	case pool.UserLiquidation:
		err = fillUserLiquidation(env, p, filled, user, filler)
	case pool.BadDebtAuction:
		err = fillBadDebtAuction(env, p, params, filled, filler)
	case pool.InterestAuction:
		err = fillInterestAuction(env, p, filled, filler.Address)
	default:
		err = fmt.Errorf("%w: unknown auction type %d", pool.ErrBadRequest, uint32(auctionType))
	}
	if err != nil {
		return nil, err
	}
	if err := env.Storage.DeleteAuction(auctionType, user); err != nil {
		return nil, err
	}
	env.Log.Debug("auction filled",
		log.Stringer("type", auctionType),
		log.Stringer("user", user),
		log.Stringer("filler", filler.Address),
		log.Uint32("blocks", env.Ledger.Sequence-auction.Block),
	)
	return filled, nil
}

// Modifiers returns the bid and lot modifiers (7 decimals) blocks after the
// auction started.
func Modifiers(blocks uint32) (bid, lot *uint256.Int) {
	step := uint64(blocks) * perBlockModifier
	switch {
	case blocks >= bidDecayEndBlocks:
		return new(uint256.Int), uint256.NewInt(pool.Scalar7Int)
	case blocks > lotRampBlocks:
		return uint256.NewInt(2*pool.Scalar7Int - step), uint256.NewInt(pool.Scalar7Int)
	default:
		return uint256.NewInt(pool.Scalar7Int), uint256.NewInt(step)
	}
}

// ScaleAuction returns the quote of auction at block sequence. Bids round up
// and lots round down; entries that scale to zero are dropped.
func ScaleAuction(auction *pool.AuctionData, sequence uint32) (*pool.AuctionData, error) {
	if sequence < auction.Block {
		return nil, fmt.Errorf("%w: auction starts at block %d", pool.ErrBadRequest, auction.Block)
	}
	bidMod, lotMod := Modifiers(sequence - auction.Block)

	scaled := pool.NewAuctionData(auction.Block)
	for asset, amount := range auction.Bid {
		value, err := safemath.MulCeil(amount, bidMod, pool.Scalar7)
		if err != nil {
			return nil, err
		}
		if !value.IsZero() {
			scaled.Bid[asset] = value
		}
	}
	for asset, amount := range auction.Lot {
		value, err := safemath.MulFloor(amount, lotMod, pool.Scalar7)
		if err != nil {
			return nil, err
		}
		if !value.IsZero() {
			scaled.Lot[asset] = value
		}
	}
	return scaled, nil
}

// oracleScalar returns 10^oracle decimals.
func oracleScalar(env *pool.Env, p *pool.Pool) (*uint256.Int, error) {
	decimals, err := p.LoadPriceDecimals(env)
	if err != nil {
		return nil, err
	}
	return safemath.Pow10(decimals)
}

// backstopTokensFor returns the backstop tokens worth value with the premium.
func backstopTokensFor(env *pool.Env, p *pool.Pool, value, scalar *uint256.Int) (ids.ShortID, *uint256.Int, error) {
	token, err := env.Backstop.Token()
	if err != nil {
		return ids.ShortEmpty, nil, err
	}
	price, err := p.LoadPrice(env, token)
	if err != nil {
		return ids.ShortEmpty, nil, err
	}
	withPremium, err := safemath.MulFloor(value, uint256.NewInt(premium), pool.Scalar7)
	if err != nil {
		return ids.ShortEmpty, nil, err
	}
	amount, err := safemath.DivFloor(withPremium, price, scalar)
	if err != nil {
		return ids.ShortEmpty, nil, err
	}
	return token, amount, nil
}
