// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/lending/vms/poolvm/pool"
)

var (
	_ UnsignedTx = (*NewLiquidationAuctionTx)(nil)
	_ UnsignedTx = (*NewAuctionTx)(nil)
	_ UnsignedTx = (*BadDebtTx)(nil)
)

// NewLiquidationAuctionTx offers Percent of User's liabilities, with a
// matching share of collateral, to liquidators.
type NewLiquidationAuctionTx struct {
	BaseTx  `serialize:"true"`
	User    ids.ShortID `serialize:"true" json:"user"`
	Percent uint64      `serialize:"true" json:"percent"`
}

func (tx *NewLiquidationAuctionTx) SyntacticVerify() error {
	switch {
	case tx.User == ids.ShortEmpty:
		return fmt.Errorf("%w: user", ErrEmptyAddress)
	case tx.Percent == 0 || tx.Percent > 100:
		return fmt.Errorf("%w: %d", ErrInvalidPercent, tx.Percent)
	default:
		return nil
	}
}

func (tx *NewLiquidationAuctionTx) Visit(visitor Visitor) error {
	return visitor.NewLiquidationAuctionTx(tx)
}

// NewAuctionTx starts a bad debt or interest auction against the backstop.
type NewAuctionTx struct {
	BaseTx      `serialize:"true"`
	AuctionType uint32 `serialize:"true" json:"auctionType"`
}

func (tx *NewAuctionTx) SyntacticVerify() error {
	switch pool.AuctionType(tx.AuctionType) {
	case pool.BadDebtAuction, pool.InterestAuction:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidAuction, tx.AuctionType)
	}
}

func (tx *NewAuctionTx) Visit(visitor Visitor) error {
	return visitor.NewAuctionTx(tx)
}

// BadDebtTx moves the liabilities of a User without collateral to the
// backstop.
type BadDebtTx struct {
	BaseTx `serialize:"true"`
	User   ids.ShortID `serialize:"true" json:"user"`
}

func (tx *BadDebtTx) SyntacticVerify() error {
	if tx.User == ids.ShortEmpty {
		return fmt.Errorf("%w: user", ErrEmptyAddress)
	}
	return nil
}

func (tx *BadDebtTx) Visit(visitor Visitor) error {
	return visitor.BadDebtTx(tx)
}
