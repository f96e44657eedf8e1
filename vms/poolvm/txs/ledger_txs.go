// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"fmt"

	"github.com/luxfi/ids"
)

var (
	_ UnsignedTx = (*SetPriceTx)(nil)
	_ UnsignedTx = (*MintTx)(nil)
	_ UnsignedTx = (*BackstopDepositTx)(nil)
	_ UnsignedTx = (*BackstopQueueTx)(nil)
)

// SetPriceTx publishes a price quote. Only the pool's oracle may issue it.
type SetPriceTx struct {
	BaseTx    `serialize:"true"`
	Asset     ids.ShortID `serialize:"true" json:"asset"`
	Price     Amount      `serialize:"true" json:"price"`
	Timestamp uint64      `serialize:"true" json:"timestamp"`
}

func (tx *SetPriceTx) SyntacticVerify() error {
	switch {
	case tx.Asset == ids.ShortEmpty:
		return fmt.Errorf("%w: asset", ErrEmptyAddress)
	case tx.Timestamp == 0:
		return ErrInvalidTimestamp
	default:
		return tx.Price.Verify()
	}
}

func (tx *SetPriceTx) Visit(visitor Visitor) error {
	return visitor.SetPriceTx(tx)
}

// MintTx credits Amount of Asset to To. Only the pool admin may issue it.
type MintTx struct {
	BaseTx `serialize:"true"`
	Asset  ids.ShortID `serialize:"true" json:"asset"`
	To     ids.ShortID `serialize:"true" json:"to"`
	Amount Amount      `serialize:"true" json:"amount"`
}

func (tx *MintTx) SyntacticVerify() error {
	switch {
	case tx.Asset == ids.ShortEmpty:
		return fmt.Errorf("%w: asset", ErrEmptyAddress)
	case tx.To == ids.ShortEmpty:
		return fmt.Errorf("%w: recipient", ErrEmptyAddress)
	default:
		return tx.Amount.Verify()
	}
}

func (tx *MintTx) Visit(visitor Visitor) error {
	return visitor.MintTx(tx)
}

// BackstopDepositTx deposits backstop tokens of the caller for the pool.
type BackstopDepositTx struct {
	BaseTx `serialize:"true"`
	Amount Amount `serialize:"true" json:"amount"`
}

func (tx *BackstopDepositTx) SyntacticVerify() error {
	return tx.Amount.Verify()
}

func (tx *BackstopDepositTx) Visit(visitor Visitor) error {
	return visitor.BackstopDepositTx(tx)
}

// BackstopQueueTx queues backstop shares of the caller for withdrawal.
type BackstopQueueTx struct {
	BaseTx `serialize:"true"`
	Shares Amount `serialize:"true" json:"shares"`
}

func (tx *BackstopQueueTx) SyntacticVerify() error {
	return tx.Shares.Verify()
}

func (tx *BackstopQueueTx) Visit(visitor Visitor) error {
	return visitor.BackstopQueueTx(tx)
}
