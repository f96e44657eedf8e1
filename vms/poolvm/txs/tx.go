// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package txs defines the transactions a pool chain accepts.
package txs

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"
)

// maxAmountLen is the byte length of the largest 256 bit amount.
const maxAmountLen = 32

var (
	ErrNilTx            = errors.New("nil tx")
	ErrZeroAmount       = errors.New("amount must be positive")
	ErrAmountTooLarge   = errors.New("amount exceeds 256 bits")
	ErrNoRequests       = errors.New("no requests")
	ErrTooManyRequests  = errors.New("too many requests")
	ErrInvalidPercent   = errors.New("invalid liquidation percent")
	ErrInvalidAuction   = errors.New("invalid auction type")
	ErrInvalidStatus    = errors.New("invalid pool status")
	ErrEmptyAddress     = errors.New("empty address")
	ErrInvalidTimestamp = errors.New("invalid price timestamp")
)

// UnsignedTx is the body of a transaction.
type UnsignedTx interface {
	// Caller is the account the transaction acts for. Authentication of the
	// caller is left to the chain the VM runs on.
	Caller() ids.ShortID

	// SyntacticVerify checks the tx without reading state.
	SyntacticVerify() error

	// Visit calls visitor with this transaction's concrete type.
	Visit(visitor Visitor) error
}

// Tx is an encoded transaction.
type Tx struct {
	Unsigned UnsignedTx `serialize:"true" json:"unsignedTx"`

	id    ids.ID
	bytes []byte
}

// NewTx encodes unsigned.
func NewTx(unsigned UnsignedTx) (*Tx, error) {
	tx := &Tx{Unsigned: unsigned}
	return tx, tx.Initialize()
}

// Parse decodes bytes into a tx. It does not verify the tx.
func Parse(bytes []byte) (*Tx, error) {
	tx := &Tx{}
	if _, err := Codec.Unmarshal(bytes, tx); err != nil {
		return nil, fmt.Errorf("failed to parse tx: %w", err)
	}
	tx.SetBytes(bytes)
	return tx, nil
}

// Initialize encodes the tx and derives its ID.
func (tx *Tx) Initialize() error {
	bytes, err := Codec.Marshal(CodecVersion, tx)
	if err != nil {
		return fmt.Errorf("couldn't marshal tx: %w", err)
	}
	tx.SetBytes(bytes)
	return nil
}

func (tx *Tx) SetBytes(bytes []byte) {
	tx.bytes = bytes
	tx.id = hash.ComputeHash256Array(bytes)
}

func (tx *Tx) ID() ids.ID {
	return tx.id
}

func (tx *Tx) Bytes() []byte {
	return tx.bytes
}

func (tx *Tx) SyntacticVerify() error {
	switch {
	case tx == nil || tx.Unsigned == nil:
		return ErrNilTx
	case tx.Unsigned.Caller() == ids.ShortEmpty:
		return fmt.Errorf("%w: caller", ErrEmptyAddress)
	default:
		return tx.Unsigned.SyntacticVerify()
	}
}

// BaseTx carries the fields shared by every tx.
type BaseTx struct {
	From ids.ShortID `serialize:"true" json:"from"`
	// Nonce distinguishes otherwise identical txs.
	Nonce uint64 `serialize:"true" json:"nonce"`
}

func (tx *BaseTx) Caller() ids.ShortID {
	return tx.From
}

// Amount is an unsigned big-endian integer of at most 256 bits.
type Amount []byte

// NewAmount encodes v.
func NewAmount(v uint64) Amount {
	return uint256.NewInt(v).Bytes()
}

// AmountFrom encodes v.
func AmountFrom(v *uint256.Int) Amount {
	return v.Bytes()
}

// Verify returns an error if a is zero or too wide.
func (a Amount) Verify() error {
	if len(a) > maxAmountLen {
		return ErrAmountTooLarge
	}
	if a.Uint256().IsZero() {
		return ErrZeroAmount
	}
	return nil
}

// Uint256 decodes a. Bytes beyond 256 bits are dropped, so callers verify
// first.
func (a Amount) Uint256() *uint256.Int {
	return new(uint256.Int).SetBytes(a)
}
