// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"fmt"
	"math/big"

	"github.com/luxfi/ids"

	"github.com/luxfi/lending/vms/poolvm/pool"
)

// MaxRequests bounds the requests of one SubmitTx.
const MaxRequests = 64

var _ UnsignedTx = (*SubmitTx)(nil)

// Request is the encoded form of a pool request.
type Request struct {
	RequestType uint32      `serialize:"true" json:"requestType"`
	Address     ids.ShortID `serialize:"true" json:"address"`
	Amount      Amount      `serialize:"true" json:"amount"`
}

func (r *Request) PoolRequest() pool.Request {
	return pool.Request{
		RequestType: pool.RequestType(r.RequestType),
		Address:     r.Address,
		Amount:      new(big.Int).SetBytes(r.Amount),
	}
}

// SubmitTx runs a batch of requests for the caller. Tokens owed to the pool
// are taken from Spender and tokens paid out go to To.
type SubmitTx struct {
	BaseTx   `serialize:"true"`
	Spender  ids.ShortID `serialize:"true" json:"spender"`
	To       ids.ShortID `serialize:"true" json:"to"`
	Requests []Request   `serialize:"true" json:"requests"`
}

func (tx *SubmitTx) SyntacticVerify() error {
	switch {
	case len(tx.Requests) == 0:
		return ErrNoRequests
	case len(tx.Requests) > MaxRequests:
		return fmt.Errorf("%w: %d > %d", ErrTooManyRequests, len(tx.Requests), MaxRequests)
	case tx.Spender == ids.ShortEmpty:
		return fmt.Errorf("%w: spender", ErrEmptyAddress)
	case tx.To == ids.ShortEmpty:
		return fmt.Errorf("%w: recipient", ErrEmptyAddress)
	}
	for i := range tx.Requests {
		if len(tx.Requests[i].Amount) > maxAmountLen {
			return fmt.Errorf("request %d: %w", i, ErrAmountTooLarge)
		}
	}
	return nil
}

// PoolRequests decodes the batch.
func (tx *SubmitTx) PoolRequests() []pool.Request {
	requests := make([]pool.Request, len(tx.Requests))
	for i := range tx.Requests {
		requests[i] = tx.Requests[i].PoolRequest()
	}
	return requests
}

func (tx *SubmitTx) Visit(visitor Visitor) error {
	return visitor.SubmitTx(tx)
}
