// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
)

// RequestType is the kind of a user request.
type RequestType uint32

const (
	Supply RequestType = iota
	Withdraw
	SupplyCollateral
	WithdrawCollateral
	Borrow
	Repay
	FillUserLiquidationAuction
	FillBadDebtAuction
	FillInterestAuction
	DeleteLiquidationAuction
)

var requestTypeNames = [...]string{
	Supply:                     "supply",
	Withdraw:                   "withdraw",
	SupplyCollateral:           "supply_collateral",
	WithdrawCollateral:         "withdraw_collateral",
	Borrow:                     "borrow",
	Repay:                      "repay",
	FillUserLiquidationAuction: "fill_user_liquidation_auction",
	FillBadDebtAuction:         "fill_bad_debt_auction",
	FillInterestAuction:        "fill_interest_auction",
	DeleteLiquidationAuction:   "delete_liquidation_auction",
}

func (t RequestType) String() string {
	if int(t) < len(requestTypeNames) {
		return requestTypeNames[t]
	}
	return fmt.Sprintf("unknown(%d)", uint32(t))
}

// Valid reports whether t is a known request type.
func (t RequestType) Valid() bool {
	return int(t) < len(requestTypeNames)
}

// Request is one step of a submitted batch. Address is the reserve asset for
// supply, withdraw, borrow and repay requests and the auction subject for
// auction fills.
type Request struct {
	RequestType RequestType `json:"requestType"`
	Address     ids.ShortID `json:"address"`
	Amount      *big.Int    `json:"amount"`
}

// ToAmount validates a user supplied amount. Negative amounts return
// ErrNegativeAmount and amounts wider than 256 bits return ErrOverflow.
func ToAmount(amount *big.Int) (*uint256.Int, error) {
	if amount == nil {
		return new(uint256.Int), nil
	}
	if amount.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, ErrOverflow
	}
	return value, nil
}
