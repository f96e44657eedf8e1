// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/lending/vms/poolvm/pool"

	safemath "github.com/luxfi/lending/utils/math"
)

var _ pool.Tokens = (*State)(nil)

func balanceKey(asset, holder ids.ShortID) []byte {
	key := make([]byte, 0, len(asset)+len(holder))
	key = append(key, asset[:]...)
	return append(key, holder[:]...)
}

func (s *State) Balance(asset, holder ids.ShortID) (*uint256.Int, error) {
	bytes, err := s.balanceDB.Get(balanceKey(asset, holder))
	if errors.Is(err, database.ErrNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return decodeAmount(bytes), nil
}

func (s *State) setBalance(asset, holder ids.ShortID, balance *uint256.Int) error {
	key := balanceKey(asset, holder)
	if balance.IsZero() {
		return s.balanceDB.Delete(key)
	}
	return s.balanceDB.Put(key, encodeAmount(balance))
}

func (s *State) Transfer(asset, from, to ids.ShortID, amount *uint256.Int) error {
	if amount.IsZero() || from == to {
		return nil
	}
	fromBalance, err := s.Balance(asset, from)
	if err != nil {
		return err
	}
	newFrom, err := safemath.Diff(fromBalance, amount)
	if err != nil {
		return fmt.Errorf("%w: %s holds %d of %s, needs %d",
			pool.ErrInsufficientFunds, from, fromBalance, asset, amount)
	}
	toBalance, err := s.Balance(asset, to)
	if err != nil {
		return err
	}
	newTo, err := safemath.Sum(toBalance, amount)
	if err != nil {
		return err
	}
	if err := s.setBalance(asset, from, newFrom); err != nil {
		return err
	}
	return s.setBalance(asset, to, newTo)
}

// Mint credits amount of asset to holder out of thin air. It backs genesis
// allocations and test faucets.
func (s *State) Mint(asset, holder ids.ShortID, amount *uint256.Int) error {
	balance, err := s.Balance(asset, holder)
	if err != nil {
		return err
	}
	newBalance, err := safemath.Sum(balance, amount)
	if err != nil {
		return err
	}
	return s.setBalance(asset, holder, newBalance)
}
