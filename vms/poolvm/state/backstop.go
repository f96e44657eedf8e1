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

var _ pool.Backstop = (*State)(nil)

// BackstopUser is a depositor's share of a pool's backstop.
type BackstopUser struct {
	Shares *uint256.Int `json:"shares"`
	// Q4W is the shares queued for withdrawal.
	Q4W *uint256.Int `json:"q4w"`
}

func backstopUserKey(poolAddress, user ids.ShortID) []byte {
	key := make([]byte, 0, len(poolAddress)+len(user))
	key = append(key, poolAddress[:]...)
	return append(key, user[:]...)
}

// Token returns the backstop deposit asset.
func (s *State) Token() (ids.ShortID, error) {
	metadata, err := s.Metadata()
	if err != nil {
		return ids.ShortEmpty, err
	}
	return metadata.BackstopToken, nil
}

func (s *State) PoolBalance(poolAddress ids.ShortID) (*pool.PoolBalance, error) {
	record := &backstopPoolRecord{}
	if err := get(s.backstopPoolDB, poolAddress[:], record); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &pool.PoolBalance{
				Tokens: new(uint256.Int),
				Shares: new(uint256.Int),
				Q4W:    new(uint256.Int),
			}, nil
		}
		return nil, err
	}
	return &pool.PoolBalance{
		Tokens: decodeAmount(record.Tokens),
		Shares: decodeAmount(record.Shares),
		Q4W:    decodeAmount(record.Q4W),
	}, nil
}

func (s *State) setPoolBalance(poolAddress ids.ShortID, balance *pool.PoolBalance) error {
	return put(s.backstopPoolDB, poolAddress[:], &backstopPoolRecord{
		Tokens: encodeAmount(balance.Tokens),
		Shares: encodeAmount(balance.Shares),
		Q4W:    encodeAmount(balance.Q4W),
	})
}

func (s *State) BackstopUser(poolAddress, user ids.ShortID) (*BackstopUser, error) {
	record := &backstopUserRecord{}
	if err := get(s.backstopUserDB, backstopUserKey(poolAddress, user), record); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &BackstopUser{
				Shares: new(uint256.Int),
				Q4W:    new(uint256.Int),
			}, nil
		}
		return nil, err
	}
	return &BackstopUser{
		Shares: decodeAmount(record.Shares),
		Q4W:    decodeAmount(record.Q4W),
	}, nil
}

func (s *State) setBackstopUser(poolAddress, user ids.ShortID, balance *BackstopUser) error {
	return put(s.backstopUserDB, backstopUserKey(poolAddress, user), &backstopUserRecord{
		Shares: encodeAmount(balance.Shares),
		Q4W:    encodeAmount(balance.Q4W),
	})
}

// Draw pays amount of poolAddress's backstop tokens to to.
func (s *State) Draw(poolAddress ids.ShortID, amount *uint256.Int, to ids.ShortID) error {
	metadata, err := s.Metadata()
	if err != nil {
		return err
	}
	balance, err := s.PoolBalance(poolAddress)
	if err != nil {
		return err
	}
	balance.Tokens, err = safemath.Diff(balance.Tokens, amount)
	if err != nil {
		return fmt.Errorf("%w: backstop of %s cannot cover %d", pool.ErrInsufficientFunds, poolAddress, amount)
	}
	if err := s.setPoolBalance(poolAddress, balance); err != nil {
		return err
	}
	return s.Transfer(metadata.BackstopToken, metadata.BackstopAddress, to, amount)
}

// Donate adds amount of backstop tokens from from to poolAddress's deposit
// without minting shares.
func (s *State) Donate(poolAddress, from ids.ShortID, amount *uint256.Int) error {
	metadata, err := s.Metadata()
	if err != nil {
		return err
	}
	if err := s.Transfer(metadata.BackstopToken, from, metadata.BackstopAddress, amount); err != nil {
		return err
	}
	balance, err := s.PoolBalance(poolAddress)
	if err != nil {
		return err
	}
	balance.Tokens, err = safemath.Sum(balance.Tokens, amount)
	if err != nil {
		return err
	}
	return s.setPoolBalance(poolAddress, balance)
}

// Deposit moves amount of backstop tokens from from into poolAddress's
// backstop and returns the minted shares.
func (s *State) Deposit(poolAddress, from ids.ShortID, amount *uint256.Int) (*uint256.Int, error) {
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: zero deposit", pool.ErrBadRequest)
	}
	metadata, err := s.Metadata()
	if err != nil {
		return nil, err
	}
	balance, err := s.PoolBalance(poolAddress)
	if err != nil {
		return nil, err
	}

	shares := amount
	if !balance.Shares.IsZero() && !balance.Tokens.IsZero() {
		shares, err = safemath.MulDivFloor(amount, balance.Shares, balance.Tokens)
		if err != nil {
			return nil, err
		}
	}
	if shares.IsZero() {
		return nil, fmt.Errorf("%w: deposit mints no shares", pool.ErrBadRequest)
	}

	if err := s.Transfer(metadata.BackstopToken, from, metadata.BackstopAddress, amount); err != nil {
		return nil, err
	}
	if balance.Tokens, err = safemath.Sum(balance.Tokens, amount); err != nil {
		return nil, err
	}
	if balance.Shares, err = safemath.Sum(balance.Shares, shares); err != nil {
		return nil, err
	}
	if err := s.setPoolBalance(poolAddress, balance); err != nil {
		return nil, err
	}

	user, err := s.BackstopUser(poolAddress, from)
	if err != nil {
		return nil, err
	}
	if user.Shares, err = safemath.Sum(user.Shares, shares); err != nil {
		return nil, err
	}
	return shares, s.setBackstopUser(poolAddress, from, user)
}

// QueueWithdrawal moves shares of user into the withdrawal queue.
func (s *State) QueueWithdrawal(poolAddress, user ids.ShortID, shares *uint256.Int) error {
	balance, err := s.BackstopUser(poolAddress, user)
	if err != nil {
		return err
	}
	balance.Shares, err = safemath.Diff(balance.Shares, shares)
	if err != nil {
		return fmt.Errorf("%w: %s holds fewer than %d shares", pool.ErrInsufficientFunds, user, shares)
	}
	if balance.Q4W, err = safemath.Sum(balance.Q4W, shares); err != nil {
		return err
	}
	if err := s.setBackstopUser(poolAddress, user, balance); err != nil {
		return err
	}

	poolBalance, err := s.PoolBalance(poolAddress)
	if err != nil {
		return err
	}
	if poolBalance.Q4W, err = safemath.Sum(poolBalance.Q4W, shares); err != nil {
		return err
	}
	return s.setPoolBalance(poolAddress, poolBalance)
}
