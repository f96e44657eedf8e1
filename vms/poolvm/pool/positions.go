// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"fmt"
	"slices"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	safemath "github.com/luxfi/lending/utils/math"
)

// Positions maps reserve indices to share balances. A missing index is a
// zero balance; balances that reach zero are removed.
type Positions struct {
	Liabilities map[uint32]*uint256.Int `json:"liabilities"`
	Collateral  map[uint32]*uint256.Int `json:"collateral"`
	Supply      map[uint32]*uint256.Int `json:"supply"`
}

func NewPositions() *Positions {
	return &Positions{
		Liabilities: make(map[uint32]*uint256.Int),
		Collateral:  make(map[uint32]*uint256.Int),
		Supply:      make(map[uint32]*uint256.Int),
	}
}

// EffectiveCount is the number of positions that count towards the pool's
// max positions limit.
func (p *Positions) EffectiveCount() int {
	return len(p.Liabilities) + len(p.Collateral)
}

// Copy returns a copy that can be mutated without changing p.
func (p *Positions) Copy() *Positions {
	cpy := NewPositions()
	for k, v := range p.Liabilities {
		cpy.Liabilities[k] = v
	}
	for k, v := range p.Collateral {
		cpy.Collateral[k] = v
	}
	for k, v := range p.Supply {
		cpy.Supply[k] = v
	}
	return cpy
}

// SortedIndices returns the keys of m in ascending order.
func SortedIndices(m map[uint32]*uint256.Int) []uint32 {
	indices := make([]uint32, 0, len(m))
	for index := range m {
		indices = append(indices, index)
	}
	slices.Sort(indices)
	return indices
}

func balanceOf(m map[uint32]*uint256.Int, index uint32) *uint256.Int {
	if balance, ok := m[index]; ok {
		return balance
	}
	return new(uint256.Int)
}

func setBalance(m map[uint32]*uint256.Int, index uint32, balance *uint256.Int) {
	if balance.IsZero() {
		delete(m, index)
		return
	}
	m[index] = balance
}

// User is an account and its positions.
type User struct {
	Address   ids.ShortID
	Positions *Positions
}

func LoadUser(env *Env, address ids.ShortID) (*User, error) {
	positions, err := env.Storage.GetPositions(address)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions of %s: %w", address, err)
	}
	return &User{
		Address:   address,
		Positions: positions,
	}, nil
}

func (u *User) Store(env *Env) error {
	return env.Storage.SetPositions(u.Address, u.Positions)
}

func (u *User) GetLiabilities(index uint32) *uint256.Int {
	return balanceOf(u.Positions.Liabilities, index)
}

func (u *User) GetCollateral(index uint32) *uint256.Int {
	return balanceOf(u.Positions.Collateral, index)
}

func (u *User) GetSupply(index uint32) *uint256.Int {
	return balanceOf(u.Positions.Supply, index)
}

// GetTotalSupply returns the collateral and supply bTokens of index.
func (u *User) GetTotalSupply(index uint32) *uint256.Int {
	return new(uint256.Int).Add(u.GetCollateral(index), u.GetSupply(index))
}

func (u *User) AddLiabilities(env *Env, reserve *Reserve, amount *uint256.Int) error {
	balance := u.GetLiabilities(reserve.Index)
	if err := u.updateDEmissions(env, reserve, balance); err != nil {
		return err
	}
	newBalance, err := safemath.Sum(balance, amount)
	if err != nil {
		return err
	}
	newSupply, err := safemath.Sum(reserve.DSupply, amount)
	if err != nil {
		return err
	}
	setBalance(u.Positions.Liabilities, reserve.Index, newBalance)
	reserve.DSupply = newSupply
	return nil
}

func (u *User) RemoveLiabilities(env *Env, reserve *Reserve, amount *uint256.Int) error {
	balance := u.GetLiabilities(reserve.Index)
	if err := u.updateDEmissions(env, reserve, balance); err != nil {
		return err
	}
	newBalance, err := safemath.Diff(balance, amount)
	if err != nil {
		return fmt.Errorf("%w: liabilities of %s", ErrNegativeAmount, u.Address)
	}
	newSupply, err := safemath.Diff(reserve.DSupply, amount)
	if err != nil {
		return fmt.Errorf("%w: dToken supply of %s", ErrNegativeAmount, reserve.Asset)
	}
	setBalance(u.Positions.Liabilities, reserve.Index, newBalance)
	reserve.DSupply = newSupply
	return nil
}

func (u *User) AddCollateral(env *Env, reserve *Reserve, amount *uint256.Int) error {
	return u.addBTokens(env, reserve, u.Positions.Collateral, amount)
}

func (u *User) RemoveCollateral(env *Env, reserve *Reserve, amount *uint256.Int) error {
	return u.removeBTokens(env, reserve, u.Positions.Collateral, amount)
}

func (u *User) AddSupply(env *Env, reserve *Reserve, amount *uint256.Int) error {
	return u.addBTokens(env, reserve, u.Positions.Supply, amount)
}

func (u *User) RemoveSupply(env *Env, reserve *Reserve, amount *uint256.Int) error {
	return u.removeBTokens(env, reserve, u.Positions.Supply, amount)
}

func (u *User) addBTokens(env *Env, reserve *Reserve, balances map[uint32]*uint256.Int, amount *uint256.Int) error {
	if err := u.updateBEmissions(env, reserve, u.GetTotalSupply(reserve.Index)); err != nil {
		return err
	}
	newBalance, err := safemath.Sum(balanceOf(balances, reserve.Index), amount)
	if err != nil {
		return err
	}
	newSupply, err := safemath.Sum(reserve.BSupply, amount)
	if err != nil {
		return err
	}
	setBalance(balances, reserve.Index, newBalance)
	reserve.BSupply = newSupply
	return nil
}

func (u *User) removeBTokens(env *Env, reserve *Reserve, balances map[uint32]*uint256.Int, amount *uint256.Int) error {
	if err := u.updateBEmissions(env, reserve, u.GetTotalSupply(reserve.Index)); err != nil {
		return err
	}
	newBalance, err := safemath.Diff(balanceOf(balances, reserve.Index), amount)
	if err != nil {
		return fmt.Errorf("%w: bTokens of %s", ErrNegativeAmount, u.Address)
	}
	newSupply, err := safemath.Diff(reserve.BSupply, amount)
	if err != nil {
		return fmt.Errorf("%w: bToken supply of %s", ErrNegativeAmount, reserve.Asset)
	}
	setBalance(balances, reserve.Index, newBalance)
	reserve.BSupply = newSupply
	return nil
}

// RemovePositions removes collateral and liabilities keyed by asset. Supply
// positions are left untouched.
func (u *User) RemovePositions(
	env *Env,
	pool *Pool,
	collateral map[ids.ShortID]*uint256.Int,
	liabilities map[ids.ShortID]*uint256.Int,
) error {
	for _, asset := range SortedAssets(collateral) {
		reserve, err := pool.LoadReserve(env, asset, true)
		if err != nil {
			return err
		}
		if err := u.RemoveCollateral(env, reserve, collateral[asset]); err != nil {
			return err
		}
		pool.CacheReserve(reserve)
	}
	for _, asset := range SortedAssets(liabilities) {
		reserve, err := pool.LoadReserve(env, asset, true)
		if err != nil {
			return err
		}
		if err := u.RemoveLiabilities(env, reserve, liabilities[asset]); err != nil {
			return err
		}
		pool.CacheReserve(reserve)
	}
	return nil
}

// AddPositions adds collateral and liabilities keyed by asset.
func (u *User) AddPositions(
	env *Env,
	pool *Pool,
	collateral map[ids.ShortID]*uint256.Int,
	liabilities map[ids.ShortID]*uint256.Int,
) error {
	for _, asset := range SortedAssets(collateral) {
		reserve, err := pool.LoadReserve(env, asset, true)
		if err != nil {
			return err
		}
		if err := u.AddCollateral(env, reserve, collateral[asset]); err != nil {
			return err
		}
		pool.CacheReserve(reserve)
	}
	for _, asset := range SortedAssets(liabilities) {
		reserve, err := pool.LoadReserve(env, asset, true)
		if err != nil {
			return err
		}
		if err := u.AddLiabilities(env, reserve, liabilities[asset]); err != nil {
			return err
		}
		pool.CacheReserve(reserve)
	}
	return nil
}

func (u *User) updateDEmissions(env *Env, reserve *Reserve, balance *uint256.Int) error {
	return env.Emissions.UpdateEmissions(
		reserve.Index*2,
		reserve.DSupply,
		reserve.Scalar,
		u.Address,
		balance,
		true,
	)
}

func (u *User) updateBEmissions(env *Env, reserve *Reserve, balance *uint256.Int) error {
	return env.Emissions.UpdateEmissions(
		reserve.Index*2+1,
		reserve.BSupply,
		reserve.Scalar,
		u.Address,
		balance,
		false,
	)
}
