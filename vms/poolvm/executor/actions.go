// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package executor folds a batch of user requests into position changes and
// the token transfers that settle them.
package executor

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/lending/vms/poolvm/auctions"
	"github.com/luxfi/lending/vms/poolvm/pool"

	safemath "github.com/luxfi/lending/utils/math"
)

// Actions is the net token movement of a batch, per asset.
type Actions struct {
	// SpenderTransfer is paid by the spender into the pool.
	SpenderTransfer map[ids.ShortID]*uint256.Int
	// PoolTransfer is paid by the pool to the recipient.
	PoolTransfer map[ids.ShortID]*uint256.Int
}

func NewActions() *Actions {
	return &Actions{
		SpenderTransfer: make(map[ids.ShortID]*uint256.Int),
		PoolTransfer:    make(map[ids.ShortID]*uint256.Int),
	}
}

func (a *Actions) AddSpenderTransfer(asset ids.ShortID, amount *uint256.Int) error {
	return addTo(a.SpenderTransfer, asset, amount)
}

func (a *Actions) AddPoolTransfer(asset ids.ShortID, amount *uint256.Int) error {
	return addTo(a.PoolTransfer, asset, amount)
}

func addTo(m map[ids.ShortID]*uint256.Int, asset ids.ShortID, amount *uint256.Int) error {
	total := amount
	if current, ok := m[asset]; ok {
		var err error
		if total, err = safemath.Sum(current, amount); err != nil {
			return err
		}
	}
	m[asset] = total
	return nil
}

// Result is the outcome of folding a batch.
type Result struct {
	Actions *Actions
	// User is from with every request applied. Nothing is persisted yet.
	User *pool.User
	// CheckHealth is set when a request may have lowered the user's health
	// factor.
	CheckHealth bool
}

// BuildActions applies requests in order to from's positions and the pool's
// cached reserves.
func BuildActions(
	env *pool.Env,
	p *pool.Pool,
	params auctions.Params,
	from ids.ShortID,
	requests []pool.Request,
) (*Result, error) {
	user, err := pool.LoadUser(env, from)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Actions: NewActions(),
		User:    user,
	}
	previousCount := user.Positions.EffectiveCount()

	for i, request := range requests {
		amount, err := pool.ToAmount(request.Amount)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		if !request.RequestType.Valid() {
			return nil, fmt.Errorf("request %d: %w: unknown request type %d", i, pool.ErrBadRequest, uint32(request.RequestType))
		}
		if err := p.RequireActionAllowed(request.RequestType); err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		if err := result.apply(env, p, params, request, amount); err != nil {
			return nil, fmt.Errorf("request %d (%s): %w", i, request.RequestType, err)
		}
	}

	if err := p.RequireUnderMax(user.Positions, previousCount); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Result) apply(env *pool.Env, p *pool.Pool, params auctions.Params, request pool.Request, amount *uint256.Int) error {
	switch request.RequestType {
	case pool.Supply:
		return r.supply(env, p, request.Address, amount, false)
	case pool.SupplyCollateral:
		return r.supply(env, p, request.Address, amount, true)
	case pool.Withdraw:
		return r.withdraw(env, p, request.Address, amount, false)
	case pool.WithdrawCollateral:
		r.CheckHealth = true
		return r.withdraw(env, p, request.Address, amount, true)
	case pool.Borrow:
		r.CheckHealth = true
		return r.borrow(env, p, request.Address, amount)
	case pool.Repay:
		return r.repay(env, p, request.Address, amount)
	case pool.FillUserLiquidationAuction:
		r.CheckHealth = true
		return r.fill(env, p, params, pool.UserLiquidation, request.Address)
	case pool.FillBadDebtAuction:
		r.CheckHealth = true
		return r.fill(env, p, params, pool.BadDebtAuction, request.Address)
	case pool.FillInterestAuction:
		return r.fill(env, p, params, pool.InterestAuction, request.Address)
	case pool.DeleteLiquidationAuction:
		r.CheckHealth = true
		if err := auctions.DeleteLiquidation(env, r.User.Address); err != nil {
			return err
		}
		env.Log.Debug("liquidation deleted",
			log.Stringer("user", r.User.Address),
		)
		return nil
	default:
		return fmt.Errorf("%w: unknown request type %d", pool.ErrBadRequest, uint32(request.RequestType))
	}
}

func (r *Result) supply(env *pool.Env, p *pool.Pool, asset ids.ShortID, amount *uint256.Int, collateral bool) error {
	reserve, err := p.LoadReserve(env, asset, true)
	if err != nil {
		return err
	}
	bTokens, err := reserve.ToBTokenDown(amount)
	if err != nil {
		return err
	}
	if collateral {
		err = r.User.AddCollateral(env, reserve, bTokens)
	} else {
		err = r.User.AddSupply(env, reserve, bTokens)
	}
	if err != nil {
		return err
	}
	if err := r.Actions.AddSpenderTransfer(asset, amount); err != nil {
		return err
	}
	p.CacheReserve(reserve)

	env.Log.Debug("supplied",
		log.Stringer("asset", asset),
		log.Stringer("user", r.User.Address),
		log.Bool("collateral", collateral),
		log.String("amount", amount.Dec()),
		log.String("bTokens", bTokens.Dec()),
	)
	return nil
}

// withdraw burns the bTokens worth amount, or every bToken the user holds
// if that is less.
func (r *Result) withdraw(env *pool.Env, p *pool.Pool, asset ids.ShortID, amount *uint256.Int, collateral bool) error {
	reserve, err := p.LoadReserve(env, asset, true)
	if err != nil {
		return err
	}
	held := r.User.GetSupply(reserve.Index)
	if collateral {
		held = r.User.GetCollateral(reserve.Index)
	}
	toBurn, err := reserve.ToBTokenUp(amount)
	if err != nil {
		return err
	}
	tokensOut := amount
	if toBurn.Gt(held) {
		toBurn = held
		if tokensOut, err = reserve.ToAssetFromBToken(held); err != nil {
			return err
		}
	}
	if collateral {
		err = r.User.RemoveCollateral(env, reserve, toBurn)
	} else {
		err = r.User.RemoveSupply(env, reserve, toBurn)
	}
	if err != nil {
		return err
	}
	if err := r.Actions.AddPoolTransfer(asset, tokensOut); err != nil {
		return err
	}
	p.CacheReserve(reserve)

	env.Log.Debug("withdrawn",
		log.Stringer("asset", asset),
		log.Stringer("user", r.User.Address),
		log.Bool("collateral", collateral),
		log.String("amount", tokensOut.Dec()),
		log.String("bTokens", toBurn.Dec()),
	)
	return nil
}

func (r *Result) borrow(env *pool.Env, p *pool.Pool, asset ids.ShortID, amount *uint256.Int) error {
	reserve, err := p.LoadReserve(env, asset, true)
	if err != nil {
		return err
	}
	dTokens, err := reserve.ToDTokenUp(amount)
	if err != nil {
		return err
	}
	if err := r.User.AddLiabilities(env, reserve, dTokens); err != nil {
		return err
	}
	if err := reserve.RequireUtilizationBelowMax(); err != nil {
		return err
	}
	if err := r.Actions.AddPoolTransfer(asset, amount); err != nil {
		return err
	}
	p.CacheReserve(reserve)

	env.Log.Debug("borrowed",
		log.Stringer("asset", asset),
		log.Stringer("user", r.User.Address),
		log.String("amount", amount.Dec()),
		log.String("dTokens", dTokens.Dec()),
	)
	return nil
}

// repay burns the dTokens worth amount. Payments above the user's debt are
// refunded.
func (r *Result) repay(env *pool.Env, p *pool.Pool, asset ids.ShortID, amount *uint256.Int) error {
	reserve, err := p.LoadReserve(env, asset, true)
	if err != nil {
		return err
	}
	owed := r.User.GetLiabilities(reserve.Index)
	toBurn, err := reserve.ToDTokenDown(amount)
	if err != nil {
		return err
	}
	if err := r.Actions.AddSpenderTransfer(asset, amount); err != nil {
		return err
	}
	if toBurn.Gt(owed) {
		debt, err := reserve.ToAssetFromDToken(owed)
		if err != nil {
			return err
		}
		refund, err := safemath.Diff(amount, debt)
		if err != nil {
			return fmt.Errorf("%w: refund", pool.ErrNegativeAmount)
		}
		toBurn = owed
		if err := r.Actions.AddPoolTransfer(asset, refund); err != nil {
			return err
		}
	}
	if err := r.User.RemoveLiabilities(env, reserve, toBurn); err != nil {
		return err
	}
	p.CacheReserve(reserve)

	env.Log.Debug("repaid",
		log.Stringer("asset", asset),
		log.Stringer("user", r.User.Address),
		log.String("amount", amount.Dec()),
		log.String("dTokens", toBurn.Dec()),
	)
	return nil
}

func (r *Result) fill(env *pool.Env, p *pool.Pool, params auctions.Params, auctionType pool.AuctionType, subject ids.ShortID) error {
	_, err := auctions.Fill(env, p, params, auctionType, subject, r.User)
	return err
}
