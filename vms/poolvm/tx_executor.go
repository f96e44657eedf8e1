// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poolvm

import (
	"fmt"

	"github.com/luxfi/log"

	"github.com/luxfi/lending/vms/poolvm/auctions"
	"github.com/luxfi/lending/vms/poolvm/executor"
	"github.com/luxfi/lending/vms/poolvm/pool"
	"github.com/luxfi/lending/vms/poolvm/state"
	"github.com/luxfi/lending/vms/poolvm/txs"
)

var _ txs.Visitor = (*txExecutor)(nil)

// txExecutor applies one tx to a staging state. Its writes are discarded by
// the caller when it returns an error.
type txExecutor struct {
	vm    *VM
	state *state.State
	env   *pool.Env
	tx    *txs.Tx
}

func (e *txExecutor) SubmitTx(tx *txs.SubmitTx) error {
	// Only the caller's own tokens can be spent.
	if tx.Spender != tx.From {
		return fmt.Errorf("%w: %s cannot spend for %s", pool.ErrUnauthorized, tx.From, tx.Spender)
	}
	positions, err := executor.Submit(e.env, e.vm.AuctionParams(), tx.From, tx.Spender, tx.To, tx.PoolRequests())
	if err != nil {
		return err
	}
	e.vm.log.Debug("submit executed",
		log.Stringer("txID", e.tx.ID()),
		log.Int("collateral", len(positions.Collateral)),
		log.Int("liabilities", len(positions.Liabilities)),
		log.Int("supply", len(positions.Supply)),
	)
	return nil
}

func (e *txExecutor) NewLiquidationAuctionTx(tx *txs.NewLiquidationAuctionTx) error {
	_, err := auctions.CreateLiquidation(e.env, tx.User, tx.Percent)
	return err
}

func (e *txExecutor) NewAuctionTx(tx *txs.NewAuctionTx) error {
	_, err := auctions.Create(e.env, e.vm.AuctionParams(), pool.AuctionType(tx.AuctionType))
	return err
}

func (e *txExecutor) BadDebtTx(tx *txs.BadDebtTx) error {
	return pool.TransferBadDebtToBackstop(e.env, tx.User)
}

func (e *txExecutor) UpdateStatusTx(*txs.UpdateStatusTx) error {
	_, err := pool.UpdateStatus(e.env)
	return err
}

func (e *txExecutor) SetStatusTx(tx *txs.SetStatusTx) error {
	if err := pool.RequireAdmin(e.env, tx.From); err != nil {
		return err
	}
	return pool.SetStatus(e.env, pool.Status(tx.Status))
}

func (e *txExecutor) UpdatePoolTx(tx *txs.UpdatePoolTx) error {
	if err := pool.RequireAdmin(e.env, tx.From); err != nil {
		return err
	}
	return pool.UpdatePool(e.env, tx.BackstopTakeRate, tx.MaxPositions)
}

func (e *txExecutor) SetAdminTx(tx *txs.SetAdminTx) error {
	if err := pool.RequireAdmin(e.env, tx.From); err != nil {
		return err
	}
	return pool.SetAdmin(e.env, tx.Admin)
}

func (e *txExecutor) QueueSetReserveTx(tx *txs.QueueSetReserveTx) error {
	if err := pool.RequireAdmin(e.env, tx.From); err != nil {
		return err
	}
	return pool.QueueSetReserve(e.env, tx.Asset, &tx.Config, e.vm.ReserveTimelock)
}

func (e *txExecutor) CancelSetReserveTx(tx *txs.CancelSetReserveTx) error {
	if err := pool.RequireAdmin(e.env, tx.From); err != nil {
		return err
	}
	return pool.CancelSetReserve(e.env, tx.Asset)
}

func (e *txExecutor) SetReserveTx(tx *txs.SetReserveTx) error {
	index, err := pool.SetReserve(e.env, tx.Asset)
	if err != nil {
		return err
	}
	e.vm.log.Info("reserve set",
		log.Stringer("asset", tx.Asset),
		log.Uint32("index", index),
	)
	return nil
}

func (e *txExecutor) SetPriceTx(tx *txs.SetPriceTx) error {
	config, err := e.state.GetPoolConfig()
	if err != nil {
		return err
	}
	if tx.From != config.Oracle {
		return fmt.Errorf("%w: %s is not the pool oracle", pool.ErrUnauthorized, tx.From)
	}
	if tx.Timestamp > e.env.Ledger.Timestamp {
		return fmt.Errorf("%w: price at %d is ahead of block time %d", pool.ErrBadRequest, tx.Timestamp, e.env.Ledger.Timestamp)
	}
	return e.state.SetPrice(tx.Asset, &pool.PriceData{
		Price:     tx.Price.Uint256(),
		Timestamp: tx.Timestamp,
	})
}

func (e *txExecutor) MintTx(tx *txs.MintTx) error {
	if err := pool.RequireAdmin(e.env, tx.From); err != nil {
		return err
	}
	return e.state.Mint(tx.Asset, tx.To, tx.Amount.Uint256())
}

func (e *txExecutor) BackstopDepositTx(tx *txs.BackstopDepositTx) error {
	_, err := e.state.Deposit(e.env.Address, tx.From, tx.Amount.Uint256())
	return err
}

func (e *txExecutor) BackstopQueueTx(tx *txs.BackstopQueueTx) error {
	return e.state.QueueWithdrawal(e.env.Address, tx.From, tx.Shares.Uint256())
}
