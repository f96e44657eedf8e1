// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

// Allow vm to execute custom logic against the underlying transaction types.
type Visitor interface {
	// User requests:
	SubmitTx(*SubmitTx) error

	// Auctions:
	NewLiquidationAuctionTx(*NewLiquidationAuctionTx) error
	NewAuctionTx(*NewAuctionTx) error
	BadDebtTx(*BadDebtTx) error

	// Pool management:
	UpdateStatusTx(*UpdateStatusTx) error
	SetStatusTx(*SetStatusTx) error
	UpdatePoolTx(*UpdatePoolTx) error
	SetAdminTx(*SetAdminTx) error
	QueueSetReserveTx(*QueueSetReserveTx) error
	CancelSetReserveTx(*CancelSetReserveTx) error
	SetReserveTx(*SetReserveTx) error

	// Ledgers:
	SetPriceTx(*SetPriceTx) error
	MintTx(*MintTx) error
	BackstopDepositTx(*BackstopDepositTx) error
	BackstopQueueTx(*BackstopQueueTx) error
}
