// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/luxfi/metric"

	"github.com/luxfi/lending/vms/poolvm/txs"
)

const txLabel = "tx"

var (
	_ txs.Visitor = (*txMetrics)(nil)

	txLabels = []string{txLabel}
)

// txMetrics counts txs by type.
type txMetrics struct {
	numTxs metric.CounterVec
}

func newTxMetrics(name, help string) *txMetrics {
	return &txMetrics{
		numTxs: metric.NewCounterVec(
			metric.CounterOpts{
				Name: name,
				Help: help,
			},
			txLabels,
		),
	}
}

func (m *txMetrics) inc(txType string) error {
	m.numTxs.With(metric.Labels{
		txLabel: txType,
	}).Inc()
	return nil
}

func (m *txMetrics) SubmitTx(*txs.SubmitTx) error {
	return m.inc("submit")
}

func (m *txMetrics) NewLiquidationAuctionTx(*txs.NewLiquidationAuctionTx) error {
	return m.inc("new_liquidation_auction")
}

func (m *txMetrics) NewAuctionTx(*txs.NewAuctionTx) error {
	return m.inc("new_auction")
}

func (m *txMetrics) BadDebtTx(*txs.BadDebtTx) error {
	return m.inc("bad_debt")
}

func (m *txMetrics) UpdateStatusTx(*txs.UpdateStatusTx) error {
	return m.inc("update_status")
}

func (m *txMetrics) SetStatusTx(*txs.SetStatusTx) error {
	return m.inc("set_status")
}

func (m *txMetrics) UpdatePoolTx(*txs.UpdatePoolTx) error {
	return m.inc("update_pool")
}

func (m *txMetrics) SetAdminTx(*txs.SetAdminTx) error {
	return m.inc("set_admin")
}

func (m *txMetrics) QueueSetReserveTx(*txs.QueueSetReserveTx) error {
	return m.inc("queue_set_reserve")
}

func (m *txMetrics) CancelSetReserveTx(*txs.CancelSetReserveTx) error {
	return m.inc("cancel_set_reserve")
}

func (m *txMetrics) SetReserveTx(*txs.SetReserveTx) error {
	return m.inc("set_reserve")
}

func (m *txMetrics) SetPriceTx(*txs.SetPriceTx) error {
	return m.inc("set_price")
}

func (m *txMetrics) MintTx(*txs.MintTx) error {
	return m.inc("mint")
}

func (m *txMetrics) BackstopDepositTx(*txs.BackstopDepositTx) error {
	return m.inc("backstop_deposit")
}

func (m *txMetrics) BackstopQueueTx(*txs.BackstopQueueTx) error {
	return m.inc("backstop_queue")
}
