// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"errors"

	"github.com/luxfi/metric"

	"github.com/luxfi/lending/vms/poolvm/txs"
)

var (
	_ Metrics = (*metricsImpl)(nil)

	ErrNotRegistry = errors.New("registerer must implement metric.Registry")
)

type Metrics interface {
	metric.APIInterceptor

	// MarkBlockProcessed updates the block counters. Tx outcomes are
	// recorded separately.
	MarkBlockProcessed(numAccepted, numFailed int)
	MarkTxAccepted(tx *txs.Tx) error
	MarkTxFailed(tx *txs.Tx) error
}

type metricsImpl struct {
	accepted *txMetrics
	failed   *txMetrics

	numBlocks, numEmptyBlocks metric.Counter

	metric.APIInterceptor
}

func (m *metricsImpl) MarkBlockProcessed(numAccepted, numFailed int) {
	m.numBlocks.Inc()
	if numAccepted == 0 && numFailed == 0 {
		m.numEmptyBlocks.Inc()
	}
}

func (m *metricsImpl) MarkTxAccepted(tx *txs.Tx) error {
	return tx.Unsigned.Visit(m.accepted)
}

func (m *metricsImpl) MarkTxFailed(tx *txs.Tx) error {
	return tx.Unsigned.Visit(m.failed)
}

func New(registerer metric.Registerer) (Metrics, error) {
	registry, ok := registerer.(metric.Registry)
	if !ok {
		return nil, ErrNotRegistry
	}

	m := &metricsImpl{
		accepted: newTxMetrics("txs_accepted", "number of transactions accepted"),
		failed:   newTxMetrics("txs_failed", "number of transactions that failed execution"),
	}
	m.numBlocks = metric.NewCounter(metric.CounterOpts{
		Name: "blocks_processed",
		Help: "Number of blocks processed",
	})
	m.numEmptyBlocks = metric.NewCounter(metric.CounterOpts{
		Name: "empty_blocks_processed",
		Help: "Number of processed blocks without transactions",
	})

	apiRequestMetric, err := metric.NewAPIInterceptor(registry)
	m.APIInterceptor = apiRequestMetric
	return m, err
}
