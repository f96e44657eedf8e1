// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lending/vms/poolvm/txs"
)

func TestMarkTxs(t *testing.T) {
	require := require.New(t)
	m, err := New(metric.NewRegistry())
	require.NoError(err)

	tx, err := txs.NewTx(&txs.UpdateStatusTx{
		BaseTx: txs.BaseTx{From: ids.GenerateTestShortID()},
	})
	require.NoError(err)
	require.NoError(m.MarkTxAccepted(tx))
	require.NoError(m.MarkTxFailed(tx))
	m.MarkBlockProcessed(1, 1)
	m.MarkBlockProcessed(0, 0)
}
