// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/rpc/v2"
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lending/utils/json"
	"github.com/luxfi/lending/vms/poolvm/txs"
)

func TestClient(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	vm := &testVM{}

	server := rpc.NewServer()
	server.RegisterCodec(json.NewCodec(), "application/json")
	require.NoError(server.RegisterService(NewService(vm), "pool"))
	httpServer := httptest.NewServer(server)
	defer httpServer.Close()
	client := NewClient(httpServer.URL)

	ok, err := client.Ping(ctx)
	require.NoError(err)
	require.True(ok)

	tip, err := client.GetLastAccepted(ctx)
	require.NoError(err)
	require.Equal(json.Uint64(3), tip.Height)
	require.Equal(json.Uint64(100), tip.Timestamp)

	balance, err := client.GetBalance(ctx, ids.GenerateTestShortID(), ids.GenerateTestShortID())
	require.NoError(err)
	require.Equal(uint256.NewInt(5), balance)

	tx, err := txs.NewTx(&txs.UpdateStatusTx{
		BaseTx: txs.BaseTx{From: ids.GenerateTestShortID()},
	})
	require.NoError(err)
	result, err := client.IssueBlock(ctx, 101, []*txs.Tx{tx})
	require.NoError(err)
	require.Equal(uint64(101), result.Time)
	require.Len(vm.issued, 1)
	require.Equal(tx.ID(), vm.issued[0].ID())
}
