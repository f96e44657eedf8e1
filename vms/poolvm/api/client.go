// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/luxfi/formatting"
	"github.com/luxfi/ids"
	"github.com/luxfi/rpc"

	"github.com/luxfi/lending/utils/json"
	"github.com/luxfi/lending/vms/poolvm/block"
	"github.com/luxfi/lending/vms/poolvm/pool"
	"github.com/luxfi/lending/vms/poolvm/txs"
)

// Client for interacting with the pool service of a node.
type Client struct {
	Requester rpc.EndpointRequester
}

// NewClient returns a client of the pool service served at uri. uri is the
// node's base URI, e.g. http://localhost:9650.
func NewClient(uri string) *Client {
	return &Client{Requester: rpc.NewEndpointRequester(
		uri + "/ext/pool",
	)}
}

func (c *Client) Ping(ctx context.Context, options ...rpc.Option) (bool, error) {
	res := &PingReply{}
	err := c.Requester.SendRequest(ctx, "pool.ping", &PingArgs{}, res, options...)
	return res.Success, err
}

func (c *Client) GetLastAccepted(ctx context.Context, options ...rpc.Option) (*GetLastAcceptedReply, error) {
	res := &GetLastAcceptedReply{}
	err := c.Requester.SendRequest(ctx, "pool.getLastAccepted", &EmptyArgs{}, res, options...)
	return res, err
}

func (c *Client) GetPoolConfig(ctx context.Context, options ...rpc.Option) (*pool.PoolConfig, error) {
	res := &GetPoolConfigReply{}
	err := c.Requester.SendRequest(ctx, "pool.getPoolConfig", &EmptyArgs{}, res, options...)
	return res.Config, err
}

func (c *Client) GetReserve(ctx context.Context, asset ids.ShortID, options ...rpc.Option) (*GetReserveReply, error) {
	res := &GetReserveReply{}
	err := c.Requester.SendRequest(ctx, "pool.getReserve", &AssetArgs{
		Asset: asset,
	}, res, options...)
	return res, err
}

func (c *Client) GetPositions(ctx context.Context, user ids.ShortID, options ...rpc.Option) (*pool.Positions, error) {
	res := &GetPositionsReply{}
	err := c.Requester.SendRequest(ctx, "pool.getPositions", &UserArgs{
		User: user,
	}, res, options...)
	return res.Positions, err
}

func (c *Client) GetPositionData(ctx context.Context, user ids.ShortID, options ...rpc.Option) (*GetPositionDataReply, error) {
	res := &GetPositionDataReply{}
	err := c.Requester.SendRequest(ctx, "pool.getPositionData", &UserArgs{
		User: user,
	}, res, options...)
	return res, err
}

func (c *Client) GetAuction(
	ctx context.Context,
	auctionType pool.AuctionType,
	user ids.ShortID,
	options ...rpc.Option,
) (*GetAuctionReply, error) {
	res := &GetAuctionReply{}
	err := c.Requester.SendRequest(ctx, "pool.getAuction", &GetAuctionArgs{
		AuctionType: json.Uint32(auctionType),
		User:        user,
	}, res, options...)
	return res, err
}

func (c *Client) GetBalance(ctx context.Context, asset, holder ids.ShortID, options ...rpc.Option) (*uint256.Int, error) {
	res := &GetBalanceReply{}
	err := c.Requester.SendRequest(ctx, "pool.getBalance", &GetBalanceArgs{
		Asset:  asset,
		Holder: holder,
	}, res, options...)
	return res.Balance, err
}

// IssueBlock executes transactions in a new block. A zero time lets the node
// pick the block time.
func (c *Client) IssueBlock(ctx context.Context, time uint64, transactions []*txs.Tx, options ...rpc.Option) (*block.Result, error) {
	txStrs := make([]string, len(transactions))
	for i, tx := range transactions {
		txStr, err := formatting.Encode(formatting.Hex, tx.Bytes())
		if err != nil {
			return nil, err
		}
		txStrs[i] = txStr
	}
	res := &IssueBlockReply{}
	err := c.Requester.SendRequest(ctx, "pool.issueBlock", &IssueBlockArgs{
		Time:     json.Uint64(time),
		Txs:      txStrs,
		Encoding: formatting.Hex,
	}, res, options...)
	return res.Result, err
}
