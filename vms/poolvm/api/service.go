// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api provides the JSON-RPC service of the pool VM.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/holiman/uint256"
	"github.com/luxfi/formatting"
	"github.com/luxfi/ids"

	"github.com/luxfi/lending/utils/json"
	"github.com/luxfi/lending/vms/poolvm/block"
	"github.com/luxfi/lending/vms/poolvm/pool"
	"github.com/luxfi/lending/vms/poolvm/state"
	"github.com/luxfi/lending/vms/poolvm/txs"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNoTxs          = errors.New("no txs to issue")
)

// VM is the read and issue surface the service is served from.
type VM interface {
	PoolConfig() (*pool.PoolConfig, error)
	Reserve(asset ids.ShortID) (*pool.Reserve, error)
	Positions(user ids.ShortID) (*pool.Positions, error)
	PositionData(user ids.ShortID) (*pool.PositionData, error)
	Auction(auctionType pool.AuctionType, user ids.ShortID) (*pool.AuctionData, *pool.AuctionData, error)
	Balance(asset, holder ids.ShortID) (*uint256.Int, error)
	LastAccepted() (*state.Chain, error)
	IssueBlock(ctx context.Context, time uint64, transactions []*txs.Tx) (*block.Result, error)
}

// Service provides the RPC API of the pool VM.
type Service struct {
	vm VM
}

// NewService creates a new API service.
func NewService(vm VM) *Service {
	return &Service{vm: vm}
}

// PingArgs is the argument for the Ping API.
type PingArgs struct{}

// PingReply is the reply for the Ping API.
type PingReply struct {
	Success bool `json:"success"`
}

// Ping returns a simple health check response.
func (*Service) Ping(_ *http.Request, _ *PingArgs, reply *PingReply) error {
	reply.Success = true
	return nil
}

type EmptyArgs struct{}

// GetLastAcceptedReply is the reply for the GetLastAccepted API.
type GetLastAcceptedReply struct {
	BlockID   ids.ID      `json:"blockID"`
	Height    json.Uint64 `json:"height"`
	Timestamp json.Uint64 `json:"timestamp"`
}

func (s *Service) GetLastAccepted(_ *http.Request, _ *EmptyArgs, reply *GetLastAcceptedReply) error {
	tip, err := s.vm.LastAccepted()
	if err != nil {
		return err
	}
	reply.BlockID = tip.BlockID
	reply.Height = json.Uint64(tip.Height)
	reply.Timestamp = json.Uint64(tip.Timestamp)
	return nil
}

// GetPoolConfigReply is the reply for the GetPoolConfig API.
type GetPoolConfigReply struct {
	Config     *pool.PoolConfig `json:"config"`
	StatusName string           `json:"statusName"`
}

func (s *Service) GetPoolConfig(_ *http.Request, _ *EmptyArgs, reply *GetPoolConfigReply) error {
	config, err := s.vm.PoolConfig()
	if err != nil {
		return err
	}
	reply.Config = config
	reply.StatusName = config.Status.String()
	return nil
}

// AssetArgs names a reserve asset.
type AssetArgs struct {
	Asset ids.ShortID `json:"asset"`
}

// GetReserveReply is the reply for the GetReserve API. Data is accrued to
// the last accepted block.
type GetReserveReply struct {
	Asset       ids.ShortID        `json:"asset"`
	Config      pool.ReserveConfig `json:"config"`
	Data        pool.ReserveData   `json:"data"`
	Utilization *uint256.Int       `json:"utilization"`
}

func (s *Service) GetReserve(_ *http.Request, args *AssetArgs, reply *GetReserveReply) error {
	reserve, err := s.vm.Reserve(args.Asset)
	if err != nil {
		return err
	}
	util, err := reserve.Utilization()
	if err != nil {
		return err
	}
	reply.Asset = reserve.Asset
	reply.Config = reserve.ReserveConfig
	reply.Data = reserve.ReserveData
	reply.Utilization = util
	return nil
}

// UserArgs names a pool user.
type UserArgs struct {
	User ids.ShortID `json:"user"`
}

// GetPositionsReply is the reply for the GetPositions API.
type GetPositionsReply struct {
	Positions *pool.Positions `json:"positions"`
}

func (s *Service) GetPositions(_ *http.Request, args *UserArgs, reply *GetPositionsReply) error {
	positions, err := s.vm.Positions(args.User)
	if err != nil {
		return err
	}
	reply.Positions = positions
	return nil
}

// GetPositionDataReply is the reply for the GetPositionData API.
// HealthFactor is omitted when the user has no liabilities.
type GetPositionDataReply struct {
	Data         *pool.PositionData `json:"data"`
	HealthFactor *uint256.Int       `json:"healthFactor,omitempty"`
}

func (s *Service) GetPositionData(_ *http.Request, args *UserArgs, reply *GetPositionDataReply) error {
	data, err := s.vm.PositionData(args.User)
	if err != nil {
		return err
	}
	reply.Data = data
	if data.LiabilityBase.IsZero() {
		return nil
	}
	reply.HealthFactor, err = data.AsHealthFactor()
	return err
}

// GetAuctionArgs are the arguments for the GetAuction API.
type GetAuctionArgs struct {
	AuctionType json.Uint32 `json:"auctionType"`
	User        ids.ShortID `json:"user"`
}

// AuctionQuote is an auction with its amounts keyed by asset address.
type AuctionQuote struct {
	Bid   map[string]*uint256.Int `json:"bid"`
	Lot   map[string]*uint256.Int `json:"lot"`
	Block uint32                  `json:"block"`
}

func newAuctionQuote(auction *pool.AuctionData) *AuctionQuote {
	if auction == nil {
		return nil
	}
	quote := &AuctionQuote{
		Bid:   make(map[string]*uint256.Int, len(auction.Bid)),
		Lot:   make(map[string]*uint256.Int, len(auction.Lot)),
		Block: auction.Block,
	}
	for asset, amount := range auction.Bid {
		quote.Bid[asset.String()] = amount
	}
	for asset, amount := range auction.Lot {
		quote.Lot[asset.String()] = amount
	}
	return quote
}

// GetAuctionReply is the reply for the GetAuction API. Scaled holds the
// terms of a fill in the next block.
type GetAuctionReply struct {
	Auction *AuctionQuote `json:"auction"`
	Scaled  *AuctionQuote `json:"scaled,omitempty"`
}

func (s *Service) GetAuction(_ *http.Request, args *GetAuctionArgs, reply *GetAuctionReply) error {
	auctionType := pool.AuctionType(args.AuctionType)
	if !auctionType.Valid() {
		return fmt.Errorf("%w: unknown auction type %d", ErrInvalidRequest, args.AuctionType)
	}
	auction, scaled, err := s.vm.Auction(auctionType, args.User)
	if err != nil {
		return err
	}
	reply.Auction = newAuctionQuote(auction)
	reply.Scaled = newAuctionQuote(scaled)
	return nil
}

// GetBalanceArgs are the arguments for the GetBalance API.
type GetBalanceArgs struct {
	Asset  ids.ShortID `json:"asset"`
	Holder ids.ShortID `json:"holder"`
}

// GetBalanceReply is the reply for the GetBalance API.
type GetBalanceReply struct {
	Balance *uint256.Int `json:"balance"`
}

func (s *Service) GetBalance(_ *http.Request, args *GetBalanceArgs, reply *GetBalanceReply) error {
	balance, err := s.vm.Balance(args.Asset, args.Holder)
	if err != nil {
		return err
	}
	reply.Balance = balance
	return nil
}

// IssueBlockArgs are the arguments for the IssueBlock API. A zero Time
// builds the block at the VM's clock.
type IssueBlockArgs struct {
	Time     json.Uint64         `json:"time"`
	Txs      []string            `json:"txs"`
	Encoding formatting.Encoding `json:"encoding"`
}

// IssueBlockReply is the reply for the IssueBlock API.
type IssueBlockReply struct {
	Result *block.Result `json:"result"`
}

// IssueBlock executes the given txs in a new block.
func (s *Service) IssueBlock(r *http.Request, args *IssueBlockArgs, reply *IssueBlockReply) error {
	if len(args.Txs) == 0 {
		return ErrNoTxs
	}
	transactions := make([]*txs.Tx, len(args.Txs))
	for i, txStr := range args.Txs {
		txBytes, err := formatting.Decode(args.Encoding, txStr)
		if err != nil {
			return fmt.Errorf("%w: failed to decode tx %d: %w", ErrInvalidRequest, i, err)
		}
		tx, err := txs.Parse(txBytes)
		if err != nil {
			return fmt.Errorf("%w: failed to parse tx %d: %w", ErrInvalidRequest, i, err)
		}
		transactions[i] = tx
	}
	result, err := s.vm.IssueBlock(r.Context(), uint64(args.Time), transactions)
	if err != nil {
		return err
	}
	reply.Result = result
	return nil
}
