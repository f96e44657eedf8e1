// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poolvm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"

	"github.com/gorilla/rpc/v2"
	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/lending/utils/json"
	"github.com/luxfi/lending/utils/timer/mockable"
	"github.com/luxfi/lending/vms/poolvm/api"
	"github.com/luxfi/lending/vms/poolvm/auctions"
	"github.com/luxfi/lending/vms/poolvm/block"
	"github.com/luxfi/lending/vms/poolvm/config"
	"github.com/luxfi/lending/vms/poolvm/genesis"
	"github.com/luxfi/lending/vms/poolvm/metrics"
	"github.com/luxfi/lending/vms/poolvm/pool"
	"github.com/luxfi/lending/vms/poolvm/state"
	"github.com/luxfi/lending/vms/poolvm/txs"
)

const Version = "1.0.0"

var (
	_ api.VM = (*VM)(nil)

	errNotInitialized = errors.New("VM not initialized")
	errShutdown       = errors.New("VM is shutting down")
	errWrongParent    = errors.New("block does not build on the last accepted block")
	errWrongHeight    = errors.New("unexpected block height")
	errTimestamp      = errors.New("block timestamp before its parent")
	errTooManyTxs     = errors.New("block holds too many txs")
	errBlockTooLarge  = errors.New("block exceeds the maximum size")
)

// VM runs a single lending pool as a chain of blocks. Every state transition
// happens in ProcessBlock; API reads see the last accepted block.
type VM struct {
	config.Config

	log log.Logger

	// lock serializes block processing. API reads take the read lock.
	lock sync.RWMutex

	// Database management
	baseDB database.Database
	db     *versiondb.Database

	// Used to time blocks built through IssueBlock
	clock mockable.Clock

	registerer metric.Registerer
	metrics    metrics.Metrics

	// poolAddress holds the pool's underlying tokens
	poolAddress ids.ShortID
	tip         *state.Chain

	isInitialized bool
	shutdown      bool
}

// Initialize opens the chain stored in db. An empty db is initialized from
// genesisBytes.
func (vm *VM) Initialize(
	_ context.Context,
	db database.Database,
	genesisBytes []byte,
	configBytes []byte,
	logger log.Logger,
	registerer metric.Registerer,
) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	// A VM built by the factory starts from the factory's configuration.
	base := vm.Config
	if base.BurnThreshold == nil {
		base = config.DefaultConfig()
	}
	cfg, err := config.Overlay(base, configBytes)
	if err != nil {
		return err
	}
	vm.Config = cfg
	vm.log = logger
	vm.registerer = registerer
	vm.metrics, err = metrics.New(registerer)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	vm.baseDB = db
	vm.db = versiondb.New(db)

	s := state.New(vm.db)
	tip, err := s.LastAccepted()
	switch {
	case errors.Is(err, state.ErrBlockNotFound):
		if tip, err = vm.initGenesis(genesisBytes); err != nil {
			return fmt.Errorf("failed to initialize genesis: %w", err)
		}
	case err != nil:
		return err
	}
	metadata, err := s.Metadata()
	if err != nil {
		return err
	}
	vm.poolAddress = metadata.PoolAddress
	vm.tip = tip
	vm.isInitialized = true

	vm.log.Info("pool VM initialized",
		log.Stringer("pool", vm.poolAddress),
		log.Stringer("lastAccepted", tip.BlockID),
		log.Uint64("height", tip.Height),
	)
	return nil
}

// initGenesis writes the genesis state and accepts the genesis block.
func (vm *VM) initGenesis(genesisBytes []byte) (*state.Chain, error) {
	g, err := genesis.Parse(genesisBytes)
	if err != nil {
		return nil, err
	}

	s := state.New(vm.db)
	if err := s.SetMetadata(&state.Metadata{
		PoolAddress:     g.PoolAddress,
		OracleDecimals:  g.OracleDecimals,
		BackstopAddress: g.Pool.Backstop,
		BackstopToken:   g.BackstopToken,
	}); err != nil {
		return nil, err
	}
	vm.poolAddress = g.PoolAddress
	env := vm.newEnv(s, pool.Ledger{Timestamp: g.Timestamp})
	if err := pool.InitializePool(env, &g.Pool); err != nil {
		return nil, err
	}
	for _, reserve := range g.Reserves {
		if _, err := pool.InitializeReserve(env, reserve.Asset, &reserve.Config); err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", reserve.Asset, err)
		}
	}
	for _, price := range g.Prices {
		if err := s.SetPrice(price.Asset, &pool.PriceData{
			Price:     price.Price,
			Timestamp: g.Timestamp,
		}); err != nil {
			return nil, err
		}
	}
	for _, balance := range g.Balances {
		if err := s.Mint(balance.Asset, balance.Holder, balance.Amount); err != nil {
			return nil, err
		}
	}
	for _, deposit := range g.BackstopDeposits {
		if _, err := s.Deposit(g.PoolAddress, deposit.Depositor, deposit.Amount); err != nil {
			return nil, fmt.Errorf("failed to deposit for %s: %w", deposit.Depositor, err)
		}
	}

	blk, err := block.New(ids.Empty, 0, g.Timestamp, nil)
	if err != nil {
		return nil, err
	}
	tip := &state.Chain{
		BlockID:   blk.ID(),
		Height:    0,
		Timestamp: g.Timestamp,
	}
	if err := s.AcceptBlock(tip, blk.Bytes()); err != nil {
		return nil, err
	}
	if err := vm.db.Commit(); err != nil {
		return nil, err
	}
	return tip, nil
}

func (vm *VM) newEnv(s *state.State, ledger pool.Ledger) *pool.Env {
	return &pool.Env{
		Storage:   s,
		Ledger:    ledger,
		Address:   vm.poolAddress,
		Oracle:    s,
		Tokens:    s,
		Backstop:  s,
		Emissions: pool.NoEmissions{},
		Log:       vm.log,
	}
}

// readEnv is an env positioned at the last accepted block. The caller must
// hold the lock.
func (vm *VM) readEnv() (*pool.Env, *state.State, error) {
	if !vm.isInitialized {
		return nil, nil, errNotInitialized
	}
	s := state.New(vm.db)
	return vm.newEnv(s, vm.ledger(vm.tip.Height, vm.tip.Timestamp)), s, nil
}

func (*VM) ledger(height uint64, timestamp uint64) pool.Ledger {
	return pool.Ledger{
		Timestamp: timestamp,
		Sequence:  uint32(height),
	}
}

// ProcessBlock executes every tx of blk against the last accepted block and
// accepts blk. A tx that fails is discarded and reported in the result; the
// remaining txs still execute.
func (vm *VM) ProcessBlock(_ context.Context, blk *block.Block) (*block.Result, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.processBlock(blk)
}

func (vm *VM) processBlock(blk *block.Block) (*block.Result, error) {
	switch {
	case !vm.isInitialized:
		return nil, errNotInitialized
	case vm.shutdown:
		return nil, errShutdown
	}
	if err := vm.verifyBlock(blk); err != nil {
		return nil, err
	}

	result := &block.Result{
		BlockID:  blk.ID(),
		Height:   blk.Height,
		Time:     blk.Time,
		Accepted: []ids.ID{},
		Failed:   []block.FailedTx{},
	}
	ledger := vm.ledger(blk.Height, blk.Time)
	blockDB := versiondb.New(vm.db)
	for i, txBytes := range blk.Txs {
		txDB := versiondb.New(blockDB)
		tx, err := vm.executeTx(txDB, ledger, txBytes)
		if err != nil {
			txDB.Abort()
			failed := block.FailedTx{
				Index: i,
				Error: err.Error(),
			}
			if tx != nil {
				failed.TxID = tx.ID()
				if err := vm.metrics.MarkTxFailed(tx); err != nil {
					return nil, err
				}
			}
			result.Failed = append(result.Failed, failed)
			vm.log.Warn("transaction failed",
				log.Stringer("blkID", blk.ID()),
				log.Int("index", i),
				log.Stringer("txID", failed.TxID),
				log.Err(err),
			)
			continue
		}
		if err := txDB.Commit(); err != nil {
			blockDB.Abort()
			return nil, fmt.Errorf("failed to commit tx %s: %w", tx.ID(), err)
		}
		if err := vm.metrics.MarkTxAccepted(tx); err != nil {
			return nil, err
		}
		result.Accepted = append(result.Accepted, tx.ID())
	}

	tip := &state.Chain{
		BlockID:   blk.ID(),
		Height:    blk.Height,
		Timestamp: blk.Time,
	}
	if err := state.New(blockDB).AcceptBlock(tip, blk.Bytes()); err != nil {
		blockDB.Abort()
		return nil, err
	}
	if err := blockDB.Commit(); err != nil {
		return nil, err
	}
	if err := vm.db.Commit(); err != nil {
		return nil, err
	}
	vm.tip = tip
	vm.metrics.MarkBlockProcessed(len(result.Accepted), len(result.Failed))

	vm.log.Debug("block processed",
		log.Stringer("blkID", blk.ID()),
		log.Uint64("height", blk.Height),
		log.Int("accepted", len(result.Accepted)),
		log.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (vm *VM) verifyBlock(blk *block.Block) error {
	switch {
	case blk.ParentID != vm.tip.BlockID:
		return fmt.Errorf("%w: parent %s, last accepted %s", errWrongParent, blk.ParentID, vm.tip.BlockID)
	case blk.Height != vm.tip.Height+1:
		return fmt.Errorf("%w: %d after %d", errWrongHeight, blk.Height, vm.tip.Height)
	case blk.Height > math.MaxUint32:
		return fmt.Errorf("%w: %d exceeds the ledger sequence", errWrongHeight, blk.Height)
	case blk.Time < vm.tip.Timestamp:
		return fmt.Errorf("%w: %d < %d", errTimestamp, blk.Time, vm.tip.Timestamp)
	case len(blk.Txs) > int(vm.MaxTxsPerBlock):
		return fmt.Errorf("%w: %d > %d", errTooManyTxs, len(blk.Txs), vm.MaxTxsPerBlock)
	case uint64(len(blk.Bytes())) > vm.MaxBlockSize:
		return fmt.Errorf("%w: %d > %d bytes", errBlockTooLarge, len(blk.Bytes()), vm.MaxBlockSize)
	default:
		return nil
	}
}

// executeTx runs one tx on db. The tx is returned when it could be parsed.
func (vm *VM) executeTx(db database.Database, ledger pool.Ledger, txBytes []byte) (*txs.Tx, error) {
	tx, err := txs.Parse(txBytes)
	if err != nil {
		return nil, err
	}
	if err := tx.SyntacticVerify(); err != nil {
		return tx, err
	}
	s := state.New(db)
	executor := &txExecutor{
		vm:    vm,
		state: s,
		env:   vm.newEnv(s, ledger),
		tx:    tx,
	}
	return tx, tx.Unsigned.Visit(executor)
}

// IssueBlock builds a block of transactions on the last accepted block and
// processes it. A zero time uses the VM clock.
func (vm *VM) IssueBlock(_ context.Context, time uint64, transactions []*txs.Tx) (*block.Result, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if !vm.isInitialized {
		return nil, errNotInitialized
	}
	if time == 0 {
		time = max(vm.clock.Unix(), vm.tip.Timestamp)
	}
	blk, err := block.New(vm.tip.BlockID, vm.tip.Height+1, time, transactions)
	if err != nil {
		return nil, err
	}
	return vm.processBlock(blk)
}

// LastAccepted returns the chain tip.
func (vm *VM) LastAccepted() (*state.Chain, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if !vm.isInitialized {
		return nil, errNotInitialized
	}
	tip := *vm.tip
	return &tip, nil
}

// GetBlock returns the accepted block with blkID.
func (vm *VM) GetBlock(blkID ids.ID) (*block.Block, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	_, s, err := vm.readEnv()
	if err != nil {
		return nil, err
	}
	bytes, err := s.GetBlock(blkID)
	if err != nil {
		return nil, err
	}
	return block.Parse(bytes)
}

func (vm *VM) PoolConfig() (*pool.PoolConfig, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	_, s, err := vm.readEnv()
	if err != nil {
		return nil, err
	}
	return s.GetPoolConfig()
}

// Reserve returns the reserve of asset accrued to the last accepted block.
func (vm *VM) Reserve(asset ids.ShortID) (*pool.Reserve, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	env, _, err := vm.readEnv()
	if err != nil {
		return nil, err
	}
	p, err := pool.Load(env)
	if err != nil {
		return nil, err
	}
	return p.LoadReserve(env, asset, false)
}

func (vm *VM) Positions(user ids.ShortID) (*pool.Positions, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	_, s, err := vm.readEnv()
	if err != nil {
		return nil, err
	}
	return s.GetPositions(user)
}

// PositionData values the positions of user at the last accepted block.
func (vm *VM) PositionData(user ids.ShortID) (*pool.PositionData, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	env, s, err := vm.readEnv()
	if err != nil {
		return nil, err
	}
	positions, err := s.GetPositions(user)
	if err != nil {
		return nil, err
	}
	p, err := pool.Load(env)
	if err != nil {
		return nil, err
	}
	return pool.CalculatePositionData(env, p, positions)
}

// Auction returns the stored quote of an auction and its scaled terms if it
// were filled in the next block.
func (vm *VM) Auction(auctionType pool.AuctionType, user ids.ShortID) (*pool.AuctionData, *pool.AuctionData, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	_, s, err := vm.readEnv()
	if err != nil {
		return nil, nil, err
	}
	auction, err := s.GetAuction(auctionType, user)
	if err != nil {
		return nil, nil, err
	}
	next := vm.tip.Height + 1
	if next < uint64(auction.Block) {
		return auction, nil, nil
	}
	scaled, err := auctions.ScaleAuction(auction, uint32(next))
	if err != nil {
		return nil, nil, err
	}
	return auction, scaled, nil
}

func (vm *VM) Balance(asset, holder ids.ShortID) (*uint256.Int, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	_, s, err := vm.readEnv()
	if err != nil {
		return nil, err
	}
	return s.Balance(asset, holder)
}

// CreateHandlers returns the JSON-RPC handler of the pool service.
func (vm *VM) CreateHandlers(context.Context) (map[string]http.Handler, error) {
	server := rpc.NewServer()
	codec := json.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	server.RegisterInterceptFunc(vm.metrics.InterceptRequest)
	server.RegisterAfterFunc(vm.metrics.AfterRequest)

	if err := server.RegisterService(api.NewService(vm), "pool"); err != nil {
		return nil, fmt.Errorf("failed to register pool service: %w", err)
	}
	return map[string]http.Handler{
		"": server,
	}, nil
}

// HealthCheck reports the chain tip.
func (vm *VM) HealthCheck(context.Context) (interface{}, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if !vm.isInitialized {
		return nil, errNotInitialized
	}
	return map[string]interface{}{
		"healthy":      !vm.shutdown,
		"height":       vm.tip.Height,
		"lastAccepted": vm.tip.BlockID.String(),
	}, nil
}

// Shutdown closes the database.
func (vm *VM) Shutdown(context.Context) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if vm.shutdown {
		return nil
	}
	vm.shutdown = true
	if vm.db == nil {
		return nil
	}
	vm.log.Info("shutting down pool VM")
	if err := vm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
