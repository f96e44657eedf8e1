// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state persists the pool and the ledgers it settles against.
package state

import (
	"errors"
	"fmt"

	"github.com/luxfi/cache"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"

	"github.com/luxfi/lending/vms/poolvm/pool"
)

const reserveConfigCacheSize = 256

var (
	_ pool.Storage = (*State)(nil)

	singletonPrefix     = []byte("singleton")
	reserveConfigPrefix = []byte("reserveConfig")
	reserveDataPrefix   = []byte("reserveData")
	queuedReservePrefix = []byte("queuedReserve")
	positionsPrefix     = []byte("positions")
	auctionPrefix       = []byte("auction")
	pricePrefix         = []byte("price")
	balancePrefix       = []byte("balance")
	backstopPoolPrefix  = []byte("backstopPool")
	backstopUserPrefix  = []byte("backstopUser")
	blockPrefix         = []byte("block")
	heightPrefix        = []byte("height")

	metadataKey    = []byte("metadata")
	poolConfigKey  = []byte("poolConfig")
	reserveListKey = []byte("reserveList")

	ErrMetadataNotFound = errors.New("state metadata not found")
)

// State is the key-value layout of a pool. It is not safe for concurrent
// use; the VM serializes access.
type State struct {
	singletonDB     database.Database
	reserveConfigDB database.Database
	reserveDataDB   database.Database
	queuedReserveDB database.Database
	positionsDB     database.Database
	auctionDB       database.Database
	priceDB         database.Database
	balanceDB       database.Database
	backstopPoolDB  database.Database
	backstopUserDB  database.Database
	blockDB         database.Database
	heightDB        database.Database

	metadata           *Metadata
	reserveConfigCache *cache.LRU[ids.ShortID, *pool.ReserveConfig]
}

func New(db database.Database) *State {
	return &State{
		singletonDB:        prefixdb.New(singletonPrefix, db),
		reserveConfigDB:    prefixdb.New(reserveConfigPrefix, db),
		reserveDataDB:      prefixdb.New(reserveDataPrefix, db),
		queuedReserveDB:    prefixdb.New(queuedReservePrefix, db),
		positionsDB:        prefixdb.New(positionsPrefix, db),
		auctionDB:          prefixdb.New(auctionPrefix, db),
		priceDB:            prefixdb.New(pricePrefix, db),
		balanceDB:          prefixdb.New(balancePrefix, db),
		backstopPoolDB:     prefixdb.New(backstopPoolPrefix, db),
		backstopUserDB:     prefixdb.New(backstopUserPrefix, db),
		blockDB:            prefixdb.New(blockPrefix, db),
		heightDB:           prefixdb.New(heightPrefix, db),
		reserveConfigCache: &cache.LRU[ids.ShortID, *pool.ReserveConfig]{Size: reserveConfigCacheSize},
	}
}

func get(db database.Database, key []byte, record any) error {
	bytes, err := db.Get(key)
	if err != nil {
		return err
	}
	_, err = Codec.Unmarshal(bytes, record)
	return err
}

func put(db database.Database, key []byte, record any) error {
	bytes, err := Codec.Marshal(CodecVersion, record)
	if err != nil {
		return err
	}
	return db.Put(key, bytes)
}

// Metadata returns the collaborators' settings written at genesis.
func (s *State) Metadata() (*Metadata, error) {
	if s.metadata != nil {
		return s.metadata, nil
	}
	record := &metadataRecord{}
	if err := get(s.singletonDB, metadataKey, record); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrMetadataNotFound
		}
		return nil, err
	}
	s.metadata = &Metadata{
		PoolAddress:     record.PoolAddress,
		OracleDecimals:  record.OracleDecimals,
		BackstopAddress: record.BackstopAddress,
		BackstopToken:   record.BackstopToken,
	}
	return s.metadata, nil
}

func (s *State) SetMetadata(metadata *Metadata) error {
	err := put(s.singletonDB, metadataKey, &metadataRecord{
		PoolAddress:     metadata.PoolAddress,
		OracleDecimals:  metadata.OracleDecimals,
		BackstopAddress: metadata.BackstopAddress,
		BackstopToken:   metadata.BackstopToken,
	})
	if err != nil {
		return err
	}
	cpy := *metadata
	s.metadata = &cpy
	return nil
}

// GetPoolConfig returns pool.ErrNotInitialized before the pool exists.
func (s *State) GetPoolConfig() (*pool.PoolConfig, error) {
	record := &poolConfigRecord{}
	if err := get(s.singletonDB, poolConfigKey, record); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, pool.ErrNotInitialized
		}
		return nil, err
	}
	return record.config(), nil
}

func (s *State) SetPoolConfig(config *pool.PoolConfig) error {
	return put(s.singletonDB, poolConfigKey, newPoolConfigRecord(config))
}

func (s *State) GetReserveList() ([]ids.ShortID, error) {
	record := &reserveListRecord{}
	if err := get(s.singletonDB, reserveListKey, record); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.Assets, nil
}

func (s *State) PushReserveList(asset ids.ShortID) (uint32, error) {
	assets, err := s.GetReserveList()
	if err != nil {
		return 0, err
	}
	for _, existing := range assets {
		if existing == asset {
			return 0, fmt.Errorf("%w: %s already listed", pool.ErrBadRequest, asset)
		}
	}
	index := uint32(len(assets))
	assets = append(assets, asset)
	if err := put(s.singletonDB, reserveListKey, &reserveListRecord{Assets: assets}); err != nil {
		return 0, err
	}
	return index, nil
}

func (s *State) HasReserve(asset ids.ShortID) (bool, error) {
	if _, ok := s.reserveConfigCache.Get(asset); ok {
		return true, nil
	}
	return s.reserveConfigDB.Has(asset[:])
}

func (s *State) GetReserveConfig(asset ids.ShortID) (*pool.ReserveConfig, error) {
	if config, ok := s.reserveConfigCache.Get(asset); ok {
		cpy := *config
		return &cpy, nil
	}
	record := &reserveConfigRecord{}
	if err := get(s.reserveConfigDB, asset[:], record); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", pool.ErrReserveNotFound, asset)
		}
		return nil, err
	}
	config := record.config()
	s.reserveConfigCache.Put(asset, config)
	cpy := *config
	return &cpy, nil
}

func (s *State) SetReserveConfig(asset ids.ShortID, config *pool.ReserveConfig) error {
	record := newReserveConfigRecord(config)
	if err := put(s.reserveConfigDB, asset[:], &record); err != nil {
		return err
	}
	cpy := *config
	s.reserveConfigCache.Put(asset, &cpy)
	return nil
}

func (s *State) GetReserveData(asset ids.ShortID) (*pool.ReserveData, error) {
	record := &reserveDataRecord{}
	if err := get(s.reserveDataDB, asset[:], record); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", pool.ErrReserveNotFound, asset)
		}
		return nil, err
	}
	return record.data(), nil
}

func (s *State) SetReserveData(asset ids.ShortID, data *pool.ReserveData) error {
	return put(s.reserveDataDB, asset[:], newReserveDataRecord(data))
}

func (s *State) HasQueuedReserve(asset ids.ShortID) (bool, error) {
	return s.queuedReserveDB.Has(asset[:])
}

func (s *State) GetQueuedReserve(asset ids.ShortID) (*pool.QueuedReserveInit, error) {
	record := &queuedReserveRecord{}
	if err := get(s.queuedReserveDB, asset[:], record); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", pool.ErrQueuedReserveNotFound, asset)
		}
		return nil, err
	}
	return &pool.QueuedReserveInit{
		Config:     *record.Config.config(),
		UnlockTime: record.UnlockTime,
	}, nil
}

func (s *State) SetQueuedReserve(asset ids.ShortID, init *pool.QueuedReserveInit) error {
	return put(s.queuedReserveDB, asset[:], &queuedReserveRecord{
		Config:     newReserveConfigRecord(&init.Config),
		UnlockTime: init.UnlockTime,
	})
}

func (s *State) DeleteQueuedReserve(asset ids.ShortID) error {
	return s.queuedReserveDB.Delete(asset[:])
}

func (s *State) GetPositions(user ids.ShortID) (*pool.Positions, error) {
	record := &positionsRecord{}
	if err := get(s.positionsDB, user[:], record); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return pool.NewPositions(), nil
		}
		return nil, err
	}
	return record.positions(), nil
}

// SetPositions deletes the record of users without positions.
func (s *State) SetPositions(user ids.ShortID, positions *pool.Positions) error {
	if len(positions.Liabilities) == 0 && len(positions.Collateral) == 0 && len(positions.Supply) == 0 {
		return s.positionsDB.Delete(user[:])
	}
	return put(s.positionsDB, user[:], newPositionsRecord(positions))
}

func auctionKey(auctionType pool.AuctionType, user ids.ShortID) []byte {
	key := make([]byte, 1+len(user))
	key[0] = byte(auctionType)
	copy(key[1:], user[:])
	return key
}

func (s *State) HasAuction(auctionType pool.AuctionType, user ids.ShortID) (bool, error) {
	return s.auctionDB.Has(auctionKey(auctionType, user))
}

func (s *State) GetAuction(auctionType pool.AuctionType, user ids.ShortID) (*pool.AuctionData, error) {
	record := &auctionRecord{}
	if err := get(s.auctionDB, auctionKey(auctionType, user), record); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s of %s", pool.ErrAuctionNotFound, auctionType, user)
		}
		return nil, err
	}
	return &pool.AuctionData{
		Bid:   decodeAssets(record.Bid),
		Lot:   decodeAssets(record.Lot),
		Block: record.Block,
	}, nil
}

func (s *State) SetAuction(auctionType pool.AuctionType, user ids.ShortID, auction *pool.AuctionData) error {
	return put(s.auctionDB, auctionKey(auctionType, user), &auctionRecord{
		Bid:   encodeAssets(auction.Bid),
		Lot:   encodeAssets(auction.Lot),
		Block: auction.Block,
	})
}

func (s *State) DeleteAuction(auctionType pool.AuctionType, user ids.ShortID) error {
	return s.auctionDB.Delete(auctionKey(auctionType, user))
}
