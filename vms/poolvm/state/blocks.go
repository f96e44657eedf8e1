// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"encoding/binary"
	"errors"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
)

var (
	lastAcceptedKey = []byte("lastAccepted")

	ErrBlockNotFound = errors.New("block not found")
)

// Chain is the position of the last accepted block.
type Chain struct {
	BlockID   ids.ID `json:"blockID"`
	Height    uint64 `json:"height"`
	Timestamp uint64 `json:"timestamp"`
}

type chainRecord struct {
	BlockID   ids.ID `serialize:"true"`
	Height    uint64 `serialize:"true"`
	Timestamp uint64 `serialize:"true"`
}

// LastAccepted returns the chain tip, or ErrBlockNotFound before genesis is
// accepted.
func (s *State) LastAccepted() (*Chain, error) {
	record := &chainRecord{}
	if err := get(s.singletonDB, lastAcceptedKey, record); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, err
	}
	return &Chain{
		BlockID:   record.BlockID,
		Height:    record.Height,
		Timestamp: record.Timestamp,
	}, nil
}

// AcceptBlock stores the encoded block and makes it the chain tip.
func (s *State) AcceptBlock(tip *Chain, blockBytes []byte) error {
	if err := s.blockDB.Put(tip.BlockID[:], blockBytes); err != nil {
		return err
	}
	if err := s.heightDB.Put(heightKey(tip.Height), tip.BlockID[:]); err != nil {
		return err
	}
	return put(s.singletonDB, lastAcceptedKey, &chainRecord{
		BlockID:   tip.BlockID,
		Height:    tip.Height,
		Timestamp: tip.Timestamp,
	})
}

// GetBlock returns the encoded block with blkID.
func (s *State) GetBlock(blkID ids.ID) ([]byte, error) {
	bytes, err := s.blockDB.Get(blkID[:])
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrBlockNotFound
	}
	return bytes, err
}

// GetBlockIDAtHeight returns the ID of the accepted block at height.
func (s *State) GetBlockIDAtHeight(height uint64) (ids.ID, error) {
	bytes, err := s.heightDB.Get(heightKey(height))
	if errors.Is(err, database.ErrNotFound) {
		return ids.Empty, ErrBlockNotFound
	}
	if err != nil {
		return ids.Empty, err
	}
	return ids.ToID(bytes)
}

func heightKey(height uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, height)
}
