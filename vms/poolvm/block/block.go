// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package block defines the blocks of a pool chain.
package block

import (
	"fmt"
	"math"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"

	"github.com/luxfi/lending/vms/poolvm/txs"
)

const CodecVersion uint16 = 0

var Codec codec.Manager

func init() {
	c := linearcodec.NewDefault()
	Codec = codec.NewManager(math.MaxInt32)
	if err := Codec.RegisterCodec(CodecVersion, c); err != nil {
		panic(err)
	}
}

// Block is an ordered batch of encoded txs. Every tx executes at the block's
// height and timestamp.
type Block struct {
	ParentID ids.ID `serialize:"true" json:"parentID"`
	Height   uint64 `serialize:"true" json:"height"`
	// Time is the block timestamp in unix seconds.
	Time uint64   `serialize:"true" json:"time"`
	Txs  [][]byte `serialize:"true" json:"txs"`

	id    ids.ID
	bytes []byte
}

// New builds a block holding the encoded form of transactions.
func New(parentID ids.ID, height uint64, time uint64, transactions []*txs.Tx) (*Block, error) {
	blk := &Block{
		ParentID: parentID,
		Height:   height,
		Time:     time,
		Txs:      make([][]byte, len(transactions)),
	}
	for i, tx := range transactions {
		blk.Txs[i] = tx.Bytes()
	}
	bytes, err := Codec.Marshal(CodecVersion, blk)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal block: %w", err)
	}
	blk.setBytes(bytes)
	return blk, nil
}

// Parse decodes a block.
func Parse(bytes []byte) (*Block, error) {
	blk := &Block{}
	if _, err := Codec.Unmarshal(bytes, blk); err != nil {
		return nil, fmt.Errorf("failed to parse block: %w", err)
	}
	blk.setBytes(bytes)
	return blk, nil
}

func (b *Block) setBytes(bytes []byte) {
	b.bytes = bytes
	b.id = hash.ComputeHash256Array(bytes)
}

func (b *Block) ID() ids.ID {
	return b.id
}

func (b *Block) Bytes() []byte {
	return b.bytes
}
