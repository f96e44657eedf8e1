// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"math"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
)

const CodecVersion uint16 = 0

// Codec serializes every persisted record.
var Codec codec.Manager

func init() {
	c := linearcodec.NewDefault()
	Codec = codec.NewManager(math.MaxInt32)

	err := errors.Join(
		c.RegisterType(&metadataRecord{}),
		c.RegisterType(&poolConfigRecord{}),
		c.RegisterType(&reserveListRecord{}),
		c.RegisterType(&reserveConfigRecord{}),
		c.RegisterType(&reserveDataRecord{}),
		c.RegisterType(&queuedReserveRecord{}),
		c.RegisterType(&positionsRecord{}),
		c.RegisterType(&auctionRecord{}),
		c.RegisterType(&priceRecord{}),
		c.RegisterType(&backstopPoolRecord{}),
		c.RegisterType(&backstopUserRecord{}),
		c.RegisterType(&chainRecord{}),
		Codec.RegisterCodec(CodecVersion, c),
	)
	if err != nil {
		panic(err)
	}
}
