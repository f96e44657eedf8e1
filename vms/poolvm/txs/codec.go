// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"
	"math"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
)

const CodecVersion uint16 = 0

// Codec serializes transactions. Type IDs follow the registration order, so
// new tx types must be appended.
var Codec codec.Manager

func init() {
	c := linearcodec.NewDefault()
	Codec = codec.NewManager(math.MaxInt32)

	err := errors.Join(
		c.RegisterType(&SubmitTx{}),
		c.RegisterType(&NewLiquidationAuctionTx{}),
		c.RegisterType(&NewAuctionTx{}),
		c.RegisterType(&BadDebtTx{}),
		c.RegisterType(&UpdateStatusTx{}),
		c.RegisterType(&SetStatusTx{}),
		c.RegisterType(&UpdatePoolTx{}),
		c.RegisterType(&SetAdminTx{}),
		c.RegisterType(&QueueSetReserveTx{}),
		c.RegisterType(&CancelSetReserveTx{}),
		c.RegisterType(&SetReserveTx{}),
		c.RegisterType(&SetPriceTx{}),
		c.RegisterType(&MintTx{}),
		c.RegisterType(&BackstopDepositTx{}),
		c.RegisterType(&BackstopQueueTx{}),
		Codec.RegisterCodec(CodecVersion, c),
	)
	if err != nil {
		panic(err)
	}
}
