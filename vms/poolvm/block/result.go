// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import "github.com/luxfi/ids"

// FailedTx is a tx whose effects were discarded.
type FailedTx struct {
	// Index is the position of the tx in the block.
	Index int `json:"index"`
	// TxID is empty when the tx could not be parsed.
	TxID  ids.ID `json:"txID"`
	Error string `json:"error"`
}

// Result is the outcome of processing a block. A tx that fails leaves no
// trace in state; the block itself is still accepted.
type Result struct {
	BlockID  ids.ID     `json:"blockID"`
	Height   uint64     `json:"height"`
	Time     uint64     `json:"time"`
	Accepted []ids.ID   `json:"accepted"`
	Failed   []FailedTx `json:"failed"`
}
