// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package poolvm implements an isolated lending pool as a VM.
//
// The pool VM provides:
//   - Reserves with utilization based interest and a reactive rate modifier
//   - Collateralized borrowing guarded by a health factor
//   - Dutch auctions for liquidations, bad debt and backstop interest
//   - A backstop deposit that insures the pool and drives its status
package poolvm

import (
	"github.com/luxfi/log"

	"github.com/luxfi/lending/vms/poolvm/config"
)

// VMID is the unique identifier for the pool VM
var VMID = [32]byte{'p', 'o', 'o', 'l', 'v', 'm'}

// Factory creates new pool VM instances.
type Factory struct {
	config.Config
}

// New returns an uninitialized VM carrying the factory's configuration.
// Config bytes passed to Initialize are applied on top of it.
func (f *Factory) New(log.Logger) (interface{}, error) {
	return &VM{Config: f.Config}, nil
}
