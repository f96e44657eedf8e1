// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines configuration types for the pool VM.
package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/lending/vms/poolvm/auctions"
	"github.com/luxfi/lending/vms/poolvm/pool"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

// Config contains configuration parameters for the pool VM.
type Config struct {
	// ReserveTimelock is the number of seconds a queued reserve change waits
	// before it can be applied.
	ReserveTimelock uint64 `json:"reserveTimelock"`

	// MinInterestValue is the value, in whole units of the oracle base
	// asset, an interest auction must exceed.
	MinInterestValue uint64 `json:"minInterestValue"`
	// BurnThreshold is the backstop deposit below which remaining bad debt
	// is written off after a bad debt auction.
	BurnThreshold *uint256.Int `json:"burnThreshold"`

	// MaxTxsPerBlock bounds the txs processed in one block.
	MaxTxsPerBlock uint32 `json:"maxTxsPerBlock"`
	// MaxBlockSize bounds the encoded txs of one block.
	MaxBlockSize uint64 `json:"maxBlockSize"`
}

// DefaultConfig returns the default configuration for the pool VM.
func DefaultConfig() Config {
	return Config{
		ReserveTimelock:  pool.SecondsPerWeek,
		MinInterestValue: auctions.DefaultMinInterestValue,
		BurnThreshold:    uint256.NewInt(auctions.DefaultBurnThreshold),
		MaxTxsPerBlock:   1_000,
		MaxBlockSize:     2 * 1024 * 1024, // 2MB
	}
}

// Parse overlays configBytes on the default configuration. Empty bytes
// yield the defaults.
func Parse(configBytes []byte) (Config, error) {
	return Overlay(DefaultConfig(), configBytes)
}

// Overlay decodes configBytes on top of a copy of base and verifies the
// result.
func Overlay(base Config, configBytes []byte) (Config, error) {
	config := base
	if base.BurnThreshold != nil {
		config.BurnThreshold = new(uint256.Int).Set(base.BurnThreshold)
	}
	if len(configBytes) > 0 {
		if err := json.Unmarshal(configBytes, &config); err != nil {
			return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}
	return config, config.Verify()
}

func (c *Config) Verify() error {
	switch {
	case c.BurnThreshold == nil:
		return fmt.Errorf("%w: missing burn threshold", ErrInvalidConfig)
	case c.MaxTxsPerBlock == 0:
		return fmt.Errorf("%w: max txs per block must be positive", ErrInvalidConfig)
	case c.MaxBlockSize == 0:
		return fmt.Errorf("%w: max block size must be positive", ErrInvalidConfig)
	default:
		return nil
	}
}

// AuctionParams returns the auction settings of the configuration.
func (c *Config) AuctionParams() auctions.Params {
	return auctions.Params{
		MinInterestValue: c.MinInterestValue,
		BurnThreshold:    c.BurnThreshold,
	}
}
