// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package accrual

import (
	"github.com/holiman/uint256"
	"github.com/spf13/pflag"

	"github.com/luxfi/lending/vms/poolvm/pool"
)

const (
	UtilKey       = "util"
	IRModKey      = "ir-mod"
	ElapsedKey    = "elapsed"
	TargetKey     = "target-util"
	MaxUtilKey    = "max-util"
	ROneKey       = "r-one"
	RTwoKey       = "r-two"
	RThreeKey     = "r-three"
	ReactivityKey = "reactivity"
)

func AddFlags(flags *pflag.FlagSet) {
	flags.Uint64(UtilKey, 5_000_000, "Current utilization (7 decimals)")
	flags.Uint64(IRModKey, pool.Scalar9Int, "Current interest rate modifier (9 decimals)")
	flags.Uint64(ElapsedKey, pool.SecondsPerWeek, "Seconds since the last accrual")
	flags.Uint32(TargetKey, 7_500_000, "Target utilization of the reserve (7 decimals)")
	flags.Uint32(MaxUtilKey, 9_500_000, "Maximum utilization of the reserve (7 decimals)")
	flags.Uint32(ROneKey, 500_000, "Rate slope below the target utilization (7 decimals)")
	flags.Uint32(RTwoKey, 5_000_000, "Rate slope up to 95% utilization (7 decimals)")
	flags.Uint32(RThreeKey, 15_000_000, "Rate slope above 95% utilization (7 decimals)")
	flags.Uint32(ReactivityKey, 2_000, "Reactivity of the rate modifier (7 decimals)")
}

type Config struct {
	Reserve pool.ReserveConfig
	Util    *uint256.Int
	IRMod   *uint256.Int
	Elapsed uint64
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	util, err := flags.GetUint64(UtilKey)
	if err != nil {
		return nil, err
	}
	irMod, err := flags.GetUint64(IRModKey)
	if err != nil {
		return nil, err
	}
	elapsed, err := flags.GetUint64(ElapsedKey)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Util:    uint256.NewInt(util),
		IRMod:   uint256.NewInt(irMod),
		Elapsed: elapsed,
		Reserve: pool.ReserveConfig{
			Decimals: 7,
			LFactor:  pool.Scalar7Int,
		},
	}
	for key, field := range map[string]*uint32{
		TargetKey:     &config.Reserve.Util,
		MaxUtilKey:    &config.Reserve.MaxUtil,
		ROneKey:       &config.Reserve.ROne,
		RTwoKey:       &config.Reserve.RTwo,
		RThreeKey:     &config.Reserve.RThree,
		ReactivityKey: &config.Reserve.Reactivity,
	} {
		if *field, err = flags.GetUint32(key); err != nil {
			return nil, err
		}
	}
	return config, pool.ValidateReserveMetadata(&config.Reserve)
}
