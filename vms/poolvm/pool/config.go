// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
)

const (
	maxReserveDecimals = 18
	maxReserveUtil     = 9_500_000
	// maxReactivity is 0.0001 with 9 decimals.
	maxReactivity = 100_000
)

// InitializePool stores the initial pool config. The pool starts on ice
// until the backstop is funded and the admin or UpdateStatus activates it.
func InitializePool(env *Env, config *PoolConfig) error {
	if _, err := env.Storage.GetPoolConfig(); err == nil {
		return ErrAlreadyInitialized
	} else if !errors.Is(err, ErrNotInitialized) {
		return err
	}
	if err := verifyPoolParams(config.BackstopTakeRate, config.MaxPositions); err != nil {
		return err
	}
	if config.Backstop == ids.ShortEmpty {
		return fmt.Errorf("%w: missing backstop", ErrInvalidPoolInitArgs)
	}
	cpy := *config
	if !cpy.Status.Valid() {
		return fmt.Errorf("%w: status %d", ErrInvalidPoolInitArgs, uint32(cpy.Status))
	}
	if cpy.MinBackstopTokens == nil {
		cpy.MinBackstopTokens = new(uint256.Int)
	}
	return env.Storage.SetPoolConfig(&cpy)
}

// UpdatePool changes the backstop take rate and the max positions limit.
func UpdatePool(env *Env, backstopTakeRate uint32, maxPositions uint32) error {
	if err := verifyPoolParams(backstopTakeRate, maxPositions); err != nil {
		return err
	}
	config, err := env.Storage.GetPoolConfig()
	if err != nil {
		return err
	}
	config.BackstopTakeRate = backstopTakeRate
	config.MaxPositions = maxPositions
	return env.Storage.SetPoolConfig(config)
}

// SetAdmin transfers the admin role.
func SetAdmin(env *Env, admin ids.ShortID) error {
	config, err := env.Storage.GetPoolConfig()
	if err != nil {
		return err
	}
	config.Admin = admin
	return env.Storage.SetPoolConfig(config)
}

// RequireAdmin returns ErrUnauthorized unless caller is the pool admin.
func RequireAdmin(env *Env, caller ids.ShortID) error {
	config, err := env.Storage.GetPoolConfig()
	if err != nil {
		return err
	}
	if config.Admin != caller {
		return fmt.Errorf("%w: %s is not the pool admin", ErrUnauthorized, caller)
	}
	return nil
}

func verifyPoolParams(backstopTakeRate uint32, maxPositions uint32) error {
	if backstopTakeRate >= Scalar7Int {
		return fmt.Errorf("%w: backstop take rate %d", ErrInvalidPoolInitArgs, backstopTakeRate)
	}
	if maxPositions < MinPositions {
		return fmt.Errorf("%w: max positions %d", ErrInvalidPoolInitArgs, maxPositions)
	}
	return nil
}

// ValidateReserveMetadata checks the bounds of a reserve configuration.
func ValidateReserveMetadata(config *ReserveConfig) error {
	switch {
	case config.Decimals > maxReserveDecimals:
		return fmt.Errorf("%w: decimals %d", ErrInvalidReserveMetadata, config.Decimals)
	case config.CFactor > Scalar7Int, config.LFactor > Scalar7Int:
		return fmt.Errorf("%w: factors above 1", ErrInvalidReserveMetadata)
	case config.LFactor == 0:
		return fmt.Errorf("%w: zero liability factor", ErrInvalidReserveMetadata)
	case config.Util == 0, config.Util > maxReserveUtil:
		return fmt.Errorf("%w: target utilization %d", ErrInvalidReserveMetadata, config.Util)
	case config.MaxUtil > Scalar7Int, config.MaxUtil <= config.Util:
		return fmt.Errorf("%w: max utilization %d", ErrInvalidReserveMetadata, config.MaxUtil)
	case config.ROne > config.RTwo, config.RTwo > config.RThree:
		return fmt.Errorf("%w: rate segments must be increasing", ErrInvalidReserveMetadata)
	case config.Reactivity > maxReactivity:
		return fmt.Errorf("%w: reactivity %d", ErrInvalidReserveMetadata, config.Reactivity)
	}
	return nil
}

// QueueSetReserve schedules a reserve configuration change. It unlocks
// after timelock seconds.
func QueueSetReserve(env *Env, asset ids.ShortID, config *ReserveConfig, timelock uint64) error {
	queued, err := env.Storage.HasQueuedReserve(asset)
	if err != nil {
		return err
	}
	if queued {
		return fmt.Errorf("%w: %s already queued", ErrBadRequest, asset)
	}
	if err := ValidateReserveMetadata(config); err != nil {
		return err
	}
	return env.Storage.SetQueuedReserve(asset, &QueuedReserveInit{
		Config:     *config,
		UnlockTime: env.Ledger.Timestamp + timelock,
	})
}

// CancelSetReserve drops a queued reserve configuration change.
func CancelSetReserve(env *Env, asset ids.ShortID) error {
	queued, err := env.Storage.HasQueuedReserve(asset)
	if err != nil {
		return err
	}
	if !queued {
		return ErrQueuedReserveNotFound
	}
	return env.Storage.DeleteQueuedReserve(asset)
}

// SetReserve applies an unlocked queued change and returns the reserve
// index.
func SetReserve(env *Env, asset ids.ShortID) (uint32, error) {
	queued, err := env.Storage.GetQueuedReserve(asset)
	if err != nil {
		return 0, err
	}
	if queued.UnlockTime > env.Ledger.Timestamp {
		return 0, fmt.Errorf("%w: unlocks at %d", ErrInitNotUnlocked, queued.UnlockTime)
	}
	if err := env.Storage.DeleteQueuedReserve(asset); err != nil {
		return 0, err
	}
	return InitializeReserve(env, asset, &queued.Config)
}

// InitializeReserve creates the reserve of asset or updates its config. An
// existing reserve keeps its index and decimals, is accrued first, and has
// its rate modifier reset when a rate parameter changes.
func InitializeReserve(env *Env, asset ids.ShortID, config *ReserveConfig) (uint32, error) {
	if err := ValidateReserveMetadata(config); err != nil {
		return 0, err
	}
	exists, err := env.Storage.HasReserve(asset)
	if err != nil {
		return 0, err
	}

	var index uint32
	if exists {
		pool, err := Load(env)
		if err != nil {
			return 0, err
		}
		reserve, err := pool.LoadReserve(env, asset, false)
		if err != nil {
			return 0, err
		}
		index = reserve.Index
		if reserve.Decimals != config.Decimals {
			return 0, fmt.Errorf("%w: decimals cannot change", ErrInvalidReserveMetadata)
		}
		if reserve.ROne != config.ROne ||
			reserve.RTwo != config.RTwo ||
			reserve.RThree != config.RThree ||
			reserve.Util != config.Util {
			reserve.IRMod = uint256.NewInt(Scalar9Int)
		}
		if err := reserve.Store(env); err != nil {
			return 0, err
		}
	} else {
		index, err = env.Storage.PushReserveList(asset)
		if err != nil {
			return 0, err
		}
		if err := env.Storage.SetReserveData(asset, NewReserveData(env.Ledger.Timestamp)); err != nil {
			return 0, err
		}
	}

	cpy := *config
	cpy.Index = index
	if err := env.Storage.SetReserveConfig(asset, &cpy); err != nil {
		return 0, err
	}
	env.Log.Info("reserve set",
		log.Stringer("asset", asset),
		log.Uint32("index", index),
	)
	return index, nil
}
