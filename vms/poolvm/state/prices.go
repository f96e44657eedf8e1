// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/lending/vms/poolvm/pool"
)

var _ pool.Oracle = (*State)(nil)

func (s *State) Decimals() (uint32, error) {
	metadata, err := s.Metadata()
	if err != nil {
		return 0, err
	}
	return metadata.OracleDecimals, nil
}

func (s *State) LastPrice(asset ids.ShortID) (*pool.PriceData, error) {
	record := &priceRecord{}
	if err := get(s.priceDB, asset[:], record); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", pool.ErrPriceNotFound, asset)
		}
		return nil, err
	}
	return &pool.PriceData{
		Price:     decodeAmount(record.Price),
		Timestamp: record.Timestamp,
	}, nil
}

// SetPrice records a price quote. Quotes older than the stored one are
// rejected.
func (s *State) SetPrice(asset ids.ShortID, price *pool.PriceData) error {
	last, err := s.LastPrice(asset)
	switch {
	case err == nil:
		if price.Timestamp < last.Timestamp {
			return fmt.Errorf("%w: price of %s at %d predates %d",
				pool.ErrBadRequest, asset, price.Timestamp, last.Timestamp)
		}
	case !errors.Is(err, pool.ErrPriceNotFound):
		return err
	}
	return put(s.priceDB, asset[:], &priceRecord{
		Price:     encodeAmount(price.Price),
		Timestamp: price.Timestamp,
	})
}
