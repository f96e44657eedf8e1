// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/lending/vms/poolvm/pool"
)

// Amounts are stored as minimal big-endian byte strings.

func encodeAmount(v *uint256.Int) []byte {
	if v == nil {
		return nil
	}
	return v.Bytes()
}

func decodeAmount(b []byte) *uint256.Int {
	return new(uint256.Int).SetBytes(b)
}

// Metadata describes the collaborators the state hosts next to the pool.
type Metadata struct {
	// PoolAddress holds the pool's underlying tokens.
	PoolAddress ids.ShortID `json:"poolAddress"`
	// OracleDecimals is the precision of every stored price.
	OracleDecimals uint32 `json:"oracleDecimals"`
	// BackstopAddress holds the backstop's deposited tokens.
	BackstopAddress ids.ShortID `json:"backstopAddress"`
	BackstopToken   ids.ShortID `json:"backstopToken"`
}

type metadataRecord struct {
	PoolAddress     ids.ShortID `serialize:"true"`
	OracleDecimals  uint32      `serialize:"true"`
	BackstopAddress ids.ShortID `serialize:"true"`
	BackstopToken   ids.ShortID `serialize:"true"`
}

type poolConfigRecord struct {
	Admin             ids.ShortID `serialize:"true"`
	Oracle            ids.ShortID `serialize:"true"`
	Backstop          ids.ShortID `serialize:"true"`
	BackstopTakeRate  uint32      `serialize:"true"`
	Status            uint32      `serialize:"true"`
	MaxPositions      uint32      `serialize:"true"`
	MinBackstopTokens []byte      `serialize:"true"`
}

func newPoolConfigRecord(c *pool.PoolConfig) *poolConfigRecord {
	return &poolConfigRecord{
		Admin:             c.Admin,
		Oracle:            c.Oracle,
		Backstop:          c.Backstop,
		BackstopTakeRate:  c.BackstopTakeRate,
		Status:            uint32(c.Status),
		MaxPositions:      c.MaxPositions,
		MinBackstopTokens: encodeAmount(c.MinBackstopTokens),
	}
}

func (r *poolConfigRecord) config() *pool.PoolConfig {
	return &pool.PoolConfig{
		Admin:             r.Admin,
		Oracle:            r.Oracle,
		Backstop:          r.Backstop,
		BackstopTakeRate:  r.BackstopTakeRate,
		Status:            pool.Status(r.Status),
		MaxPositions:      r.MaxPositions,
		MinBackstopTokens: decodeAmount(r.MinBackstopTokens),
	}
}

type reserveListRecord struct {
	Assets []ids.ShortID `serialize:"true"`
}

type reserveConfigRecord struct {
	Index      uint32 `serialize:"true"`
	Decimals   uint32 `serialize:"true"`
	CFactor    uint32 `serialize:"true"`
	LFactor    uint32 `serialize:"true"`
	Util       uint32 `serialize:"true"`
	MaxUtil    uint32 `serialize:"true"`
	ROne       uint32 `serialize:"true"`
	RTwo       uint32 `serialize:"true"`
	RThree     uint32 `serialize:"true"`
	Reactivity uint32 `serialize:"true"`
}

func newReserveConfigRecord(c *pool.ReserveConfig) reserveConfigRecord {
	return reserveConfigRecord{
		Index:      c.Index,
		Decimals:   c.Decimals,
		CFactor:    c.CFactor,
		LFactor:    c.LFactor,
		Util:       c.Util,
		MaxUtil:    c.MaxUtil,
		ROne:       c.ROne,
		RTwo:       c.RTwo,
		RThree:     c.RThree,
		Reactivity: c.Reactivity,
	}
}

func (r *reserveConfigRecord) config() *pool.ReserveConfig {
	return &pool.ReserveConfig{
		Index:      r.Index,
		Decimals:   r.Decimals,
		CFactor:    r.CFactor,
		LFactor:    r.LFactor,
		Util:       r.Util,
		MaxUtil:    r.MaxUtil,
		ROne:       r.ROne,
		RTwo:       r.RTwo,
		RThree:     r.RThree,
		Reactivity: r.Reactivity,
	}
}

type reserveDataRecord struct {
	DRate          []byte `serialize:"true"`
	BRate          []byte `serialize:"true"`
	IRMod          []byte `serialize:"true"`
	BSupply        []byte `serialize:"true"`
	DSupply        []byte `serialize:"true"`
	BackstopCredit []byte `serialize:"true"`
	LastTime       uint64 `serialize:"true"`
}

func newReserveDataRecord(d *pool.ReserveData) *reserveDataRecord {
	return &reserveDataRecord{
		DRate:          encodeAmount(d.DRate),
		BRate:          encodeAmount(d.BRate),
		IRMod:          encodeAmount(d.IRMod),
		BSupply:        encodeAmount(d.BSupply),
		DSupply:        encodeAmount(d.DSupply),
		BackstopCredit: encodeAmount(d.BackstopCredit),
		LastTime:       d.LastTime,
	}
}

func (r *reserveDataRecord) data() *pool.ReserveData {
	return &pool.ReserveData{
		DRate:          decodeAmount(r.DRate),
		BRate:          decodeAmount(r.BRate),
		IRMod:          decodeAmount(r.IRMod),
		BSupply:        decodeAmount(r.BSupply),
		DSupply:        decodeAmount(r.DSupply),
		BackstopCredit: decodeAmount(r.BackstopCredit),
		LastTime:       r.LastTime,
	}
}

type queuedReserveRecord struct {
	Config     reserveConfigRecord `serialize:"true"`
	UnlockTime uint64              `serialize:"true"`
}

type indexedAmount struct {
	Index  uint32 `serialize:"true"`
	Amount []byte `serialize:"true"`
}

type positionsRecord struct {
	Liabilities []indexedAmount `serialize:"true"`
	Collateral  []indexedAmount `serialize:"true"`
	Supply      []indexedAmount `serialize:"true"`
}

func encodeIndexed(m map[uint32]*uint256.Int) []indexedAmount {
	entries := make([]indexedAmount, 0, len(m))
	for _, index := range pool.SortedIndices(m) {
		entries = append(entries, indexedAmount{
			Index:  index,
			Amount: encodeAmount(m[index]),
		})
	}
	return entries
}

func decodeIndexed(entries []indexedAmount) map[uint32]*uint256.Int {
	m := make(map[uint32]*uint256.Int, len(entries))
	for _, entry := range entries {
		m[entry.Index] = decodeAmount(entry.Amount)
	}
	return m
}

func newPositionsRecord(p *pool.Positions) *positionsRecord {
	return &positionsRecord{
		Liabilities: encodeIndexed(p.Liabilities),
		Collateral:  encodeIndexed(p.Collateral),
		Supply:      encodeIndexed(p.Supply),
	}
}

func (r *positionsRecord) positions() *pool.Positions {
	return &pool.Positions{
		Liabilities: decodeIndexed(r.Liabilities),
		Collateral:  decodeIndexed(r.Collateral),
		Supply:      decodeIndexed(r.Supply),
	}
}

type assetAmount struct {
	Asset  ids.ShortID `serialize:"true"`
	Amount []byte      `serialize:"true"`
}

type auctionRecord struct {
	Bid   []assetAmount `serialize:"true"`
	Lot   []assetAmount `serialize:"true"`
	Block uint32        `serialize:"true"`
}

func encodeAssets(m map[ids.ShortID]*uint256.Int) []assetAmount {
	entries := make([]assetAmount, 0, len(m))
	for _, asset := range pool.SortedAssets(m) {
		entries = append(entries, assetAmount{
			Asset:  asset,
			Amount: encodeAmount(m[asset]),
		})
	}
	return entries
}

func decodeAssets(entries []assetAmount) map[ids.ShortID]*uint256.Int {
	m := make(map[ids.ShortID]*uint256.Int, len(entries))
	for _, entry := range entries {
		m[entry.Asset] = decodeAmount(entry.Amount)
	}
	return m
}

type priceRecord struct {
	Price     []byte `serialize:"true"`
	Timestamp uint64 `serialize:"true"`
}

type backstopPoolRecord struct {
	Tokens []byte `serialize:"true"`
	Shares []byte `serialize:"true"`
	Q4W    []byte `serialize:"true"`
}

type backstopUserRecord struct {
	Shares []byte `serialize:"true"`
	Q4W    []byte `serialize:"true"`
}
