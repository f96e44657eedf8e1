// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/lending/vms/poolvm/pool"
)

var (
	_ UnsignedTx = (*UpdateStatusTx)(nil)
	_ UnsignedTx = (*SetStatusTx)(nil)
	_ UnsignedTx = (*UpdatePoolTx)(nil)
	_ UnsignedTx = (*SetAdminTx)(nil)
	_ UnsignedTx = (*QueueSetReserveTx)(nil)
	_ UnsignedTx = (*CancelSetReserveTx)(nil)
	_ UnsignedTx = (*SetReserveTx)(nil)
)

// UpdateStatusTx recomputes the pool status from the backstop. Anyone may
// issue it.
type UpdateStatusTx struct {
	BaseTx `serialize:"true"`
}

func (*UpdateStatusTx) SyntacticVerify() error {
	return nil
}

func (tx *UpdateStatusTx) Visit(visitor Visitor) error {
	return visitor.UpdateStatusTx(tx)
}

// SetStatusTx is the admin override of the pool status.
type SetStatusTx struct {
	BaseTx `serialize:"true"`
	Status uint32 `serialize:"true" json:"status"`
}

func (tx *SetStatusTx) SyntacticVerify() error {
	if !pool.Status(tx.Status).Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStatus, tx.Status)
	}
	return nil
}

func (tx *SetStatusTx) Visit(visitor Visitor) error {
	return visitor.SetStatusTx(tx)
}

type UpdatePoolTx struct {
	BaseTx           `serialize:"true"`
	BackstopTakeRate uint32 `serialize:"true" json:"backstopTakeRate"`
	MaxPositions     uint32 `serialize:"true" json:"maxPositions"`
}

// SyntacticVerify leaves the parameter bounds to the pool.
func (*UpdatePoolTx) SyntacticVerify() error {
	return nil
}

func (tx *UpdatePoolTx) Visit(visitor Visitor) error {
	return visitor.UpdatePoolTx(tx)
}

type SetAdminTx struct {
	BaseTx `serialize:"true"`
	Admin  ids.ShortID `serialize:"true" json:"admin"`
}

func (tx *SetAdminTx) SyntacticVerify() error {
	if tx.Admin == ids.ShortEmpty {
		return fmt.Errorf("%w: admin", ErrEmptyAddress)
	}
	return nil
}

func (tx *SetAdminTx) Visit(visitor Visitor) error {
	return visitor.SetAdminTx(tx)
}

// QueueSetReserveTx proposes a new or changed reserve. It takes effect after
// the reserve timelock through a SetReserveTx.
type QueueSetReserveTx struct {
	BaseTx `serialize:"true"`
	Asset  ids.ShortID        `serialize:"true" json:"asset"`
	Config pool.ReserveConfig `serialize:"true" json:"config"`
}

func (tx *QueueSetReserveTx) SyntacticVerify() error {
	if tx.Asset == ids.ShortEmpty {
		return fmt.Errorf("%w: asset", ErrEmptyAddress)
	}
	return pool.ValidateReserveMetadata(&tx.Config)
}

func (tx *QueueSetReserveTx) Visit(visitor Visitor) error {
	return visitor.QueueSetReserveTx(tx)
}

type CancelSetReserveTx struct {
	BaseTx `serialize:"true"`
	Asset  ids.ShortID `serialize:"true" json:"asset"`
}

func (tx *CancelSetReserveTx) SyntacticVerify() error {
	if tx.Asset == ids.ShortEmpty {
		return fmt.Errorf("%w: asset", ErrEmptyAddress)
	}
	return nil
}

func (tx *CancelSetReserveTx) Visit(visitor Visitor) error {
	return visitor.CancelSetReserveTx(tx)
}

// SetReserveTx applies an unlocked reserve proposal. Anyone may issue it.
type SetReserveTx struct {
	BaseTx `serialize:"true"`
	Asset  ids.ShortID `serialize:"true" json:"asset"`
}

func (tx *SetReserveTx) SyntacticVerify() error {
	if tx.Asset == ids.ShortEmpty {
		return fmt.Errorf("%w: asset", ErrEmptyAddress)
	}
	return nil
}

func (tx *SetReserveTx) Visit(visitor Visitor) error {
	return visitor.SetReserveTx(tx)
}
