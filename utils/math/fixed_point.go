// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package math provides checked integer and fixed point arithmetic.
//
// Every fixed point helper returns a newly allocated value and never mutates
// its arguments, so *uint256.Int values can be shared freely.
package math

import (
	"errors"

	"github.com/holiman/uint256"
)

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

var (
	ErrOverflow     = errors.New("overflow")
	ErrUnderflow    = errors.New("underflow")
	ErrDivideByZero = errors.New("divide by zero")
)

// Add returns a + b or ErrOverflow.
func Add[T Unsigned](a, b T) (T, error) {
	if a > ^T(0)-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Sub returns a - b or ErrUnderflow.
func Sub[T Unsigned](a, b T) (T, error) {
	if a < b {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// Pow10 returns 10^exp or ErrOverflow.
func Pow10(exp uint32) (*uint256.Int, error) {
	if exp > 77 {
		return nil, ErrOverflow
	}
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(exp))), nil
}

// Sum returns x + y or ErrOverflow.
func Sum(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Diff returns x - y or ErrUnderflow.
func Diff(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, ErrUnderflow
	}
	return z, nil
}

// MulDivFloor returns floor(x * y / denominator). The product is computed
// with 512 bits of precision.
func MulDivFloor(x, y, denominator *uint256.Int) (*uint256.Int, error) {
	if denominator.IsZero() {
		return nil, ErrDivideByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, denominator)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// MulDivCeil returns ceil(x * y / denominator).
func MulDivCeil(x, y, denominator *uint256.Int) (*uint256.Int, error) {
	z, err := MulDivFloor(x, y, denominator)
	if err != nil {
		return nil, err
	}
	if new(uint256.Int).MulMod(x, y, denominator).IsZero() {
		return z, nil
	}
	return Sum(z, uint256.NewInt(1))
}

// MulFloor multiplies two fixed point numbers: floor(x * y / scalar).
func MulFloor(x, y, scalar *uint256.Int) (*uint256.Int, error) {
	return MulDivFloor(x, y, scalar)
}

// MulCeil multiplies two fixed point numbers: ceil(x * y / scalar).
func MulCeil(x, y, scalar *uint256.Int) (*uint256.Int, error) {
	return MulDivCeil(x, y, scalar)
}

// DivFloor divides two fixed point numbers: floor(x * scalar / y).
func DivFloor(x, y, scalar *uint256.Int) (*uint256.Int, error) {
	return MulDivFloor(x, scalar, y)
}

// DivCeil divides two fixed point numbers: ceil(x * scalar / y).
func DivCeil(x, y, scalar *uint256.Int) (*uint256.Int, error) {
	return MulDivCeil(x, scalar, y)
}

// Min returns the smaller of x and y.
func Min(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return x
	}
	return y
}
