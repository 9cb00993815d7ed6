// Copyright 2026 The polka-agent Authors
// This file is part of the polka-agent library.
//
// The polka-agent library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The polka-agent library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the polka-agent library. If not, see <http://www.gnu.org/licenses/>.

package types

import (
	"math/big"

	"github.com/holiman/uint256"
)

// MaxBalance is the largest representable amount, 2^128-1. All balance
// arithmetic clamps at this value instead of wrapping.
var MaxBalance = new(uint256.Int).Sub(new(uint256.Int).Lsh(new(uint256.Int).SetUint64(1), 128), new(uint256.Int).SetUint64(1))

// NewBalance returns the amount v.
func NewBalance(v uint64) *uint256.Int {
	return new(uint256.Int).SetUint64(v)
}

// BalanceFromBig converts b into an amount. Nil and negative values map to
// zero, values above MaxBalance are clamped.
func BalanceFromBig(b *big.Int) *uint256.Int {
	if b == nil || b.Sign() <= 0 {
		return new(uint256.Int)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return new(uint256.Int).Set(MaxBalance)
	}
	return clamp(v)
}

// ClampBalance returns a copy of v limited to MaxBalance. A nil v is zero.
func ClampBalance(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return clamp(v.Clone())
}

// SaturatingAdd returns min(x+y, MaxBalance).
func SaturatingAdd(x, y *uint256.Int) *uint256.Int {
	// Both operands are below 2^128 so the 256 bit sum cannot wrap.
	return clamp(new(uint256.Int).Add(ClampBalance(x), ClampBalance(y)))
}

// SaturatingSub returns max(x-y, 0).
func SaturatingSub(x, y *uint256.Int) *uint256.Int {
	x, y = ClampBalance(x), ClampBalance(y)
	if x.Lt(y) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(x, y)
}

// SaturatingMul returns min(x*y, MaxBalance).
func SaturatingMul(x, y *uint256.Int) *uint256.Int {
	// The product of two 128 bit operands fits into 256 bits.
	return clamp(new(uint256.Int).Mul(ClampBalance(x), ClampBalance(y)))
}

// SaturatingMulUint64 returns min(x*n, MaxBalance).
func SaturatingMulUint64(x *uint256.Int, n uint64) *uint256.Int {
	return SaturatingMul(x, new(uint256.Int).SetUint64(n))
}

func clamp(v *uint256.Int) *uint256.Int {
	if v.Gt(MaxBalance) {
		return v.Set(MaxBalance)
	}
	return v
}
