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
	"testing"

	"github.com/holiman/uint256"
)

func TestMaxBalance(t *testing.T) {
	want := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	if MaxBalance.ToBig().Cmp(want) != 0 {
		t.Fatalf("max balance mismatch: have %v, want %v", MaxBalance.ToBig(), want)
	}
}

func TestSaturatingArithmetic(t *testing.T) {
	tests := []struct {
		name string
		have *uint256.Int
		want *uint256.Int
	}{
		{"add", SaturatingAdd(NewBalance(2), NewBalance(3)), NewBalance(5)},
		{"add clamps", SaturatingAdd(MaxBalance, NewBalance(1)), MaxBalance},
		{"sub", SaturatingSub(NewBalance(10), NewBalance(4)), NewBalance(6)},
		{"sub floors at zero", SaturatingSub(NewBalance(4), NewBalance(10)), NewBalance(0)},
		{"mul", SaturatingMul(NewBalance(1000), NewBalance(10)), NewBalance(10000)},
		{"mul clamps", SaturatingMul(MaxBalance, NewBalance(2)), MaxBalance},
		{"mul max by max", SaturatingMul(MaxBalance, MaxBalance), MaxBalance},
		{"mul uint64", SaturatingMulUint64(NewBalance(7), 3), NewBalance(21)},
		{"nil operand", SaturatingAdd(nil, NewBalance(1)), NewBalance(1)},
	}
	for _, tt := range tests {
		if !tt.have.Eq(tt.want) {
			t.Errorf("%s: have %v, want %v", tt.name, tt.have.ToBig(), tt.want.ToBig())
		}
	}
}

func TestSaturatingDoesNotAlias(t *testing.T) {
	x := NewBalance(5)
	y := NewBalance(6)
	sum := SaturatingAdd(x, y)
	sum.SetUint64(0)
	if x.Uint64() != 5 || y.Uint64() != 6 {
		t.Fatalf("operands modified: x=%d y=%d", x.Uint64(), y.Uint64())
	}
}

func TestBalanceFromBig(t *testing.T) {
	if v := BalanceFromBig(nil); !v.IsZero() {
		t.Errorf("nil: have %v, want 0", v)
	}
	if v := BalanceFromBig(big.NewInt(-5)); !v.IsZero() {
		t.Errorf("negative: have %v, want 0", v)
	}
	if v := BalanceFromBig(big.NewInt(42)); v.Uint64() != 42 {
		t.Errorf("small: have %v, want 42", v)
	}
	huge := new(big.Int).Lsh(big.NewInt(1), 300)
	if v := BalanceFromBig(huge); !v.Eq(MaxBalance) {
		t.Errorf("above 256 bits: have %v, want max", v.ToBig())
	}
	above := new(big.Int).Lsh(big.NewInt(1), 200)
	if v := BalanceFromBig(above); !v.Eq(MaxBalance) {
		t.Errorf("above 128 bits: have %v, want max", v.ToBig())
	}
}
