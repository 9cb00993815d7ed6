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

package params

// These are the multipliers for DOT denominations.
// Example: To get the planck value of an amount in 'microdot', use
//
//	new(big.Int).Mul(value, big.NewInt(params.MicroDOT))
const (
	Planck   = 1
	MicroDOT = 10_000
	DOT      = 10_000_000_000 // 1e10 planck = 1 DOT
)

// Token metadata used when rendering amounts.
const (
	TokenSymbol   = "DOT"
	TokenDecimals = 10
)
