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

// Package types contains the data types of the agent registry.
package types

import (
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// Agent is a registered, rentable service record.
type Agent struct {
	ID           uint32         // Position in registration order
	Owner        common.Address // Registering account, immutable
	Name         string
	Description  string
	PricePerDay  *uint256.Int // Rental price per day, fixed at creation
	Active       bool         // Cleared by deactivation, never set again
	TotalRentals uint64       // Number of completed rentals
}

// storageAgent is the RLP layout of an agent record. The id is the
// database key and is not repeated in the value.
type storageAgent struct {
	Owner        common.Address
	Name         string
	Description  string
	PricePerDay  *big.Int
	Active       bool
	TotalRentals uint64
}

// EncodeRLP implements rlp.Encoder.
func (a *Agent) EncodeRLP(w io.Writer) error {
	price := new(big.Int)
	if a.PricePerDay != nil {
		price = a.PricePerDay.ToBig()
	}
	return rlp.Encode(w, &storageAgent{
		Owner:        a.Owner,
		Name:         a.Name,
		Description:  a.Description,
		PricePerDay:  price,
		Active:       a.Active,
		TotalRentals: a.TotalRentals,
	})
}

// DecodeRLP implements rlp.Decoder.
func (a *Agent) DecodeRLP(s *rlp.Stream) error {
	var dec storageAgent
	if err := s.Decode(&dec); err != nil {
		return err
	}
	a.Owner, a.Name, a.Description = dec.Owner, dec.Name, dec.Description
	a.PricePerDay = BalanceFromBig(dec.PricePerDay)
	a.Active, a.TotalRentals = dec.Active, dec.TotalRentals
	return nil
}

// Copy returns a deep copy of the agent.
func (a *Agent) Copy() *Agent {
	cpy := *a
	cpy.PricePerDay = ClampBalance(a.PricePerDay)
	return &cpy
}

// String implements fmt.Stringer.
func (a *Agent) String() string {
	return fmt.Sprintf("Agent(%d){owner=%s name=%q price=%s active=%t rentals=%d}",
		a.ID, a.Owner.Hex(), a.Name, ClampBalance(a.PricePerDay).ToBig(), a.Active, a.TotalRentals)
}
