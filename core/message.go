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

// Package core implements the host that executes registry calls with
// all-or-nothing commit semantics.
package core

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// CallKind selects the registry operation a message invokes.
type CallKind uint8

const (
	CallRegister   CallKind = 1
	CallRent       CallKind = 2
	CallDeactivate CallKind = 3
)

// String implements fmt.Stringer.
func (k CallKind) String() string {
	switch k {
	case CallRegister:
		return "register"
	case CallRent:
		return "rent"
	case CallDeactivate:
		return "deactivate"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Payable reports whether the operation accepts an attached value.
func (k CallKind) Payable() bool {
	return k == CallRent
}

// Message is one externally invoked registry call.
type Message struct {
	Kind  CallKind
	From  common.Address
	Value *uint256.Int // attached value, nil for none

	// CallRent, CallDeactivate
	AgentID uint32
	// CallRent
	DurationDays uint32
	// CallRegister
	Name        string
	Description string
	PricePerDay *uint256.Int
}

// NewRegisterMessage creates a registration call.
func NewRegisterMessage(from common.Address, name, description string, pricePerDay *uint256.Int) Message {
	return Message{Kind: CallRegister, From: from, Name: name, Description: description, PricePerDay: pricePerDay}
}

// NewRentMessage creates a rental call paying value.
func NewRentMessage(from common.Address, value *uint256.Int, id uint32, days uint32) Message {
	return Message{Kind: CallRent, From: from, Value: value, AgentID: id, DurationDays: days}
}

// NewDeactivateMessage creates a deactivation call.
func NewDeactivateMessage(from common.Address, id uint32) Message {
	return Message{Kind: CallDeactivate, From: from, AgentID: id}
}
