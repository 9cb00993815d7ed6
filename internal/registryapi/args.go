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

package registryapi

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/jellyfishtechnology/polka-agent/core"
	"github.com/jellyfishtechnology/polka-agent/core/types"
)

var (
	errMissingFrom  = errors.New(`"from" must be specified`)
	errMissingAgent = errors.New(`"id" must be specified`)
	errMissingDays  = errors.New(`"days" must be specified`)
)

// TransactionArgs represents the arguments of a registry call submitted
// over RPC.
type TransactionArgs struct {
	From  *common.Address `json:"from"`
	Value *hexutil.Big    `json:"value"`

	// rentAgent, deactivateAgent
	ID   *hexutil.Uint64 `json:"id"`
	Days *hexutil.Uint64 `json:"days"`

	// registerAgent
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	PricePerDay *hexutil.Big `json:"pricePerDay"`
}

func (args *TransactionArgs) from() (common.Address, error) {
	if args.From == nil {
		return common.Address{}, errMissingFrom
	}
	return *args.From, nil
}

func (args *TransactionArgs) id() (uint32, error) {
	if args.ID == nil {
		return 0, errMissingAgent
	}
	return toUint32("id", uint64(*args.ID))
}

func (args *TransactionArgs) days() (uint32, error) {
	if args.Days == nil {
		return 0, errMissingDays
	}
	return toUint32("days", uint64(*args.Days))
}

func (args *TransactionArgs) value() (*uint256.Int, error) {
	return toBalance("value", (*big.Int)(args.Value))
}

func (args *TransactionArgs) text() (name, description string) {
	if args.Name != nil {
		name = *args.Name
	}
	if args.Description != nil {
		description = *args.Description
	}
	return name, description
}

// ToMessage converts the arguments into a registry call of the given kind.
func (args *TransactionArgs) ToMessage(kind core.CallKind) (core.Message, error) {
	from, err := args.from()
	if err != nil {
		return core.Message{}, err
	}
	value, err := args.value()
	if err != nil {
		return core.Message{}, err
	}
	msg := core.Message{Kind: kind, From: from, Value: value}

	switch kind {
	case core.CallRegister:
		msg.Name, msg.Description = args.text()
		if msg.PricePerDay, err = toBalance("pricePerDay", (*big.Int)(args.PricePerDay)); err != nil {
			return core.Message{}, err
		}
	case core.CallRent:
		if msg.AgentID, err = args.id(); err != nil {
			return core.Message{}, err
		}
		if msg.DurationDays, err = args.days(); err != nil {
			return core.Message{}, err
		}
	case core.CallDeactivate:
		if msg.AgentID, err = args.id(); err != nil {
			return core.Message{}, err
		}
	default:
		return core.Message{}, fmt.Errorf("%w: %v", core.ErrUnknownCall, kind)
	}
	return msg, nil
}

func toUint32(field string, v uint64) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%q %d exceeds uint32", field, v)
	}
	return uint32(v), nil
}

// toBalance rejects amounts the ledger cannot hold instead of clamping them.
func toBalance(field string, v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%q is negative", field)
	}
	if v.Cmp(types.MaxBalance.ToBig()) > 0 {
		return nil, fmt.Errorf("%q exceeds 128 bits", field)
	}
	return types.BalanceFromBig(v), nil
}
