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
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/jellyfishtechnology/polka-agent/core/types"
)

// RPCAgent is the JSON form of an agent record.
type RPCAgent struct {
	ID           hexutil.Uint64 `json:"id"`
	Owner        common.Address `json:"owner"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	PricePerDay  *hexutil.Big   `json:"pricePerDay"`
	Active       bool           `json:"active"`
	TotalRentals hexutil.Uint64 `json:"totalRentals"`
}

func newRPCAgent(a *types.Agent) *RPCAgent {
	return &RPCAgent{
		ID:           hexutil.Uint64(a.ID),
		Owner:        a.Owner,
		Name:         a.Name,
		Description:  a.Description,
		PricePerDay:  (*hexutil.Big)(types.ClampBalance(a.PricePerDay).ToBig()),
		Active:       a.Active,
		TotalRentals: hexutil.Uint64(a.TotalRentals),
	}
}

// RPCLog is the JSON form of an event log entry. The decoded event fields
// are filled in when the topic is known.
type RPCLog struct {
	Address common.Address `json:"address"`
	Topics  []common.Hash  `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
	Index   hexutil.Uint64 `json:"logIndex"`

	Event      string          `json:"event,omitempty"`
	AgentID    *hexutil.Uint64 `json:"agentId,omitempty"`
	Owner      *common.Address `json:"owner,omitempty"`
	Name       *string         `json:"name,omitempty"`
	Renter     *common.Address `json:"renter,omitempty"`
	AmountPaid *hexutil.Big    `json:"amountPaid,omitempty"`
}

func newRPCLog(l *types.Log) *RPCLog {
	result := &RPCLog{
		Address: l.Address,
		Topics:  l.Topics,
		Data:    l.Data,
		Index:   hexutil.Uint64(l.Index),
	}
	ev, err := types.DecodeEvent(l)
	if err != nil {
		return result
	}
	result.Event = ev.Kind()
	switch ev := ev.(type) {
	case *types.AgentRegistered:
		id := hexutil.Uint64(ev.AgentID)
		result.AgentID, result.Owner, result.Name = &id, &ev.Owner, &ev.Name
	case *types.AgentRented:
		id := hexutil.Uint64(ev.AgentID)
		result.AgentID, result.Renter = &id, &ev.Renter
		result.AmountPaid = (*hexutil.Big)(ev.AmountPaid.ToBig())
	}
	return result
}

// RPCQuote is the cost split of a rental.
type RPCQuote struct {
	Total   *hexutil.Big `json:"total"`
	Fee     *hexutil.Big `json:"fee"`
	Creator *hexutil.Big `json:"creator"`
}

// RPCReceipt is the outcome of a committed registry call.
type RPCReceipt struct {
	AgentID hexutil.Uint64 `json:"agentId"`
	Logs    []*RPCLog      `json:"logs"`
}
