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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

var (
	// AgentRegisteredTopic is the first topic of every registration log.
	AgentRegisteredTopic = crypto.Keccak256Hash([]byte("AgentRegistered(uint32,address,string)"))

	// AgentRentedTopic is the first topic of every rental log.
	AgentRentedTopic = crypto.Keccak256Hash([]byte("AgentRented(uint32,address,uint128)"))

	errUnknownEvent = errors.New("unknown event topic")
	errNoTopics     = errors.New("log without topics")
)

// Event is a registry notification handed to the ledger event log.
type Event interface {
	// Kind returns the event name, e.g. "AgentRegistered".
	Kind() string

	// Topics returns the indexed fields, signature hash first.
	Topics() []common.Hash

	// Data returns the RLP encoding of the non-indexed fields.
	Data() []byte
}

// AgentRegistered is emitted once per successful registration.
type AgentRegistered struct {
	AgentID uint32
	Owner   common.Address
	Name    string
}

type registeredData struct {
	Owner common.Address
	Name  string
}

func (e *AgentRegistered) Kind() string { return "AgentRegistered" }

func (e *AgentRegistered) Topics() []common.Hash {
	return []common.Hash{AgentRegisteredTopic, AgentIDTopic(e.AgentID)}
}

func (e *AgentRegistered) Data() []byte {
	data, _ := rlp.EncodeToBytes(&registeredData{Owner: e.Owner, Name: e.Name})
	return data
}

// AgentRented is emitted once per successful rental.
type AgentRented struct {
	AgentID    uint32
	Renter     common.Address
	AmountPaid *uint256.Int
}

type rentedData struct {
	Renter     common.Address
	AmountPaid *big.Int
}

func (e *AgentRented) Kind() string { return "AgentRented" }

func (e *AgentRented) Topics() []common.Hash {
	return []common.Hash{AgentRentedTopic, AgentIDTopic(e.AgentID)}
}

func (e *AgentRented) Data() []byte {
	data, _ := rlp.EncodeToBytes(&rentedData{Renter: e.Renter, AmountPaid: ClampBalance(e.AmountPaid).ToBig()})
	return data
}

// AgentIDTopic left pads an agent id into a log topic.
func AgentIDTopic(id uint32) common.Hash {
	var h common.Hash
	binary.BigEndian.PutUint32(h[common.HashLength-4:], id)
	return h
}

// Log is an entry of the ledger event log.
type Log struct {
	// Account that emitted the event.
	Address common.Address
	// Indexed fields, the event signature hash first.
	Topics []common.Hash
	// Non-indexed fields.
	Data []byte

	// Position in the event log. Derived from the database key, not
	// part of the encoding.
	Index uint64
}

type rlpLog struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// NewLog wraps an event emitted by the given account.
func NewLog(address common.Address, ev Event) *Log {
	return &Log{Address: address, Topics: ev.Topics(), Data: ev.Data()}
}

// EncodeRLP implements rlp.Encoder.
func (l *Log) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &rlpLog{Address: l.Address, Topics: l.Topics, Data: l.Data})
}

// DecodeRLP implements rlp.Decoder.
func (l *Log) DecodeRLP(s *rlp.Stream) error {
	var dec rlpLog
	err := s.Decode(&dec)
	if err == nil {
		l.Address, l.Topics, l.Data = dec.Address, dec.Topics, dec.Data
	}
	return err
}

// DecodeEvent reconstructs the registry event carried by a log.
func DecodeEvent(l *Log) (Event, error) {
	if len(l.Topics) == 0 {
		return nil, errNoTopics
	}
	if len(l.Topics) < 2 {
		return nil, fmt.Errorf("log has %d topics, want 2", len(l.Topics))
	}
	id := binary.BigEndian.Uint32(l.Topics[1][common.HashLength-4:])

	switch l.Topics[0] {
	case AgentRegisteredTopic:
		var dec registeredData
		if err := rlp.DecodeBytes(l.Data, &dec); err != nil {
			return nil, err
		}
		return &AgentRegistered{AgentID: id, Owner: dec.Owner, Name: dec.Name}, nil

	case AgentRentedTopic:
		var dec rentedData
		if err := rlp.DecodeBytes(l.Data, &dec); err != nil {
			return nil, err
		}
		return &AgentRented{AgentID: id, Renter: dec.Renter, AmountPaid: BalanceFromBig(dec.AmountPaid)}, nil
	}
	return nil, errUnknownEvent
}
