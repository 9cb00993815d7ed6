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

// Package rawdb contains a collection of low level database accessors.
package rawdb

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/metrics"
)

// The fields below define the low level database schema prefixing.
var (
	// registryHeaderKey tracks the owner, fee and agent count of the registry.
	registryHeaderKey = []byte("RegistryHeader")

	// logCountKey tracks the number of entries in the event log.
	logCountKey = []byte("LogCount")

	agentPrefix   = []byte("a") // agentPrefix + id (uint32 big endian) -> agent record
	balancePrefix = []byte("b") // balancePrefix + address -> balance
	refusePrefix  = []byte("r") // refusePrefix + address -> flag, account refuses incoming funds
	logPrefix     = []byte("l") // logPrefix + index (uint64 big endian) -> log

	agentWriteCounter = metrics.NewRegisteredCounter("rawdb/agent/write", nil)
	logWriteCounter   = metrics.NewRegisteredCounter("rawdb/log/write", nil)
)

// encodeAgentID encodes an agent id as big endian uint32.
func encodeAgentID(id uint32) []byte {
	enc := make([]byte, 4)
	binary.BigEndian.PutUint32(enc, id)
	return enc
}

// encodeLogIndex encodes a log index as big endian uint64.
func encodeLogIndex(index uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, index)
	return enc
}

// agentKey = agentPrefix + id (uint32 big endian)
func agentKey(id uint32) []byte {
	return append(append([]byte{}, agentPrefix...), encodeAgentID(id)...)
}

// balanceKey = balancePrefix + address
func balanceKey(addr common.Address) []byte {
	return append(append([]byte{}, balancePrefix...), addr.Bytes()...)
}

// refuseKey = refusePrefix + address
func refuseKey(addr common.Address) []byte {
	return append(append([]byte{}, refusePrefix...), addr.Bytes()...)
}

// logKey = logPrefix + index (uint64 big endian)
func logKey(index uint64) []byte {
	return append(append([]byte{}, logPrefix...), encodeLogIndex(index)...)
}
