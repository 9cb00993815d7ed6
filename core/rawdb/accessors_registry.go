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

package rawdb

import (
	"bytes"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/jellyfishtechnology/polka-agent/core/types"
)

// ReadRegistryHeader retrieves the registry header, or nil if no registry
// has been deployed into the database.
func ReadRegistryHeader(db ethdb.KeyValueReader) *types.RegistryHeader {
	data, _ := db.Get(registryHeaderKey)
	if len(data) == 0 {
		return nil
	}
	header := new(types.RegistryHeader)
	if err := rlp.DecodeBytes(data, header); err != nil {
		log.Error("Invalid registry header RLP", "err", err)
		return nil
	}
	return header
}

// WriteRegistryHeader stores the registry header.
func WriteRegistryHeader(db ethdb.KeyValueWriter, header *types.RegistryHeader) {
	data, err := rlp.EncodeToBytes(header)
	if err != nil {
		log.Crit("Failed to encode registry header", "err", err)
	}
	if err := db.Put(registryHeaderKey, data); err != nil {
		log.Crit("Failed to store registry header", "err", err)
	}
}

// HasAgent checks if the agent record with the given id exists.
func HasAgent(db ethdb.KeyValueReader, id uint32) bool {
	ok, _ := db.Has(agentKey(id))
	return ok
}

// ReadAgent retrieves the agent record with the given id, or nil if it was
// never registered.
func ReadAgent(db ethdb.KeyValueReader, id uint32) *types.Agent {
	data, _ := db.Get(agentKey(id))
	if len(data) == 0 {
		return nil
	}
	agent := new(types.Agent)
	if err := rlp.DecodeBytes(data, agent); err != nil {
		log.Error("Invalid agent RLP", "id", id, "err", err)
		return nil
	}
	agent.ID = id
	return agent
}

// WriteAgent stores the agent record under its id.
func WriteAgent(db ethdb.KeyValueWriter, agent *types.Agent) {
	data, err := rlp.EncodeToBytes(agent)
	if err != nil {
		log.Crit("Failed to encode agent", "id", agent.ID, "err", err)
	}
	if err := db.Put(agentKey(agent.ID), data); err != nil {
		log.Crit("Failed to store agent", "id", agent.ID, "err", err)
	}
	agentWriteCounter.Inc(1)
}

// ReadAllAgents retrieves every stored agent record in ascending id order.
func ReadAllAgents(db ethdb.Iteratee) []*types.Agent {
	it := db.NewIterator(agentPrefix, nil)
	defer it.Release()

	var agents []*types.Agent
	for it.Next() {
		key := it.Key()
		if len(key) != len(agentPrefix)+4 || !bytes.HasPrefix(key, agentPrefix) {
			continue
		}
		agent := new(types.Agent)
		if err := rlp.DecodeBytes(it.Value(), agent); err != nil {
			log.Error("Invalid agent RLP", "key", key, "err", err)
			continue
		}
		agent.ID = binary.BigEndian.Uint32(key[len(agentPrefix):])
		agents = append(agents, agent)
	}
	return agents
}
