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

// Package state provides a journaled caching layer atop the registry database.
package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	lru "github.com/hashicorp/golang-lru"
	"github.com/jellyfishtechnology/polka-agent/core/rawdb"
	"github.com/jellyfishtechnology/polka-agent/core/types"
)

// agentCacheSize is the number of committed agent records kept in memory.
const agentCacheSize = 1024

var (
	agentCacheHitMeter  = metrics.NewRegisteredMeter("state/agent/cache/hit", nil)
	agentCacheMissMeter = metrics.NewRegisteredMeter("state/agent/cache/miss", nil)

	// ErrNotDeployed is returned when committing a registry that has no header.
	ErrNotDeployed = errors.New("registry not deployed")
)

type revision struct {
	id           int
	journalIndex int
}

// RegistryDB holds the live registry state of one contract instance. Changes
// are journaled until Commit writes them into the database, so any change
// made since a snapshot can be reverted.
type RegistryDB struct {
	db ethdb.KeyValueStore

	header   types.RegistryHeader
	deployed bool

	// Agents touched since the last commit, keyed by id.
	agents        map[uint32]*types.Agent
	agentsPending map[uint32]struct{}

	// Committed agent records. Entries are never handed out or mutated.
	clean *lru.Cache

	// Journal of state modifications. This is the backbone of
	// Snapshot and RevertToSnapshot.
	journal        *journal
	validRevisions []revision
	nextRevisionId int
}

// New opens the registry state stored in db. A database without a registry
// header yields an undeployed state.
func New(db ethdb.KeyValueStore) (*RegistryDB, error) {
	clean, err := lru.New(agentCacheSize)
	if err != nil {
		return nil, err
	}
	s := &RegistryDB{
		db:            db,
		agents:        make(map[uint32]*types.Agent),
		agentsPending: make(map[uint32]struct{}),
		clean:         clean,
		journal:       newJournal(),
	}
	s.loadHeader()
	return s, nil
}

func (s *RegistryDB) loadHeader() {
	if header := rawdb.ReadRegistryHeader(s.db); header != nil {
		s.header, s.deployed = *header, true
	} else {
		s.header, s.deployed = types.RegistryHeader{}, false
	}
}

// Database returns the underlying key-value store.
func (s *RegistryDB) Database() ethdb.KeyValueStore {
	return s.db
}

// Deployed reports whether a registry header exists.
func (s *RegistryDB) Deployed() bool {
	return s.deployed
}

// Deploy initialises the registry header. The agent count starts at zero.
func (s *RegistryDB) Deploy(owner common.Address, feePercent uint8) {
	s.journal.append(deployChange{prev: s.header, deployed: s.deployed})
	s.header = types.RegistryHeader{Owner: owner, PlatformFeePercent: feePercent}
	s.deployed = true
}

// Owner returns the platform owner.
func (s *RegistryDB) Owner() common.Address {
	return s.header.Owner
}

// PlatformFeePercent returns the platform fee configured at deployment.
func (s *RegistryDB) PlatformFeePercent() uint8 {
	return s.header.PlatformFeePercent
}

// TotalAgents returns the number of agents ever registered.
func (s *RegistryDB) TotalAgents() uint32 {
	return s.header.TotalAgents
}

// SetTotalAgents updates the agent counter.
func (s *RegistryDB) SetTotalAgents(n uint32) {
	s.journal.append(totalAgentsChange{prev: s.header.TotalAgents})
	s.header.TotalAgents = n
}

// Exist reports whether an agent record with the given id exists.
func (s *RegistryDB) Exist(id uint32) bool {
	if _, ok := s.agents[id]; ok {
		return true
	}
	if s.clean.Contains(id) {
		return true
	}
	return rawdb.HasAgent(s.db, id)
}

// GetAgent returns a copy of the agent record, or nil if the id was never
// registered.
func (s *RegistryDB) GetAgent(id uint32) *types.Agent {
	if agent := s.getAgent(id); agent != nil {
		return agent.Copy()
	}
	return nil
}

// Agents returns copies of all agent records in ascending id order.
func (s *RegistryDB) Agents() []*types.Agent {
	byID := make(map[uint32]*types.Agent)
	for _, agent := range rawdb.ReadAllAgents(s.db) {
		byID[agent.ID] = agent
	}
	for id, agent := range s.agents {
		byID[id] = agent.Copy()
	}
	agents := make([]*types.Agent, 0, len(byID))
	for _, agent := range byID {
		agents = append(agents, agent)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })
	return agents
}

// CreateAgent stores a new agent record under agent.ID. A record already
// present at that id is replaced.
func (s *RegistryDB) CreateAgent(agent *types.Agent) {
	id := agent.ID
	s.journal.append(createAgentChange{id: &id, prev: s.getAgent(id)})
	s.agents[id] = agent.Copy()
}

// SetActive updates the active flag of an existing agent.
func (s *RegistryDB) SetActive(id uint32, active bool) {
	agent := s.getLiveAgent(id)
	if agent == nil {
		return
	}
	s.journal.append(activeChange{id: &id, prev: agent.Active})
	agent.Active = active
}

// SetTotalRentals updates the rental counter of an existing agent.
func (s *RegistryDB) SetTotalRentals(id uint32, n uint64) {
	agent := s.getLiveAgent(id)
	if agent == nil {
		return
	}
	s.journal.append(rentalsChange{id: &id, prev: agent.TotalRentals})
	agent.TotalRentals = n
}

// getAgent returns the current record without copying it. Callers must not
// modify the result.
func (s *RegistryDB) getAgent(id uint32) *types.Agent {
	if agent, ok := s.agents[id]; ok {
		return agent
	}
	if cached, ok := s.clean.Get(id); ok {
		agentCacheHitMeter.Mark(1)
		return cached.(*types.Agent)
	}
	agentCacheMissMeter.Mark(1)
	agent := rawdb.ReadAgent(s.db, id)
	if agent != nil {
		s.clean.Add(id, agent)
	}
	return agent
}

// getLiveAgent returns a mutable record for id, pulling a private copy into
// the live set if needed.
func (s *RegistryDB) getLiveAgent(id uint32) *types.Agent {
	if agent, ok := s.agents[id]; ok {
		return agent
	}
	agent := s.getAgent(id)
	if agent == nil {
		return nil
	}
	agent = agent.Copy()
	s.agents[id] = agent
	return agent
}

// Snapshot returns an identifier for the current revision of the state.
func (s *RegistryDB) Snapshot() int {
	id := s.nextRevisionId
	s.nextRevisionId++
	s.validRevisions = append(s.validRevisions, revision{id, s.journal.length()})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (s *RegistryDB) RevertToSnapshot(revid int) {
	// Find the snapshot in the stack of valid snapshots.
	idx := sort.Search(len(s.validRevisions), func(i int) bool {
		return s.validRevisions[i].id >= revid
	})
	if idx == len(s.validRevisions) || s.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := s.validRevisions[idx].journalIndex

	// Replay the journal to undo changes and remove invalidated snapshots
	s.journal.revert(s, snapshot)
	s.validRevisions = s.validRevisions[:idx]
}

// Finalise marks every journaled agent as pending for the next commit and
// clears the journal. Reverting across a finalise is not possible.
func (s *RegistryDB) Finalise() {
	for id := range s.journal.dirties {
		if _, exist := s.agents[id]; !exist {
			continue
		}
		s.agentsPending[id] = struct{}{}
	}
	s.journal = newJournal()
	s.validRevisions = s.validRevisions[:0]
}

// Commit finalises the state and writes the header and every pending agent
// into w. The live set is folded into the clean cache afterwards.
func (s *RegistryDB) Commit(w ethdb.KeyValueWriter) error {
	if !s.deployed {
		return ErrNotDeployed
	}
	s.Finalise()

	ids := make([]uint32, 0, len(s.agentsPending))
	for id := range s.agentsPending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		rawdb.WriteAgent(w, s.agents[id])
	}
	header := s.header
	rawdb.WriteRegistryHeader(w, &header)

	for id, agent := range s.agents {
		s.clean.Add(id, agent)
	}
	if len(ids) > 0 {
		log.Debug("Committed registry state", "agents", len(ids), "total", s.header.TotalAgents)
	}
	s.agents = make(map[uint32]*types.Agent)
	s.agentsPending = make(map[uint32]struct{})
	return nil
}

// Reset drops every uncommitted change and reloads the header from the
// database. Used after a commit batch failed to reach the disk.
func (s *RegistryDB) Reset() {
	s.agents = make(map[uint32]*types.Agent)
	s.agentsPending = make(map[uint32]struct{})
	s.clean.Purge()
	s.journal = newJournal()
	s.validRevisions = s.validRevisions[:0]
	s.loadHeader()
}
