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

package state

import (
	"github.com/jellyfishtechnology/polka-agent/core/types"
)

// journalEntry is a modification entry in the registry change journal that
// can be reverted on demand.
type journalEntry interface {
	// revert undoes the changes introduced by this journal entry.
	revert(*RegistryDB)

	// dirtied returns the agent id modified by this journal entry, nil for
	// registry-wide changes.
	dirtied() *uint32
}

// journal contains the list of registry modifications applied since the last
// commit. These are tracked to be able to be reverted in case a call fails.
type journal struct {
	entries []journalEntry // Current changes tracked by the journal
	dirties map[uint32]int // Dirty agents and the number of changes
	header  int            // Number of registry-wide changes
}

// newJournal create a new initialized journal.
func newJournal() *journal {
	return &journal{
		dirties: make(map[uint32]int),
	}
}

// append inserts a new modification entry to the end of the change journal.
func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
	if id := entry.dirtied(); id != nil {
		j.dirties[*id]++
	} else {
		j.header++
	}
}

// revert undoes a batch of journalled modifications along with any reverted
// dirty handling too.
func (j *journal) revert(db *RegistryDB, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		// Undo the changes made by the operation
		j.entries[i].revert(db)

		// Drop any dirty tracking induced by the change
		if id := j.entries[i].dirtied(); id != nil {
			if j.dirties[*id]--; j.dirties[*id] == 0 {
				delete(j.dirties, *id)
			}
		} else {
			j.header--
		}
	}
	j.entries = j.entries[:snapshot]
}

// length returns the current number of entries in the journal.
func (j *journal) length() int {
	return len(j.entries)
}

type (
	// Changes to the registry header.
	deployChange struct {
		prev     types.RegistryHeader
		deployed bool
	}
	totalAgentsChange struct {
		prev uint32
	}

	// Changes to individual agents.
	createAgentChange struct {
		id   *uint32
		prev *types.Agent // record overwritten at a saturated id, usually nil
	}
	activeChange struct {
		id   *uint32
		prev bool
	}
	rentalsChange struct {
		id   *uint32
		prev uint64
	}
)

func (ch deployChange) revert(db *RegistryDB) {
	db.header = ch.prev
	db.deployed = ch.deployed
}

func (ch deployChange) dirtied() *uint32 {
	return nil
}

func (ch totalAgentsChange) revert(db *RegistryDB) {
	db.header.TotalAgents = ch.prev
}

func (ch totalAgentsChange) dirtied() *uint32 {
	return nil
}

func (ch createAgentChange) revert(db *RegistryDB) {
	if ch.prev == nil {
		delete(db.agents, *ch.id)
	} else {
		db.agents[*ch.id] = ch.prev
	}
}

func (ch createAgentChange) dirtied() *uint32 {
	return ch.id
}

func (ch activeChange) revert(db *RegistryDB) {
	db.agents[*ch.id].Active = ch.prev
}

func (ch activeChange) dirtied() *uint32 {
	return ch.id
}

func (ch rentalsChange) revert(db *RegistryDB) {
	db.agents[*ch.id].TotalRentals = ch.prev
}

func (ch rentalsChange) dirtied() *uint32 {
	return ch.id
}
