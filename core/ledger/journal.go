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

package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// journalEntry is a ledger modification that can be reverted on demand.
type journalEntry interface {
	// revert undoes the changes introduced by this journal entry.
	revert(*Ledger)

	// dirtied returns the account modified by this journal entry.
	dirtied() *common.Address
}

// journal contains the ledger modifications applied since the last commit.
type journal struct {
	entries []journalEntry
	dirties map[common.Address]int
}

func newJournal() *journal {
	return &journal{dirties: make(map[common.Address]int)}
}

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
	if addr := entry.dirtied(); addr != nil {
		j.dirties[*addr]++
	}
}

func (j *journal) revert(l *Ledger, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i].revert(l)

		if addr := j.entries[i].dirtied(); addr != nil {
			if j.dirties[*addr]--; j.dirties[*addr] == 0 {
				delete(j.dirties, *addr)
			}
		}
	}
	j.entries = j.entries[:snapshot]
}

func (j *journal) length() int {
	return len(j.entries)
}

type (
	balanceChange struct {
		account *common.Address
		prev    *uint256.Int
	}
	refuseChange struct {
		account *common.Address
		prev    bool
	}
	addLogChange struct{}
)

func (ch balanceChange) revert(l *Ledger) {
	l.balances[*ch.account] = ch.prev
}

func (ch balanceChange) dirtied() *common.Address {
	return ch.account
}

func (ch refuseChange) revert(l *Ledger) {
	if ch.prev {
		l.refusing.Add(*ch.account)
	} else {
		l.refusing.Remove(*ch.account)
	}
	l.refuseDirty[*ch.account]--
	if l.refuseDirty[*ch.account] == 0 {
		delete(l.refuseDirty, *ch.account)
	}
}

func (ch refuseChange) dirtied() *common.Address {
	return nil
}

func (ch addLogChange) revert(l *Ledger) {
	l.pending = l.pending[:len(l.pending)-1]
}

func (ch addLogChange) dirtied() *common.Address {
	return nil
}
