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

// Package ledger implements the host side of the registry: account balances,
// the context of the current call and the ordered event log.
package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/jellyfishtechnology/polka-agent/core/rawdb"
	"github.com/jellyfishtechnology/polka-agent/core/types"
)

var (
	// ErrInsufficientBalance is returned if the source account of a value
	// transfer holds less than the transferred amount.
	ErrInsufficientBalance = errors.New("insufficient balance for transfer")

	// ErrTransferRejected is returned if the destination account refuses
	// incoming funds.
	ErrTransferRejected = errors.New("destination refuses transfer")
)

type revision struct {
	id           int
	journalIndex int
}

// Ledger tracks the balances of all accounts including the registry contract
// account. Modifications are journaled until Commit.
type Ledger struct {
	db       ethdb.KeyValueStore
	contract common.Address

	balances    map[common.Address]*uint256.Int
	refusing    mapset.Set             // accounts that cannot receive funds
	refuseDirty map[common.Address]int // refuse flags changed since the last commit

	committedLogs uint64
	pending       []*types.Log

	// Context of the call in progress.
	caller common.Address
	value  *uint256.Int

	journal        *journal
	validRevisions []revision
	nextRevisionId int
}

// New opens the ledger stored in db. Transfers made on behalf of the registry
// debit the contract account.
func New(db ethdb.KeyValueStore, contract common.Address) *Ledger {
	l := &Ledger{
		db:       db,
		contract: contract,
		value:    new(uint256.Int),
	}
	l.reset()
	return l
}

func (l *Ledger) reset() {
	l.balances = make(map[common.Address]*uint256.Int)
	l.refusing = mapset.NewSet()
	for _, addr := range rawdb.ReadRefusingAccounts(l.db) {
		l.refusing.Add(addr)
	}
	l.refuseDirty = make(map[common.Address]int)
	l.committedLogs = rawdb.ReadLogCount(l.db)
	l.pending = nil
	l.journal = newJournal()
	l.validRevisions = l.validRevisions[:0]
}

// Contract returns the account of the registry contract.
func (l *Ledger) Contract() common.Address {
	return l.contract
}

// Balance returns a copy of the balance of addr.
func (l *Ledger) Balance(addr common.Address) *uint256.Int {
	return l.balance(addr).Clone()
}

func (l *Ledger) balance(addr common.Address) *uint256.Int {
	if b, ok := l.balances[addr]; ok {
		return b
	}
	b := rawdb.ReadBalance(l.db, addr)
	l.balances[addr] = b
	return b
}

func (l *Ledger) setBalance(addr common.Address, amount *uint256.Int) {
	l.journal.append(balanceChange{account: &addr, prev: l.balance(addr)})
	l.balances[addr] = amount
}

// Mint credits addr with newly created funds, clamped at the balance maximum.
func (l *Ledger) Mint(addr common.Address, amount *uint256.Int) {
	l.setBalance(addr, types.SaturatingAdd(l.balance(addr), amount))
}

// RefusesFunds reports whether addr is unable to receive transfers.
func (l *Ledger) RefusesFunds(addr common.Address) bool {
	return l.refusing.Contains(addr)
}

// SetRefuseFunds marks or clears addr as unable to receive transfers.
func (l *Ledger) SetRefuseFunds(addr common.Address, refuse bool) {
	l.journal.append(refuseChange{account: &addr, prev: l.RefusesFunds(addr)})
	l.refuseDirty[addr]++
	if refuse {
		l.refusing.Add(addr)
	} else {
		l.refusing.Remove(addr)
	}
}

// move transfers amount between two accounts.
func (l *Ledger) move(from, to common.Address, amount *uint256.Int) error {
	if l.RefusesFunds(to) {
		return fmt.Errorf("%w: %s", ErrTransferRejected, to.Hex())
	}
	if l.balance(from).Lt(amount) {
		return fmt.Errorf("%w: address %s have %s want %s", ErrInsufficientBalance,
			from.Hex(), l.balance(from).ToBig(), amount.ToBig())
	}
	if from == to {
		return nil
	}
	l.setBalance(from, types.SaturatingSub(l.balance(from), amount))
	l.setBalance(to, types.SaturatingAdd(l.balance(to), amount))
	return nil
}

// BeginCall opens the context of a call: value is moved from the caller to
// the contract account and the call identity is recorded.
func (l *Ledger) BeginCall(caller common.Address, value *uint256.Int) error {
	value = types.ClampBalance(value)
	if !value.IsZero() {
		if err := l.move(caller, l.contract, value); err != nil {
			return err
		}
	}
	l.caller, l.value = caller, value
	return nil
}

// EndCall clears the call context.
func (l *Ledger) EndCall() {
	l.caller, l.value = common.Address{}, new(uint256.Int)
}

// Caller returns the identity of the account making the current call.
func (l *Ledger) Caller() common.Address {
	return l.caller
}

// TransferredValue returns the value attached to the current call.
func (l *Ledger) TransferredValue() *uint256.Int {
	return l.value.Clone()
}

// Transfer pays amount out of the contract account.
func (l *Ledger) Transfer(to common.Address, amount *uint256.Int) error {
	return l.move(l.contract, to, types.ClampBalance(amount))
}

// Emit appends an event to the pending event log.
func (l *Ledger) Emit(ev types.Event) {
	entry := types.NewLog(l.contract, ev)
	entry.Index = l.committedLogs + uint64(len(l.pending))
	l.pending = append(l.pending, entry)
	l.journal.append(addLogChange{})
}

// PendingLogs returns the events emitted since the last commit.
func (l *Ledger) PendingLogs() []*types.Log {
	return append([]*types.Log{}, l.pending...)
}

// Logs returns the committed event log followed by the pending events.
func (l *Ledger) Logs() []*types.Log {
	return append(rawdb.ReadLogs(l.db), l.pending...)
}

// Snapshot returns an identifier for the current revision of the ledger.
func (l *Ledger) Snapshot() int {
	id := l.nextRevisionId
	l.nextRevisionId++
	l.validRevisions = append(l.validRevisions, revision{id, l.journal.length()})
	return id
}

// RevertToSnapshot reverts all ledger changes made since the given revision.
func (l *Ledger) RevertToSnapshot(revid int) {
	idx := sort.Search(len(l.validRevisions), func(i int) bool {
		return l.validRevisions[i].id >= revid
	})
	if idx == len(l.validRevisions) || l.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	l.journal.revert(l, l.validRevisions[idx].journalIndex)
	l.validRevisions = l.validRevisions[:idx]
}

// Commit writes every changed balance and refuse flag and the pending events
// into w, then clears the journal.
func (l *Ledger) Commit(w ethdb.KeyValueWriter) {
	addrs := make([]common.Address, 0, len(l.journal.dirties))
	for addr := range l.journal.dirties {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return bytes.Compare(addrs[i][:], addrs[j][:]) < 0 })
	for _, addr := range addrs {
		rawdb.WriteBalance(w, addr, l.balances[addr])
	}
	for addr := range l.refuseDirty {
		rawdb.WriteRefusesFunds(w, addr, l.RefusesFunds(addr))
	}
	for _, entry := range l.pending {
		rawdb.WriteLog(w, entry)
	}
	if len(l.pending) > 0 {
		l.committedLogs += uint64(len(l.pending))
		rawdb.WriteLogCount(w, l.committedLogs)
		log.Trace("Committed ledger events", "count", len(l.pending), "total", l.committedLogs)
	}
	l.pending = nil
	l.refuseDirty = make(map[common.Address]int)
	l.journal = newJournal()
	l.validRevisions = l.validRevisions[:0]
}

// Reset drops every uncommitted change and reloads from the database.
func (l *Ledger) Reset() {
	l.reset()
	l.EndCall()
}
