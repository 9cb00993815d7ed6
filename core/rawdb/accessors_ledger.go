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
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/jellyfishtechnology/polka-agent/core/types"
)

// ReadBalance retrieves the balance of an account, zero if unknown.
func ReadBalance(db ethdb.KeyValueReader, addr common.Address) *uint256.Int {
	data, _ := db.Get(balanceKey(addr))
	return types.BalanceFromBig(new(big.Int).SetBytes(data))
}

// WriteBalance stores the balance of an account. Zero balances are deleted.
func WriteBalance(db ethdb.KeyValueWriter, addr common.Address, balance *uint256.Int) {
	if balance == nil || balance.IsZero() {
		if err := db.Delete(balanceKey(addr)); err != nil {
			log.Crit("Failed to delete balance", "addr", addr, "err", err)
		}
		return
	}
	if err := db.Put(balanceKey(addr), balance.Bytes()); err != nil {
		log.Crit("Failed to store balance", "addr", addr, "err", err)
	}
}

// ReadRefusesFunds reports whether the account is marked as unable to
// receive transfers.
func ReadRefusesFunds(db ethdb.KeyValueReader, addr common.Address) bool {
	ok, _ := db.Has(refuseKey(addr))
	return ok
}

// WriteRefusesFunds marks or clears the account as unable to receive
// transfers.
func WriteRefusesFunds(db ethdb.KeyValueWriter, addr common.Address, refuse bool) {
	var err error
	if refuse {
		err = db.Put(refuseKey(addr), []byte{0x01})
	} else {
		err = db.Delete(refuseKey(addr))
	}
	if err != nil {
		log.Crit("Failed to store refuse flag", "addr", addr, "err", err)
	}
}

// ReadRefusingAccounts retrieves every account marked as unable to receive
// transfers.
func ReadRefusingAccounts(db ethdb.Iteratee) []common.Address {
	it := db.NewIterator(refusePrefix, nil)
	defer it.Release()

	var accounts []common.Address
	for it.Next() {
		key := it.Key()
		if len(key) != len(refusePrefix)+common.AddressLength {
			continue
		}
		accounts = append(accounts, common.BytesToAddress(key[len(refusePrefix):]))
	}
	return accounts
}

// ReadLogCount retrieves the number of entries in the event log.
func ReadLogCount(db ethdb.KeyValueReader) uint64 {
	data, _ := db.Get(logCountKey)
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// WriteLogCount stores the number of entries in the event log.
func WriteLogCount(db ethdb.KeyValueWriter, count uint64) {
	if err := db.Put(logCountKey, encodeLogIndex(count)); err != nil {
		log.Crit("Failed to store log count", "err", err)
	}
}

// ReadLog retrieves the log at the given index, or nil if absent.
func ReadLog(db ethdb.KeyValueReader, index uint64) *types.Log {
	data, _ := db.Get(logKey(index))
	if len(data) == 0 {
		return nil
	}
	l := new(types.Log)
	if err := rlp.DecodeBytes(data, l); err != nil {
		log.Error("Invalid log RLP", "index", index, "err", err)
		return nil
	}
	l.Index = index
	return l
}

// ReadLogs retrieves all logs in emission order.
func ReadLogs(db ethdb.KeyValueReader) []*types.Log {
	count := ReadLogCount(db)
	logs := make([]*types.Log, 0, count)
	for i := uint64(0); i < count; i++ {
		if l := ReadLog(db, i); l != nil {
			logs = append(logs, l)
		}
	}
	return logs
}

// WriteLog stores a log at its index. The log count is not touched.
func WriteLog(db ethdb.KeyValueWriter, l *types.Log) {
	data, err := rlp.EncodeToBytes(l)
	if err != nil {
		log.Crit("Failed to encode log", "err", err)
	}
	if err := db.Put(logKey(l.Index), data); err != nil {
		log.Crit("Failed to store log", "index", l.Index, "err", err)
	}
	logWriteCounter.Inc(1)
}
