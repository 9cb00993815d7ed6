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
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jellyfishtechnology/polka-agent/core/types"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	alice = common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	bob   = common.HexToAddress("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
)

func TestRegistryHeaderStorage(t *testing.T) {
	db := NewMemoryDatabase()
	if header := ReadRegistryHeader(db); header != nil {
		t.Fatalf("non existent header returned: %v", header)
	}
	WriteRegistryHeader(db, &types.RegistryHeader{Owner: alice, PlatformFeePercent: 5, TotalAgents: 2})

	header := ReadRegistryHeader(db)
	if header == nil {
		t.Fatal("stored header not found")
	}
	if header.Owner != alice || header.PlatformFeePercent != 5 || header.TotalAgents != 2 {
		t.Fatalf("header mismatch: %+v", header)
	}
}

func TestAgentStorage(t *testing.T) {
	db := NewMemoryDatabase()
	if HasAgent(db, 0) || ReadAgent(db, 0) != nil {
		t.Fatal("non existent agent returned")
	}
	agent := &types.Agent{ID: 0, Owner: alice, Name: "a", PricePerDay: types.NewBalance(10), Active: true}
	WriteAgent(db, agent)

	if !HasAgent(db, 0) {
		t.Fatal("stored agent not found")
	}
	dec := ReadAgent(db, 0)
	if dec == nil || dec.Owner != alice || dec.Name != "a" || dec.PricePerDay.Uint64() != 10 || !dec.Active {
		t.Fatalf("agent mismatch: %v", dec)
	}
	if HasAgent(db, 1) {
		t.Fatal("unwritten agent reported present")
	}
}

func TestReadAllAgentsOrder(t *testing.T) {
	db := NewMemoryDatabase()
	// Ids across a byte boundary must still come back in numeric order.
	ids := []uint32{256, 1, 0, 255, 65536}
	for _, id := range ids {
		WriteAgent(db, &types.Agent{ID: id, Owner: bob, PricePerDay: types.NewBalance(uint64(id))})
	}
	// Unrelated keys sharing the prefix byte are skipped.
	db.Put([]byte("alpha"), []byte{0x1})

	agents := ReadAllAgents(db)
	want := []uint32{0, 1, 255, 256, 65536}
	if len(agents) != len(want) {
		t.Fatalf("agent count mismatch: have %d, want %d", len(agents), len(want))
	}
	for i, agent := range agents {
		if agent.ID != want[i] {
			t.Errorf("agent %d: have id %d, want %d", i, agent.ID, want[i])
		}
		if agent.PricePerDay.Uint64() != uint64(want[i]) {
			t.Errorf("agent %d: price %v not decoded", i, agent.PricePerDay)
		}
	}
}

func TestLevelDBPersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "registry")

	db, err := NewLevelDBDatabase(dir, 16, 16, "test/", false)
	if err != nil {
		t.Fatal(err)
	}
	WriteRegistryHeader(db, &types.RegistryHeader{Owner: alice, PlatformFeePercent: 7, TotalAgents: 1})
	WriteAgent(db, &types.Agent{ID: 0, Owner: alice, Name: "persisted", PricePerDay: types.NewBalance(1)})
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	// The raw store holds the agent under its prefixed big endian key.
	raw, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	it := raw.NewIterator(util.BytesPrefix(agentPrefix), nil)
	var keys int
	for it.Next() {
		if string(it.Key()) != string(agentKey(0)) {
			t.Errorf("unexpected agent key %x", it.Key())
		}
		keys++
	}
	it.Release()
	raw.Close()
	if keys != 1 {
		t.Fatalf("agent key count mismatch: have %d, want 1", keys)
	}

	db, err = NewLevelDBDatabase(dir, 16, 16, "test/", true)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if header := ReadRegistryHeader(db); header == nil || header.PlatformFeePercent != 7 {
		t.Fatalf("header not persisted: %v", header)
	}
	if agent := ReadAgent(db, 0); agent == nil || agent.Name != "persisted" {
		t.Fatalf("agent not persisted: %v", agent)
	}
}
