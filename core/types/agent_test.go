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
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/google/go-cmp/cmp"
)

var alice = common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")

func TestAgentEncoding(t *testing.T) {
	agent := &Agent{
		ID:           7,
		Owner:        alice,
		Name:         "yield-optimizer",
		Description:  "rebalances staking positions",
		PricePerDay:  NewBalance(1000),
		Active:       true,
		TotalRentals: 3,
	}
	enc, err := rlp.EncodeToBytes(agent)
	if err != nil {
		t.Fatal(err)
	}
	dec := new(Agent)
	if err := rlp.DecodeBytes(enc, dec); err != nil {
		t.Fatal(err)
	}
	// The id lives in the database key.
	want := agent.Copy()
	want.ID = 0
	if diff := cmp.Diff(want, dec); diff != "" {
		t.Fatalf("decoded agent mismatch (-want +have):\n%s\n%s", diff, spew.Sdump(dec))
	}
}

func TestAgentEncodingNilPrice(t *testing.T) {
	enc, err := rlp.EncodeToBytes(&Agent{Owner: alice})
	if err != nil {
		t.Fatal(err)
	}
	dec := new(Agent)
	if err := rlp.DecodeBytes(enc, dec); err != nil {
		t.Fatal(err)
	}
	if dec.PricePerDay == nil || !dec.PricePerDay.IsZero() {
		t.Fatalf("price: have %v, want 0", dec.PricePerDay)
	}
}

func TestAgentCopy(t *testing.T) {
	agent := &Agent{Owner: alice, PricePerDay: NewBalance(10), Active: true}
	cpy := agent.Copy()
	cpy.PricePerDay.SetUint64(99)
	cpy.Active = false
	if agent.PricePerDay.Uint64() != 10 || !agent.Active {
		t.Fatalf("copy shares state with original: %v", agent)
	}
}
