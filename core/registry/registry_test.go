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

package registry

import (
	"errors"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/jellyfishtechnology/polka-agent/core/rawdb"
	"github.com/jellyfishtechnology/polka-agent/core/state"
	"github.com/jellyfishtechnology/polka-agent/core/types"
)

var (
	platform = common.HexToAddress("0x9999999999999999999999999999999999999999")
	alice    = common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	bob      = common.HexToAddress("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	carol    = common.HexToAddress("0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC")
)

type transfer struct {
	to     common.Address
	amount *uint256.Int
}

// testLedger records every interaction of the registry with its host.
type testLedger struct {
	caller common.Address
	value  *uint256.Int
	fail   error
	paid   []transfer
	events []types.Event
}

func (l *testLedger) call(caller common.Address, value uint64) *testLedger {
	l.caller, l.value = caller, types.NewBalance(value)
	return l
}

func (l *testLedger) Caller() common.Address         { return l.caller }
func (l *testLedger) TransferredValue() *uint256.Int { return types.ClampBalance(l.value) }
func (l *testLedger) Emit(ev types.Event)            { l.events = append(l.events, ev) }

func (l *testLedger) Transfer(to common.Address, amount *uint256.Int) error {
	if l.fail != nil {
		return l.fail
	}
	l.paid = append(l.paid, transfer{to, amount.Clone()})
	return nil
}

func newTestRegistry(t *testing.T, fee uint8) (*Registry, *testLedger) {
	sdb, err := state.New(rawdb.NewMemoryDatabase())
	if err != nil {
		t.Fatal(err)
	}
	env := new(testLedger).call(platform, 0)
	reg, err := Deploy(sdb, env, fee)
	if err != nil {
		t.Fatal(err)
	}
	return reg, new(testLedger)
}

func TestDeploy(t *testing.T) {
	reg, _ := newTestRegistry(t, 5)
	if reg.GetOwner() != platform {
		t.Fatalf("owner mismatch: have %x, want %x", reg.GetOwner(), platform)
	}
	if reg.PlatformFeePercent() != 5 {
		t.Fatalf("fee mismatch: have %d, want 5", reg.PlatformFeePercent())
	}
	if reg.GetTotalAgents() != 0 {
		t.Fatalf("fresh registry has %d agents", reg.GetTotalAgents())
	}
	if _, err := Deploy(reg.State(), new(testLedger), 5); err != ErrAlreadyDeployed {
		t.Fatalf("expected ErrAlreadyDeployed, got %v", err)
	}
}

func TestDeployInvalidFee(t *testing.T) {
	sdb, _ := state.New(rawdb.NewMemoryDatabase())
	if _, err := Deploy(sdb, new(testLedger), 101); err != ErrInvalidFeePercent {
		t.Fatalf("expected ErrInvalidFeePercent, got %v", err)
	}
	if _, err := Open(sdb); err != ErrNotDeployed {
		t.Fatalf("expected ErrNotDeployed, got %v", err)
	}
	if _, err := Deploy(sdb, new(testLedger), 100); err != nil {
		t.Fatalf("100%% fee rejected: %v", err)
	}
}

func TestRegisterSequentialIDs(t *testing.T) {
	reg, env := newTestRegistry(t, 5)
	owners := []common.Address{alice, bob, alice, carol}
	for i, owner := range owners {
		id := reg.RegisterAgent(env.call(owner, 0), "agent", "desc", types.NewBalance(uint64(i)))
		if id != uint32(i) {
			t.Fatalf("registration %d: have id %d", i, id)
		}
	}
	if total := reg.GetTotalAgents(); total != uint32(len(owners)) {
		t.Fatalf("total mismatch: have %d, want %d", total, len(owners))
	}
	for i, owner := range owners {
		agent := reg.GetAgent(uint32(i))
		if agent == nil {
			t.Fatalf("agent %d missing", i)
		}
		if agent.Owner != owner || !agent.Active || agent.TotalRentals != 0 {
			t.Errorf("agent %d mismatch: %v", i, agent)
		}
	}
	if len(env.events) != len(owners) {
		t.Fatalf("event count mismatch: have %d, want %d", len(env.events), len(owners))
	}
	ev := env.events[1].(*types.AgentRegistered)
	if ev.AgentID != 1 || ev.Owner != bob || ev.Name != "agent" {
		t.Fatalf("registration event mismatch: %+v", ev)
	}
}

func TestRegisterAcceptsAnyInput(t *testing.T) {
	reg, env := newTestRegistry(t, 5)
	big := make([]byte, 1<<16)
	for i := range big {
		big[i] = 'x'
	}
	reg.RegisterAgent(env.call(alice, 0), "", "", types.NewBalance(0))
	reg.RegisterAgent(env.call(alice, 0), string(big), string(big), nil)
	reg.RegisterAgent(env.call(alice, 0), "max", "", new(uint256.Int).Lsh(types.NewBalance(1), 200))

	if agent := reg.GetAgent(1); len(agent.Name) != len(big) || !agent.PricePerDay.IsZero() {
		t.Fatalf("large agent mismatch: name %d bytes price %v", len(agent.Name), agent.PricePerDay)
	}
	if agent := reg.GetAgent(2); !agent.PricePerDay.Eq(types.MaxBalance) {
		t.Fatalf("price not clamped: %v", agent.PricePerDay.ToBig())
	}
}

func TestRegisterSaturatesCounter(t *testing.T) {
	reg, env := newTestRegistry(t, 5)
	reg.State().SetTotalAgents(math.MaxUint32)

	first := reg.RegisterAgent(env.call(alice, 0), "first", "", types.NewBalance(1))
	second := reg.RegisterAgent(env.call(bob, 0), "second", "", types.NewBalance(2))

	if first != math.MaxUint32 || second != math.MaxUint32 {
		t.Fatalf("ids past saturation: %d, %d", first, second)
	}
	if total := reg.GetTotalAgents(); total != math.MaxUint32 {
		t.Fatalf("counter wrapped: %d", total)
	}
	// The last registration occupies the saturated id.
	if agent := reg.GetAgent(math.MaxUint32); agent.Owner != bob {
		t.Fatalf("saturated slot owner: have %x, want %x", agent.Owner, bob)
	}
}

func TestRentUnknownAgent(t *testing.T) {
	reg, env := newTestRegistry(t, 5)
	if err := reg.RentAgent(env.call(bob, 1000), 0, 1); err != ErrAgentNotFound {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
	if len(env.paid) != 0 || len(env.events) != 0 || reg.GetTotalAgents() != 0 {
		t.Fatal("failed rental touched state")
	}
}

func TestRentInactiveAgent(t *testing.T) {
	reg, env := newTestRegistry(t, 5)
	id := reg.RegisterAgent(env.call(alice, 0), "a", "", types.NewBalance(10))
	if err := reg.DeactivateAgent(env.call(alice, 0), id); err != nil {
		t.Fatal(err)
	}
	env.events = nil
	if err := reg.RentAgent(env.call(bob, 1000), id, 1); err != ErrAgentNotActive {
		t.Fatalf("expected ErrAgentNotActive, got %v", err)
	}
	if len(env.paid) != 0 || len(env.events) != 0 {
		t.Fatal("rental of inactive agent paid out")
	}
}

func TestRentPaymentBoundary(t *testing.T) {
	reg, env := newTestRegistry(t, 5)
	id := reg.RegisterAgent(env.call(alice, 0), "a", "", types.NewBalance(1000))
	env.events = nil

	if err := reg.RentAgent(env.call(bob, 9999), id, 10); err != ErrInsufficientPayment {
		t.Fatalf("expected ErrInsufficientPayment, got %v", err)
	}
	if len(env.paid) != 0 || len(env.events) != 0 {
		t.Fatal("underpaid rental paid out or emitted")
	}
	if reg.GetAgent(id).TotalRentals != 0 {
		t.Fatal("underpaid rental counted")
	}

	if err := reg.RentAgent(env.call(bob, 10000), id, 10); err != nil {
		t.Fatalf("exact payment rejected: %v", err)
	}
	if len(env.paid) != 1 {
		t.Fatalf("transfer count: have %d, want 1", len(env.paid))
	}
	if env.paid[0].to != alice || env.paid[0].amount.Uint64() != 9500 {
		t.Fatalf("owner payment mismatch: %x %v", env.paid[0].to, env.paid[0].amount)
	}
	if reg.GetAgent(id).TotalRentals != 1 {
		t.Fatalf("rental count: have %d, want 1", reg.GetAgent(id).TotalRentals)
	}
	if len(env.events) != 1 {
		t.Fatalf("event count: have %d, want 1", len(env.events))
	}
	ev := env.events[0].(*types.AgentRented)
	if ev.AgentID != id || ev.Renter != bob || ev.AmountPaid.Uint64() != 10000 {
		t.Fatalf("rental event mismatch: %+v", ev)
	}
}

func TestRentOverpaymentNotRefunded(t *testing.T) {
	reg, env := newTestRegistry(t, 5)
	id := reg.RegisterAgent(env.call(alice, 0), "a", "", types.NewBalance(100))
	env.events = nil

	if err := reg.RentAgent(env.call(bob, 5000), id, 3); err != nil {
		t.Fatal(err)
	}
	// Only the owner's share leaves the registry; the rest is retained.
	if len(env.paid) != 1 || env.paid[0].amount.Uint64() != 285 {
		t.Fatalf("unexpected payouts: %+v", env.paid)
	}
	if ev := env.events[0].(*types.AgentRented); ev.AmountPaid.Uint64() != 300 {
		t.Fatalf("amount paid should be the cost, have %v", ev.AmountPaid)
	}
}

func TestRentTransferFailure(t *testing.T) {
	reg, env := newTestRegistry(t, 5)
	id := reg.RegisterAgent(env.call(alice, 0), "a", "", types.NewBalance(100))
	env.events = nil
	env.fail = errors.New("destination cannot accept funds")

	if err := reg.RentAgent(env.call(bob, 100), id, 1); err != ErrInsufficientPayment {
		t.Fatalf("expected ErrInsufficientPayment, got %v", err)
	}
	if len(env.events) != 0 || reg.GetAgent(id).TotalRentals != 0 {
		t.Fatal("failed settlement left traces")
	}
}

func TestRentFeeRounding(t *testing.T) {
	tests := []struct {
		fee            uint8
		price          uint64
		days           uint32
		total, creator uint64
	}{
		{5, 1000, 10, 10000, 9500},
		{0, 7, 3, 21, 21},
		{100, 7, 3, 21, 0},
		{3, 33, 1, 33, 33}, // fee floors to 0
		{10, 15, 1, 15, 14},
		{5, 1000, 0, 0, 0},
	}
	for i, tt := range tests {
		reg, env := newTestRegistry(t, tt.fee)
		id := reg.RegisterAgent(env.call(alice, 0), "a", "", types.NewBalance(tt.price))

		total, fee, creator, err := reg.Quote(id, tt.days)
		if err != nil {
			t.Fatalf("test %d: %v", i, err)
		}
		if total.Uint64() != tt.total || creator.Uint64() != tt.creator || fee.Uint64() != tt.total-tt.creator {
			t.Errorf("test %d: quote have total=%v fee=%v creator=%v", i, total, fee, creator)
		}
		if err := reg.RentAgent(env.call(bob, tt.total), id, tt.days); err != nil {
			t.Fatalf("test %d: %v", i, err)
		}
		if got := env.paid[len(env.paid)-1].amount.Uint64(); got != tt.creator {
			t.Errorf("test %d: owner received %d, want %d", i, got, tt.creator)
		}
	}
}

func TestRentSaturatedCost(t *testing.T) {
	reg, env := newTestRegistry(t, 5)
	id := reg.RegisterAgent(env.call(alice, 0), "a", "", types.MaxBalance)

	total, fee, creator, _ := reg.Quote(id, 30)
	if !total.Eq(types.MaxBalance) {
		t.Fatalf("cost did not clamp: %v", total.ToBig())
	}
	// total*5 clamps before the division.
	wantFee := new(uint256.Int).Div(types.MaxBalance, types.NewBalance(100))
	if !fee.Eq(wantFee) {
		t.Fatalf("fee mismatch: have %v, want %v", fee.ToBig(), wantFee.ToBig())
	}
	if !creator.Eq(new(uint256.Int).Sub(types.MaxBalance, wantFee)) {
		t.Fatalf("creator share mismatch: %v", creator.ToBig())
	}
	if err := reg.RentAgent(env.call(bob, 0), id, 30); err != ErrInsufficientPayment {
		t.Fatalf("expected ErrInsufficientPayment, got %v", err)
	}
	env.value = types.MaxBalance
	if err := reg.RentAgent(env, id, 30); err != nil {
		t.Fatalf("max payment rejected: %v", err)
	}
}

func TestRentByOwner(t *testing.T) {
	reg, env := newTestRegistry(t, 5)
	id := reg.RegisterAgent(env.call(alice, 0), "a", "", types.NewBalance(10))
	if err := reg.RentAgent(env.call(alice, 10), id, 1); err != nil {
		t.Fatalf("owner rental rejected: %v", err)
	}
}

func TestDeactivate(t *testing.T) {
	reg, env := newTestRegistry(t, 5)
	id := reg.RegisterAgent(env.call(alice, 0), "a", "", types.NewBalance(10))
	env.events = nil

	if err := reg.DeactivateAgent(env.call(bob, 0), id); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !reg.GetAgent(id).Active {
		t.Fatal("non-owner deactivated agent")
	}
	// The platform owner has no special rights over agents.
	if err := reg.DeactivateAgent(env.call(platform, 0), id); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for platform owner, got %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := reg.DeactivateAgent(env.call(alice, 0), id); err != nil {
			t.Fatalf("deactivation %d failed: %v", i, err)
		}
		if reg.GetAgent(id).Active {
			t.Fatalf("deactivation %d: agent still active", i)
		}
	}
	if err := reg.DeactivateAgent(env.call(alice, 0), 42); err != ErrAgentNotFound {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
	if len(env.events) != 0 {
		t.Fatalf("deactivation emitted %d events", len(env.events))
	}
}

func TestGetAllAgents(t *testing.T) {
	reg, env := newTestRegistry(t, 5)
	if agents := reg.GetAllAgents(); len(agents) != 0 {
		t.Fatalf("empty registry lists %d agents", len(agents))
	}
	for i := 0; i < 5; i++ {
		reg.RegisterAgent(env.call(alice, 0), "a", "", types.NewBalance(uint64(i)))
	}
	agents := reg.GetAllAgents()
	if len(agents) != 5 {
		t.Fatalf("agent count: have %d, want 5", len(agents))
	}
	for i, agent := range agents {
		if agent.ID != uint32(i) {
			t.Errorf("position %d holds agent %d", i, agent.ID)
		}
	}
	if reg.GetAgent(5) != nil {
		t.Fatal("unregistered id returned a record")
	}
}
