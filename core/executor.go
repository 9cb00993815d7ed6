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

package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/jellyfishtechnology/polka-agent/core/ledger"
	"github.com/jellyfishtechnology/polka-agent/core/registry"
	"github.com/jellyfishtechnology/polka-agent/core/state"
	"github.com/jellyfishtechnology/polka-agent/core/types"
)

var (
	callTimer    = metrics.NewRegisteredTimer("core/executor/call", nil)
	revertMeter  = metrics.NewRegisteredMeter("core/executor/reverted", nil)
	commitFailed = metrics.NewRegisteredMeter("core/executor/commitfailed", nil)
)

// Result is the outcome of a committed call.
type Result struct {
	AgentID uint32       // id assigned by a registration
	Logs    []*types.Log // events emitted by the call
}

// Executor runs registry calls one at a time. Each call either commits all
// of its registry and ledger changes in one database batch or leaves both
// exactly as they were.
type Executor struct {
	mu sync.Mutex

	db       ethdb.KeyValueStore
	state    *state.RegistryDB
	ledger   *ledger.Ledger
	registry *registry.Registry // nil until deployed
}

// NewExecutor opens the registry and ledger stored in db. The contract
// address is the ledger account holding the registry balance.
func NewExecutor(db ethdb.KeyValueStore, contract common.Address) (*Executor, error) {
	statedb, err := state.New(db)
	if err != nil {
		return nil, err
	}
	e := &Executor{
		db:     db,
		state:  statedb,
		ledger: ledger.New(db, contract),
	}
	if statedb.Deployed() {
		if e.registry, err = registry.Open(statedb); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Deploy creates the registry owned by caller.
func (e *Executor) Deploy(caller common.Address, feePercent uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var reg *registry.Registry
	_, err := e.execute("deploy", caller, nil, func(env registry.Ledger) (err error) {
		reg, err = registry.Deploy(e.state, env, feePercent)
		return err
	})
	if err != nil {
		return err
	}
	e.registry = reg
	return nil
}

// Deployed reports whether the registry exists.
func (e *Executor) Deployed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.registry != nil
}

// ApplyMessage validates and executes one registry call.
func (e *Executor) ApplyMessage(msg Message) (*Result, error) {
	if err := validateMessage(&msg); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.registry == nil {
		return nil, registry.ErrNotDeployed
	}
	var id uint32
	logs, err := e.execute(msg.Kind.String(), msg.From, msg.Value, func(env registry.Ledger) error {
		switch msg.Kind {
		case CallRegister:
			id = e.registry.RegisterAgent(env, msg.Name, msg.Description, msg.PricePerDay)
			return nil
		case CallRent:
			id = msg.AgentID
			return e.registry.RentAgent(env, msg.AgentID, msg.DurationDays)
		default:
			id = msg.AgentID
			return e.registry.DeactivateAgent(env, msg.AgentID)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Result{AgentID: id, Logs: logs}, nil
}

// RegisterAgent registers an agent owned by from.
func (e *Executor) RegisterAgent(from common.Address, name, description string, pricePerDay *uint256.Int) (uint32, error) {
	res, err := e.ApplyMessage(NewRegisterMessage(from, name, description, pricePerDay))
	if err != nil {
		return 0, err
	}
	return res.AgentID, nil
}

// RentAgent rents agent id for days, attaching value as payment.
func (e *Executor) RentAgent(from common.Address, value *uint256.Int, id uint32, days uint32) error {
	_, err := e.ApplyMessage(NewRentMessage(from, value, id, days))
	return err
}

// DeactivateAgent deactivates agent id on behalf of from.
func (e *Executor) DeactivateAgent(from common.Address, id uint32) error {
	_, err := e.ApplyMessage(NewDeactivateMessage(from, id))
	return err
}

// execute runs fn inside a call context. The caller must hold e.mu.
func (e *Executor) execute(op string, caller common.Address, value *uint256.Int, fn func(registry.Ledger) error) ([]*types.Log, error) {
	var (
		start      = time.Now()
		callID     = uuid.New().String()
		stateSnap  = e.state.Snapshot()
		ledgerSnap = e.ledger.Snapshot()
	)
	defer callTimer.UpdateSince(start)
	defer e.ledger.EndCall()

	revert := func(err error) error {
		e.state.RevertToSnapshot(stateSnap)
		e.ledger.RevertToSnapshot(ledgerSnap)
		revertMeter.Mark(1)
		log.Debug("Registry call reverted", "call", callID, "op", op, "caller", caller, "err", err)
		return err
	}
	if err := e.ledger.BeginCall(caller, value); err != nil {
		return nil, revert(fmt.Errorf("attach value: %w", err))
	}
	if err := fn(e.ledger); err != nil {
		return nil, revert(err)
	}
	logs := e.ledger.PendingLogs()

	batch := e.db.NewBatch()
	if err := e.state.Commit(batch); err != nil {
		return nil, revert(err)
	}
	e.ledger.Commit(batch)
	if err := batch.Write(); err != nil {
		// The in-memory layers already folded the call in, start over
		// from what is on disk.
		e.state.Reset()
		e.ledger.Reset()
		commitFailed.Mark(1)
		log.Error("Failed to commit registry call", "call", callID, "op", op, "err", err)
		return nil, err
	}
	log.Trace("Registry call committed", "call", callID, "op", op, "caller", caller, "logs", len(logs),
		"elapsed", common.PrettyDuration(time.Since(start)))
	return logs, nil
}

// Fund credits addr with newly minted funds. Development helper.
func (e *Executor) Fund(addr common.Address, amount *uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ledger.Mint(addr, amount)
	return e.commitLedger()
}

// SetRefuseFunds marks addr as unable to receive transfers.
func (e *Executor) SetRefuseFunds(addr common.Address, refuse bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ledger.SetRefuseFunds(addr, refuse)
	return e.commitLedger()
}

func (e *Executor) commitLedger() error {
	batch := e.db.NewBatch()
	e.ledger.Commit(batch)
	if err := batch.Write(); err != nil {
		e.ledger.Reset()
		return err
	}
	return nil
}

// Balance returns the ledger balance of addr.
func (e *Executor) Balance(addr common.Address) *uint256.Int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.ledger.Balance(addr)
}

// Contract returns the ledger account of the registry.
func (e *Executor) Contract() common.Address {
	return e.ledger.Contract()
}

// Logs returns the committed event log.
func (e *Executor) Logs() []*types.Log {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.ledger.Logs()
}

// View runs fn against the registry under the executor lock. fn must not
// modify the registry.
func (e *Executor) View(fn func(*registry.Registry) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.registry == nil {
		return registry.ErrNotDeployed
	}
	return fn(e.registry)
}

// Agent returns agent id, or nil if it was never registered.
func (e *Executor) Agent(id uint32) (agent *types.Agent, err error) {
	err = e.View(func(r *registry.Registry) error {
		agent = r.GetAgent(id)
		return nil
	})
	return agent, err
}

// Agents returns every registered agent in id order.
func (e *Executor) Agents() (agents []*types.Agent, err error) {
	err = e.View(func(r *registry.Registry) error {
		agents = r.GetAllAgents()
		return nil
	})
	return agents, err
}

// TotalAgents returns the number of registrations.
func (e *Executor) TotalAgents() (total uint32, err error) {
	err = e.View(func(r *registry.Registry) error {
		total = r.GetTotalAgents()
		return nil
	})
	return total, err
}

// Owner returns the platform owner.
func (e *Executor) Owner() (owner common.Address, err error) {
	err = e.View(func(r *registry.Registry) error {
		owner = r.GetOwner()
		return nil
	})
	return owner, err
}

// PlatformFeePercent returns the fee charged on each rental.
func (e *Executor) PlatformFeePercent() (fee uint8, err error) {
	err = e.View(func(r *registry.Registry) error {
		fee = r.PlatformFeePercent()
		return nil
	})
	return fee, err
}

// Quote returns the cost split of renting agent id for days.
func (e *Executor) Quote(id uint32, days uint32) (total, fee, creator *uint256.Int, err error) {
	err = e.View(func(r *registry.Registry) (err error) {
		total, fee, creator, err = r.Quote(id, days)
		return err
	})
	return total, fee, creator, err
}
