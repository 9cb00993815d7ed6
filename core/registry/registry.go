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

// Package registry implements the agent registry state machine: registration,
// rental settlement and deactivation of agents.
package registry

import (
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/jellyfishtechnology/polka-agent/core/state"
	"github.com/jellyfishtechnology/polka-agent/core/types"
	"github.com/jellyfishtechnology/polka-agent/params"
)

// Ledger is the host environment a registry call executes in.
type Ledger interface {
	// Caller returns the identity of the account invoking the operation.
	Caller() common.Address

	// TransferredValue returns the value attached to the call, zero if none.
	TransferredValue() *uint256.Int

	// Transfer pays amount from the registry balance to the given account.
	Transfer(to common.Address, amount *uint256.Int) error

	// Emit appends an event to the ordered event log.
	Emit(ev types.Event)
}

// Registry is one deployed agent registry. All persistent fields live in
// the state database; the Registry only applies the transition rules.
type Registry struct {
	state *state.RegistryDB
}

// Deploy creates a new registry owned by the caller of env, charging
// feePercent on every rental.
func Deploy(statedb *state.RegistryDB, env Ledger, feePercent uint8) (*Registry, error) {
	if feePercent > params.MaxPlatformFeePercent {
		return nil, ErrInvalidFeePercent
	}
	if statedb.Deployed() {
		return nil, ErrAlreadyDeployed
	}
	statedb.Deploy(env.Caller(), feePercent)
	log.Info("Deployed agent registry", "owner", env.Caller(), "fee", feePercent)
	return &Registry{state: statedb}, nil
}

// Open attaches to the registry already present in statedb.
func Open(statedb *state.RegistryDB) (*Registry, error) {
	if !statedb.Deployed() {
		return nil, ErrNotDeployed
	}
	return &Registry{state: statedb}, nil
}

// State returns the state database backing the registry.
func (r *Registry) State() *state.RegistryDB {
	return r.state
}

// RegisterAgent stores a new active agent owned by the caller and returns its
// id. It never fails: text is stored as is and the price is clamped to the
// balance maximum.
func (r *Registry) RegisterAgent(env Ledger, name, description string, pricePerDay *uint256.Int) uint32 {
	var (
		owner = env.Caller()
		id    = r.state.TotalAgents()
	)
	r.state.CreateAgent(&types.Agent{
		ID:          id,
		Owner:       owner,
		Name:        name,
		Description: description,
		PricePerDay: types.ClampBalance(pricePerDay),
		Active:      true,
	})
	// The counter saturates: once at the maximum, the next registration
	// reuses the last id.
	if id < math.MaxUint32 {
		r.state.SetTotalAgents(id + 1)
	}
	env.Emit(&types.AgentRegistered{AgentID: id, Owner: owner, Name: name})
	registerMeter.Mark(1)

	log.Info("Agent registered", "id", id, "owner", owner, "name", name, "price", types.ClampBalance(pricePerDay).ToBig())
	return id
}

// Quote computes the cost split of renting agent id for durationDays. The
// owner receives total minus fee.
func (r *Registry) Quote(id uint32, durationDays uint32) (total, fee, creator *uint256.Int, err error) {
	agent := r.state.GetAgent(id)
	if agent == nil {
		return nil, nil, nil, ErrAgentNotFound
	}
	total, fee, creator = r.split(agent.PricePerDay, durationDays)
	return total, fee, creator, nil
}

func (r *Registry) split(pricePerDay *uint256.Int, durationDays uint32) (total, fee, creator *uint256.Int) {
	total = types.SaturatingMulUint64(pricePerDay, uint64(durationDays))
	fee = types.SaturatingMulUint64(total, uint64(r.state.PlatformFeePercent()))
	fee.Div(fee, types.NewBalance(100))
	creator = types.SaturatingSub(total, fee)
	return total, fee, creator
}

// RentAgent rents agent id for durationDays, paid by the value attached to
// the call. The owner's share is transferred immediately, the platform fee
// and any overpayment stay with the registry.
func (r *Registry) RentAgent(env Ledger, id uint32, durationDays uint32) error {
	agent := r.state.GetAgent(id)
	if agent == nil {
		rentNotFoundMeter.Mark(1)
		return ErrAgentNotFound
	}
	if !agent.Active {
		rentInactiveMeter.Mark(1)
		return ErrAgentNotActive
	}
	total, fee, creator := r.split(agent.PricePerDay, durationDays)

	payment := env.TransferredValue()
	if payment.Lt(total) {
		rentUnderpaidMeter.Mark(1)
		log.Debug("Rental underpaid", "id", id, "days", durationDays, "paid", payment.ToBig(), "cost", total.ToBig())
		return ErrInsufficientPayment
	}
	if err := env.Transfer(agent.Owner, creator); err != nil {
		rentTransferMeter.Mark(1)
		log.Debug("Rental settlement failed", "id", id, "owner", agent.Owner, "amount", creator.ToBig(), "err", err)
		return ErrInsufficientPayment
	}
	if agent.TotalRentals < math.MaxUint64 {
		r.state.SetTotalRentals(id, agent.TotalRentals+1)
	}
	env.Emit(&types.AgentRented{AgentID: id, Renter: env.Caller(), AmountPaid: total})

	rentMeter.Mark(1)
	if fee.IsUint64() && fee.Uint64() <= math.MaxInt64 {
		feeCounter.Inc(int64(fee.Uint64()))
	}
	log.Info("Agent rented", "id", id, "renter", env.Caller(), "days", durationDays, "cost", total.ToBig(), "fee", fee.ToBig())
	return nil
}

// DeactivateAgent permanently marks agent id as inactive. Only the agent
// owner may do so; repeating it is a no-op.
func (r *Registry) DeactivateAgent(env Ledger, id uint32) error {
	agent := r.state.GetAgent(id)
	if agent == nil {
		return ErrAgentNotFound
	}
	if env.Caller() != agent.Owner {
		unauthorizedMeter.Mark(1)
		return ErrUnauthorized
	}
	if agent.Active {
		r.state.SetActive(id, false)
		deactivateMeter.Mark(1)
		log.Info("Agent deactivated", "id", id, "owner", agent.Owner)
	}
	return nil
}

// GetAgent returns a copy of agent id, or nil if it was never registered.
func (r *Registry) GetAgent(id uint32) *types.Agent {
	return r.state.GetAgent(id)
}

// GetAllAgents returns every agent in ascending id order.
func (r *Registry) GetAllAgents() []*types.Agent {
	return r.state.Agents()
}

// GetTotalAgents returns the number of registrations so far.
func (r *Registry) GetTotalAgents() uint32 {
	return r.state.TotalAgents()
}

// GetOwner returns the platform owner.
func (r *Registry) GetOwner() common.Address {
	return r.state.Owner()
}

// PlatformFeePercent returns the fee charged on every rental.
func (r *Registry) PlatformFeePercent() uint8 {
	return r.state.PlatformFeePercent()
}
