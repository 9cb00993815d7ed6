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

// Package registryapi implements the JSON-RPC service of the agent registry.
package registryapi

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
	"github.com/jellyfishtechnology/polka-agent/core"
	"github.com/jellyfishtechnology/polka-agent/core/types"
)

// Namespace is the RPC namespace the registry API is registered under.
const Namespace = "registry"

// Backend is the registry host the API operates on.
type Backend interface {
	ApplyMessage(msg core.Message) (*core.Result, error)

	Agent(id uint32) (*types.Agent, error)
	Agents() ([]*types.Agent, error)
	TotalAgents() (uint32, error)
	Owner() (common.Address, error)
	PlatformFeePercent() (uint8, error)
	Quote(id uint32, days uint32) (total, fee, creator *uint256.Int, err error)

	Balance(addr common.Address) *uint256.Int
	Logs() []*types.Log
}

// PublicRegistryAPI provides read access to the registry and accepts
// development transactions.
type PublicRegistryAPI struct {
	b Backend
}

// NewPublicRegistryAPI creates a new registry API.
func NewPublicRegistryAPI(b Backend) *PublicRegistryAPI {
	return &PublicRegistryAPI{b}
}

// GetAgent returns agent id, or null if it was never registered.
func (api *PublicRegistryAPI) GetAgent(ctx context.Context, id hexutil.Uint64) (*RPCAgent, error) {
	n, err := toUint32("id", uint64(id))
	if err != nil {
		return nil, err
	}
	agent, err := api.b.Agent(n)
	if err != nil || agent == nil {
		return nil, err
	}
	return newRPCAgent(agent), nil
}

// GetAllAgents returns every agent in registration order.
func (api *PublicRegistryAPI) GetAllAgents(ctx context.Context) ([]*RPCAgent, error) {
	agents, err := api.b.Agents()
	if err != nil {
		return nil, err
	}
	result := make([]*RPCAgent, len(agents))
	for i, agent := range agents {
		result[i] = newRPCAgent(agent)
	}
	return result, nil
}

// GetTotalAgents returns the number of registrations.
func (api *PublicRegistryAPI) GetTotalAgents(ctx context.Context) (hexutil.Uint64, error) {
	total, err := api.b.TotalAgents()
	return hexutil.Uint64(total), err
}

// GetOwner returns the platform owner.
func (api *PublicRegistryAPI) GetOwner(ctx context.Context) (common.Address, error) {
	return api.b.Owner()
}

// GetPlatformFee returns the platform fee in percent.
func (api *PublicRegistryAPI) GetPlatformFee(ctx context.Context) (hexutil.Uint64, error) {
	fee, err := api.b.PlatformFeePercent()
	return hexutil.Uint64(fee), err
}

// GetQuote returns the cost of renting agent id for the given number of days.
func (api *PublicRegistryAPI) GetQuote(ctx context.Context, id hexutil.Uint64, days hexutil.Uint64) (*RPCQuote, error) {
	n, err := toUint32("id", uint64(id))
	if err != nil {
		return nil, err
	}
	d, err := toUint32("days", uint64(days))
	if err != nil {
		return nil, err
	}
	total, fee, creator, err := api.b.Quote(n, d)
	if err != nil {
		return nil, err
	}
	return &RPCQuote{
		Total:   (*hexutil.Big)(total.ToBig()),
		Fee:     (*hexutil.Big)(fee.ToBig()),
		Creator: (*hexutil.Big)(creator.ToBig()),
	}, nil
}

// GetBalance returns the ledger balance of addr.
func (api *PublicRegistryAPI) GetBalance(ctx context.Context, addr common.Address) *hexutil.Big {
	return (*hexutil.Big)(api.b.Balance(addr).ToBig())
}

// GetLogs returns the committed event log.
func (api *PublicRegistryAPI) GetLogs(ctx context.Context) []*RPCLog {
	logs := api.b.Logs()
	result := make([]*RPCLog, len(logs))
	for i, l := range logs {
		result[i] = newRPCLog(l)
	}
	return result
}

// RegisterAgent registers an agent owned by args.from.
func (api *PublicRegistryAPI) RegisterAgent(ctx context.Context, args TransactionArgs) (*RPCReceipt, error) {
	return api.apply(core.CallRegister, args)
}

// RentAgent rents agent args.id for args.days, paying args.value.
func (api *PublicRegistryAPI) RentAgent(ctx context.Context, args TransactionArgs) (*RPCReceipt, error) {
	return api.apply(core.CallRent, args)
}

// DeactivateAgent deactivates agent args.id on behalf of args.from.
func (api *PublicRegistryAPI) DeactivateAgent(ctx context.Context, args TransactionArgs) (*RPCReceipt, error) {
	return api.apply(core.CallDeactivate, args)
}

func (api *PublicRegistryAPI) apply(kind core.CallKind, args TransactionArgs) (*RPCReceipt, error) {
	msg, err := args.ToMessage(kind)
	if err != nil {
		return nil, err
	}
	res, err := api.b.ApplyMessage(msg)
	if err != nil {
		return nil, err
	}
	receipt := &RPCReceipt{
		AgentID: hexutil.Uint64(res.AgentID),
		Logs:    make([]*RPCLog, len(res.Logs)),
	}
	for i, l := range res.Logs {
		receipt.Logs[i] = newRPCLog(l)
	}
	return receipt, nil
}

// APIs returns the RPC services offered by the registry.
func APIs(b Backend) []rpc.API {
	return []rpc.API{{
		Namespace: Namespace,
		Version:   "1.0",
		Service:   NewPublicRegistryAPI(b),
		Public:    true,
	}}
}

// NewServer creates an RPC server serving every registry API.
func NewServer(b Backend) (*rpc.Server, error) {
	srv := rpc.NewServer()
	for _, api := range APIs(b) {
		if err := srv.RegisterName(api.Namespace, api.Service); err != nil {
			srv.Stop()
			return nil, err
		}
	}
	return srv, nil
}
