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

import "errors"

// List of errors returned by the registry operations. The set is closed:
// every failing operation returns exactly one of these.
var (
	// ErrAgentNotFound is returned if the referenced agent id has never been
	// registered.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrAgentNotActive is returned when renting an agent that has been
	// deactivated.
	ErrAgentNotActive = errors.New("agent not active")

	// ErrInsufficientPayment is returned if the value attached to a rental is
	// below the total cost, or if paying the agent owner failed.
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrUnauthorized is returned if someone other than the agent owner tries
	// to deactivate it.
	ErrUnauthorized = errors.New("unauthorized")
)

// Errors returned while constructing a registry.
var (
	ErrInvalidFeePercent = errors.New("platform fee percent out of range")
	ErrAlreadyDeployed   = errors.New("registry already deployed")
	ErrNotDeployed       = errors.New("registry not deployed")
)
