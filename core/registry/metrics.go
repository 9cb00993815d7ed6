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

// Contains the metrics collected by the registry.

package registry

import (
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	registerMeter   = metrics.NewRegisteredMeter("registry/agents/registered", nil)
	deactivateMeter = metrics.NewRegisteredMeter("registry/agents/deactivated", nil)

	rentMeter          = metrics.NewRegisteredMeter("registry/rentals/accepted", nil)
	rentNotFoundMeter  = metrics.NewRegisteredMeter("registry/rentals/rejected/notfound", nil)
	rentInactiveMeter  = metrics.NewRegisteredMeter("registry/rentals/rejected/inactive", nil)
	rentUnderpaidMeter = metrics.NewRegisteredMeter("registry/rentals/rejected/underpaid", nil)
	rentTransferMeter  = metrics.NewRegisteredMeter("registry/rentals/rejected/transfer", nil)

	unauthorizedMeter = metrics.NewRegisteredMeter("registry/unauthorized", nil)
	feeCounter        = metrics.NewRegisteredCounter("registry/fees/collected", nil)
)
