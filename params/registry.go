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

package params

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// MaxPlatformFeePercent is the upper bound of the platform fee.
const MaxPlatformFeePercent = 100

// DefaultContractAddress is the account holding the registry balance when no
// address is configured.
var DefaultContractAddress = common.HexToAddress("0x00000000000000000000000000000000000a6e47")

// RegistryConfig contains the deployment parameters of an agent registry.
type RegistryConfig struct {
	// PlatformFeePercent is the share of each rental's total cost kept by
	// the registry. Fixed once the registry is deployed.
	PlatformFeePercent uint8

	// ContractAddress is the ledger account of the registry itself. Rental
	// payments land here before the owner's share is paid out.
	ContractAddress common.Address
}

// DefaultRegistryConfig contains the default deployment settings.
var DefaultRegistryConfig = RegistryConfig{
	PlatformFeePercent: 5,
	ContractAddress:    DefaultContractAddress,
}

// Validate checks the configuration for out of range values.
func (c *RegistryConfig) Validate() error {
	if c.PlatformFeePercent > MaxPlatformFeePercent {
		return fmt.Errorf("platform fee %d%% out of range [0,%d]", c.PlatformFeePercent, MaxPlatformFeePercent)
	}
	if c.ContractAddress == (common.Address{}) {
		return fmt.Errorf("contract address not set")
	}
	return nil
}

// String implements fmt.Stringer.
func (c *RegistryConfig) String() string {
	return fmt.Sprintf("{PlatformFee: %d%% Contract: %s}", c.PlatformFeePercent, c.ContractAddress.Hex())
}
