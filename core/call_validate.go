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
)

// validateMessage checks a message against the rules of its call kind
// before the registry sees it.
func validateMessage(msg *Message) error {
	switch msg.Kind {
	case CallRegister, CallRent, CallDeactivate:
	default:
		return fmt.Errorf("%w: %v", ErrUnknownCall, msg.Kind)
	}
	if !msg.Kind.Payable() && msg.Value != nil && !msg.Value.IsZero() {
		return fmt.Errorf("%w: %s with value %s", ErrNonPayable, msg.Kind, msg.Value.ToBig())
	}
	return nil
}
