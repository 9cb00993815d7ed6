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

import "errors"

var (
	// ErrUnknownCall is returned if a message names no known operation.
	ErrUnknownCall = errors.New("unknown call kind")

	// ErrNonPayable is returned if value is attached to an operation that
	// does not accept payment.
	ErrNonPayable = errors.New("operation is not payable")
)
