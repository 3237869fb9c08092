// Copyright 2025 The jcc-moac-abi Authors
// This file is part of the jcc-moac-abi library.
//
// The jcc-moac-abi library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The jcc-moac-abi library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the jcc-moac-abi library. If not, see <http://www.gnu.org/licenses/>.

package moacabi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInstance is returned if the codec is constructed from something
	// that is not a usable contract ABI.
	ErrInvalidInstance = errors.New("the input value isn't a contract instance")

	// ErrUnknownFunction is returned when a function name is not declared by the
	// ABI, or a call payload carries a selector the table does not know.
	ErrUnknownFunction = errors.New("the contract doesn't contain the function")

	// ErrInvalidArgumentCount is returned when none of the overloads of a
	// function accepts the number of supplied arguments.
	ErrInvalidArgumentCount = errors.New("invalid number of arguments to solidity function")

	// ErrEncodingProducedInvalidValue is returned when a numeric or address
	// argument cannot be turned into a valid word, instead of producing a
	// corrupted payload.
	ErrEncodingProducedInvalidValue = errors.New("the encoded data contains an invalid value, please check the input arguments")

	// ErrMalformedLog is returned when a log carries a known event selector but
	// its topics or data do not fit the event inputs.
	ErrMalformedLog = errors.New("log does not match its event abi")
)

// invalidValue reports an argument that failed to coerce into a word.
func invalidValue(kind string, v interface{}) error {
	return fmt.Errorf("%w: %v is not a valid %s", ErrEncodingProducedInvalidValue, v, kind)
}
