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
	"fmt"

	"github.com/JCCDex/jcc-moac-abi/schema"
)

// Resolve picks the function to call by name and argument count.
//
// A function without overloads is returned as is, even when argc does not
// match, leaving the count check to the encoder. Among overloads the first
// declared one taking exactly argc inputs wins.
//
// Resolve 根据函数名和参数个数选择要调用的函数。重载中取第一个参数个数匹配的声明。
func (c *Codec) Resolve(name string, argc int) (*schema.Method, error) {
	candidates := c.byName[name]
	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	case 1:
		return candidates[0], nil
	}
	for _, m := range candidates {
		if len(m.Inputs) == argc {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q has no overload taking %d arguments", ErrInvalidArgumentCount, name, argc)
}
